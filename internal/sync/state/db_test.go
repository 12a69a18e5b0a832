package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/typings-registry/database"
)

func TestNewDBCursorService(t *testing.T) {
	t.Parallel()

	service := NewDBCursorService(nil)
	require.NotNil(t, service)

	dbService, ok := service.(*dbCursorService)
	require.True(t, ok)
	assert.Nil(t, dbService.pool)
}

func TestDBCursorService(t *testing.T) {
	t.Parallel()

	pool, cleanup := database.SetupTestDB(t)
	t.Cleanup(cleanup)

	ctx := t.Context()
	service := NewDBCursorService(pool)

	_, err := service.GetCursor(ctx, "dt")
	require.ErrorIs(t, err, ErrCursorNotFound)

	require.NoError(t, service.UpdateCursor(ctx, "dt", "aaaa"))
	cursor, err := service.GetCursor(ctx, "dt")
	require.NoError(t, err)
	assert.Equal(t, "dt", cursor.Repository)
	assert.Equal(t, "aaaa", cursor.Commit)
	assert.WithinDuration(t, time.Now(), cursor.UpdatedAt, time.Minute)

	// repeated writes overwrite the cursor
	require.NoError(t, service.UpdateCursor(ctx, "dt", "bbbb"))
	require.NoError(t, service.UpdateCursor(ctx, "dt", "bbbb"))
	cursor, err = service.GetCursor(ctx, "dt")
	require.NoError(t, err)
	assert.Equal(t, "bbbb", cursor.Commit)

	// cursors are independent per repository
	_, err = service.GetCursor(ctx, "typings")
	require.ErrorIs(t, err, ErrCursorNotFound)

	require.NoError(t, service.DeleteCursor(ctx, "dt"))
	_, err = service.GetCursor(ctx, "dt")
	require.ErrorIs(t, err, ErrCursorNotFound)
	require.ErrorIs(t, service.DeleteCursor(ctx, "dt"), ErrCursorNotFound)
}
