package git

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingRefresh creates the mirror directory and counts invocations
func countingRefresh(calls *atomic.Int32) RefreshFunc {
	return func(_ context.Context, path, _ string) error {
		calls.Add(1)
		return os.MkdirAll(path, 0o755)
	}
}

func TestGuard_EnsureFresh(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		maxAge    time.Duration
		calls     int
		wantCalls int32
	}{
		{name: "first call refreshes", maxAge: time.Hour, calls: 1, wantCalls: 1},
		{name: "fresh mirror is not refreshed again", maxAge: time.Hour, calls: 3, wantCalls: 1},
		{name: "zero max age always refreshes", maxAge: 0, calls: 3, wantCalls: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var calls atomic.Int32
			guard := NewGuard(countingRefresh(&calls))
			path := filepath.Join(t.TempDir(), "mirror")

			for range tt.calls {
				require.NoError(t, guard.EnsureFresh(t.Context(), path, "https://example.com/repo.git", tt.maxAge))
			}
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestGuard_EnsureFresh_StaleMarker(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	guard := NewGuard(countingRefresh(&calls))
	path := filepath.Join(t.TempDir(), "mirror")

	require.NoError(t, guard.EnsureFresh(t.Context(), path, "u", time.Minute))

	// age the marker past the threshold
	old := time.Now().Add(-2 * time.Minute)
	require.NoError(t, os.Chtimes(filepath.Join(path, markerFile), old, old))

	require.NoError(t, guard.EnsureFresh(t.Context(), path, "u", time.Minute))
	assert.Equal(t, int32(2), calls.Load())
}

func TestGuard_EnsureFresh_ConcurrentCallersShareRefresh(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	release := make(chan struct{})
	guard := NewGuard(func(_ context.Context, path, _ string) error {
		calls.Add(1)
		<-release
		return os.MkdirAll(path, 0o755)
	})
	path := filepath.Join(t.TempDir(), "mirror")

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- guard.EnsureFresh(context.Background(), path, "u", time.Hour)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestGuard_EnsureFresh_SharedAcrossGuards(t *testing.T) {
	t.Parallel()

	// two guards model two processes sharing the mirror directory
	var calls atomic.Int32
	first := NewGuard(countingRefresh(&calls))
	second := NewGuard(countingRefresh(&calls))
	path := filepath.Join(t.TempDir(), "mirror")

	require.NoError(t, first.EnsureFresh(t.Context(), path, "u", time.Hour))
	require.NoError(t, second.EnsureFresh(t.Context(), path, "u", time.Hour))
	assert.Equal(t, int32(1), calls.Load())
}

func TestGuard_EnsureFresh_ErrorPropagates(t *testing.T) {
	t.Parallel()

	errNetwork := errors.New("network unreachable")
	var calls atomic.Int32
	guard := NewGuard(func(_ context.Context, _, _ string) error {
		calls.Add(1)
		return errNetwork
	})
	path := filepath.Join(t.TempDir(), "mirror")

	err := guard.EnsureFresh(t.Context(), path, "u", time.Hour)
	require.ErrorIs(t, err, errNetwork)

	// a failed refresh leaves no marker, so the next call tries again
	err = guard.EnsureFresh(t.Context(), path, "u", time.Hour)
	require.ErrorIs(t, err, errNetwork)
	assert.Equal(t, int32(2), calls.Load())
}
