package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/typings-registry/database"
	"github.com/stacklok/typings-registry/internal/catalog"
	"github.com/stacklok/typings-registry/internal/config"
	"github.com/stacklok/typings-registry/internal/git"
	"github.com/stacklok/typings-registry/internal/queue"
	queuemocks "github.com/stacklok/typings-registry/internal/queue/mocks"
)

// mockCoordinator implements the coordinator.Coordinator interface for testing
type mockCoordinator struct {
	mu          sync.Mutex
	startCalled bool
	stopCalled  bool
	stopErr     error
}

func (m *mockCoordinator) Start(ctx context.Context) error {
	m.mu.Lock()
	m.startCalled = true
	m.mu.Unlock()

	<-ctx.Done()
	return nil
}

func (m *mockCoordinator) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopCalled = true
	return m.stopErr
}

func (m *mockCoordinator) wasStartCalled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startCalled
}

func (m *mockCoordinator) wasStopCalled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopCalled
}

// createTestApp builds an IndexerApp around an idle queue without using NewIndexerApp
func createTestApp(t *testing.T, coord *mockCoordinator) *IndexerApp {
	t.Helper()

	ctrl := gomock.NewController(t)
	store := queuemocks.NewMockStore(ctrl)
	store.EXPECT().Claim(gomock.Any()).Return(nil, nil).AnyTimes()

	ctx, cancel := context.WithCancel(t.Context())
	return &IndexerApp{
		config: createValidTestConfig(),
		components: &AppComponents{
			Coordinator: coord,
			Worker:      queue.NewWorker(store, queue.WithConcurrency(1), queue.WithPollInterval(10*time.Millisecond)),
			Queue:       store,
		},
		ctx:        ctx,
		cancelFunc: cancel,
		done:       make(chan struct{}),
	}
}

func TestIndexerAppStartStop(t *testing.T) {
	t.Parallel()

	coord := &mockCoordinator{}
	app := createTestApp(t, coord)

	errCh := make(chan error, 1)
	go func() { errCh <- app.Start() }()

	require.Eventually(t, coord.wasStartCalled, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, app.Stop(5*time.Second))
	assert.True(t, coord.wasStopCalled())
	require.NoError(t, <-errCh)

	// a second start is rejected
	require.Error(t, app.Start())
}

func TestIndexerAppStopWithoutStart(t *testing.T) {
	t.Parallel()

	coord := &mockCoordinator{}
	app := createTestApp(t, coord)

	cleaned := false
	app.cleanup = func() { cleaned = true }

	require.NoError(t, app.Stop(time.Second))
	assert.True(t, coord.wasStopCalled())
	assert.True(t, cleaned)
}

func TestIndexerAppStopReportsCoordinatorError(t *testing.T) {
	t.Parallel()

	coord := &mockCoordinator{stopErr: errors.New("boom")}
	app := createTestApp(t, coord)

	err := app.Stop(time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to stop sync coordinator")
}

func TestIndexerAppGetters(t *testing.T) {
	t.Parallel()

	app := createTestApp(t, &mockCoordinator{})
	assert.Len(t, app.GetConfig().Repositories, 2)
	assert.NotNil(t, app.GetComponents().Worker)
}

func TestIndexerAppIndexesRepository(t *testing.T) {
	t.Parallel()

	pool, cleanup := database.SetupTestDB(t)
	t.Cleanup(cleanup)

	remote, _ := git.CreateTestRepoWithCommits(t, []git.TestCommit{
		{Files: map[string]string{"react/react.d.ts": "// Type definitions for React 15.0\n"}},
		{Files: map[string]string{"lodash/lodash.d.ts": "// Type definitions for Lo-Dash 4.14\n"}},
	})

	cfg := &config.Config{
		Repositories: []config.RepositoryConfig{
			{
				Name:         "dt",
				Format:       config.FormatDefinitelyTyped,
				URL:          remote,
				Path:         t.TempDir() + "/dt.git",
				PollTimeout:  "1h",
				SyncInterval: "1h",
				StartFrom:    config.StartFromBeginning,
			},
		},
		Queue: &config.QueueConfig{Workers: 2, PollInterval: "10ms"},
	}

	app, err := NewIndexerApp(t.Context(), WithConfig(cfg), WithPool(pool))
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() { errCh <- app.Start() }()

	store := app.GetComponents().Catalog
	for _, name := range []string{"react", "lodash"} {
		require.Eventually(t, func() bool {
			entry, err := store.GetEntry(t.Context(), name, catalog.SourceDT)
			return err == nil && entry.Active
		}, 30*time.Second, 50*time.Millisecond, "entry %s", name)
	}

	require.Eventually(t, func() bool {
		cursor, err := app.GetComponents().Cursors.GetCursor(t.Context(), "dt")
		return err == nil && cursor.Commit != ""
	}, 30*time.Second, 50*time.Millisecond)

	require.NoError(t, app.Stop(10*time.Second))
	require.NoError(t, <-errCh)
}
