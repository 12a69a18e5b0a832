package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stacklok/typings-registry/internal/config"
	"github.com/stacklok/typings-registry/internal/queue"
)

// Coordinator schedules commit walks for every tracked repository
type Coordinator interface {
	// Start enqueues a sync-commits job per repository immediately and then once per
	// sync interval. Blocks until the context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully stops the coordinator
	Stop() error
}

// defaultCoordinator is the default implementation of Coordinator
type defaultCoordinator struct {
	queue        queue.Queue
	repositories []config.RepositoryConfig
	interval     func(time.Duration) time.Duration

	// Lifecycle management
	mu         sync.Mutex
	cancelFunc context.CancelFunc
	done       chan struct{}
}

// Option is a function that configures the coordinator
type Option func(*defaultCoordinator)

// withIntervalFunc replaces the jittered interval, for tests
func withIntervalFunc(fn func(time.Duration) time.Duration) Option {
	return func(c *defaultCoordinator) {
		c.interval = fn
	}
}

// New creates a new coordinator enqueuing into q
func New(q queue.Queue, repositories []config.RepositoryConfig, opts ...Option) Coordinator {
	c := &defaultCoordinator{
		queue:        q,
		repositories: repositories,
		interval:     jitteredInterval,
		done:         make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Trigger enqueues one sync-commits job per repository. A repository whose walk is
// already queued is coalesced by the queue.
func Trigger(ctx context.Context, q queue.Queue, repositories []config.RepositoryConfig) error {
	for _, repo := range repositories {
		if err := q.Enqueue(ctx, queue.NewSyncCommitsJob(repo.Name)); err != nil {
			return fmt.Errorf("failed to trigger sync of %s: %w", repo.Name, err)
		}
	}
	return nil
}

// Start begins background sync scheduling for all repositories
func (c *defaultCoordinator) Start(ctx context.Context) error {
	slog.Info("Starting sync coordinator", "repository_count", len(c.repositories))

	coordCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancelFunc = cancel
	c.mu.Unlock()
	defer func() {
		cancel()
		close(c.done)
		slog.Info("Sync coordinator shutting down")
	}()

	g, gctx := errgroup.WithContext(coordCtx)
	for i := range c.repositories {
		repo := &c.repositories[i]
		g.Go(func() error {
			c.run(gctx, repo)
			return nil
		})
	}
	return g.Wait()
}

// Stop gracefully stops the coordinator
func (c *defaultCoordinator) Stop() error {
	c.mu.Lock()
	cancel := c.cancelFunc
	c.mu.Unlock()

	if cancel != nil {
		slog.Info("Stopping sync coordinator")
		cancel()
		<-c.done
	}
	return nil
}

// run triggers one repository until ctx is cancelled
func (c *defaultCoordinator) run(ctx context.Context, repo *config.RepositoryConfig) {
	base := repo.GetSyncInterval()
	interval := c.interval(base)
	slog.Info("Configured repository sync interval",
		"repository", repo.Name,
		"base_interval", base.String(),
		"actual_interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.trigger(ctx, repo)
	for {
		select {
		case <-ticker.C:
			c.trigger(ctx, repo)
			ticker.Reset(c.interval(base))
		case <-ctx.Done():
			return
		}
	}
}

func (c *defaultCoordinator) trigger(ctx context.Context, repo *config.RepositoryConfig) {
	if err := c.queue.Enqueue(ctx, queue.NewSyncCommitsJob(repo.Name)); err != nil {
		if ctx.Err() == nil {
			slog.Error("Failed to trigger sync", "repository", repo.Name, "error", err)
		}
		return
	}
	slog.Debug("Triggered sync", "repository", repo.Name)
}
