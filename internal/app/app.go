// Package app provides application lifecycle management for the registry indexer.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/stacklok/typings-registry/internal/config"
)

// IndexerApp encapsulates all components needed to run the indexing pipeline.
// It provides lifecycle management and graceful shutdown capabilities.
type IndexerApp struct {
	config     *config.Config
	components *AppComponents

	// Lifecycle management
	ctx        context.Context
	cancelFunc context.CancelFunc
	cleanup    func()
	started    atomic.Bool
	done       chan struct{}
}

// Start runs the sync coordinator in the background and the queue workers in the
// foreground. It blocks until the workers stop.
func (app *IndexerApp) Start() error {
	if !app.started.CompareAndSwap(false, true) {
		return fmt.Errorf("indexer already started")
	}
	defer close(app.done)

	go func() {
		if err := app.components.Coordinator.Start(app.ctx); err != nil {
			slog.Error("Sync coordinator failed", "error", err)
		}
	}()

	if err := app.components.Worker.Run(app.ctx); err != nil {
		return fmt.Errorf("workers failed: %w", err)
	}
	return nil
}

// Stop gracefully stops the application with the given timeout.
// It stops the sync coordinator first, then stops claiming and waits for in-flight
// jobs. Jobs still running after the drain timeout are released to the queue;
// a job abandoned by the timeout of Stop is redelivered once its lease expires.
func (app *IndexerApp) Stop(timeout time.Duration) error {
	slog.Info("Shutting down indexer...")

	var errs []error
	if err := app.components.Coordinator.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop sync coordinator: %w", err))
	}

	if app.cancelFunc != nil {
		app.cancelFunc()
	}

	if app.started.Load() {
		select {
		case <-app.done:
		case <-time.After(timeout):
			errs = append(errs, fmt.Errorf("workers did not stop within %s", timeout))
		}
	}

	if app.cleanup != nil {
		app.cleanup()
	}

	if len(errs) == 0 {
		slog.Info("Indexer shutdown complete")
	}
	return errors.Join(errs...)
}

// GetConfig returns the application configuration
func (app *IndexerApp) GetConfig() *config.Config {
	return app.config
}

// GetComponents returns the application components
func (app *IndexerApp) GetComponents() *AppComponents {
	return app.components
}
