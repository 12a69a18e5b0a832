package app

import (
	"github.com/stacklok/typings-registry/internal/catalog"
	"github.com/stacklok/typings-registry/internal/queue"
	"github.com/stacklok/typings-registry/internal/sync/coordinator"
	"github.com/stacklok/typings-registry/internal/sync/state"
)

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// Coordinator schedules the periodic commit walks
	Coordinator coordinator.Coordinator

	// Worker consumes the job queue
	Worker *queue.Worker

	// Queue is the job store shared by the coordinator and the workers
	Queue queue.Store

	// Catalog is the entries and versions store the indexers write to
	Catalog catalog.Store

	// Cursors holds the per-repository walk cursors
	Cursors state.CursorService
}
