// Package coordinator schedules the commit walks of the indexing pipeline.
//
// For every configured repository the coordinator enqueues a sync-commits job
// on startup and then once per sync interval, with a small random jitter so
// that several indexer instances spread their triggers. The queue coalesces
// a trigger for a repository whose walk is already queued, so overlapping
// instances never pile up walks.
//
// The coordinator only enqueues. Walking, classification and indexing run in
// the queue workers:
//
//	coord := coordinator.New(store, cfg.Repositories)
//	go func() { _ = coord.Start(ctx) }()
//	defer coord.Stop()
//
// Trigger enqueues one walk per repository right away and is used by the
// one-shot sync command.
package coordinator
