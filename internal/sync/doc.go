// Package sync implements the stages of the incremental indexing pipeline.
//
// A sync-commits job runs the Walker, which lists the commits after the stored
// cursor and enqueues one index-commit job per commit. An index-commit job runs
// the Classifier, which matches the files changed by the commit against the
// repository pattern and enqueues one index-file-change job per match. An
// index-file-change job runs the indexer of the repository format.
//
// No stage waits for the jobs it enqueues. Jobs may run concurrently, in any
// order and more than once; the catalog's timestamp guards make that safe.
//
// The sync/coordinator subpackage schedules sync-commits jobs per repository,
// and sync/state stores the per-repository cursors.
package sync
