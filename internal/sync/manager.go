package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stacklok/typings-registry/internal/config"
	"github.com/stacklok/typings-registry/internal/git"
	"github.com/stacklok/typings-registry/internal/indexer"
	"github.com/stacklok/typings-registry/internal/queue"
	"github.com/stacklok/typings-registry/internal/sync/state"
)

// Manager dispatches pipeline jobs to the walker, the classifier and the indexers
type Manager struct {
	config     *config.Config
	cursors    state.CursorService
	walker     *Walker
	classifier *Classifier
	indexers   map[string]indexer.Indexer
}

// NewManager wires the pipeline stages for every configured repository.
// The indexers map is keyed by repository format.
func NewManager(
	cfg *config.Config,
	repo git.Repository,
	q queue.Queue,
	cursors state.CursorService,
	indexers map[string]indexer.Indexer,
) (*Manager, error) {
	classifier, err := NewClassifier(repo, q, cfg.Repositories)
	if err != nil {
		return nil, err
	}

	for _, r := range cfg.Repositories {
		if _, ok := indexers[r.Format]; !ok {
			return nil, fmt.Errorf("repository %s: no indexer for format %s", r.Name, r.Format)
		}
	}

	return &Manager{
		config:     cfg,
		cursors:    cursors,
		walker:     NewWalker(repo, q),
		classifier: classifier,
		indexers:   indexers,
	}, nil
}

// Register installs the job handlers on worker
func (m *Manager) Register(worker *queue.Worker) {
	worker.Handle(queue.KindSyncCommits, m.HandleSyncCommits)
	worker.Handle(queue.KindIndexCommit, m.HandleIndexCommit)
	worker.Handle(queue.KindIndexFileChange, m.HandleIndexFileChange)
}

// HandleSyncCommits walks the commits after the stored cursor and advances it
func (m *Manager) HandleSyncCommits(ctx context.Context, job queue.Job) error {
	repo, err := m.repository(job)
	if err != nil {
		return err
	}

	since := ""
	cursor, err := m.cursors.GetCursor(ctx, repo.Name)
	switch {
	case err == nil:
		since = cursor.Commit
	case errors.Is(err, state.ErrCursorNotFound):
	default:
		return fmt.Errorf("failed to read cursor: %w", err)
	}

	next, err := m.walker.Walk(ctx, repo, since)
	if err != nil {
		return err
	}

	if next == since {
		return nil
	}
	if err := m.cursors.UpdateCursor(ctx, repo.Name, next); err != nil {
		return fmt.Errorf("failed to update cursor: %w", err)
	}
	return nil
}

// HandleIndexCommit classifies the changes of one commit
func (m *Manager) HandleIndexCommit(ctx context.Context, job queue.Job) error {
	repo, err := m.repository(job)
	if err != nil {
		return err
	}
	_, err = m.classifier.Classify(ctx, repo, job.Commit)
	return err
}

// HandleIndexFileChange indexes one changed file
func (m *Manager) HandleIndexFileChange(ctx context.Context, job queue.Job) error {
	repo, err := m.repository(job)
	if err != nil {
		return err
	}
	if job.Change == nil {
		return queue.Permanent(errors.New("job carries no change"))
	}

	err = m.indexers[repo.Format].Index(ctx, repo, job.Commit, *job.Change)
	if err != nil {
		return err
	}

	slog.Debug("Indexed change",
		"repository", repo.Name,
		"commit", job.Commit,
		"status", job.Change.Status,
		"path", job.Change.Path,
	)
	return nil
}

// repository resolves the configuration of a job's repository.
// Jobs for repositories that are no longer configured can never succeed.
func (m *Manager) repository(job queue.Job) (*config.RepositoryConfig, error) {
	repo, ok := m.config.GetRepository(job.Repository)
	if !ok {
		return nil, queue.Permanent(fmt.Errorf("unknown repository %q", job.Repository))
	}
	return repo, nil
}
