package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stacklok/typings-registry/internal/config"
	"github.com/stacklok/typings-registry/internal/git"
	"github.com/stacklok/typings-registry/internal/queue"
)

// Walker enumerates new commits of a repository and fans out one index-commit job per commit
type Walker struct {
	repo  git.Repository
	queue queue.Queue
}

// NewWalker creates a Walker
func NewWalker(repo git.Repository, q queue.Queue) *Walker {
	return &Walker{repo: repo, queue: q}
}

// Walk enqueues the commits after since, oldest first, and returns the new cursor.
// The cursor is the last commit enqueued, or since when there is nothing new.
// Without a cursor the repository start policy applies: beginning walks the whole
// history, head only records HEAD.
func (w *Walker) Walk(ctx context.Context, cfg *config.RepositoryConfig, since string) (string, error) {
	if err := w.repo.EnsureFresh(ctx, cfg.Path, cfg.URL, cfg.GetPollTimeout()); err != nil {
		return "", fmt.Errorf("failed to refresh repository %s: %w", cfg.Name, err)
	}

	if since == "" && cfg.GetStartFrom() == config.StartFromHead {
		head, err := w.repo.Head(ctx, cfg.Path)
		if err != nil {
			return "", fmt.Errorf("failed to resolve HEAD of %s: %w", cfg.Name, err)
		}
		slog.Info("No cursor stored, starting from HEAD", "repository", cfg.Name, "commit", head)
		return head, nil
	}

	commits, err := w.repo.CommitsSince(ctx, cfg.Path, since)
	if errors.Is(err, git.ErrCommitNotFound) && since != "" {
		// the cursor commit disappeared from the remote history, e.g. after a force push
		slog.Warn("Cursor commit not found, restarting walk",
			"repository", cfg.Name,
			"commit", since,
			"start_from", cfg.GetStartFrom(),
		)
		return w.Walk(ctx, cfg, "")
	}
	if err != nil {
		return "", fmt.Errorf("failed to list commits of %s: %w", cfg.Name, err)
	}

	for _, commit := range commits {
		if err := w.queue.Enqueue(ctx, queue.NewIndexCommitJob(cfg.Name, commit)); err != nil {
			return "", fmt.Errorf("failed to enqueue commit %s: %w", commit, err)
		}
	}

	if len(commits) == 0 {
		slog.Debug("No new commits", "repository", cfg.Name, "since", since)
		return since, nil
	}

	cursor := commits[len(commits)-1]
	slog.Info("Enqueued commits", "repository", cfg.Name, "count", len(commits), "cursor", cursor)
	return cursor, nil
}
