package sync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gobwas/glob"

	"github.com/stacklok/typings-registry/internal/config"
	"github.com/stacklok/typings-registry/internal/git"
	"github.com/stacklok/typings-registry/internal/queue"
)

// Classifier filters the files changed by a commit and fans out one
// index-file-change job per relevant file
type Classifier struct {
	repo     git.Repository
	queue    queue.Queue
	patterns map[string]glob.Glob
}

// NewClassifier compiles the relevance pattern of every repository
func NewClassifier(repo git.Repository, q queue.Queue, repositories []config.RepositoryConfig) (*Classifier, error) {
	patterns := make(map[string]glob.Glob, len(repositories))
	for i := range repositories {
		cfg := &repositories[i]
		g, err := CompilePattern(cfg.GetPattern())
		if err != nil {
			return nil, fmt.Errorf("repository %s: %w", cfg.Name, err)
		}
		patterns[cfg.Name] = g
	}
	return &Classifier{repo: repo, queue: q, patterns: patterns}, nil
}

// CompilePattern compiles a relevance glob. "*" stays within a path segment, "**" crosses them.
func CompilePattern(pattern string) (glob.Glob, error) {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return g, nil
}

// Classify enqueues the relevant changes of commit and returns how many matched
func (c *Classifier) Classify(ctx context.Context, cfg *config.RepositoryConfig, commit string) (int, error) {
	pattern, ok := c.patterns[cfg.Name]
	if !ok {
		return 0, queue.Permanent(fmt.Errorf("no pattern for repository %s", cfg.Name))
	}

	if err := c.repo.EnsureFresh(ctx, cfg.Path, cfg.URL, cfg.GetPollTimeout()); err != nil {
		return 0, fmt.Errorf("failed to refresh repository %s: %w", cfg.Name, err)
	}

	changes, err := c.repo.ChangedFiles(ctx, cfg.Path, commit)
	if err != nil {
		return 0, fmt.Errorf("failed to list changes of %s: %w", commit, err)
	}

	matched := 0
	for _, change := range changes {
		if !pattern.Match(change.Path) {
			slog.Debug("Change not matched", "repository", cfg.Name, "commit", commit,
				"status", change.Status, "path", change.Path)
			continue
		}
		slog.Debug("Change matched", "repository", cfg.Name, "commit", commit,
			"status", change.Status, "path", change.Path)

		if err := c.queue.Enqueue(ctx, queue.NewIndexFileChangeJob(cfg.Name, commit, change)); err != nil {
			return matched, fmt.Errorf("failed to enqueue change %s: %w", change.Path, err)
		}
		matched++
	}

	slog.Info("Classified commit", "repository", cfg.Name, "commit", commit,
		"changes", len(changes), "matched", matched)
	return matched, nil
}
