// Package indexer turns changed files of a tracked repository into catalog writes.
//
// Each repository format has its own indexer. An indexer handles one file change
// of one commit; the commit timestamp is the version of every row it writes, so
// replayed and reordered changes converge on the same catalog state.
package indexer

import (
	"context"
	"fmt"
	"time"

	"github.com/stacklok/typings-registry/internal/catalog"
	"github.com/stacklok/typings-registry/internal/config"
	"github.com/stacklok/typings-registry/internal/git"
)

// Indexer applies one file change of a commit to the catalog
//
//go:generate mockgen -destination=mocks/mock_indexer.go -package=mocks github.com/stacklok/typings-registry/internal/indexer Indexer
type Indexer interface {
	Index(ctx context.Context, repo *config.RepositoryConfig, commit string, change git.Change) error
}

// New creates the indexer for a repository format
func New(format string, repo git.Repository, writer catalog.Writer) (Indexer, error) {
	switch format {
	case config.FormatDefinitelyTyped:
		return NewDTIndexer(repo, writer), nil
	case config.FormatTypings:
		return NewTypingsIndexer(repo, writer), nil
	default:
		return nil, fmt.Errorf("unsupported repository format: %s", format)
	}
}

func refresh(ctx context.Context, repo git.Repository, cfg *config.RepositoryConfig) error {
	if err := repo.EnsureFresh(ctx, cfg.Path, cfg.URL, cfg.GetPollTimeout()); err != nil {
		return fmt.Errorf("failed to refresh repository %s: %w", cfg.Name, err)
	}
	return nil
}

// commitTime resolves the timestamp every write of a change is guarded by
func commitTime(ctx context.Context, repo git.Repository, cfg *config.RepositoryConfig, commit string) (time.Time, error) {
	t, err := repo.CommitTimestamp(ctx, cfg.Path, commit)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get timestamp of commit %s: %w", commit, err)
	}
	return t, nil
}
