package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
)

// mirrorRefSpec keeps local branches identical to the remote ones, so HEAD
// of the bare mirror follows the remote default branch.
const mirrorRefSpec = config.RefSpec("+refs/heads/*:refs/heads/*")

// defaultRepository implements Repository on top of bare go-git mirrors stored on disk
type defaultRepository struct {
	guard *Guard
}

// NewRepository creates a Repository backed by local go-git mirrors
func NewRepository() Repository {
	return &defaultRepository{guard: NewGuard(FetchMirror)}
}

// FetchMirror clones remoteURL as a bare repository at path, or fetches into it when it already exists
func FetchMirror(ctx context.Context, path, remoteURL string) error {
	repo, err := git.PlainOpen(path)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		slog.Info("Cloning mirror", "path", path, "url", remoteURL)
		_, err = git.PlainCloneContext(ctx, path, true, &git.CloneOptions{URL: remoteURL})
		if err != nil {
			return fmt.Errorf("failed to clone repository: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open mirror: %w", err)
	}

	err = repo.FetchContext(ctx, &git.FetchOptions{
		RemoteURL: remoteURL,
		RefSpecs:  []config.RefSpec{mirrorRefSpec},
		Force:     true,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to fetch repository: %w", err)
	}
	return nil
}

// EnsureFresh refreshes the mirror through the guard
func (r *defaultRepository) EnsureFresh(ctx context.Context, path, remoteURL string, maxAge time.Duration) error {
	return r.guard.EnsureFresh(ctx, path, remoteURL, maxAge)
}

// Head returns the commit HEAD resolves to
func (*defaultRepository) Head(_ context.Context, path string) (string, error) {
	repo, err := open(path)
	if err != nil {
		return "", err
	}
	ref, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD reference: %w", err)
	}
	return ref.Hash().String(), nil
}

// CommitsSince lists commits reachable from HEAD that are not ancestors of since, oldest first
func (*defaultRepository) CommitsSince(ctx context.Context, path, since string) ([]string, error) {
	repo, err := open(path)
	if err != nil {
		return nil, err
	}

	ref, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD reference: %w", err)
	}
	head, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD commit: %w", err)
	}

	seen := make(map[plumbing.Hash]bool)
	if since != "" {
		base, err := commitObject(repo, since)
		if err != nil {
			return nil, err
		}
		ancestors := object.NewCommitPreorderIter(base, nil, nil)
		err = ancestors.ForEach(func(c *object.Commit) error {
			seen[c.Hash] = true
			return ctx.Err()
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk ancestors of %s: %w", since, err)
		}
	}

	var commits []string
	iter := object.NewCommitIterCTime(head, seen, nil)
	err = iter.ForEach(func(c *object.Commit) error {
		commits = append(commits, c.Hash.String())
		return ctx.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk commits: %w", err)
	}

	slices.Reverse(commits)
	return commits, nil
}

// ChangedFiles lists the changes of a commit against its first parent.
// A root commit reports every file as added.
func (*defaultRepository) ChangedFiles(ctx context.Context, path, commit string) ([]Change, error) {
	repo, err := open(path)
	if err != nil {
		return nil, err
	}
	c, err := commitObject(repo, commit)
	if err != nil {
		return nil, err
	}

	tree, err := c.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree of %s: %w", commit, err)
	}

	var parentTree *object.Tree
	if c.NumParents() > 0 {
		parent, err := c.Parent(0)
		if err != nil {
			return nil, fmt.Errorf("failed to get parent of %s: %w", commit, err)
		}
		if parentTree, err = parent.Tree(); err != nil {
			return nil, fmt.Errorf("failed to get parent tree of %s: %w", commit, err)
		}
	}

	diff, err := object.DiffTreeContext(ctx, parentTree, tree)
	if err != nil {
		return nil, fmt.Errorf("failed to diff %s: %w", commit, err)
	}

	changes := make([]Change, 0, len(diff))
	for _, d := range diff {
		action, err := d.Action()
		if err != nil {
			return nil, fmt.Errorf("failed to classify change in %s: %w", commit, err)
		}
		switch action {
		case merkletrie.Insert:
			changes = append(changes, Change{Status: StatusAdded, Path: d.To.Name})
		case merkletrie.Modify:
			changes = append(changes, Change{Status: StatusModified, Path: d.To.Name})
		case merkletrie.Delete:
			changes = append(changes, Change{Status: StatusDeleted, Path: d.From.Name})
		}
	}

	slices.SortFunc(changes, func(a, b Change) int {
		return strings.Compare(a.Path, b.Path)
	})
	return changes, nil
}

// FileContent reads at most maxBytes of rel as of commit
func (*defaultRepository) FileContent(_ context.Context, path, rel, commit string, maxBytes int64) ([]byte, error) {
	repo, err := open(path)
	if err != nil {
		return nil, err
	}
	c, err := commitObject(repo, commit)
	if err != nil {
		return nil, err
	}

	file, err := c.File(rel)
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s at %s: %w", rel, commit, err)
	}

	reader, err := file.Reader()
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", rel, err)
	}
	defer reader.Close()

	content, err := io.ReadAll(io.LimitReader(reader, maxBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", rel, err)
	}
	return content, nil
}

// CommitTimestamp returns the committer time of commit
func (*defaultRepository) CommitTimestamp(_ context.Context, path, commit string) (time.Time, error) {
	repo, err := open(path)
	if err != nil {
		return time.Time{}, err
	}
	c, err := commitObject(repo, commit)
	if err != nil {
		return time.Time{}, err
	}
	return c.Committer.When, nil
}

func open(path string) (*git.Repository, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository %s: %w", path, err)
	}
	return repo, nil
}

func commitObject(repo *git.Repository, commit string) (*object.Commit, error) {
	if !plumbing.IsHash(commit) {
		return nil, fmt.Errorf("%w: %q is not a commit hash", ErrCommitNotFound, commit)
	}
	c, err := repo.CommitObject(plumbing.NewHash(commit))
	if errors.Is(err, plumbing.ErrObjectNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrCommitNotFound, commit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get commit %s: %w", commit, err)
	}
	return c, nil
}
