package git

import (
	"context"
	"errors"
	"time"
)

// Status is the kind of change a commit applied to a file
type Status string

const (
	// StatusAdded marks a file that did not exist in the parent commit
	StatusAdded Status = "A"
	// StatusModified marks a file whose content changed
	StatusModified Status = "M"
	// StatusDeleted marks a file removed by the commit
	StatusDeleted Status = "D"
)

// IsDeleted reports whether the status is a removal
func (s Status) IsDeleted() bool {
	return s == StatusDeleted
}

// Change is one file touched by a commit
type Change struct {
	Status Status `json:"status"`
	Path   string `json:"path"`
}

// ErrCommitNotFound is returned when a commit hash does not resolve in the mirror
var ErrCommitNotFound = errors.New("commit not found")

//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks -source=types.go Repository

// Repository is the version control collaborator of the indexing pipeline.
// Every operation takes the path of the local mirror it acts on.
type Repository interface {
	// EnsureFresh refreshes the mirror at path from remoteURL unless it was refreshed within maxAge
	EnsureFresh(ctx context.Context, path, remoteURL string, maxAge time.Duration) error

	// Head returns the commit HEAD points to
	Head(ctx context.Context, path string) (string, error)

	// CommitsSince lists the commits reachable from HEAD but not from since, oldest first.
	// An empty since lists the complete history.
	CommitsSince(ctx context.Context, path, since string) ([]string, error)

	// ChangedFiles lists the files a commit changed relative to its first parent
	ChangedFiles(ctx context.Context, path, commit string) ([]Change, error)

	// FileContent reads at most maxBytes of the file rel as of commit
	FileContent(ctx context.Context, path, rel, commit string, maxBytes int64) ([]byte, error)

	// CommitTimestamp returns the committer time of a commit
	CommitTimestamp(ctx context.Context, path, commit string) (time.Time, error)
}
