// Package state contains the per-repository cursors the commit walker persists.
package state

import (
	"context"
	"errors"
	"time"
)

// ErrCursorNotFound is returned when no cursor was stored for a repository yet.
var ErrCursorNotFound = errors.New("cursor not found")

// Cursor is the last commit enumerated by a walk of a repository
type Cursor struct {
	Repository string
	Commit     string
	UpdatedAt  time.Time
}

// CursorService provides access to the walk cursors.
// Cursors are read from the store on every call and never cached.
//
//go:generate mockgen -destination=mocks/mock_cursor_service.go -package=mocks github.com/stacklok/typings-registry/internal/sync/state CursorService
type CursorService interface {
	// GetCursor returns the cursor of the named repository, or ErrCursorNotFound.
	GetCursor(ctx context.Context, repository string) (*Cursor, error)
	// UpdateCursor stores commit as the cursor of the named repository.
	UpdateCursor(ctx context.Context, repository, commit string) error
	// DeleteCursor removes the cursor so the next walk applies the startFrom policy.
	// Deleting a missing cursor returns ErrCursorNotFound.
	DeleteCursor(ctx context.Context, repository string) error
}
