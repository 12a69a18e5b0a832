// Package catalog persists type-definition entries and their versions.
//
// Every write is guarded by a timestamp comparison so replayed or reordered
// work units never regress the catalog to older data.
package catalog

import (
	"context"
	"errors"
	"time"
)

// Sources of catalog entries. Typings entries use the first path segment of
// their record as source, DefinitelyTyped entries always use SourceDT.
const (
	SourceDT = "dt"
)

// ErrEntryNotFound is returned when no entry matches a name and source
var ErrEntryNotFound = errors.New("entry not found")

// Entry is a package known to the catalog
type Entry struct {
	ID       int64
	Name     string
	Source   string
	Homepage string
	Active   bool
	Updated  time.Time
}

// Version is one published version of an entry
type Version struct {
	EntryID     int64
	Version     string
	Location    string
	Compiler    string
	Description string
	Updated     time.Time
	DedupeKey   string
}

// EntryUpsert carries the fields of an entry write
type EntryUpsert struct {
	Name     string
	Source   string
	Homepage string
	Updated  time.Time
}

// UpsertResult reports the outcome of an entry write. EntryID is set even when
// the write was not applied because the stored entry was at least as fresh.
type UpsertResult struct {
	EntryID int64
	Applied bool
}

// Writer is the write side of the catalog used by the indexers
//
//go:generate mockgen -destination=mocks/mock_writer.go -package=mocks github.com/stacklok/typings-registry/internal/catalog Writer
type Writer interface {
	// UpsertEntry creates the entry or refreshes it when Updated is strictly newer
	UpsertEntry(ctx context.Context, entry EntryUpsert) (UpsertResult, error)

	// UpsertVersion inserts the version or overwrites the stored one unless it is newer.
	// It reports whether a row was written.
	UpsertVersion(ctx context.Context, source string, version Version) (bool, error)

	// UpsertEntryWithVersions writes the entry and, when the entry write applies, every
	// version in one transaction. The EntryID of each version is set by the store.
	// A failure leaves neither the entry nor any version written.
	UpsertEntryWithVersions(ctx context.Context, entry EntryUpsert, versions []Version) (UpsertResult, error)

	// DeleteVersionsByLocation removes versions whose location starts with prefix and
	// whose timestamp is older than before. Entries left without versions are deactivated.
	DeleteVersionsByLocation(ctx context.Context, source, prefix string, before time.Time) (int64, error)

	// DeleteVersionsByEntry removes the versions of an entry older than before.
	// The entry is deactivated when no version remains.
	DeleteVersionsByEntry(ctx context.Context, name, source string, before time.Time) (int64, error)
}

// Reader is the read side used by operators and tests
type Reader interface {
	GetEntry(ctx context.Context, name, source string) (*Entry, error)
	ListVersions(ctx context.Context, entryID int64) ([]Version, error)
}

// Store combines both sides of the catalog
type Store interface {
	Writer
	Reader
}
