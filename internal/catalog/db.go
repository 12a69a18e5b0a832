package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/typings-registry/internal/db/sqlc"
	"github.com/stacklok/typings-registry/internal/otel"
	"github.com/stacklok/typings-registry/internal/telemetry"
)

const (
	tableEntries  = "entries"
	tableVersions = "versions"
)

// dbStore implements Store on PostgreSQL
type dbStore struct {
	pool    *pgxpool.Pool
	metrics *telemetry.CatalogMetrics
	tracer  trace.Tracer
}

// Option configures the database store
type Option func(*dbStore)

// WithMetrics sets the catalog metrics. Nil disables metrics.
func WithMetrics(m *telemetry.CatalogMetrics) Option {
	return func(s *dbStore) {
		s.metrics = m
	}
}

// WithTracer sets the tracer for catalog spans. Nil disables tracing.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *dbStore) {
		s.tracer = tracer
	}
}

// NewDBStore creates a Store backed by the given pool.
// The caller is responsible for closing the pool when done.
func NewDBStore(pool *pgxpool.Pool, opts ...Option) Store {
	s := &dbStore{pool: pool}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *dbStore) UpsertEntry(ctx context.Context, entry EntryUpsert) (result UpsertResult, err error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "catalog.UpsertEntry",
		trace.WithAttributes(
			otel.AttrEntrySource.String(entry.Source),
			otel.AttrEntryName.String(entry.Name),
		),
	)
	defer func() {
		otel.RecordError(span, err)
		span.End()
	}()

	return s.upsertEntry(ctx, sqlc.New(s.pool), entry)
}

func (s *dbStore) upsertEntry(ctx context.Context, queries *sqlc.Queries, entry EntryUpsert) (UpsertResult, error) {
	id, err := queries.UpsertEntry(ctx, sqlc.UpsertEntryParams{
		Name:     entry.Name,
		Source:   entry.Source,
		Homepage: optional(entry.Homepage),
		Updated:  entry.Updated,
	})
	if err == nil {
		return UpsertResult{EntryID: id, Applied: true}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return UpsertResult{}, fmt.Errorf("failed to upsert entry %s/%s: %w", entry.Source, entry.Name, err)
	}

	// the stored entry is at least as fresh
	s.metrics.RecordStaleWrite(ctx, entry.Source, tableEntries)
	existing, err := queries.GetEntryByNameSource(ctx, sqlc.GetEntryByNameSourceParams{
		Name:   entry.Name,
		Source: entry.Source,
	})
	if err != nil {
		return UpsertResult{}, fmt.Errorf("failed to get entry %s/%s: %w", entry.Source, entry.Name, err)
	}

	slog.Debug("Skipped stale entry write",
		"source", entry.Source,
		"name", entry.Name,
		"updated", entry.Updated,
		"stored", existing.Updated,
	)
	return UpsertResult{EntryID: existing.ID, Applied: false}, nil
}

func (s *dbStore) UpsertVersion(ctx context.Context, source string, version Version) (written bool, err error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "catalog.UpsertVersion",
		trace.WithAttributes(otel.AttrEntrySource.String(source)),
	)
	defer func() {
		otel.RecordError(span, err)
		span.End()
	}()

	rows, err := upsertVersion(ctx, sqlc.New(s.pool), version)
	if err != nil {
		return false, err
	}

	if rows == 0 {
		s.metrics.RecordStaleWrite(ctx, source, tableVersions)
		return false, nil
	}
	s.metrics.RecordVersionsWritten(ctx, source, rows)
	return true, nil
}

func (s *dbStore) UpsertEntryWithVersions(
	ctx context.Context,
	entry EntryUpsert,
	versions []Version,
) (result UpsertResult, err error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "catalog.UpsertEntryWithVersions",
		trace.WithAttributes(
			otel.AttrEntrySource.String(entry.Source),
			otel.AttrEntryName.String(entry.Name),
		),
	)
	defer func() {
		otel.RecordError(span, err)
		span.End()
	}()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return UpsertResult{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	queries := sqlc.New(tx)

	result, err = s.upsertEntry(ctx, queries, entry)
	if err != nil || !result.Applied {
		return result, err
	}

	var written, stale int64
	for _, v := range versions {
		v.EntryID = result.EntryID
		rows, err := upsertVersion(ctx, queries, v)
		if err != nil {
			return UpsertResult{}, err
		}
		if rows == 0 {
			stale++
		}
		written += rows
	}

	if err := tx.Commit(ctx); err != nil {
		return UpsertResult{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	for range stale {
		s.metrics.RecordStaleWrite(ctx, entry.Source, tableVersions)
	}
	s.metrics.RecordVersionsWritten(ctx, entry.Source, written)
	return result, nil
}

func upsertVersion(ctx context.Context, queries *sqlc.Queries, version Version) (int64, error) {
	rows, err := queries.UpsertVersion(ctx, sqlc.UpsertVersionParams{
		EntryID:     version.EntryID,
		Version:     version.Version,
		Location:    version.Location,
		Compiler:    optional(version.Compiler),
		Description: optional(version.Description),
		Updated:     version.Updated,
		DedupeKey:   version.DedupeKey,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upsert version %s of entry %d: %w", version.Version, version.EntryID, err)
	}
	return rows, nil
}

func (s *dbStore) DeleteVersionsByLocation(
	ctx context.Context,
	source, prefix string,
	before time.Time,
) (int64, error) {
	return s.deleteVersions(ctx, "catalog.DeleteVersionsByLocation", source, before,
		func(ctx context.Context, q *sqlc.Queries) ([]int64, error) {
			return q.DeleteVersionsByLocation(ctx, sqlc.DeleteVersionsByLocationParams{
				Pattern: escapeLike(prefix) + "%",
				Updated: before,
			})
		})
}

func (s *dbStore) DeleteVersionsByEntry(ctx context.Context, name, source string, before time.Time) (int64, error) {
	return s.deleteVersions(ctx, "catalog.DeleteVersionsByEntry", source, before,
		func(ctx context.Context, q *sqlc.Queries) ([]int64, error) {
			return q.DeleteVersionsByEntry(ctx, sqlc.DeleteVersionsByEntryParams{
				Name:    name,
				Source:  source,
				Updated: before,
			})
		})
}

// deleteVersions runs del and deactivates the entries it emptied in one transaction
func (s *dbStore) deleteVersions(
	ctx context.Context,
	spanName, source string,
	before time.Time,
	del func(context.Context, *sqlc.Queries) ([]int64, error),
) (deleted int64, err error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, spanName,
		trace.WithAttributes(otel.AttrEntrySource.String(source)),
	)
	defer func() {
		span.SetAttributes(otel.AttrRowCount.Int64(deleted))
		otel.RecordError(span, err)
		span.End()
	}()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	queries := sqlc.New(tx)

	entryIDs, err := del(ctx, queries)
	if err != nil {
		return 0, fmt.Errorf("failed to delete versions: %w", err)
	}

	if len(entryIDs) > 0 {
		ids := slices.Clone(entryIDs)
		slices.Sort(ids)
		ids = slices.Compact(ids)

		deactivated, err := queries.DeactivateEmptyEntries(ctx, sqlc.DeactivateEmptyEntriesParams{
			Updated: before,
			Ids:     ids,
		})
		if err != nil {
			return 0, fmt.Errorf("failed to deactivate empty entries: %w", err)
		}
		if deactivated > 0 {
			slog.Debug("Deactivated entries without versions", "source", source, "count", deactivated)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	deleted = int64(len(entryIDs))
	s.metrics.RecordVersionsDeleted(ctx, source, deleted)
	return deleted, nil
}

func (s *dbStore) GetEntry(ctx context.Context, name, source string) (*Entry, error) {
	row, err := sqlc.New(s.pool).GetEntryByNameSource(ctx, sqlc.GetEntryByNameSourceParams{
		Name:   name,
		Source: source,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry %s/%s: %w", source, name, err)
	}

	return &Entry{
		ID:       row.ID,
		Name:     row.Name,
		Source:   row.Source,
		Homepage: deref(row.Homepage),
		Active:   row.Active,
		Updated:  row.Updated,
	}, nil
}

func (s *dbStore) ListVersions(ctx context.Context, entryID int64) ([]Version, error) {
	rows, err := sqlc.New(s.pool).ListVersionsByEntry(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions of entry %d: %w", entryID, err)
	}

	result := make([]Version, 0, len(rows))
	for _, row := range rows {
		result = append(result, Version{
			EntryID:     row.EntryID,
			Version:     row.Version,
			Location:    row.Location,
			Compiler:    deref(row.Compiler),
			Description: deref(row.Description),
			Updated:     row.Updated,
			DedupeKey:   row.DedupeKey,
		})
	}
	return result, nil
}

// rollback ends tx unless it was committed
func rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		slog.Warn("Failed to roll back catalog transaction", "error", err)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike quotes the LIKE wildcards of s so it matches literally
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
