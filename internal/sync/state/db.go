package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stacklok/typings-registry/internal/db/sqlc"
)

type dbCursorService struct {
	pool *pgxpool.Pool
}

// NewDBCursorService creates a new database-backed cursor service
func NewDBCursorService(pool *pgxpool.Pool) CursorService {
	return &dbCursorService{
		pool: pool,
	}
}

func (d *dbCursorService) GetCursor(ctx context.Context, repository string) (*Cursor, error) {
	queries := sqlc.New(d.pool)

	row, err := queries.GetCursor(ctx, repository)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCursorNotFound
		}
		return nil, fmt.Errorf("failed to get cursor of %s: %w", repository, err)
	}

	return &Cursor{
		Repository: row.Repository,
		Commit:     row.CommitHash,
		UpdatedAt:  row.UpdatedAt,
	}, nil
}

func (d *dbCursorService) UpdateCursor(ctx context.Context, repository, commit string) error {
	queries := sqlc.New(d.pool)

	err := queries.UpsertCursor(ctx, sqlc.UpsertCursorParams{
		Repository: repository,
		CommitHash: commit,
	})
	if err != nil {
		return fmt.Errorf("failed to update cursor of %s: %w", repository, err)
	}
	return nil
}

func (d *dbCursorService) DeleteCursor(ctx context.Context, repository string) error {
	queries := sqlc.New(d.pool)

	deleted, err := queries.DeleteCursor(ctx, repository)
	if err != nil {
		return fmt.Errorf("failed to delete cursor of %s: %w", repository, err)
	}
	if deleted == 0 {
		return ErrCursorNotFound
	}
	return nil
}
