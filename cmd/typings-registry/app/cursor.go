package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/stacklok/typings-registry/internal/db"
	"github.com/stacklok/typings-registry/internal/sync/state"
)

func newCursorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cursor",
		Short: "Inspect or move the commit walk cursors",
		Long: `The cursor of a repository is the last commit a walk enumerated. The next walk
enqueues the commits after it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Usage()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <repository>",
		Short: "Print the cursor of a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCursors(cmd, args[0], func(ctx context.Context, cursors state.CursorService) error {
				cursor, err := cursors.GetCursor(ctx, args[0])
				if errors.Is(err, state.ErrCursorNotFound) {
					_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: no cursor, the next walk applies the startFrom policy\n", args[0])
					return err
				}
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (updated %s)\n",
					cursor.Repository, cursor.Commit, cursor.UpdatedAt.UTC().Format(time.RFC3339))
				return err
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <repository> <commit>",
		Short: "Move the cursor of a repository to a commit",
		Long: `Move the cursor of a repository. Commits after the given one are enqueued by the
next walk, so moving the cursor back replays history into the catalog.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCursors(cmd, args[0], func(ctx context.Context, cursors state.CursorService) error {
				return cursors.UpdateCursor(ctx, args[0], args[1])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset <repository>",
		Short: "Remove the cursor so the next walk applies the startFrom policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCursors(cmd, args[0], func(ctx context.Context, cursors state.CursorService) error {
				err := cursors.DeleteCursor(ctx, args[0])
				if errors.Is(err, state.ErrCursorNotFound) {
					return nil
				}
				return err
			})
		},
	})

	return cmd
}

// withCursors validates the repository name against the configuration and runs fn
// with a cursor service on a fresh pool
func withCursors(
	cmd *cobra.Command,
	repository string,
	fn func(ctx context.Context, cursors state.CursorService) error,
) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if _, ok := cfg.GetRepository(repository); !ok {
		return fmt.Errorf("unknown repository: %s", repository)
	}

	ctx := cmd.Context()
	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(ctx, state.NewDBCursorService(pool))
}
