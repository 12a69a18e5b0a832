package app

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/stacklok/typings-registry/internal/config"
	"github.com/stacklok/typings-registry/internal/db"
	"github.com/stacklok/typings-registry/internal/queue"
	"github.com/stacklok/typings-registry/internal/sync/coordinator"
)

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync [repository...]",
		Short: "Enqueue a commit walk now",
		Long: `Enqueue a commit walk for the named repositories, or for every configured repository
when none is named. The walk is processed by a running worker. A walk that is
already queued for a repository is not duplicated.`,
		RunE: runSync,
	}
	return cmd
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	repositories, err := selectRepositories(cfg, args)
	if err != nil {
		return err
	}

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := coordinator.Trigger(ctx, queue.NewDBQueue(pool), repositories); err != nil {
		return err
	}

	for _, repo := range repositories {
		slog.Info("Sync triggered", "repository", repo.Name)
	}
	return nil
}

// selectRepositories returns the configured repositories named in names, or all of them
func selectRepositories(cfg *config.Config, names []string) ([]config.RepositoryConfig, error) {
	if len(names) == 0 {
		return cfg.Repositories, nil
	}

	selected := make([]config.RepositoryConfig, 0, len(names))
	for _, name := range names {
		repo, ok := cfg.GetRepository(name)
		if !ok {
			return nil, fmt.Errorf("unknown repository: %s", name)
		}
		if slices.ContainsFunc(selected, func(r config.RepositoryConfig) bool { return r.Name == name }) {
			continue
		}
		selected = append(selected, *repo)
	}
	return selected, nil
}
