package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/stacklok/typings-registry/database"
	indexerapp "github.com/stacklok/typings-registry/internal/app"
	"github.com/stacklok/typings-registry/internal/config"
	"github.com/stacklok/typings-registry/internal/telemetry"
	"github.com/stacklok/typings-registry/internal/versions"
)

const (
	defaultGracefulTimeout = 30 * time.Second
	telemetryFlushTimeout  = 10 * time.Second

	// releaseMargin gives interrupted jobs time to be released after the drain timeout
	releaseMargin = 10 * time.Second
)

func newWorkerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the sync coordinator and the queue workers",
		Long: `Run the indexing pipeline. The sync coordinator periodically enqueues a commit walk
for every configured repository, and the workers process walk, classification and
indexing jobs until the process receives SIGINT or SIGTERM.

Several worker processes can share one database; jobs are claimed exclusively.`,
		RunE: runWorker,
	}
	cmd.Flags().Bool("migrate", false, "Apply pending database migrations before starting")
	cmd.Flags().Duration("graceful-timeout", defaultGracefulTimeout, "Maximum time to wait for in-flight jobs on shutdown")
	return cmd
}

func runWorker(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	migrateFirst, err := cmd.Flags().GetBool("migrate")
	if err != nil {
		return fmt.Errorf("failed to get migrate flag: %w", err)
	}
	gracefulTimeout, err := cmd.Flags().GetDuration("graceful-timeout")
	if err != nil {
		return fmt.Errorf("failed to get graceful-timeout flag: %w", err)
	}

	if migrateFirst {
		if err := applyMigrations(cfg); err != nil {
			return err
		}
	}

	tel, err := telemetry.New(ctx, cfg.Telemetry, versions.GetBuildInfo().Version)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), telemetryFlushTimeout)
		defer cancel()
		if err := tel.Shutdown(flushCtx); err != nil {
			slog.Error("Failed to shutdown telemetry", "error", err)
		}
	}()

	indexer, err := indexerapp.NewIndexerApp(ctx,
		indexerapp.WithConfig(cfg),
		indexerapp.WithDrainTimeout(gracefulTimeout),
		indexerapp.WithMeterProvider(tel.MeterProvider()),
		indexerapp.WithTracer(tel.Tracer()),
	)
	if err != nil {
		return fmt.Errorf("failed to create indexer: %w", err)
	}

	slog.Info("Starting typings registry indexer", "version", versions.GetBuildInfo().Version)

	errCh := make(chan error, 1)
	go func() {
		errCh <- indexer.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			_ = indexer.Stop(gracefulTimeout + releaseMargin)
			return err
		}
	case <-ctx.Done():
	}

	return indexer.Stop(gracefulTimeout + releaseMargin)
}

func applyMigrations(cfg *config.Config) error {
	if cfg.Database == nil {
		return fmt.Errorf("database configuration is required")
	}
	connString, err := cfg.Database.GetConnectionString()
	if err != nil {
		return fmt.Errorf("failed to build connection string: %w", err)
	}

	slog.Info("Applying database migrations...")
	if err := database.MigrateUp(connString); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
