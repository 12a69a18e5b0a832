package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/typings-registry/internal/catalog"
	"github.com/stacklok/typings-registry/internal/config"
	"github.com/stacklok/typings-registry/internal/db"
	"github.com/stacklok/typings-registry/internal/git"
	"github.com/stacklok/typings-registry/internal/indexer"
	"github.com/stacklok/typings-registry/internal/queue"
	pkgsync "github.com/stacklok/typings-registry/internal/sync"
	"github.com/stacklok/typings-registry/internal/sync/coordinator"
	"github.com/stacklok/typings-registry/internal/sync/state"
	"github.com/stacklok/typings-registry/internal/telemetry"
)

// IndexerAppOptions is a function that configures the indexer app builder
type IndexerAppOptions func(*indexerAppConfig) error

// indexerAppConfig collects the inputs of NewIndexerApp.
// It supports dependency injection for testing while providing production defaults.
type indexerAppConfig struct {
	config *config.Config

	// Optional component overrides (primarily for testing)
	pool       *pgxpool.Pool
	repository git.Repository

	drainTimeout time.Duration

	// Telemetry components
	meterProvider metric.MeterProvider
	tracer        trace.Tracer
}

func baseConfig(opts ...IndexerAppOptions) (*indexerAppConfig, error) {
	cfg := &indexerAppConfig{}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.config == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	return cfg, nil
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) IndexerAppOptions {
	return func(cfg *indexerAppConfig) error {
		cfg.config = c
		return nil
	}
}

// WithPool uses an existing connection pool instead of opening one from the
// database configuration. The caller keeps ownership of the pool.
func WithPool(pool *pgxpool.Pool) IndexerAppOptions {
	return func(cfg *indexerAppConfig) error {
		if pool == nil {
			return fmt.Errorf("pool cannot be nil")
		}
		cfg.pool = pool
		return nil
	}
}

// WithGitRepository sets the version-control collaborator
func WithGitRepository(repo git.Repository) IndexerAppOptions {
	return func(cfg *indexerAppConfig) error {
		cfg.repository = repo
		return nil
	}
}

// WithDrainTimeout sets how long in-flight jobs may run after shutdown begins
func WithDrainTimeout(d time.Duration) IndexerAppOptions {
	return func(cfg *indexerAppConfig) error {
		if d < 0 {
			return fmt.Errorf("drain timeout cannot be negative")
		}
		cfg.drainTimeout = d
		return nil
	}
}

// WithMeterProvider sets the meter provider for job and catalog metrics
func WithMeterProvider(mp metric.MeterProvider) IndexerAppOptions {
	return func(cfg *indexerAppConfig) error {
		cfg.meterProvider = mp
		return nil
	}
}

// WithTracer sets the tracer for job and catalog spans
func WithTracer(tracer trace.Tracer) IndexerAppOptions {
	return func(cfg *indexerAppConfig) error {
		cfg.tracer = tracer
		return nil
	}
}

// NewIndexerApp builds the indexer application from the given options
func NewIndexerApp(ctx context.Context, opts ...IndexerAppOptions) (*IndexerApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}

	cleanup := func() {}
	if cfg.pool == nil {
		pool, err := db.NewPool(ctx, cfg.config.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		cfg.pool = pool
		cleanup = pool.Close
	}

	components, err := buildComponents(cfg)
	if err != nil {
		cleanup()
		return nil, err
	}

	appCtx, cancel := context.WithCancel(ctx)

	return &IndexerApp{
		config:     cfg.config,
		components: components,
		ctx:        appCtx,
		cancelFunc: cancel,
		cleanup:    cleanup,
		done:       make(chan struct{}),
	}, nil
}

// buildComponents wires the pipeline stages on top of the database pool
func buildComponents(cfg *indexerAppConfig) (*AppComponents, error) {
	jobMetrics, err := telemetry.NewJobMetrics(cfg.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create job metrics: %w", err)
	}
	catalogMetrics, err := telemetry.NewCatalogMetrics(cfg.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog metrics: %w", err)
	}

	repo := cfg.repository
	if repo == nil {
		repo = git.NewRepository()
	}

	queueCfg := cfg.config.Queue
	store := queue.NewDBQueue(cfg.pool,
		queue.WithMaxAttempts(queueCfg.GetMaxAttempts()),
		queue.WithLease(queueCfg.GetLease()),
	)
	catalogStore := catalog.NewDBStore(cfg.pool,
		catalog.WithMetrics(catalogMetrics),
		catalog.WithTracer(cfg.tracer),
	)
	cursors := state.NewDBCursorService(cfg.pool)

	indexers := make(map[string]indexer.Indexer)
	for _, r := range cfg.config.Repositories {
		if _, ok := indexers[r.Format]; ok {
			continue
		}
		idx, err := indexer.New(r.Format, repo, catalogStore)
		if err != nil {
			return nil, fmt.Errorf("repository %s: %w", r.Name, err)
		}
		indexers[r.Format] = idx
	}

	manager, err := pkgsync.NewManager(cfg.config, repo, store, cursors, indexers)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync manager: %w", err)
	}

	worker := queue.NewWorker(store,
		queue.WithConcurrency(queueCfg.GetWorkers()),
		queue.WithPollInterval(queueCfg.GetPollInterval()),
		queue.WithDrainTimeout(cfg.drainTimeout),
		queue.WithJobMetrics(jobMetrics),
		queue.WithTracer(cfg.tracer),
	)
	manager.Register(worker)

	slog.Info("Indexer components created", "repository_count", len(cfg.config.Repositories))

	return &AppComponents{
		Coordinator: coordinator.New(store, cfg.config.Repositories),
		Worker:      worker,
		Queue:       store,
		Catalog:     catalogStore,
		Cursors:     cursors,
	}, nil
}
