package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// JobMetricsMeterName is the name used for the job queue metrics meter
	JobMetricsMeterName = "github.com/stacklok/typings-registry/queue"

	// CatalogMetricsMeterName is the name used for the catalog metrics meter
	CatalogMetricsMeterName = "github.com/stacklok/typings-registry/catalog"
)

// JobMetrics holds the OpenTelemetry instruments for job processing
type JobMetrics struct {
	jobDuration metric.Float64Histogram
	jobsDropped metric.Int64Counter
}

// NewJobMetrics creates a new JobMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewJobMetrics(provider metric.MeterProvider) (*JobMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(JobMetricsMeterName)

	jobDuration, err := meter.Float64Histogram(
		"typings_registry_job_duration_seconds",
		metric.WithDescription("Duration of job handling in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300),
	)
	if err != nil {
		return nil, err
	}

	jobsDropped, err := meter.Int64Counter(
		"typings_registry_jobs_dropped_total",
		metric.WithDescription("Jobs removed from the queue without succeeding"),
		metric.WithUnit("{job}"),
	)
	if err != nil {
		return nil, err
	}

	return &JobMetrics{
		jobDuration: jobDuration,
		jobsDropped: jobsDropped,
	}, nil
}

// RecordJobDuration records how long handling one job delivery took
func (m *JobMetrics) RecordJobDuration(ctx context.Context, kind, repository string, duration time.Duration, success bool) {
	if m == nil || m.jobDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("kind", kind),
		attribute.String("repository", repository),
		attribute.Bool("success", success),
	}

	m.jobDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordJobDropped counts a job that failed permanently or ran out of attempts
func (m *JobMetrics) RecordJobDropped(ctx context.Context, kind string, permanent bool) {
	if m == nil || m.jobsDropped == nil {
		return
	}

	m.jobsDropped.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.Bool("permanent", permanent),
	))
}

// CatalogMetrics holds the OpenTelemetry instruments for catalog writes
type CatalogMetrics struct {
	versionsWritten metric.Int64Counter
	versionsDeleted metric.Int64Counter
	staleWrites     metric.Int64Counter
}

// NewCatalogMetrics creates a new CatalogMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewCatalogMetrics(provider metric.MeterProvider) (*CatalogMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(CatalogMetricsMeterName)

	versionsWritten, err := meter.Int64Counter(
		"typings_registry_versions_written_total",
		metric.WithDescription("Version rows inserted or overwritten"),
		metric.WithUnit("{version}"),
	)
	if err != nil {
		return nil, err
	}

	versionsDeleted, err := meter.Int64Counter(
		"typings_registry_versions_deleted_total",
		metric.WithDescription("Version rows removed by tombstones"),
		metric.WithUnit("{version}"),
	)
	if err != nil {
		return nil, err
	}

	staleWrites, err := meter.Int64Counter(
		"typings_registry_stale_writes_total",
		metric.WithDescription("Writes skipped because the stored row was at least as fresh"),
		metric.WithUnit("{write}"),
	)
	if err != nil {
		return nil, err
	}

	return &CatalogMetrics{
		versionsWritten: versionsWritten,
		versionsDeleted: versionsDeleted,
		staleWrites:     staleWrites,
	}, nil
}

// RecordVersionsWritten counts version rows written for a source
func (m *CatalogMetrics) RecordVersionsWritten(ctx context.Context, source string, count int64) {
	if m == nil || m.versionsWritten == nil || count == 0 {
		return
	}
	m.versionsWritten.Add(ctx, count, metric.WithAttributes(attribute.String("source", source)))
}

// RecordVersionsDeleted counts version rows deleted for a source
func (m *CatalogMetrics) RecordVersionsDeleted(ctx context.Context, source string, count int64) {
	if m == nil || m.versionsDeleted == nil || count == 0 {
		return
	}
	m.versionsDeleted.Add(ctx, count, metric.WithAttributes(attribute.String("source", source)))
}

// RecordStaleWrite counts a write skipped by the timestamp guard. Table is entries or versions.
func (m *CatalogMetrics) RecordStaleWrite(ctx context.Context, source, table string) {
	if m == nil || m.staleWrites == nil {
		return
	}
	m.staleWrites.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("table", table),
	))
}
