package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"

	"github.com/stacklok/typings-registry/internal/db/pgtypes"
	"github.com/stacklok/typings-registry/internal/db/sqlc"
)

const (
	defaultMaxAttempts  = 5
	defaultLease        = 5 * time.Minute
	defaultInitialDelay = 5 * time.Second
	defaultMaxDelay     = 10 * time.Minute
	maxErrorLength      = 2048
)

// dbQueue implements Store on the jobs table
type dbQueue struct {
	pool         *pgxpool.Pool
	maxAttempts  int
	lease        time.Duration
	initialDelay time.Duration
	maxDelay     time.Duration
	now          func() time.Time
}

// Option configures the database queue
type Option func(*dbQueue)

// WithMaxAttempts sets how many deliveries a job gets before it is dropped
func WithMaxAttempts(n int) Option {
	return func(q *dbQueue) {
		if n > 0 {
			q.maxAttempts = n
		}
	}
}

// WithLease sets how long a claimed job stays invisible to other workers.
// A job whose lease expires without acknowledgement is delivered again.
func WithLease(d time.Duration) Option {
	return func(q *dbQueue) {
		if d > 0 {
			q.lease = d
		}
	}
}

// WithRetryDelay sets the bounds of the exponential redelivery delay
func WithRetryDelay(initial, maxDelay time.Duration) Option {
	return func(q *dbQueue) {
		if initial > 0 {
			q.initialDelay = initial
		}
		if maxDelay > 0 {
			q.maxDelay = maxDelay
		}
	}
}

// NewDBQueue creates a Store backed by the jobs table
func NewDBQueue(pool *pgxpool.Pool, opts ...Option) Store {
	q := &dbQueue{
		pool:         pool,
		maxAttempts:  defaultMaxAttempts,
		lease:        defaultLease,
		initialDelay: defaultInitialDelay,
		maxDelay:     defaultMaxDelay,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *dbQueue) Enqueue(ctx context.Context, job Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(withTraceContext(ctx, otel.GetTextMapPropagator(), job))
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}

	var uniqueKey *string
	if key := job.UniqueKey(); key != "" {
		uniqueKey = &key
	}

	inserted, err := sqlc.New(q.pool).InsertJob(ctx, sqlc.InsertJobParams{
		ID:          uuid.New(),
		Kind:        string(job.Kind),
		Payload:     payload,
		UniqueKey:   uniqueKey,
		MaxAttempts: int32(q.maxAttempts), //nolint:gosec // bounded by configuration
	})
	if err != nil {
		return fmt.Errorf("failed to enqueue %s job: %w", job.Kind, err)
	}
	if inserted == 0 {
		slog.Debug("Job already queued", "kind", job.Kind, "unique_key", *uniqueKey)
	}
	return nil
}

func (q *dbQueue) Claim(ctx context.Context) (*Delivery, error) {
	queries := sqlc.New(q.pool)

	for {
		row, err := queries.ClaimJob(ctx, pgtypes.NewInterval(q.lease))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to claim job: %w", err)
		}

		var job Job
		if err := json.Unmarshal(row.Payload, &job); err != nil {
			// an undecodable payload can never succeed
			slog.Error("Dropping job with invalid payload", "id", row.ID, "kind", row.Kind, "error", err)
			if err := queries.DeleteJob(ctx, row.ID); err != nil {
				return nil, fmt.Errorf("failed to drop job %s: %w", row.ID, err)
			}
			continue
		}

		return &Delivery{
			ID:          row.ID,
			Job:         job,
			Attempt:     int(row.Attempts),
			MaxAttempts: int(row.MaxAttempts),
		}, nil
	}
}

func (q *dbQueue) Complete(ctx context.Context, d *Delivery) error {
	if err := sqlc.New(q.pool).DeleteJob(ctx, d.ID); err != nil {
		return fmt.Errorf("failed to complete job %s: %w", d.ID, err)
	}
	return nil
}

func (q *dbQueue) Fail(ctx context.Context, d *Delivery, cause error) (bool, error) {
	queries := sqlc.New(q.pool)

	if IsPermanent(cause) || d.LastAttempt() {
		if err := queries.DeleteJob(ctx, d.ID); err != nil {
			return false, fmt.Errorf("failed to drop job %s: %w", d.ID, err)
		}
		return true, nil
	}

	message := cause.Error()
	if len(message) > maxErrorLength {
		message = strings.ToValidUTF8(message[:maxErrorLength], "")
	}

	err := queries.RescheduleJob(ctx, sqlc.RescheduleJobParams{
		RunAt:     q.now().Add(q.retryDelay(d.Attempt)),
		LastError: &message,
		ID:        d.ID,
	})
	if err != nil {
		return false, fmt.Errorf("failed to reschedule job %s: %w", d.ID, err)
	}
	return false, nil
}

func (q *dbQueue) Release(ctx context.Context, d *Delivery) error {
	if err := sqlc.New(q.pool).ReleaseJob(ctx, d.ID); err != nil {
		return fmt.Errorf("failed to release job %s: %w", d.ID, err)
	}
	return nil
}

func (q *dbQueue) Pending(ctx context.Context, kind Kind) (int64, error) {
	count, err := sqlc.New(q.pool).CountJobsByKind(ctx, string(kind))
	if err != nil {
		return 0, fmt.Errorf("failed to count %s jobs: %w", kind, err)
	}
	return count, nil
}

// retryDelay returns the backoff before the delivery following attempt
func (q *dbQueue) retryDelay(attempt int) time.Duration {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     q.initialDelay,
		RandomizationFactor: backoff.DefaultRandomizationFactor,
		Multiplier:          backoff.DefaultMultiplier,
		MaxInterval:         q.maxDelay,
	}
	b.Reset()

	delay := q.initialDelay
	for range max(attempt, 1) {
		delay = b.NextBackOff()
	}
	return delay
}
