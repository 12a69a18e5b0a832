package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
)

// ErrPermanent marks a job failure that must not be retried
var ErrPermanent = errors.New("permanent job failure")

// Permanent wraps err so the queue drops the job instead of redelivering it
func Permanent(err error) error {
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

// IsPermanent reports whether err was marked with Permanent or backoff.Permanent
func IsPermanent(err error) bool {
	var perm *backoff.PermanentError
	return errors.Is(err, ErrPermanent) || errors.As(err, &perm)
}

// Delivery is one claimed attempt at a job
type Delivery struct {
	ID          uuid.UUID
	Job         Job
	Attempt     int
	MaxAttempts int
}

// LastAttempt reports whether a failure of this delivery exhausts the job
func (d *Delivery) LastAttempt() bool {
	return d.Attempt >= d.MaxAttempts
}

// Queue accepts new jobs. Enqueue returns once the job is durably stored;
// the producer never waits for the job to be handled.
//
//go:generate mockgen -destination=mocks/mock_queue.go -package=mocks github.com/stacklok/typings-registry/internal/queue Queue,Store
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
}

// Store is the consumer side of the queue
type Store interface {
	Queue

	// Claim leases the next runnable job. It returns nil when no job is runnable.
	Claim(ctx context.Context) (*Delivery, error)

	// Complete removes a successfully handled job
	Complete(ctx context.Context, d *Delivery) error

	// Fail schedules a redelivery with exponential backoff, or drops the job when the
	// failure is permanent or the attempts are exhausted. It reports whether the job was dropped.
	Fail(ctx context.Context, d *Delivery, cause error) (bool, error)

	// Release returns a job interrupted by shutdown to the queue. The attempt is not
	// counted and no redelivery delay applies.
	Release(ctx context.Context, d *Delivery) error

	// Pending counts queued jobs of a kind, including leased ones
	Pending(ctx context.Context, kind Kind) (int64, error)
}
