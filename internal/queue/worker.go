package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	gootel "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/stacklok/typings-registry/internal/otel"
	"github.com/stacklok/typings-registry/internal/telemetry"
)

const (
	defaultConcurrency  = 4
	defaultPollInterval = time.Second
	defaultDrainTimeout = 30 * time.Second
	ackTimeout          = 10 * time.Second
	ackMaxTries         = 3
)

// HandlerFunc processes one job. Returning an error triggers a redelivery unless
// the error is permanent.
type HandlerFunc func(ctx context.Context, job Job) error

// Worker consumes jobs from a Store with a fixed number of concurrent loops
type Worker struct {
	store        Store
	handlers     map[Kind]HandlerFunc
	concurrency  int
	pollInterval time.Duration
	drainTimeout time.Duration
	metrics      *telemetry.JobMetrics
	tracer       trace.Tracer
}

// WorkerOption configures a Worker
type WorkerOption func(*Worker)

// WithConcurrency sets the number of jobs handled in parallel
func WithConcurrency(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.concurrency = n
		}
	}
}

// WithPollInterval sets how long an idle loop waits before claiming again
func WithPollInterval(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

// WithDrainTimeout sets how long in-flight jobs keep running once Run's context is
// cancelled. Jobs still running after it are interrupted and released to the queue.
func WithDrainTimeout(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.drainTimeout = d
		}
	}
}

// WithJobMetrics sets the job metrics. Nil disables metrics.
func WithJobMetrics(m *telemetry.JobMetrics) WorkerOption {
	return func(w *Worker) {
		w.metrics = m
	}
}

// WithTracer sets the tracer for job spans. Nil disables tracing.
func WithTracer(tracer trace.Tracer) WorkerOption {
	return func(w *Worker) {
		w.tracer = tracer
	}
}

// NewWorker creates a Worker reading from store
func NewWorker(store Store, opts ...WorkerOption) *Worker {
	w := &Worker{
		store:        store,
		handlers:     make(map[Kind]HandlerFunc),
		concurrency:  defaultConcurrency,
		pollInterval: defaultPollInterval,
		drainTimeout: defaultDrainTimeout,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Handle registers the handler for a job kind. It must be called before Run.
func (w *Worker) Handle(kind Kind, handler HandlerFunc) {
	w.handlers[kind] = handler
}

// Run consumes jobs until ctx is cancelled. Cancellation stops claiming; jobs in
// flight run to completion within the drain timeout.
func (w *Worker) Run(ctx context.Context) error {
	slog.Info("Starting workers", "concurrency", w.concurrency, "poll_interval", w.pollInterval.String())

	handlerCtx, cancelHandlers := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelHandlers()

	finished := make(chan struct{})
	defer close(finished)
	go w.drain(ctx, finished, cancelHandlers)

	g := new(errgroup.Group)
	for i := range w.concurrency {
		g.Go(func() error {
			w.loop(ctx, handlerCtx, i)
			return nil
		})
	}
	err := g.Wait()

	slog.Info("Workers stopped")
	return err
}

// drain interrupts the handlers once the drain timeout has passed after ctx is done
func (w *Worker) drain(ctx context.Context, finished <-chan struct{}, interrupt context.CancelFunc) {
	select {
	case <-finished:
		return
	case <-ctx.Done():
	}

	timer := time.NewTimer(w.drainTimeout)
	defer timer.Stop()
	select {
	case <-finished:
	case <-timer.C:
		slog.Warn("Drain timeout reached, interrupting in-flight jobs", "timeout", w.drainTimeout.String())
		interrupt()
	}
}

func (w *Worker) loop(ctx, handlerCtx context.Context, id int) {
	for {
		processed, err := w.process(ctx, handlerCtx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			slog.Error("Worker failed to process job", "worker", id, "error", err)
		}
		if processed && err == nil {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.pollInterval):
		}
	}
}

// ProcessNext claims and handles one job. It reports false when no job was runnable.
// Handler failures are passed to the store; only queue errors are returned.
// A job whose handler is interrupted by cancellation of ctx is released, not failed.
func (w *Worker) ProcessNext(ctx context.Context) (bool, error) {
	return w.process(ctx, ctx)
}

func (w *Worker) process(ctx, handlerCtx context.Context) (bool, error) {
	d, err := w.store.Claim(ctx)
	if err != nil {
		return false, err
	}
	if d == nil {
		return false, nil
	}
	return true, w.handle(handlerCtx, d)
}

func (w *Worker) handle(ctx context.Context, d *Delivery) error {
	job := d.Job
	logger := slog.With(
		"job_id", d.ID.String(),
		"kind", job.Kind,
		"repository", job.Repository,
		"attempt", d.Attempt,
	)

	ctx = job.traceContext(ctx, gootel.GetTextMapPropagator())
	ctx, span := otel.StartSpan(ctx, w.tracer, "job."+string(job.Kind),
		trace.WithAttributes(
			otel.AttrJobKind.String(string(job.Kind)),
			otel.AttrJobAttempt.Int(d.Attempt),
			otel.AttrRepository.String(job.Repository),
			otel.AttrCommit.String(job.Commit),
		),
	)
	defer span.End()

	start := time.Now()
	handlerErr := w.run(ctx, job)
	w.metrics.RecordJobDuration(ctx, string(job.Kind), job.Repository, time.Since(start), handlerErr == nil)

	// acknowledgements outlive shutdown; an unacknowledged job is redelivered once its lease expires
	ackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ackTimeout)
	defer cancel()

	if handlerErr == nil {
		logger.Debug("Job completed", "duration", time.Since(start).String())
		return w.ack(ackCtx, func() error { return w.store.Complete(ackCtx, d) })
	}

	if ctx.Err() != nil {
		// interrupted by shutdown; the attempt does not count against the job
		logger.Warn("Job interrupted, releasing to the queue", "error", handlerErr)
		return w.ack(ackCtx, func() error { return w.store.Release(ackCtx, d) })
	}

	otel.RecordError(span, handlerErr)
	var dropped bool
	err := w.ack(ackCtx, func() error {
		var ferr error
		dropped, ferr = w.store.Fail(ackCtx, d, handlerErr)
		return ferr
	})
	if err != nil {
		return err
	}

	if dropped {
		w.metrics.RecordJobDropped(ctx, string(job.Kind), IsPermanent(handlerErr))
		logger.Error("Job dropped", "permanent", IsPermanent(handlerErr), "error", handlerErr)
	} else {
		logger.Warn("Job failed, scheduled for redelivery", "error", handlerErr)
	}
	return nil
}

func (w *Worker) run(ctx context.Context, job Job) (err error) {
	handler, ok := w.handlers[job.Kind]
	if !ok {
		return Permanent(fmt.Errorf("no handler registered for job kind %q", job.Kind))
	}

	defer func() {
		if r := recover(); r != nil {
			err = Permanent(fmt.Errorf("handler panicked: %v", r))
		}
	}()
	return handler(ctx, job)
}

func (*Worker) ack(ctx context.Context, fn func() error) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, fn()
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(ackMaxTries),
	)
	if err != nil {
		return errors.Join(errors.New("failed to acknowledge job"), err)
	}
	return nil
}
