// Package otel provides tracing helpers shared by the indexing pipeline.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys used on pipeline spans
const (
	AttrJobKind     = attribute.Key("job.kind")
	AttrJobAttempt  = attribute.Key("job.attempt")
	AttrRepository  = attribute.Key("repository.name")
	AttrCommit      = attribute.Key("git.commit")
	AttrPath        = attribute.Key("file.path")
	AttrEntrySource = attribute.Key("entry.source")
	AttrEntryName   = attribute.Key("entry.name")
	AttrRowCount    = attribute.Key("db.rows")
)

// StartSpan starts a new span if the tracer is non-nil, otherwise returns the span already in ctx.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError records err on the span and marks it failed.
// The status description stays generic so SQL and connection details only appear in the event.
func RecordError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation failed")
	}
}
