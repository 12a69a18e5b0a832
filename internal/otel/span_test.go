package otel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newTestTracerProvider(t *testing.T) (*tracetest.InMemoryExporter, trace.TracerProvider) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter, tp
}

func TestStartSpan_NilTracer(t *testing.T) {
	t.Parallel()

	resultCtx, span := StartSpan(context.Background(), nil, "job.handle")

	require.NotNil(t, resultCtx)
	require.NotNil(t, span)
	assert.False(t, span.SpanContext().IsValid(), "nil tracer should return no-op span")
	assert.NotPanics(t, func() { span.End() })
}

func TestStartSpan_ValidTracer(t *testing.T) {
	t.Parallel()

	exporter, tp := newTestTracerProvider(t)

	_, span := StartSpan(context.Background(), tp.Tracer("test"), "job.handle",
		trace.WithAttributes(
			AttrJobKind.String("index-commit"),
			AttrRepository.String("dt"),
			AttrCommit.String("abc123"),
		))
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "job.handle", spans[0].Name)
	assert.Contains(t, spans[0].Attributes, AttrRepository.String("dt"))
	assert.Contains(t, spans[0].Attributes, AttrCommit.String("abc123"))
}

func TestRecordError(t *testing.T) {
	t.Parallel()

	t.Run("nil error leaves status unset", func(t *testing.T) {
		t.Parallel()
		exporter, tp := newTestTracerProvider(t)

		_, span := tp.Tracer("test").Start(context.Background(), "op")
		RecordError(span, nil)
		span.End()

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Unset, spans[0].Status.Code)
		assert.Empty(t, spans[0].Events)
	})

	t.Run("error sets generic status and records event", func(t *testing.T) {
		t.Parallel()
		exporter, tp := newTestTracerProvider(t)

		_, span := tp.Tracer("test").Start(context.Background(), "op")
		RecordError(span, errors.New("connection to 10.0.0.1 refused"))
		span.End()

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status.Code)
		assert.Equal(t, "operation failed", spans[0].Status.Description)
		require.Len(t, spans[0].Events, 1)
		assert.Equal(t, "exception", spans[0].Events[0].Name)
	})

	t.Run("nil span does not panic", func(t *testing.T) {
		t.Parallel()
		assert.NotPanics(t, func() { RecordError(nil, errors.New("boom")) })
	})
}
