package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// recordSpans swaps the global tracer provider for an in-memory recorder
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func attrsOf(kvs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value, len(kvs))
	for _, kv := range kvs {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestStartSpan(t *testing.T) {
	sr := recordSpans(t)

	ctx, span := StartSpan(context.Background(), "receiving", "create",
		AttrOrderID.String("po-1"),
		AttrLineCount.Int(3),
	)
	assert.True(t, trace.SpanContextFromContext(ctx).IsValid())
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "receiving.create", spans[0].Name())
	assert.Equal(t, trace.SpanKindInternal, spans[0].SpanKind())

	attrs := attrsOf(spans[0].Attributes())
	assert.Equal(t, "po-1", attrs[AttrOrderID].AsString())
	assert.Equal(t, int64(3), attrs[AttrLineCount].AsInt64())
}

func TestStartSpan_ChildOfCaller(t *testing.T) {
	sr := recordSpans(t)

	ctx, parent := StartSpan(context.Background(), "payment", "create")
	_, child := StartSpan(ctx, "treasury", "create_movement")
	child.End()
	parent.End()

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())
}

func TestRecordError(t *testing.T) {
	sr := recordSpans(t)

	_, span := StartSpan(context.Background(), "payment", "create")
	RecordError(span, errors.New("overpayment"))
	RecordError(span, nil)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "overpayment", spans[0].Status().Description)
	assert.Len(t, spans[0].Events(), 1)

	assert.NotPanics(t, func() { RecordError(nil, errors.New("x")) })
}
