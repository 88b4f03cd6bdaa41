package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestEnvCarrier(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		var e propagation.TextMapCarrier = NewEnvCarrier()

		e.Set("a", "b")

		assert.Equal(t, "b", e.Get("a"), "failed to retrieve set value")
		assert.Equal(t, []string{"a"}, e.Keys(), "failed to get set keys")
	})

	t.Run("FromEnv", func(t *testing.T) {
		e := NewEnvCarrier()

		t.Setenv(mapKey("traceparent"), "b")

		assert.Equal(t, "b", e.Get("traceparent"), "failed to get from env")
		assert.Equal(t, []string{"traceparent"}, e.Keys(), "failed to get set keys")
	})

	t.Run("Environ", func(t *testing.T) {
		e := NewEnvCarrier()
		e.Set("trace-state", "x")

		assert.Equal(t, []string{"GRADER_TRACE_TRACE_STATE=x"}, e.Environ())
	})
}

func TestMessageHeaders(t *testing.T) {
	otel.SetTextMapPropagator(newPropagator())

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	headers := InjectMessage(ctx)
	require.Contains(t, headers, "traceparent")

	extracted := trace.SpanContextFromContext(ExtractMessage(context.Background(), headers))
	assert.Equal(t, traceID, extracted.TraceID())
	assert.True(t, extracted.IsRemote())

	assert.Equal(t, context.Background(), ExtractMessage(context.Background(), nil))
}
