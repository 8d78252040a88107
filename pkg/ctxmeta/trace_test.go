package ctxmeta_test

import (
	"context"
	"testing"

	"github.com/Gunvolt24/shop_backend/pkg/ctxmeta"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestTraceIDs_FromRecordingSpan(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := tp.Tracer("test").Start(context.Background(), "orders.create")
	defer span.End()

	traceID, ok := ctxmeta.TraceIDFromContext(ctx)
	require.True(t, ok)
	require.Equal(t, span.SpanContext().TraceID().String(), traceID)

	spanID, ok := ctxmeta.SpanIDFromContext(ctx)
	require.True(t, ok)
	require.Equal(t, span.SpanContext().SpanID().String(), spanID)
}

func TestTraceIDs_NoSpan(t *testing.T) {
	for name, ctx := range map[string]context.Context{
		"background": context.Background(),
		"nil":        nil, //nolint:staticcheck // nil ctx допустим для хелперов пакета
	} {
		t.Run(name, func(t *testing.T) {
			id, ok := ctxmeta.TraceIDFromContext(ctx)
			require.False(t, ok)
			require.Empty(t, id)

			id, ok = ctxmeta.SpanIDFromContext(ctx)
			require.False(t, ok)
			require.Empty(t, id)
		})
	}
}

// Без настроенного провайдера трассировки логгер не должен получать нулевые id.
func TestTraceIDs_NoopProviderIsInvalid(t *testing.T) {
	ctx, span := noop.NewTracerProvider().Tracer("test").Start(context.Background(), "op")
	defer span.End()

	_, ok := ctxmeta.TraceIDFromContext(ctx)
	require.False(t, ok)
}
