package ctxmeta

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// TraceIDFromContext — trace_id активного спана; без спана (или с no-op провайдером) ok=false.
func TraceIDFromContext(ctx context.Context) (string, bool) {
	sc, ok := spanContext(ctx)
	if !ok {
		return "", false
	}
	return sc.TraceID().String(), true
}

// SpanIDFromContext — span_id активного спана.
func SpanIDFromContext(ctx context.Context) (string, bool) {
	sc, ok := spanContext(ctx)
	if !ok {
		return "", false
	}
	return sc.SpanID().String(), true
}

func spanContext(ctx context.Context) (trace.SpanContext, bool) {
	if ctx == nil {
		return trace.SpanContext{}, false
	}
	sc := trace.SpanContextFromContext(ctx)
	return sc, sc.IsValid()
}
