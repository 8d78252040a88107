package telemetry

import (
	"context"
	"testing"
)

func TestClampRatio(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.25, 0.25},
		{1, 1},
		{3, 1},
	}
	for _, tt := range tests {
		if got := clampRatio(tt.in); got != tt.want {
			t.Fatalf("clampRatio(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTracer_NoopBeforeSetup(t *testing.T) {
	// Без SetupTracing спаны создаются no-op провайдером и не падают.
	_, span := Tracer().Start(context.Background(), "op")
	defer span.End()

	if span.SpanContext().IsValid() {
		t.Fatalf("no-op tracer must produce invalid span context")
	}
}
