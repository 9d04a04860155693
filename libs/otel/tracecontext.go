package otelx

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// TraceContext is the W3C trace context of a span, in the form it is persisted
// next to an outbox row.
type TraceContext struct {
	Parent string
	State  string
}

func CaptureTraceContext(ctx context.Context) TraceContext {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return TraceContext{Parent: carrier.Get("traceparent"), State: carrier.Get("tracestate")}
}

func (tc TraceContext) Empty() bool { return tc.Parent == "" && tc.State == "" }

// Into returns ctx carrying tc as its remote parent. Empty values leave ctx untouched.
func (tc TraceContext) Into(ctx context.Context) context.Context {
	if tc.Empty() {
		return ctx
	}
	carrier := propagation.MapCarrier{}
	carrier.Set("traceparent", tc.Parent)
	if tc.State != "" {
		carrier.Set("tracestate", tc.State)
	}
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}
