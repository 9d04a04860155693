package kafkax

import (
	"context"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Headers adapts a Kafka header list to the OpenTelemetry propagation carrier.
type Headers []kafka.Header

var _ propagation.TextMapCarrier = (*Headers)(nil)

func (h *Headers) Get(key string) string { return HeaderValue(*h, key) }

func (h *Headers) Set(key, value string) {
	for i, hdr := range *h {
		if hdr.Key == key {
			(*h)[i].Value = []byte(value)
			return
		}
	}
	*h = append(*h, kafka.Header{Key: key, Value: []byte(value)})
}

func (h *Headers) Keys() []string {
	keys := make([]string, len(*h))
	for i, hdr := range *h {
		keys[i] = hdr.Key
	}
	return keys
}

// InjectTraceHeaders sets traceparent/tracestate from ctx on headers.
func InjectTraceHeaders(ctx context.Context, headers []kafka.Header) []kafka.Header {
	carrier := Headers(headers)
	otel.GetTextMapPropagator().Inject(ctx, &carrier)
	return carrier
}

// ExtractTraceContext returns ctx with the remote span found in headers, if any.
func ExtractTraceContext(ctx context.Context, headers []kafka.Header) context.Context {
	carrier := Headers(headers)
	return otel.GetTextMapPropagator().Extract(ctx, &carrier)
}
