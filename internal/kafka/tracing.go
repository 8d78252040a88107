package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// headerCarrier — заголовки kafka-сообщения как носитель W3C trace context.
type headerCarrier struct {
	headers *[]kafka.Header
}

var _ propagation.TextMapCarrier = headerCarrier{}

func (h headerCarrier) Get(key string) string {
	for _, hdr := range *h.headers {
		if hdr.Key == key {
			return string(hdr.Value)
		}
	}
	return ""
}

func (h headerCarrier) Set(key, value string) {
	for i := range *h.headers {
		if (*h.headers)[i].Key == key {
			(*h.headers)[i].Value = []byte(value)
			return
		}
	}
	*h.headers = append(*h.headers, kafka.Header{Key: key, Value: []byte(value)})
}

func (h headerCarrier) Keys() []string {
	keys := make([]string, 0, len(*h.headers))
	for _, hdr := range *h.headers {
		keys = append(keys, hdr.Key)
	}
	return keys
}

func injectTrace(ctx context.Context, msg *kafka.Message) {
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier{headers: &msg.Headers})
}

func extractTrace(ctx context.Context, msg *kafka.Message) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, headerCarrier{headers: &msg.Headers})
}
