package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/Gunvolt24/shop_backend/internal/domain"
	"github.com/Gunvolt24/shop_backend/internal/ports"
	"github.com/Gunvolt24/shop_backend/pkg/metrics"
	"github.com/Gunvolt24/shop_backend/pkg/telemetry"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ ports.EventPublisher = (*Producer)(nil)

// writer — контракт над kafka.Writer для подмены в тестах.
type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type ProducerConfig struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// Producer — публикация событий заказов в топик.
// Ключ сообщения — user_id: события одного пользователя попадают в одну партицию
// и читаются в порядке публикации.
type Producer struct {
	writer  writer
	topic   string
	timeout time.Duration
}

func NewProducer(cfg *ProducerConfig) *Producer {
	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		WriteTimeout:           timeout,
	}

	return &Producer{writer: w, topic: cfg.Topic, timeout: timeout}
}

// Publish — синхронная запись события. Ошибка записи оборачивает domain.ErrNotificationUnavailable.
func (p *Producer) Publish(ctx context.Context, event domain.OrderEvent) error {
	value, err := encodeEvent(event)
	if err != nil {
		return fmt.Errorf("encode order event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ctx, span := telemetry.Tracer().Start(ctx, "kafka.produce "+p.topic, trace.WithSpanKind(trace.SpanKindProducer))
	defer span.End()
	span.SetAttributes(
		attribute.String("messaging.destination.name", p.topic),
		attribute.String("order.id", event.OrderID),
	)

	msg := kafka.Message{
		Key:   []byte(event.UserID),
		Value: value,
		Time:  event.Timestamp,
	}
	injectTrace(ctx, &msg)

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "kafka write failed")
		return fmt.Errorf("%w: kafka write: %v", domain.ErrNotificationUnavailable, err)
	}

	metrics.KafkaMessagesProduced.WithLabelValues(p.topic).Inc()
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
