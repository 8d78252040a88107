package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/Gunvolt24/shop_backend/internal/domain"
	"github.com/Gunvolt24/shop_backend/pkg/metrics"
	"github.com/Gunvolt24/shop_backend/pkg/telemetry"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// handleMessage обрабатывает одно сообщение и определяет, нужно ли коммитить оффсет.
// Спан обработки продолжает трассу продюсера из заголовков сообщения.
func (c *Consumer) handleMessage(ctx context.Context, topic string, msg *kafka.Message) bool {
	ctx, span := telemetry.Tracer().Start(extractTrace(ctx, msg), "kafka.consume "+topic,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.destination.name", topic),
			attribute.Int("messaging.kafka.partition", msg.Partition),
			attribute.Int64("messaging.kafka.offset", msg.Offset),
		),
	)
	defer span.End()

	event, err := decodeEvent(msg.Value)
	if err == nil {
		span.SetAttributes(attribute.String("order.id", event.OrderID))
		ctxTimeout, cancel := context.WithTimeout(ctx, c.processTimeout)
		err = c.sink.Publish(ctxTimeout, event)
		cancel()
	}
	if err != nil {
		span.RecordError(err)
	}

	switch {
	case err == nil:
		metrics.KafkaMessagesProcessed.WithLabelValues(topic).Inc()
		return true
	case errors.Is(err, domain.ErrValidation):
		// Невалидное событие: логируем и коммитим, чтобы не обрабатывать повторно
		metrics.KafkaMessagesFailed.WithLabelValues(topic).Inc()
		c.log.Warnf(ctx, "invalid message offset=%d: %v (skipped)", msg.Offset, err)
		return true
	default:
		// Хаб недоступен: НЕ коммитим, сообщение будет прочитано повторно
		metrics.KafkaMessagesFailed.WithLabelValues(topic).Inc()
		c.log.Warnf(ctx, "process failed offset=%d: %v (will retry without commit)", msg.Offset, err)
		return false
	}
}

// commitSafely пытается закоммитить оффсет и залогировать ошибку.
func (c *Consumer) commitSafely(ctx context.Context, msg *kafka.Message) {
	if commitErr := c.reader.CommitMessages(ctx, *msg); commitErr != nil {
		c.log.Warnf(ctx, "commit failed offset=%d: %v", msg.Offset, commitErr)
	}
}

// sleepWithBackoff ждёт backoff или останавливается по контексту.
func (c *Consumer) sleepWithBackoff(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// nextBackoff возвращает следующее время ожидания повтора с учётом retryMax.
func (c *Consumer) nextBackoff(current time.Duration) time.Duration {
	current *= 2
	if current > c.retryMax {
		return c.retryMax
	}
	return current
}

// withJitterEqual — половина задержки фиксирована, вторая половина случайная.
func (c *Consumer) withJitterEqual(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	half := d / 2
	jitter := time.Duration(c.jitterRand.Int63n(int64(d-half) + 1))
	return half + jitter
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
