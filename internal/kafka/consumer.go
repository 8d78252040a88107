package kafka

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/Gunvolt24/shop_backend/internal/domain"
	"github.com/Gunvolt24/shop_backend/internal/ports"
	"github.com/Gunvolt24/shop_backend/pkg/metrics"
	"github.com/segmentio/kafka-go"
)

// Проверка, что Consumer удовлетворяет интерфейсу верхнего уровня (порт приложения).
var _ ports.EventConsumer = (*Consumer)(nil)

// reader — минимальный контракт над источником (kafka.Reader),
// чтобы легко подменять его моками в тестах.
type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Config() kafka.ReaderConfig
	Close() error
}

// eventSink — локальный получатель событий (хаб уведомлений процесса).
type eventSink interface {
	Publish(ctx context.Context, event domain.OrderEvent) error
}

// Consumer — читает события заказов из топика и передаёт их в локальный хаб.
// Каждый инстанс сервиса читает топик целиком (своя consumer group),
// поэтому подписчик получит событие, к какому бы инстансу он ни был подключён.
type Consumer struct {
	reader         reader
	sink           eventSink
	log            ports.Logger
	processTimeout time.Duration
	retryInitial   time.Duration
	retryMax       time.Duration
	jitterRand     *rand.Rand
	closeOnce      sync.Once
}

// NewConsumer — конструктор. ReaderConfig() настроен на ручной коммит оффсетов.
func NewConsumer(cfg *ConsumerConfig, sink eventSink, log ports.Logger) *Consumer {
	reader := kafka.NewReader(cfg.ReaderConfig())

	// Параметры по умолчанию (если не заданы в конфиге)
	pt := cfg.ProcessTimeout
	if pt <= 0 {
		pt = 5 * time.Second
	}

	rInit := cfg.RetryInitial
	if rInit <= 0 {
		rInit = 1 * time.Second
	}

	rMax := cfg.RetryMax
	if rMax <= 0 {
		rMax = 30 * time.Second
	}

	return &Consumer{
		reader:         reader,
		sink:           sink,
		log:            log,
		processTimeout: pt,
		retryInitial:   rInit,
		retryMax:       rMax,
		// jitterRand — источник случайности, чтобы рассинхронизировать экспоненциальный backoff.
		jitterRand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run — основной цикл:
// 1) читаем сообщение без авто-коммита;
// 2) событие доставлено в хаб → CommitMessages;
// 3) невалидное событие → лог и CommitMessages (пропускаем навсегда);
// 4) хаб недоступен → без коммита (повторная обработка, at-least-once).
func (c *Consumer) Run(ctx context.Context) error {
	rc := c.reader.Config()
	c.log.Infof(ctx, "kafka consumer started topic=%s group_id=%s brokers=%v", rc.Topic, rc.GroupID, rc.Brokers)

	// Экспоненциальный backoff на ошибках FetchMessage с equal-jitter
	retry := c.retryInitial

	for {
		msg, fetchErr := c.reader.FetchMessage(ctx)
		if fetchErr != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// Временная ошибка брокера/сети. Ожидаем и повторяем
			sleep := c.withJitterEqual(retry)
			c.log.Warnf(ctx, "fetch failed: %v (will retry in %s)", fetchErr, sleep)
			if !c.sleepWithBackoff(ctx, sleep) {
				return ctx.Err()
			}
			retry = c.nextBackoff(retry)
			continue
		}

		retry = c.retryInitial
		metrics.KafkaMessagesConsumed.WithLabelValues(rc.Topic).Inc()

		if shouldCommit := c.handleMessage(ctx, rc.Topic, &msg); shouldCommit {
			c.commitSafely(ctx, &msg)
		} else {
			// Пауза с джиттером после временной ошибки
			_ = c.sleepWithBackoff(ctx, c.withJitterEqual(minDuration(c.retryInitial, 500*time.Millisecond)))
		}
	}
}

// Close — закрывает reader. Вызывается при остановке приложения.
func (c *Consumer) Close() (retErr error) {
	c.closeOnce.Do(func() {
		retErr = c.reader.Close()
	})
	return retErr
}
