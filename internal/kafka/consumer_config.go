package kafka

import (
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// defaultMaxWait — уведомления должны доходить быстро, поэтому fetch не копит батч дольше.
const defaultMaxWait = 500 * time.Millisecond

// ConsumerConfig — чтение топика событий заказов одним инстансом.
type ConsumerConfig struct {
	Brokers     []string
	Topic       string
	GroupID     string
	StartOffset string

	ProcessTimeout time.Duration
	RetryInitial   time.Duration
	RetryMax       time.Duration
	MaxWait        time.Duration // 0 — defaultMaxWait
}

// ReaderConfig — конфигурация kafka.Reader с ручным коммитом оффсетов.
// StartOffset: "first" (без учёта регистра и пробелов) — с начала топика, иначе — с конца.
func (c *ConsumerConfig) ReaderConfig() kafka.ReaderConfig {
	rc := kafka.ReaderConfig{
		Brokers:        c.Brokers,
		GroupID:        c.GroupID,
		Topic:          c.Topic,
		CommitInterval: 0,
		MaxWait:        c.MaxWait,
	}
	if rc.MaxWait <= 0 {
		rc.MaxWait = defaultMaxWait
	}

	switch strings.ToLower(strings.TrimSpace(c.StartOffset)) {
	case "first":
		rc.StartOffset = kafka.FirstOffset
	default:
		rc.StartOffset = kafka.LastOffset
	}

	return rc
}

// InstanceGroupID — группа потребителей, уникальная для инстанса.
// Все инстансы должны получать все события, поэтому общей группы у них нет.
func InstanceGroupID(base, instance string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = "shop-notify"
	}
	return base + "-" + instance
}
