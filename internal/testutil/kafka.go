//go:build integration

package testutil

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// UniqueTopicAndGroup — уникальные topic/group для изолированного теста.
func UniqueTopicAndGroup(base string) (topic, group string) {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return base + "-" + id, base + "-group-" + id
}

// EnsureTopic — создаёт топик (уже существующий — не ошибка) и ждёт его появления в метаданных.
// broker: "host:port", "PLAINTEXT://host:port" или список через запятую (берётся первый).
func EnsureTopic(ctx context.Context, broker, topic string, partitions int) error {
	if partitions <= 0 {
		partitions = 1
	}
	addr := firstBootstrap(broker)

	conn, err := kafka.Dial("tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return err
	}
	admin, err := kafka.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return err
	}
	defer admin.Close()

	err = admin.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     partitions,
		ReplicationFactor: 1,
	})
	if err != nil && !strings.Contains(strings.ToLower(err.Error()), "already exists") {
		return err
	}

	return waitTopicReady(ctx, addr, topic)
}

func firstBootstrap(raw string) string {
	first := strings.TrimSpace(strings.Split(raw, ",")[0])
	if strings.Contains(first, "://") {
		if u, err := url.Parse(first); err == nil && u.Host != "" {
			return u.Host
		}
	}
	return first
}

func waitTopicReady(ctx context.Context, broker, topic string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	var lastErr error
	for {
		c, err := kafka.Dial("tcp", broker)
		if err == nil {
			parts, perr := c.ReadPartitions(topic)
			_ = c.Close()
			if perr == nil && len(parts) > 0 {
				return nil
			}
			err = perr
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return fmt.Errorf("topic %q not ready: %v", topic, lastErr)
		case <-ticker.C:
		}
	}
}
