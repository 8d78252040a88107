package app

import (
	"context"
	"errors"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/shop_backend/config"
	"github.com/Gunvolt24/shop_backend/internal/kafka"
	"github.com/Gunvolt24/shop_backend/internal/notify"
)

type nopLog struct{}

func (nopLog) Debugf(context.Context, string, ...any)  {}
func (nopLog) Infof(context.Context, string, ...any)  {}
func (nopLog) Warnf(context.Context, string, ...any)  {}
func (nopLog) Errorf(context.Context, string, ...any) {}

func TestNewNotifyBackend_Local(t *testing.T) {
	hub := notify.NewHub(1)
	defer hub.Close()

	for _, name := range []string{"", "local", " LOCAL "} {
		cfg := &config.Config{Notify: config.Notify{Backend: name}}
		b, err := newNotifyBackend(cfg, hub, nopLog{})
		if err != nil {
			t.Fatalf("backend %q: %v", name, err)
		}
		if b.publisher != hub || b.consumer != nil {
			t.Fatalf("backend %q: local must publish straight into hub without consumer", name)
		}
		if err := b.close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
}

func TestNewNotifyBackend_Kafka(t *testing.T) {
	hub := notify.NewHub(1)
	defer hub.Close()

	cfg := &config.Config{
		Notify: config.Notify{Backend: "kafka"},
		Kafka:  config.Kafka{Brokers: []string{"127.0.0.1:1"}, Topic: "order-events", GroupID: "notify"},
	}
	b, err := newNotifyBackend(cfg, hub, nopLog{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = b.close() }()

	if _, ok := b.publisher.(*kafka.Producer); !ok {
		t.Fatalf("publisher must be kafka producer, got %T", b.publisher)
	}
	consumer, ok := b.consumer.(*kafka.Consumer)
	if !ok {
		t.Fatalf("consumer must be kafka consumer, got %T", b.consumer)
	}
	_ = consumer.Close()
}

func TestNewNotifyBackend_Unknown(t *testing.T) {
	hub := notify.NewHub(1)
	defer hub.Close()

	if _, err := newNotifyBackend(&config.Config{Notify: config.Notify{Backend: "nats"}}, hub, nopLog{}); err == nil {
		t.Fatal("unknown backend must fail")
	}
}

func TestApplyGinMode(t *testing.T) {
	defer gin.SetMode(gin.TestMode)

	cases := map[string]string{
		"release":  gin.ReleaseMode,
		" TEST ":   gin.TestMode,
		"":         gin.DebugMode,
		"whatever": gin.DebugMode,
	}
	for in, want := range cases {
		applyGinMode(context.Background(), in, nopLog{})
		if got := gin.Mode(); got != want {
			t.Fatalf("mode %q: want %s, got %s", in, want, got)
		}
	}
}

func TestInstanceID_StableAcrossRestarts(t *testing.T) {
	host := func() (string, error) { return "shop-api-0", nil }
	noHost := func() (string, error) { return "", errors.New("no hostname") }

	if got := instanceID(" pod-a ", host); got != "pod-a" {
		t.Fatalf("configured id must win, got %q", got)
	}
	if got := instanceID("", host); got != "shop-api-0" {
		t.Fatalf("hostname fallback expected, got %q", got)
	}
	// рестарт с тем же hostname — та же consumer group
	if kafka.InstanceGroupID("notify", instanceID("", host)) != kafka.InstanceGroupID("notify", instanceID("", host)) {
		t.Fatal("group id must be stable for the same host")
	}

	random := instanceID("", noHost)
	if len(random) != 8 {
		t.Fatalf("random suffix expected without hostname, got %q", random)
	}
}
