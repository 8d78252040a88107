package config_test

import (
	"slices"
	"testing"
	"time"

	cfg "github.com/Gunvolt24/shop_backend/config"
)

// TestLoadWithPrefix_Defaults — проверка наличия значений по умолчанию.
func TestLoadWithPrefix_Defaults(t *testing.T) {
	t.Parallel()

	c, err := cfg.LoadWithPrefix("SHOP_TEST_DEFAULTS")
	if err != nil {
		t.Fatalf("LoadWithPrefix error: %v", err)
	}

	// HTTP
	if c.HTTP.Addr != ":8080" || c.HTTP.GinMode != "debug" {
		t.Fatalf("HTTP defaults wrong: %+v", c.HTTP)
	}
	if c.HTTP.ReadTimeout != 10*time.Second || c.HTTP.WriteTimeout != 10*time.Second {
		t.Fatalf("HTTP timeouts wrong: %+v", c.HTTP)
	}
	if c.HTTP.ReadHeaderTimeout != 5*time.Second || c.HTTP.IdleTimeout != 60*time.Second {
		t.Fatalf("HTTP header/idle timeouts wrong: %+v", c.HTTP)
	}
	if c.HTTP.HandlerTimeout != 3*time.Second || c.HTTP.GracefulTimeout != 5*time.Second {
		t.Fatalf("HTTP handler/graceful timeouts wrong: %+v", c.HTTP)
	}

	// Metrics
	if c.Metrics.Addr != ":2112" {
		t.Fatalf("Metrics.Addr: want :2112, got %q", c.Metrics.Addr)
	}

	// Tracing
	if c.Tracing.Enabled || c.Tracing.ServiceName != "shop-backend" || c.Tracing.SampleRatio != 1 {
		t.Fatalf("Tracing defaults wrong: %+v", c.Tracing)
	}

	// Postgres
	if c.Postgres.DSN == "" || c.Postgres.MaxConns != 10 || !c.Postgres.AutoMigrate {
		t.Fatalf("Postgres defaults wrong: %+v", c.Postgres)
	}

	// Kafka
	if !slices.Equal(c.Kafka.Brokers, []string{"kafka:9092"}) {
		t.Fatalf("Kafka.Brokers: want [kafka:9092], got %v", c.Kafka.Brokers)
	}
	if c.Kafka.Topic != "order-events" || c.Kafka.GroupID != "" || c.Kafka.StartOffset != "last" {
		t.Fatalf("Kafka defaults wrong: %+v", c.Kafka)
	}
	if c.Kafka.ProcessTimeout != 5*time.Second || c.Kafka.RetryInitial != time.Second || c.Kafka.RetryMax != 30*time.Second {
		t.Fatalf("Kafka timeouts wrong: %+v", c.Kafka)
	}
	if c.Kafka.InstanceID != "" {
		t.Fatalf("Kafka.InstanceID must default to empty (hostname), got %q", c.Kafka.InstanceID)
	}
	if c.Kafka.WriteTimeout != 5*time.Second || c.Kafka.MaxWait != 500*time.Millisecond {
		t.Fatalf("Kafka write/fetch timeouts wrong: %+v", c.Kafka)
	}

	// Cache
	if c.Cache.ListingTTL != time.Hour {
		t.Fatalf("Cache.ListingTTL: want 1h, got %v", c.Cache.ListingTTL)
	}
	if c.Cache.ProductCapacity != 1000 || c.Cache.ProductTTL != 10*time.Minute || c.Cache.WarmUpN != 100 {
		t.Fatalf("Cache defaults wrong: %+v", c.Cache)
	}

	// Notify
	if c.Notify.Backend != "local" || c.Notify.Buffer != 16 {
		t.Fatalf("Notify defaults wrong: %+v", c.Notify)
	}
	if c.Notify.PingInterval != 30*time.Second || c.Notify.PongWait != 60*time.Second || !c.Notify.RequireAuth {
		t.Fatalf("Notify keepalive defaults wrong: %+v", c.Notify)
	}

	// Auth
	if c.Auth.AccessTTL != 15*time.Minute || c.Auth.RefreshTTL != 168*time.Hour || c.Auth.Secret == "" {
		t.Fatalf("Auth defaults wrong: %+v", c.Auth)
	}

	// Logger
	if c.Logger.IsProd {
		t.Fatalf("Logger.IsProd: want false, got true")
	}
}

// Меняем окружение.
func TestLoadWithPrefix_Overrides(t *testing.T) {
	const p = "SHOP_TEST_OVR"

	t.Setenv(p+"_HTTP_ADDR", ":9999")
	t.Setenv(p+"_HTTP_GIN_MODE", "release")
	t.Setenv(p+"_HTTP_HANDLER_TIMEOUT", "4500ms")
	t.Setenv(p+"_METRICS_ADDR", ":9998")
	t.Setenv(p+"_TRACING_OTEL_ENABLED", "true")
	t.Setenv(p+"_TRACING_OTEL_SAMPLE_RATIO", "0.25")
	t.Setenv(p+"_POSTGRES_DSN", "postgres://u:p@h:5432/db?sslmode=disable")
	t.Setenv(p+"_POSTGRES_AUTO_MIGRATE", "false")
	t.Setenv(p+"_KAFKA_BROKERS", "k1:9092,k2:9093")
	t.Setenv(p+"_KAFKA_GROUP_ID", "g-test")
	t.Setenv(p+"_CACHE_LISTING_TTL", "90s")
	t.Setenv(p+"_CACHE_PRODUCT_CAPACITY", "777")
	t.Setenv(p+"_NOTIFY_BACKEND", "kafka")
	t.Setenv(p+"_NOTIFY_BUFFER", "4")
	t.Setenv(p+"_AUTH_SECRET", "s3cr3t")
	t.Setenv(p+"_AUTH_ADMIN_EMAIL", "admin@shop.io")
	t.Setenv(p+"_LOGGER_IS_PROD", "true")

	c, err := cfg.LoadWithPrefix(p)
	if err != nil {
		t.Fatalf("LoadWithPrefix error: %v", err)
	}

	if c.HTTP.Addr != ":9999" || c.HTTP.GinMode != "release" || c.HTTP.HandlerTimeout != 4500*time.Millisecond {
		t.Fatalf("HTTP overrides wrong: %+v", c.HTTP)
	}
	if c.Metrics.Addr != ":9998" {
		t.Fatalf("Metrics.Addr override wrong: %q", c.Metrics.Addr)
	}
	if !c.Tracing.Enabled || c.Tracing.SampleRatio != 0.25 {
		t.Fatalf("Tracing overrides wrong: %+v", c.Tracing)
	}
	if c.Postgres.DSN != "postgres://u:p@h:5432/db?sslmode=disable" || c.Postgres.AutoMigrate {
		t.Fatalf("Postgres overrides wrong: %+v", c.Postgres)
	}
	if !slices.Equal(c.Kafka.Brokers, []string{"k1:9092", "k2:9093"}) || c.Kafka.GroupID != "g-test" {
		t.Fatalf("Kafka overrides wrong: %+v", c.Kafka)
	}
	if c.Cache.ListingTTL != 90*time.Second || c.Cache.ProductCapacity != 777 {
		t.Fatalf("Cache overrides wrong: %+v", c.Cache)
	}
	if c.Notify.Backend != "kafka" || c.Notify.Buffer != 4 {
		t.Fatalf("Notify overrides wrong: %+v", c.Notify)
	}
	if c.Auth.Secret != "s3cr3t" || c.Auth.AdminEmail != "admin@shop.io" {
		t.Fatalf("Auth overrides wrong: %+v", c.Auth)
	}
	if !c.Logger.IsProd {
		t.Fatalf("Logger.IsProd override wrong: %+v", c.Logger)
	}
}

// Тоже меняем окружение — но с невалидным значением.
func TestLoadWithPrefix_InvalidValue_ReturnsError(t *testing.T) {
	const p = "SHOP_TEST_BAD"
	t.Setenv(p+"_CACHE_LISTING_TTL", "not-a-duration")

	if _, err := cfg.LoadWithPrefix(p); err == nil {
		t.Fatalf("expected error for invalid duration, got nil")
	}
}
