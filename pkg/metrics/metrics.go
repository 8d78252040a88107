package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	KafkaMessagesConsumed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_consumed_total",
			Help: "Number of messages fetched from Kafka",
		},
		[]string{"topic"},
	)
	KafkaMessagesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_processed_total",
			Help: "Number of messages processed successfully",
		},
		[]string{"topic"},
	)
	KafkaMessagesFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_failed_total",
			Help: "Number of messages failed to process",
		},
		[]string{"topic"},
	)
	KafkaMessagesProduced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_produced_total",
			Help: "Number of messages written to Kafka",
		},
		[]string{"topic"},
	)
)

var (
	ListingCacheOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_cache_operations_total",
			Help: "Product listing cache operations",
		},
		[]string{"op"}, // hit|miss|expired|set|stale|invalidate|error
	)
	ProductCacheOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "product_cache_operations_total",
			Help: "Product-by-id cache operations",
		},
		[]string{"op"}, // hit|miss|evicted|expired|stale|deleted|purged
	)
	ProductCacheSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "product_cache_size",
			Help: "Number of products currently in cache",
		},
	)
)

var (
	NotifySubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "notify_subscribers",
			Help: "Number of open order notification subscriptions",
		},
	)
	NotifyEventsPublished = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notify_events_published_total",
			Help: "Number of order events delivered to subscriber queues",
		},
	)
	NotifyEventsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notify_events_dropped_total",
			Help: "Number of order events dropped from full subscriber queues",
		},
	)
	NotifyPublishFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notify_publish_failures_total",
			Help: "Number of order events that could not be published",
		},
	)
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

var registerOnce sync.Once

// MustRegister — регистрирует метрики в default registry (повторный вызов безопасен).
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			KafkaMessagesConsumed, KafkaMessagesProcessed, KafkaMessagesFailed, KafkaMessagesProduced,
			ListingCacheOps, ProductCacheOps, ProductCacheSize,
			NotifySubscribers, NotifyEventsPublished, NotifyEventsDropped, NotifyPublishFailures,
			HTTPRequests, HTTPRequestDuration,
		)
	})
}
