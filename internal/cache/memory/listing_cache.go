package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Gunvolt24/shop_backend/internal/ports"
	"github.com/Gunvolt24/shop_backend/pkg/metrics"
)

var _ ports.ListingCache = (*ListingCache)(nil)

// ListingCache — in-memory хранилище сериализованного полного списка товаров.
// Одна запись под одним мьютексом; версия растёт при каждой инвалидации,
// Set с версией, снятой до инвалидации, ничего не пишет.
type ListingCache struct {
	mu        sync.Mutex
	data      []byte
	expiresAt time.Time
	present   bool
	version   uint64

	now func() time.Time
}

func NewListingCache() *ListingCache {
	return &ListingCache{now: time.Now}
}

func (c *ListingCache) Get(_ context.Context) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.present {
		metrics.ListingCacheOps.WithLabelValues("miss").Inc()
		return nil, false, nil
	}
	if !c.expiresAt.IsZero() && c.now().After(c.expiresAt) {
		c.data, c.present = nil, false
		metrics.ListingCacheOps.WithLabelValues("expired").Inc()
		return nil, false, nil
	}

	metrics.ListingCacheOps.WithLabelValues("hit").Inc()
	return append([]byte(nil), c.data...), true, nil
}

func (c *ListingCache) Version(_ context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version, nil
}

func (c *ListingCache) Set(_ context.Context, data []byte, version uint64, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if version != c.version {
		metrics.ListingCacheOps.WithLabelValues("stale").Inc()
		return false, nil
	}

	c.data = append([]byte(nil), data...)
	c.present = true
	c.expiresAt = time.Time{}
	if ttl > 0 {
		c.expiresAt = c.now().Add(ttl)
	}
	metrics.ListingCacheOps.WithLabelValues("set").Inc()
	return true, nil
}

func (c *ListingCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.version++
	c.data, c.present = nil, false
	metrics.ListingCacheOps.WithLabelValues("invalidate").Inc()
	return nil
}
