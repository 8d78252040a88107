package memory

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/Gunvolt24/shop_backend/internal/domain"
	"github.com/Gunvolt24/shop_backend/internal/ports"
	"github.com/Gunvolt24/shop_backend/pkg/metrics"
)

var _ ports.ProductCache = (*ProductLRU)(nil)

type entry struct {
	id        string
	product   *domain.Product
	expiresAt time.Time
}

// ProductLRU — LRU-кэш товаров по ID с TTL.
// Каждое удаление или очистка увеличивает версию; Set со старой версией отбрасывается,
// так что товар, прочитанный до изменения, не вернётся в кэш после него.
type ProductLRU struct {
	capacity int
	ttl      time.Duration

	ll      *list.List
	index   map[string]*list.Element
	version uint64

	mu sync.Mutex
}

func NewProductLRU(capacity int, ttl time.Duration) *ProductLRU {
	if capacity <= 0 {
		capacity = 1
	}
	return &ProductLRU{
		capacity: capacity,
		ttl:      ttl,
		ll:       list.New(),
		index:    make(map[string]*list.Element),
	}
}

func (c *ProductLRU) Get(_ context.Context, id string) (*domain.Product, bool) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.index[id]
	if !ok {
		metrics.ProductCacheOps.WithLabelValues("miss").Inc()
		return nil, false
	}
	ent := elem.Value.(*entry)
	if c.isExpired(ent, now) {
		metrics.ProductCacheOps.WithLabelValues("expired").Inc()
		c.removeElement(elem)
		metrics.ProductCacheSize.Set(float64(len(c.index)))
		return nil, false
	}
	c.ll.MoveToFront(elem)

	metrics.ProductCacheOps.WithLabelValues("hit").Inc()
	return cloneProduct(ent.product), true
}

func (c *ProductLRU) Version(_ context.Context) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

func (c *ProductLRU) Set(_ context.Context, product *domain.Product, version uint64) bool {
	if product == nil || product.ID == "" {
		return false
	}
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if version != c.version {
		metrics.ProductCacheOps.WithLabelValues("stale").Inc()
		return false
	}

	if elem, ok := c.index[product.ID]; ok {
		ent := elem.Value.(*entry)
		ent.product = cloneProduct(product)
		ent.expiresAt = c.expiryFrom(now)
		c.ll.MoveToFront(elem)
		return true
	}

	c.pruneExpiredFromBack(now)

	elem := c.ll.PushFront(&entry{
		id:        product.ID,
		product:   cloneProduct(product),
		expiresAt: c.expiryFrom(now),
	})
	c.index[product.ID] = elem

	if c.ll.Len() > c.capacity {
		c.evictLRU()
	}
	metrics.ProductCacheSize.Set(float64(len(c.index)))
	return true
}

func (c *ProductLRU) Delete(_ context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.version++
	if elem, ok := c.index[id]; ok {
		c.removeElement(elem)
		metrics.ProductCacheOps.WithLabelValues("deleted").Inc()
		metrics.ProductCacheSize.Set(float64(len(c.index)))
	}
}

func (c *ProductLRU) Purge(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.version++
	c.ll.Init()
	c.index = make(map[string]*list.Element)
	metrics.ProductCacheOps.WithLabelValues("purged").Inc()
	metrics.ProductCacheSize.Set(0)
}

func (c *ProductLRU) WarmUp(ctx context.Context, products []*domain.Product) error {
	version := c.Version(ctx)
	for _, product := range products {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.Set(ctx, product, version)
	}
	return nil
}

// Len — число записей (включая ещё не вычищенные просроченные).
func (c *ProductLRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// ------вспомогательные функции------

// evictLRU — удаляет наименее используемый элемент.
func (c *ProductLRU) evictLRU() {
	if back := c.ll.Back(); back != nil {
		c.removeElement(back)
		metrics.ProductCacheOps.WithLabelValues("evicted").Inc()
	}
}

func (c *ProductLRU) removeElement(elem *list.Element) {
	ent := elem.Value.(*entry)
	delete(c.index, ent.id)
	c.ll.Remove(elem)
}

func (c *ProductLRU) isExpired(ent *entry, now time.Time) bool {
	if c.ttl <= 0 {
		return false
	}
	return now.After(ent.expiresAt)
}

func (c *ProductLRU) expiryFrom(now time.Time) time.Time {
	if c.ttl <= 0 {
		return time.Time{}
	}
	return now.Add(c.ttl)
}

// pruneExpiredFromBack — удаляет просроченные элементы из хвоста до первого актуального.
func (c *ProductLRU) pruneExpiredFromBack(now time.Time) {
	if c.ttl <= 0 {
		return
	}
	for {
		back := c.ll.Back()
		if back == nil {
			return
		}
		if !now.After(back.Value.(*entry).expiresAt) {
			return
		}
		c.removeElement(back)
		metrics.ProductCacheOps.WithLabelValues("expired").Inc()
	}
}

// cloneProduct — копия товара, чтобы внешние изменения не отражались на данных в кэше.
func cloneProduct(product *domain.Product) *domain.Product {
	if product == nil {
		return nil
	}
	cloned := *product
	if product.CategoryID != nil {
		id := *product.CategoryID
		cloned.CategoryID = &id
	}
	return &cloned
}
