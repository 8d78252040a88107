package memory

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestListingCache_SetGet(t *testing.T) {
	c := NewListingCache()
	ctx := context.Background()

	if _, ok, err := c.Get(ctx); ok || err != nil {
		t.Fatalf("expected empty cache, ok=%v err=%v", ok, err)
	}

	v, _ := c.Version(ctx)
	stored, err := c.Set(ctx, []byte(`[1]`), v, time.Minute)
	if err != nil || !stored {
		t.Fatalf("expected Set to store, stored=%v err=%v", stored, err)
	}

	data, ok, _ := c.Get(ctx)
	if !ok || string(data) != `[1]` {
		t.Fatalf("unexpected cached value %q ok=%v", data, ok)
	}
}

func TestListingCache_Expiry(t *testing.T) {
	c := NewListingCache()
	now := time.Now()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	v, _ := c.Version(ctx)
	c.Set(ctx, []byte(`[]`), v, time.Second)

	now = now.Add(2 * time.Second)
	if _, ok, _ := c.Get(ctx); ok {
		t.Fatalf("expected miss after TTL")
	}
}

func TestListingCache_StaleSetAfterInvalidate(t *testing.T) {
	c := NewListingCache()
	ctx := context.Background()

	v, _ := c.Version(ctx)
	// запись прошла между чтением хранилища и Set
	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	stored, err := c.Set(ctx, []byte(`["old"]`), v, time.Minute)
	if err != nil || stored {
		t.Fatalf("stale Set must be skipped, stored=%v err=%v", stored, err)
	}
	if _, ok, _ := c.Get(ctx); ok {
		t.Fatalf("stale snapshot must not be visible")
	}
}

func TestListingCache_InvalidateDropsEntry(t *testing.T) {
	c := NewListingCache()
	ctx := context.Background()

	v, _ := c.Version(ctx)
	c.Set(ctx, []byte(`[1]`), v, 0)
	_ = c.Invalidate(ctx)

	if _, ok, _ := c.Get(ctx); ok {
		t.Fatalf("expected miss after invalidate")
	}
	if nv, _ := c.Version(ctx); nv != v+1 {
		t.Fatalf("version must grow by one, got %d", nv)
	}
}

func TestListingCache_ReturnsCopy(t *testing.T) {
	c := NewListingCache()
	ctx := context.Background()
	v, _ := c.Version(ctx)
	c.Set(ctx, []byte(`abc`), v, 0)

	data, _, _ := c.Get(ctx)
	data[0] = 'X'

	again, _, _ := c.Get(ctx)
	if string(again) != "abc" {
		t.Fatalf("cache must return a copy, got %q", again)
	}
}

func TestListingCache_Concurrent(t *testing.T) {
	c := NewListingCache()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			v, _ := c.Version(ctx)
			_, _ = c.Set(ctx, []byte(`[]`), v, time.Minute)
			_, _, _ = c.Get(ctx)
		}()
		go func() {
			defer wg.Done()
			_ = c.Invalidate(ctx)
		}()
	}
	wg.Wait()

	// после последней инвалидации без последующего Set кэш пуст
	_ = c.Invalidate(ctx)
	if _, ok, _ := c.Get(ctx); ok {
		t.Fatalf("expected miss after final invalidate")
	}
}
