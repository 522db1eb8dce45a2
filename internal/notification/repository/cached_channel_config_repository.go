package repository

import (
	"context"
	"sync"
	"time"

	"github.com/mapan1908/notification-service/internal/notification/domain"
)

// ChannelConfigStore is the backing store the cache decorates.
type ChannelConfigStore interface {
	Create(ctx context.Context, cfg *domain.ChannelConfig) error
	ListEnabled(ctx context.Context, storeCode, orderType string) ([]*domain.ChannelConfig, error)
	ListByStore(ctx context.Context, storeCode string) ([]*domain.ChannelConfig, error)
}

// cacheEntry holds one cached ListEnabled result.
type cacheEntry struct {
	configs  []*domain.ChannelConfig
	loadedAt time.Time
}

// CachedChannelConfigRepository is a read-through, short-TTL cache in front
// of a ChannelConfigStore. Entries are idempotent recomputations, so
// concurrent refreshes of the same key are harmless. Mutations write through
// and invalidate the merchant's entries explicitly.
type CachedChannelConfigRepository struct {
	inner ChannelConfigStore
	ttl   time.Duration

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewCachedChannelConfigRepository creates a cache decorator with the given
// freshness window.
func NewCachedChannelConfigRepository(inner ChannelConfigStore, ttl time.Duration) *CachedChannelConfigRepository {
	return &CachedChannelConfigRepository{
		inner:   inner,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// Create writes through to the backing store and invalidates the merchant's
// cached entries on success.
func (c *CachedChannelConfigRepository) Create(ctx context.Context, cfg *domain.ChannelConfig) error {
	if err := c.inner.Create(ctx, cfg); err != nil {
		return err
	}
	c.Invalidate(cfg.StoreCode)
	return nil
}

// ListEnabled returns the enabled configurations for (storeCode, orderType),
// serving from the cache while the entry is fresh.
func (c *CachedChannelConfigRepository) ListEnabled(
	ctx context.Context,
	storeCode, orderType string,
) ([]*domain.ChannelConfig, error) {
	key := storeCode + "|" + orderType

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && time.Since(entry.loadedAt) < c.ttl {
		return entry.configs, nil
	}

	configs, err := c.inner.ListEnabled(ctx, storeCode, orderType)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{configs: configs, loadedAt: time.Now()}
	c.mu.Unlock()

	return configs, nil
}

// ListByStore bypasses the cache; the administrative listing surface wants
// current data and is not on the hot path.
func (c *CachedChannelConfigRepository) ListByStore(
	ctx context.Context,
	storeCode string,
) ([]*domain.ChannelConfig, error) {
	return c.inner.ListByStore(ctx, storeCode)
}

// Invalidate drops all cached entries for a merchant.
func (c *CachedChannelConfigRepository) Invalidate(storeCode string) {
	prefix := storeCode + "|"

	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.entries, key)
		}
	}
}
