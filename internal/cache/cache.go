// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 chastityOS Authors

// Package cache implements the result cache of the sync core: a bounded
// in-memory store for remote read results with per-entry TTL.
//
// Capacity is enforced by insertion order: when a new key would exceed the
// cap, the entry that has lived in the cache longest is evicted, regardless
// of how recently it was read. Updating an existing key keeps its position.
// Expired entries are dropped lazily on access and actively by [ResultCache.Sweep],
// which the workers package runs on a timer.
//
// The cache deliberately does not deduplicate concurrent loads; that is the
// request coordinator's job. Two goroutines racing GetOrSet on a cold key may
// both invoke their loaders, and the later Set wins.
package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thef4tdaddy/chastityOS-sub012/internal/config"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/logger"
)

type entry struct {
	data      any
	createdAt time.Time
	expiresAt time.Time
}

// ResultCache is a mutex-guarded TTL cache with insertion-order eviction.
// All methods are safe for concurrent use.
type ResultCache struct {
	mu    sync.RWMutex
	data  map[string]*entry
	order []string // keys in insertion order, oldest first

	defaultTTL time.Duration
	maxEntries int

	hits      uint64
	misses    uint64
	evictions uint64

	logger *logger.Logger
}

// New constructs a ResultCache from the cache section of the configuration.
func New(cfg config.Cache, log *logger.Logger) *ResultCache {
	return &ResultCache{
		data:       make(map[string]*entry),
		order:      make([]string, 0, cfg.MaxEntries),
		defaultTTL: cfg.TTL,
		maxEntries: cfg.MaxEntries,
		logger:     log.Component("cache"),
	}
}

// Get returns the live value stored under key. An entry past its expiry is
// treated as absent and removed on the spot, so a stale value is never
// returned even if the sweep has not run yet.
func (c *ResultCache) Get(key string) (any, bool) {
	now := time.Now()

	c.mu.RLock()
	e, ok := c.data[key]
	if !ok {
		c.mu.RUnlock()
		atomic.AddUint64(&c.misses, 1)
		return nil, false
	}

	if now.After(e.expiresAt) {
		c.mu.RUnlock()
		c.mu.Lock()
		// Re-check under the write lock; another goroutine may have already
		// removed or replaced the entry.
		if e, ok := c.data[key]; ok && now.After(e.expiresAt) {
			c.removeLocked(key)
		}
		c.mu.Unlock()

		atomic.AddUint64(&c.misses, 1)
		return nil, false
	}

	data := e.data
	c.mu.RUnlock()

	atomic.AddUint64(&c.hits, 1)
	return data, true
}

// Set stores data under key for ttl. A non-positive ttl means the configured
// default. Inserting a new key at capacity evicts the oldest entry by
// insertion order; overwriting an existing key keeps its insertion position.
func (c *ResultCache) Set(key string, data any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.data[key]; exists {
		c.data[key] = &entry{data: data, createdAt: now, expiresAt: now.Add(ttl)}
		return
	}

	if c.maxEntries > 0 && len(c.data) >= c.maxEntries {
		c.evictOldestLocked()
	}

	c.data[key] = &entry{data: data, createdAt: now, expiresAt: now.Add(ttl)}
	c.order = append(c.order, key)
}

// SetWithInvalidation removes every key containing one of the invalidateOn
// substrings, then stores data under key. Used on the write path: caching a
// fresh write result first drops the now-stale list and aggregate entries
// derived from the same records.
func (c *ResultCache) SetWithInvalidation(key string, data any, ttl time.Duration, invalidateOn ...string) {
	for _, pattern := range invalidateOn {
		c.InvalidatePattern(pattern)
	}

	c.Set(key, data, ttl)
}

// GetOrSet returns the cached value for key, or invokes loader once, stores
// its result and returns it. A loader error is returned as-is and nothing is
// cached, so the next call retries.
func (c *ResultCache) GetOrSet(ctx context.Context, key string, loader func(context.Context) (any, error), ttl time.Duration) (any, error) {
	if data, ok := c.Get(key); ok {
		return data, nil
	}

	data, err := loader(ctx)
	if err != nil {
		return nil, err
	}

	c.Set(key, data, ttl)
	return data, nil
}

// Invalidate removes key from the cache. Returns true when an entry (live or
// expired) was present.
func (c *ResultCache) Invalidate(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.data[key]; !ok {
		return false
	}

	c.removeLocked(key)
	return true
}

// InvalidatePattern removes every entry whose key contains substring and
// returns the number of entries removed.
func (c *ResultCache) InvalidatePattern(substring string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.data {
		if strings.Contains(key, substring) {
			c.removeLocked(key)
			removed++
		}
	}

	if removed > 0 {
		c.logger.Debug().
			Str("pattern", substring).
			Int("removed", removed).
			Msg("cache entries invalidated")
	}

	return removed
}

// Sweep removes every expired entry in one pass and returns the count.
// Entries nobody reads would otherwise linger until eviction; the workers
// package calls this on the configured interval.
func (c *ResultCache) Sweep() int {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	var expired []string
	for key, e := range c.data {
		if now.After(e.expiresAt) {
			expired = append(expired, key)
		}
	}

	for _, key := range expired {
		c.removeLocked(key)
	}

	if len(expired) > 0 {
		c.logger.Debug().Int("expired_entries", len(expired)).Msg("cache sweep completed")
	}

	return len(expired)
}

// Len returns the number of entries currently held, expired ones included.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Clear drops every entry. Counters are kept; they describe the lifetime of
// the cache, not its current contents.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = make(map[string]*entry)
	c.order = c.order[:0]
}

// evictOldestLocked removes the entry at the front of the insertion order.
// Caller must hold the write lock.
func (c *ResultCache) evictOldestLocked() {
	if len(c.order) == 0 {
		return
	}

	victim := c.order[0]
	c.removeLocked(victim)
	atomic.AddUint64(&c.evictions, 1)

	c.logger.Debug().Str("key", victim).Msg("cache entry evicted")
}

// removeLocked deletes key from the data map and the order slice.
// Caller must hold the write lock.
func (c *ResultCache) removeLocked(key string) {
	delete(c.data, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
