package cache

import (
	"sync/atomic"
	"time"
)

// Stats is a point-in-time snapshot of cache state and lifetime counters.
type Stats struct {
	// Entries is the number of entries currently held, expired included.
	Entries int `json:"entries"`
	// Valid is the number of entries that have not yet expired.
	Valid int `json:"valid"`
	// Expired is the number of entries past their TTL but not yet removed.
	Expired int `json:"expired"`
	// MaxEntries is the configured capacity.
	MaxEntries int `json:"max_entries"`
	// Hits counts Get calls that returned a live value.
	Hits uint64 `json:"hits"`
	// Misses counts Get calls that found nothing, expired entries included.
	Misses uint64 `json:"misses"`
	// Evictions counts entries removed to make room for new keys.
	Evictions uint64 `json:"evictions"`
}

// Stats walks the cache once and returns current counts alongside the
// lifetime hit, miss and eviction counters.
func (c *ResultCache) Stats() Stats {
	now := time.Now()

	c.mu.RLock()
	defer c.mu.RUnlock()

	valid := 0
	for _, e := range c.data {
		if !now.After(e.expiresAt) {
			valid++
		}
	}

	return Stats{
		Entries:    len(c.data),
		Valid:      valid,
		Expired:    len(c.data) - valid,
		MaxEntries: c.maxEntries,
		Hits:       atomic.LoadUint64(&c.hits),
		Misses:     atomic.LoadUint64(&c.misses),
		Evictions:  atomic.LoadUint64(&c.evictions),
	}
}
