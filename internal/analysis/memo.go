package analysis

import (
	"fmt"
	"sync"
	"time"

	"airdash/internal/metrics"
)

// SeriesCache memoizes aggregated series for a TTL. Keys carry the store
// generation, so entries computed from a stale table are simply never asked
// for again and age out. Correctness never depends on the cache: a miss
// recomputes from the table.
type SeriesCache struct {
	ttl        time.Duration
	maxEntries int

	mu      sync.RWMutex
	entries map[string]seriesEntry

	now func() time.Time // stubbed in tests
}

type seriesEntry struct {
	rows      []AggregateRow
	expiresAt time.Time
}

func NewSeriesCache(ttl time.Duration, maxEntries int) *SeriesCache {
	return &SeriesCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]seriesEntry),
		now:        time.Now,
	}
}

// SeriesKey identifies one aggregation result.
func SeriesKey(generation uint64, metric string, g Granularity, rng Range) string {
	return fmt.Sprintf("agg:%d:%s:%s:%d:%d", generation, metric, g, rng.From.UnixNano(), rng.To.UnixNano())
}

func (c *SeriesCache) Get(key string) ([]AggregateRow, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().After(entry.expiresAt) {
		metrics.CacheMissesTotal.Inc()
		return nil, false
	}
	metrics.CacheHitsTotal.Inc()
	return entry.rows, true
}

func (c *SeriesCache) Put(key string, rows []AggregateRow) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictLocked()
	}
	c.entries[key] = seriesEntry{rows: rows, expiresAt: c.now().Add(c.ttl)}
}

func (c *SeriesCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// evictLocked drops expired entries first, then the soonest to expire until
// there is room for one more.
func (c *SeriesCache) evictLocked() {
	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	for len(c.entries) >= c.maxEntries {
		var oldestKey string
		var oldest time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.expiresAt.Before(oldest) {
				oldestKey = k
				oldest = e.expiresAt
			}
		}
		if oldestKey == "" {
			return
		}
		delete(c.entries, oldestKey)
	}
}
