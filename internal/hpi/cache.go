package hpi

import (
	"fmt"
	"sync"
	"time"

	"github.com/sells-group/gfc-explorer/internal/model"
)

// resultCache is a concurrent-safe LRU cache with TTL expiration for
// aggregation results. Results are pure functions of (operation, selection)
// against immutable reference tables, so a short TTL only bounds memory under
// repeated interaction; it never serves wrong data.
type resultCache struct {
	mu         sync.Mutex
	entries    map[string]*cacheEntry
	order      []string // LRU order: front=oldest, back=newest
	maxEntries int
	ttl        time.Duration
}

type cacheEntry struct {
	value     any
	createdAt time.Time
}

func newResultCache(maxEntries int, ttl time.Duration) *resultCache {
	return &resultCache{
		entries:    make(map[string]*cacheEntry),
		maxEntries: maxEntries,
		ttl:        ttl,
	}
}

// cacheKey builds the cache key for an operation over a selection.
func cacheKey(op string, sel model.Selection) string {
	return fmt.Sprintf("%s/%s/%d/%d", op, sel.CBSAName, sel.YearMin, sel.YearMax)
}

// get retrieves a cached result. Returns nil, false on miss or expiration.
func (c *resultCache) get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	if time.Since(entry.createdAt) > c.ttl {
		delete(c.entries, key)
		c.removeFromOrder(key)
		return nil, false
	}

	c.removeFromOrder(key)
	c.order = append(c.order, key)
	return entry.value, true
}

// put stores a result, evicting the oldest entry if at capacity.
func (c *resultCache) put(key string, value any) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.entries[key] = &cacheEntry{value: value, createdAt: time.Now()}
		c.removeFromOrder(key)
		c.order = append(c.order, key)
		return
	}

	for len(c.entries) >= c.maxEntries && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = &cacheEntry{value: value, createdAt: time.Now()}
	c.order = append(c.order, key)
}

func (c *resultCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// len returns the number of live entries.
func (c *resultCache) len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
