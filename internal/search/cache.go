package search

import (
	"strings"
	"sync"
	"time"
)

// DefaultCacheTTL bounds result staleness. Policy changes deliberately do
// not invalidate live entries; five minutes of staleness is accepted.
const DefaultCacheTTL = 5 * time.Minute

// CacheKey identifies one cached result page. A miss on any component is
// a cold start — there is no partial cross-key reuse.
type CacheKey struct {
	Query      string
	Location   string
	Language   string
	Restricted bool
	Page       int
}

// NormalizeQuery canonicalizes the query component of a cache key.
func NormalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

type cacheEntry struct {
	result    Result
	timestamp time.Time
}

// Cache is the in-process search result cache. Entries expire by TTL and
// are discovered and discarded lazily on lookup — there is no sweeper.
// The map is mutex-guarded; a race between a background preload write and
// a foreground read costs at most one redundant fetch.
type Cache struct {
	mu      sync.Mutex
	entries map[CacheKey]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		entries: make(map[CacheKey]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached result for key, evicting it first when stale.
func (c *Cache) Get(key CacheKey) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Result{}, false
	}
	if c.now().Sub(e.timestamp) > c.ttl {
		delete(c.entries, key)
		return Result{}, false
	}
	return e.result, true
}

// Set stores a result for key.
func (c *Cache) Set(key CacheKey, res Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{result: res, timestamp: c.now()}
}

// Len reports the live entry count (stale entries still resident count
// until a lookup evicts them).
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
