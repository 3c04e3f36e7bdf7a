package scoreline

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Cache stores opaque values with per-entry insertion timestamps. The TTL is
// a read-side parameter: the same entry can be fresh for one caller and
// stale for another depending on the maxAge each passes to Get.
type Cache interface {
	// Get returns the value stored under key if its age does not exceed
	// maxAge. Stale entries are deleted on the way out (lazy expiry).
	Get(key string, maxAge time.Duration) (any, bool)
	Set(key string, value any)
	Delete(key string)
	Clear()
	Size() int
}

type cacheEntry struct {
	value    any
	storedAt time.Time
}

// MemoryCache is the in-process Cache implementation. There is no background
// sweep and no size cap: expiry is enforced only at read time, so memory is
// bounded by call volume into Set, not by TTL.
type MemoryCache struct {
	mu    sync.Mutex
	store map[string]cacheEntry
	now   func() time.Time
}

// NewMemoryCache returns an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		store: make(map[string]cacheEntry),
		now:   time.Now,
	}
}

// Get implements Cache.
func (c *MemoryCache) Get(key string, maxAge time.Duration) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.store[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.storedAt) > maxAge {
		delete(c.store, key)
		return nil, false
	}
	return entry.value, true
}

// Set implements Cache. Storing overwrites any previous entry and resets its
// insertion timestamp.
func (c *MemoryCache) Set(key string, value any) {
	c.mu.Lock()
	c.store[key] = cacheEntry{value: value, storedAt: c.now()}
	c.mu.Unlock()
}

// Delete implements Cache.
func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	delete(c.store, key)
	c.mu.Unlock()
}

// Clear implements Cache.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	c.store = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// Size implements Cache.
func (c *MemoryCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.store)
}

// cacheKey builds a stable key from an endpoint name and its parameters.
// Parameters are sorted so equivalent queries collide on the same key
// regardless of argument ordering.
func cacheKey(name string, params map[string]string) string {
	if len(params) == 0 {
		return name
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(name)
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	return b.String()
}
