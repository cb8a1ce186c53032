package cache

import (
	"sync"
	"time"
)

// Entry is a cached translation and the time it was stored. Entries are
// never updated in place: Set replaces them with a fresh timestamp.
type Entry struct {
	Value     string
	CreatedAt time.Time
}

// InMemoryCache is a thread-safe in-memory cache with TTL support.
// Expiry is checked lazily on read; there is no background sweep.
type InMemoryCache struct {
	cache map[string]Entry
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
}

// MemoryOption configures an InMemoryCache.
type MemoryOption func(*InMemoryCache)

// WithClock replaces the time source, mainly for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(c *InMemoryCache) {
		c.now = now
	}
}

// NewInMemoryCache creates a new in-memory cache with the specified TTL.
// If ttl is 0 or negative, entries never expire.
func NewInMemoryCache(ttl time.Duration, opts ...MemoryOption) *InMemoryCache {
	if ttl < 0 {
		ttl = 0
	}
	c := &InMemoryCache{
		cache: make(map[string]Entry),
		ttl:   ttl,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get retrieves a value from the cache.
// Returns the value and true if found and not expired, empty string and false otherwise.
func (c *InMemoryCache) Get(key string) (string, bool) {
	entry, ok := c.Lookup(key)
	return entry.Value, ok
}

// Lookup returns the full entry for key if it is present and fresh.
func (c *InMemoryCache) Lookup(key string) (Entry, bool) {
	c.mu.RLock()
	entry, ok := c.cache[key]
	c.mu.RUnlock()

	if !ok {
		return Entry{}, false
	}

	if c.expired(entry, c.now()) {
		c.mu.Lock()
		// Only drop the entry we saw; a concurrent Set may have replaced it.
		if current, ok := c.cache[key]; ok && current == entry {
			delete(c.cache, key)
		}
		c.mu.Unlock()
		return Entry{}, false
	}

	return entry, true
}

// Set stores a value in the cache.
func (c *InMemoryCache) Set(key string, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache[key] = Entry{
		Value:     value,
		CreatedAt: c.now(),
	}
	return nil
}

// Len returns the number of entries in the cache (including expired ones).
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Clear removes all entries from the cache.
func (c *InMemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]Entry)
}

func (c *InMemoryCache) expired(entry Entry, now time.Time) bool {
	return c.ttl > 0 && now.Sub(entry.CreatedAt) > c.ttl
}

// Verify InMemoryCache implements TranslationCache
var _ TranslationCache = (*InMemoryCache)(nil)
