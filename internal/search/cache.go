package search

import (
	"strings"
	"time"
)

// CacheVersion tags every cache entry. Bump it whenever the result shape
// changes so stale entries across all keys are invalidated at once.
const CacheVersion = 2

// Cache sizing and freshness. The caches are best-effort: a miss always
// falls through to the network path.
const (
	ResultCacheCapacity = 100
	ResultCacheTTL      = 5 * time.Minute

	SuggestCacheCapacity = 100
	SuggestCacheTTL      = 2 * time.Minute
)

type cacheEntry[T any] struct {
	payload  T
	storedAt time.Time
	version  int
}

// TTLCache is a bounded LRU cache whose entries expire after a fixed TTL and
// are invalidated wholesale by a version bump. Stale and version-mismatched
// entries are evicted lazily on read.
type TTLCache[T any] struct {
	lru     *lru[string, cacheEntry[T]]
	ttl     time.Duration
	version int
	now     func() time.Time
}

// NewTTLCache creates a cache with the given capacity, TTL and version tag.
func NewTTLCache[T any](capacity int, ttl time.Duration, version int) *TTLCache[T] {
	return &TTLCache[T]{
		lru:     newLRU[string, cacheEntry[T]](capacity),
		ttl:     ttl,
		version: version,
		now:     time.Now,
	}
}

// NewResultCache returns the cache for unfiltered backend result sets,
// keyed by ResultKey of the raw query.
func NewResultCache() *TTLCache[[]Hit] {
	return NewTTLCache[[]Hit](ResultCacheCapacity, ResultCacheTTL, CacheVersion)
}

// NewSuggestCache returns the cache for suggestion sets, keyed by SuggestKey
// of the clean query.
func NewSuggestCache() *TTLCache[[]Suggestion] {
	return NewTTLCache[[]Suggestion](SuggestCacheCapacity, SuggestCacheTTL, CacheVersion)
}

// ResultKey normalizes a raw query into its result-cache key.
func ResultKey(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// SuggestKey normalizes a clean query into its suggestion-cache key.
func SuggestKey(clean string) string {
	return "suggest:" + strings.ToLower(clean)
}

// Get returns the cached payload for key, treating expired or
// version-mismatched entries as absent and evicting them. A hit moves the
// entry to the most-recently-used position.
func (c *TTLCache[T]) Get(key string) (T, bool) {
	entry, ok := c.lru.get(key)
	if !ok {
		var zero T
		return zero, false
	}
	if c.now().Sub(entry.storedAt) >= c.ttl || entry.version != c.version {
		c.lru.delete(key)
		var zero T
		return zero, false
	}
	return entry.payload, true
}

// Set stores the payload under key with a fresh timestamp and the current
// version tag, evicting the least-recently-used entry if needed.
func (c *TTLCache[T]) Set(key string, payload T) {
	c.lru.put(key, cacheEntry[T]{
		payload:  payload,
		storedAt: c.now(),
		version:  c.version,
	})
}

// Len returns the number of entries, including any not yet lazily evicted.
func (c *TTLCache[T]) Len() int {
	return c.lru.len()
}
