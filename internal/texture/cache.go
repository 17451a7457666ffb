package texture

import (
	"sync"
)

// Cache loads each direction map file once and shares it between jobs.
// Safe for concurrent use.
type Cache struct {
	mu    sync.RWMutex
	items map[cacheKey]*cacheEntry
}

type cacheKey struct {
	path string
	size int
}

type cacheEntry struct {
	dm  *DirectionMap
	err error
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{items: make(map[cacheKey]*cacheEntry)}
}

// Load returns the direction map at path resampled to size. Failures are
// cached too, so a broken file is only read once.
func (c *Cache) Load(path string, size int) (*DirectionMap, error) {
	key := cacheKey{path: path, size: size}

	// Fast path: read lock
	c.mu.RLock()
	if e, ok := c.items[key]; ok {
		c.mu.RUnlock()
		return e.dm, e.err
	}
	c.mu.RUnlock()

	// Slow path: load from disk
	dm, err := LoadDirectionMap(path, size)

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.items[key]; ok {
		return e.dm, e.err
	}
	c.items[key] = &cacheEntry{dm: dm, err: err}
	return dm, err
}

// Len returns the number of cached paths.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
