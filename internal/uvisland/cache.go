package uvisland

import (
	"container/list"
	"sync"

	"fur-mask-baker/internal/adjacency"
)

// Byte-size estimate constants. The figures approximate Go map and set
// overhead on 64-bit platforms; only their relative scale matters.
const (
	entryOverheadBytes = 256
	mapEntryBytes      = 48
	setMemberBytes     = 16
)

// Key identifies one submesh of one mesh instance.
type Key struct {
	MeshID  string
	Submesh int
}

// Entry maps triangles to their island, per connectivity threshold. Islands
// are filled lazily as seeds are requested.
type Entry struct {
	VertexCount   int
	TriangleCount int

	mu      sync.Mutex
	islands map[float64]map[int]adjacency.Set
	bytes   int
}

func newEntry(vertexCount, triangleCount int) *Entry {
	return &Entry{
		VertexCount:   vertexCount,
		TriangleCount: triangleCount,
		islands:       make(map[float64]map[int]adjacency.Set),
		bytes:         entryOverheadBytes,
	}
}

// Lookup returns the island containing triangle t, if already computed.
func (e *Entry) Lookup(threshold float64, t int) (adjacency.Set, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.islands[threshold]
	if !ok {
		return nil, false
	}
	s, ok := m[t]
	return s, ok
}

// Add records island for every member triangle.
func (e *Entry) Add(threshold float64, island adjacency.Set) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.islands[threshold]
	if !ok {
		m = make(map[int]adjacency.Set)
		e.islands[threshold] = m
	}
	for t := range island {
		m[t] = island
	}
	e.bytes += len(island)*mapEntryBytes + len(island)*setMemberBytes
}

// ByteSize returns the estimated memory held by the entry.
func (e *Entry) ByteSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bytes
}

// Stats summarizes cache activity.
type Stats struct {
	Entries   int
	Bytes     int
	Hits      int
	Misses    int
	Stale     int
	Evictions int
}

type cacheItem struct {
	key       Key
	entry     *Entry
	accounted int // bytes charged to the cache for this entry
}

// Cache is an LRU cache of island entries bounded by entry count and by
// estimated byte size. Eviction removes least recently used entries until
// both limits hold. Safe for concurrent use.
type Cache struct {
	mu         sync.Mutex
	maxEntries int
	maxBytes   int
	order      *list.List // front = most recently used
	items      map[Key]*list.Element
	bytes      int
	stats      Stats
}

// NewCache creates a cache. Non-positive limits disable that bound.
func NewCache(maxEntries, maxBytes int) *Cache {
	return &Cache{
		maxEntries: maxEntries,
		maxBytes:   maxBytes,
		order:      list.New(),
		items:      make(map[Key]*list.Element),
	}
}

// Get returns the entry for key if its recorded counts match. A mismatch
// drops the stale entry and reports a miss.
func (c *Cache) Get(key Key, vertexCount, triangleCount int) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	it := el.Value.(*cacheItem)
	if it.entry.VertexCount != vertexCount || it.entry.TriangleCount != triangleCount {
		c.removeElement(el)
		c.stats.Stale++
		c.stats.Misses++
		return nil, false
	}
	c.order.MoveToFront(el)
	c.stats.Hits++
	return it.entry, true
}

// GetOrCreate returns a valid entry for key, creating an empty one on miss.
func (c *Cache) GetOrCreate(key Key, vertexCount, triangleCount int) *Entry {
	if e, ok := c.Get(key, vertexCount, triangleCount); ok {
		return e
	}
	e := newEntry(vertexCount, triangleCount)
	c.Put(key, e)
	return e
}

// Put inserts or replaces the entry for key and enforces the limits.
func (c *Cache) Put(key Key, e *Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}
	it := &cacheItem{key: key, entry: e, accounted: e.ByteSize()}
	c.items[key] = c.order.PushFront(it)
	c.bytes += it.accounted
	c.evict()
}

// Resized must be called after an entry grew so the byte budget is
// re-evaluated. The entry is also marked as most recently used.
func (c *Cache) Resized(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return
	}
	it := el.Value.(*cacheItem)
	size := it.entry.ByteSize()
	c.bytes += size - it.accounted
	it.accounted = size
	c.order.MoveToFront(el)
	c.evict()
}

// Remove drops the entry for key.
func (c *Cache) Remove(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}
}

// Keys returns cached keys from most to least recently used.
func (c *Cache) Keys() []Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]Key, 0, len(c.items))
	for el := c.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*cacheItem).key)
	}
	return keys
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Entries = len(c.items)
	s.Bytes = c.bytes
	return s
}

func (c *Cache) overLimit() bool {
	if c.maxEntries > 0 && len(c.items) > c.maxEntries {
		return true
	}
	if c.maxBytes > 0 && c.bytes > c.maxBytes {
		return true
	}
	return false
}

func (c *Cache) evict() {
	for c.overLimit() {
		el := c.order.Back()
		if el == nil {
			return
		}
		c.removeElement(el)
		c.stats.Evictions++
	}
}

func (c *Cache) removeElement(el *list.Element) {
	it := el.Value.(*cacheItem)
	c.order.Remove(el)
	delete(c.items, it.key)
	c.bytes -= it.accounted
}
