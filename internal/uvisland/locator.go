package uvisland

import (
	"github.com/pkg/errors"

	"fur-mask-baker/internal/adjacency"
	"fur-mask-baker/internal/mesh"
)

// Default cache bounds used by NewLocator when zero limits are passed.
const (
	DefaultMaxEntries = 32
	DefaultMaxBytes   = 64 << 20
)

// Locator resolves UV anchors to triangle and vertex sets, memoizing
// islands per (mesh, submesh) in its own cache.
type Locator struct {
	cache *Cache
}

// NewLocator wraps cache; a nil cache gets one with default bounds.
func NewLocator(cache *Cache) *Locator {
	if cache == nil {
		cache = NewCache(DefaultMaxEntries, DefaultMaxBytes)
	}
	return &Locator{cache: cache}
}

// Cache exposes the underlying cache (for stats).
func (l *Locator) Cache() *Cache {
	return l.cache
}

// Request names one island lookup.
type Request struct {
	MeshID    string
	Snapshot  *mesh.Snapshot
	Adjacency *adjacency.Index
	Submesh   int
	Seed      [2]float64
	Threshold float64
}

// Island returns the triangle set of the island nearest to the seed.
func (l *Locator) Island(req Request) (adjacency.Set, error) {
	snap := req.Snapshot
	if snap == nil {
		return nil, errors.New("uvisland: nil snapshot")
	}
	if req.Submesh < 0 || req.Submesh >= len(snap.Submeshes) {
		return nil, errors.Errorf("uvisland: submesh %d out of range (mesh has %d)", req.Submesh, len(snap.Submeshes))
	}
	threshold := req.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	tris := snap.Submeshes[req.Submesh].Triangles

	seed, ok := FindSeedTriangle(tris, snap.UVs, req.Seed)
	if !ok {
		return nil, errors.Errorf("uvisland: submesh %d has no valid triangle", req.Submesh)
	}

	key := Key{MeshID: req.MeshID, Submesh: req.Submesh}
	entry := l.cache.GetOrCreate(key, snap.VertexCount(), snap.TriangleCount())
	if island, ok := entry.Lookup(threshold, seed); ok {
		return island, nil
	}

	ix := req.Adjacency
	if ix == nil {
		ix = adjacency.NewIndex()
	}
	island := EnumerateIsland(ix.Triangle(snap, req.Submesh), seed, UVPredicate(tris, snap.UVs, threshold))
	entry.Add(threshold, island)
	l.cache.Resized(key)
	return island, nil
}

// AnchorVertices returns the vertex set of the island the request resolves to.
func (l *Locator) AnchorVertices(req Request) (adjacency.Set, error) {
	island, err := l.Island(req)
	if err != nil {
		return nil, err
	}
	return IslandVertices(req.Snapshot.Submeshes[req.Submesh].Triangles, island, req.Snapshot.VertexCount()), nil
}
