package adjacency

import (
	"sync"

	"fur-mask-baker/internal/mesh"
)

// Index lazily builds and keeps the adjacency graphs of one mesh. It is
// shared read-only across bakes on that mesh and rebuilt whenever the
// mesh's vertex or triangle count changes.
type Index struct {
	mu sync.Mutex

	vertexCount   int
	triangleCount int

	vertex    []Set
	neighbors [][]int
	triangle  map[int][]Set
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{triangle: make(map[int][]Set)}
}

func (ix *Index) sync(snap *mesh.Snapshot) {
	vc, tc := snap.VertexCount(), snap.TriangleCount()
	if vc == ix.vertexCount && tc == ix.triangleCount {
		return
	}
	ix.vertexCount, ix.triangleCount = vc, tc
	ix.vertex = nil
	ix.neighbors = nil
	ix.triangle = make(map[int][]Set)
}

// Vertex returns the vertex adjacency sets of the snapshot.
func (ix *Index) Vertex(snap *mesh.Snapshot) []Set {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.sync(snap)
	if ix.vertex == nil {
		ix.vertex = BuildVertexAdjacency(snap.Submeshes, snap.VertexCount())
	}
	return ix.vertex
}

// VertexNeighbors returns the vertex adjacency as sorted slices.
func (ix *Index) VertexNeighbors(snap *mesh.Snapshot) [][]int {
	adj := ix.Vertex(snap)
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.neighbors == nil {
		ix.neighbors = Neighbors(adj)
	}
	return ix.neighbors
}

// Triangle returns the welded triangle adjacency of one submesh.
func (ix *Index) Triangle(snap *mesh.Snapshot, sub int) []Set {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.sync(snap)
	if adj, ok := ix.triangle[sub]; ok {
		return adj
	}
	if sub < 0 || sub >= len(snap.Submeshes) {
		return nil
	}
	adj := BuildWeldedTriangleAdjacency(snap.Submeshes[sub].Triangles, snap.Positions)
	ix.triangle[sub] = adj
	return adj
}
