package adjacency

import (
	"testing"

	"fur-mask-baker/internal/mathutil"
	"fur-mask-baker/internal/mesh"
)

func TestBuildTriangleAdjacency_Quad(t *testing.T) {
	adj := BuildTriangleAdjacency([]int{0, 1, 2, 0, 2, 3}, 4)
	if len(adj) != 2 {
		t.Fatalf("expected 2 sets, got %d", len(adj))
	}
	if !adj[0].Has(1) || !adj[1].Has(0) {
		t.Error("triangles sharing edge 0-2 should be adjacent")
	}
	if adj[0].Has(0) {
		t.Error("triangle must not be adjacent to itself")
	}
}

func TestBuildTriangleAdjacency_ReversedWinding(t *testing.T) {
	// Edge 1-2 appears as (1,2) and (2,1).
	adj := BuildTriangleAdjacency([]int{0, 1, 2, 2, 1, 3}, 4)
	if !adj[0].Has(1) {
		t.Error("undirected edge should match regardless of winding")
	}
}

func TestBuildTriangleAdjacency_NonManifold(t *testing.T) {
	// Three triangles share edge 0-1.
	adj := BuildTriangleAdjacency([]int{0, 1, 2, 1, 0, 3, 0, 1, 4}, 5)
	for i := 0; i < 3; i++ {
		if len(adj[i]) != 2 {
			t.Errorf("triangle %d: expected 2 neighbors, got %v", i, adj[i].Sorted())
		}
	}
}

func TestBuildTriangleAdjacency_SkipsOutOfRange(t *testing.T) {
	adj := BuildTriangleAdjacency([]int{0, 1, 2, 0, 2, 9}, 4)
	if len(adj[1]) != 0 || len(adj[0]) != 0 {
		t.Errorf("out-of-range triangle should be isolated: %v %v", adj[0].Sorted(), adj[1].Sorted())
	}
}

func TestBuildVertexAdjacency(t *testing.T) {
	subs := []mesh.Submesh{
		{Triangles: []int{0, 1, 2}},
		{Triangles: []int{0, 2, 3, 0, 3, 42}},
	}
	adj := BuildVertexAdjacency(subs, 4)

	want := map[int][]int{
		0: {1, 2, 3},
		1: {0, 2},
		2: {0, 1, 3},
		3: {0, 2},
	}
	for v, nb := range want {
		got := adj[v].Sorted()
		if len(got) != len(nb) {
			t.Errorf("vertex %d neighbors = %v, want %v", v, got, nb)
			continue
		}
		for i := range nb {
			if got[i] != nb[i] {
				t.Errorf("vertex %d neighbors = %v, want %v", v, got, nb)
				break
			}
		}
	}
}

func TestIndex_InvalidatesOnCountChange(t *testing.T) {
	snap := &mesh.Snapshot{
		Positions: []mathutil.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}},
		UVs:       [][2]float64{{0, 0}, {1, 0}, {1, 1}},
		Submeshes: []mesh.Submesh{{Triangles: []int{0, 1, 2}}},
	}
	ix := NewIndex()
	first := ix.Vertex(snap)
	if len(first) != 3 {
		t.Fatalf("expected 3 vertex sets, got %d", len(first))
	}

	snap.Positions = append(snap.Positions, mathutil.Vec3{0, 1, 0})
	snap.UVs = append(snap.UVs, [2]float64{0, 1})
	snap.Submeshes[0].Triangles = append(snap.Submeshes[0].Triangles, 0, 2, 3)

	second := ix.Vertex(snap)
	if len(second) != 4 {
		t.Fatalf("expected rebuild with 4 vertex sets, got %d", len(second))
	}
	if tri := ix.Triangle(snap, 0); len(tri) != 2 || !tri[0].Has(1) {
		t.Errorf("triangle adjacency not rebuilt: %v", tri)
	}
	if nb := ix.VertexNeighbors(snap); len(nb[0]) != 3 {
		t.Errorf("vertex 0 neighbors = %v", nb[0])
	}
}

func TestWeldedAdjacency_AcrossSeam(t *testing.T) {
	// Vertices 1/2 and 3/4 share positions but are distinct indices.
	positions := []mathutil.Vec3{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0},
		{1, 0, 0}, {1, 1, 0}, {2, 0, 0},
	}
	tris := []int{0, 1, 2, 3, 5, 4}

	if adj := BuildTriangleAdjacency(tris, len(positions)); adj[0].Has(1) {
		t.Error("index adjacency should not connect seam-split triangles")
	}
	adj := BuildWeldedTriangleAdjacency(tris, positions)
	if !adj[0].Has(1) || !adj[1].Has(0) {
		t.Error("welded adjacency should connect triangles meeting at a seam")
	}

	canon := Weld(positions, WeldTolerance)
	if canon[3] != 1 || canon[4] != 2 || canon[5] != 5 {
		t.Errorf("Weld = %v", canon)
	}
}

func TestComponents(t *testing.T) {
	subs := []mesh.Submesh{{Material: "a", Triangles: []int{0, 1, 2, 2, 1, 3, 4, 5, 6}}}
	adj := BuildVertexAdjacency(subs, 8)
	comps := Components(adj)
	if len(comps) != 2 {
		t.Fatalf("got %d components, want 2", len(comps))
	}
	if len(comps[0]) != 4 || comps[0][0] != 0 || comps[0][3] != 3 {
		t.Errorf("largest component = %v", comps[0])
	}
	if len(comps[1]) != 3 || comps[1][0] != 4 {
		t.Errorf("second component = %v", comps[1])
	}
}
