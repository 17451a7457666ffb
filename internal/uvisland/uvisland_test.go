package uvisland

import (
	"testing"

	"fur-mask-baker/internal/adjacency"
	"fur-mask-baker/internal/mathutil"
	"fur-mask-baker/internal/mesh"
)

var quadTris = []int{0, 1, 2, 0, 2, 3}
var quadUVs = [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// mockSeamMesh builds two quads that touch in 3D along x=1 but sit in
// opposite corners of UV space.
func mockSeamMesh() *mesh.Snapshot {
	return &mesh.Snapshot{
		Name: "seam",
		Positions: []mathutil.Vec3{
			{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
			{1, 0, 0}, {2, 0, 0}, {2, 1, 0}, {1, 1, 0},
		},
		UVs: [][2]float64{
			{0, 0}, {0.2, 0}, {0.2, 0.2}, {0, 0.2},
			{0.8, 0.8}, {1, 0.8}, {1, 1}, {0.8, 1},
		},
		Submeshes: []mesh.Submesh{
			{Triangles: []int{0, 1, 2, 0, 2, 3, 4, 5, 6, 4, 6, 7}, Material: "Body"},
		},
	}
}

func TestFindSeedTriangle_Containment(t *testing.T) {
	if tri, ok := FindSeedTriangle(quadTris, quadUVs, [2]float64{0.9, 0.1}); !ok || tri != 0 {
		t.Errorf("expected triangle 0, got %d (ok=%v)", tri, ok)
	}
	if tri, ok := FindSeedTriangle(quadTris, quadUVs, [2]float64{0.1, 0.9}); !ok || tri != 1 {
		t.Errorf("expected triangle 1, got %d (ok=%v)", tri, ok)
	}
}

func TestFindSeedTriangle_NearestCentroidFallback(t *testing.T) {
	tri, ok := FindSeedTriangle(quadTris, quadUVs, [2]float64{5, 4})
	if !ok || tri != 0 {
		t.Errorf("expected nearest-centroid triangle 0, got %d (ok=%v)", tri, ok)
	}
}

func TestFindSeedTriangle_DegenerateIsOutside(t *testing.T) {
	tris := []int{0, 0, 0, 1, 2, 3}
	uvs := [][2]float64{{0.5, 0.5}, {2, 2}, {3, 2}, {2, 3}}
	// The seed sits exactly on the degenerate triangle's point; it must
	// not count as containing, but still wins the centroid fallback.
	tri, ok := FindSeedTriangle(tris, uvs, [2]float64{0.5, 0.5})
	if !ok || tri != 0 {
		t.Errorf("expected fallback to triangle 0, got %d (ok=%v)", tri, ok)
	}
}

func TestFindSeedTriangle_NoValidTriangle(t *testing.T) {
	if _, ok := FindSeedTriangle([]int{0, 1, 9}, quadUVs, [2]float64{0, 0}); ok {
		t.Error("expected no result for mesh without valid triangles")
	}
}

func TestAreUVConnected_ReflexiveSymmetric(t *testing.T) {
	a := [3][2]float64{{0, 0}, {0.1, 0}, {0, 0.1}}
	b := [3][2]float64{{0.25, 0}, {0.5, 0}, {0.5, 0.5}}
	c := [3][2]float64{{0.9, 0.9}, {1, 0.9}, {1, 1}}

	if !AreUVConnected(a, a, 0) {
		t.Error("triangle must be connected to itself even at threshold 0")
	}
	for _, th := range []float64{0.1, 0.15, 0.5} {
		if AreUVConnected(a, b, th) != AreUVConnected(b, a, th) {
			t.Errorf("predicate not symmetric at threshold %v", th)
		}
	}
	if !AreUVConnected(a, b, 0.15) {
		t.Error("corners 0.15 apart should connect at threshold 0.15")
	}
	if AreUVConnected(a, c, DefaultThreshold) {
		t.Error("distant triangles should not connect")
	}
}

func TestEnumerateIsland_StopsAtSeam(t *testing.T) {
	snap := mockSeamMesh()
	tris := snap.Submeshes[0].Triangles
	adj := adjacency.BuildWeldedTriangleAdjacency(tris, snap.Positions)
	if !adj[0].Has(3) {
		t.Fatal("fixture: triangles 0 and 3 should be mesh-adjacent across the seam")
	}

	island := EnumerateIsland(adj, 0, UVPredicate(tris, snap.UVs, DefaultThreshold))
	if got := island.Sorted(); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("island = %v, want [0 1]", got)
	}

	all := EnumerateIsland(adj, 0, UVPredicate(tris, snap.UVs, 2))
	if len(all) != 4 {
		t.Errorf("large threshold should span the seam, got %v", all.Sorted())
	}
}

func TestEnumerateIsland_Idempotent(t *testing.T) {
	snap := mockSeamMesh()
	tris := snap.Submeshes[0].Triangles
	adj := adjacency.BuildWeldedTriangleAdjacency(tris, snap.Positions)
	pred := UVPredicate(tris, snap.UVs, DefaultThreshold)

	first := EnumerateIsland(adj, 2, pred)
	for member := range first {
		again := EnumerateIsland(adj, member, pred)
		if len(again) != len(first) {
			t.Fatalf("seed %d: island size %d, want %d", member, len(again), len(first))
		}
		for m := range first {
			if !again.Has(m) {
				t.Errorf("seed %d: missing member %d", member, m)
			}
		}
	}
}

func TestCache_LRUEntryLimit(t *testing.T) {
	c := NewCache(2, 0)
	c.Put(Key{"a", 0}, newEntry(1, 1))
	c.Put(Key{"b", 0}, newEntry(1, 1))
	if _, ok := c.Get(Key{"a", 0}, 1, 1); !ok {
		t.Fatal("a should be cached")
	}
	c.Put(Key{"c", 0}, newEntry(1, 1))

	if _, ok := c.Get(Key{"b", 0}, 1, 1); ok {
		t.Error("b was least recently used and should be evicted")
	}
	keys := c.Keys()
	if len(keys) != 2 || keys[0] != (Key{"c", 0}) || keys[1] != (Key{"a", 0}) {
		t.Errorf("keys = %v, want [c a]", keys)
	}
	if st := c.Stats(); st.Evictions != 1 {
		t.Errorf("evictions = %d, want 1", st.Evictions)
	}
}

func TestCache_ByteBudget(t *testing.T) {
	c := NewCache(0, 2*entryOverheadBytes+100)
	c.Put(Key{"a", 0}, newEntry(1, 1))
	c.Put(Key{"b", 0}, newEntry(1, 1))

	// Growing b past the budget evicts a (oldest) first.
	e, _ := c.Get(Key{"b", 0}, 1, 1)
	e.Add(0.1, adjacency.Set{0: {}, 1: {}})
	c.Resized(Key{"b", 0})

	st := c.Stats()
	if st.Entries != 1 {
		t.Fatalf("entries = %d, want 1", st.Entries)
	}
	if _, ok := c.Get(Key{"b", 0}, 1, 1); !ok {
		t.Error("b should survive as most recently used")
	}
	if st.Bytes != e.ByteSize() {
		t.Errorf("bytes = %d, want %d", st.Bytes, e.ByteSize())
	}
}

func TestCache_StaleCountsRebuild(t *testing.T) {
	snap := mockSeamMesh()
	loc := NewLocator(NewCache(4, 0))
	req := Request{MeshID: "seam#1", Snapshot: snap, Submesh: 0, Seed: [2]float64{0.1, 0.1}}

	first, err := loc.Island(req)
	if err != nil {
		t.Fatalf("island: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("island size = %d, want 2", len(first))
	}

	// Report one more vertex: the cached map must not be reused.
	snap.Positions = append(snap.Positions, mathutil.Vec3{5, 5, 5})
	snap.UVs = append(snap.UVs, [2]float64{0.5, 0.5})
	if _, ok := loc.Cache().Get(Key{"seam#1", 0}, snap.VertexCount(), snap.TriangleCount()); ok {
		t.Fatal("cache returned an entry recorded for a different vertex count")
	}

	if _, err := loc.Island(req); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	st := loc.Cache().Stats()
	if st.Stale != 1 {
		t.Errorf("stale = %d, want 1", st.Stale)
	}
	e, ok := loc.Cache().Get(Key{"seam#1", 0}, snap.VertexCount(), snap.TriangleCount())
	if !ok || e.VertexCount != 9 {
		t.Errorf("expected rebuilt entry with 9 vertices, got %+v (ok=%v)", e, ok)
	}
}

func TestLocator_AnchorVertices(t *testing.T) {
	loc := NewLocator(nil)
	verts, err := loc.AnchorVertices(Request{
		MeshID:   "seam",
		Snapshot: mockSeamMesh(),
		Submesh:  0,
		Seed:     [2]float64{0.9, 0.9},
	})
	if err != nil {
		t.Fatalf("anchor: %v", err)
	}
	got := verts.Sorted()
	want := []int{4, 5, 6, 7}
	if len(got) != len(want) {
		t.Fatalf("vertices = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("vertices = %v, want %v", got, want)
		}
	}

	if _, err := loc.AnchorVertices(Request{Snapshot: mockSeamMesh(), Submesh: 3}); err == nil {
		t.Error("expected error for missing submesh")
	}
}
