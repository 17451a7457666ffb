package field

import (
	"math"
	"testing"

	"fur-mask-baker/internal/adjacency"
	"fur-mask-baker/internal/collider"
	"fur-mask-baker/internal/influence"
	"fur-mask-baker/internal/mathutil"
	"fur-mask-baker/internal/mesh"
)

// countingCollider records every query and reports a fixed hit.
type countingCollider struct {
	calls int
	dist  float64
	hit   bool
}

func (c *countingCollider) Raycast(origin, dir mathutil.Vec3, maxDist float64) (float64, bool) {
	c.calls++
	if !c.hit || c.dist > maxDist {
		return 0, false
	}
	return c.dist, true
}

func TestCompute_NoCollider(t *testing.T) {
	s := &Solver{
		Positions: []mathutil.Vec3{{0.8, 0, 0}, {5, 0, 0}},
		Spheres:   []influence.Sphere{{Radius: 1, GradientWidth: 0.5, Intensity: 1}},
	}
	if got := s.Compute(0); math.Abs(got-0.6) > 1e-12 {
		t.Errorf("vertex 0: got %v, want 0.6", got)
	}
	if got := s.Compute(1); got != 1 {
		t.Errorf("vertex 1: got %v, want 1", got)
	}
}

func TestCompute_RayDistance(t *testing.T) {
	c := &countingCollider{dist: 0.05 + mathutil.Epsilon, hit: true}
	s := &Solver{
		Positions:   []mathutil.Vec3{{0, 0, 0}},
		Directions:  []mathutil.Vec3{{0, 0, 2}},
		Collider:    c,
		MaxDistance: 0.1,
	}
	if got := s.Compute(0); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("got %v, want 0.5", got)
	}

	miss := &Solver{
		Positions:  []mathutil.Vec3{{0, 0, 0}},
		Directions: []mathutil.Vec3{{0, 0, 1}},
		Collider:   &countingCollider{},
	}
	if got := miss.Compute(0); got != 1 {
		t.Errorf("miss: got %v, want 1", got)
	}
}

func TestCompute_ShortCircuitSkipsRay(t *testing.T) {
	c := &countingCollider{dist: 1, hit: true}
	s := &Solver{
		Positions:   []mathutil.Vec3{{0, 0, 0}, {0, 0, 0}},
		Directions:  []mathutil.Vec3{{0, 0, 1}, {0, 0, 1}},
		BoneControl: []float64{1, 0},
		Collider:    c,
		MaxDistance: 2,
	}
	if got := s.Compute(0); got != 0 {
		t.Errorf("fully bone-masked vertex: got %v, want 0", got)
	}
	if c.calls != 0 {
		t.Errorf("ray cast for a fully masked vertex (%d calls)", c.calls)
	}
	s.Compute(1)
	s.Compute(1)
	if c.calls != 1 {
		t.Errorf("memoization: %d ray casts, want 1", c.calls)
	}
}

func TestComputeRange(t *testing.T) {
	s := &Solver{Positions: make([]mathutil.Vec3, 10)}
	next := s.ComputeRange(0, 4)
	if next != 4 {
		t.Fatalf("next = %d, want 4", next)
	}
	if next = s.ComputeRange(next, 100); next != 10 {
		t.Fatalf("next = %d, want 10", next)
	}
	for i, v := range s.Values() {
		if v != 1 {
			t.Errorf("vertex %d: %v, want 1", i, v)
		}
	}
}

func TestApplyAnchors(t *testing.T) {
	values := []float64{0.5, 0.7, 0.9, 1}
	flags := ApplyAnchors(values, adjacency.Set{1: {}, 3: {}}, adjacency.Set{3: {}, 99: {}})
	want := []float64{0.5, 0, 0.9, 0}
	wantFlags := []bool{false, true, false, true}
	for i := range values {
		if values[i] != want[i] || flags[i] != wantFlags[i] {
			t.Errorf("vertex %d: (%v, %v), want (%v, %v)", i, values[i], flags[i], want[i], wantFlags[i])
		}
	}
}

func TestApplyGamma(t *testing.T) {
	values := []float64{0.1, 0.3333333333333333, 0.7000000000000001, 1}
	orig := append([]float64(nil), values...)
	ApplyGamma(values, 1)
	for i := range values {
		if values[i] != orig[i] {
			t.Errorf("gamma 1 changed value %d: %v -> %v", i, orig[i], values[i])
		}
	}

	values = []float64{-0.5, 0.25, 1.5}
	ApplyGamma(values, 2)
	want := []float64{0, 0.0625, 1}
	for i := range values {
		if math.Abs(values[i]-want[i]) > 1e-12 {
			t.Errorf("gamma 2 value %d: %v, want %v", i, values[i], want[i])
		}
	}
}

type constSampler mathutil.Vec3

func (c constSampler) SampleTangent(u, v float64) mathutil.Vec3 { return mathutil.Vec3(c) }

func TestSampleDirections(t *testing.T) {
	snap := &mesh.Snapshot{
		Positions: []mathutil.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}, {2, 0, 0}, {3, 0, 0}, {3, 1, 0}},
		UVs:       [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}, {1, 0}, {1, 1}},
		Submeshes: []mesh.Submesh{
			{Triangles: []int{0, 1, 2, 0, 2, 3}, Material: "Body"},
			{Triangles: []int{4, 5, 6}, Material: "Tail"},
		},
	}
	// tangent X is the U direction, which is world +X for this quad
	dirs := SampleDirections(snap, map[string]TangentSampler{"Body": constSampler{1, 0, 0}})
	for i := 0; i < 4; i++ {
		if dirs[i].Dist(mathutil.Vec3{1, 0, 0}) > 1e-9 {
			t.Errorf("body vertex %d: %v, want +X", i, dirs[i])
		}
	}
	for i := 4; i < 7; i++ {
		if dirs[i].Dist(mathutil.Vec3{0, 0, 1}) > 1e-9 {
			t.Errorf("tail vertex %d: %v, want normal +Z", i, dirs[i])
		}
	}
	if snap.Normals != nil {
		t.Error("SampleDirections wrote normals into the shared snapshot")
	}
}

func TestCompute_BVHCollider(t *testing.T) {
	plane := collider.NewTriangleBVH([][3]mathutil.Vec3{
		{{-1, -1, 0.025}, {1, -1, 0.025}, {0, 1, 0.025}},
	})
	s := &Solver{
		Positions:   []mathutil.Vec3{{0, 0, 0}},
		Directions:  []mathutil.Vec3{{0, 0, 1}},
		Collider:    plane,
		MaxDistance: 0.1,
	}
	// ray starts eps behind the vertex; subtracting eps cancels it
	if got := s.Compute(0); math.Abs(got-0.25) > 1e-9 {
		t.Errorf("got %v, want 0.25", got)
	}
}
