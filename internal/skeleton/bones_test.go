package skeleton

import (
	"math"
	"testing"

	"fur-mask-baker/internal/bmd"
	"fur-mask-baker/internal/mathutil"
)

func TestBuildWorldMatrices_Chain(t *testing.T) {
	bones := []bmd.Bone{
		{Name: "Root", Parent: -1, BindPosition: [3]float64{0, 0, 1}},
		{Name: "Spine", Parent: 0, BindPosition: [3]float64{1, 0, 0}, BindRotation: [3]float64{0, 0, math.Pi / 2}},
		{Parent: -1, IsDummy: true},
	}
	worlds := BuildWorldMatrices(bones)

	// Spine origin at root + (1,0,0)
	p := worlds[1].MulPoint(mathutil.Vec3{})
	if p.Dist(mathutil.Vec3{1, 0, 1}) > 1e-9 {
		t.Errorf("spine origin = %v", p)
	}
	// 90° about Z maps +X to +Y
	p = worlds[1].MulPoint(mathutil.Vec3{1, 0, 0})
	if p.Dist(mathutil.Vec3{1, 1, 1}) > 1e-9 {
		t.Errorf("spine +X = %v", p)
	}
	if !worlds[2].IsIdentity() {
		t.Error("dummy bone should stay identity")
	}
}

func TestBonePaths(t *testing.T) {
	bones := []bmd.Bone{
		{Name: "Root", Parent: -1},
		{Name: "Spine", Parent: 0},
		{Name: "Tail", Parent: 1},
		{IsDummy: true, Parent: -1},
		{Name: "Orphan", Parent: 3},
	}
	got := BonePaths(bones)
	want := []string{"Root", "Root/Spine", "Root/Spine/Tail", "", "Orphan"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("path %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestApplyTransforms(t *testing.T) {
	meshes := []bmd.Mesh{{
		Verts:       [][3]float32{{0, 0, 0}, {1, 0, 0}},
		Nodes:       []int16{0, 5},
		Normals:     [][3]float32{{1, 0, 0}},
		NormalNodes: []int16{0},
	}}
	bones := []bmd.Bone{{Parent: -1, BindPosition: [3]float64{0, 2, 0}, BindRotation: [3]float64{0, 0, math.Pi / 2}}}

	if !ApplyTransforms(meshes, bones) {
		t.Fatal("expected transform to apply")
	}
	if v := meshes[0].Verts[0]; v != [3]float32{0, 2, 0} {
		t.Errorf("vertex 0 = %v", v)
	}
	if v := meshes[0].Verts[1]; v != [3]float32{1, 0, 0} {
		t.Errorf("vertex with unknown bone moved: %v", v)
	}
	n := meshes[0].Normals[0]
	if math.Abs(float64(n[1])-1) > 1e-6 || math.Abs(float64(n[0])) > 1e-6 {
		t.Errorf("normal = %v, want +Y", n)
	}

	if ApplyTransforms(meshes, []bmd.Bone{{Parent: -1}}) {
		t.Error("identity bind pose should be a no-op")
	}
}
