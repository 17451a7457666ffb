// Package mesh defines the immutable per-bake mesh snapshot consumed by the
// baking stages, plus its validation and derived per-vertex data.
package mesh

import "fur-mask-baker/internal/mathutil"

// Submesh is one triangle list drawn with a single material.
type Submesh struct {
	Triangles []int // flat index triples into the snapshot vertex arrays
	Material  string
}

// TriangleCount returns the number of index triples (valid or not).
func (s Submesh) TriangleCount() int {
	return len(s.Triangles) / 3
}

// Skin holds up to four joint influences per vertex.
type Skin struct {
	Joints    [][4]int
	Weights   [][4]float64
	BonePaths []string // indexed by joint
}

// Snapshot is the baked, static mesh. All per-vertex arrays share one index space.
type Snapshot struct {
	Name      string
	Positions []mathutil.Vec3
	Normals   []mathutil.Vec3
	UVs       [][2]float64
	Submeshes []Submesh
	Skin      *Skin
}

// VertexCount returns the number of vertices.
func (s *Snapshot) VertexCount() int {
	return len(s.Positions)
}

// TriangleCount returns the total number of triangles across submeshes.
func (s *Snapshot) TriangleCount() int {
	n := 0
	for _, sm := range s.Submeshes {
		n += sm.TriangleCount()
	}
	return n
}

// Triangle returns the corner indices of triangle t in submesh sub. ok is
// false when the triangle does not exist or references a missing vertex.
func (s *Snapshot) Triangle(sub, t int) ([3]int, bool) {
	if sub < 0 || sub >= len(s.Submeshes) {
		return [3]int{}, false
	}
	tris := s.Submeshes[sub].Triangles
	if t < 0 || t*3+2 >= len(tris) {
		return [3]int{}, false
	}
	idx := [3]int{tris[t*3], tris[t*3+1], tris[t*3+2]}
	n := len(s.Positions)
	for _, i := range idx {
		if i < 0 || i >= n {
			return [3]int{}, false
		}
	}
	return idx, true
}

// TriangleUVs returns the UV corners of a triangle by its vertex indices.
func (s *Snapshot) TriangleUVs(idx [3]int) [3][2]float64 {
	return [3][2]float64{s.UVs[idx[0]], s.UVs[idx[1]], s.UVs[idx[2]]}
}

// Materials returns material names in first-seen submesh order.
func (s *Snapshot) Materials() []string {
	seen := make(map[string]bool)
	var out []string
	for _, sm := range s.Submeshes {
		if !seen[sm.Material] {
			seen[sm.Material] = true
			out = append(out, sm.Material)
		}
	}
	return out
}

// VertexMaterials maps every vertex to the material of the first submesh
// that references it; unreferenced vertices map to "".
func (s *Snapshot) VertexMaterials() []string {
	out := make([]string, len(s.Positions))
	done := make([]bool, len(s.Positions))
	for si, sm := range s.Submeshes {
		for t := 0; t < sm.TriangleCount(); t++ {
			idx, ok := s.Triangle(si, t)
			if !ok {
				continue
			}
			for _, v := range idx {
				if !done[v] {
					done[v] = true
					out[v] = sm.Material
				}
			}
		}
	}
	return out
}
