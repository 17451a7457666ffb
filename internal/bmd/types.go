// Package bmd reads the unencrypted (version 10) BMD model format.
package bmd

// Triangle holds polygon type and index quads into vertex/normal/texcoord arrays.
// Polygon == 4 means quad (two triangles: 0-1-2 and 0-2-3).
type Triangle struct {
	Polygon int
	VI      [4]int16
	NI      [4]int16
	TI      [4]int16
}

// Corners returns the triangles the polygon splits into, as corner slots
// 0..3 of VI/NI/TI.
func (t Triangle) Corners() [][3]int {
	if t.Polygon == 4 {
		return [][3]int{{0, 1, 2}, {0, 2, 3}}
	}
	return [][3]int{{0, 1, 2}}
}

// Mesh holds parsed geometry for one sub-mesh within a BMD file.
type Mesh struct {
	Verts       [][3]float32 // vertex positions, mutable for bone transforms
	Nodes       []int16      // bone index per vertex
	Normals     [][3]float32
	NormalNodes []int16 // bone index per normal
	UVs         [][2]float32
	Tris        []Triangle
	TexPath     string // texture reference from BMD (e.g. "skin01.jpg")
}

// Bone holds bind-pose data for one bone in the skeleton hierarchy.
type Bone struct {
	Name         string
	Parent       int
	IsDummy      bool
	BindPosition [3]float64
	BindRotation [3]float64 // Euler XYZ radians
}

// Model is a parsed BMD file.
type Model struct {
	Name   string
	Meshes []Mesh
	Bones  []Bone
}
