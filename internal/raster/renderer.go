package raster

import "fur-mask-baker/internal/mesh"

// RasterizeSubmesh draws every valid triangle of submesh sub into buf and
// returns how many triangles were submitted. Triangles with missing
// vertices are skipped.
func RasterizeSubmesh(buf *Buffer, snap *mesh.Snapshot, sub int, shader Shader) int {
	if sub < 0 || sub >= len(snap.Submeshes) {
		return 0
	}
	n := 0
	for t := 0; t < snap.Submeshes[sub].TriangleCount(); t++ {
		idx, ok := snap.Triangle(sub, t)
		if !ok {
			continue
		}
		RasterizeTriangle(buf, snap.TriangleUVs(idx), shader, idx)
		n++
	}
	return n
}

// Layer is one submesh rendered on its own.
type Layer struct {
	Submesh  int
	Material string
	Buffer   *Buffer
}

// RenderSubmeshes renders each submesh into its own buffer, in submesh
// order, so that layers sharing a material can be merged afterwards.
func RenderSubmeshes(snap *mesh.Snapshot, size int, shader Shader) []Layer {
	layers := make([]Layer, 0, len(snap.Submeshes))
	for si, sm := range snap.Submeshes {
		buf := NewBuffer(size)
		RasterizeSubmesh(buf, snap, si, shader)
		layers = append(layers, Layer{Submesh: si, Material: sm.Material, Buffer: buf})
	}
	return layers
}
