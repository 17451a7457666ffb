package field

import (
	"fur-mask-baker/internal/mathutil"
	"fur-mask-baker/internal/mesh"
)

// TangentSampler returns a tangent-space direction at a UV coordinate.
type TangentSampler interface {
	SampleTangent(u, v float64) mathutil.Vec3
}

// SampleDirections picks the ray direction of every vertex: the vertex
// normal, or when the vertex's material has a direction map, the map's
// tangent-space direction at the vertex UV moved into object space.
func SampleDirections(snap *mesh.Snapshot, maps map[string]TangentSampler) []mathutil.Vec3 {
	dirs := make([]mathutil.Vec3, snap.VertexCount())
	copy(dirs, snap.VertexNormals())
	if len(maps) == 0 {
		return dirs
	}

	frames := snap.ComputeTangents()
	for i, mat := range snap.VertexMaterials() {
		sampler, ok := maps[mat]
		if !ok || sampler == nil {
			continue
		}
		uv := snap.UVs[i]
		d := frames[i].ToWorld(sampler.SampleTangent(uv[0], uv[1])).Normalize()
		if d.LenSq() > 0 {
			dirs[i] = d
		}
	}
	return dirs
}
