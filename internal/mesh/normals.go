package mesh

import (
	"math"

	"fur-mask-baker/internal/mathutil"
)

// EnsureNormals fills Normals with area-weighted face normals when the
// source provided none. It writes the snapshot, so call it before the
// snapshot is shared.
func (s *Snapshot) EnsureNormals() {
	if len(s.Normals) != len(s.Positions) {
		s.Normals = s.faceNormals()
	}
}

// VertexNormals returns Normals when complete, otherwise freshly computed
// face normals. The snapshot is not modified.
func (s *Snapshot) VertexNormals() []mathutil.Vec3 {
	if len(s.Normals) == len(s.Positions) {
		return s.Normals
	}
	return s.faceNormals()
}

func (s *Snapshot) faceNormals() []mathutil.Vec3 {
	acc := make([]mathutil.Vec3, len(s.Positions))
	for si, sm := range s.Submeshes {
		for t := 0; t < sm.TriangleCount(); t++ {
			idx, ok := s.Triangle(si, t)
			if !ok {
				continue
			}
			p0, p1, p2 := s.Positions[idx[0]], s.Positions[idx[1]], s.Positions[idx[2]]
			// unnormalized cross product is area-weighted
			fn := p1.Sub(p0).Cross(p2.Sub(p0))
			for _, v := range idx {
				acc[v] = acc[v].Add(fn)
			}
		}
	}
	for i := range acc {
		acc[i] = acc[i].Normalize()
	}
	return acc
}

// Frame is a per-vertex tangent basis.
type Frame struct {
	Tangent   mathutil.Vec3
	Bitangent mathutil.Vec3
	Normal    mathutil.Vec3
}

// ToWorld maps a tangent-space vector into object space.
func (f Frame) ToWorld(ts mathutil.Vec3) mathutil.Vec3 {
	return mathutil.Mat3FromColumns(f.Tangent, f.Bitangent, f.Normal).MulVec3(ts)
}

// ToTangent maps an object-space vector into this tangent frame.
func (f Frame) ToTangent(v mathutil.Vec3) mathutil.Vec3 {
	return mathutil.Vec3{v.Dot(f.Tangent), v.Dot(f.Bitangent), v.Dot(f.Normal)}
}

// ComputeTangents builds orthonormal tangent frames from UV gradients.
// Triangles with a degenerate UV area are skipped. Vertices without any
// usable triangle get an arbitrary tangent perpendicular to the normal.
func (s *Snapshot) ComputeTangents() []Frame {
	normals := s.VertexNormals()
	n := len(s.Positions)
	tan := make([]mathutil.Vec3, n)
	bit := make([]mathutil.Vec3, n)

	for si, sm := range s.Submeshes {
		for t := 0; t < sm.TriangleCount(); t++ {
			idx, ok := s.Triangle(si, t)
			if !ok {
				continue
			}
			p0, p1, p2 := s.Positions[idx[0]], s.Positions[idx[1]], s.Positions[idx[2]]
			uv0, uv1, uv2 := s.UVs[idx[0]], s.UVs[idx[1]], s.UVs[idx[2]]

			e1 := p1.Sub(p0)
			e2 := p2.Sub(p0)
			du1, dv1 := uv1[0]-uv0[0], uv1[1]-uv0[1]
			du2, dv2 := uv2[0]-uv0[0], uv2[1]-uv0[1]

			den := du1*dv2 - du2*dv1
			if math.Abs(den) < mathutil.DegenerateDen {
				continue
			}
			r := 1.0 / den
			tv := e1.Scale(dv2 * r).Sub(e2.Scale(dv1 * r))
			bv := e2.Scale(du1 * r).Sub(e1.Scale(du2 * r))
			for _, v := range idx {
				tan[v] = tan[v].Add(tv)
				bit[v] = bit[v].Add(bv)
			}
		}
	}

	frames := make([]Frame, n)
	for i := 0; i < n; i++ {
		nrm := normals[i]
		// Gram-Schmidt
		t := tan[i].Sub(nrm.Scale(nrm.Dot(tan[i])))
		if t.LenSq() < 1e-16 {
			if math.Abs(nrm[0]) < 0.9 {
				t = mathutil.Vec3{1, 0, 0}.Sub(nrm.Scale(nrm[0]))
			} else {
				t = mathutil.Vec3{0, 1, 0}.Sub(nrm.Scale(nrm[1]))
			}
		}
		t = t.Normalize()
		b := nrm.Cross(t)
		if b.Dot(bit[i]) < 0 {
			b = b.Scale(-1)
		}
		frames[i] = Frame{Tangent: t, Bitangent: b, Normal: nrm}
	}
	return frames
}
