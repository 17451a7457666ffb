package collider

import (
	"math"

	"fur-mask-baker/internal/mathutil"
)

// Ray is a half-line. Direction need not be normalized, but hit distances
// are in units of its length.
type Ray struct {
	Origin    mathutil.Vec3
	Direction mathutil.Vec3
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min mathutil.Vec3
	Max mathutil.Vec3
}

func emptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: mathutil.Vec3{inf, inf, inf},
		Max: mathutil.Vec3{-inf, -inf, -inf},
	}
}

func (b *AABB) extend(p mathutil.Vec3) {
	for k := 0; k < 3; k++ {
		b.Min[k] = math.Min(b.Min[k], p[k])
		b.Max[k] = math.Max(b.Max[k], p[k])
	}
}

func (b *AABB) union(o AABB) {
	b.extend(o.Min)
	b.extend(o.Max)
}

// longestAxis returns the axis along which the box is widest.
func (b AABB) longestAxis() int {
	d := b.Max.Sub(b.Min)
	axis := 0
	if d[1] > d[axis] {
		axis = 1
	}
	if d[2] > d[axis] {
		axis = 2
	}
	return axis
}

// IntersectAABB runs the slab test and returns the parametric interval
// [tmin, tmax] of the ray inside the box. It reports false when the ray
// misses or the box lies entirely behind the origin.
func (r Ray) IntersectAABB(box AABB) (tmin, tmax float64, hit bool) {
	tmin = math.Inf(-1)
	tmax = math.Inf(1)

	for k := 0; k < 3; k++ {
		if r.Direction[k] != 0 {
			t1 := (box.Min[k] - r.Origin[k]) / r.Direction[k]
			t2 := (box.Max[k] - r.Origin[k]) / r.Direction[k]
			if t1 > t2 {
				t1, t2 = t2, t1
			}
			if t1 > tmin {
				tmin = t1
			}
			if t2 < tmax {
				tmax = t2
			}
		} else if r.Origin[k] < box.Min[k] || r.Origin[k] > box.Max[k] {
			return 0, 0, false
		}
	}

	if tmax < tmin || tmax < 0 {
		return 0, 0, false
	}
	return tmin, tmax, true
}

// parallelEps rejects rays nearly parallel to a triangle's plane.
const parallelEps = 1e-12

// IntersectTriangle is the Möller–Trumbore test. Both faces count; only
// hits at t >= 0 are reported.
func (r Ray) IntersectTriangle(a, b, c mathutil.Vec3) (float64, bool) {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := r.Direction.Cross(e2)
	det := e1.Dot(p)
	if det > -parallelEps && det < parallelEps {
		return 0, false
	}
	inv := 1 / det

	s := r.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := r.Direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := e2.Dot(q) * inv
	if t < 0 {
		return 0, false
	}
	return t, true
}
