// Package influence evaluates the topology-independent mask volumes:
// spherical gradients and per-vertex bone control values.
package influence

import (
	"math"

	"fur-mask-baker/internal/mathutil"
)

// Intensity bounds applied to every sphere before evaluation.
const (
	IntensityMin = 0.0
	IntensityMax = 1.0
)

// Sphere is a spherical gradient volume. Inside Radius*(1-GradientWidth)
// the mask is 0; across the gradient band it rises back to 1.
type Sphere struct {
	Position      mathutil.Vec3
	Radius        float64
	GradientWidth float64
	Intensity     float64
	Mirror        bool
}

// MirrorFunc maps a world position to its mirror image.
type MirrorFunc func(mathutil.Vec3) mathutil.Vec3

// Mirrorer reflects world positions across the X axis of an avatar's local
// space.
type Mirrorer struct {
	m mathutil.Mat4
}

// NewMirrorer builds a mirror for the given avatar root transform
// (local to world). The identity transform mirrors across world X.
func NewMirrorer(root mathutil.Mat4) *Mirrorer {
	flip := mathutil.FromMat3Translation(mathutil.Mat3Diag(-1, 1, 1), mathutil.Vec3{})
	return &Mirrorer{m: mathutil.Mat4Mul(root, mathutil.Mat4Mul(flip, root.AffineInverse()))}
}

// Reflect returns the mirror image of p.
func (m *Mirrorer) Reflect(p mathutil.Vec3) mathutil.Vec3 {
	return m.m.MulPoint(p)
}

// Func adapts the mirrorer to a MirrorFunc. A nil mirrorer reflects across
// world X.
func (m *Mirrorer) Func() MirrorFunc {
	if m == nil {
		return func(p mathutil.Vec3) mathutil.Vec3 { return mathutil.Vec3{-p[0], p[1], p[2]} }
	}
	return m.Reflect
}

func (s Sphere) inner() float64 {
	return s.Radius * (1 - s.GradientWidth)
}

func (s Sphere) band() float64 {
	return math.Max(mathutil.Epsilon, s.Radius-s.inner())
}

// reach is the distance past which the sphere evaluates to exactly 1.
func (s Sphere) reach() float64 {
	return s.inner() + s.band()
}

func sphereValue(p, center mathutil.Vec3, s Sphere) float64 {
	inner := s.inner()
	d := p.Dist(center)
	if d <= inner {
		return 0
	}
	t := mathutil.Clamp01((d - inner) / s.band())
	return mathutil.Lerp(1, t, mathutil.Clamp(s.Intensity, IntensityMin, IntensityMax))
}

// SphereMask evaluates one sphere at p. With s.Mirror set the sphere is
// also evaluated at its mirrored centre and the smaller value wins. A nil
// mirror reflects across world X.
func SphereMask(p mathutil.Vec3, s Sphere, mirror MirrorFunc) float64 {
	v := sphereValue(p, s.Position, s)
	if s.Mirror {
		if mirror == nil {
			mirror = (*Mirrorer)(nil).Func()
		}
		v = math.Min(v, sphereValue(p, mirror(s.Position), s))
	}
	return v
}

// SpheresMask is the minimum of SphereMask over all spheres, 1 when there
// are none. A centre farther than the sphere's reach (its radius, or the
// epsilon band for hard-edged spheres) evaluates to exactly 1, so such
// centres are skipped without changing the result.
func SpheresMask(p mathutil.Vec3, spheres []Sphere, mirror MirrorFunc) float64 {
	if mirror == nil {
		mirror = (*Mirrorer)(nil).Func()
	}
	out := 1.0
	for _, s := range spheres {
		r := s.reach()
		r2 := r * r
		if p.DistSq(s.Position) <= r2 {
			out = math.Min(out, sphereValue(p, s.Position, s))
		}
		if s.Mirror {
			if c := mirror(s.Position); p.DistSq(c) <= r2 {
				out = math.Min(out, sphereValue(p, c, s))
			}
		}
		if out == 0 {
			break
		}
	}
	return out
}

// BoneMask converts a resolved bone control value to a mask value.
func BoneMask(control float64) float64 {
	return 1 - mathutil.Clamp01(control)
}
