package config

import (
	"fur-mask-baker/internal/bake"
	"fur-mask-baker/internal/influence"
	"fur-mask-baker/internal/mathutil"
)

// Settings converts the shared bake section.
func (c *Config) Settings() bake.Settings {
	b := c.Bake
	return bake.Settings{
		TextureSize: b.TextureSize,
		BatchSize:   b.BatchSize,
		Iterations:  b.Iterations,
		Threshold:   b.Threshold,
		Gamma:       b.Gamma,
		MaxDistance: b.MaxDistance,
		RayEpsilon:  b.RayEpsilon,
		Padding:     b.Padding,
		UVThreshold: b.UVThreshold,
	}
}

// TargetSettings returns the shared settings with t's overrides applied.
func (c *Config) TargetSettings(t TargetConfig) bake.Settings {
	s := c.Settings()
	if t.TextureSize != 0 {
		s.TextureSize = t.TextureSize
	}
	return s
}

// KindValue parses Kind; invalid values were rejected by Validate.
func (t TargetConfig) KindValue() bake.Kind {
	k, _ := bake.ParseKind(t.Kind)
	return k
}

// SphereList converts the sphere definitions.
func (t TargetConfig) SphereList() []influence.Sphere {
	out := make([]influence.Sphere, len(t.Spheres))
	for i, s := range t.Spheres {
		out[i] = influence.Sphere{
			Position:      mathutil.Vec3(s.Position),
			Radius:        s.Radius,
			GradientWidth: s.GradientWidth,
			Intensity:     s.Intensity,
			Mirror:        s.Mirror,
		}
	}
	return out
}

// AnchorList converts the UV anchors.
func (t TargetConfig) AnchorList() []bake.Anchor {
	out := make([]bake.Anchor, len(t.Anchors))
	for i, a := range t.Anchors {
		out[i] = bake.Anchor{Submesh: a.Submesh, Seed: a.UV, Threshold: a.Threshold}
	}
	return out
}

// RootTransform returns the avatar root matrix, identity when unset. A
// zero scale component counts as 1.
func (t TargetConfig) RootTransform() mathutil.Mat4 {
	if t.Root == nil {
		return mathutil.Mat4Identity()
	}
	scale := mathutil.Vec3(t.Root.Scale)
	for i := range scale {
		if scale[i] == 0 {
			scale[i] = 1
		}
	}
	q := mathutil.EulerDegToQuat(mathutil.Vec3(t.Root.Rotation))
	return mathutil.TRS(mathutil.Vec3(t.Root.Position), q, scale)
}

// Mirrorer returns the mirror for t's root transform.
func (t TargetConfig) Mirrorer() *influence.Mirrorer {
	return influence.NewMirrorer(t.RootTransform())
}
