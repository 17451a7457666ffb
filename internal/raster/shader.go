package raster

import (
	"image/color"

	"fur-mask-baker/internal/mathutil"
	"fur-mask-baker/internal/mesh"
)

// MaskShader writes the interpolated field as opaque gray.
type MaskShader struct {
	Values []float64
}

func (s MaskShader) Shade(c [3]int, w0, w1, w2 float64) color.NRGBA {
	v := mathutil.Clamp01(w0*s.Values[c[0]] + w1*s.Values[c[1]] + w2*s.Values[c[2]])
	g := clamp255(v * 255)
	return color.NRGBA{R: g, G: g, B: g, A: 255}
}

// DirectionShader writes the interpolated object-space direction encoded
// in the interpolated tangent frame, mapped from [-1,1] to [0,255].
type DirectionShader struct {
	Directions []mathutil.Vec3
	Frames     []mesh.Frame
}

func (s DirectionShader) Shade(c [3]int, w0, w1, w2 float64) color.NRGBA {
	d := mathutil.Lerp3(s.Directions[c[0]], s.Directions[c[1]], s.Directions[c[2]], w0, w1, w2)
	f0, f1, f2 := s.Frames[c[0]], s.Frames[c[1]], s.Frames[c[2]]
	f := mesh.Frame{
		Tangent:   mathutil.Lerp3(f0.Tangent, f1.Tangent, f2.Tangent, w0, w1, w2).Normalize(),
		Bitangent: mathutil.Lerp3(f0.Bitangent, f1.Bitangent, f2.Bitangent, w0, w1, w2).Normalize(),
		Normal:    mathutil.Lerp3(f0.Normal, f1.Normal, f2.Normal, w0, w1, w2).Normalize(),
	}
	ts := f.ToTangent(d).Normalize()
	if ts.LenSq() == 0 {
		ts = mathutil.Vec3{0, 0, 1}
	}
	return EncodeDirection(ts)
}

// EncodeDirection maps a unit tangent-space vector to RGB.
func EncodeDirection(ts mathutil.Vec3) color.NRGBA {
	return color.NRGBA{
		R: clamp255((ts[0]*0.5 + 0.5) * 255),
		G: clamp255((ts[1]*0.5 + 0.5) * 255),
		B: clamp255((ts[2]*0.5 + 0.5) * 255),
		A: 255,
	}
}

// DecodeDirection is the inverse of EncodeDirection on float channels in [0,1].
func DecodeDirection(r, g, b float64) mathutil.Vec3 {
	return mathutil.Vec3{r*2 - 1, g*2 - 1, b*2 - 1}
}
