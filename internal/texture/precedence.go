// Package texture turns rasterized layers into final textures: merging
// layers that share a material, padding island borders and loading
// direction maps.
package texture

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Precedence reports whether candidate should replace current when two
// layers cover the same pixel.
type Precedence func(candidate, current color.NRGBA) bool

func blackOpaque(c color.NRGBA) bool {
	return c.R == 0 && c.G == 0 && c.B == 0 && c.A == 255
}

// Luminance returns the CIE Y of an sRGB color.
func Luminance(c color.NRGBA) float64 {
	cc := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	_, y, _ := cc.Xyz()
	return y
}

func packed(c color.NRGBA) uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
}

// MaskPrecedence keeps the more masked pixel: opaque black first, then
// lower luminance, then lower alpha. Remaining ties compare the packed
// RGBA value so the result never depends on layer order.
func MaskPrecedence(candidate, current color.NRGBA) bool {
	cb, kb := blackOpaque(candidate), blackOpaque(current)
	if cb != kb {
		return cb
	}
	if lc, lk := Luminance(candidate), Luminance(current); lc != lk {
		return lc < lk
	}
	if candidate.A != current.A {
		return candidate.A < current.A
	}
	return packed(candidate) < packed(current)
}

// FirstWins keeps whichever layer wrote the pixel first. Used for
// direction maps, where channel values carry no masking meaning.
func FirstWins(candidate, current color.NRGBA) bool {
	return false
}
