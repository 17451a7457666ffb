package raster

import (
	"image"
	"image/color"
)

// SampleBilinear performs bilinear filtering with UV wrapping and returns
// the channels in [0,1]. V is flipped to match ToPixel, so (0,1) is the
// top-left texel. Accesses tex.Pix directly for performance.
func SampleBilinear(tex *image.NRGBA, u, v float64) [4]float64 {
	w := tex.Rect.Dx()
	h := tex.Rect.Dy()
	if w == 0 || h == 0 {
		return [4]float64{}
	}

	// Wrap UVs
	u = u - float64(int(u))
	if u < 0 {
		u += 1.0
	}
	v = v - float64(int(v))
	if v < 0 {
		v += 1.0
	}
	v = 1 - v

	fx := u * float64(w-1)
	fy := v * float64(h-1)
	x0 := int(fx)
	y0 := int(fy)
	x1 := (x0 + 1) % w
	y1 := (y0 + 1) % h
	dx := fx - float64(x0)
	dy := fy - float64(y0)

	stride := tex.Stride
	pix := tex.Pix

	// Four texels
	i00 := y0*stride + x0*4
	i10 := y0*stride + x1*4
	i01 := y1*stride + x0*4
	i11 := y1*stride + x1*4

	w00 := (1 - dx) * (1 - dy)
	w10 := dx * (1 - dy)
	w01 := (1 - dx) * dy
	w11 := dx * dy

	var out [4]float64
	for c := 0; c < 4; c++ {
		out[c] = (float64(pix[i00+c])*w00 + float64(pix[i10+c])*w10 +
			float64(pix[i01+c])*w01 + float64(pix[i11+c])*w11) / 255
	}
	return out
}

// SampleTexture is SampleBilinear quantized back to 8-bit channels.
func SampleTexture(tex *image.NRGBA, u, v float64) color.NRGBA {
	s := SampleBilinear(tex, u, v)
	return color.NRGBA{R: clamp255(s[0] * 255), G: clamp255(s[1] * 255), B: clamp255(s[2] * 255), A: clamp255(s[3] * 255)}
}
