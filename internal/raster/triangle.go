package raster

import (
	"image/color"
	"math"
)

// Rasterization tolerances.
const (
	// MinArea is the smallest pixel-space area (px²) a triangle may have.
	MinArea = 1e-10
	// EdgeTolerance admits pixel centres just outside an edge.
	EdgeTolerance = -1e-4
)

// Shader produces the color of a covered pixel from the triangle's corner
// vertex indices and the barycentric weights of the pixel centre.
type Shader interface {
	Shade(corner [3]int, w0, w1, w2 float64) color.NRGBA
}

// ToPixel maps a UV coordinate to pixel space. V is flipped so that row 0
// is the top of the image.
func ToPixel(uv [2]float64, size int) (x, y float64) {
	s := float64(size)
	return uv[0] * s, (1 - uv[1]) * s
}

// RasterizeTriangle fills every pixel whose centre lies inside the UV
// triangle, writing shader output and marking the pixel rasterized.
//
// This is the hot path and does not allocate.
func RasterizeTriangle(buf *Buffer, uv [3][2]float64, shader Shader, corner [3]int) {
	size := buf.Size
	x0, y0 := ToPixel(uv[0], size)
	x1, y1 := ToPixel(uv[1], size)
	x2, y2 := ToPixel(uv[2], size)

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if math.Abs(det)*0.5 < MinArea {
		return
	}
	invDet := 1.0 / det

	// Bounding box
	minX := int(math.Floor(math.Min(math.Min(x0, x1), x2)))
	maxX := int(math.Ceil(math.Max(math.Max(x0, x1), x2)))
	minY := int(math.Floor(math.Min(math.Min(y0, y1), y2)))
	maxY := int(math.Ceil(math.Max(math.Max(y0, y1), y2)))
	if maxX < 0 || maxY < 0 || minX >= size || minY >= size {
		return
	}

	if minX < 0 {
		minX = 0
	}
	if maxX >= size {
		maxX = size - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY >= size {
		maxY = size - 1
	}

	// Precompute edge deltas
	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) + 0.5 - y2
		rowOff := sy * size
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1

			if w0 < EdgeTolerance || w1 < EdgeTolerance || w2 < EdgeTolerance {
				continue
			}

			i := rowOff + sx
			buf.Set(i, shader.Shade(corner, w0, w1, w2))
			buf.Rasterized[i] = true
		}
	}
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
