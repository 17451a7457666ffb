package texture

import (
	"math"

	"fur-mask-baker/internal/raster"
)

// Padding reference: 4px at 1024px, scaled linearly.
const (
	referencePadding = 4
	referenceSize    = 1024
)

// PaddingRadius returns override when it is non-negative, otherwise the
// resolution-scaled default (at least 1px).
func PaddingRadius(size, override int) int {
	if override >= 0 {
		return override
	}
	r := int(math.Round(float64(referencePadding*size) / referenceSize))
	if r < 1 {
		r = 1
	}
	return r
}

// Dilate gives every uncovered pixel within radius of a covered pixel the
// color of its nearest covered pixel (Euclidean, first in scan order on
// ties). Covered pixels and the coverage mask are left untouched. It
// returns the number of pixels filled.
func Dilate(buf *raster.Buffer, radius int) int {
	if radius <= 0 {
		return 0
	}
	size := buf.Size
	valid := buf.Rasterized
	sat := coverageTable(valid, size)
	r2 := radius * radius
	filled := 0

	for y := 0; y < size; y++ {
		y0, y1 := max(0, y-radius), min(size-1, y+radius)
		for x := 0; x < size; x++ {
			if valid[y*size+x] {
				continue
			}
			x0, x1 := max(0, x-radius), min(size-1, x+radius)
			if sat.count(x0, y0, x1, y1) == 0 {
				continue
			}

			best, bestD := -1, r2+1
			for sy := y0; sy <= y1; sy++ {
				dy := sy - y
				for sx := x0; sx <= x1; sx++ {
					j := sy*size + sx
					if !valid[j] {
						continue
					}
					dx := sx - x
					if d := dx*dx + dy*dy; d < bestD {
						best, bestD = j, d
					}
				}
			}
			if best >= 0 {
				buf.Set(y*size+x, buf.At(best))
				filled++
			}
		}
	}
	return filled
}

// summedArea counts covered pixels over rectangles in O(1).
type summedArea struct {
	w   int
	sum []int32 // (size+1)² prefix sums
}

func coverageTable(valid []bool, size int) summedArea {
	w := size + 1
	s := make([]int32, w*w)
	for y := 0; y < size; y++ {
		var row int32
		for x := 0; x < size; x++ {
			if valid[y*size+x] {
				row++
			}
			s[(y+1)*w+x+1] = s[y*w+x+1] + row
		}
	}
	return summedArea{w: w, sum: s}
}

// count returns covered pixels in the inclusive rectangle.
func (a summedArea) count(x0, y0, x1, y1 int) int32 {
	w := a.w
	return a.sum[(y1+1)*w+x1+1] - a.sum[y0*w+x1+1] - a.sum[(y1+1)*w+x0] + a.sum[y0*w+x0]
}
