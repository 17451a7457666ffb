package field

import (
	"math"

	"fur-mask-baker/internal/adjacency"
	"fur-mask-baker/internal/mathutil"
)

// ApplyAnchors forces every anchored vertex to 0 and returns the anchor
// flags. Indices outside values are ignored.
func ApplyAnchors(values []float64, anchors ...adjacency.Set) []bool {
	flags := make([]bool, len(values))
	for _, set := range anchors {
		for v := range set {
			if v < 0 || v >= len(values) {
				continue
			}
			values[v] = 0
			flags[v] = true
		}
	}
	return flags
}

// ApplyGamma clamps every value into [0,1] and raises it to gamma. A gamma
// of exactly 1 only clamps.
func ApplyGamma(values []float64, gamma float64) {
	for i, v := range values {
		v = mathutil.Clamp01(v)
		if gamma != 1 {
			v = math.Pow(v, gamma)
		}
		values[i] = v
	}
}
