package mesh

import "fur-mask-baker/internal/mathutil"

// ResolveBoneControl turns per-bone settings into a per-vertex control array.
// Each vertex gets the skin-weighted sum of the values of its joints,
// clamped to [0,1]. Bones without a setting contribute zero. A nil skin or
// an empty settings map yields all zeros.
func ResolveBoneControl(skin *Skin, values map[string]float64, vertexCount int) []float64 {
	out := make([]float64, vertexCount)
	if skin == nil || len(values) == 0 {
		return out
	}

	byJoint := make([]float64, len(skin.BonePaths))
	has := make([]bool, len(skin.BonePaths))
	for j, path := range skin.BonePaths {
		if v, ok := values[path]; ok {
			byJoint[j] = mathutil.Clamp01(v)
			has[j] = true
		}
	}

	for i := 0; i < vertexCount && i < len(skin.Joints) && i < len(skin.Weights); i++ {
		var sum float64
		for k := 0; k < 4; k++ {
			j := skin.Joints[i][k]
			w := skin.Weights[i][k]
			if w <= 0 || j < 0 || j >= len(byJoint) || !has[j] {
				continue
			}
			sum += w * byJoint[j]
		}
		out[i] = mathutil.Clamp01(sum)
	}
	return out
}
