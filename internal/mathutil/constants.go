package mathutil

// Tolerances shared by the bake stages.
const (
	// Epsilon is the "fully masked" cut-off and the ray self-intersection offset.
	Epsilon = 1e-5

	// DegenerateDen guards barycentric denominators in UV space.
	DegenerateDen = 1e-12
)

// Clamp01 clamps v into [0, 1].
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// Clamp clamps v into [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp interpolates linearly from a to b by t (unclamped).
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Barycentric returns the weights of point (px, py) against triangle
// (ax, ay), (bx, by), (cx, cy). ok is false when the triangle is degenerate
// (|den| < DegenerateDen); callers treat that as "outside".
func Barycentric(px, py, ax, ay, bx, by, cx, cy float64) (w0, w1, w2 float64, ok bool) {
	den := (by-cy)*(ax-cx) + (cx-bx)*(ay-cy)
	if den > -DegenerateDen && den < DegenerateDen {
		return 0, 0, 0, false
	}
	inv := 1.0 / den
	w0 = ((by-cy)*(px-cx) + (cx-bx)*(py-cy)) * inv
	w1 = ((cy-ay)*(px-cx) + (ax-cx)*(py-cy)) * inv
	w2 = 1.0 - w0 - w1
	return w0, w1, w2, true
}
