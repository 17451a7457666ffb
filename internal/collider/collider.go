// Package collider answers ray queries against exclusion geometry.
package collider

import "fur-mask-baker/internal/mathutil"

// Collider reports the distance along dir to the nearest surface, if any
// lies within maxDist.
type Collider interface {
	Raycast(origin, dir mathutil.Vec3, maxDist float64) (float64, bool)
}

// Multi queries several colliders and keeps the nearest hit.
type Multi []Collider

func (m Multi) Raycast(origin, dir mathutil.Vec3, maxDist float64) (float64, bool) {
	best := maxDist
	found := false
	for _, c := range m {
		if c == nil {
			continue
		}
		if d, ok := c.Raycast(origin, dir, best); ok && d <= best {
			best, found = d, true
		}
	}
	return best, found
}
