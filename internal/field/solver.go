// Package field computes the raw per-vertex mask field: sphere and bone
// influence combined with ray-cast distance to exclusion geometry.
package field

import (
	"math"

	"fur-mask-baker/internal/collider"
	"fur-mask-baker/internal/influence"
	"fur-mask-baker/internal/mathutil"
)

// DefaultMaxDistance is the ray length used when none is configured.
const DefaultMaxDistance = 0.1

// Solver evaluates and memoizes the field for one bake.
type Solver struct {
	Positions   []mathutil.Vec3
	Directions  []mathutil.Vec3 // ray direction per vertex, usually the normal
	Spheres     []influence.Sphere
	Mirror      influence.MirrorFunc
	BoneControl []float64 // optional, per vertex
	Collider    collider.Collider
	MaxDistance float64
	Epsilon     float64

	values   []float64
	computed []bool
}

// Init sizes the memo for the configured positions and resets it.
func (s *Solver) Init() {
	n := len(s.Positions)
	s.values = make([]float64, n)
	s.computed = make([]bool, n)
	if s.MaxDistance <= 0 {
		s.MaxDistance = DefaultMaxDistance
	}
	if s.Epsilon <= 0 {
		s.Epsilon = mathutil.Epsilon
	}
}

// Len returns the number of vertices.
func (s *Solver) Len() int {
	return len(s.Positions)
}

func (s *Solver) minMask(i int) float64 {
	m := influence.SpheresMask(s.Positions[i], s.Spheres, s.Mirror)
	if i < len(s.BoneControl) {
		m = math.Min(m, influence.BoneMask(s.BoneControl[i]))
	}
	return m
}

// Compute returns the field value of vertex i, evaluating it at most once.
func (s *Solver) Compute(i int) float64 {
	if s.values == nil {
		s.Init()
	}
	if s.computed[i] {
		return s.values[i]
	}
	v := s.evaluate(i)
	s.values[i] = v
	s.computed[i] = true
	return v
}

func (s *Solver) evaluate(i int) float64 {
	m := s.minMask(i)
	if m <= s.Epsilon {
		return 0
	}
	if s.Collider == nil || i >= len(s.Directions) {
		return m
	}

	dir := s.Directions[i].Normalize()
	if dir.LenSq() == 0 {
		return m
	}
	origin := s.Positions[i].Sub(dir.Scale(s.Epsilon))
	hitDist := s.MaxDistance
	if d, ok := s.Collider.Raycast(origin, dir, s.MaxDistance); ok {
		hitDist = d - s.Epsilon
	}
	distMask := mathutil.Clamp(hitDist, 0, s.MaxDistance) / s.MaxDistance
	return math.Min(m, distMask)
}

// ComputeRange evaluates vertices [from, to) and returns the next cursor.
func (s *Solver) ComputeRange(from, to int) int {
	if to > s.Len() {
		to = s.Len()
	}
	for i := from; i < to; i++ {
		s.Compute(i)
	}
	return to
}

// Values returns the memoized field. Vertices not yet computed read 0.
func (s *Solver) Values() []float64 {
	if s.values == nil {
		s.Init()
	}
	return s.values
}
