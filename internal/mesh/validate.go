package mesh

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidSnapshot is the cause of every ValidationError.
var ErrInvalidSnapshot = errors.New("mesh: invalid snapshot")

// ValidationError lists every invariant violation found in one pass.
type ValidationError struct {
	Name     string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("mesh: snapshot %q: %s", e.Name, strings.Join(e.Problems, "; "))
}

// Cause lets errors.Cause unwrap to ErrInvalidSnapshot.
func (e *ValidationError) Cause() error { return ErrInvalidSnapshot }

// Unwrap supports errors.Is from the standard library.
func (e *ValidationError) Unwrap() error { return ErrInvalidSnapshot }

// Validate reports input invariant violations before a bake starts.
// Out-of-range triangles are counted but not fatal on their own: they are
// skipped during the bake. The snapshot is rejected only when arrays
// disagree in length or no submesh has a usable triangle.
func (s *Snapshot) Validate() error {
	var problems []string
	n := len(s.Positions)

	if n == 0 {
		problems = append(problems, "no vertices")
	}
	if len(s.UVs) != n {
		problems = append(problems, fmt.Sprintf("uv count %d != vertex count %d", len(s.UVs), n))
	}
	if len(s.Normals) != 0 && len(s.Normals) != n {
		problems = append(problems, fmt.Sprintf("normal count %d != vertex count %d", len(s.Normals), n))
	}
	if s.Skin != nil {
		if len(s.Skin.Joints) != n || len(s.Skin.Weights) != n {
			problems = append(problems, fmt.Sprintf("skin arrays (%d joints, %d weights) != vertex count %d",
				len(s.Skin.Joints), len(s.Skin.Weights), n))
		}
	}

	valid := 0
	for si, sm := range s.Submeshes {
		if len(sm.Triangles)%3 != 0 {
			problems = append(problems, fmt.Sprintf("submesh %d: index count %d is not a multiple of 3", si, len(sm.Triangles)))
		}
		for t := 0; t < sm.TriangleCount(); t++ {
			if _, ok := s.Triangle(si, t); ok {
				valid++
			}
		}
	}
	if valid == 0 {
		problems = append(problems, "no valid triangles")
	}

	if len(problems) > 0 {
		return &ValidationError{Name: s.Name, Problems: problems}
	}
	return nil
}

// InvalidTriangles counts triangles that reference missing vertices.
func (s *Snapshot) InvalidTriangles() int {
	bad := 0
	for si, sm := range s.Submeshes {
		for t := 0; t < sm.TriangleCount(); t++ {
			if _, ok := s.Triangle(si, t); !ok {
				bad++
			}
		}
	}
	return bad
}
