// Package bake drives one mask or direction bake as a resumable job. Each
// call to Job.Step does a bounded amount of work so a host can interleave
// bakes with other work and cancel between batches.
package bake

import (
	"strings"

	"github.com/pkg/errors"
)

// State is a stage of the bake pipeline.
type State int

const (
	Idle State = iota
	ComputingDistances
	ApplyingUVAnchors
	Smoothing
	GammaCorrecting
	Rasterizing
	MergingPadding
	Finished
	Cancelled
)

var stateNames = [...]string{
	"idle",
	"computing distances",
	"applying uv anchors",
	"smoothing",
	"gamma correcting",
	"rasterizing",
	"merging and padding",
	"finished",
	"cancelled",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further Step can change the state.
func (s State) Terminal() bool {
	return s == Finished || s == Cancelled
}

// Kind selects what a job bakes.
type Kind int

const (
	// KindMask bakes the smoothed scalar field as a grayscale mask.
	KindMask Kind = iota
	// KindDirection bakes per-vertex directions as a tangent-space map.
	KindDirection
)

func (k Kind) String() string {
	if k == KindDirection {
		return "direction"
	}
	return "mask"
}

// ParseKind maps "mask" and "direction" (case-insensitive) to a Kind. The
// empty string is a mask.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mask":
		return KindMask, nil
	case "direction":
		return KindDirection, nil
	}
	return KindMask, errors.Errorf("bake: unknown kind %q", s)
}

// Status is the job state after a Step.
type Status struct {
	State    State
	Fraction float64 // progress within the current stage, 0..1
	Message  string
	Err      error // set when the job was aborted by a failure
}
