package bake

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"fur-mask-baker/internal/field"
	"fur-mask-baker/internal/mathutil"
	"fur-mask-baker/internal/smooth"
	"fur-mask-baker/internal/uvisland"
)

// MaxTextureSize bounds Settings.TextureSize.
const MaxTextureSize = 8192

// AutoPadding selects the resolution-scaled padding radius.
const AutoPadding = -1

// Settings are the per-bake numeric parameters.
type Settings struct {
	TextureSize int
	BatchSize   int // vertices per Step while computing and smoothing
	Iterations  int
	Threshold   float64 // smoothing convergence
	Gamma       float64
	MaxDistance float64
	RayEpsilon  float64
	Padding     int     // pixels, AutoPadding for the scaled default
	UVThreshold float64 // default connectivity threshold for anchors
}

// DefaultSettings returns the settings used when a project leaves fields unset.
func DefaultSettings() Settings {
	return Settings{
		TextureSize: 1024,
		BatchSize:   2048,
		Iterations:  10,
		Threshold:   smooth.DefaultThreshold,
		Gamma:       1,
		MaxDistance: field.DefaultMaxDistance,
		RayEpsilon:  mathutil.Epsilon,
		Padding:     AutoPadding,
		UVThreshold: uvisland.DefaultThreshold,
	}
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Validate returns every out-of-range setting as one combined error.
func (s Settings) Validate() error {
	var err error
	if !isPowerOfTwo(s.TextureSize) || s.TextureSize > MaxTextureSize {
		err = multierr.Append(err, errors.Errorf("texture size %d must be a power of two up to %d", s.TextureSize, MaxTextureSize))
	}
	if s.BatchSize <= 0 {
		err = multierr.Append(err, errors.Errorf("batch size %d must be positive", s.BatchSize))
	}
	if s.Iterations < 0 {
		err = multierr.Append(err, errors.Errorf("iterations %d must not be negative", s.Iterations))
	}
	if s.Threshold < 0 {
		err = multierr.Append(err, errors.Errorf("threshold %g must not be negative", s.Threshold))
	}
	if !(s.Gamma > 0) {
		err = multierr.Append(err, errors.Errorf("gamma %g must be positive", s.Gamma))
	}
	if !(s.MaxDistance > 0) {
		err = multierr.Append(err, errors.Errorf("max distance %g must be positive", s.MaxDistance))
	}
	if s.RayEpsilon < 0 {
		err = multierr.Append(err, errors.Errorf("ray epsilon %g must not be negative", s.RayEpsilon))
	}
	if s.Padding < AutoPadding {
		err = multierr.Append(err, errors.Errorf("padding %d must be >= %d", s.Padding, AutoPadding))
	}
	if s.UVThreshold < 0 {
		err = multierr.Append(err, errors.Errorf("uv threshold %g must not be negative", s.UVThreshold))
	}
	return err
}
