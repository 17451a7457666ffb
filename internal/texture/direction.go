package texture

import (
	"image"

	"github.com/pkg/errors"

	"fur-mask-baker/internal/mathutil"
	"fur-mask-baker/internal/raster"
)

// DirectionMap is a tangent-space direction texture, RGB = xyz·0.5+0.5.
type DirectionMap struct {
	img *image.NRGBA
}

// NewDirectionMap wraps img, resampling it to size×size when size > 0.
func NewDirectionMap(img *image.NRGBA, size int) *DirectionMap {
	return &DirectionMap{img: Resample(img, size)}
}

// LoadDirectionMap reads a direction map from disk.
func LoadDirectionMap(path string, size int) (*DirectionMap, error) {
	img, err := LoadImage(path)
	if err != nil {
		return nil, err
	}
	if img.Rect.Empty() {
		return nil, errors.Errorf("texture: %s is empty", path)
	}
	return NewDirectionMap(img, size), nil
}

// Image returns the underlying texture.
func (d *DirectionMap) Image() *image.NRGBA {
	return d.img
}

// SampleTangent returns the unit tangent-space direction at (u, v). A
// texel that decodes to the zero vector reads as the surface normal.
func (d *DirectionMap) SampleTangent(u, v float64) mathutil.Vec3 {
	s := raster.SampleBilinear(d.img, u, v)
	ts := raster.DecodeDirection(s[0], s[1], s[2]).Normalize()
	if ts.LenSq() == 0 {
		return mathutil.Vec3{0, 0, 1}
	}
	return ts
}
