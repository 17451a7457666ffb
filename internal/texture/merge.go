package texture

import (
	"github.com/pkg/errors"

	"fur-mask-baker/internal/raster"
)

// Merge combines layers of one material. Only covered pixels compete; the
// merged coverage is the union of all layers. A nil prec uses
// MaskPrecedence.
func Merge(layers []*raster.Buffer, prec Precedence) (*raster.Buffer, error) {
	if len(layers) == 0 {
		return nil, errors.New("texture: nothing to merge")
	}
	if prec == nil {
		prec = MaskPrecedence
	}
	size := layers[0].Size
	out := raster.NewBuffer(size)

	for li, l := range layers {
		if l.Size != size {
			return nil, errors.Errorf("texture: layer %d is %dpx, want %dpx", li, l.Size, size)
		}
		for i, ok := range l.Rasterized {
			if !ok {
				continue
			}
			c := l.At(i)
			if !out.Rasterized[i] || prec(c, out.At(i)) {
				out.Set(i, c)
				out.Rasterized[i] = true
			}
		}
	}
	return out, nil
}
