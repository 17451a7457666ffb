// Package raster draws per-vertex data into UV-space pixel buffers.
package raster

import (
	"image"
	"image/color"
)

// Buffer holds one square UV-space target as flat slices for cache
// locality. Rasterized marks pixels covered by real triangles, as opposed
// to pixels later filled by padding.
type Buffer struct {
	Size       int
	Color      []uint8 // RGBA interleaved, len = Size*Size*4
	Rasterized []bool  // len = Size*Size
}

// NewBuffer allocates a transparent-black buffer.
func NewBuffer(size int) *Buffer {
	n := size * size
	return &Buffer{
		Size:       size,
		Color:      make([]uint8, n*4),
		Rasterized: make([]bool, n),
	}
}

// Len returns the number of pixels.
func (b *Buffer) Len() int {
	return len(b.Rasterized)
}

// Covered reports whether pixel i was written by a triangle.
func (b *Buffer) Covered(i int) bool {
	return b.Rasterized[i]
}

// CoveredIndices returns linear indices of all covered pixels in scan order.
func (b *Buffer) CoveredIndices() []int {
	var out []int
	for i, ok := range b.Rasterized {
		if ok {
			out = append(out, i)
		}
	}
	return out
}

// At returns the color of pixel i.
func (b *Buffer) At(i int) color.NRGBA {
	p := b.Color[i*4 : i*4+4 : i*4+4]
	return color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
}

// Set writes the color of pixel i without touching coverage.
func (b *Buffer) Set(i int, c color.NRGBA) {
	p := b.Color[i*4 : i*4+4 : i*4+4]
	p[0], p[1], p[2], p[3] = c.R, c.G, c.B, c.A
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	out := &Buffer{
		Size:       b.Size,
		Color:      make([]uint8, len(b.Color)),
		Rasterized: make([]bool, len(b.Rasterized)),
	}
	copy(out.Color, b.Color)
	copy(out.Rasterized, b.Rasterized)
	return out
}

// ToNRGBA copies the buffer into an image. Row 0 is the top (V = 1).
func (b *Buffer) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Size, b.Size))
	copy(img.Pix, b.Color)
	return img
}
