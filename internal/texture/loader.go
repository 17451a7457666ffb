package texture

import (
	"bytes"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// Extensions LoadImage understands, in index priority order (lossless first).
var Extensions = []string{".png", ".tga", ".tif", ".tiff", ".bmp", ".webp", ".jpg", ".jpeg"}

// decoders picks the codec by extension. tga registers an empty magic with
// the image package and would claim every input passed to image.Decode.
var decoders = map[string]func(io.Reader) (image.Image, error){
	".png":  png.Decode,
	".tga":  tga.Decode,
	".tif":  tiff.Decode,
	".tiff": tiff.Decode,
	".bmp":  bmp.Decode,
	".webp": webp.Decode,
	".jpg":  jpeg.Decode,
	".jpeg": jpeg.Decode,
}

// LoadImage reads an image file and returns it as NRGBA with a zero origin.
func LoadImage(path string) (*image.NRGBA, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "texture: read %s", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := decoders[ext]
	if !ok {
		return nil, errors.Errorf("texture: unsupported image extension %q", ext)
	}
	img, err := decode(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrapf(err, "texture: decode %s", path)
	}
	return toNRGBA(img), nil
}

// toNRGBA converts any image to NRGBA anchored at (0,0).
func toNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	if n, ok := src.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
