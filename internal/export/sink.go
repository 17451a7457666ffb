// Package export writes baked textures and the run manifest.
package export

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Format is an output image encoding.
type Format string

const (
	PNG  Format = "png"
	WebP Format = "webp"
	TGA  Format = "tga"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

// Formats lists every supported format.
var Formats = []Format{PNG, WebP, TGA, BMP, TIFF}

// ParseFormat accepts a format name or extension, case-insensitive.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	if f == "tif" {
		f = TIFF
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", errors.Errorf("export: unknown format %q", s)
}

// Encode writes img to w in format f.
func Encode(w io.Writer, img image.Image, f Format) error {
	var err error
	switch f {
	case PNG:
		err = png.Encode(w, img)
	case WebP:
		err = nativewebp.Encode(w, img, nil)
	case TGA:
		err = tga.Encode(w, img)
	case BMP:
		err = bmp.Encode(w, img)
	case TIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return errors.Errorf("export: unknown format %q", f)
	}
	return errors.Wrapf(err, "export: %s encode", f)
}

// Sink receives finished textures.
type Sink interface {
	// Emit stores one material texture of a target and returns where it went.
	Emit(target, material string, img *image.NRGBA) (string, error)
}

// SanitizeName keeps letters, digits, '-', '_' and '.', replacing anything
// else with '_'.
func SanitizeName(s string) string {
	out := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		}
		return '_'
	}, s)
	out = strings.Trim(out, ".")
	if out == "" {
		return "unnamed"
	}
	return out
}

// FileName returns "<target>_<material>.<ext>" with both parts sanitized.
func FileName(target, material string, f Format) string {
	return fmt.Sprintf("%s_%s.%s", SanitizeName(target), SanitizeName(material), f)
}

// FileSink writes each texture as one file under Dir.
type FileSink struct {
	Dir    string
	Format Format
}

func (s FileSink) Emit(target, material string, img *image.NRGBA) (string, error) {
	format := s.Format
	if format == "" {
		format = PNG
	}
	path := filepath.Join(s.Dir, FileName(target, material, format))
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", errors.Wrap(err, "export: create output dir")
	}
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "export: create")
	}
	if err := Encode(f, img, format); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrapf(err, "export: close %s", path)
	}
	return path, nil
}

// MemorySink keeps textures in memory, keyed by "<target>/<material>". It is
// safe for concurrent use.
type MemorySink struct {
	mu     sync.Mutex
	images map[string]*image.NRGBA
}

func (s *MemorySink) Emit(target, material string, img *image.NRGBA) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.images == nil {
		s.images = make(map[string]*image.NRGBA)
	}
	key := target + "/" + material
	s.images[key] = img
	return key, nil
}

// Get returns a stored texture.
func (s *MemorySink) Get(target, material string) (*image.NRGBA, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	img, ok := s.images[target+"/"+material]
	return img, ok
}

// Keys returns the stored keys in sorted order.
func (s *MemorySink) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.images))
	for k := range s.images {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
