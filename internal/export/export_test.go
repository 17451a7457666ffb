package export

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ftrvxmtrx/tga"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

func mockImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 60), G: uint8(y * 60), B: 10, A: 255})
		}
	}
	return img
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{"png": PNG, ".WEBP": WebP, "tga": TGA, "bmp": BMP, "tif": TIFF, "tiff": TIFF}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("gif"); err == nil {
		t.Error("expected error for gif")
	}
}

func TestEncode_Decodable(t *testing.T) {
	src := mockImage()
	decoders := map[Format]func(*bytes.Buffer) (image.Image, error){
		PNG:  func(b *bytes.Buffer) (image.Image, error) { return png.Decode(b) },
		WebP: func(b *bytes.Buffer) (image.Image, error) { return webp.Decode(b) },
		TGA:  func(b *bytes.Buffer) (image.Image, error) { return tga.Decode(b) },
		BMP:  func(b *bytes.Buffer) (image.Image, error) { return bmp.Decode(b) },
		TIFF: func(b *bytes.Buffer) (image.Image, error) { return tiff.Decode(bytes.NewReader(b.Bytes())) },
	}
	for f, decode := range decoders {
		var buf bytes.Buffer
		if err := Encode(&buf, src, f); err != nil {
			t.Errorf("%s: encode: %v", f, err)
			continue
		}
		img, err := decode(&buf)
		if err != nil {
			t.Errorf("%s: decode: %v", f, err)
			continue
		}
		if img.Bounds() != src.Bounds() {
			t.Errorf("%s: bounds = %v", f, img.Bounds())
		}
		// every encoder here is lossless
		r, g, _, _ := img.At(3, 2).RGBA()
		if r>>8 != 180 || g>>8 != 120 {
			t.Errorf("%s: pixel (3,2) = %d,%d", f, r>>8, g>>8)
		}
	}
	if err := Encode(&bytes.Buffer{}, src, "gif"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"wolf body":   "wolf_body",
		"../../etc":   "_.._etc",
		"Fur-01.mask": "Fur-01.mask",
		"":            "unnamed",
		"...":         "unnamed",
	}
	for in, want := range tests {
		if got := SanitizeName(in); got != want {
			t.Errorf("SanitizeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFileSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s := FileSink{Dir: dir, Format: PNG}
	path, err := s.Emit("wolf", "body/fur", mockImage())
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if filepath.Base(path) != "wolf_body_fur.png" {
		t.Errorf("path = %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error(err)
	}
}

func TestMemorySink(t *testing.T) {
	var s MemorySink
	if _, err := s.Emit("wolf", "body", mockImage()); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Get("wolf", "body"); !ok {
		t.Error("missing stored image")
	}
	if keys := s.Keys(); len(keys) != 1 || keys[0] != "wolf/body" {
		t.Errorf("keys = %v", keys)
	}
}

func TestManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	entries := []ManifestEntry{{
		Target: "wolf", Material: "body", Kind: "mask",
		Image: filepath.Join(dir, "wolf_body.png"), Size: 1024, Coverage: 0.5, Components: 3,
	}}
	if err := WriteManifest(path, entries); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	got, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if len(got) != 1 || got[0].Image != "wolf_body.png" || got[0].Components != 3 {
		t.Errorf("manifest = %+v", got)
	}
	if _, err := ReadManifest(filepath.Join(dir, "missing.json")); errors.Cause(err) == nil {
		t.Error("expected error for missing manifest")
	}
}
