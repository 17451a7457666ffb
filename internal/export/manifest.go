package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ManifestEntry describes one emitted texture.
type ManifestEntry struct {
	Target     string  `json:"target"`
	Material   string  `json:"material"`
	Kind       string  `json:"kind"`
	Image      string  `json:"image"`
	Size       int     `json:"size"`
	Coverage   float64 `json:"coverage"`
	Components int     `json:"components"`
}

// WriteManifest writes entries as indented JSON. Image paths under the
// manifest's directory are stored relative to it.
func WriteManifest(path string, entries []ManifestEntry) error {
	dir := filepath.Dir(path)
	out := make([]ManifestEntry, len(entries))
	for i, e := range entries {
		if rel, err := filepath.Rel(dir, e.Image); err == nil && !strings.HasPrefix(rel, "..") {
			e.Image = filepath.ToSlash(rel)
		}
		out[i] = e
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return errors.Wrap(err, "export: marshal manifest")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "export: create manifest dir")
	}
	return errors.Wrap(os.WriteFile(path, data, 0644), "export: write manifest")
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) ([]ManifestEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "export: read manifest")
	}
	var entries []ManifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrapf(err, "export: parse %s", path)
	}
	return entries, nil
}
