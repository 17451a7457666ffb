package texture

import (
	"os"
	"path/filepath"
	"strings"
)

// Index maps lowercase file stems to image paths under a directory tree.
// When one stem exists in several formats, the earlier entry of Extensions
// wins.
type Index struct {
	entries map[string]string // stem.lower() → full path
}

func extRank(ext string) int {
	for i, e := range Extensions {
		if e == ext {
			return i
		}
	}
	return -1
}

// BuildIndex scans dir and its subdirectories for supported images.
// A missing directory yields an empty index.
func BuildIndex(dir string) *Index {
	idx := &Index{entries: make(map[string]string)}
	if dir == "" {
		return idx
	}

	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		rank := extRank(ext)
		if rank < 0 {
			return nil
		}
		stem := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))

		existing, exists := idx.entries[stem]
		if !exists || rank < extRank(strings.ToLower(filepath.Ext(existing))) {
			idx.entries[stem] = path
		}
		return nil
	})

	return idx
}

// ResolvePath returns the path for a texture or material name, or ("", false).
// Directory prefixes and extensions in name are ignored.
func (idx *Index) ResolvePath(name string) (string, bool) {
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(name)
	stem := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))

	path, ok := idx.entries[stem]
	return path, ok
}

// Len returns the number of indexed images.
func (idx *Index) Len() int {
	return len(idx.entries)
}
