// Package meshsource loads character meshes from disk and bakes them into
// static snapshots.
package meshsource

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"fur-mask-baker/internal/mesh"
)

// Options select what to load from a file.
type Options struct {
	// Mesh names the glTF mesh to load; empty picks the first one.
	Mesh string
	// BindPose skips skinning and keeps vertices as authored.
	BindPose bool
}

// Load dispatches on the file extension. The snapshot is validated and has
// normals.
func Load(path string, opts Options) (*mesh.Snapshot, error) {
	var (
		snap *mesh.Snapshot
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		snap, err = LoadGLTF(path, opts)
	case ".bmd":
		snap, err = LoadBMD(path, opts)
	default:
		return nil, errors.Errorf("meshsource: unsupported mesh format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	snap.EnsureNormals()
	if err := snap.Validate(); err != nil {
		return nil, errors.Wrapf(err, "meshsource: %s", path)
	}
	return snap, nil
}
