package main

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"fur-mask-baker/internal/adjacency"
	"fur-mask-baker/internal/bake"
	"fur-mask-baker/internal/batch"
	"fur-mask-baker/internal/collider"
	"fur-mask-baker/internal/config"
	"fur-mask-baker/internal/field"
	"fur-mask-baker/internal/logger"
	"fur-mask-baker/internal/mesh"
	"fur-mask-baker/internal/meshsource"
	"fur-mask-baker/internal/texture"
	"fur-mask-baker/internal/uvisland"
)

// loadedMesh is one snapshot shared by every target that names it.
type loadedMesh struct {
	once sync.Once
	snap *mesh.Snapshot
	adj  *adjacency.Index
	err  error
}

// resources are shared across all targets of a run.
type resources struct {
	locator  *uvisland.Locator
	textures *texture.Cache

	mu     sync.Mutex
	meshes map[string]*loadedMesh
}

func newResources() *resources {
	return &resources{
		locator:  uvisland.NewLocator(nil),
		textures: texture.NewCache(),
		meshes:   make(map[string]*loadedMesh),
	}
}

func meshKey(path string, opts meshsource.Options) string {
	return fmt.Sprintf("%s#%s#%t", path, opts.Mesh, opts.BindPose)
}

// mesh loads a snapshot at most once per (path, options).
func (r *resources) mesh(path string, opts meshsource.Options) (string, *loadedMesh) {
	key := meshKey(path, opts)
	r.mu.Lock()
	m, ok := r.meshes[key]
	if !ok {
		m = &loadedMesh{}
		r.meshes[key] = m
	}
	r.mu.Unlock()

	m.once.Do(func() {
		m.snap, m.err = meshsource.Load(path, opts)
		if m.err == nil {
			m.adj = adjacency.NewIndex()
			logger.Debug("mesh loaded",
				zap.String("mesh", path),
				zap.Int("vertices", m.snap.VertexCount()),
				zap.Int("triangles", m.snap.TriangleCount()))
		}
	})
	return key, m
}

func (r *resources) target(cfg *config.Config, t config.TargetConfig) batch.Target {
	return batch.Target{Name: t.Name, Build: func() (bake.Params, error) {
		return r.params(cfg, t)
	}}
}

func (r *resources) params(cfg *config.Config, t config.TargetConfig) (bake.Params, error) {
	id, m := r.mesh(t.Mesh, meshsource.Options{Mesh: t.MeshName, BindPose: t.BindPose})
	if m.err != nil {
		return bake.Params{}, m.err
	}
	settings := cfg.TargetSettings(t)

	var coll collider.Collider
	if len(t.Colliders) > 0 {
		snaps := make([]*mesh.Snapshot, 0, len(t.Colliders))
		for _, p := range t.Colliders {
			_, cm := r.mesh(p, meshsource.Options{})
			if cm.err != nil {
				return bake.Params{}, errors.Wrapf(cm.err, "collider %s", p)
			}
			snaps = append(snaps, cm.snap)
		}
		coll = collider.FromSnapshots(snaps...)
	}

	var maps map[string]field.TangentSampler
	if len(t.DirectionMaps) > 0 {
		maps = make(map[string]field.TangentSampler, len(t.DirectionMaps))
		for material, p := range t.DirectionMaps {
			dm, err := r.textures.Load(p, settings.TextureSize)
			if err != nil {
				return bake.Params{}, errors.Wrapf(err, "direction map for %q", material)
			}
			maps[material] = dm
		}
	}

	return bake.Params{
		Target:        t.Name,
		MeshID:        id,
		Kind:          t.KindValue(),
		Snapshot:      m.snap,
		Settings:      settings,
		Spheres:       t.SphereList(),
		Mirror:        t.Mirrorer(),
		BoneValues:    t.Bones,
		Anchors:       t.AnchorList(),
		DirectionMaps: maps,
		Collider:      coll,
		Locator:       r.locator,
		Adjacency:     m.adj,
		Logger:        logger.Named("bake"),
	}, nil
}
