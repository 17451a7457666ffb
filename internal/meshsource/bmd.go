package meshsource

import (
	"fmt"
	"path"
	"strings"

	"fur-mask-baker/internal/bmd"
	"fur-mask-baker/internal/mathutil"
	"fur-mask-baker/internal/mesh"
	"fur-mask-baker/internal/skeleton"
)

// LoadBMD reads a version 10 BMD model. Unless opts.BindPose is set the
// meshes are posed with the skeleton's bind transforms.
func LoadBMD(p string, opts Options) (*mesh.Snapshot, error) {
	m, err := bmd.Parse(p)
	if err != nil {
		return nil, err
	}
	return FromModel(m, opts), nil
}

// corner identifies one unique (position, normal, texcoord) combination.
type corner struct {
	vi, ni, ti int16
}

// TextureStem returns the base name of a BMD texture reference without its
// extension. BMD files use Windows separators.
func TextureStem(texPath string) string {
	base := path.Base(strings.ReplaceAll(texPath, `\`, "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}

// FromModel flattens a parsed model into one snapshot. BMD stores separate
// index streams per attribute, so every distinct corner becomes its own
// vertex. Quads are split in two.
func FromModel(m *bmd.Model, opts Options) *mesh.Snapshot {
	if !opts.BindPose {
		skeleton.ApplyTransforms(m.Meshes, m.Bones)
	}
	snap := &mesh.Snapshot{Name: m.Name}
	var joints []int

	for mi := range m.Meshes {
		bm := &m.Meshes[mi]
		material := TextureStem(bm.TexPath)
		if material == "" || material == "." {
			material = fmt.Sprintf("mesh_%d", mi)
		}
		seen := make(map[corner]int)
		var tris []int

		for _, tri := range bm.Tris {
			for _, c := range tri.Corners() {
				if !validCorners(bm, tri, c) {
					continue
				}
				var idx [3]int
				for k, slot := range c {
					key := corner{tri.VI[slot], tri.NI[slot], tri.TI[slot]}
					v, found := seen[key]
					if !found {
						v = len(snap.Positions)
						seen[key] = v
						appendCorner(snap, bm, key)
						joint := -1
						if int(key.vi) < len(bm.Nodes) {
							joint = int(bm.Nodes[key.vi])
						}
						joints = append(joints, joint)
					}
					idx[k] = v
				}
				tris = append(tris, idx[0], idx[1], idx[2])
			}
		}
		snap.Submeshes = append(snap.Submeshes, mesh.Submesh{Triangles: tris, Material: material})
	}

	if len(m.Bones) > 0 {
		snap.Skin = rigidSkin(joints, skeleton.BonePaths(m.Bones))
	}
	return snap
}

// validCorners reports whether every corner of a triangle has a position
// and a texcoord.
func validCorners(bm *bmd.Mesh, tri bmd.Triangle, c [3]int) bool {
	for _, slot := range c {
		if int(tri.VI[slot]) < 0 || int(tri.VI[slot]) >= len(bm.Verts) ||
			int(tri.TI[slot]) < 0 || int(tri.TI[slot]) >= len(bm.UVs) {
			return false
		}
	}
	return true
}

func appendCorner(snap *mesh.Snapshot, bm *bmd.Mesh, key corner) {
	p := bm.Verts[key.vi]
	snap.Positions = append(snap.Positions, mathutil.Vec3{float64(p[0]), float64(p[1]), float64(p[2])})

	var n mathutil.Vec3
	if int(key.ni) >= 0 && int(key.ni) < len(bm.Normals) {
		bn := bm.Normals[key.ni]
		n = mathutil.Vec3{float64(bn[0]), float64(bn[1]), float64(bn[2])}.Normalize()
	}
	snap.Normals = append(snap.Normals, n)

	// BMD texcoords run top-down
	uv := bm.UVs[key.ti]
	snap.UVs = append(snap.UVs, [2]float64{float64(uv[0]), 1 - float64(uv[1])})
}

func rigidSkin(joints []int, paths []string) *mesh.Skin {
	s := &mesh.Skin{
		Joints:    make([][4]int, len(joints)),
		Weights:   make([][4]float64, len(joints)),
		BonePaths: paths,
	}
	for i, j := range joints {
		if j < 0 || j >= len(paths) {
			continue
		}
		s.Joints[i][0] = j
		s.Weights[i][0] = 1
	}
	return s
}
