// Package skeleton poses BMD models in their bind pose.
package skeleton

import (
	"fur-mask-baker/internal/bmd"
	"fur-mask-baker/internal/mathutil"
)

// BuildWorldMatrices computes the world transform for each bone using bind pose (frame 0, action 0).
// Returns a slice of 4×4 matrices indexed by bone index.
func BuildWorldMatrices(bones []bmd.Bone) []mathutil.Mat4 {
	worlds := make([]mathutil.Mat4, len(bones))
	for i := range worlds {
		worlds[i] = mathutil.Mat4Identity()
	}

	for i, bone := range bones {
		if bone.IsDummy {
			continue
		}

		q := mathutil.EulerToQuat(bone.BindRotation[0], bone.BindRotation[1], bone.BindRotation[2])
		local := mathutil.FromMat3Translation(mathutil.QuatToMat3(q), mathutil.Vec3(bone.BindPosition))

		// Chain with parent; parents always precede children
		if bone.Parent >= 0 && bone.Parent < i {
			worlds[i] = mathutil.Mat4Mul(worlds[bone.Parent], local)
		} else {
			worlds[i] = local
		}
	}

	return worlds
}

// BonePaths returns each bone's name joined with its ancestors' names by
// "/", root first. Dummy bones get an empty path.
func BonePaths(bones []bmd.Bone) []string {
	paths := make([]string, len(bones))
	for i, bone := range bones {
		if bone.IsDummy {
			continue
		}
		if bone.Parent >= 0 && bone.Parent < i && paths[bone.Parent] != "" {
			paths[i] = paths[bone.Parent] + "/" + bone.Name
		} else {
			paths[i] = bone.Name
		}
	}
	return paths
}

func toVec3(v [3]float32) mathutil.Vec3 {
	return mathutil.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}

func fromVec3(v mathutil.Vec3) [3]float32 {
	return [3]float32{float32(v[0]), float32(v[1]), float32(v[2])}
}

// ApplyTransforms modifies mesh vertex positions and normals in-place using
// bone world matrices. Rigid skinning: 1 bone per vertex, weight = 1.0.
// It reports whether any vertex moved.
func ApplyTransforms(meshes []bmd.Mesh, bones []bmd.Bone) bool {
	if len(bones) == 0 {
		return false
	}

	worlds := BuildWorldMatrices(bones)

	// Check if all matrices are identity (skip if so)
	allIdentity := true
	for _, w := range worlds {
		if !w.IsIdentity() {
			allIdentity = false
			break
		}
	}
	if allIdentity {
		return false
	}

	for mi := range meshes {
		mesh := &meshes[mi]
		for vi := range mesh.Verts {
			if vi >= len(mesh.Nodes) {
				break
			}
			boneIdx := int(mesh.Nodes[vi])
			if boneIdx < 0 || boneIdx >= len(worlds) {
				continue
			}
			mesh.Verts[vi] = fromVec3(worlds[boneIdx].MulPoint(toVec3(mesh.Verts[vi])))
		}
		for ni := range mesh.Normals {
			if ni >= len(mesh.NormalNodes) {
				break
			}
			boneIdx := int(mesh.NormalNodes[ni])
			if boneIdx < 0 || boneIdx >= len(worlds) {
				continue
			}
			// bind poses are rigid, so the linear block is a rotation
			mesh.Normals[ni] = fromVec3(worlds[boneIdx].MulDir(toVec3(mesh.Normals[ni])).Normalize())
		}
	}
	return true
}
