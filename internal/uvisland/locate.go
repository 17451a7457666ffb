// Package uvisland finds UV islands: triangles connected both through shared
// mesh edges and through UV-space proximity, starting from a seed UV.
package uvisland

import (
	"fur-mask-baker/internal/adjacency"
	"fur-mask-baker/internal/mathutil"
)

// DefaultThreshold is the UV connectivity distance used when an anchor does
// not set its own.
const DefaultThreshold = 0.1

func triUVs(tris []int, uvs [][2]float64, t int) ([3][2]float64, bool) {
	var out [3][2]float64
	for k := 0; k < 3; k++ {
		v := tris[t*3+k]
		if v < 0 || v >= len(uvs) {
			return out, false
		}
		out[k] = uvs[v]
	}
	return out, true
}

// FindSeedTriangle returns the triangle whose UV footprint contains seed.
// When none contains it, the triangle with the nearest UV centroid is
// returned. ok is false only when there is no valid triangle at all.
func FindSeedTriangle(tris []int, uvs [][2]float64, seed [2]float64) (int, bool) {
	best := -1
	bestDist := 0.0

	for t := 0; t < len(tris)/3; t++ {
		c, ok := triUVs(tris, uvs, t)
		if !ok {
			continue
		}
		w0, w1, w2, ok := mathutil.Barycentric(seed[0], seed[1],
			c[0][0], c[0][1], c[1][0], c[1][1], c[2][0], c[2][1])
		if ok && w0 >= 0 && w1 >= 0 && w2 >= 0 {
			return t, true
		}

		cx := (c[0][0] + c[1][0] + c[2][0]) / 3
		cy := (c[0][1] + c[1][1] + c[2][1]) / 3
		d := (cx-seed[0])*(cx-seed[0]) + (cy-seed[1])*(cy-seed[1])
		if best < 0 || d < bestDist {
			best, bestDist = t, d
		}
	}
	return best, best >= 0
}

// AreUVConnected reports whether any corner pair of the two triangles lies
// within threshold in UV space.
func AreUVConnected(a, b [3][2]float64, threshold float64) bool {
	th2 := threshold * threshold
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			du := a[i][0] - b[j][0]
			dv := a[i][1] - b[j][1]
			if du*du+dv*dv <= th2 {
				return true
			}
		}
	}
	return false
}

// EnumerateIsland flood-fills from seed over adj, crossing to a neighbor
// only when connected(current, neighbor) holds.
func EnumerateIsland(adj []adjacency.Set, seed int, connected func(a, b int) bool) adjacency.Set {
	island := adjacency.Set{}
	if seed < 0 || seed >= len(adj) {
		return island
	}

	island[seed] = struct{}{}
	stack := []int{seed}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for nb := range adj[cur] {
			if island.Has(nb) {
				continue
			}
			if !connected(cur, nb) {
				continue
			}
			island[nb] = struct{}{}
			stack = append(stack, nb)
		}
	}
	return island
}

// UVPredicate adapts AreUVConnected to triangle indices of one submesh.
func UVPredicate(tris []int, uvs [][2]float64, threshold float64) func(a, b int) bool {
	return func(a, b int) bool {
		ua, okA := triUVs(tris, uvs, a)
		ub, okB := triUVs(tris, uvs, b)
		if !okA || !okB {
			return false
		}
		return AreUVConnected(ua, ub, threshold)
	}
}

// IslandVertices returns every vertex referenced by the island's triangles.
func IslandVertices(tris []int, island adjacency.Set, vertexCount int) adjacency.Set {
	out := adjacency.Set{}
	for t := range island {
		for k := 0; k < 3; k++ {
			v := tris[t*3+k]
			if v >= 0 && v < vertexCount {
				out[v] = struct{}{}
			}
		}
	}
	return out
}
