// Package adjacency builds triangle-to-triangle and vertex-to-vertex
// connectivity graphs from triangle index lists.
package adjacency

import (
	"math"
	"sort"

	"fur-mask-baker/internal/mathutil"
	"fur-mask-baker/internal/mesh"
)

// WeldTolerance is the grid size used to merge coincident positions.
const WeldTolerance = 1e-6

// Set is an unordered set of indices.
type Set map[int]struct{}

// Has reports membership.
func (s Set) Has(i int) bool {
	_, ok := s[i]
	return ok
}

// Sorted returns the members in ascending order.
func (s Set) Sorted() []int {
	out := make([]int, 0, len(s))
	for i := range s {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

type edgeKey [2]int

func makeEdge(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

func validTri(tris []int, t, vertexCount int) ([3]int, bool) {
	idx := [3]int{tris[t*3], tris[t*3+1], tris[t*3+2]}
	for _, v := range idx {
		if v < 0 || v >= vertexCount {
			return idx, false
		}
	}
	return idx, true
}

// BuildTriangleAdjacency returns, for every triangle, the set of triangles
// sharing at least one undirected edge with it. Triangles referencing
// vertices outside [0, vertexCount) are skipped and get an empty set.
func BuildTriangleAdjacency(tris []int, vertexCount int) []Set {
	return buildTriangleAdjacency(tris, vertexCount, nil)
}

// BuildWeldedTriangleAdjacency is BuildTriangleAdjacency with edges keyed by
// welded vertex ids (see Weld), so triangles split by a UV seam but touching
// in 3D are still neighbors.
func BuildWeldedTriangleAdjacency(tris []int, positions []mathutil.Vec3) []Set {
	return buildTriangleAdjacency(tris, len(positions), Weld(positions, WeldTolerance))
}

func buildTriangleAdjacency(tris []int, vertexCount int, canon []int) []Set {
	n := len(tris) / 3
	adj := make([]Set, n)
	for i := range adj {
		adj[i] = Set{}
	}

	owners := make(map[edgeKey][]int, n*3/2)
	for t := 0; t < n; t++ {
		idx, ok := validTri(tris, t, vertexCount)
		if !ok {
			continue
		}
		if canon != nil {
			idx = [3]int{canon[idx[0]], canon[idx[1]], canon[idx[2]]}
		}
		for e := 0; e < 3; e++ {
			if idx[e] == idx[(e+1)%3] {
				continue
			}
			k := makeEdge(idx[e], idx[(e+1)%3])
			owners[k] = append(owners[k], t)
		}
	}

	// Non-manifold edges may have more than two owners; every pair is linked.
	for _, ts := range owners {
		for a := 0; a < len(ts); a++ {
			for b := a + 1; b < len(ts); b++ {
				if ts[a] == ts[b] {
					continue
				}
				adj[ts[a]][ts[b]] = struct{}{}
				adj[ts[b]][ts[a]] = struct{}{}
			}
		}
	}
	return adj
}

// BuildVertexAdjacency unions the edges of every valid triangle across all
// submeshes into a per-vertex neighbor set.
func BuildVertexAdjacency(submeshes []mesh.Submesh, vertexCount int) []Set {
	adj := make([]Set, vertexCount)
	for i := range adj {
		adj[i] = Set{}
	}
	for _, sm := range submeshes {
		tris := sm.Triangles
		for t := 0; t < len(tris)/3; t++ {
			idx, ok := validTri(tris, t, vertexCount)
			if !ok {
				continue
			}
			for e := 0; e < 3; e++ {
				a, b := idx[e], idx[(e+1)%3]
				if a == b {
					continue
				}
				adj[a][b] = struct{}{}
				adj[b][a] = struct{}{}
			}
		}
	}
	return adj
}

// Neighbors flattens a vertex adjacency into sorted slices, the layout the
// smoother iterates.
func Neighbors(adj []Set) [][]int {
	out := make([][]int, len(adj))
	for i, s := range adj {
		out[i] = s.Sorted()
	}
	return out
}

// Weld maps every vertex to the lowest index of a vertex at the same
// position, quantized to tolerance.
func Weld(positions []mathutil.Vec3, tolerance float64) []int {
	canon := make([]int, len(positions))
	seen := make(map[[3]int64]int, len(positions))
	inv := 1.0 / tolerance
	for i, p := range positions {
		k := [3]int64{
			int64(math.Round(p[0] * inv)),
			int64(math.Round(p[1] * inv)),
			int64(math.Round(p[2] * inv)),
		}
		if first, ok := seen[k]; ok {
			canon[i] = first
			continue
		}
		seen[k] = i
		canon[i] = i
	}
	return canon
}

// Components splits a vertex adjacency into connected shells, largest
// first. Isolated vertices are not reported.
func Components(adj []Set) [][]int {
	visited := make([]bool, len(adj))
	var comps [][]int
	for v := range adj {
		if visited[v] || len(adj[v]) == 0 {
			continue
		}
		var comp []int
		stack := []int{v}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[cur] {
				continue
			}
			visited[cur] = true
			comp = append(comp, cur)
			for nb := range adj[cur] {
				if nb >= 0 && nb < len(adj) && !visited[nb] {
					stack = append(stack, nb)
				}
			}
		}
		sort.Ints(comp)
		comps = append(comps, comp)
	}
	sort.SliceStable(comps, func(i, j int) bool { return len(comps[i]) > len(comps[j]) })
	return comps
}
