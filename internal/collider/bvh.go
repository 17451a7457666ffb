package collider

import (
	"sort"

	"fur-mask-baker/internal/mathutil"
	"fur-mask-baker/internal/mesh"
)

// LeafSize is the maximum number of triangles stored in a BVH leaf.
const LeafSize = 4

type bvhNode struct {
	bounds AABB
	// Leaves hold triangles [start, start+count); interior nodes have
	// count == 0 and children left, right.
	start, count int
	left, right  int
}

// TriangleBVH is a bounding volume hierarchy over a static triangle soup.
type TriangleBVH struct {
	tris  [][3]mathutil.Vec3
	nodes []bvhNode
}

// NewTriangleBVH builds a median-split tree over tris. Degenerate
// triangles are kept; Möller–Trumbore rejects them at query time.
func NewTriangleBVH(tris [][3]mathutil.Vec3) *TriangleBVH {
	b := &TriangleBVH{tris: make([][3]mathutil.Vec3, len(tris))}
	copy(b.tris, tris)
	if len(b.tris) == 0 {
		return b
	}

	centroids := make([]mathutil.Vec3, len(b.tris))
	for i, t := range b.tris {
		centroids[i] = t[0].Add(t[1]).Add(t[2]).Scale(1.0 / 3)
	}
	order := make([]int, len(b.tris))
	for i := range order {
		order[i] = i
	}
	b.build(order, centroids)

	sorted := make([][3]mathutil.Vec3, len(b.tris))
	for i, ti := range order {
		sorted[i] = b.tris[ti]
	}
	b.tris = sorted
	return b
}

// build splits order[...] recursively; node ranges index the final sorted
// order, so the slice is partitioned in place.
func (b *TriangleBVH) build(order []int, centroids []mathutil.Vec3) {
	type task struct {
		node       int
		start, end int
	}
	b.nodes = append(b.nodes, bvhNode{})
	stack := []task{{0, 0, len(order)}}

	for len(stack) > 0 {
		tk := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		bounds := emptyAABB()
		cb := emptyAABB()
		for _, ti := range order[tk.start:tk.end] {
			for _, v := range b.tris[ti] {
				bounds.extend(v)
			}
			cb.extend(centroids[ti])
		}

		n := &b.nodes[tk.node]
		n.bounds = bounds
		if tk.end-tk.start <= LeafSize {
			n.start, n.count = tk.start, tk.end-tk.start
			continue
		}

		axis := cb.longestAxis()
		part := order[tk.start:tk.end]
		sort.Slice(part, func(i, j int) bool {
			return centroids[part[i]][axis] < centroids[part[j]][axis]
		})
		mid := tk.start + (tk.end-tk.start)/2

		left := len(b.nodes)
		b.nodes = append(b.nodes, bvhNode{}, bvhNode{})
		// append may have moved the slice
		b.nodes[tk.node].left = left
		b.nodes[tk.node].right = left + 1
		stack = append(stack, task{left, tk.start, mid}, task{left + 1, mid, tk.end})
	}
}

// Len returns the number of triangles in the tree.
func (b *TriangleBVH) Len() int {
	return len(b.tris)
}

// Bounds returns the box around every triangle.
func (b *TriangleBVH) Bounds() AABB {
	if len(b.nodes) == 0 {
		return emptyAABB()
	}
	return b.nodes[0].bounds
}

// Raycast returns the nearest hit distance within maxDist.
func (b *TriangleBVH) Raycast(origin, dir mathutil.Vec3, maxDist float64) (float64, bool) {
	if len(b.nodes) == 0 {
		return 0, false
	}
	r := Ray{Origin: origin, Direction: dir}
	best := maxDist
	found := false

	stack := []int{0}
	for len(stack) > 0 {
		ni := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &b.nodes[ni]

		tmin, _, ok := r.IntersectAABB(n.bounds)
		if !ok || tmin > best {
			continue
		}
		if n.count > 0 {
			for _, t := range b.tris[n.start : n.start+n.count] {
				if d, ok := r.IntersectTriangle(t[0], t[1], t[2]); ok && d <= best {
					best, found = d, true
				}
			}
			continue
		}
		stack = append(stack, n.left, n.right)
	}
	return best, found
}

// FromSnapshots builds one tree over every valid triangle of the given
// meshes, in their own (already baked) space.
func FromSnapshots(snaps ...*mesh.Snapshot) *TriangleBVH {
	var tris [][3]mathutil.Vec3
	for _, s := range snaps {
		if s == nil {
			continue
		}
		for si, sm := range s.Submeshes {
			for t := 0; t < sm.TriangleCount(); t++ {
				idx, ok := s.Triangle(si, t)
				if !ok {
					continue
				}
				tris = append(tris, [3]mathutil.Vec3{s.Positions[idx[0]], s.Positions[idx[1]], s.Positions[idx[2]]})
			}
		}
	}
	return NewTriangleBVH(tris)
}
