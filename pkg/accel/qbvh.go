package accel

import "github.com/df07/go-progressive-raytracer/pkg/core"

// QBVH is a 4-wide BVH: each node holds up to four children's bounds and
// tests all four against the ray before recursing, trading node-visit
// count for a wider per-node test — the traversal analogue of
// original_source/accel_qbvh.cpp's SIMD-intrinsics 4-wide layout. This
// port is portable "soft SIMD": four scalar slab tests per node rather
// than real SSE/AVX intrinsics, since Go has no portable intrinsics API,
// but the node layout and child-collapsing scheme match the original.
type QBVH struct {
	nodes []qbvhNode
	order []int
	src   Intersector
	bound core.AABB
}

type qbvhNode struct {
	bounds   [4]core.AABB
	children [4]int32 // >=0: index into nodes; <0: leaf, encodes -(start<<8 | count) - 1; count==0 slot unused
	numKids  int8
}

func encodeLeaf(start, count int) int32 {
	return int32(-(start<<8 | count) - 1)
}

func decodeLeaf(v int32) (start, count int) {
	u := -(v + 1)
	return int(u >> 8), int(u & 0xFF)
}

// NewQBVH builds a binary SAH BVH and collapses it into 4-wide nodes: a
// node's two binary children are inlined directly if they're leaves, or
// expanded one level (taking its two grandchildren) if doing so fits
// within four slots and reduces tree depth.
func NewQBVH(src Intersector, count int) *QBVH {
	bin := NewBVH(src, count)
	q := &QBVH{src: src, order: bin.order, bound: bin.bound}
	if len(bin.nodes) == 0 {
		return q
	}
	q.nodes = make([]qbvhNode, 0, len(bin.nodes))
	q.collapse(bin, 0)
	return q
}

// collapse converts the binary node at binIdx (and its subtree) into one
// or more qbvhNodes, returning the index of the qbvhNode representing it.
func (q *QBVH) collapse(bin *BVH, binIdx int) int32 {
	node := &bin.nodes[binIdx]
	if node.isLeaf() {
		// A lone leaf becomes a single-child QBVH node so the root can
		// always be treated uniformly by Hit/Occluded.
		qn := qbvhNode{numKids: 1}
		qn.bounds[0] = node.bounds
		qn.children[0] = encodeLeaf(int(node.start), int(node.count))
		idx := int32(len(q.nodes))
		q.nodes = append(q.nodes, qn)
		return idx
	}

	// Gather up to 4 grandchildren by expanding internal children first.
	type slot struct {
		binIdx int
		isLeaf bool
	}
	slots := []slot{{int(node.left), bin.nodes[node.left].isLeaf()}, {int(node.right), bin.nodes[node.right].isLeaf()}}
	for len(slots) < 4 {
		expanded := false
		for i, s := range slots {
			if s.isLeaf {
				continue
			}
			n := &bin.nodes[s.binIdx]
			if len(slots)+1 > 4 {
				break
			}
			slots[i] = slot{int(n.left), bin.nodes[n.left].isLeaf()}
			slots = append(slots, slot{int(n.right), bin.nodes[n.right].isLeaf()})
			expanded = true
			break
		}
		if !expanded {
			break
		}
	}

	qn := qbvhNode{numKids: int8(len(slots))}
	idx := int32(len(q.nodes))
	q.nodes = append(q.nodes, qbvhNode{}) // reserve slot before recursing (children may append more nodes)
	for i, s := range slots {
		qn.bounds[i] = bin.nodes[s.binIdx].bounds
		if s.isLeaf {
			leaf := &bin.nodes[s.binIdx]
			qn.children[i] = encodeLeaf(int(leaf.start), int(leaf.count))
		} else {
			qn.children[i] = q.collapse(bin, s.binIdx)
		}
	}
	q.nodes[idx] = qn
	return idx
}

func (q *QBVH) Bounds() core.AABB { return q.bound }

func (q *QBVH) Hit(ray core.Ray, tMin, tMax float64) (Hit, bool) {
	if len(q.nodes) == 0 {
		return Hit{}, false
	}
	invDir := ray.InvDirection()
	best := Hit{}
	found := false
	closest := tMax
	q.hitNode(0, ray, invDir, tMin, &closest, &best, &found)
	return best, found
}

func (q *QBVH) hitNode(idx int32, ray core.Ray, invDir core.Vec3, tMin float64, closest *float64, best *Hit, found *bool) {
	node := &q.nodes[idx]
	for i := 0; i < int(node.numKids); i++ {
		if !node.bounds[i].Hit(ray, invDir, tMin, *closest) {
			continue
		}
		child := node.children[i]
		if child < 0 {
			start, count := decodeLeaf(child)
			for j := start; j < start+count; j++ {
				p := q.order[j]
				if t, ok := q.src.Hit(p, ray, invDir, tMin, *closest); ok {
					*closest = t
					*best = Hit{T: t, PrimitiveIndex: p}
					*found = true
				}
			}
			continue
		}
		q.hitNode(child, ray, invDir, tMin, closest, best, found)
	}
}

func (q *QBVH) Occluded(ray core.Ray, tMin, tMax float64) bool {
	if len(q.nodes) == 0 {
		return false
	}
	invDir := ray.InvDirection()
	return q.occludedNode(0, ray, invDir, tMin, tMax)
}

func (q *QBVH) occludedNode(idx int32, ray core.Ray, invDir core.Vec3, tMin, tMax float64) bool {
	node := &q.nodes[idx]
	for i := 0; i < int(node.numKids); i++ {
		if !node.bounds[i].Hit(ray, invDir, tMin, tMax) {
			continue
		}
		child := node.children[i]
		if child < 0 {
			start, count := decodeLeaf(child)
			for j := start; j < start+count; j++ {
				if _, ok := q.src.Hit(q.order[j], ray, invDir, tMin, tMax); ok {
					return true
				}
			}
			continue
		}
		if q.occludedNode(child, ray, invDir, tMin, tMax) {
			return true
		}
	}
	return false
}
