// Package photon implements the fixed-radius range query SPPM/VCM merging
// needs: a k-d tree over every non-delta, finite vertex of a batch of light
// subpaths, grounded on original_source/renderer/vcmutils.cpp's VCMKdTree
// (longest-axis split at the node bound's centroid, a small leaf
// threshold rather than a balanced median-of-elements split, and a
// branch-and-bound RangeQuery that only descends the far child when the
// splitting plane itself is within radius of the query point).
package photon

import (
	"github.com/df07/go-progressive-raytracer/pkg/core"
	"github.com/df07/go-progressive-raytracer/pkg/path"
	"github.com/df07/go-progressive-raytracer/pkg/subpath"
)

// Vertex identifies one mergeable vertex of one light subpath: the
// (subpath index, vertex index) pair the original keeps instead of copying
// position data twice, plus the position itself cached for the tree build.
type Vertex struct {
	SubpathIndex int
	VertexIndex  int
	Position     core.Vec3
}

// CollectVertices scans a batch of light subpaths and extracts every vertex
// eligible for merging: not the subpath's own endpoint (index 0, the
// emitter itself — merging onto the light surface makes no physical sense),
// not at infinity, and not a delta-position/delta-direction surface (a
// delta surface occupies zero measure and can never be found by a radius
// search), matching vcmutils.cpp's VCMKdTree constructor filter.
func CollectVertices(subpaths []path.Subpath) []Vertex {
	var verts []Vertex
	for si, sp := range subpaths {
		for vi := 1; vi < len(sp); vi++ {
			v := sp[vi]
			if v.Geom.Infinite || isDeltaPosition(v) || isDeltaDirection(v) {
				continue
			}
			verts = append(verts, Vertex{SubpathIndex: si, VertexIndex: vi, Position: v.Geom.P})
		}
	}
	return verts
}

func isDeltaPosition(v subpath.PathVertex) bool {
	if v.Primitive.Emitter != nil {
		return v.Primitive.Emitter.IsDeltaPosition()
	}
	return false
}

func isDeltaDirection(v subpath.PathVertex) bool {
	if v.Primitive.BSDF != nil {
		return v.Primitive.BSDF.IsDeltaDirection()
	}
	return false
}

// leafSize is the original's LeafNumNodes: a node with fewer vertices than
// this becomes a leaf instead of splitting further.
const leafSize = 10

type node struct {
	bound    core.AABB
	isLeaf   bool
	begin    int // leaf: index range into tree.indices
	end      int
	axis     int     // internal: split axis
	split    float64 // internal: split position (bound centroid on axis)
	child1   int     // internal: node index of near-origin child
	child2   int     // internal: node index of far child
}

// KdTree answers fixed-radius range queries over a fixed batch of light
// subpath vertices, rebuilt once per rendering pass as the light subpaths
// that seed it change.
type KdTree struct {
	vertices []Vertex
	indices  []int
	nodes    []node
}

// NewKdTree builds a tree over verts. An empty input is valid and makes
// every RangeQuery a no-op.
func NewKdTree(verts []Vertex) *KdTree {
	t := &KdTree{vertices: verts, indices: make([]int, len(verts))}
	for i := range t.indices {
		t.indices[i] = i
	}
	if len(verts) > 0 {
		t.build(0, len(verts))
	}
	return t
}

// build constructs the subtree over indices[begin:end] and returns its node
// index, mirroring vcmutils.cpp's recursive Build_ lambda.
func (t *KdTree) build(begin, end int) int {
	idx := len(t.nodes)
	t.nodes = append(t.nodes, node{})

	bound := core.EmptyAABB()
	for i := begin; i < end; i++ {
		bound = bound.UnionPoint(t.vertices[t.indices[i]].Position)
	}

	if end-begin < leafSize {
		t.nodes[idx] = node{bound: bound, isLeaf: true, begin: begin, end: end}
		return idx
	}

	axis := bound.LongestAxis()
	split := bound.Center().Component(axis)

	i, j := begin, end-1
	for i <= j {
		for i <= j && t.vertices[t.indices[i]].Position.Component(axis) < split {
			i++
		}
		for i <= j && t.vertices[t.indices[j]].Position.Component(axis) >= split {
			j--
		}
		if i < j {
			t.indices[i], t.indices[j] = t.indices[j], t.indices[i]
			i++
			j--
		}
	}
	mid := i
	if mid == begin || mid == end {
		// Degenerate partition (all points on one side of the centroid,
		// e.g. duplicate positions): fall back to a leaf rather than
		// recursing forever.
		t.nodes[idx] = node{bound: bound, isLeaf: true, begin: begin, end: end}
		return idx
	}

	child1 := t.build(begin, mid)
	child2 := t.build(mid, end)
	t.nodes[idx] = node{bound: bound, isLeaf: false, axis: axis, split: split, child1: child1, child2: child2}
	return idx
}

// RangeQuery invokes collect once for every indexed vertex within radius of
// p, mirroring vcmutils.cpp's RangeQuery branch-and-bound traversal.
func (t *KdTree) RangeQuery(p core.Vec3, radius float64, collect func(Vertex)) {
	if len(t.nodes) == 0 {
		return
	}
	radius2 := radius * radius
	t.collect(0, p, radius2, collect)
}

func (t *KdTree) collect(nodeIdx int, p core.Vec3, radius2 float64, collect func(Vertex)) {
	n := &t.nodes[nodeIdx]
	if n.isLeaf {
		for i := n.begin; i < n.end; i++ {
			v := t.vertices[t.indices[i]]
			if v.Position.Sub(p).LengthSquared() < radius2 {
				collect(v)
			}
		}
		return
	}

	pAxis := p.Component(n.axis)
	dist2 := (pAxis - n.split) * (pAxis - n.split)
	if pAxis < n.split {
		t.collect(n.child1, p, radius2, collect)
		if dist2 < radius2 {
			t.collect(n.child2, p, radius2, collect)
		}
	} else {
		t.collect(n.child2, p, radius2, collect)
		if dist2 < radius2 {
			t.collect(n.child1, p, radius2, collect)
		}
	}
}

// Count returns the number of indexed vertices (for diagnostics/tests).
func (t *KdTree) Count() int { return len(t.vertices) }
