package accel

import "github.com/df07/go-progressive-raytracer/pkg/core"

// Naive is a brute-force linear-scan accelerator: no tree, no bounds
// culling. It exists as the correctness oracle spec.md's invariant 1
// ("the accelerated traversal agrees with brute-force intersection on
// every test scene") is checked against, grounded on
// original_source/accel_naive.cpp.
type Naive struct {
	src   Intersector
	count int
	bound core.AABB
}

func NewNaive(src Intersector, count int) *Naive {
	bound := core.EmptyAABB()
	for i := 0; i < count; i++ {
		bound = bound.Union(src.Bounds(i))
	}
	return &Naive{src: src, count: count, bound: bound}
}

func (n *Naive) Hit(ray core.Ray, tMin, tMax float64) (Hit, bool) {
	invDir := ray.InvDirection()
	best := Hit{}
	found := false
	closest := tMax
	for i := 0; i < n.count; i++ {
		if t, ok := n.src.Hit(i, ray, invDir, tMin, closest); ok {
			found = true
			closest = t
			best = Hit{T: t, PrimitiveIndex: i}
		}
	}
	return best, found
}

func (n *Naive) Occluded(ray core.Ray, tMin, tMax float64) bool {
	invDir := ray.InvDirection()
	for i := 0; i < n.count; i++ {
		if _, ok := n.src.Hit(i, ray, invDir, tMin, tMax); ok {
			return true
		}
	}
	return false
}

func (n *Naive) Bounds() core.AABB { return n.bound }
