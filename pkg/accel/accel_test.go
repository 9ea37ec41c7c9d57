package accel

import (
	"math"
	"testing"

	"github.com/df07/go-progressive-raytracer/pkg/core"
)

// sphereSet is a simple Intersector over analytic spheres, used only to
// exercise the tree-construction and traversal logic independent of the
// triangle-mesh intersection code in pkg/geometry.
type sphereSet struct {
	centers []core.Vec3
	radii   []float64
}

func (s sphereSet) Bounds(i int) core.AABB {
	r := core.NewVec3(s.radii[i], s.radii[i], s.radii[i])
	return core.NewAABB(s.centers[i].Sub(r), s.centers[i].Add(r))
}

func (s sphereSet) Hit(i int, ray core.Ray, invDir core.Vec3, tMin, tMax float64) (float64, bool) {
	oc := ray.Origin.Sub(s.centers[i])
	a := ray.Direction.Dot(ray.Direction)
	b := 2 * oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.radii[i]*s.radii[i]
	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t := (-b - sq) / (2 * a)
	if t < tMin || t > tMax {
		t = (-b + sq) / (2 * a)
		if t < tMin || t > tMax {
			return 0, false
		}
	}
	return t, true
}

func randomSpheres(seed uint32, n int) sphereSet {
	rng := core.NewXorshift128Plus(seed)
	set := sphereSet{centers: make([]core.Vec3, n), radii: make([]float64, n)}
	for i := 0; i < n; i++ {
		set.centers[i] = core.NewVec3(rng.Float64()*20-10, rng.Float64()*20-10, rng.Float64()*20-10)
		set.radii[i] = 0.2 + rng.Float64()*0.5
	}
	return set
}

func testRays(seed uint32, n int) []core.Ray {
	rng := core.NewXorshift128Plus(seed)
	rays := make([]core.Ray, n)
	for i := range rays {
		origin := core.NewVec3(rng.Float64()*30-15, rng.Float64()*30-15, rng.Float64()*30-15)
		dir := core.UniformSampleSphere(rng.Vec2())
		rays[i] = core.NewRay(origin, dir)
	}
	return rays
}

func TestAcceleratorsAgreeWithNaive(t *testing.T) {
	set := randomSpheres(1, 300)
	naive := NewNaive(set, 300)
	bvh := NewBVH(set, 300)
	xyz := NewBVHXYZ(set, 300)
	qbvh := NewQBVH(set, 300)

	rays := testRays(2, 500)
	for i, ray := range rays {
		wantHit, wantOk := naive.Hit(ray, 1e-4, math.Inf(1))
		for name, acc := range map[string]Accelerator{"bvh": bvh, "xyz": xyz, "qbvh": qbvh} {
			gotHit, gotOk := acc.Hit(ray, 1e-4, math.Inf(1))
			if gotOk != wantOk {
				t.Fatalf("ray %d (%s): hit=%v, want %v", i, name, gotOk, wantOk)
			}
			if wantOk && math.Abs(gotHit.T-wantHit.T) > 1e-6 {
				t.Fatalf("ray %d (%s): t=%v, want %v", i, name, gotHit.T, wantHit.T)
			}
		}
	}
}

func TestOccludedAgreesWithHit(t *testing.T) {
	set := randomSpheres(3, 150)
	bvh := NewBVH(set, 150)
	rays := testRays(4, 200)
	for i, ray := range rays {
		hit, ok := bvh.Hit(ray, 1e-4, math.Inf(1))
		occluded := bvh.Occluded(ray, 1e-4, math.Inf(1))
		if ok != occluded {
			t.Fatalf("ray %d: Hit found=%v (t=%v) but Occluded=%v", i, ok, hit.T, occluded)
		}
	}
}

func TestEmptyAccelerator(t *testing.T) {
	set := randomSpheres(5, 0)
	bvh := NewBVH(set, 0)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))
	if _, ok := bvh.Hit(ray, 0, math.Inf(1)); ok {
		t.Errorf("empty BVH should never report a hit")
	}
}
