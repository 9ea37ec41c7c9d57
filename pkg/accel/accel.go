// Package accel implements the ray-traversal acceleration structures:
// a brute-force oracle, a binned-SAH BVH, an exact sorted-SAH "XYZ"
// variant, and a 4-wide soft-SIMD QBVH layout. All four share the same
// Intersector-callback contract so the scene package can plug in without
// this package knowing about triangles, transforms or meshes.
package accel

import "github.com/df07/go-progressive-raytracer/pkg/core"

// Intersector lets an acceleration structure stay agnostic of what a
// "primitive" actually is: the scene package supplies bounds and a ray
// test per flattened-primitive index (spec.md section 6's Primitive
// array), typically delegating to a triangle-mesh face intersection.
type Intersector interface {
	Bounds(primIndex int) core.AABB
	Hit(primIndex int, ray core.Ray, invDir core.Vec3, tMin, tMax float64) (t float64, ok bool)
}

// Hit is the result of a nearest-intersection query: which primitive was
// hit and at what ray parameter. Callers re-resolve full shading geometry
// (UV, normal, tangent frame) from (PrimitiveIndex, T) via the same
// Intersector they built the structure from, since that's the only
// object that knows the primitive's actual shape.
type Hit struct {
	T              float64
	PrimitiveIndex int
}

// Accelerator is the common query surface every variant in this package
// implements.
type Accelerator interface {
	// Hit finds the nearest intersection in [tMin, tMax].
	Hit(ray core.Ray, tMin, tMax float64) (Hit, bool)
	// Occluded is a cheaper any-hit query for shadow rays: it returns as
	// soon as any primitive blocks the segment, without finding the
	// closest one.
	Occluded(ray core.Ray, tMin, tMax float64) bool
	// Bounds is the union bounding box of everything in the structure.
	Bounds() core.AABB
}
