package core

import "math"

// AABB is an axis-aligned bounding box. An empty box is encoded as
// Min=+Inf, Max=-Inf per spec.md section 3.
type AABB struct {
	Min Vec3
	Max Vec3
}

// EmptyAABB returns the canonical empty bound.
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{Min: Vec3{inf, inf, inf}, Max: Vec3{-inf, -inf, -inf}}
}

// NewAABB creates an AABB from explicit min/max corners.
func NewAABB(min, max Vec3) AABB { return AABB{Min: min, Max: max} }

// NewAABBFromPoints bounds a set of points.
func NewAABBFromPoints(points ...Vec3) AABB {
	b := EmptyAABB()
	for _, p := range points {
		b = b.UnionPoint(p)
	}
	return b
}

// UnionPoint grows the box to include p.
func (a AABB) UnionPoint(p Vec3) AABB {
	return AABB{
		Min: Vec3{math.Min(a.Min.X, p.X), math.Min(a.Min.Y, p.Y), math.Min(a.Min.Z, p.Z)},
		Max: Vec3{math.Max(a.Max.X, p.X), math.Max(a.Max.Y, p.Y), math.Max(a.Max.Z, p.Z)},
	}
}

// Union returns the box bounding both a and o.
func (a AABB) Union(o AABB) AABB {
	return AABB{
		Min: Vec3{math.Min(a.Min.X, o.Min.X), math.Min(a.Min.Y, o.Min.Y), math.Min(a.Min.Z, o.Min.Z)},
		Max: Vec3{math.Max(a.Max.X, o.Max.X), math.Max(a.Max.Y, o.Max.Y), math.Max(a.Max.Z, o.Max.Z)},
	}
}

// Center returns the box's midpoint.
func (a AABB) Center() Vec3 { return a.Min.Add(a.Max).Multiply(0.5) }

// Size returns the per-axis extent.
func (a AABB) Size() Vec3 { return a.Max.Sub(a.Min) }

// SurfaceArea returns the total surface area, used by the SAH cost model.
func (a AABB) SurfaceArea() float64 {
	s := a.Size()
	if s.X < 0 || s.Y < 0 || s.Z < 0 {
		return 0
	}
	return 2.0 * (s.X*s.Y + s.Y*s.Z + s.Z*s.X)
}

// LongestAxis returns 0/1/2 for the axis with the largest extent.
func (a AABB) LongestAxis() int {
	s := a.Size()
	if s.X > s.Y && s.X > s.Z {
		return 0
	}
	if s.Y > s.Z {
		return 1
	}
	return 2
}

// AxisExtent returns (min, max) of the box along the given axis.
func (a AABB) AxisExtent(axis int) (float64, float64) {
	switch axis {
	case 0:
		return a.Min.X, a.Max.X
	case 1:
		return a.Min.Y, a.Max.Y
	default:
		return a.Min.Z, a.Max.Z
	}
}

// Expand inflates the box by amount on every side (used to give
// axis-aligned triangles a non-zero extent before binning).
func (a AABB) Expand(amount float64) AABB {
	e := NewVec3(amount, amount, amount)
	return AABB{Min: a.Min.Sub(e), Max: a.Max.Add(e)}
}

// Valid reports whether min <= max on every axis.
func (a AABB) Valid() bool {
	return a.Min.X <= a.Max.X && a.Min.Y <= a.Max.Y && a.Min.Z <= a.Max.Z
}

// Hit implements the slab test with a caller-supplied reciprocal direction,
// ordering each axis's entry/exit distances by comparison (spec.md section 4.1). invDir must be ray.InvDirection().
func (a AABB) Hit(ray Ray, invDir Vec3, tMin, tMax float64) bool {
	t0x := (a.Min.X - ray.Origin.X) * invDir.X
	t1x := (a.Max.X - ray.Origin.X) * invDir.X
	if t0x > t1x {
		t0x, t1x = t1x, t0x
	}
	tMin = math.Max(tMin, t0x)
	tMax = math.Min(tMax, t1x)
	if tMin > tMax {
		return false
	}

	t0y := (a.Min.Y - ray.Origin.Y) * invDir.Y
	t1y := (a.Max.Y - ray.Origin.Y) * invDir.Y
	if t0y > t1y {
		t0y, t1y = t1y, t0y
	}
	tMin = math.Max(tMin, t0y)
	tMax = math.Min(tMax, t1y)
	if tMin > tMax {
		return false
	}

	t0z := (a.Min.Z - ray.Origin.Z) * invDir.Z
	t1z := (a.Max.Z - ray.Origin.Z) * invDir.Z
	if t0z > t1z {
		t0z, t1z = t1z, t0z
	}
	tMin = math.Max(tMin, t0z)
	tMax = math.Min(tMax, t1z)
	return tMin <= tMax
}

// SphereBound is a bounding sphere, used for the emitter/sensor virtual
// disk radius and infinite-light world-radius computations.
type SphereBound struct {
	Center Vec3
	Radius float64
}

// BoundingSphere returns the smallest sphere (center = box center) that
// contains the AABB.
func (a AABB) BoundingSphere() SphereBound {
	c := a.Center()
	return SphereBound{Center: c, Radius: a.Max.Sub(c).Length()}
}
