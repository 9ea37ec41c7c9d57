// Package core implements the fixed-dimension math, spectrum and random
// number primitives shared by every other package in the renderer.
package core

import "math"

// Vec2 represents a 2D vector, used for UV coordinates and sample pairs.
type Vec2 struct {
	X, Y float64
}

// NewVec2 creates a new Vec2.
func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Vec3 represents a 3D vector, point or spectrum sample triple.
type Vec3 struct {
	X, Y, Z float64
}

// NewVec3 creates a new Vec3.
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add returns the sum of two vectors.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns the difference of two vectors.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Multiply returns the vector scaled by a scalar.
func (v Vec3) Multiply(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// MultiplyVec returns the component-wise product of two vectors.
func (v Vec3) MultiplyVec(o Vec3) Vec3 { return Vec3{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }

// Divide returns the vector divided by a scalar.
func (v Vec3) Divide(s float64) Vec3 { return Vec3{v.X / s, v.Y / s, v.Z / s} }

// Negate returns the vector negated.
func (v Vec3) Negate() Vec3 { return Vec3{-v.X, -v.Y, -v.Z} }

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Cross returns the cross product of two vectors.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// LengthSquared returns the squared magnitude of the vector.
func (v Vec3) LengthSquared() float64 { return v.X*v.X + v.Y*v.Y + v.Z*v.Z }

// Length returns the magnitude of the vector.
func (v Vec3) Length() float64 { return math.Sqrt(v.LengthSquared()) }

// Normalize returns a unit vector in the same direction; the zero vector
// normalizes to itself rather than producing NaN.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Divide(l)
}

// Abs returns the component-wise absolute value.
func (v Vec3) Abs() Vec3 { return Vec3{math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)} }

// MaxComponent returns the largest of the three components.
func (v Vec3) MaxComponent() float64 { return math.Max(v.X, math.Max(v.Y, v.Z)) }

// Component returns the axis-indexed component (0=X, 1=Y, 2=Z), used by
// the acceleration structures to pick a split/traversal axis generically.
func (v Vec3) Component(axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// IsBlack returns true if every component is exactly zero.
func (v Vec3) IsBlack() bool { return v.X == 0 && v.Y == 0 && v.Z == 0 }

// Clamp returns a vector with components clamped to [lo, hi].
func (v Vec3) Clamp(lo, hi float64) Vec3 {
	c := func(x float64) float64 {
		if x < lo {
			return lo
		}
		if x > hi {
			return hi
		}
		return x
	}
	return Vec3{c(v.X), c(v.Y), c(v.Z)}
}

// Luminance returns the perceptual luminance of a color-valued Vec3, used
// for Russian-roulette survival probability and tonemapping.
func (v Vec3) Luminance() float64 {
	return 0.2126*v.X + 0.7152*v.Y + 0.0722*v.Z
}

// FaceForward flips n to lie in the same hemisphere as ref.
func FaceForward(n, ref Vec3) Vec3 {
	if n.Dot(ref) < 0 {
		return n.Negate()
	}
	return n
}

// Reflect reflects the incident direction d (pointing toward the surface)
// about normal n; the result points away from the surface on the same side.
func Reflect(d, n Vec3) Vec3 {
	return d.Sub(n.Multiply(2 * d.Dot(n)))
}

// ONB is a right-handed orthonormal basis built around a normal vector.
// ToWorld's columns are (dpdu, dpdv, sn), matching SurfaceGeometry.ToWorld.
type ONB struct {
	U, V, W Vec3 // U = dpdu (tangent), V = dpdv (bitangent), W = sn (normal)
}

// NewONB constructs an orthonormal basis from a single unit normal using the
// Duff et al. branchless construction (robust for n.Z near -1).
func NewONB(n Vec3) ONB {
	n = n.Normalize()
	sign := math.Copysign(1.0, n.Z)
	a := -1.0 / (sign + n.Z)
	b := n.X * n.Y * a
	u := Vec3{1.0 + sign*n.X*n.X*a, sign * b, -sign * n.X}
	v := Vec3{b, sign + n.Y*n.Y*a, -n.Y}
	return ONB{U: u, V: v, W: n}
}

// ToWorld transforms a local-frame vector into world space.
func (o ONB) ToWorld(v Vec3) Vec3 {
	return o.U.Multiply(v.X).Add(o.V.Multiply(v.Y)).Add(o.W.Multiply(v.Z))
}

// ToLocal transforms a world-space vector into the local frame.
func (o ONB) ToLocal(v Vec3) Vec3 {
	return Vec3{v.Dot(o.U), v.Dot(o.V), v.Dot(o.W)}
}
