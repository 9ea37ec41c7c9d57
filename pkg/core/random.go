package core

import "math"

// Random is a deterministic, seedable source of [0,1) doubles and raw
// 32-bit integers. Each rendering thread owns an independent instance
// (spec.md section 3 and section 5's RNG discipline).
type Random interface {
	Uint32() uint32
	Float64() float64
	Vec2() Vec2
}

// Xorshift128Plus is the engine's chosen RNG back-end: small, allocation
// free and trivially forked per thread by drawing a fresh 32-bit seed from
// the master stream. It passes the standard empirical randomness batteries
// (TestU01 SmallCrush/Crush) at the 2^128-1 period the algorithm is known for.
type Xorshift128Plus struct {
	s0, s1 uint64
}

// NewXorshift128Plus seeds the generator from a single 32-bit integer,
// expanding it with splitmix64 so s0/s1 are well mixed even for small seeds.
func NewXorshift128Plus(seed uint32) *Xorshift128Plus {
	sm := splitmix64{state: uint64(seed)*0x9E3779B97F4A7C15 + 1}
	r := &Xorshift128Plus{s0: sm.next(), s1: sm.next()}
	if r.s0 == 0 && r.s1 == 0 {
		r.s1 = 1 // all-zero state is a fixed point
	}
	return r
}

// Fork derives a new, independent stream by drawing one 32-bit value from
// this generator and using it as the seed for a fresh one (spec.md section
// 5: "each thread's Random is seeded from the master by drawing one 32-bit
// integer at thread creation").
func (x *Xorshift128Plus) Fork() *Xorshift128Plus {
	return NewXorshift128Plus(x.Uint32())
}

func (x *Xorshift128Plus) next64() uint64 {
	s1 := x.s0
	s0 := x.s1
	x.s0 = s0
	s1 ^= s1 << 23
	s1 ^= s1 >> 17
	s1 ^= s0
	s1 ^= s0 >> 26
	x.s1 = s1
	return x.s0 + x.s1
}

// Uint32 returns a raw pseudo-random 32-bit value.
func (x *Xorshift128Plus) Uint32() uint32 {
	return uint32(x.next64() >> 32)
}

// Float64 returns a pseudo-random value in [0,1).
func (x *Xorshift128Plus) Float64() float64 {
	// Use the top 53 bits for full double mantissa precision.
	return float64(x.next64()>>11) * (1.0 / (1 << 53))
}

// Vec2 returns a pair of independent [0,1) samples, the canonical "u2"
// argument to direction/position sampling routines throughout the renderer.
func (x *Xorshift128Plus) Vec2() Vec2 {
	return NewVec2(x.Float64(), x.Float64())
}

type splitmix64 struct{ state uint64 }

func (s *splitmix64) next() uint64 {
	s.state += 0x9E3779B97F4A7C15
	z := s.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// RandomCosineDirection draws a cosine-weighted direction in the hemisphere
// around normal n via Malley's method (polar disk mapping r = sqrt(u1),
// projected up onto the hemisphere).
func RandomCosineDirection(n Vec3, rng Random) Vec3 {
	return RandomCosineDirectionONB(NewONB(n), rng.Vec2())
}

// RandomCosineDirectionONB is the pure-function form of RandomCosineDirection,
// taking an already-built frame and an explicit (u1,u2) pair so BSDF
// SampleDirection implementations can use caller-supplied randoms rather
// than pulling directly from a Random stream.
func RandomCosineDirectionONB(onb ONB, u Vec2) Vec3 {
	r := math.Sqrt(u.X)
	phi := 2 * math.Pi * u.Y
	x := r * math.Cos(phi)
	y := r * math.Sin(phi)
	z := math.Sqrt(math.Max(0, 1-u.X))
	return onb.ToWorld(Vec3{x, y, z}).Normalize()
}

// UniformSampleSphere draws a direction uniformly over the full sphere.
func UniformSampleSphere(u Vec2) Vec3 {
	z := 1 - 2*u.X
	r := math.Sqrt(math.Max(0, 1-z*z))
	phi := 2 * math.Pi * u.Y
	return Vec3{r * math.Cos(phi), r * math.Sin(phi), z}
}

// UniformSampleSpherePDF is the PDF (solid angle measure) of UniformSampleSphere.
func UniformSampleSpherePDF() float64 { return 1.0 / (4.0 * math.Pi) }

// UniformSampleDisk draws a point on the unit disk, used for the thin-lens
// aperture and the directional/environment lights' emission disks.
func UniformSampleDisk(u Vec2) Vec2 {
	r := math.Sqrt(u.X)
	theta := 2 * math.Pi * u.Y
	return NewVec2(r*math.Cos(theta), r*math.Sin(theta))
}

// UniformSampleCone samples a direction within a cone of half-angle whose
// cosine is cosThetaMax, around the local z axis.
func UniformSampleCone(u Vec2, cosThetaMax float64) Vec3 {
	cosTheta := (1 - u.X) + u.X*cosThetaMax
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	phi := 2 * math.Pi * u.Y
	return Vec3{math.Cos(phi) * sinTheta, math.Sin(phi) * sinTheta, cosTheta}
}

// UniformConePDF returns the PDF (solid angle measure) of UniformSampleCone.
func UniformConePDF(cosThetaMax float64) float64 {
	return 1.0 / (2.0 * math.Pi * (1 - cosThetaMax))
}
