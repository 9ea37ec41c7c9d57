package material

import (
	"math"

	"github.com/df07/go-progressive-raytracer/pkg/core"
)

// Dielectric is a smooth transparent BSDF (glass/water) with Fresnel
// reflectance and Snell refraction; a pure delta-direction BSDF, grounded
// on the teacher's Dielectric.Scatter (Schlick reflectance + TIR handling).
type Dielectric struct {
	IOR float64 // index of refraction, e.g. 1.5 for glass
}

// NewDielectric creates a new specular dielectric BSDF.
func NewDielectric(ior float64) *Dielectric { return &Dielectric{IOR: ior} }

// Reflectance approximates Fresnel reflectance with Schlick's polynomial.
func Reflectance(cosTheta, refractionRatio float64) float64 {
	r0 := (1 - refractionRatio) / (1 + refractionRatio)
	r0 *= r0
	return r0 + (1-r0)*math.Pow(1-cosTheta, 5)
}

func (d *Dielectric) SampleDirection(wi, sn core.Vec3, u1 float64, u2 core.Vec2, mode TransportMode) (BSDFSample, bool) {
	// wi points away from the surface toward the previous vertex; the
	// "incoming" physical ray direction is -wi.
	rayDir := wi.Negate().Normalize()
	frontFace := rayDir.Dot(sn) < 0
	n := sn
	var refractionRatio float64
	if frontFace {
		refractionRatio = 1.0 / d.IOR
	} else {
		n = sn.Negate()
		refractionRatio = d.IOR
	}

	cosTheta := math.Min(-rayDir.Dot(n), 1.0)
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	cannotRefract := refractionRatio*sinTheta > 1.0

	var wo core.Vec3
	if cannotRefract || Reflectance(cosTheta, refractionRatio) > u1 {
		wo = core.Reflect(rayDir, n)
	} else {
		wo = refract(rayDir, n, refractionRatio).Negate()
	}

	f := core.NewVec3(1, 1, 1)
	// Radiance transport scales by (1/eta)^2 when crossing into a denser
	// medium; only applied when tracing from the eye (spec.md section 9's
	// asymmetric correction is the direction-tracing analogue of this).
	if mode == TransportRadiance && !cannotRefract && Reflectance(cosTheta, refractionRatio) <= u1 {
		f = f.Multiply(refractionRatio * refractionRatio)
	}

	return BSDFSample{
		Wo:    wo,
		F:     f,
		PDF:   core.NewPDFValue(core.MeasureSolidAngle, 1.0),
		Delta: true,
	}, true
}

// refract computes the refracted direction of rayDir (incoming, pointing
// into the surface) about normal n with the given ratio of refractive
// indices (eta_i/eta_t).
func refract(rayDir, n core.Vec3, etaRatio float64) core.Vec3 {
	cosTheta := math.Min(-rayDir.Dot(n), 1.0)
	rOutPerp := rayDir.Add(n.Multiply(cosTheta)).Multiply(etaRatio)
	rOutParallel := n.Multiply(-math.Sqrt(math.Abs(1.0 - rOutPerp.LengthSquared())))
	return rOutPerp.Add(rOutParallel)
}

func (d *Dielectric) EvaluateDirection(wi, wo, sn core.Vec3, mode TransportMode) core.Vec3 {
	return core.Vec3{} // delta BSDF: zero measure everywhere except the exact sampled direction
}

func (d *Dielectric) EvaluateDirectionPDF(wi, wo, sn core.Vec3) float64 { return 0 }
func (d *Dielectric) IsDeltaDirection() bool                            { return true }
func (d *Dielectric) TypeFlags() TypeFlags                              { return FlagSpecular }
