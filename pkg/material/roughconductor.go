package material

import (
	"math"

	"github.com/df07/go-progressive-raytracer/pkg/core"
)

// RoughConductor is a microfacet BRDF using the Beckmann normal
// distribution and matching Smith shadowing-masking term, sampled by the
// standard Beckmann half-vector importance sampling (spec.md section 4
// names "rough-conductor (Beckmann microfacet)" as one of the three BSDFs).
type RoughConductor struct {
	Albedo    core.Vec3 // reflectance / conductor tint
	Roughness float64   // Beckmann alpha, 0 = mirror
}

// NewRoughConductor creates a Beckmann microfacet conductor BSDF.
func NewRoughConductor(albedo core.Vec3, roughness float64) *RoughConductor {
	if roughness < 1e-4 {
		roughness = 1e-4
	}
	return &RoughConductor{Albedo: albedo, Roughness: roughness}
}

// beckmannD evaluates the Beckmann microfacet distribution for a half
// vector h expressed in the local shading frame (cosThetaH = h.z).
func (r *RoughConductor) beckmannD(cosThetaH float64) float64 {
	if cosThetaH <= 0 {
		return 0
	}
	a2 := r.Roughness * r.Roughness
	cos2 := cosThetaH * cosThetaH
	cos4 := cos2 * cos2
	tan2 := (1 - cos2) / cos2
	return math.Exp(-tan2/a2) / (math.Pi * a2 * cos4)
}

// smithG1 is the Smith monodirectional shadowing-masking term for the
// Beckmann distribution.
func (r *RoughConductor) smithG1(cosTheta float64) float64 {
	if cosTheta <= 0 {
		return 0
	}
	tanTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta)) / cosTheta
	if tanTheta == 0 {
		return 1
	}
	a := 1.0 / (r.Roughness * tanTheta)
	if a >= 1.6 {
		return 1
	}
	return (3.535*a + 2.181*a*a) / (1 + 2.276*a + 2.577*a*a)
}

func (r *RoughConductor) smithG(cosWi, cosWo float64) float64 {
	return r.smithG1(cosWi) * r.smithG1(cosWo)
}

// sampleBeckmannH samples a half-vector h (local frame) distributed
// proportional to D(h)*cos(theta_h), the standard Beckmann visible-normal
// surrogate (the simpler, non-visible-normal sampling routine).
func (r *RoughConductor) sampleBeckmannH(u core.Vec2) core.Vec3 {
	logSample := math.Log(1 - u.X)
	if math.IsInf(logSample, -1) {
		logSample = 0
	}
	tan2Theta := -r.Roughness * r.Roughness * logSample
	cosTheta := 1.0 / math.Sqrt(1+tan2Theta)
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	phi := 2 * math.Pi * u.Y
	return core.Vec3{X: sinTheta * math.Cos(phi), Y: sinTheta * math.Sin(phi), Z: cosTheta}
}

// beckmannPDFWo is the PDF (solid angle measure) of sampleBeckmannH mapped
// through the reflection operator wo = reflect(wi, h): p(wo) = D(h)*cos(h)/(4*|wo.h|).
func (r *RoughConductor) beckmannPDFWo(h, wo core.Vec3) float64 {
	cosThetaH := h.Z
	d := r.beckmannD(cosThetaH)
	denom := 4 * math.Abs(wo.Dot(h))
	if denom == 0 {
		return 0
	}
	return d * cosThetaH / denom
}

func (r *RoughConductor) SampleDirection(wi, sn core.Vec3, u1 float64, u2 core.Vec2, mode TransportMode) (BSDFSample, bool) {
	onb := core.NewONB(sn)
	wiLocal := onb.ToLocal(wi)
	if wiLocal.Z <= 0 {
		return BSDFSample{}, false
	}

	hLocal := r.sampleBeckmannH(u2)
	woLocal := core.Reflect(wiLocal.Negate(), hLocal)
	if woLocal.Z <= 0 {
		return BSDFSample{}, false
	}

	pdf := r.beckmannPDFWo(hLocal, woLocal)
	if pdf <= 0 {
		return BSDFSample{}, false
	}

	wo := onb.ToWorld(woLocal)
	f := r.evaluateLocal(wiLocal, woLocal)
	return BSDFSample{
		Wo:    wo,
		F:     f,
		PDF:   core.NewPDFValue(core.MeasureProjectedSolidAngle, pdf/woLocal.Z),
		Delta: false,
	}, true
}

func (r *RoughConductor) evaluateLocal(wiLocal, woLocal core.Vec3) core.Vec3 {
	if wiLocal.Z <= 0 || woLocal.Z <= 0 {
		return core.Vec3{}
	}
	h := wiLocal.Add(woLocal).Normalize()
	d := r.beckmannD(h.Z)
	g := r.smithG(wiLocal.Z, woLocal.Z)
	denom := 4 * wiLocal.Z * woLocal.Z
	if denom == 0 || d == 0 || g == 0 {
		return core.Vec3{}
	}
	scalar := d * g / denom
	return r.Albedo.Multiply(scalar)
}

func (r *RoughConductor) EvaluateDirection(wi, wo, sn core.Vec3, mode TransportMode) core.Vec3 {
	onb := core.NewONB(sn)
	return r.evaluateLocal(onb.ToLocal(wi), onb.ToLocal(wo))
}

func (r *RoughConductor) EvaluateDirectionPDF(wi, wo, sn core.Vec3) float64 {
	onb := core.NewONB(sn)
	wiLocal, woLocal := onb.ToLocal(wi), onb.ToLocal(wo)
	if wiLocal.Z <= 0 || woLocal.Z <= 0 {
		return 0
	}
	h := wiLocal.Add(woLocal).Normalize()
	// d(wo)/d(h) projected-solid-angle density, divided out of the raw PDF
	// (the /woLocal.Z term converts the "projected" measure consistently
	// with SampleDirection's PDF tagging).
	return r.beckmannPDFWo(h, woLocal) / woLocal.Z
}

func (r *RoughConductor) IsDeltaDirection() bool { return false }
func (r *RoughConductor) TypeFlags() TypeFlags   { return FlagGlossy }
