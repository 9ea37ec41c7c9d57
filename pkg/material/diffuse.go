package material

import (
	"math"

	"github.com/df07/go-progressive-raytracer/pkg/core"
)

// Diffuse is a perfectly Lambertian BSDF: f_s = albedo/pi, cosine-weighted
// sampling, grounded on the teacher's Lambertian.Scatter.
type Diffuse struct {
	Albedo core.Vec3
}

// NewDiffuse creates a new Lambertian BSDF.
func NewDiffuse(albedo core.Vec3) *Diffuse { return &Diffuse{Albedo: albedo} }

func (d *Diffuse) SampleDirection(wi, sn core.Vec3, u1 float64, u2 core.Vec2, mode TransportMode) (BSDFSample, bool) {
	onb := core.NewONB(sn)
	wo := core.RandomCosineDirectionONB(onb, u2)
	cosTheta := math.Max(0, wo.Dot(sn))
	pdf := cosTheta / math.Pi
	if pdf <= 0 {
		return BSDFSample{}, false
	}
	return BSDFSample{
		Wo:    wo,
		F:     d.Albedo.Multiply(1.0 / math.Pi),
		PDF:   core.NewPDFValue(core.MeasureProjectedSolidAngle, pdf),
		Delta: false,
	}, true
}

func (d *Diffuse) EvaluateDirection(wi, wo, sn core.Vec3, mode TransportMode) core.Vec3 {
	if wo.Dot(sn) <= 0 || wi.Dot(sn) <= 0 {
		return core.Vec3{}
	}
	return d.Albedo.Multiply(1.0 / math.Pi)
}

func (d *Diffuse) EvaluateDirectionPDF(wi, wo, sn core.Vec3) float64 {
	cosTheta := wo.Dot(sn)
	if cosTheta <= 0 {
		return 0
	}
	return cosTheta / math.Pi
}

func (d *Diffuse) IsDeltaDirection() bool { return false }
func (d *Diffuse) TypeFlags() TypeFlags   { return FlagDiffuse }
