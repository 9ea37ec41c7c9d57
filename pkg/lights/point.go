package lights

import (
	"math"

	"github.com/df07/go-progressive-raytracer/pkg/core"
)

// PointLight is a delta-position isotropic point emitter, grounded on
// original_source's light_point.cpp: delta in position only. Emission
// directions are sampled uniformly over the full sphere, Le is zero (the
// light is never hit), and the inverse-square falloff is applied to the
// value SampleDirect returns.
type PointLight struct {
	Position core.Vec3
	Intensity core.Vec3 // radiant intensity (W/sr)
}

func NewPointLight(position, intensity core.Vec3) *PointLight {
	return &PointLight{Position: position, Intensity: intensity}
}

func (p *PointLight) SampleDirect(point core.Vec3, u core.Vec2) (DirectSample, bool) {
	toLight := p.Position.Sub(point)
	dist2 := toLight.LengthSquared()
	if dist2 < 1e-12 {
		return DirectSample{}, false
	}
	dist := math.Sqrt(dist2)
	dir := toLight.Multiply(1.0 / dist)
	return DirectSample{
		P:     p.Position,
		N:     dir.Negate(),
		Value: p.Intensity.Multiply(1.0 / dist2),
		PDF:   core.NewPDFValue(core.MeasureSolidAngle, 1.0),
	}, true
}

func (p *PointLight) PDFDirect(point core.Vec3, dir core.Vec3) core.PDFValue {
	return core.NewPDFValue(core.MeasureSolidAngle, 0)
}

func (p *PointLight) SamplePositionAndDirection(uPos, uDir core.Vec2) (EndpointSample, bool) {
	dir := core.UniformSampleSphere(uDir)
	return EndpointSample{
		P:      p.Position,
		N:      dir,
		Dir:    dir,
		Value:  p.Intensity,
		PDFPos: core.NewPDFValue(core.MeasureDiscrete, 1.0),
		PDFDir: core.NewPDFValue(core.MeasureSolidAngle, core.UniformSampleSpherePDF()),
	}, true
}

func (p *PointLight) Le(pos, n, dir core.Vec3) core.Vec3 { return core.Vec3{} }

func (p *PointLight) PDFEmission(pos, n, dir core.Vec3) (core.PDFValue, core.PDFValue) {
	return core.NewPDFValue(core.MeasureDiscrete, 1.0), core.NewPDFValue(core.MeasureSolidAngle, core.UniformSampleSpherePDF())
}

func (p *PointLight) IsDeltaPosition() bool  { return true }
func (p *PointLight) IsDeltaDirection() bool { return false }
func (p *PointLight) IsInfinite() bool       { return false }
