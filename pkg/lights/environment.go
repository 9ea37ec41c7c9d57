package lights

import (
	"math"

	"github.com/df07/go-progressive-raytracer/pkg/core"
)

// EnvironmentTexture evaluates radiance for a direction on the unit
// sphere; pkg/loaders supplies an implementation backed by a decoded
// lat-long image (golang.org/x/image).
type EnvironmentTexture interface {
	Eval(dir core.Vec3) core.Vec3
}

// ConstantEnvironment is a trivial EnvironmentTexture returning a single
// color everywhere, used when no image is supplied (and as the default
// sky for scenes ported from the teacher's GradientInfiniteLight).
type ConstantEnvironment struct{ Color core.Vec3 }

func (c ConstantEnvironment) Eval(dir core.Vec3) core.Vec3 { return c.Color }

// EnvironmentLight is an infinite light whose radiance varies by
// direction, grounded on the teacher's GradientInfiniteLight/
// UniformInfiniteLight (uniform full-sphere direct sampling, disk-based
// emission sampling against the scene bounding sphere) generalized from a
// procedural gradient to an arbitrary direction-indexed texture, per
// original_source's light_env.cpp.
type EnvironmentLight struct {
	Texture    EnvironmentTexture
	SceneBound core.SphereBound
}

func NewEnvironmentLight(tex EnvironmentTexture, sceneBound core.SphereBound) *EnvironmentLight {
	return &EnvironmentLight{Texture: tex, SceneBound: sceneBound}
}

func (e *EnvironmentLight) SampleDirect(point core.Vec3, u core.Vec2) (DirectSample, bool) {
	// Environment lights have no surface normal to cosine-weight sampling
	// against at the shading point; sample the full sphere uniformly and
	// let MIS against BSDF sampling correct the variance, matching
	// original_source's light_env.cpp uniform-sphere direct strategy.
	dir := core.UniformSampleSphere(u)
	far := point.Add(dir.Multiply(2 * e.SceneBound.Radius))
	return DirectSample{
		P:     far,
		N:     dir.Negate(),
		Value: e.Texture.Eval(dir),
		PDF:   core.NewPDFValue(core.MeasureSolidAngle, core.UniformSampleSpherePDF()),
	}, true
}

func (e *EnvironmentLight) PDFDirect(point core.Vec3, dir core.Vec3) core.PDFValue {
	return core.NewPDFValue(core.MeasureSolidAngle, core.UniformSampleSpherePDF())
}

func (e *EnvironmentLight) SamplePositionAndDirection(uPos, uDir core.Vec2) (EndpointSample, bool) {
	dir := core.UniformSampleSphere(uDir).Negate() // ray leaving the light travels opposite the incident direction
	onb := core.NewONB(dir)
	disk := core.UniformSampleDisk(uPos)
	p := e.SceneBound.Center.
		Add(dir.Negate().Multiply(e.SceneBound.Radius)).
		Add(onb.U.Multiply(disk.X * e.SceneBound.Radius)).
		Add(onb.V.Multiply(disk.Y * e.SceneBound.Radius))
	diskArea := math.Pi * e.SceneBound.Radius * e.SceneBound.Radius

	return EndpointSample{
		P:      p,
		N:      dir,
		Dir:    dir,
		Value:  e.Texture.Eval(dir.Negate()),
		PDFPos: core.NewPDFValue(core.MeasureArea, 1.0/diskArea),
		PDFDir: core.NewPDFValue(core.MeasureSolidAngle, core.UniformSampleSpherePDF()),
	}, true
}

func (e *EnvironmentLight) Le(p, n, dir core.Vec3) core.Vec3 {
	return e.Texture.Eval(dir)
}

func (e *EnvironmentLight) PDFEmission(p, n, dir core.Vec3) (core.PDFValue, core.PDFValue) {
	diskArea := math.Pi * e.SceneBound.Radius * e.SceneBound.Radius
	return core.NewPDFValue(core.MeasureArea, 1.0/diskArea), core.NewPDFValue(core.MeasureSolidAngle, core.UniformSampleSpherePDF())
}

func (e *EnvironmentLight) IsDeltaPosition() bool  { return false }
func (e *EnvironmentLight) IsDeltaDirection() bool { return false }
func (e *EnvironmentLight) IsInfinite() bool       { return true }
