package lights

import (
	"math"

	"github.com/df07/go-progressive-raytracer/pkg/core"
)

// DirectionalLight is a delta-direction emitter (parallel rays, as from a
// distant sun), grounded on the original_source's light_directional.cpp:
// delta in direction, sampled position lies on a disk covering the scene
// bounding sphere so that a light subpath can still be seeded with a real
// finite starting point.
type DirectionalLight struct {
	Direction  core.Vec3 // direction the light travels (points away from the source)
	Radiance   core.Vec3
	SceneBound core.SphereBound
}

func NewDirectionalLight(direction, radiance core.Vec3, sceneBound core.SphereBound) *DirectionalLight {
	return &DirectionalLight{Direction: direction.Normalize(), Radiance: radiance, SceneBound: sceneBound}
}

func (d *DirectionalLight) SampleDirect(point core.Vec3, u core.Vec2) (DirectSample, bool) {
	toLight := d.Direction.Negate()
	far := point.Add(toLight.Multiply(2 * d.SceneBound.Radius))
	return DirectSample{
		P:     far,
		N:     toLight,
		Value: d.Radiance,
		PDF:   core.NewPDFValue(core.MeasureSolidAngle, 1.0), // delta: treated as always-selected
	}, true
}

func (d *DirectionalLight) PDFDirect(point core.Vec3, dir core.Vec3) core.PDFValue {
	return core.NewPDFValue(core.MeasureSolidAngle, 0) // delta direction: zero density off the exact sampled ray
}

func (d *DirectionalLight) SamplePositionAndDirection(uPos, uDir core.Vec2) (EndpointSample, bool) {
	onb := core.NewONB(d.Direction)
	disk := core.UniformSampleDisk(uPos)
	p := d.SceneBound.Center.
		Add(d.Direction.Negate().Multiply(d.SceneBound.Radius)).
		Add(onb.U.Multiply(disk.X * d.SceneBound.Radius)).
		Add(onb.V.Multiply(disk.Y * d.SceneBound.Radius))
	diskArea := math.Pi * d.SceneBound.Radius * d.SceneBound.Radius

	return EndpointSample{
		P:      p,
		N:      d.Direction,
		Dir:    d.Direction,
		Value:  d.Radiance,
		PDFPos: core.NewPDFValue(core.MeasureArea, 1.0/diskArea),
		PDFDir: core.NewPDFValue(core.MeasureDiscrete, 1.0), // delta direction
	}, true
}

func (d *DirectionalLight) Le(p, n, dir core.Vec3) core.Vec3 { return core.Vec3{} }

func (d *DirectionalLight) PDFEmission(p, n, dir core.Vec3) (core.PDFValue, core.PDFValue) {
	diskArea := math.Pi * d.SceneBound.Radius * d.SceneBound.Radius
	return core.NewPDFValue(core.MeasureArea, 1.0/diskArea), core.NewPDFValue(core.MeasureDiscrete, 1.0)
}

func (d *DirectionalLight) IsDeltaPosition() bool  { return false }
func (d *DirectionalLight) IsDeltaDirection() bool { return true }
func (d *DirectionalLight) IsInfinite() bool       { return true }
