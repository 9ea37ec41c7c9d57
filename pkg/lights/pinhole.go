package lights

import (
	"math"

	"github.com/df07/go-progressive-raytracer/pkg/core"
)

// PinholeSensor is a delta-position perfect pinhole camera: every ray
// passes through a single lens point, so only the direction distribution
// carries measure. Grounded in shape on the teacher's renderer.Camera
// (origin + basis + viewport rectangle), generalized with physically
// normalized importance (We) and PDF per original_source's
// sensor_pinhole.cpp so it can participate in light tracing and BDPT/VCM
// MIS, not just primary-ray generation.
type PinholeSensor struct {
	Origin          core.Vec3
	Forward, Up, Right core.Vec3 // orthonormal camera basis, Forward = viewing direction
	ImageWidth      float64      // image plane half-extents at unit distance from Origin along Forward
	ImageHeight     float64
	ResX, ResY      int
}

// NewPinholeSensor builds a pinhole camera looking from eye toward
// target, with the given vertical field of view (radians) and pixel
// resolution.
func NewPinholeSensor(eye, target, up core.Vec3, fovY float64, resX, resY int) *PinholeSensor {
	forward := target.Sub(eye).Normalize()
	right := forward.Cross(up).Normalize()
	camUp := right.Cross(forward).Normalize()
	halfHeight := math.Tan(fovY / 2)
	aspect := float64(resX) / float64(resY)
	return &PinholeSensor{
		Origin: eye, Forward: forward, Up: camUp, Right: right,
		ImageWidth: halfHeight * aspect, ImageHeight: halfHeight,
		ResX: resX, ResY: resY,
	}
}

func (p *PinholeSensor) imageArea() float64 { return 4 * p.ImageWidth * p.ImageHeight }

// rasterFromDir projects a camera-space direction (already normalized,
// with positive Forward component) onto raster coordinates; returns
// onScreen=false if it falls outside the image rectangle.
func (p *PinholeSensor) rasterFromDir(dir core.Vec3) (x, y float64, onScreen bool) {
	cosTheta := dir.Dot(p.Forward)
	if cosTheta <= 0 {
		return 0, 0, false
	}
	// Project onto the image plane at unit distance along Forward.
	planePoint := dir.Multiply(1.0 / cosTheta)
	su := planePoint.Dot(p.Right)
	sv := planePoint.Dot(p.Up)
	if math.Abs(su) > p.ImageWidth || math.Abs(sv) > p.ImageHeight {
		return 0, 0, false
	}
	x = (su/p.ImageWidth + 1) * 0.5 * float64(p.ResX)
	y = (1 - (sv/p.ImageHeight+1)*0.5) * float64(p.ResY)
	return x, y, true
}

// dirFromRaster is the inverse of rasterFromDir.
func (p *PinholeSensor) dirFromRaster(x, y float64) core.Vec3 {
	su := (2*x/float64(p.ResX) - 1) * p.ImageWidth
	sv := (1 - 2*y/float64(p.ResY)) * p.ImageHeight
	dir := p.Forward.Add(p.Right.Multiply(su)).Add(p.Up.Multiply(sv))
	return dir.Normalize()
}

func (p *PinholeSensor) SampleDirect(point core.Vec3, u core.Vec2) (DirectSample, bool) {
	toLens := p.Origin.Sub(point)
	dist2 := toLens.LengthSquared()
	if dist2 < 1e-12 {
		return DirectSample{}, false
	}
	dist := math.Sqrt(dist2)
	dirToLens := toLens.Multiply(1.0 / dist)

	// We is evaluated for the ray traveling FROM the lens (opposite dirToLens).
	value, rx, ry, onScreen := p.We(p.Origin, dirToLens.Negate())
	if !onScreen {
		return DirectSample{}, false
	}
	return DirectSample{
		P:        p.Origin,
		N:        p.Forward,
		Value:    value,
		PDF:      core.NewPDFValue(core.MeasureDiscrete, 1.0),
		RasterX:  rx,
		RasterY:  ry,
		OnScreen: true,
	}, true
}

func (p *PinholeSensor) SamplePositionAndDirection(uLens core.Vec2, rasterX, rasterY float64) (EndpointSample, bool) {
	dir := p.dirFromRaster(rasterX, rasterY)
	value, _, _, onScreen := p.We(p.Origin, dir)
	if !onScreen {
		return EndpointSample{}, false
	}
	cosTheta := dir.Dot(p.Forward)
	dirPDF := 1.0 / (p.imageArea() * cosTheta * cosTheta * cosTheta)
	return EndpointSample{
		P:      p.Origin,
		N:      p.Forward,
		Dir:    dir,
		Value:  value,
		PDFPos: core.NewPDFValue(core.MeasureDiscrete, 1.0),
		PDFDir: core.NewPDFValue(core.MeasureSolidAngle, dirPDF),
	}, true
}

func (p *PinholeSensor) We(lensP, dir core.Vec3) (core.Vec3, float64, float64, bool) {
	rx, ry, onScreen := p.rasterFromDir(dir)
	if !onScreen {
		return core.Vec3{}, 0, 0, false
	}
	cosTheta := dir.Dot(p.Forward)
	we := 1.0 / (p.imageArea() * cosTheta * cosTheta * cosTheta * cosTheta)
	return core.NewVec3(we, we, we), rx, ry, true
}

func (p *PinholeSensor) PDFEmission(lensP, dir core.Vec3) (core.PDFValue, core.PDFValue) {
	cosTheta := dir.Dot(p.Forward)
	if cosTheta <= 0 {
		return core.NewPDFValue(core.MeasureDiscrete, 1.0), core.NewPDFValue(core.MeasureSolidAngle, 0)
	}
	dirPDF := 1.0 / (p.imageArea() * cosTheta * cosTheta * cosTheta)
	return core.NewPDFValue(core.MeasureDiscrete, 1.0), core.NewPDFValue(core.MeasureSolidAngle, dirPDF)
}

func (p *PinholeSensor) IsDeltaPosition() bool  { return true }
func (p *PinholeSensor) IsDeltaDirection() bool { return false }
func (p *PinholeSensor) Resolution() (int, int) { return p.ResX, p.ResY }
