package lights

import (
	"math"

	"github.com/df07/go-progressive-raytracer/pkg/core"
)

// ThinLensSensor adds a finite circular aperture and focal distance to
// PinholeSensor's projection model, grounded on original_source's
// sensor_thinlens.cpp: rays leave a uniformly sampled lens point and are
// aimed through the point where the pinhole ray would cross the focal
// plane, producing depth of field. Position sampling is no longer a delta
// distribution once LensRadius > 0.
type ThinLensSensor struct {
	Pinhole       *PinholeSensor
	LensRadius    float64
	FocalDistance float64
}

func NewThinLensSensor(pinhole *PinholeSensor, lensRadius, focalDistance float64) *ThinLensSensor {
	return &ThinLensSensor{Pinhole: pinhole, LensRadius: lensRadius, FocalDistance: focalDistance}
}

func (t *ThinLensSensor) lensPoint(u core.Vec2) core.Vec3 {
	d := core.UniformSampleDisk(u)
	return t.Pinhole.Origin.Add(t.Pinhole.Right.Multiply(d.X * t.LensRadius)).Add(t.Pinhole.Up.Multiply(d.Y * t.LensRadius))
}

// refocus maps a pinhole-ray direction and a sampled lens
// point to the direction that ray takes once refracted through the lens.
func (t *ThinLensSensor) refocus(pinholeDir core.Vec3, lensP core.Vec3) core.Vec3 {
	cosTheta := pinholeDir.Dot(t.Pinhole.Forward)
	focusPoint := t.Pinhole.Origin.Add(pinholeDir.Multiply(t.FocalDistance / cosTheta))
	return focusPoint.Sub(lensP).Normalize()
}

func (t *ThinLensSensor) SampleDirect(point core.Vec3, u core.Vec2) (DirectSample, bool) {
	lensU := core.NewVec2(u.X, u.Y)
	lensP := t.lensPoint(lensU)
	toLens := lensP.Sub(point)
	dist2 := toLens.LengthSquared()
	if dist2 < 1e-12 {
		return DirectSample{}, false
	}
	dist := math.Sqrt(dist2)
	dirToLens := toLens.Multiply(1.0 / dist)

	value, rx, ry, onScreen := t.We(lensP, dirToLens.Negate())
	if !onScreen {
		return DirectSample{}, false
	}
	lensArea := math.Pi * t.LensRadius * t.LensRadius
	return DirectSample{
		P:        lensP,
		N:        t.Pinhole.Forward,
		Value:    value,
		PDF:      core.NewPDFValue(core.MeasureArea, 1.0/lensArea),
		RasterX:  rx,
		RasterY:  ry,
		OnScreen: true,
	}, true
}

func (t *ThinLensSensor) SamplePositionAndDirection(uLens core.Vec2, rasterX, rasterY float64) (EndpointSample, bool) {
	lensP := t.lensPoint(uLens)
	pinholeDir := t.Pinhole.dirFromRaster(rasterX, rasterY)
	dir := t.refocus(pinholeDir, lensP)

	value, _, _, onScreen := t.We(lensP, dir)
	if !onScreen {
		return EndpointSample{}, false
	}
	cosTheta := dir.Dot(t.Pinhole.Forward)
	dirPDF := 1.0 / (t.Pinhole.imageArea() * cosTheta * cosTheta * cosTheta)
	lensArea := math.Pi * t.LensRadius * t.LensRadius
	return EndpointSample{
		P:      lensP,
		N:      t.Pinhole.Forward,
		Dir:    dir,
		Value:  value,
		PDFPos: core.NewPDFValue(core.MeasureArea, 1.0/lensArea),
		PDFDir: core.NewPDFValue(core.MeasureSolidAngle, dirPDF),
	}, true
}

func (t *ThinLensSensor) We(lensP, dir core.Vec3) (core.Vec3, float64, float64, bool) {
	// Raster projection is approximated through the pinhole's image plane
	// (the direction here has already been refocused through the lens).
	return t.Pinhole.We(lensP, dir)
}

func (t *ThinLensSensor) PDFEmission(lensP, dir core.Vec3) (core.PDFValue, core.PDFValue) {
	lensArea := math.Pi * t.LensRadius * t.LensRadius
	_, dirPDF := t.Pinhole.PDFEmission(lensP, dir)
	return core.NewPDFValue(core.MeasureArea, 1.0/lensArea), dirPDF
}

func (t *ThinLensSensor) IsDeltaPosition() bool  { return t.LensRadius <= 0 }
func (t *ThinLensSensor) IsDeltaDirection() bool { return false }
func (t *ThinLensSensor) Resolution() (int, int) { return t.Pinhole.Resolution() }
