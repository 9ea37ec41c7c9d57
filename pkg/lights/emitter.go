// Package lights implements the Emitter and Sensor asset kinds: area,
// directional, environment and point lights; pinhole and thin-lens
// sensors. Both families share one dispatch contract (sample/evaluate/pdf
// plus delta-position and delta-direction flags) so subpath tracing can
// treat either endpoint kind uniformly.
package lights

import "github.com/df07/go-progressive-raytracer/pkg/core"

// EndpointSample is the joint (position, direction) draw used to seed a
// subpath at an emitter or sensor endpoint.
type EndpointSample struct {
	P, N   core.Vec3     // position and outward-facing normal
	Dir    core.Vec3     // emission/importance direction, leaving the surface
	Value  core.Vec3     // Le at a light endpoint, We at a sensor endpoint
	PDFPos core.PDFValue // position sampling density (area measure, or discrete if delta)
	PDFDir core.PDFValue // direction sampling density (solid angle / projected solid angle, or discrete if delta)
}

// DirectSample is a single-point-on-the-endpoint draw used for next-event
// estimation: connecting a shading point directly to a light, or a light
// vertex directly to the sensor's image plane.
type DirectSample struct {
	P, N     core.Vec3
	Value    core.Vec3 // Le (toward a light) or We (toward the sensor)
	PDF      core.PDFValue
	RasterX  float64 // only meaningful for sensor direct samples
	RasterY  float64
	OnScreen bool // false when a sensor direct sample falls outside the image
}

// Emitter is the uniform dispatch contract for light sources (spec.md's
// "BSDF / Emitter / Sensor models" component): area, directional,
// environment and point lights all implement it.
type Emitter interface {
	// SampleDirect samples a point on the emitter visible from a shading
	// point, for next-event estimation.
	SampleDirect(point core.Vec3, u core.Vec2) (DirectSample, bool)

	// PDFDirect is the solid-angle-measure PDF of SampleDirect landing on
	// direction dir from point, used for MIS against BSDF sampling.
	PDFDirect(point core.Vec3, dir core.Vec3) core.PDFValue

	// SamplePositionAndDirection samples a full emission event (position
	// and outgoing direction) for light-subpath generation (LT/BDPT/VCM).
	SamplePositionAndDirection(uPos, uDir core.Vec2) (EndpointSample, bool)

	// Le evaluates emitted radiance leaving point p (with normal n) in
	// direction dir; used when a BSDF-sampled ray hits the emitter.
	Le(p, n, dir core.Vec3) core.Vec3

	// PDFEmission returns the (position, direction) sampling densities
	// that SamplePositionAndDirection would have produced for this (p,dir).
	PDFEmission(p, n, dir core.Vec3) (core.PDFValue, core.PDFValue)

	IsDeltaPosition() bool
	IsDeltaDirection() bool
	IsInfinite() bool // environment/directional lights have no finite position
}

// Sensor is the uniform dispatch contract for cameras: pinhole and
// thin-lens sensors.
type Sensor interface {
	// SampleDirect samples a point on the sensor's lens visible from a
	// light-subpath vertex, for light tracing; returns the raster
	// coordinates the connection lands on.
	SampleDirect(point core.Vec3, u core.Vec2) (DirectSample, bool)

	// SamplePositionAndDirection seeds an eye subpath: a lens point and a
	// direction through a (possibly caller-fixed) raster position.
	SamplePositionAndDirection(uLens core.Vec2, rasterX, rasterY float64) (EndpointSample, bool)

	// We evaluates importance for a ray leaving the lens point p in
	// direction dir, and the raster coordinates it projects to.
	We(p, dir core.Vec3) (value core.Vec3, rasterX, rasterY float64, onScreen bool)

	PDFEmission(p, dir core.Vec3) (core.PDFValue, core.PDFValue)

	IsDeltaPosition() bool
	IsDeltaDirection() bool

	Resolution() (width, height int)
}
