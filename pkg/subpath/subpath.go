// Package subpath traces eye and light subpaths vertex by vertex, handing
// each new vertex to a caller-supplied callback — the sampling half of
// spec.md section 5's subpath sampler, grounded on
// original_source/detail/subpathsampler.h and
// original_source/renderer/subpathsampler.cpp. Named subpath (not sampler)
// because it samples whole paths, not single numbers the way core.Random
// does.
package subpath

import (
	"math"

	"github.com/df07/go-progressive-raytracer/pkg/core"
	"github.com/df07/go-progressive-raytracer/pkg/geometry"
	"github.com/df07/go-progressive-raytracer/pkg/material"
	"github.com/df07/go-progressive-raytracer/pkg/scene"
)

// VertexType is the path-vertex type bitset of spec.md section 3: L/E mark
// an endpoint (mutually exclusive with each other and only ever set on a
// path's first vertex), D/G/S classify a surface-scattering vertex by its
// BSDF lobe.
type VertexType uint8

const (
	VertexL VertexType = 1 << iota
	VertexE
	VertexD
	VertexG
	VertexS
)

// Has reports whether every bit of flag is set in t.
func (t VertexType) Has(flag VertexType) bool { return t&flag == flag }

func vertexTypeFromBSDF(f material.TypeFlags) VertexType {
	switch {
	case f&material.FlagSpecular != 0:
		return VertexS
	case f&material.FlagGlossy != 0:
		return VertexG
	default:
		return VertexD
	}
}

// Direction is the transport direction of a subpath: traced from the eye
// (EL) or from a light (LE), per spec.md section 3's TransportDirection.
type Direction int

const (
	DirectionEL Direction = iota // eye subpath
	DirectionLE                  // light subpath
)

func (d Direction) bsdfMode() material.TransportMode {
	if d == DirectionLE {
		return material.TransportImportance
	}
	return material.TransportRadiance
}

// PathVertex is a single vertex of a subpath: its type, resolved shading
// geometry, and the scene primitive it lies on (nil only for a vertex that
// could not be constructed, which callbacks never see).
type PathVertex struct {
	Type      VertexType
	Geom      geometry.SurfaceGeometry
	Primitive *scene.Primitive
}

// ProcessFunc is called once per newly sampled vertex. step is the
// 1-indexed vertex count (the endpoint is step 1). Returning false stops
// the trace after this vertex.
type ProcessFunc func(step int, rasterPos core.Vec2, prev, curr PathVertex, throughput core.Vec3) bool

const intersectEpsilon = 1e-4

// Trace samples a full subpath from scratch: an emitter (LE) or the
// scene's sensor (EL) chosen by its own selection distribution, continuing
// by BSDF sampling until maxVertices is reached (maxVertices<0 means
// unbounded — the callback is then the only way to stop, typically via
// Russian roulette) or the path escapes/terminates.
func Trace(sc *scene.Scene, rng core.Random, maxVertices int, dir Direction, process ProcessFunc) {
	trace(sc, rng, nil, nil, 0, maxVertices, dir, nil, process)
}

// TraceEyeFixedRasterPos is Trace specialized to EL with a caller-chosen
// pixel position instead of one drawn uniformly over the image — used by
// the pixel-sampling estimators (PT, BDPT's eye subpath) that already know
// which pixel they are rendering.
func TraceEyeFixedRasterPos(sc *scene.Scene, rng core.Random, maxVertices int, rasterX, rasterY float64, process ProcessFunc) {
	raster := core.NewVec2(rasterX, rasterY)
	trace(sc, rng, nil, nil, 0, maxVertices, DirectionEL, &raster, process)
}

// TraceFromEndpoint continues a subpath that already has its last two
// vertices (prev, prevPrev) and vertex count nv, re-deriving the incoming
// direction at prev from prevPrev's position — used by BDPT/VCM when a
// subpath needs to be grown incrementally rather than all at once. Only
// nv>=2 is supported (see DESIGN.md: resuming a single cached endpoint
// vertex with no direction requires an entry point the Emitter/Sensor
// dispatch contract does not expose).
func TraceFromEndpoint(sc *scene.Scene, rng core.Random, prev, prevPrev PathVertex, nv, maxVertices int, dir Direction, process ProcessFunc) {
	if nv < 2 {
		panic("subpath: TraceFromEndpoint requires nv >= 2")
	}
	trace(sc, rng, &prev, &prevPrev, nv, maxVertices, dir, nil, process)
}

func trace(sc *scene.Scene, rng core.Random, initV, initPV *PathVertex, initStep, maxVertices int, dir Direction, fixedRaster *core.Vec2, process ProcessFunc) {
	var pv, ppv PathVertex
	if initV != nil {
		pv = *initV
	}
	if initPV != nil {
		ppv = *initPV
	}

	var throughput core.Vec3
	var rasterPos core.Vec2
	var initWo core.Vec3

	for step := initStep; maxVertices < 0 || step < maxVertices; step++ {
		if step == 0 {
			v, wo, tput, raster, ok := sampleEndpoint(sc, rng, dir, fixedRaster)
			if !ok {
				return
			}
			throughput, rasterPos, initWo = tput, raster, wo
			if !process(1, rasterPos, PathVertex{}, v, throughput) {
				return
			}
			pv = v
			continue
		}

		var wi, wo core.Vec3
		if step == 1 {
			wi = core.Vec3{}
			wo = initWo
		} else {
			if pv.Primitive.BSDF == nil {
				return
			}
			wi = ppv.Geom.P.Sub(pv.Geom.P).Normalize()
			sample, sampled := pv.Primitive.BSDF.SampleDirection(wi, pv.Geom.Sn, rng.Float64(), rng.Vec2(), dir.bsdfMode())
			if !sampled {
				return
			}
			wo = sample.Wo
			if sample.PDF.Value <= 0 {
				return
			}
			throughput = throughput.MultiplyVec(sample.F).Divide(sample.PDF.Value)
		}

		ray := core.NewRay(pv.Geom.P, wo)
		geom, prim, hit := sc.Intersect(ray, intersectEpsilon, math.Inf(1))
		if !hit {
			return
		}

		v := PathVertex{Geom: geom, Primitive: prim}
		if prim.BSDF != nil {
			v.Type = vertexTypeFromBSDF(prim.BSDF.TypeFlags())
		}

		if !process(step+1, rasterPos, pv, v, throughput) {
			return
		}
		if geom.Infinite {
			return
		}
		ppv, pv = pv, v
	}
}

// sampleEndpoint draws the first vertex of a subpath: an emitter position
// and direction (LE) or the sensor's lens point and a ray through a pixel
// (EL). Grounded on subpathsampler.cpp's "Sample initial vertex" region.
func sampleEndpoint(sc *scene.Scene, rng core.Random, dir Direction, fixedRaster *core.Vec2) (v PathVertex, wo core.Vec3, throughput core.Vec3, rasterPos core.Vec2, ok bool) {
	if dir == DirectionLE {
		emitter, selProb, idx := sc.EmitterSampler.Sample(rng.Float64())
		if idx < 0 {
			return
		}

		es, sampled := emitter.SamplePositionAndDirection(rng.Vec2(), rng.Vec2())
		if !sampled || es.PDFPos.Value <= 0 || es.PDFDir.Value <= 0 || selProb <= 0 {
			return
		}
		throughput = es.Value.Divide(es.PDFPos.Value * es.PDFDir.Value * selProb)

		geom := geometry.BuildShadingFrame(es.P, es.N, es.N, core.Vec2{})
		geom.Infinite = emitter.IsInfinite()
		primIdx := sc.EmitterPrimitiveIndex[idx]
		v = PathVertex{Type: VertexL, Geom: geom, Primitive: &sc.Primitives[primIdx]}
		return v, es.Dir, throughput, core.Vec2{}, true
	}

	sensorPrim := &sc.Primitives[sc.SensorPrimitiveIndex]
	sensor := sensorPrim.Sensor
	var rx, ry float64
	if fixedRaster != nil {
		rx, ry = fixedRaster.X, fixedRaster.Y
	} else {
		w, h := sensor.Resolution()
		rx = rng.Float64() * float64(w)
		ry = rng.Float64() * float64(h)
	}

	es, sampled := sensor.SamplePositionAndDirection(rng.Vec2(), rx, ry)
	if !sampled || es.PDFPos.Value <= 0 || es.PDFDir.Value <= 0 {
		return
	}
	throughput = es.Value.Divide(es.PDFPos.Value * es.PDFDir.Value)

	geom := geometry.BuildShadingFrame(es.P, es.N, es.N, core.Vec2{})
	v = PathVertex{Type: VertexE, Geom: geom, Primitive: sensorPrim}
	return v, es.Dir, throughput, core.NewVec2(rx, ry), true
}
