package integrator

import (
	"math"

	"github.com/df07/go-progressive-raytracer/pkg/core"
	"github.com/df07/go-progressive-raytracer/pkg/film"
	"github.com/df07/go-progressive-raytracer/pkg/path"
	"github.com/df07/go-progressive-raytracer/pkg/photon"
	"github.com/df07/go-progressive-raytracer/pkg/scene"
	"github.com/df07/go-progressive-raytracer/pkg/subpath"
)

// sppmPixel is the per-pixel progressive-photon-mapping state Hachisuka &
// Jensen's algorithm carries across passes: the current search radius, the
// running photon count, and the accumulated unnormalized flux. Grounded on
// original_source/renderer/sppm.cpp's HitPoint.
type sppmPixel struct {
	radius  float64
	n       float64 // N: photon count accumulated so far, possibly fractional after shrinkage
	tau     core.Vec3
	direct  core.Vec3 // running mean of the direct/specular term, accumulated like film.SetPixel
	directN float64
}

// SPPM is stochastic progressive photon mapping: each pass traces one eye
// subpath per pixel down to its first non-specular ("visible point")
// vertex, evaluates direct lighting and specular bounces there exactly like
// DirectLighting, then gathers nearby light-subpath vertices from a shared
// photon map and shrinks that pixel's search radius for the next pass
// (Hachisuka & Jensen 2009's N'=N+alpha*M radius-reduction rule). Grounded
// on original_source/renderer/sppm.cpp.
type SPPM struct {
	MaxDepth       int
	PhotonsPerPass int
	InitialRadius  float64
	Alpha          float64 // radius shrinkage rate, 0 < Alpha < 1; 0.7 is the original's default

	pixels []sppmPixel
	w, h   int
}

func NewSPPM(maxDepth, photonsPerPass int, initialRadius, alpha float64) *SPPM {
	return &SPPM{MaxDepth: maxDepth, PhotonsPerPass: photonsPerPass, InitialRadius: initialRadius, Alpha: alpha}
}

func (sp *SPPM) ensurePixels(w, h int) {
	if sp.pixels != nil && sp.w == w && sp.h == h {
		return
	}
	sp.w, sp.h = w, h
	sp.pixels = make([]sppmPixel, w*h)
	for i := range sp.pixels {
		sp.pixels[i].radius = sp.InitialRadius
	}
}

// RenderPass runs one full SPPM iteration: trace PhotonsPerPass light
// subpaths into a fresh photon map, then for every pixel trace one eye
// subpath to its visible point, gather nearby photons, shrink that pixel's
// radius, and write the combined direct+indirect estimate to f.
func (sp *SPPM) RenderPass(sc *scene.Scene, rng core.Random, f *film.Film) {
	w, h := f.Width(), f.Height()
	sp.ensurePixels(w, h)

	lightSubs := make([]path.Subpath, sp.PhotonsPerPass)
	for i := range lightSubs {
		lightSubs[i] = path.Sample(sc, rng, sp.MaxDepth, subpath.DirectionLE)
	}
	verts := photon.CollectVertices(lightSubs)
	tree := photon.NewKdTree(verts)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := &sp.pixels[y*w+x]
			direct, visible, eye := sp.traceVisiblePoint(sc, rng, x, y)

			px.directN++
			px.direct = px.direct.Add(direct.Sub(px.direct).Multiply(1 / px.directN))

			indirect := core.Vec3{}
			if visible {
				indirect = sp.gather(sc, lightSubs, tree, eye, float64(sp.PhotonsPerPass), px)
			}

			f.SetPixel(x, y, px.direct.Add(indirect))
		}
	}
}

// traceVisiblePoint traces one eye subpath for pixel (x,y), accumulating
// direct lighting and specular-bounce contributions exactly like
// DirectLighting, and reports whether it reached a non-specular surface
// (the "visible point" photons can be gathered at) along with the eye
// subpath up through that vertex.
func (sp *SPPM) traceVisiblePoint(sc *scene.Scene, rng core.Random, x, y int) (core.Vec3, bool, path.Subpath) {
	var color core.Vec3
	var eye path.Subpath
	visible := false
	subpath.TraceEyeFixedRasterPos(sc, rng, sp.MaxDepth, float64(x)+rng.Float64(), float64(y)+rng.Float64(),
		func(step int, rasterPos core.Vec2, prev, curr subpath.PathVertex, throughput core.Vec3) bool {
			eye = append(eye, curr)
			if step < 2 {
				return true
			}
			color = color.Add(directLightingContribution(sc, rng, eye))
			if isNonSpecularHit(curr) {
				visible = true
				return false
			}
			return curr.Primitive.Emitter == nil
		})
	return color, visible, eye
}

// gather performs the photon-density estimate at eye's visible point
// (its last vertex) by merging it against every nearby light-subpath
// vertex within the pixel's current radius, then shrinks that radius for
// the next pass following Hachisuka & Jensen's progressive formula.
func (sp *SPPM) gather(sc *scene.Scene, lightSubs []path.Subpath, tree *photon.KdTree, eye path.Subpath, numLightSubpaths float64, px *sppmPixel) core.Vec3 {
	t := len(eye)
	visiblePoint := eye[t-1].Geom.P

	var flux core.Vec3
	var m float64
	tree.RangeQuery(visiblePoint, px.radius, func(pv photon.Vertex) {
		lightSub := lightSubs[pv.SubpathIndex]
		s := pv.VertexIndex + 1
		p, ok := path.Merge(lightSub, eye, s, t)
		if !ok {
			return
		}
		pdf := p.PDF(sc, s, true, px.radius)
		if pdf.Value <= 0 {
			return
		}
		flux = flux.Add(p.Contribution().Divide(pdf.Value))
		m++
	})
	flux = flux.Divide(numLightSubpaths)

	if m > 0 {
		ratio := (px.n + sp.Alpha*m) / (px.n + m)
		px.tau = px.tau.Add(flux).Multiply(ratio)
		px.radius *= math.Sqrt(ratio)
		px.n += sp.Alpha * m
	}

	if px.radius <= 0 {
		return core.Vec3{}
	}
	area := math.Pi * px.radius * px.radius
	return px.tau.Divide(area)
}
