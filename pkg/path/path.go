// Package path implements the path algebra spec.md section 4.3 builds
// BDPT/VCM estimators from: joining two subpaths into one full light
// transport path (by vertex connection or by vertex merging), evaluating
// its measurement contribution, its area-measure PDF under any other
// (s,merge) strategy that could have sampled the same vertex sequence, and
// the multiple-importance-sampling weight that combines all of them.
// Grounded on original_source/renderer/vcmutils.cpp's Subpath/Path classes.
package path

import (
	"math"

	"github.com/df07/go-progressive-raytracer/pkg/core"
	"github.com/df07/go-progressive-raytracer/pkg/material"
	"github.com/df07/go-progressive-raytracer/pkg/scene"
	"github.com/df07/go-progressive-raytracer/pkg/subpath"
)

// Subpath is a fully materialized subpath (all vertices collected from a
// subpath.Trace callback), the accumulation step vcmutils.cpp's
// Subpath::SampleSubpath performs around PhotonMapUtils::TraceSubpath.
type Subpath []subpath.PathVertex

// Sample runs dir (DirectionLE or DirectionEL) to completion and collects
// every vertex it produces.
func Sample(sc *scene.Scene, rng core.Random, maxVertices int, dir subpath.Direction) Subpath {
	var verts Subpath
	subpath.Trace(sc, rng, maxVertices, dir, func(step int, rasterPos core.Vec2, prev, curr subpath.PathVertex, throughput core.Vec3) bool {
		verts = append(verts, curr)
		return true
	})
	return verts
}

// Path is a full transport path built by Connect or Merge: light[:S]
// followed by eye[:T] reversed, S recording where the light-subpath
// portion ends so Contribution/PDF/MISWeight know which strategy produced
// it. Merge marks a vertex-merged (photon density estimate) path rather
// than a vertex-connected one.
type Path struct {
	Vertices []subpath.PathVertex
	S        int
	Merge    bool
}

const connectEpsilon = 1e-4

// Connect joins a light subpath's first s vertices to an eye subpath's
// first t vertices, covering all three cases spec.md section 4.3 names:
// s==0 (the eye subpath hit a light directly), t==0 (the light subpath hit
// the sensor directly, light tracing), and s>0&&t>0 (a shadow-ray
// connection between the two subpaths' last included vertices). Returns
// false when the path cannot be formed (wrong endpoint kind, an infinite
// vertex at the join, or occlusion).
func Connect(sc *scene.Scene, light, eye Subpath, s, t int) (Path, bool) {
	switch {
	case s == 0 && t > 0:
		if t > len(eye) {
			return Path{}, false
		}
		verts := reversed(eye[:t])
		if verts[0].Primitive.Emitter == nil {
			return Path{}, false
		}
		verts[0].Type = subpath.VertexL
		return Path{Vertices: verts, S: 0}, true

	case s > 0 && t == 0:
		if s > len(light) {
			return Path{}, false
		}
		verts := append([]subpath.PathVertex(nil), light[:s]...)
		last := len(verts) - 1
		if verts[last].Primitive.Sensor == nil {
			return Path{}, false
		}
		verts[last].Type = subpath.VertexE
		return Path{Vertices: verts, S: s}, true

	default:
		if s > len(light) || t > len(eye) {
			return Path{}, false
		}
		vL, vE := light[s-1], eye[t-1]
		if vL.Geom.Infinite || vE.Geom.Infinite {
			return Path{}, false
		}
		if !visible(sc, vL.Geom.P, vE.Geom.P) {
			return Path{}, false
		}
		verts := append([]subpath.PathVertex(nil), light[:s]...)
		verts = append(verts, reversed(eye[:t])...)
		return Path{Vertices: verts, S: s}, true
	}
}

// Merge joins a light subpath's first s vertices to an eye subpath's first
// t vertices for vertex merging (photon density estimation): unlike
// Connect, both join vertices must be present (s,t>=1) and neither may
// carry a delta position, since a delta-position surface occupies zero
// area and can never be found by a radius search.
func Merge(light, eye Subpath, s, t int) (Path, bool) {
	if s < 1 || t < 1 || s > len(light) || t > len(eye) {
		return Path{}, false
	}
	vL, vE := light[s-1], eye[t-1]
	if isDeltaPosition(vL) || isDeltaPosition(vE) {
		return Path{}, false
	}
	if vL.Geom.Infinite || vE.Geom.Infinite {
		return Path{}, false
	}
	verts := append([]subpath.PathVertex(nil), light[:s]...)
	verts = append(verts, reversed(eye[:t])...)
	return Path{Vertices: verts, S: s, Merge: true}, true
}

func reversed(vs []subpath.PathVertex) []subpath.PathVertex {
	out := make([]subpath.PathVertex, len(vs))
	for i, v := range vs {
		out[len(vs)-1-i] = v
	}
	return out
}

func visible(sc *scene.Scene, a, b core.Vec3) bool {
	d := b.Sub(a)
	dist := d.Length()
	if dist < connectEpsilon {
		return true
	}
	dir := d.Multiply(1 / dist)
	ray := core.NewRay(a, dir)
	return !sc.Occluded(ray, connectEpsilon, dist-connectEpsilon)
}

func isDeltaPosition(v subpath.PathVertex) bool {
	switch {
	case v.Type.Has(subpath.VertexL):
		return v.Primitive.Emitter.IsDeltaPosition()
	case v.Type.Has(subpath.VertexE):
		return v.Primitive.Sensor.IsDeltaPosition()
	default:
		return false
	}
}

func isDeltaDirection(v subpath.PathVertex) bool {
	switch {
	case v.Type.Has(subpath.VertexL):
		return v.Primitive.Emitter.IsDeltaDirection()
	case v.Type.Has(subpath.VertexE):
		return v.Primitive.Sensor.IsDeltaDirection()
	default:
		return v.Primitive.BSDF != nil && v.Primitive.BSDF.IsDeltaDirection()
	}
}

// endpointF evaluates an endpoint vertex's emission/importance in
// direction out (leaving the endpoint toward the rest of the path). It
// stands in for the original's separate EvaluatePosition/EvaluateDirection
// pair on a unified emitter "surface": this port's Emitter.Le and
// Sensor.We already return the complete (position x direction) value in
// one call, so there is nothing left to factor out (see DESIGN.md).
func endpointF(v subpath.PathVertex, out core.Vec3) core.Vec3 {
	switch {
	case v.Type.Has(subpath.VertexL):
		return v.Primitive.Emitter.Le(v.Geom.P, v.Geom.Sn, out)
	case v.Type.Has(subpath.VertexE):
		value, _, _, onScreen := v.Primitive.Sensor.We(v.Geom.P, out)
		if !onScreen {
			return core.Vec3{}
		}
		return value
	default:
		return core.Vec3{}
	}
}

// Contribution evaluates the path's unweighted measurement contribution
// (the original's Path::EvaluateF): the light-side chain of BSDF values
// and geometry terms, the eye-side chain, and the connecting term at the
// join (a direct Le/We evaluation for s==0 or t==0, or a shadow-ray BSDF
// product fsL*G*fsE for a full connection, or a single BSDF evaluation at
// the merge vertex for a merged path).
func (p Path) Contribution() core.Vec3 {
	n := len(p.Vertices)
	if n < 2 {
		return core.Vec3{}
	}
	s, t := p.S, n-p.S

	fL := core.NewVec3(1, 1, 1)
	if s > 0 {
		v0 := p.Vertices[0]
		dirOut := p.Vertices[1].Geom.P.Sub(v0.Geom.P).Normalize()
		fL = endpointF(v0, dirOut)
		if fL.IsBlack() {
			return core.Vec3{}
		}
		loopEnd := s - 1
		if p.Merge {
			loopEnd = s
		}
		for i := 1; i < loopEnd; i++ {
			v, vPrev, vNext := p.Vertices[i], p.Vertices[i-1], p.Vertices[i+1]
			if v.Primitive.BSDF == nil {
				return core.Vec3{}
			}
			wi := vPrev.Geom.P.Sub(v.Geom.P).Normalize()
			wo := vNext.Geom.P.Sub(v.Geom.P).Normalize()
			fs := v.Primitive.BSDF.EvaluateDirection(wi, wo, v.Geom.Sn, material.TransportImportance)
			g := core.GeometryTerm(v.Geom.Endpoint(), vNext.Geom.Endpoint())
			fL = fL.MultiplyVec(fs).Multiply(g)
		}
	}
	if fL.IsBlack() {
		return core.Vec3{}
	}

	fE := core.NewVec3(1, 1, 1)
	if t > 0 {
		vLast := p.Vertices[n-1]
		dirOut := p.Vertices[n-2].Geom.P.Sub(vLast.Geom.P).Normalize()
		fE = endpointF(vLast, dirOut)
		if fE.IsBlack() {
			return core.Vec3{}
		}
		for i := n - 2; i > s; i-- {
			v, vPrev, vNext := p.Vertices[i], p.Vertices[i-1], p.Vertices[i+1]
			if v.Primitive.BSDF == nil {
				return core.Vec3{}
			}
			wi := vNext.Geom.P.Sub(v.Geom.P).Normalize()
			wo := vPrev.Geom.P.Sub(v.Geom.P).Normalize()
			fs := v.Primitive.BSDF.EvaluateDirection(wi, wo, v.Geom.Sn, material.TransportRadiance)
			g := core.GeometryTerm(v.Geom.Endpoint(), vPrev.Geom.Endpoint())
			fE = fE.MultiplyVec(fs).Multiply(g)
		}
	}
	if fE.IsBlack() {
		return core.Vec3{}
	}

	var cst core.Vec3
	switch {
	case !p.Merge && s == 0 && t > 0:
		cst = core.NewVec3(1, 1, 1) // already folded into fE's endpoint term above
	case !p.Merge && s > 0 && t == 0:
		cst = core.NewVec3(1, 1, 1) // already folded into fL's endpoint term above
	case !p.Merge:
		vL, vE := p.Vertices[s-1], p.Vertices[s]
		var wiL core.Vec3
		if s >= 2 {
			wiL = p.Vertices[s-2].Geom.P.Sub(vL.Geom.P).Normalize()
		}
		woL := vE.Geom.P.Sub(vL.Geom.P).Normalize()
		fsL := endpointOrBSDF(vL, wiL, woL, material.TransportImportance)

		var wiE core.Vec3
		if s+1 < n {
			wiE = p.Vertices[s+1].Geom.P.Sub(vE.Geom.P).Normalize()
		}
		woE := vL.Geom.P.Sub(vE.Geom.P).Normalize()
		fsE := endpointOrBSDF(vE, wiE, woE, material.TransportRadiance)

		g := core.GeometryTerm(vL.Geom.Endpoint(), vE.Geom.Endpoint())
		cst = fsL.MultiplyVec(fsE).Multiply(g)
	default:
		v, vPrev, vNext := p.Vertices[s], p.Vertices[s-1], p.Vertices[s+1]
		if v.Primitive.BSDF == nil {
			return core.Vec3{}
		}
		wi := vPrev.Geom.P.Sub(v.Geom.P).Normalize()
		wo := vNext.Geom.P.Sub(v.Geom.P).Normalize()
		cst = v.Primitive.BSDF.EvaluateDirection(wi, wo, v.Geom.Sn, material.TransportImportance)
	}

	return fL.MultiplyVec(cst).MultiplyVec(fE)
}

// endpointOrBSDF evaluates the scattering factor at a connection vertex
// that may itself be the subpath's own endpoint (s==1 or t==1, where the
// "previous" vertex doesn't exist and the vertex's own Emitter/Sensor
// provides the value instead of a BSDF).
func endpointOrBSDF(v subpath.PathVertex, wi, wo core.Vec3, mode material.TransportMode) core.Vec3 {
	if v.Type.Has(subpath.VertexL) || v.Type.Has(subpath.VertexE) {
		return endpointF(v, wo)
	}
	if v.Primitive.BSDF == nil {
		return core.Vec3{}
	}
	return v.Primitive.BSDF.EvaluateDirection(wi, wo, v.Geom.Sn, mode)
}

// PDF evaluates the area-measure PDF of the path's vertex sequence having
// been generated by strategy (s, merge) — not necessarily the strategy
// that actually produced p.Vertices, so MISWeight can sweep every
// competing strategy (the original's Path::EvaluatePathPDF). radius is
// only used when merge is true (area of the merge disk).
func (p Path) PDF(sc *scene.Scene, s int, merge bool, radius float64) core.PDFValue {
	n := len(p.Vertices)
	if n < 2 {
		return core.NewPDFValue(core.MeasureProdArea, 0)
	}
	t := n - s
	if s < 0 || t < 0 {
		return core.NewPDFValue(core.MeasureProdArea, 0)
	}

	if !merge {
		switch {
		case s == 0 && t > 0:
			if v := p.Vertices[0]; v.Primitive.Emitter.IsDeltaPosition() {
				return core.NewPDFValue(core.MeasureProdArea, 0)
			}
		case s > 0 && t == 0:
			if v := p.Vertices[n-1]; v.Primitive.Sensor.IsDeltaPosition() {
				return core.NewPDFValue(core.MeasureProdArea, 0)
			}
		case s > 0 && t > 0:
			if isDeltaDirection(p.Vertices[s-1]) || isDeltaDirection(p.Vertices[s]) {
				return core.NewPDFValue(core.MeasureProdArea, 0)
			}
		}
	} else {
		if s == 0 || t == 0 {
			return core.NewPDFValue(core.MeasureProdArea, 0)
		}
		vE := p.Vertices[s]
		if isDeltaPosition(vE) || isDeltaDirection(vE) {
			return core.NewPDFValue(core.MeasureProdArea, 0)
		}
	}

	pdf := core.NewPDFValue(core.MeasureProdArea, 1)

	if s > 0 {
		v0 := p.Vertices[0]
		dirOut := p.Vertices[1].Geom.P.Sub(v0.Geom.P).Normalize()
		posPDF, dirPDF := v0.Primitive.Emitter.PDFEmission(v0.Geom.P, v0.Geom.Sn, dirOut)
		selProb := sc.EmitterSelectionProbability(v0.Primitive)
		pdf = pdf.MulArea(core.NewPDFValue(core.MeasureArea, posPDF.Value*selProb))
		pdf = pdf.MulArea(dirPDF.ConvertToArea(v0.Geom.Endpoint(), p.Vertices[1].Geom.Endpoint()))

		loopEnd := s - 1
		if merge {
			loopEnd = s
		}
		for i := 1; i < loopEnd; i++ {
			v, vPrev, vNext := p.Vertices[i], p.Vertices[i-1], p.Vertices[i+1]
			if v.Primitive.BSDF == nil {
				return core.NewPDFValue(core.MeasureProdArea, 0)
			}
			wi := vPrev.Geom.P.Sub(v.Geom.P).Normalize()
			wo := vNext.Geom.P.Sub(v.Geom.P).Normalize()
			dpdf := v.Primitive.BSDF.EvaluateDirectionPDF(wi, wo, v.Geom.Sn)
			area := core.NewPDFValue(core.MeasureProjectedSolidAngle, dpdf).ConvertToArea(v.Geom.Endpoint(), vNext.Geom.Endpoint())
			pdf = pdf.MulArea(area)
		}
	}

	if t > 0 {
		vLast := p.Vertices[n-1]
		dirOut := p.Vertices[n-2].Geom.P.Sub(vLast.Geom.P).Normalize()
		posPDF, dirPDF := vLast.Primitive.Sensor.PDFEmission(vLast.Geom.P, dirOut)
		pdf = pdf.MulArea(core.NewPDFValue(core.MeasureArea, posPDF.Value))
		pdf = pdf.MulArea(dirPDF.ConvertToArea(vLast.Geom.Endpoint(), p.Vertices[n-2].Geom.Endpoint()))

		for i := n - 2; i >= s+1; i-- {
			v, vPrev := p.Vertices[i], p.Vertices[i-1]
			var vNext *subpath.PathVertex
			if i+1 < n {
				vNext = &p.Vertices[i+1]
			}
			if v.Primitive.BSDF == nil {
				return core.NewPDFValue(core.MeasureProdArea, 0)
			}
			var wi core.Vec3
			if vNext != nil {
				wi = vNext.Geom.P.Sub(v.Geom.P).Normalize()
			}
			wo := vPrev.Geom.P.Sub(v.Geom.P).Normalize()
			dpdf := v.Primitive.BSDF.EvaluateDirectionPDF(wi, wo, v.Geom.Sn)
			area := core.NewPDFValue(core.MeasureProjectedSolidAngle, dpdf).ConvertToArea(v.Geom.Endpoint(), vPrev.Geom.Endpoint())
			pdf = pdf.MulArea(area)
		}
	}

	if merge {
		pdf = pdf.Scale(math.Pi * radius * radius)
	}
	return pdf
}

// MISWeightBDPT is the power-heuristic MIS weight over pure vertex
// connection strategies s'=0..n (the original's EvaluateMISWeight_BDPT),
// used by a BDPT estimator with no photon merging.
func (p Path) MISWeightBDPT(sc *scene.Scene) float64 {
	n := len(p.Vertices)
	values := make([]float64, n+1)
	for s := 0; s <= n; s++ {
		values[s] = p.PDF(sc, s, false, 0).Value
	}
	return core.PowerHeuristicN(values, p.S)
}

// MISWeightVCM is the power-heuristic MIS weight over every connection
// AND merge strategy (the original's EvaluateMISWeight_VCM), weighting
// each merge strategy's squared PDF ratio by numLightSubpaths — the
// number of photon-mapping light subpaths traced per eye subpath, since a
// merge strategy effectively gets that many independent chances to
// produce the same path.
func (p Path) MISWeightVCM(sc *scene.Scene, radius, numLightSubpaths float64) float64 {
	n := len(p.Vertices)
	ps := p.PDF(sc, p.S, p.Merge, radius)
	if ps.Value <= 0 {
		return 0
	}
	invw := 0.0
	for s := 0; s <= n; s++ {
		for _, merge := range [2]bool{false, true} {
			pi := p.PDF(sc, s, merge, radius)
			if pi.Value <= 0 {
				continue
			}
			r := pi.Value / ps.Value
			weight := 1.0
			if merge {
				weight = numLightSubpaths
			}
			invw += r * r * weight
		}
	}
	if invw <= 0 {
		return 0
	}
	return 1.0 / invw
}

// RasterPosition returns the image-plane coordinates a light-traced path
// (one whose last vertex is the sensor) lands on.
func (p Path) RasterPosition() (x, y float64, onScreen bool) {
	n := len(p.Vertices)
	v, vPrev := p.Vertices[n-1], p.Vertices[n-2]
	wi := vPrev.Geom.P.Sub(v.Geom.P).Normalize()
	_, x, y, onScreen = v.Primitive.Sensor.We(v.Geom.P, wi)
	return x, y, onScreen
}
