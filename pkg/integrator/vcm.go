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

// VCM is vertex connection and merging: every pass combines a full BDPT
// connection sweep (as in BDPT) with a photon-merging gather at every
// non-specular eye vertex (as in SPPM) against one shared photon map, and
// weights every connection and merge strategy for the same vertex sequence
// together via path.MISWeightVCM's combined power heuristic. The photon
// search radius shrinks once per pass by the global factor
// sqrt((pass+Alpha)/(pass+1)) (the
// original's simplified global-radius variant, rather than SPPM's
// per-pixel radius, since VCM connects across the whole image each pass
// rather than refining pixels independently). Grounded on
// original_source/renderer/vcm.cpp.
type VCM struct {
	MaxDepth      int
	LightSubpaths int // light subpaths traced per pass, shared across all pixels
	InitialRadius float64
	Alpha         float64 // global radius shrinkage rate, matching SPPM's Alpha

	radius float64
	pass   int
}

func NewVCM(maxDepth, lightSubpaths int, initialRadius, alpha float64) *VCM {
	return &VCM{MaxDepth: maxDepth, LightSubpaths: lightSubpaths, InitialRadius: initialRadius, Alpha: alpha, radius: initialRadius}
}

func (v *VCM) RenderPass(sc *scene.Scene, rng core.Random, f *film.Film) {
	w, h := f.Width(), f.Height()

	lightSubs := make([]path.Subpath, v.LightSubpaths)
	for i := range lightSubs {
		lightSubs[i] = path.Sample(sc, rng, v.MaxDepth, subpath.DirectionLE)
	}
	verts := photon.CollectVertices(lightSubs)
	tree := photon.NewKdTree(verts)
	numLightSubpaths := float64(v.LightSubpaths)

	for _, lightSub := range lightSubs {
		v.splatLightHitsSensor(sc, lightSub, numLightSubpaths, f)
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f.SetPixel(x, y, v.samplePixel(sc, rng, x, y, lightSubs, tree, numLightSubpaths))
		}
	}

	v.pass++
	ratio := (float64(v.pass) + v.Alpha) / (float64(v.pass) + 1)
	v.radius *= math.Sqrt(ratio)
}

func (v *VCM) splatLightHitsSensor(sc *scene.Scene, lightSub path.Subpath, numLightSubpaths float64, f *film.Film) {
	for s := 1; s <= len(lightSub); s++ {
		p, ok := path.Connect(sc, lightSub, nil, s, 0)
		if !ok {
			continue
		}
		pdf := p.PDF(sc, s, false, 0)
		if pdf.Value <= 0 {
			continue
		}
		w := p.MISWeightVCM(sc, v.radius, numLightSubpaths)
		contrib := p.Contribution().Divide(pdf.Value).Multiply(w).Divide(numLightSubpaths)
		x, y, onScreen := p.RasterPosition()
		if onScreen {
			f.Splat(x, y, contrib)
		}
	}
}

func (v *VCM) samplePixel(sc *scene.Scene, rng core.Random, x, y int, lightSubs []path.Subpath, tree *photon.KdTree, numLightSubpaths float64) core.Vec3 {
	var color core.Vec3
	var eye path.Subpath
	subpath.TraceEyeFixedRasterPos(sc, rng, v.MaxDepth, float64(x)+rng.Float64(), float64(y)+rng.Float64(),
		func(step int, rasterPos core.Vec2, prev, curr subpath.PathVertex, throughput core.Vec3) bool {
			eye = append(eye, curr)
			t := len(eye)

			// s==0 (the eye subpath hit a light directly) doesn't involve any
			// light subpath, so it's evaluated once per eye vertex rather than
			// once per light subpath.
			if p, ok := path.Connect(sc, nil, eye, 0, t); ok {
				if pdf := p.PDF(sc, 0, false, 0); pdf.Value > 0 {
					w := p.MISWeightVCM(sc, v.radius, numLightSubpaths)
					color = color.Add(p.Contribution().Divide(pdf.Value).Multiply(w))
				}
			}

			for _, lightSub := range lightSubs {
				for s := 1; s <= len(lightSub); s++ {
					p, ok := path.Connect(sc, lightSub, eye, s, t)
					if !ok {
						continue
					}
					pdf := p.PDF(sc, s, false, 0)
					if pdf.Value <= 0 {
						continue
					}
					w := p.MISWeightVCM(sc, v.radius, numLightSubpaths)
					color = color.Add(p.Contribution().Divide(pdf.Value).Multiply(w).Divide(numLightSubpaths))
				}
			}

			if isNonSpecularHit(curr) {
				color = color.Add(v.gather(sc, lightSubs, tree, eye, numLightSubpaths))
			}
			return true
		})
	return color
}

func (v *VCM) gather(sc *scene.Scene, lightSubs []path.Subpath, tree *photon.KdTree, eye path.Subpath, numLightSubpaths float64) core.Vec3 {
	t := len(eye)
	visiblePoint := eye[t-1].Geom.P

	var total core.Vec3
	tree.RangeQuery(visiblePoint, v.radius, func(pv photon.Vertex) {
		lightSub := lightSubs[pv.SubpathIndex]
		s := pv.VertexIndex + 1
		p, ok := path.Merge(lightSub, eye, s, t)
		if !ok {
			return
		}
		pdf := p.PDF(sc, s, true, v.radius)
		if pdf.Value <= 0 {
			return
		}
		w := p.MISWeightVCM(sc, v.radius, numLightSubpaths)
		total = total.Add(p.Contribution().Divide(pdf.Value).Multiply(w))
	})
	return total.Divide(numLightSubpaths)
}
