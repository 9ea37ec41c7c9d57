package integrator

import (
	"github.com/df07/go-progressive-raytracer/pkg/core"
	"github.com/df07/go-progressive-raytracer/pkg/film"
	"github.com/df07/go-progressive-raytracer/pkg/path"
	"github.com/df07/go-progressive-raytracer/pkg/scene"
	"github.com/df07/go-progressive-raytracer/pkg/subpath"
)

// DirectLighting is PathTracer restricted to direct illumination: it
// follows specular (delta-BSDF) bounces through mirrors/glass, as those
// carry no independent NEE opportunity, but stops accumulating indirect
// (multi-bounce diffuse) light the moment it reaches the first non-specular
// surface — spec.md's PTDirect estimator. It shares directLightingContribution
// with PathTracer and SPPM, which calls that helper at its visible point.
type DirectLighting struct {
	MaxSpecularDepth int // bound on delta-BSDF bounces before giving up
}

func NewDirectLighting(maxSpecularDepth int) *DirectLighting {
	return &DirectLighting{MaxSpecularDepth: maxSpecularDepth}
}

func (d *DirectLighting) RenderPass(sc *scene.Scene, rng core.Random, f *film.Film) {
	w, h := f.Width(), f.Height()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f.SetPixel(x, y, d.samplePixel(sc, rng, x, y))
		}
	}
}

func (d *DirectLighting) samplePixel(sc *scene.Scene, rng core.Random, x, y int) core.Vec3 {
	var color core.Vec3
	var eye path.Subpath
	subpath.TraceEyeFixedRasterPos(sc, rng, d.MaxSpecularDepth+1, float64(x)+rng.Float64(), float64(y)+rng.Float64(),
		func(step int, rasterPos core.Vec2, prev, curr subpath.PathVertex, throughput core.Vec3) bool {
			eye = append(eye, curr)
			if step < 2 {
				return true
			}
			color = color.Add(directLightingContribution(sc, rng, eye))
			stop := isNonSpecularHit(curr) || curr.Primitive.Emitter != nil
			return !stop
		})
	return color
}
