package integrator

import (
	"math"

	"github.com/df07/go-progressive-raytracer/pkg/core"
	"github.com/df07/go-progressive-raytracer/pkg/film"
	"github.com/df07/go-progressive-raytracer/pkg/path"
	"github.com/df07/go-progressive-raytracer/pkg/scene"
	"github.com/df07/go-progressive-raytracer/pkg/subpath"
)

// PathTracer is unidirectional path tracing with next-event estimation and
// multi-strategy MIS at every bounce (spec.md's PT estimator), grounded on
// original_source/renderer/pt.cpp restructured around path.Connect instead
// of a hand-rolled two-term MIS weight.
type PathTracer struct {
	MaxDepth int // maximum number of vertices per eye subpath, sensor included
}

// NewPathTracer constructs a path tracer with the given maximum subpath
// length.
func NewPathTracer(maxDepth int) *PathTracer { return &PathTracer{MaxDepth: maxDepth} }

func (pt *PathTracer) RenderPass(sc *scene.Scene, rng core.Random, f *film.Film) {
	w, h := f.Width(), f.Height()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f.SetPixel(x, y, pt.samplePixel(sc, rng, x, y))
		}
	}
}

func (pt *PathTracer) samplePixel(sc *scene.Scene, rng core.Random, x, y int) core.Vec3 {
	var color core.Vec3
	var eye path.Subpath
	rrScale := 1.0
	subpath.TraceEyeFixedRasterPos(sc, rng, pt.MaxDepth, float64(x)+rng.Float64(), float64(y)+rng.Float64(),
		func(step int, rasterPos core.Vec2, prev, curr subpath.PathVertex, throughput core.Vec3) bool {
			eye = append(eye, curr)
			if step >= 2 {
				color = color.Add(directLightingContribution(sc, rng, eye).Multiply(rrScale))
				// Russian roulette past the second vertex: continue with
				// probability q and reweight later vertices by 1/q.
				q := math.Max(0.05, math.Min(0.95, throughput.Luminance()))
				if rng.Float64() >= q {
					return false
				}
				rrScale /= q
			}
			return true
		})
	return color
}
