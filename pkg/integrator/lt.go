package integrator

import (
	"github.com/df07/go-progressive-raytracer/pkg/core"
	"github.com/df07/go-progressive-raytracer/pkg/film"
	"github.com/df07/go-progressive-raytracer/pkg/geometry"
	"github.com/df07/go-progressive-raytracer/pkg/path"
	"github.com/df07/go-progressive-raytracer/pkg/scene"
	"github.com/df07/go-progressive-raytracer/pkg/subpath"
)

// LightTracer traces subpaths from the lights and connects every vertex
// directly to the sensor, splatting each contribution to whichever pixel it
// lands on (spec.md's LT estimator). It never touches the pixel the
// scheduler "assigned" it: one call to RenderPass traces NumPaths light
// subpaths and may write anywhere in the image, which is why the teacher's
// per-tile scheduling model doesn't apply to it (see pkg/renderer). Grounded
// on original_source/renderer/lighttracer.cpp, restructured around
// path.Connect's existing shadow-ray visibility test instead of a bespoke
// camera-connection routine.
type LightTracer struct {
	MaxDepth int
	NumPaths int // light subpaths traced per RenderPass call
}

func NewLightTracer(maxDepth, numPaths int) *LightTracer {
	return &LightTracer{MaxDepth: maxDepth, NumPaths: numPaths}
}

func (lt *LightTracer) RenderPass(sc *scene.Scene, rng core.Random, f *film.Film) {
	sensorPrim := &sc.Primitives[sc.SensorPrimitiveIndex]
	for i := 0; i < lt.NumPaths; i++ {
		lightSub := path.Sample(sc, rng, lt.MaxDepth, subpath.DirectionLE)
		for s := 1; s <= len(lightSub); s++ {
			v := lightSub[s-1]
			if v.Geom.Infinite {
				continue
			}
			ds, ok := sensorPrim.Sensor.SampleDirect(v.Geom.P, rng.Vec2())
			if !ok || !ds.OnScreen {
				continue
			}
			geom := geometry.BuildShadingFrame(ds.P, ds.N, ds.N, core.Vec2{})
			eyeSynthetic := path.Subpath{subpath.PathVertex{Type: subpath.VertexE, Geom: geom, Primitive: sensorPrim}}

			p, ok := path.Connect(sc, lightSub, eyeSynthetic, s, 1)
			if !ok {
				continue
			}
			pdf := p.PDF(sc, s, false, 0)
			if pdf.Value <= 0 {
				continue
			}
			w := p.MISWeightBDPT(sc)
			contrib := p.Contribution().Divide(pdf.Value).Multiply(w)

			x, y, onScreen := p.RasterPosition()
			if onScreen {
				f.Splat(x, y, contrib)
			}
		}
	}
}
