package integrator

import (
	"github.com/df07/go-progressive-raytracer/pkg/core"
	"github.com/df07/go-progressive-raytracer/pkg/film"
	"github.com/df07/go-progressive-raytracer/pkg/path"
	"github.com/df07/go-progressive-raytracer/pkg/scene"
	"github.com/df07/go-progressive-raytracer/pkg/subpath"
)

// BDPT is bidirectional path tracing: every pixel traces one light subpath
// and one eye subpath, then tries every (s,t) connection strategy between
// their prefixes, weighting each by the power heuristic over all competing
// strategies for that same vertex sequence (path.MISWeightBDPT). Grounded on
// original_source/renderer/bdpt.cpp, restructured around path.Connect so the
// per-strategy PDF/MIS bookkeeping lives in pkg/path rather than here.
type BDPT struct {
	MaxDepth int // maximum vertices per subpath, endpoint included
}

func NewBDPT(maxDepth int) *BDPT { return &BDPT{MaxDepth: maxDepth} }

func (b *BDPT) RenderPass(sc *scene.Scene, rng core.Random, f *film.Film) {
	w, h := f.Width(), f.Height()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			lightSub := path.Sample(sc, rng, b.MaxDepth, subpath.DirectionLE)
			b.splatLightHitsSensor(sc, lightSub, f)
			f.SetPixel(x, y, b.samplePixel(sc, rng, x, y, lightSub))
		}
	}
}

// splatLightHitsSensor tries the s>0,t==0 BDPT strategy: the light subpath's
// own prefixes ending directly at the sensor (pinhole/thin-lens Sensor
// primitives, not a ray-intersectable surface — see path.Connect's t==0
// case). Unlike every other strategy this one lands on whatever pixel the
// connection's raster position works out to, not the pixel RenderPass is
// currently iterating, so it splats rather than returning a color.
func (b *BDPT) splatLightHitsSensor(sc *scene.Scene, lightSub path.Subpath, f *film.Film) {
	for s := 1; s <= len(lightSub); s++ {
		p, ok := path.Connect(sc, lightSub, nil, s, 0)
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

func (b *BDPT) samplePixel(sc *scene.Scene, rng core.Random, x, y int, lightSub path.Subpath) core.Vec3 {
	var color core.Vec3
	var eye path.Subpath
	subpath.TraceEyeFixedRasterPos(sc, rng, b.MaxDepth, float64(x)+rng.Float64(), float64(y)+rng.Float64(),
		func(step int, rasterPos core.Vec2, prev, curr subpath.PathVertex, throughput core.Vec3) bool {
			eye = append(eye, curr)
			t := len(eye)

			for s := 0; s <= len(lightSub); s++ {
				p, ok := path.Connect(sc, lightSub, eye, s, t)
				if !ok {
					continue
				}
				pdf := p.PDF(sc, s, false, 0)
				if pdf.Value <= 0 {
					continue
				}
				w := p.MISWeightBDPT(sc)
				color = color.Add(p.Contribution().Divide(pdf.Value).Multiply(w))
			}
			return true
		})
	return color
}
