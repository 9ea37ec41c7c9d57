package lights

import (
	"math"
	"testing"

	"github.com/df07/go-progressive-raytracer/pkg/core"
)

func TestPointLightInverseSquareFalloff(t *testing.T) {
	pl := NewPointLight(core.NewVec3(0, 5, 0), core.NewVec3(10, 10, 10))
	sample, ok := pl.SampleDirect(core.NewVec3(0, 0, 0), core.NewVec2(0, 0))
	if !ok {
		t.Fatal("expected a sample")
	}
	want := 10.0 / 25.0 // intensity / dist^2, dist = 5
	if math.Abs(sample.Value.X-want) > 1e-9 {
		t.Errorf("point light falloff = %v, want %v", sample.Value.X, want)
	}
	if !pl.IsDeltaPosition() {
		t.Errorf("point light should be delta-position")
	}
}

func TestDirectionalLightParallelRays(t *testing.T) {
	bound := core.SphereBound{Center: core.NewVec3(0, 0, 0), Radius: 10}
	dl := NewDirectionalLight(core.NewVec3(0, -1, 0), core.NewVec3(1, 1, 1), bound)
	s1, _ := dl.SamplePositionAndDirection(core.NewVec2(0.2, 0.3), core.NewVec2(0, 0))
	s2, _ := dl.SamplePositionAndDirection(core.NewVec2(0.7, 0.1), core.NewVec2(0, 0))
	if s1.Dir.Sub(s2.Dir).Length() > 1e-9 {
		t.Errorf("directional light emission direction should not vary with position sample")
	}
	if !dl.IsDeltaDirection() {
		t.Errorf("directional light should be delta-direction")
	}
}

func TestEmitterSamplerSelectionProbability(t *testing.T) {
	bound := core.SphereBound{Center: core.Vec3{}, Radius: 1}
	a := NewDirectionalLight(core.NewVec3(0, -1, 0), core.NewVec3(1, 1, 1), bound)
	b := NewPointLight(core.NewVec3(0, 1, 0), core.NewVec3(1, 1, 1))
	sampler := NewEmitterSampler([]Emitter{a, b}, []float64{3, 1})

	counts := [2]int{}
	rng := core.NewXorshift128Plus(42)
	const n = 20000
	for i := 0; i < n; i++ {
		_, pdf, idx := sampler.Sample(rng.Float64())
		if pdf <= 0 {
			t.Fatalf("selection pdf should be positive, got %v", pdf)
		}
		counts[idx]++
	}
	ratio := float64(counts[0]) / float64(n)
	if math.Abs(ratio-0.75) > 0.02 {
		t.Errorf("emitter 0 selected %v of the time, want ~0.75 (weight 3 of 4)", ratio)
	}
}

func TestPinholeSensorRasterRoundTrip(t *testing.T) {
	sensor := NewPinholeSensor(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1), core.NewVec3(0, 1, 0), math.Pi/3, 400, 300)
	dir := sensor.dirFromRaster(123.4, 210.7)
	rx, ry, onScreen := sensor.rasterFromDir(dir)
	if !onScreen {
		t.Fatal("direction derived from an in-bounds raster position should project back on screen")
	}
	if math.Abs(rx-123.4) > 1e-6 || math.Abs(ry-210.7) > 1e-6 {
		t.Errorf("raster round trip = (%v,%v), want (123.4,210.7)", rx, ry)
	}
}

func TestThinLensDelegatesResolution(t *testing.T) {
	sensor := NewPinholeSensor(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1), core.NewVec3(0, 1, 0), math.Pi/3, 200, 100)
	lens := NewThinLensSensor(sensor, 0.05, 5.0)
	w, h := lens.Resolution()
	if w != 200 || h != 100 {
		t.Errorf("thin lens resolution = (%d,%d), want (200,100)", w, h)
	}
	if lens.IsDeltaPosition() {
		t.Errorf("a thin lens with nonzero radius should not be delta-position")
	}
}
