package material

import (
	"math"
	"testing"

	"github.com/df07/go-progressive-raytracer/pkg/core"
)

// TestDiffuseSamplingConsistency checks invariant 5: repeatedly sampling a
// direction and evaluating its PDF matches EvaluateDirectionPDF, and the
// Monte-Carlo estimate of the reflectance integral is finite and positive.
func TestDiffuseSamplingConsistency(t *testing.T) {
	d := NewDiffuse(core.NewVec3(0.8, 0.8, 0.8))
	sn := core.NewVec3(0, 0, 1)
	wi := core.NewVec3(0, 0, 1)
	rng := core.NewXorshift128Plus(3)

	sum := core.Vec3{}
	const n = 20000
	for i := 0; i < n; i++ {
		sample, ok := d.SampleDirection(wi, sn, rng.Float64(), rng.Vec2(), TransportRadiance)
		if !ok {
			continue
		}
		pdf := d.EvaluateDirectionPDF(wi, sample.Wo, sn)
		if math.Abs(pdf-sample.PDF.Value) > 1e-9 {
			t.Fatalf("pdf mismatch: sampled %v, evaluated %v", sample.PDF.Value, pdf)
		}
		cos := sample.Wo.Dot(sn)
		contribution := sample.F.Multiply(cos / sample.PDF.Value)
		sum = sum.Add(contribution)
	}
	mean := sum.Multiply(1.0 / n)
	// integral of albedo/pi * cos over hemisphere = albedo (energy conservation)
	if math.Abs(mean.X-0.8) > 0.05 {
		t.Errorf("MC estimate of diffuse reflectance = %v, want ~0.8", mean.X)
	}
}

func TestRoughConductorSamplingConsistency(t *testing.T) {
	r := NewRoughConductor(core.NewVec3(1, 1, 1), 0.3)
	sn := core.NewVec3(0, 0, 1)
	wi := core.NewVec3(0.3, 0, 0.95).Normalize()
	rng := core.NewXorshift128Plus(11)

	for i := 0; i < 1000; i++ {
		sample, ok := r.SampleDirection(wi, sn, rng.Float64(), rng.Vec2(), TransportRadiance)
		if !ok {
			continue
		}
		pdf := r.EvaluateDirectionPDF(wi, sample.Wo, sn)
		if math.Abs(pdf-sample.PDF.Value) > 1e-6 {
			t.Fatalf("pdf mismatch: sampled %v, evaluated %v", sample.PDF.Value, pdf)
		}
	}
}

func TestDielectricIsDelta(t *testing.T) {
	d := NewDielectric(1.5)
	if !d.IsDeltaDirection() {
		t.Errorf("dielectric BSDF should be a delta distribution")
	}
	sn := core.NewVec3(0, 0, 1)
	wi := core.NewVec3(0, 0, 1)
	sample, ok := d.SampleDirection(wi, sn, 0.9, core.NewVec2(0, 0), TransportRadiance)
	if !ok {
		t.Fatal("expected a sample")
	}
	if !sample.Delta {
		t.Errorf("dielectric sample should be flagged delta")
	}
	if d.EvaluateDirectionPDF(wi, sample.Wo, sn) != 0 {
		t.Errorf("delta BSDF pdf should evaluate to 0 off the sampled path")
	}
}

func TestReflectanceAtNormalIncidence(t *testing.T) {
	r := Reflectance(1.0, 1.0/1.5)
	r0 := (1 - 1.0/1.5) / (1 + 1.0/1.5)
	want := r0 * r0
	if math.Abs(r-want) > 1e-9 {
		t.Errorf("Reflectance(1,...) = %v, want %v (Schlick r0)", r, want)
	}
}
