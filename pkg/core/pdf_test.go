package core

import (
	"math"
	"testing"
)

// TestPDFMeasureLaw checks invariant 4: converting area -> projected
// solid-angle -> area should round-trip (spec.md section 8).
func TestPDFMeasureLaw(t *testing.T) {
	g1 := GeometryEndpoint{P: NewVec3(0, 0, 0), N: NewVec3(0, 0, 1)}
	g2 := GeometryEndpoint{P: NewVec3(0.3, 0.2, 2), N: NewVec3(0, 0, -1)}

	areaPDF := NewPDFValue(MeasureArea, 0.75)
	projSA := areaPDF.ConvertToProjSA(g1, g2)
	back := projSA.ConvertToArea(g1, g2)

	if math.Abs(back.Value-areaPDF.Value) > 1e-9 {
		t.Errorf("round trip area->projSA->area = %v, want %v", back.Value, areaPDF.Value)
	}
}

func TestGeometryTermInfiniteEndpoint(t *testing.T) {
	g1 := GeometryEndpoint{P: NewVec3(0, 0, 0), N: NewVec3(0, 0, 1)}
	g2 := GeometryEndpoint{P: NewVec3(0, 0, 1), N: NewVec3(0, 0, -1), Infinite: true}
	g := GeometryTerm(g1, g2)
	// cosine at g2 suppressed (infinite), cosine at g1 is 1 (facing g2), distance 1.
	if math.Abs(g-1.0) > 1e-9 {
		t.Errorf("GeometryTerm with infinite endpoint = %v, want 1", g)
	}
}

func TestConvertToAreaPanicsOnDiscrete(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic converting a discrete-measure PDF to area")
		}
	}()
	p := NewPDFValue(MeasureDiscrete, 0.5)
	p.ConvertToArea(GeometryEndpoint{}, GeometryEndpoint{})
}

func TestDiscreteDistribution1D(t *testing.T) {
	d := NewDiscreteDistribution1D([]float64{1, 2, 3, 4})
	counts := make([]int, 4)
	const n = 20000
	for i := 0; i < n; i++ {
		u := (float64(i) + 0.5) / n
		idx, pdf := d.Sample(u)
		if pdf != d.PDF(idx) {
			t.Fatalf("Sample pdf mismatch with PDF(idx)")
		}
		counts[idx]++
	}
	// weight 4 should be sampled roughly 4x as often as weight 1.
	ratio := float64(counts[3]) / float64(counts[0])
	if ratio < 3.0 || ratio > 5.0 {
		t.Errorf("sampling ratio = %v, want close to 4", ratio)
	}
}
