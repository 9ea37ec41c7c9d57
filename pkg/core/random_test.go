package core

import (
	"math"
	"testing"
)

func TestXorshiftDeterministic(t *testing.T) {
	a := NewXorshift128Plus(42)
	b := NewXorshift128Plus(42)
	for i := 0; i < 1000; i++ {
		if a.Float64() != b.Float64() {
			t.Fatalf("same seed produced different sequences at sample %d", i)
		}
	}
}

func TestXorshiftRange(t *testing.T) {
	rng := NewXorshift128Plus(7)
	for i := 0; i < 100000; i++ {
		v := rng.Float64()
		if v < 0 || v >= 1 {
			t.Fatalf("Float64() out of [0,1): %v", v)
		}
	}
}

func TestRandomCosineDirectionHemisphere(t *testing.T) {
	rng := NewXorshift128Plus(1)
	n := NewVec3(0, 0, 1)
	for i := 0; i < 10000; i++ {
		d := RandomCosineDirection(n, rng)
		if math.Abs(d.Length()-1) > 1e-6 {
			t.Fatalf("direction not unit length: %v", d.Length())
		}
		if d.Dot(n) < -1e-9 {
			t.Fatalf("cosine-weighted direction fell below hemisphere: cos=%v", d.Dot(n))
		}
	}
}

func TestForkIndependence(t *testing.T) {
	master := NewXorshift128Plus(5)
	c1 := master.Fork()
	c2 := master.Fork()
	same := true
	for i := 0; i < 50; i++ {
		if c1.Float64() != c2.Float64() {
			same = false
			break
		}
	}
	if same {
		t.Errorf("forked streams should diverge (distinct seeds drawn from master)")
	}
}
