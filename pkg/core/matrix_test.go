package core

import "testing"

func TestTransformComposition(t *testing.T) {
	tr := Translate(NewVec3(1, 2, 3)).Mul(Scale(NewVec3(2, 2, 2)))
	p := tr.MulPoint(NewVec3(1, 0, 0))
	want := NewVec3(3, 2, 3) // scale then translate: (2,0,0) + (1,2,3)
	if p.Sub(want).Length() > 1e-9 {
		t.Errorf("composed transform = %v, want %v", p, want)
	}
}

func TestInvertRoundTrip(t *testing.T) {
	m := Rotate(NewVec3(0, 1, 0), 37).Mul(Translate(NewVec3(1, -2, 5)))
	tr := NewTransform(m)
	p := NewVec3(3, 4, 5)
	world := tr.ToWorld.MulPoint(p)
	back := tr.ToLocal.MulPoint(world)
	if back.Sub(p).Length() > 1e-6 {
		t.Errorf("round trip through ToLocal = %v, want %v", back, p)
	}
}
