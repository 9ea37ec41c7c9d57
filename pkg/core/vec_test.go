package core

import (
	"math"
	"testing"
)

func TestVec3Normalize(t *testing.T) {
	v := NewVec3(3, 0, 4).Normalize()
	if math.Abs(v.Length()-1) > 1e-9 {
		t.Errorf("normalized length = %v, want 1", v.Length())
	}
	zero := Vec3{}.Normalize()
	if !zero.IsBlack() {
		t.Errorf("zero vector should normalize to itself, got %v", zero)
	}
}

func TestONBOrthonormal(t *testing.T) {
	normals := []Vec3{
		NewVec3(0, 0, 1),
		NewVec3(0, 0, -1),
		NewVec3(1, 0, 0),
		NewVec3(0.5, 0.5, 0.7071).Normalize(),
	}
	for _, n := range normals {
		onb := NewONB(n)
		// to_world^T * to_world = I within 1e-6 (spec.md invariant 3)
		pairs := [][2]Vec3{{onb.U, onb.U}, {onb.V, onb.V}, {onb.W, onb.W}}
		for _, p := range pairs {
			if math.Abs(p[0].Dot(p[1])-1) > 1e-6 {
				t.Errorf("basis vector not unit length for normal %v", n)
			}
		}
		if math.Abs(onb.U.Dot(onb.V)) > 1e-6 || math.Abs(onb.U.Dot(onb.W)) > 1e-6 || math.Abs(onb.V.Dot(onb.W)) > 1e-6 {
			t.Errorf("basis not orthogonal for normal %v", n)
		}
		if onb.W.Sub(n).Length() > 1e-6 {
			t.Errorf("W should equal input normal, got %v want %v", onb.W, n)
		}
	}
}

func TestFaceForward(t *testing.T) {
	n := NewVec3(0, 0, 1)
	ref := NewVec3(0, 0, -1)
	flipped := FaceForward(n, ref)
	if flipped.Dot(ref) < 0 {
		t.Errorf("FaceForward should flip normal into ref hemisphere")
	}
}
