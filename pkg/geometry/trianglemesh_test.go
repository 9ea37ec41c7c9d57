package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-progressive-raytracer/pkg/core"
)

func quadMesh() *TriangleMesh {
	positions := []core.Vec3{
		core.NewVec3(0, 0, 0),
		core.NewVec3(1, 0, 0),
		core.NewVec3(1, 1, 0),
		core.NewVec3(0, 1, 0),
	}
	uvs := []core.Vec2{
		core.NewVec2(0, 0),
		core.NewVec2(1, 0),
		core.NewVec2(1, 1),
		core.NewVec2(0, 1),
	}
	indices := []int32{0, 1, 2, 0, 2, 3}
	return NewTriangleMesh(positions, nil, uvs, indices)
}

func TestFaceAreaAndCount(t *testing.T) {
	m := quadMesh()
	if m.TriangleCount() != 2 {
		t.Fatalf("expected 2 triangles, got %d", m.TriangleCount())
	}
	total := m.FaceArea(0) + m.FaceArea(1)
	if math.Abs(total-1.0) > 1e-9 {
		t.Errorf("total area = %v, want 1", total)
	}
}

func TestSampleFaceStaysOnSurface(t *testing.T) {
	m := quadMesh()
	for i := 0; i < 200; i++ {
		u := core.NewVec2(float64(i%13)/13, float64(i%7)/7)
		p, n, _, pdf, face := m.SampleFace(u, float64(i%10)/10)
		if face < 0 {
			t.Fatal("sample returned no face")
		}
		if p.Z != 0 {
			t.Errorf("sampled point left the quad plane: %v", p)
		}
		if n.Sub(core.NewVec3(0, 0, 1)).Length() > 1e-6 {
			t.Errorf("unexpected normal %v", n)
		}
		if pdf <= 0 {
			t.Errorf("pdf should be positive, got %v", pdf)
		}
	}
}
