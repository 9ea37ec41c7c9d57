package film

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/go-progressive-raytracer/pkg/core"
)

func TestSetPixelAveragesAcrossCalls(t *testing.T) {
	f := New(4, 4)
	f.SetPixel(1, 1, core.NewVec3(1, 0, 0))
	f.SetPixel(1, 1, core.NewVec3(0, 1, 0))
	got := f.Pixel(1, 1, 1)
	want := core.NewVec3(0.5, 0.5, 0)
	if got != want {
		t.Errorf("Pixel = %v, want %v", got, want)
	}
}

func TestSplatDoesNotAffectWeight(t *testing.T) {
	f := New(4, 4)
	f.Splat(2.2, 2.9, core.NewVec3(1, 1, 1))
	got := f.Pixel(2, 2, 0.5)
	want := core.NewVec3(0.5, 0.5, 0.5)
	if got != want {
		t.Errorf("Pixel after splat = %v, want %v", got, want)
	}
}

func TestAccumulateSumsBothSumAndWeight(t *testing.T) {
	a := New(2, 2)
	b := New(2, 2)
	a.SetPixel(0, 0, core.NewVec3(1, 1, 1))
	b.SetPixel(0, 0, core.NewVec3(3, 3, 3))
	a.Accumulate(b)
	got := a.Pixel(0, 0, 1)
	want := core.NewVec3(2, 2, 2)
	if got != want {
		t.Errorf("Pixel after Accumulate = %v, want %v", got, want)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	a := New(2, 2)
	a.SetPixel(0, 0, core.NewVec3(1, 1, 1))
	b := a.Clone()
	b.SetPixel(0, 0, core.NewVec3(9, 9, 9))
	if a.Pixel(0, 0, 1) == b.Pixel(0, 0, 1) {
		t.Error("Clone shares state with original")
	}
}

func TestClearZeroesBuffer(t *testing.T) {
	f := New(2, 2)
	f.SetPixel(0, 0, core.NewVec3(1, 1, 1))
	f.Clear()
	if got := f.Pixel(0, 0, 1); got != (core.Vec3{}) {
		t.Errorf("Pixel after Clear = %v, want zero", got)
	}
}

func TestSaveRoundTripsExtensions(t *testing.T) {
	f := New(3, 3)
	f.SetPixel(1, 1, core.NewVec3(0.5, 0.25, 0.75))

	dir := t.TempDir()
	for _, name := range []string{"out.pfm", "out.png"} {
		p := filepath.Join(dir, name)
		if err := f.Save(p, 1); err != nil {
			t.Fatalf("Save(%s): %v", name, err)
		}
		info, err := os.Stat(p)
		if err != nil || info.Size() == 0 {
			t.Errorf("Save(%s) produced no file", name)
		}
	}
}

func TestSaveRejectsUnknownExtension(t *testing.T) {
	f := New(1, 1)
	if err := f.Save(filepath.Join(t.TempDir(), "out.tga"), 1); err == nil {
		t.Error("expected an error for an unsupported extension")
	}
}
