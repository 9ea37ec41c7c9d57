package loaders

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/df07/go-progressive-raytracer/pkg/core"
)

func TestLoadImage(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.png")

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	img.Set(1, 0, color.RGBA{R: 255, G: 0, B: 0, A: 255})
	img.Set(0, 1, color.RGBA{R: 0, G: 255, B: 0, A: 255})
	img.Set(1, 1, color.RGBA{R: 0, G: 0, B: 255, A: 255})

	f, err := os.Create(testFile)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	imageData, err := LoadImage(testFile)
	require.NoError(t, err)
	require.Equal(t, 2, imageData.Width)
	require.Equal(t, 2, imageData.Height)
	require.Len(t, imageData.Pixels, 4)

	checkColor(t, "top-left", imageData.Pixels[0], core.NewVec3(1, 1, 1))
	checkColor(t, "top-right", imageData.Pixels[1], core.NewVec3(1, 0, 0))
	checkColor(t, "bottom-left", imageData.Pixels[2], core.NewVec3(0, 1, 0))
	checkColor(t, "bottom-right", imageData.Pixels[3], core.NewVec3(0, 0, 1))
}

func TestLoadImageNotFound(t *testing.T) {
	_, err := LoadImage("nonexistent.png")
	require.Error(t, err)
}

func checkColor(t *testing.T, name string, got, want core.Vec3) {
	t.Helper()
	const tolerance = 0.01
	if abs(got.X-want.X) > tolerance || abs(got.Y-want.Y) > tolerance || abs(got.Z-want.Z) > tolerance {
		t.Errorf("%s: want %v, got %v", name, want, got)
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func TestLatLongEnvironmentEvalReturnsUniformColor(t *testing.T) {
	want := core.NewVec3(0.2, 0.4, 0.6)
	img := &ImageData{Width: 4, Height: 2, Pixels: make([]core.Vec3, 8)}
	for i := range img.Pixels {
		img.Pixels[i] = want
	}
	env := NewLatLongEnvironment(img)

	for _, dir := range []core.Vec3{
		core.NewVec3(1, 0, 0),
		core.NewVec3(0, 1, 0),
		core.NewVec3(0, -1, 0),
		core.NewVec3(-1, 0, 1).Normalize(),
	} {
		c := env.Eval(dir)
		checkColor(t, "uniform env", c, want)
	}
}

func TestLatLongEnvironmentEmptyImage(t *testing.T) {
	env := NewLatLongEnvironment(&ImageData{})
	c := env.Eval(core.NewVec3(1, 0, 0))
	require.Equal(t, core.Vec3{}, c)
}
