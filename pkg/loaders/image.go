// Package loaders implements the asset-loading side of spec.md's "asset
// I/O" collaborator interface: decoding an image file into an
// lights.EnvironmentTexture for environment lights, and parsing a mesh file into a geometry.TriangleMesh.
// Grounded on the teacher's pkg/loaders/image.go (stdlib image.Decode
// dispatch table), extended with golang.org/x/image's additional format
// decoders (bmp, tiff) per SPEC_FULL.md's DOMAIN STACK — the teacher's own
// asset set never needed more than PNG/JPEG, but an environment map is
// commonly shipped as a lossless format those two don't cover.
package loaders

import (
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"math"
	"os"

	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/tiff" // TIFF decoder

	"github.com/df07/go-progressive-raytracer/pkg/core"
)

// ImageData is a decoded image as a flat Vec3 color array, linear [0,1]
// per channel (no gamma applied — callers treat environment maps as
// already-linear radiance, matching original_source's light_env.cpp).
type ImageData struct {
	Width  int
	Height int
	Pixels []core.Vec3
}

// LoadImage decodes filename (PNG, JPEG, BMP or TIFF, auto-detected from
// the file header) into an ImageData.
func LoadImage(filename string) (*ImageData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("loaders: open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("loaders: decode image %q: %w", filename, err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	pixels := make([]core.Vec3, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			pixels[y*width+x] = core.NewVec3(float64(r)/65535.0, float64(g)/65535.0, float64(b)/65535.0)
		}
	}
	return &ImageData{Width: width, Height: height, Pixels: pixels}, nil
}

// LatLongEnvironment implements lights.EnvironmentTexture over an
// equirectangular (latitude-longitude) image: direction's spherical angles
// index the image bilinearly. Grounded on original_source's light_env.cpp
// texture-lookup convention (phi maps to U over the full turn, theta maps
// to V over the polar range).
type LatLongEnvironment struct {
	img *ImageData
}

// NewLatLongEnvironment wraps a decoded equirectangular image.
func NewLatLongEnvironment(img *ImageData) *LatLongEnvironment {
	return &LatLongEnvironment{img: img}
}

// Eval looks up the radiance for dir (a unit vector) via bilinear
// interpolation over the lat-long image.
func (e *LatLongEnvironment) Eval(dir core.Vec3) core.Vec3 {
	u, v := dirToLatLong(dir)
	return e.bilinear(u, v)
}

func dirToLatLong(dir core.Vec3) (u, v float64) {
	phi := math.Atan2(dir.Z, dir.X)
	theta := math.Acos(clamp(dir.Y, -1, 1))
	u = (phi + math.Pi) / (2 * math.Pi)
	v = theta / math.Pi
	return u, v
}

func (e *LatLongEnvironment) bilinear(u, v float64) core.Vec3 {
	w, h := e.img.Width, e.img.Height
	if w == 0 || h == 0 {
		return core.Vec3{}
	}
	fx := u*float64(w) - 0.5
	fy := v*float64(h) - 0.5
	x0 := wrapInt(int(math.Floor(fx)), w)
	y0 := clampInt(int(math.Floor(fy)), 0, h-1)
	x1 := wrapInt(x0+1, w)
	y1 := clampInt(y0+1, 0, h-1)
	tx := fx - math.Floor(fx)
	ty := fy - math.Floor(fy)

	c00 := e.img.Pixels[y0*w+x0]
	c10 := e.img.Pixels[y0*w+x1]
	c01 := e.img.Pixels[y1*w+x0]
	c11 := e.img.Pixels[y1*w+x1]

	top := c00.Multiply(1 - tx).Add(c10.Multiply(tx))
	bottom := c01.Multiply(1 - tx).Add(c11.Multiply(tx))
	return top.Multiply(1 - ty).Add(bottom.Multiply(ty))
}

func wrapInt(x, n int) int {
	x %= n
	if x < 0 {
		x += n
	}
	return x
}

func clampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
