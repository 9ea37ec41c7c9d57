package film

import (
	"image"
	"image/color"
	"image/png"
	"os"
)

// rgbImage wraps the standard library's image.RGBA so Film.savePNG stays a
// thin loop over tonemap; encoding itself is plain image/png, the same
// package the teacher's own loaders use for texture round-tripping.
type rgbImage struct {
	img *image.RGBA
}

func newRGBImage(w, h int) *rgbImage {
	return &rgbImage{img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

func (r *rgbImage) set(x, y int, red, green, blue uint8) {
	r.img.SetRGBA(x, y, color.RGBA{R: red, G: green, B: blue, A: 255})
}

func (r *rgbImage) encodePNG(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return png.Encode(file, r.img)
}
