package canvas

import (
	"image"
	"image/color"
	"image/draw"
)

// Background fills the padded area of the canvas.
var Background = color.RGBA{255, 255, 255, 255}

// Compose places img at (pad.Left, pad.Top) on a white canvas of size
// (W+Left+Right, H+Top+Bottom) and returns the canvas with its fill mask.
// The mask is 255 over the padding and 0 over the original image.
//
// Zero padding returns a copy of img and an all-zero mask.
func Compose(img image.Image, pad Padding) (*image.RGBA, *image.Gray) {
	b := img.Bounds()
	w := b.Dx() + pad.Left + pad.Right
	h := b.Dy() + pad.Top + pad.Bottom

	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: Background}, image.Point{}, draw.Src)

	dst := OriginalRect(b.Dx(), b.Dy(), pad)
	draw.Draw(canvas, dst, img, b.Min, draw.Src)

	mask := image.NewGray(canvas.Bounds())
	for i := range mask.Pix {
		mask.Pix[i] = 0xff
	}
	draw.Draw(mask, dst, &image.Uniform{C: color.Gray{Y: 0}}, image.Point{}, draw.Src)

	return canvas, mask
}

// OriginalRect is where an image of w×h lands on the padded canvas.
func OriginalRect(w, h int, pad Padding) image.Rectangle {
	return image.Rect(pad.Left, pad.Top, pad.Left+w, pad.Top+h)
}
