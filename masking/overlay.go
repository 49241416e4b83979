package masking

import (
	"image"
	"image/color"
)

// Red is the tint used for mask visualizations.
var Red = color.RGBA{R: 255, A: 255}

// Overlay blends tint into img with the given alpha wherever mask > level.
// img and mask must share dimensions; the result is a new image.
func Overlay(img *image.RGBA, mask *image.Gray, level uint8, tint color.RGBA, alpha float64) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := img.RGBAAt(b.Min.X+x, b.Min.Y+y)
			if mask.GrayAt(mask.Rect.Min.X+x, mask.Rect.Min.Y+y).Y > level {
				c.R = blend(tint.R, c.R, alpha)
				c.G = blend(tint.G, c.G, alpha)
				c.B = blend(tint.B, c.B, alpha)
			}
			c.A = 0xff
			dst.SetRGBA(x, y, c)
		}
	}
	return dst
}

// blend truncates like a uint8 cast of alpha*top + (1-alpha)*bottom.
func blend(top, bottom uint8, alpha float64) uint8 {
	return uint8(alpha*float64(top) + (1-alpha)*float64(bottom))
}
