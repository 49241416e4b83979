package sdruntime

import (
	"fmt"
	"image"
	"image/color"
)

// maskCutoff is the mask value (out of 255) above which a pixel counts as masked.
const maskCutoff = 0.5

// BuildControlImage builds the inpaint condition from an image and mask of the
// same size. A pixel is masked when mask/255 > 0.5.
func BuildControlImage(img *image.RGBA, mask *image.Gray) (*ControlImage, error) {
	ib, mb := img.Bounds(), mask.Bounds()
	if ib.Dx() != mb.Dx() || ib.Dy() != mb.Dy() {
		return nil, fmt.Errorf("%w: image %dx%d and mask %dx%d differ", ErrInvalidInput, ib.Dx(), ib.Dy(), mb.Dx(), mb.Dy())
	}
	w, h := ib.Dx(), ib.Dy()
	plane := w * h
	data := make([]float32, 3*plane)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if float64(mask.GrayAt(mb.Min.X+x, mb.Min.Y+y).Y)/255 > maskCutoff {
				data[i], data[plane+i], data[2*plane+i] = -1, -1, -1
				continue
			}
			p := img.RGBAAt(ib.Min.X+x, ib.Min.Y+y)
			data[i] = float32(p.R) / 255
			data[plane+i] = float32(p.G) / 255
			data[2*plane+i] = float32(p.B) / 255
		}
	}
	return &ControlImage{Width: w, Height: h, Data: data}, nil
}

// Preview renders the condition as an RGB image via (x+1)*127.5, so masked
// pixels come out black and kept pixels at roughly half brightness and above.
func (c *ControlImage) Preview() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			out.SetRGBA(x, y, color.RGBA{
				R: toByte(c.At(0, x, y)),
				G: toByte(c.At(1, x, y)),
				B: toByte(c.At(2, x, y)),
				A: 255,
			})
		}
	}
	return out
}

func toByte(v float32) uint8 {
	s := (float64(v) + 1) * 127.5
	switch {
	case s <= 0:
		return 0
	case s >= 255:
		return 255
	default:
		return uint8(s)
	}
}
