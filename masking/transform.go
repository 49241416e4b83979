package masking

import (
	"image"

	"github.com/disintegration/imaging"
)

// Preset expand/feather pairs used by each task.
const (
	InpaintExpand   = 5
	InpaintFeather  = 20
	OutpaintExpand  = 50
	OutpaintFeather = 50
)

// Expand dilates mask with a pixels×pixels square of ones, anchored at the
// kernel center. Pixels outside the image do not contribute.
// pixels <= 1 returns an unchanged copy.
func Expand(mask *image.Gray, pixels int) *image.Gray {
	if pixels <= 1 {
		return Clone(mask)
	}
	before := pixels / 2
	after := pixels - 1 - before

	// A square element separates into a horizontal then a vertical max filter.
	w, h := mask.Rect.Dx(), mask.Rect.Dy()
	src := Clone(mask)
	tmp := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w]
		out := tmp.Pix[y*tmp.Stride : y*tmp.Stride+w]
		maxFilter(row, out, 1, w, before, after)
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		maxFilter(tmp.Pix[x:], dst.Pix[x:], tmp.Stride, h, before, after)
	}
	return dst
}

// maxFilter writes out[i] = max(in[i-before .. i+after]) over n samples spaced
// by stride, ignoring indices outside [0, n).
func maxFilter(in, out []uint8, stride, n, before, after int) {
	for i := 0; i < n; i++ {
		lo, hi := i-before, i+after
		if lo < 0 {
			lo = 0
		}
		if hi > n-1 {
			hi = n - 1
		}
		var m uint8
		for j := lo; j <= hi; j++ {
			if v := in[j*stride]; v > m {
				m = v
				if m == 0xff {
					break
				}
			}
		}
		out[i*stride] = m
	}
}

// Feather blurs mask with a Gaussian of standard deviation radius.
// radius <= 0 returns an unchanged copy.
func Feather(mask *image.Gray, radius float64) *image.Gray {
	if radius <= 0 {
		return Clone(mask)
	}
	blurred := imaging.Blur(mask, radius)

	b := blurred.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			// Gray input, so R == G == B.
			dst.Pix[y*dst.Stride+x] = blurred.Pix[y*blurred.Stride+x*4]
		}
	}
	return dst
}

// Prepare applies Expand then Feather. The order is fixed.
func Prepare(mask *image.Gray, expand int, feather float64) *image.Gray {
	return Feather(Expand(mask, expand), feather)
}

// Threshold maps every value above level to 255 and everything else to 0.
func Threshold(mask *image.Gray, level uint8) *image.Gray {
	dst := Clone(mask)
	for i, v := range dst.Pix {
		if v > level {
			dst.Pix[i] = 0xff
		} else {
			dst.Pix[i] = 0
		}
	}
	return dst
}

// Clone returns an origin-anchored copy of mask.
func Clone(mask *image.Gray) *image.Gray {
	w, h := mask.Rect.Dx(), mask.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		start := mask.PixOffset(mask.Rect.Min.X, mask.Rect.Min.Y+y)
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+w], mask.Pix[start:start+w])
	}
	return dst
}

// Coverage returns the number of pixels strictly above level.
func Coverage(mask *image.Gray, level uint8) int {
	n := 0
	for y := 0; y < mask.Rect.Dy(); y++ {
		for x := 0; x < mask.Rect.Dx(); x++ {
			if mask.GrayAt(mask.Rect.Min.X+x, mask.Rect.Min.Y+y).Y > level {
				n++
			}
		}
	}
	return n
}
