package canvas

import (
	"image"
	"image/color"
	"testing"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestCompose_AllSides256(t *testing.T) {
	blue := color.RGBA{0, 0, 255, 255}
	img := solid(500, 500, blue)

	canvas, mask := Compose(img, Uniform(DirectionAll, 256))

	if canvas.Bounds() != image.Rect(0, 0, 1012, 1012) {
		t.Fatalf("canvas bounds = %v, want 1012x1012", canvas.Bounds())
	}
	if mask.Bounds() != canvas.Bounds() {
		t.Fatalf("mask bounds = %v, want %v", mask.Bounds(), canvas.Bounds())
	}

	orig := image.Rect(256, 256, 756, 756)
	for y := 0; y < 1012; y += 7 {
		for x := 0; x < 1012; x += 7 {
			inside := image.Pt(x, y).In(orig)
			m := mask.GrayAt(x, y).Y
			c := canvas.RGBAAt(x, y)
			if inside {
				if m != 0 || c != blue {
					t.Fatalf("(%d,%d) inside original: mask=%d color=%v", x, y, m, c)
				}
			} else if m != 255 || c != Background {
				t.Fatalf("(%d,%d) in padding: mask=%d color=%v", x, y, m, c)
			}
		}
	}
	// Exact corners of the preserved block.
	for _, p := range []image.Point{{256, 256}, {755, 755}} {
		if mask.GrayAt(p.X, p.Y).Y != 0 {
			t.Errorf("mask at %v = %d, want 0", p, mask.GrayAt(p.X, p.Y).Y)
		}
	}
	for _, p := range []image.Point{{255, 256}, {756, 755}, {256, 255}, {755, 756}} {
		if mask.GrayAt(p.X, p.Y).Y != 255 {
			t.Errorf("mask at %v = %d, want 255", p, mask.GrayAt(p.X, p.Y).Y)
		}
	}
}

func TestCompose_Sizes(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		pad  Padding
	}{
		{"left only", 40, 30, Padding{Left: 16}},
		{"asymmetric", 33, 17, Padding{Left: 1, Right: 2, Top: 3, Bottom: 4}},
		{"vertical", 10, 10, Uniform(DirectionVertical, 8)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			canvas, mask := Compose(solid(tt.w, tt.h, color.RGBA{1, 2, 3, 255}), tt.pad)

			wantW := tt.w + tt.pad.Left + tt.pad.Right
			wantH := tt.h + tt.pad.Top + tt.pad.Bottom
			if canvas.Bounds().Dx() != wantW || canvas.Bounds().Dy() != wantH {
				t.Fatalf("canvas = %v, want %dx%d", canvas.Bounds(), wantW, wantH)
			}

			preserved := 0
			for _, v := range mask.Pix {
				if v == 0 {
					preserved++
				}
			}
			if preserved != tt.w*tt.h {
				t.Errorf("preserved pixels = %d, want %d", preserved, tt.w*tt.h)
			}
			r := OriginalRect(tt.w, tt.h, tt.pad)
			if mask.GrayAt(r.Min.X, r.Min.Y).Y != 0 || mask.GrayAt(r.Max.X-1, r.Max.Y-1).Y != 0 {
				t.Errorf("preserve region does not cover %v", r)
			}
		})
	}
}

func TestCompose_ZeroPaddingIsPassThrough(t *testing.T) {
	img := solid(24, 16, color.RGBA{9, 8, 7, 255})

	canvas, mask := Compose(img, Padding{})

	if canvas.Bounds() != img.Bounds() {
		t.Fatalf("canvas bounds = %v, want %v", canvas.Bounds(), img.Bounds())
	}
	for i := range img.Pix {
		if canvas.Pix[i] != img.Pix[i] {
			t.Fatalf("canvas differs from input at byte %d", i)
		}
	}
	for i, v := range mask.Pix {
		if v != 0 {
			t.Fatalf("mask byte %d = %d, want 0", i, v)
		}
	}
	if !(Padding{}).IsZero() {
		t.Error("IsZero() = false for zero padding")
	}
}

func TestCompose_OffsetSource(t *testing.T) {
	full := solid(20, 20, color.RGBA{50, 60, 70, 255})
	sub := full.SubImage(image.Rect(10, 10, 20, 20))

	canvas, _ := Compose(sub, Padding{Left: 5})

	if canvas.Bounds() != image.Rect(0, 0, 15, 10) {
		t.Fatalf("canvas bounds = %v", canvas.Bounds())
	}
	if c := canvas.RGBAAt(5, 0); c != (color.RGBA{50, 60, 70, 255}) {
		t.Errorf("pasted pixel = %v", c)
	}
}
