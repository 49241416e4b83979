package imagegen

import (
	"image"
	"image/color"
	"testing"

	"paintserver/sdruntime"
)

func testRequest(t *testing.T, w, h int) sdruntime.Request {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 100, G: 150, B: 200, A: 255})
		}
	}
	mask := image.NewGray(image.Rect(0, 0, w, h))
	mask.SetGray(0, 0, color.Gray{Y: 255})
	ctrl, err := sdruntime.BuildControlImage(img, mask)
	if err != nil {
		t.Fatal(err)
	}
	return sdruntime.Request{
		Image:             img,
		Mask:              mask,
		Control:           ctrl,
		Prompt:            "a red door",
		NegativePrompt:    sdruntime.AppendNegative(""),
		Strength:          0.8,
		GuidanceScale:     7.5,
		Steps:             50,
		ConditioningScale: 0.95,
		Seed:              42,
		Width:             w,
		Height:            h,
	}
}
