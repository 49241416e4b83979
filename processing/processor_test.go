package processing

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"paintserver/imagegen"
	"paintserver/sdruntime"
)

type recordedRun struct {
	cfg      sdruntime.Config
	img      image.Image
	mask     image.Image
	prompt   string
	negative string
}

// fakeRunner records runs and returns the input image.
type fakeRunner struct {
	runs  []recordedRun
	debug []string
	err   error
}

func (f *fakeRunner) Run(ctx context.Context, cfg sdruntime.Config, img, mask image.Image, prompt, negative string) (*sdruntime.Result, error) {
	f.runs = append(f.runs, recordedRun{cfg, img, mask, prompt, negative})
	if f.err != nil {
		return nil, f.err
	}
	b := img.Bounds()
	return &sdruntime.Result{Image: img, Width: b.Dx(), Height: b.Dy(), Backend: "fake"}, nil
}

func (f *fakeRunner) SaveDebug(ctx context.Context, name string, img image.Image) {
	f.debug = append(f.debug, name)
}

func solid(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 40, G: 80, B: 120, A: 255})
		}
	}
	return img
}

func TestProcessDispatch(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 32, 32))
	tests := []struct {
		name    string
		task    Task
		mask    image.Image
		params  string
		wantErr error
	}{
		{"outpainting", TaskOutpainting, nil, `{"pixels":8}`, nil},
		{"inpainting", TaskInpainting, mask, `{}`, nil},
		{"inpainting without mask", TaskInpainting, nil, `{}`, ErrMaskRequired},
		{"superresolution", TaskSuperResolution, nil, `{}`, ErrNotImplemented},
		{"unknown task", Task("colorize"), nil, `{}`, ErrUnknownTask},
		{"bad direction", TaskOutpainting, nil, `{"direction":"sideways"}`, ErrInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewImageProcessor(&fakeRunner{}, BuiltinDefaults(), nil)
			_, err := p.Process(context.Background(), tt.task, solid(32, 32), tt.mask, mustParse(t, tt.params))
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Process() error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Process() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestProcessOutpainting(t *testing.T) {
	runner := &fakeRunner{}
	p := NewImageProcessor(runner, BuiltinDefaults(), nil)

	params, err := ResolveOutpaint(mustParse(t, `{"direction":"right","pixels":16,"prompt":"beach"}`), BuiltinDefaults().Outpainting)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.ProcessOutpainting(context.Background(), solid(32, 24), params); err != nil {
		t.Fatal(err)
	}

	run := runner.runs[0]
	if b := run.img.Bounds(); b.Dx() != 48 || b.Dy() != 24 {
		t.Errorf("canvas = %v, want 48x24", b)
	}
	if b := run.mask.Bounds(); b.Dx() != 48 || b.Dy() != 24 {
		t.Errorf("mask = %v, want 48x24", b)
	}
	if run.prompt != "beach" || run.cfg.Strength != 1.0 {
		t.Errorf("prompt/strength = %q/%v", run.prompt, run.cfg.Strength)
	}
	m := run.mask.(*image.Gray)
	if m.GrayAt(47, 12).Y <= m.GrayAt(0, 12).Y {
		t.Errorf("padding should be masked more than the original: %d <= %d", m.GrayAt(47, 12).Y, m.GrayAt(0, 12).Y)
	}
	if len(runner.debug) != 2 || runner.debug[0] != DebugMaskRaw || runner.debug[1] != DebugMaskProcessed {
		t.Errorf("debug artifacts = %v", runner.debug)
	}
}

func TestProcessOutpaintingZeroPadding(t *testing.T) {
	runner := &fakeRunner{}
	p := NewImageProcessor(runner, BuiltinDefaults(), nil)

	params, err := ResolveOutpaint(mustParse(t, `{"pixels":0}`), BuiltinDefaults().Outpainting)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.ProcessOutpainting(context.Background(), solid(16, 16), params); err != nil {
		t.Fatalf("zero padding should pass through: %v", err)
	}
	m := runner.runs[0].mask.(*image.Gray)
	for _, v := range m.Pix {
		if v != 0 {
			t.Fatal("zero padding should give an all-preserve mask")
		}
	}
}

func TestProcessInpaintingResizesMask(t *testing.T) {
	runner := &fakeRunner{}
	p := NewImageProcessor(runner, BuiltinDefaults(), nil)

	params, _ := ResolveInpaint(nil, BuiltinDefaults().Inpainting)
	mask := image.NewGray(image.Rect(0, 0, 16, 16))
	if _, err := p.ProcessInpainting(context.Background(), solid(32, 32), mask, params); err != nil {
		t.Fatal(err)
	}
	if b := runner.runs[0].mask.Bounds(); b.Dx() != 32 || b.Dy() != 32 {
		t.Errorf("mask = %v, want 32x32", b)
	}
}

func TestProcessPropagatesRunnerError(t *testing.T) {
	p := NewImageProcessor(&fakeRunner{err: sdruntime.ErrAcquireTimeout}, BuiltinDefaults(), nil)
	_, err := p.Process(context.Background(), TaskOutpainting, solid(8, 8), nil, nil)
	if !errors.Is(err, sdruntime.ErrAcquireTimeout) {
		t.Errorf("error = %v, want ErrAcquireTimeout", err)
	}
}

func TestProcessWithPipeline(t *testing.T) {
	dir := t.TempDir()
	pipeline := sdruntime.NewPipeline(sdruntime.PipelineConfig{DebugDir: dir}, func() (sdruntime.Backend, error) {
		return imagegen.NullBackend{}, nil
	}, nil)
	defer pipeline.Close()

	p := NewImageProcessor(pipeline, BuiltinDefaults(), nil)
	res, err := p.Process(context.Background(), TaskOutpainting, solid(500, 500), nil, mustParse(t, `{"pixels":256,"direction":"all"}`))
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}
	if res.InputWidth != 1012 || res.InputHeight != 1012 {
		t.Errorf("canvas = %dx%d, want 1012x1012", res.InputWidth, res.InputHeight)
	}
	if res.Width%8 != 0 || res.Width > 1024 {
		t.Errorf("normalized width = %d", res.Width)
	}
	for _, name := range []string{DebugMaskRaw, DebugMaskProcessed, sdruntime.DebugControlImage, sdruntime.DebugMaskVisualization} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing debug artifact %s", name)
		}
	}
}
