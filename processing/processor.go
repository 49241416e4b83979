package processing

import (
	"context"
	"fmt"
	"image"

	"paintserver/canvas"
	"paintserver/logging"
	"paintserver/masking"
	"paintserver/sdruntime"
	"paintserver/vision"
)

// Outpainting debug artifacts, written next to the pipeline's own.
const (
	DebugMaskRaw       = "mask_raw.png"
	DebugMaskProcessed = "mask_processed.png"
)

// Runner is the part of sdruntime.Pipeline the processor uses.
type Runner interface {
	Run(ctx context.Context, cfg sdruntime.Config, img, mask image.Image, prompt, negative string) (*sdruntime.Result, error)
	SaveDebug(ctx context.Context, name string, img image.Image)
}

// ImageProcessor runs inpainting and outpainting on a shared pipeline.
type ImageProcessor struct {
	runner   Runner
	defaults Defaults
	logger   *logging.Logger
}

// NewImageProcessor creates a processor. A nil logger discards output.
func NewImageProcessor(runner Runner, defaults Defaults, logger *logging.Logger) *ImageProcessor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ImageProcessor{
		runner:   runner,
		defaults: defaults,
		logger:   logger.Named("processing"),
	}
}

// Defaults returns the task defaults in use.
func (p *ImageProcessor) Defaults() Defaults {
	return p.defaults
}

// Process resolves params for task and runs it. mask is only read for
// inpainting, where it is required.
func (p *ImageProcessor) Process(ctx context.Context, task Task, img, mask image.Image, params *RawParams) (*sdruntime.Result, error) {
	switch task {
	case TaskOutpainting:
		resolved, err := ResolveOutpaint(params, p.defaults.Outpainting)
		if err != nil {
			return nil, err
		}
		return p.ProcessOutpainting(ctx, img, resolved)
	case TaskInpainting:
		if mask == nil {
			return nil, ErrMaskRequired
		}
		resolved, err := ResolveInpaint(params, p.defaults.Inpainting)
		if err != nil {
			return nil, err
		}
		return p.ProcessInpainting(ctx, img, mask, resolved)
	case TaskSuperResolution:
		return p.ProcessSuperResolution(ctx, img, params)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTask, task)
	}
}

// ProcessInpainting regenerates the white region of mask. A mask of another
// size is resampled to the image first.
func (p *ImageProcessor) ProcessInpainting(ctx context.Context, img, mask image.Image, params InpaintParams) (*sdruntime.Result, error) {
	rgb := vision.ToRGB(img)
	gray := vision.ToGray(mask)
	if b := rgb.Bounds(); gray.Bounds().Dx() != b.Dx() || gray.Bounds().Dy() != b.Dy() {
		gray = vision.ResizeMask(gray, b.Dx(), b.Dy())
	}
	prepared := masking.Prepare(gray, params.MaskExpand, params.MaskFeather)
	return p.run(ctx, TaskInpainting, params, rgb, prepared)
}

// ProcessOutpainting pads img on a white canvas and fills the padding.
func (p *ImageProcessor) ProcessOutpainting(ctx context.Context, img image.Image, params OutpaintParams) (*sdruntime.Result, error) {
	if err := params.Padding.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	composed, mask := canvas.Compose(img, params.Padding)
	p.runner.SaveDebug(ctx, DebugMaskRaw, mask)

	prepared := masking.Prepare(mask, params.MaskExpand, params.MaskFeather)
	p.runner.SaveDebug(ctx, DebugMaskProcessed, prepared)

	return p.run(ctx, TaskOutpainting, params.InpaintParams, composed, prepared)
}

// ProcessSuperResolution is not available; it always returns ErrNotImplemented.
func (p *ImageProcessor) ProcessSuperResolution(ctx context.Context, img image.Image, params *RawParams) (*sdruntime.Result, error) {
	return nil, ErrNotImplemented
}

func (p *ImageProcessor) run(ctx context.Context, task Task, params InpaintParams, img image.Image, mask *image.Gray) (*sdruntime.Result, error) {
	res, err := p.runner.Run(ctx, params.Config, img, mask, params.Prompt, params.NegativePrompt)
	if err != nil {
		return nil, err
	}
	p.logger.Info("task complete", logging.DiffusionFields(res.Metrics(task.String(), params.Config)))
	return res, nil
}
