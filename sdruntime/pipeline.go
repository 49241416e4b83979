package sdruntime

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"paintserver/logging"
	"paintserver/masking"
	"paintserver/vision"
)

// Debug artifact names.
const (
	DebugMaskVisualization = "mask_visualization.png"
	DebugControlImage      = "control_image.png"
)

// PipelineConfig holds the process-wide settings of a Pipeline.
type PipelineConfig struct {
	MaxConcurrent   int
	AcquireTimeout  time.Duration
	MaxDimension    int
	DebugDir        string // Empty disables debug artifacts
	BaseModel       string
	ControlNetModel string
}

// Result is the outcome of one run.
type Result struct {
	Image       image.Image
	InputWidth  int
	InputHeight int
	Width       int
	Height      int
	Seed        int64
	Steps       int
	Backend     string
	QueueWait   time.Duration
	Inference   time.Duration
	Total       time.Duration
}

// Metrics returns the run as DiffusionMetrics for task.
func (r *Result) Metrics(task string, cfg Config) logging.DiffusionMetrics {
	return logging.DiffusionMetrics{
		Task:          task,
		Backend:       r.Backend,
		InputWidth:    r.InputWidth,
		InputHeight:   r.InputHeight,
		Width:         r.Width,
		Height:        r.Height,
		Steps:         cfg.Steps,
		Strength:      cfg.Strength,
		GuidanceScale: cfg.GuidanceScale,
		QueueWait:     r.QueueWait,
		Inference:     r.Inference,
		Total:         r.Total,
	}
}

// Pipeline prepares requests for the backend and bounds concurrent runs.
type Pipeline struct {
	cfg     PipelineConfig
	factory BackendFactory
	pool    *SlotPool
	logger  *logging.Logger

	once    sync.Once
	mu      sync.Mutex // guards backend
	backend Backend
	initErr error
}

// NewPipeline creates a Pipeline. The backend is built by factory on the
// first Run.
func NewPipeline(cfg PipelineConfig, factory BackendFactory, logger *logging.Logger) *Pipeline {
	if cfg.MaxDimension <= 0 {
		cfg.MaxDimension = vision.DefaultMaxDimension
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{
		cfg:     cfg,
		factory: factory,
		pool:    NewSlotPool(cfg.MaxConcurrent, cfg.AcquireTimeout),
		logger:  logger.Named("sdruntime"),
	}
}

// Pool returns the slot pool admitting runs.
func (p *Pipeline) Pool() *SlotPool {
	return p.pool
}

// DebugEnabled reports whether debug artifacts are written.
func (p *Pipeline) DebugEnabled() bool {
	return p.cfg.DebugDir != ""
}

// Backend returns the backend, creating it on first call.
func (p *Pipeline) Backend() (Backend, error) {
	p.once.Do(func() {
		if p.factory == nil {
			p.initErr = fmt.Errorf("%w: no backend factory", ErrBackendInit)
			return
		}
		b, err := p.factory()
		if err != nil {
			p.initErr = fmt.Errorf("%w: %v", ErrBackendInit, err)
			return
		}
		p.mu.Lock()
		p.backend = b
		p.mu.Unlock()
		p.logger.Info("backend ready", zap.String("backend", b.Name()))
	})
	return p.backend, p.initErr
}

// Run generates one image. img and mask must have the same size; white mask
// pixels are regenerated.
func (p *Pipeline) Run(ctx context.Context, cfg Config, img image.Image, mask image.Image, prompt, negative string) (*Result, error) {
	start := time.Now()
	if img == nil || mask == nil {
		return nil, fmt.Errorf("%w: image and mask are required", ErrInvalidInput)
	}
	ib, mb := img.Bounds(), mask.Bounds()
	if ib.Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidInput)
	}
	if ib.Dx() != mb.Dx() || ib.Dy() != mb.Dy() {
		return nil, fmt.Errorf("%w: image %dx%d and mask %dx%d differ", ErrInvalidInput, ib.Dx(), ib.Dy(), mb.Dx(), mb.Dy())
	}
	if err := ValidatePrompt(prompt); err != nil {
		return nil, err
	}
	if err := ValidatePrompt(negative); err != nil {
		return nil, err
	}

	width, height := vision.NormalizeDimensions(ib.Dx(), ib.Dy(), p.cfg.MaxDimension)
	resized := vision.ResizeImage(img, width, height)
	resizedMask := vision.ResizeMask(mask, width, height)

	control, err := BuildControlImage(resized, resizedMask)
	if err != nil {
		return nil, err
	}

	p.SaveDebug(ctx, DebugMaskVisualization, masking.Overlay(resized, resizedMask, 128, masking.Red, 0.5))
	p.SaveDebug(ctx, DebugControlImage, control.Preview())

	backend, err := p.Backend()
	if err != nil {
		return nil, err
	}

	req := Request{
		Image:             resized,
		Mask:              resizedMask,
		Control:           control,
		Prompt:            prompt,
		NegativePrompt:    AppendNegative(negative),
		Strength:          cfg.Strength,
		GuidanceScale:     cfg.GuidanceScale,
		Steps:             cfg.Steps,
		ConditioningScale: cfg.ConditioningScale,
		Seed:              ResolveSeed(cfg.Seed),
		Width:             width,
		Height:            height,
		BaseModel:         p.cfg.BaseModel,
		ControlNetModel:   p.cfg.ControlNetModel,
	}

	queued := time.Now()
	release, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	admitted := time.Now()

	images, err := backend.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 || images[0] == nil {
		return nil, ErrNoOutput
	}

	done := time.Now()
	res := &Result{
		Image:       images[0],
		InputWidth:  ib.Dx(),
		InputHeight: ib.Dy(),
		Width:       width,
		Height:      height,
		Seed:        req.Seed,
		Steps:       cfg.Steps,
		Backend:     backend.Name(),
		QueueWait:   admitted.Sub(queued),
		Inference:   done.Sub(admitted),
		Total:       done.Sub(start),
	}
	p.logger.Debug("run complete",
		zap.Int64("seed", res.Seed),
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Duration("inference", res.Inference))
	return res, nil
}

// SaveDebug writes img under the debug directory as name. It does nothing
// when debugging is off. Failures are logged, never returned.
func (p *Pipeline) SaveDebug(ctx context.Context, name string, img image.Image) {
	if !p.DebugEnabled() {
		return
	}
	dir := p.cfg.DebugDir
	if tag := DebugTag(ctx); tag != "" {
		dir = filepath.Join(dir, tag)
	}
	path := filepath.Join(dir, name)
	if err := vision.WritePNGFile(path, img); err != nil {
		p.logger.Warn("failed to write debug image", zap.String("path", path), zap.Error(err))
	}
}

// Close stops admitting runs and closes the backend if it holds resources.
func (p *Pipeline) Close() error {
	p.pool.Close()
	p.mu.Lock()
	b := p.backend
	p.mu.Unlock()
	if c, ok := b.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

type debugTagKey struct{}

// WithDebugTag returns a context whose debug artifacts go to a tag
// subdirectory, keeping concurrent runs apart.
func WithDebugTag(ctx context.Context, tag string) context.Context {
	return context.WithValue(ctx, debugTagKey{}, tag)
}

// DebugTag returns the tag set by WithDebugTag, if any.
func DebugTag(ctx context.Context) string {
	tag, _ := ctx.Value(debugTagKey{}).(string)
	return tag
}

// IsOverloaded reports whether err means no slot could be obtained.
func IsOverloaded(err error) bool {
	return errors.Is(err, ErrAcquireTimeout) || errors.Is(err, ErrPoolClosed)
}
