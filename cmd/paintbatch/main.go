// Command paintbatch runs inpainting or outpainting over a folder of images
// using rectangle mask descriptors and prompt files.
//
//	<root>/img/                         source images
//	<root>/<mode>/masks/<image>*.txt    one "x1 y1 x2 y2" rectangle per line
//	<root>/<mode>/prompts/<mask>.txt    prompt lines, joined with spaces
//	<root>/<mode>/results/<mask>.png    written with -s
package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap/zapcore"

	"paintserver/core"
	"paintserver/imagegen"
	"paintserver/logging"
	"paintserver/sdruntime"
	"paintserver/vision"
)

var (
	errorColor = color.New(color.FgRed)
	warnColor  = color.New(color.FgYellow)
	okColor    = color.New(color.FgGreen)
)

type options struct {
	images        []string
	modes         []string
	save          bool
	display       bool
	strength      float64
	guidanceScale float64
	modelName     string
	root          string
}

func parseOptions(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := pflag.NewFlagSet("paintbatch", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringSliceVarP(&opts.images, "images", "i", nil, "image file names in <root>/img, or \"all\"")
	fs.StringSliceVarP(&opts.modes, "mode", "m", nil, "inpainting and/or outpainting (default both)")
	fs.BoolVarP(&opts.save, "save", "s", false, "write results to <mode>/results")
	fs.BoolVarP(&opts.display, "display", "d", false, "write an original|mask|result preview next to each result")
	fs.Float64Var(&opts.strength, "strength", 1.0, "denoising strength")
	fs.Float64Var(&opts.guidanceScale, "guidance_scale", 10.0, "classifier-free guidance scale")
	fs.StringVar(&opts.modelName, "model_name", "", "base model override")
	fs.StringVar(&opts.root, "root", ".", "batch folder root")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if len(opts.modes) == 0 {
		opts.modes = validModes
	}
	var invalid []string
	for _, m := range opts.modes {
		if !slices.Contains(validModes, m) {
			invalid = append(invalid, m)
		}
	}
	if len(invalid) > 0 {
		return opts, fmt.Errorf("invalid mode(s): %s. Use %s", strings.Join(invalid, ", "), strings.Join(validModes, " and/or "))
	}
	if !opts.save && !opts.display {
		return opts, errNoAction
	}
	return opts, nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return core.ExitCodeSuccess
		}
		errorColor.Fprintf(stderr, "Error: %v\n", err)
		return core.ExitCodeError
	}

	l := layout{root: opts.root}
	if err := l.ensureModeDirs(); err != nil {
		errorColor.Fprintf(stderr, "Error: %v\n", err)
		return core.ExitCodeError
	}
	images, err := l.resolveImages(opts.images)
	if err != nil {
		errorColor.Fprintf(stderr, "Error: %v\n", err)
		return core.ExitCodeError
	}

	_ = godotenv.Load()
	cfg, err := core.LoadConfig()
	if err != nil {
		errorColor.Fprintf(stderr, "Error: %v\n", err)
		return core.ExitCodeError
	}
	if opts.modelName != "" {
		cfg.BaseModel = opts.modelName
	}

	logger, err := logging.NewLoggerWithLevel(logging.ParseLogLevel(cfg.LogLevel, zapcore.WarnLevel), false, "")
	if err != nil {
		errorColor.Fprintf(stderr, "Error: %v\n", err)
		return core.ExitCodeError
	}
	defer func() { _ = logger.Sync() }()

	pipeline := sdruntime.NewPipeline(sdruntime.PipelineConfig{
		MaxConcurrent:   1,
		MaxDimension:    cfg.MaxDimension,
		DebugDir:        cfg.DebugDir,
		BaseModel:       cfg.BaseModel,
		ControlNetModel: cfg.ControlNetModel,
	}, imagegen.Factory(cfg), logger)
	defer pipeline.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := &batch{
		layout: l,
		runner: pipeline,
		config: sdruntime.DefaultConfig().Update(opts.strength, opts.guidanceScale, sdruntime.DefaultSteps, nil),
		opts:   opts,
		out:    stderr,
	}
	failed := b.run(ctx, images)
	if ctx.Err() != nil {
		warnColor.Fprintln(stderr, "Interrupted")
		return core.ExitCodeForSignal(os.Interrupt)
	}
	if failed > 0 {
		warnColor.Fprintf(stderr, "%d job(s) failed\n", failed)
	}
	return core.ExitCodeSuccess
}

// batch walks modes, images and their masks.
type batch struct {
	layout layout
	runner runner
	config sdruntime.Config
	opts   options
	out    io.Writer
}

// run processes every image in every mode and returns the failed job count.
// Unreadable images and failed jobs are reported and skipped.
func (b *batch) run(ctx context.Context, images []string) int {
	failed := 0
	for _, mode := range b.opts.modes {
		for _, name := range images {
			if ctx.Err() != nil {
				return failed
			}
			img, err := vision.ReadImageFile(filepath.Join(b.layout.imageDir(), name))
			if err != nil {
				errorColor.Fprintf(b.out, "%s: %v\n", name, err)
				continue
			}
			masks, err := b.layout.maskFiles(mode, name)
			if err != nil || len(masks) == 0 {
				warnColor.Fprintf(b.out, "Warning: no masks found for image %s with mode %s\n", name, mode)
				continue
			}
			for _, maskFile := range masks {
				if ctx.Err() != nil {
					return failed
				}
				if err := b.runOne(ctx, mode, img, maskFile); err != nil {
					errorColor.Fprintf(b.out, "%s/%s: %v\n", mode, maskFile, err)
					failed++
				}
			}
		}
	}
	return failed
}

func (b *batch) runOne(ctx context.Context, mode string, img image.Image, maskFile string) error {
	mask, err := buildMask(filepath.Join(b.layout.modeDir(mode, "masks"), maskFile), img.Bounds())
	if err != nil {
		return err
	}
	maskName := stem(maskFile)
	prompt := b.layout.prompt(mode, maskName)
	fmt.Fprintf(b.out, "%s %s: %q\n", mode, maskName, prompt)

	res, err := b.runner.Run(ctx, b.config, img, mask, prompt, "")
	if err != nil {
		return err
	}

	if b.opts.save {
		path := b.layout.resultPath(mode, maskName)
		if err := vision.WritePNGFile(path, res.Image); err != nil {
			return err
		}
		okColor.Fprintf(b.out, "Result saved to %s (seed %d)\n", path, res.Seed)
	}
	if b.opts.display {
		path := b.layout.previewPath(mode, maskName)
		if err := vision.WritePNGFile(path, composePreview(img, mask, res.Image)); err != nil {
			return err
		}
		okColor.Fprintf(b.out, "Preview saved to %s\n", path)
	}
	return nil
}
