package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"

	"paintserver/masking"
	"paintserver/sdruntime"
	"paintserver/vision"
)

// Modes with their own masks/prompts/results folders.
var validModes = []string{"inpainting", "outpainting"}

const (
	defaultPrompt = "remove"
	previewSide   = 512
)

var errNoAction = errors.New("no action specified: use -s to save results and/or -d to write previews")

// layout resolves the batch folder structure under root.
type layout struct {
	root string
}

func (l layout) imageDir() string { return filepath.Join(l.root, "img") }

func (l layout) modeDir(mode, sub string) string { return filepath.Join(l.root, mode, sub) }

// ensureModeDirs creates masks, prompts and results for every mode.
func (l layout) ensureModeDirs() error {
	for _, mode := range validModes {
		for _, sub := range []string{"masks", "prompts", "results"} {
			if err := os.MkdirAll(l.modeDir(mode, sub), 0755); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveImages expands "all" (or an empty list) to every .png/.jpg in the
// image folder. Named images must exist.
func (l layout) resolveImages(names []string) ([]string, error) {
	if len(names) == 0 || (len(names) == 1 && names[0] == "all") {
		entries, err := os.ReadDir(l.imageDir())
		if err != nil {
			return nil, fmt.Errorf("list images: %w", err)
		}
		var all []string
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(e.Name())) {
			case ".png", ".jpg", ".jpeg":
				all = append(all, e.Name())
			}
		}
		sort.Strings(all)
		return all, nil
	}

	var missing []string
	for _, name := range names {
		if _, err := os.Stat(filepath.Join(l.imageDir(), name)); err != nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("image(s) not found: %s", strings.Join(missing, ", "))
	}
	return names, nil
}

// stem returns name up to its first dot.
func stem(name string) string {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}

// maskFiles lists the descriptor files whose names start with the image stem.
func (l layout) maskFiles(mode, imageName string) ([]string, error) {
	entries, err := os.ReadDir(l.modeDir(mode, "masks"))
	if err != nil {
		return nil, err
	}
	prefix := stem(imageName)
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), prefix) && strings.HasSuffix(e.Name(), ".txt") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// prompt joins the non-comment lines of <mode>/prompts/<maskName>.txt.
func (l layout) prompt(mode, maskName string) string {
	f, err := os.Open(filepath.Join(l.modeDir(mode, "prompts"), maskName+".txt"))
	if err != nil {
		return defaultPrompt
	}
	defer f.Close()

	var parts []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts = append(parts, line)
	}
	if len(parts) == 0 {
		return defaultPrompt
	}
	return strings.Join(parts, " ")
}

func (l layout) resultPath(mode, maskName string) string {
	return filepath.Join(l.modeDir(mode, "results"), maskName+".png")
}

func (l layout) previewPath(mode, maskName string) string {
	return filepath.Join(l.modeDir(mode, "results"), maskName+"_preview.png")
}

// buildMask reads a rectangle descriptor and rasterizes it at the image size.
func buildMask(path string, bounds image.Rectangle) (*image.Gray, error) {
	rects, err := masking.ReadRectsFile(path)
	if err != nil {
		return nil, err
	}
	return masking.FromRects(bounds.Dx(), bounds.Dy(), rects), nil
}

// runner is the slice of the pipeline the batch needs.
type runner interface {
	Run(ctx context.Context, cfg sdruntime.Config, img image.Image, mask image.Image, prompt, negative string) (*sdruntime.Result, error)
}

// composePreview lays out original, mask overlay and result side by side,
// each resized to 512x512. Masked pixels are painted solid red.
func composePreview(original image.Image, mask *image.Gray, result image.Image) *image.NRGBA {
	orig := vision.ToRGB(imaging.Resize(original, previewSide, previewSide, imaging.Lanczos))
	m := vision.ResizeMask(mask, previewSide, previewSide)
	overlay := masking.Overlay(orig, m, 254, masking.Red, 1.0)
	res := imaging.Resize(result, previewSide, previewSide, imaging.Lanczos)

	dst := imaging.New(3*previewSide, previewSide, color.Black)
	dst = imaging.Paste(dst, orig, image.Pt(0, 0))
	dst = imaging.Paste(dst, overlay, image.Pt(previewSide, 0))
	return imaging.Paste(dst, res, image.Pt(2*previewSide, 0))
}
