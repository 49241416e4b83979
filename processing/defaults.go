package processing

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"paintserver/canvas"
	"paintserver/masking"
)

// TaskDefaults are the values used for parameters a request omits.
type TaskDefaults struct {
	Prompt            string  `yaml:"prompt"`
	NegativePrompt    string  `yaml:"negative_prompt"`
	GuidanceScale     float64 `yaml:"guidance_scale"`
	Strength          float64 `yaml:"strength"`
	Steps             int     `yaml:"num_inference_steps"`
	ConditioningScale float64 `yaml:"conditioning_scale"`
	MaskExpand        int     `yaml:"mask_expand"`
	MaskFeather       float64 `yaml:"mask_feather"`

	// Outpainting only
	Direction string `yaml:"direction,omitempty"`
	Pixels    int    `yaml:"pixels,omitempty"`
}

// Defaults holds the per-task defaults.
type Defaults struct {
	Inpainting  TaskDefaults `yaml:"inpainting"`
	Outpainting TaskDefaults `yaml:"outpainting"`
}

// BuiltinDefaults returns the stock defaults.
func BuiltinDefaults() Defaults {
	return Defaults{
		Inpainting: TaskDefaults{
			GuidanceScale:     7.5,
			Strength:          0.8,
			Steps:             50,
			ConditioningScale: 0.95,
			MaskExpand:        masking.InpaintExpand,
			MaskFeather:       masking.InpaintFeather,
		},
		Outpainting: TaskDefaults{
			GuidanceScale:     7.5,
			Strength:          1.0,
			Steps:             50,
			ConditioningScale: 0.95,
			MaskExpand:        masking.OutpaintExpand,
			MaskFeather:       masking.OutpaintFeather,
			Direction:         string(canvas.DirectionAll),
			Pixels:            canvas.DefaultPixels,
		},
	}
}

// LoadDefaults reads YAML overrides from path on top of BuiltinDefaults.
// An empty path returns the built-in values.
func LoadDefaults(path string) (Defaults, error) {
	if path == "" {
		return BuiltinDefaults(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Defaults{}, fmt.Errorf("processing: read defaults: %w", err)
	}
	return ParseDefaults(data)
}

// ParseDefaults decodes YAML overrides on top of BuiltinDefaults. Unknown
// keys are an error so typos do not pass silently.
func ParseDefaults(data []byte) (Defaults, error) {
	d := BuiltinDefaults()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil && !errors.Is(err, io.EOF) {
		return Defaults{}, fmt.Errorf("processing: parse defaults: %w", err)
	}
	if err := d.Validate(); err != nil {
		return Defaults{}, err
	}
	return d, nil
}

// Validate rejects defaults no request could run with.
func (d Defaults) Validate() error {
	for name, td := range map[string]TaskDefaults{"inpainting": d.Inpainting, "outpainting": d.Outpainting} {
		if td.Steps < 1 {
			return fmt.Errorf("processing: %s.num_inference_steps must be at least 1", name)
		}
		if td.MaskExpand < 0 || td.MaskFeather < 0 {
			return fmt.Errorf("processing: %s mask_expand and mask_feather must not be negative", name)
		}
	}
	if _, err := canvas.ParseDirection(d.Outpainting.Direction); err != nil {
		return fmt.Errorf("processing: outpainting.direction: %w", err)
	}
	if d.Outpainting.Pixels < 0 || d.Outpainting.Pixels > canvas.MaxPixels {
		return fmt.Errorf("processing: outpainting.pixels must be between 0 and %d", canvas.MaxPixels)
	}
	return nil
}
