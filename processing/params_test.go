package processing

import (
	"errors"
	"testing"

	"paintserver/canvas"
)

func TestParseParams(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty means defaults", "", false},
		{"empty object", "{}", false},
		{"full", `{"prompt":"sky","guidance_scale":9,"num_inference_steps":30}`, false},
		{"invalid json", `{"prompt":`, true},
		{"array", `[1,2]`, true},
		{"wrong type", `{"strength":"high"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseParams([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseParams() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidParams) {
				t.Errorf("error should wrap ErrInvalidParams: %v", err)
			}
		})
	}
}

func mustParse(t *testing.T, s string) *RawParams {
	t.Helper()
	p, err := ParseParams([]byte(s))
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestResolveInpaintDefaults(t *testing.T) {
	got, err := ResolveInpaint(mustParse(t, "{}"), BuiltinDefaults().Inpainting)
	if err != nil {
		t.Fatal(err)
	}
	if got.Prompt != "" || got.NegativePrompt != "" {
		t.Errorf("prompts = %q/%q, want empty", got.Prompt, got.NegativePrompt)
	}
	if got.Config.GuidanceScale != 7.5 || got.Config.Strength != 0.8 || got.Config.Steps != 50 {
		t.Errorf("Config = %+v", got.Config)
	}
	if got.MaskExpand != 5 || got.MaskFeather != 20 {
		t.Errorf("mask = %d/%v, want 5/20", got.MaskExpand, got.MaskFeather)
	}
}

func TestResolveInpaintOverrides(t *testing.T) {
	p := mustParse(t, `{"prompt":"a cat","negative_prompt":"dog","guidance_scale":12,"strength":0.5,"num_inference_steps":25,"conditioning_scale":0.6,"seed":99}`)
	got, err := ResolveInpaint(p, BuiltinDefaults().Inpainting)
	if err != nil {
		t.Fatal(err)
	}
	cfg := got.Config
	if got.Prompt != "a cat" || got.NegativePrompt != "dog" {
		t.Errorf("prompts = %q/%q", got.Prompt, got.NegativePrompt)
	}
	if cfg.GuidanceScale != 12 || cfg.Strength != 0.5 || cfg.Steps != 25 || cfg.ConditioningScale != 0.6 || cfg.Seed != 99 {
		t.Errorf("Config = %+v", cfg)
	}
}

func TestResolveInpaintRejectsFractionalSteps(t *testing.T) {
	_, err := ResolveInpaint(mustParse(t, `{"num_inference_steps":2.5}`), BuiltinDefaults().Inpainting)
	if !errors.Is(err, ErrInvalidParams) {
		t.Errorf("error = %v, want ErrInvalidParams", err)
	}
}

func TestResolveOutpaint(t *testing.T) {
	tests := []struct {
		name    string
		params  string
		want    canvas.Padding
		wantErr bool
	}{
		{"defaults", `{}`, canvas.Padding{Left: 256, Right: 256, Top: 256, Bottom: 256}, false},
		{"integer left", `{"direction":"left","pixels":100}`, canvas.Padding{Left: 100}, false},
		{"direction without pixels pads all sides", `{"direction":"left"}`, canvas.Padding{Left: 256, Right: 256, Top: 256, Bottom: 256}, false},
		{"null pixels pads all sides", `{"direction":"horizontal","pixels":null}`, canvas.Padding{Left: 256, Right: 256, Top: 256, Bottom: 256}, false},
		{"vertical", `{"direction":"vertical","pixels":64}`, canvas.Padding{Top: 64, Bottom: 64}, false},
		{"explicit sides", `{"pixels":{"left":10,"bottom":20}}`, canvas.Padding{Left: 10, Bottom: 20}, false},
		{"string falls back", `{"direction":"top","pixels":"wide"}`, canvas.Padding{Left: 256, Right: 256, Top: 256, Bottom: 256}, false},
		{"unknown direction", `{"direction":"diagonal"}`, canvas.Padding{}, true},
		{"negative side", `{"pixels":{"left":-5}}`, canvas.Padding{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveOutpaint(mustParse(t, tt.params), BuiltinDefaults().Outpainting)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveOutpaint() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalidParams) {
					t.Errorf("error should wrap ErrInvalidParams: %v", err)
				}
				return
			}
			if got.Padding != tt.want {
				t.Errorf("Padding = %+v, want %+v", got.Padding, tt.want)
			}
		})
	}
}

func TestResolveOutpaintDefaults(t *testing.T) {
	got, err := ResolveOutpaint(nil, BuiltinDefaults().Outpainting)
	if err != nil {
		t.Fatal(err)
	}
	if got.Config.Strength != 1.0 || got.Config.Steps != 50 || got.Config.GuidanceScale != 7.5 {
		t.Errorf("Config = %+v", got.Config)
	}
	if got.MaskExpand != 50 || got.MaskFeather != 50 {
		t.Errorf("mask = %d/%v, want 50/50", got.MaskExpand, got.MaskFeather)
	}
	if got.Direction != canvas.DirectionAll {
		t.Errorf("Direction = %s", got.Direction)
	}
}
