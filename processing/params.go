package processing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"paintserver/canvas"
	"paintserver/sdruntime"
)

// RawParams is the decoded "params" form field. Nil fields were not sent.
type RawParams struct {
	Prompt            *string         `json:"prompt"`
	NegativePrompt    *string         `json:"negative_prompt"`
	GuidanceScale     *float64        `json:"guidance_scale"`
	Strength          *float64        `json:"strength"`
	Steps             *float64        `json:"num_inference_steps"`
	ConditioningScale *float64        `json:"conditioning_scale"`
	Seed              *int64          `json:"seed"`
	Direction         *string         `json:"direction"`
	Pixels            json.RawMessage `json:"pixels"`
}

// ParseParams decodes the params blob. Empty input means "{}".
func ParseParams(data []byte) (*RawParams, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return &RawParams{}, nil
	}
	if data[0] != '{' {
		return nil, fmt.Errorf("%w: params must be a JSON object", ErrInvalidParams)
	}
	var p RawParams
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return &p, nil
}

// InpaintParams are the resolved parameters of an inpainting run.
type InpaintParams struct {
	Prompt         string
	NegativePrompt string
	Config         sdruntime.Config
	MaskExpand     int
	MaskFeather    float64
}

// OutpaintParams are the resolved parameters of an outpainting run.
type OutpaintParams struct {
	InpaintParams
	Direction canvas.Direction
	Padding   canvas.Padding
}

// ResolveInpaint applies d to the fields p omits.
func ResolveInpaint(p *RawParams, d TaskDefaults) (InpaintParams, error) {
	if p == nil {
		p = &RawParams{}
	}
	steps := d.Steps
	if p.Steps != nil {
		// Ranges are left to the backend; only fractional step counts are rejected.
		if *p.Steps != math.Trunc(*p.Steps) || math.IsInf(*p.Steps, 0) {
			return InpaintParams{}, fmt.Errorf("%w: num_inference_steps must be an integer", ErrInvalidParams)
		}
		steps = int(*p.Steps)
	}

	cond := d.ConditioningScale
	if p.ConditioningScale != nil {
		cond = *p.ConditioningScale
	}

	cfg := sdruntime.DefaultConfig().Update(
		floatOr(p.Strength, d.Strength),
		floatOr(p.GuidanceScale, d.GuidanceScale),
		steps,
		&cond,
	)
	if p.Seed != nil {
		cfg = cfg.WithSeed(*p.Seed)
	}

	out := InpaintParams{
		Prompt:         stringOr(p.Prompt, d.Prompt),
		NegativePrompt: stringOr(p.NegativePrompt, d.NegativePrompt),
		Config:         cfg,
		MaskExpand:     d.MaskExpand,
		MaskFeather:    d.MaskFeather,
	}
	if err := sdruntime.ValidatePrompt(out.Prompt); err != nil {
		return InpaintParams{}, fmt.Errorf("%w: prompt: %v", ErrInvalidParams, err)
	}
	if err := sdruntime.ValidatePrompt(out.NegativePrompt); err != nil {
		return InpaintParams{}, fmt.Errorf("%w: negative_prompt: %v", ErrInvalidParams, err)
	}
	return out, nil
}

// ResolveOutpaint applies d to the fields p omits and resolves the padding.
func ResolveOutpaint(p *RawParams, d TaskDefaults) (OutpaintParams, error) {
	if p == nil {
		p = &RawParams{}
	}
	base, err := ResolveInpaint(p, d)
	if err != nil {
		return OutpaintParams{}, err
	}

	direction, err := canvas.ParseDirection(stringOr(p.Direction, d.Direction))
	if err != nil {
		return OutpaintParams{}, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}

	var pad canvas.Padding
	if raw := bytes.TrimSpace(p.Pixels); len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		pad = canvas.Uniform(canvas.DirectionAll, d.Pixels)
	} else {
		pad, err = canvas.ResolvePadding(direction, raw)
		if err != nil {
			return OutpaintParams{}, fmt.Errorf("%w: %v", ErrInvalidParams, err)
		}
	}

	return OutpaintParams{InpaintParams: base, Direction: direction, Padding: pad}, nil
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func stringOr(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}
