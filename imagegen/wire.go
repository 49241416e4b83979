// wire.go defines the JSON exchanged with the diffusers worker.
package imagegen

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"image"
	"math"

	"paintserver/sdruntime"
	"paintserver/vision"
)

// ControlTensor is a float32 tensor encoded as base64 little-endian bytes.
type ControlTensor struct {
	Shape []int  `json:"shape"`
	DType string `json:"dtype"`
	Data  string `json:"data"`
}

// GenerateRequest is the body of POST /generate on the diffusers worker.
type GenerateRequest struct {
	Image   string        `json:"image"` // base64 PNG
	Mask    string        `json:"mask"`  // base64 PNG, white = regenerate
	Control ControlTensor `json:"control_image"`

	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt"`

	Strength          float64 `json:"strength"`
	GuidanceScale     float64 `json:"guidance_scale"`
	Steps             int     `json:"num_inference_steps"`
	ConditioningScale float64 `json:"controlnet_conditioning_scale"`
	Seed              int64   `json:"seed"`

	Width  int `json:"width"`
	Height int `json:"height"`

	BaseModel       string `json:"base_model,omitempty"`
	ControlNetModel string `json:"controlnet_model,omitempty"`
}

// GenerateResponse is the worker's reply.
type GenerateResponse struct {
	Images []string `json:"images"` // base64 PNG
	Error  string   `json:"error,omitempty"`
}

// EncodeRequest converts a pipeline request to its wire form.
func EncodeRequest(req sdruntime.Request) (*GenerateRequest, error) {
	if req.Image == nil || req.Mask == nil || req.Control == nil {
		return nil, fmt.Errorf("imagegen: request is missing image, mask or control")
	}
	img, err := encodePNG(req.Image)
	if err != nil {
		return nil, err
	}
	mask, err := encodePNG(req.Mask)
	if err != nil {
		return nil, err
	}
	return &GenerateRequest{
		Image:             img,
		Mask:              mask,
		Control:           EncodeTensor(req.Control),
		Prompt:            req.Prompt,
		NegativePrompt:    req.NegativePrompt,
		Strength:          req.Strength,
		GuidanceScale:     req.GuidanceScale,
		Steps:             req.Steps,
		ConditioningScale: req.ConditioningScale,
		Seed:              req.Seed,
		Width:             req.Width,
		Height:            req.Height,
		BaseModel:         req.BaseModel,
		ControlNetModel:   req.ControlNetModel,
	}, nil
}

// EncodeTensor packs a control image as little-endian float32.
func EncodeTensor(c *sdruntime.ControlImage) ControlTensor {
	buf := make([]byte, 4*len(c.Data))
	for i, v := range c.Data {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return ControlTensor{
		Shape: c.Shape(),
		DType: "float32",
		Data:  base64.StdEncoding.EncodeToString(buf),
	}
}

// DecodeTensor is the inverse of EncodeTensor.
func DecodeTensor(t ControlTensor) (*sdruntime.ControlImage, error) {
	if len(t.Shape) != 4 || t.Shape[0] != 1 || t.Shape[1] != 3 {
		return nil, fmt.Errorf("imagegen: unexpected tensor shape %v", t.Shape)
	}
	raw, err := base64.StdEncoding.DecodeString(t.Data)
	if err != nil {
		return nil, fmt.Errorf("imagegen: decode tensor: %w", err)
	}
	h, w := t.Shape[2], t.Shape[3]
	if len(raw) != 4*3*w*h {
		return nil, fmt.Errorf("imagegen: tensor has %d bytes, want %d", len(raw), 4*3*w*h)
	}
	data := make([]float32, 3*w*h)
	for i := range data {
		data[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return &sdruntime.ControlImage{Width: w, Height: h, Data: data}, nil
}

// DecodeImages decodes the base64 PNGs of a response.
func DecodeImages(encoded []string) ([]image.Image, error) {
	images := make([]image.Image, 0, len(encoded))
	for i, s := range encoded {
		raw, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("imagegen: image %d: %w", i, err)
		}
		img, err := vision.DecodeImage(raw)
		if err != nil {
			return nil, fmt.Errorf("imagegen: image %d: %w", i, err)
		}
		images = append(images, img)
	}
	return images, nil
}

func encodePNG(img image.Image) (string, error) {
	b, err := vision.PNGBytes(img)
	if err != nil {
		return "", fmt.Errorf("imagegen: encode png: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
