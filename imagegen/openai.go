// openai.go implements OpenAIBackend on the OpenAI image edit endpoint.
//
// The edit API has no ControlNet conditioning, so the control image is ignored
// and inpainting is driven by a transparent-where-regenerated mask.
package imagegen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"net/http"
	"os"

	"github.com/sashabaranov/go-openai"

	"paintserver/sdruntime"
	"paintserver/vision"
)

const (
	// DefaultOpenAIModel is the only OpenAI model that supports masked edits.
	DefaultOpenAIModel = "dall-e-2"

	// editSide is the square size requests are resampled to.
	editSide = 1024

	// fallbackPrompt is sent when the caller gave none; the API requires one.
	fallbackPrompt = "fill in the masked region so it blends with its surroundings"
)

// OpenAIBackend generates through client.CreateEditImage.
//
// Thread Safety: OpenAIBackend is safe for concurrent use.
type OpenAIBackend struct {
	client *openai.Client
	model  string
}

// OpenAIConfig configures an OpenAIBackend.
type OpenAIConfig struct {
	// APIKey is the OpenAI API key (required)
	APIKey string

	// BaseURL is the API endpoint (default: https://api.openai.com/v1)
	BaseURL string

	// Model is the edit model (default: dall-e-2)
	Model string

	// HTTPClient overrides the default client (optional)
	HTTPClient *http.Client
}

// NewOpenAIBackend creates the backend.
func NewOpenAIBackend(cfg OpenAIConfig) (*OpenAIBackend, error) {
	if cfg.APIKey == "" {
		return nil, &GenerationError{Code: CodeConfig, Message: "OpenAI API key is required"}
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		clientConfig.HTTPClient = cfg.HTTPClient
	}
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIBackend{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}, nil
}

// Name implements sdruntime.Backend.
func (b *OpenAIBackend) Name() string {
	return "openai"
}

// Model returns the configured model name.
func (b *OpenAIBackend) Model() string {
	return b.model
}

// Generate implements sdruntime.Backend.
func (b *OpenAIBackend) Generate(ctx context.Context, req sdruntime.Request) ([]image.Image, error) {
	if req.Image == nil || req.Mask == nil {
		return nil, fmt.Errorf("imagegen: request is missing image or mask")
	}
	square := vision.ResizeImage(req.Image, editSide, editSide)
	squareMask := vision.ResizeMask(req.Mask, editSide, editSide)

	imageFile, err := tempPNG("paint-image-*.png", square)
	if err != nil {
		return nil, err
	}
	defer removeTemp(imageFile)

	maskFile, err := tempPNG("paint-mask-*.png", EditMask(square, squareMask))
	if err != nil {
		return nil, err
	}
	defer removeTemp(maskFile)

	prompt := req.Prompt
	if prompt == "" {
		prompt = fallbackPrompt
	}

	resp, err := b.client.CreateEditImage(ctx, openai.ImageEditRequest{
		Image:          imageFile,
		Mask:           maskFile,
		Prompt:         prompt,
		Model:          b.model,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, classifyOpenAIError(err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, badResponse("OpenAI returned no image data", nil)
	}

	raw, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, badResponse("OpenAI image is not base64", err)
	}
	out, err := vision.DecodeImage(raw)
	if err != nil {
		return nil, badResponse("OpenAI image is not decodable", err)
	}
	return []image.Image{vision.ResizeImage(out, req.Width, req.Height)}, nil
}

// EditMask builds the RGBA mask the edit endpoint expects: img where the mask
// keeps content, fully transparent where mask > 127.
func EditMask(img *image.RGBA, mask *image.Gray) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if mask.GrayAt(mask.Rect.Min.X+x, mask.Rect.Min.Y+y).Y > 127 {
				out.SetRGBA(x, y, color.RGBA{})
				continue
			}
			c := img.RGBAAt(b.Min.X+x, b.Min.Y+y)
			c.A = 255
			out.SetRGBA(x, y, c)
		}
	}
	return out
}

func classifyOpenAIError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		genErr := statusError(apiErr.HTTPStatusCode, apiErr.Message)
		genErr.Cause = err
		return genErr
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		genErr := statusError(reqErr.HTTPStatusCode, "request failed")
		genErr.Cause = err
		return genErr
	}
	return unavailable("OpenAI request failed", err)
}

// tempPNG writes img to a temp file and rewinds it for reading.
func tempPNG(pattern string, img image.Image) (*os.File, error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return nil, fmt.Errorf("imagegen: create temp file: %w", err)
	}
	if err := vision.EncodePNG(f, img); err != nil {
		removeTemp(f)
		return nil, fmt.Errorf("imagegen: write temp png: %w", err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		removeTemp(f)
		return nil, fmt.Errorf("imagegen: rewind temp png: %w", err)
	}
	return f, nil
}

func removeTemp(f *os.File) {
	f.Close()
	os.Remove(f.Name())
}

var _ sdruntime.Backend = (*OpenAIBackend)(nil)
