package sdruntime

import (
	"context"
	"image"
)

// ControlImage is the ControlNet inpaint condition in NCHW layout with a
// batch of one: Data holds three planes of Width*Height values each.
// Kept pixels carry RGB/255 in [0,1]; masked pixels are -1 in every channel.
type ControlImage struct {
	Width  int
	Height int
	Data   []float32
}

// Shape returns the tensor shape [1, 3, H, W].
func (c *ControlImage) Shape() []int {
	return []int{1, 3, c.Height, c.Width}
}

// At returns the value of channel ch at (x, y).
func (c *ControlImage) At(ch, x, y int) float32 {
	return c.Data[ch*c.Width*c.Height+y*c.Width+x]
}

// Request is what a Backend receives for one generation.
type Request struct {
	Image   *image.RGBA // Resized to Width×Height
	Mask    *image.Gray // Resized to Width×Height; white means regenerate
	Control *ControlImage

	Prompt         string
	NegativePrompt string // Already carries NegativeSuffix

	Strength          float64
	GuidanceScale     float64
	Steps             int
	ConditioningScale float64
	Seed              int64

	Width  int
	Height int

	BaseModel       string
	ControlNetModel string
}

// Backend runs the diffusion model. Implementations must be safe for
// concurrent use; the Pipeline bounds how many calls are in flight.
type Backend interface {
	Name() string
	Generate(ctx context.Context, req Request) ([]image.Image, error)
}

// BackendFactory creates the Backend on first use.
type BackendFactory func() (Backend, error)
