package imagegen

import (
	"context"
	"image"

	"paintserver/sdruntime"
)

// NullBackend returns the prepared input image as the result.
type NullBackend struct{}

// Name implements sdruntime.Backend.
func (NullBackend) Name() string { return "null" }

// Generate implements sdruntime.Backend.
func (NullBackend) Generate(ctx context.Context, req sdruntime.Request) ([]image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []image.Image{req.Image}, nil
}

var _ sdruntime.Backend = NullBackend{}
