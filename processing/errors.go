package processing

import "errors"

var (
	ErrNotImplemented = errors.New("processing: superresolution is not implemented")
	ErrInvalidParams  = errors.New("processing: invalid parameters")
	ErrMaskRequired   = errors.New("processing: no mask provided for inpainting")
	ErrUnknownTask    = errors.New("processing: invalid task")
)
