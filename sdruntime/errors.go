package sdruntime

import "errors"

// Sentinel errors for pipeline operations.
var (
	// Slot pool errors
	ErrPoolClosed     = errors.New("sdruntime: slot pool is closed")
	ErrAcquireTimeout = errors.New("sdruntime: timeout acquiring inference slot")

	// Input errors
	ErrInvalidParams = errors.New("sdruntime: invalid pipeline parameters")
	ErrInvalidInput  = errors.New("sdruntime: invalid image or mask")

	// Backend errors
	ErrBackendInit = errors.New("sdruntime: backend initialization failed")
	ErrNoOutput    = errors.New("sdruntime: backend returned no images")
)
