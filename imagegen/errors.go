// errors.go defines the error type shared by all backends.
package imagegen

import (
	"errors"
	"fmt"
)

// Error codes carried by GenerationError.
const (
	CodeUnavailable = "BACKEND_UNAVAILABLE" // Network failure or 5xx
	CodeRateLimited = "RATE_LIMITED"        // 429 from the backend
	CodeRejected    = "REQUEST_REJECTED"    // 4xx other than 429
	CodeBadResponse = "BAD_RESPONSE"        // Undecodable reply
	CodeConfig      = "BACKEND_CONFIG"      // Backend cannot be constructed
)

// GenerationError describes a failed backend call.
type GenerationError struct {
	Code      string
	Message   string
	Retryable bool
	Cause     error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("imagegen: %s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("imagegen: %s: %s", e.Code, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// AsGenerationError returns the GenerationError in err's chain, if any.
func AsGenerationError(err error) (*GenerationError, bool) {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr, true
	}
	return nil, false
}

// IsRetryable reports whether err is a GenerationError marked retryable.
func IsRetryable(err error) bool {
	genErr, ok := AsGenerationError(err)
	return ok && genErr.Retryable
}

func unavailable(msg string, cause error) *GenerationError {
	return &GenerationError{Code: CodeUnavailable, Message: msg, Retryable: true, Cause: cause}
}

func badResponse(msg string, cause error) *GenerationError {
	return &GenerationError{Code: CodeBadResponse, Message: msg, Cause: cause}
}

// statusError classifies an HTTP status returned by a backend.
func statusError(status int, body string) *GenerationError {
	switch {
	case status == 429:
		return &GenerationError{Code: CodeRateLimited, Message: body, Retryable: true}
	case status >= 500:
		return &GenerationError{Code: CodeUnavailable, Message: fmt.Sprintf("status %d: %s", status, body), Retryable: true}
	default:
		return &GenerationError{Code: CodeRejected, Message: fmt.Sprintf("status %d: %s", status, body)}
	}
}
