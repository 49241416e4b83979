package webui

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"paintserver/imagegen"
	"paintserver/processing"
	"paintserver/sdruntime"
	"paintserver/shutdown"
)

// Client-facing messages for request validation failures.
const (
	msgNoImage        = "No image provided"
	msgNoMask         = "No mask provided for inpainting"
	msgInvalidTask    = "Invalid task"
	msgShuttingDown   = "Server is shutting down"
	msgBusy           = "Server busy, try again later"
	msgTimeout        = "Processing timed out"
	msgBackendFailure = "Diffusion backend failed"
	msgInternal       = "Internal server error"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorStatus maps a processing failure to an HTTP status and message.
func errorStatus(err error) (int, string) {
	var genErr *imagegen.GenerationError
	switch {
	case errors.Is(err, processing.ErrNotImplemented):
		return http.StatusNotImplemented, err.Error()
	case errors.Is(err, processing.ErrMaskRequired):
		return http.StatusBadRequest, msgNoMask
	case errors.Is(err, processing.ErrUnknownTask):
		return http.StatusBadRequest, msgInvalidTask
	case errors.Is(err, processing.ErrInvalidParams),
		errors.Is(err, sdruntime.ErrInvalidParams),
		errors.Is(err, sdruntime.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, shutdown.ErrTrackerClosed):
		return http.StatusServiceUnavailable, msgShuttingDown
	case sdruntime.IsOverloaded(err):
		return http.StatusServiceUnavailable, msgBusy
	case errors.Is(err, sdruntime.ErrBackendInit):
		return http.StatusServiceUnavailable, msgBackendFailure + ": not available"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, msgTimeout
	case errors.As(err, &genErr):
		if genErr.Retryable {
			return http.StatusServiceUnavailable, msgBackendFailure + ": " + genErr.Message
		}
		return http.StatusBadGateway, msgBackendFailure + ": " + genErr.Message
	default:
		return http.StatusInternalServerError, msgInternal
	}
}
