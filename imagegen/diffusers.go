// diffusers.go implements DiffusersBackend, the HTTP bridge to a worker
// process hosting the diffusers ControlNet inpaint pipeline.
package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	"paintserver/sdruntime"
)

// maxResponseBytes bounds a worker reply.
const maxResponseBytes = 256 << 20

// DiffusersBackend posts requests to a diffusers worker.
//
// Thread Safety: DiffusersBackend is safe for concurrent use.
type DiffusersBackend struct {
	endpoint string
	client   *http.Client
}

// DiffusersConfig configures a DiffusersBackend.
type DiffusersConfig struct {
	// URL is the worker base URL, e.g. http://127.0.0.1:7861 (required)
	URL string

	// Timeout bounds one generation (default: 10 minutes)
	Timeout time.Duration

	// HTTPClient overrides the default client (optional)
	HTTPClient *http.Client
}

// NewDiffusersBackend creates a backend for the worker at cfg.URL.
func NewDiffusersBackend(cfg DiffusersConfig) (*DiffusersBackend, error) {
	if cfg.URL == "" {
		return nil, &GenerationError{Code: CodeConfig, Message: "diffusers worker URL is required"}
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Minute
		}
		client = &http.Client{Timeout: timeout}
	}
	return &DiffusersBackend{
		endpoint: strings.TrimRight(cfg.URL, "/") + "/generate",
		client:   client,
	}, nil
}

// Name implements sdruntime.Backend.
func (b *DiffusersBackend) Name() string {
	return "diffusers"
}

// Generate implements sdruntime.Backend.
func (b *DiffusersBackend) Generate(ctx context.Context, req sdruntime.Request) ([]image.Image, error) {
	wire, err := EncodeRequest(req)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("imagegen: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("imagegen: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, unavailable("diffusers worker unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, unavailable("reading worker response", err)
	}

	var out GenerateResponse
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode != http.StatusOK {
		msg := truncate(string(raw), 200)
		if decodeErr == nil && out.Error != "" {
			msg = out.Error
		}
		return nil, statusError(resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return nil, badResponse("worker reply is not JSON", decodeErr)
	}
	if len(out.Images) == 0 {
		return nil, badResponse("worker returned no images", nil)
	}

	images, err := DecodeImages(out.Images)
	if err != nil {
		return nil, badResponse("worker returned an undecodable image", err)
	}
	return images, nil
}

var _ sdruntime.Backend = (*DiffusersBackend)(nil)
