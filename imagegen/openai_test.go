package imagegen

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewOpenAIBackend(t *testing.T) {
	if _, err := NewOpenAIBackend(OpenAIConfig{}); err == nil {
		t.Error("expected error for empty API key")
	}
	b, err := NewOpenAIBackend(OpenAIConfig{APIKey: "test-key"})
	if err != nil {
		t.Fatal(err)
	}
	if b.Model() != DefaultOpenAIModel || b.Name() != "openai" {
		t.Errorf("Model()/Name() = %s/%s", b.Model(), b.Name())
	}
}

func TestOpenAIBackendGenerate(t *testing.T) {
	result := image.NewRGBA(image.Rect(0, 0, 64, 64))
	var sawPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/images/edits") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
		}
		sawPrompt = r.FormValue("prompt")
		if _, _, err := r.FormFile("mask"); err != nil {
			t.Errorf("mask part missing: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"created": 1,
			"data":    []map[string]string{{"b64_json": pngBase64(t, result)}},
		})
	}))
	defer server.Close()

	b, err := NewOpenAIBackend(OpenAIConfig{APIKey: "test-key", BaseURL: server.URL + "/v1"})
	if err != nil {
		t.Fatal(err)
	}
	req := testRequest(t, 24, 16)
	req.Prompt = ""
	images, err := b.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if got := images[0].Bounds(); got.Dx() != 24 || got.Dy() != 16 {
		t.Errorf("result size = %v, want 24x16", got)
	}
	if sawPrompt != fallbackPrompt {
		t.Errorf("prompt = %q, want fallback", sawPrompt)
	}
}

func TestOpenAIBackendAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	}))
	defer server.Close()

	b, _ := NewOpenAIBackend(OpenAIConfig{APIKey: "test-key", BaseURL: server.URL + "/v1"})
	_, err := b.Generate(context.Background(), testRequest(t, 8, 8))
	if !IsRetryable(err) {
		t.Errorf("Generate() error = %v, want retryable GenerationError", err)
	}
}

func TestEditMask(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 9, A: 255})
	img.SetRGBA(1, 0, color.RGBA{G: 9, A: 255})
	mask := image.NewGray(image.Rect(0, 0, 2, 1))
	mask.SetGray(1, 0, color.Gray{Y: 255})

	out := EditMask(img, mask)
	if got := out.RGBAAt(0, 0); got.A != 255 || got.R != 9 {
		t.Errorf("kept pixel = %v", got)
	}
	if got := out.RGBAAt(1, 0); got.A != 0 {
		t.Errorf("masked pixel alpha = %d, want 0", got.A)
	}
}
