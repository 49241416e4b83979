package imagegen

import (
	"fmt"

	"paintserver/core"
	"paintserver/sdruntime"
)

// NewBackend creates the backend named by cfg.Backend.
func NewBackend(cfg *core.Config) (sdruntime.Backend, error) {
	if cfg == nil {
		return nil, fmt.Errorf("imagegen: config cannot be nil")
	}
	switch cfg.Backend {
	case core.BackendDiffusers:
		b, err := NewDiffusersBackend(DiffusersConfig{
			URL:     cfg.BackendURL,
			Timeout: cfg.RequestTimeout,
		})
		if err != nil {
			return nil, err
		}
		return b, nil
	case core.BackendOpenAI:
		b, err := NewOpenAIBackend(OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		})
		if err != nil {
			return nil, err
		}
		return b, nil
	case core.BackendNull:
		return NullBackend{}, nil
	default:
		return nil, &GenerationError{Code: CodeConfig, Message: fmt.Sprintf("unknown backend %q", cfg.Backend)}
	}
}

// Factory adapts NewBackend to sdruntime.BackendFactory.
func Factory(cfg *core.Config) sdruntime.BackendFactory {
	return func() (sdruntime.Backend, error) {
		return NewBackend(cfg)
	}
}
