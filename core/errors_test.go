package core

import (
	"fmt"
	"strings"
	"testing"
)

func TestConfigError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ConfigError
		contains []string
	}{
		{
			name:     "error with action",
			err:      &ConfigError{Code: "TEST_CODE", Message: "Test message", Action: "Take this action"},
			contains: []string{"Test message", "Take this action"},
		},
		{
			name:     "error without action",
			err:      &ConfigError{Code: "TEST_CODE", Message: "Test message only"},
			contains: []string{"Test message only"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errStr := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(errStr, s) {
					t.Errorf("ConfigError.Error() = %q, expected to contain %q", errStr, s)
				}
			}
		})
	}
}

func TestConfigErrorConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *ConfigError
		wantCode string
		contains string
	}{
		{"env file", ErrEnvFileMissing(".env"), ErrCodeEnvFileMissing, ".env"},
		{"invalid value", ErrInvalidValue("PAINT_PORT", "0", "must be positive"), ErrCodeInvalidValue, "PAINT_PORT"},
		{"openai auth", ErrMissingAuth("openai"), ErrCodeMissingAuth, "PAINT_OPENAI_API_KEY"},
		{"archive auth", ErrMissingAuth("archive"), ErrCodeMissingAuth, "PAINT_ARCHIVE_ACCESS_KEY"},
		{"other auth", ErrMissingAuth("thing"), ErrCodeMissingAuth, "thing"},
		{"missing config", ErrMissingConfig("PAINT_ARCHIVE_BUCKET"), ErrCodeMissingConfig, "PAINT_ARCHIVE_BUCKET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.wantCode)
			}
			if !strings.Contains(tt.err.Error(), tt.contains) {
				t.Errorf("Error() = %q, expected to contain %q", tt.err.Error(), tt.contains)
			}
		})
	}
}

func TestIsConfigError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("startup: %w", ErrMissingConfig("X"))

	cfgErr, ok := IsConfigError(wrapped)
	if !ok {
		t.Fatal("IsConfigError() = false for wrapped ConfigError, want true")
	}
	if cfgErr.Code != ErrCodeMissingConfig {
		t.Errorf("Code = %q, want %q", cfgErr.Code, ErrCodeMissingConfig)
	}
	if got := GetErrorCode(fmt.Errorf("plain")); got != "" {
		t.Errorf("GetErrorCode(plain) = %q, want empty", got)
	}
}
