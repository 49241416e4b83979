package core

import (
	"os"
	"testing"
	"time"
)

func TestGetEnvOrDefault(t *testing.T) {
	const testKey = "TEST_PAINT_GET_ENV"

	tests := []struct {
		name         string
		envValue     string
		setEnv       bool
		defaultValue string
		want         string
	}{
		{name: "returns env value when set", envValue: "custom", setEnv: true, defaultValue: "default", want: "custom"},
		{name: "returns default when not set", defaultValue: "default", want: "default"},
		{name: "returns default when blank", envValue: "   ", setEnv: true, defaultValue: "default", want: "default"},
		{name: "trims surrounding space", envValue: " value ", setEnv: true, defaultValue: "default", want: "value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Unsetenv(testKey)
			if tt.setEnv {
				t.Setenv(testKey, tt.envValue)
			}
			if got := GetEnvOrDefault(testKey, tt.defaultValue); got != tt.want {
				t.Errorf("GetEnvOrDefault() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseIntEnv(t *testing.T) {
	const testKey = "TEST_PAINT_INT_ENV"

	tests := []struct {
		name     string
		envValue string
		want     int
	}{
		{name: "valid integer", envValue: "42", want: 42},
		{name: "negative integer", envValue: "-3", want: -3},
		{name: "invalid falls back", envValue: "forty", want: 7},
		{name: "empty falls back", envValue: "", want: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(testKey, tt.envValue)
			if got := ParseIntEnv(testKey, 7); got != tt.want {
				t.Errorf("ParseIntEnv() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseFloat64Env(t *testing.T) {
	const testKey = "TEST_PAINT_FLOAT_ENV"

	t.Setenv(testKey, "0.95")
	if got := ParseFloat64Env(testKey, 1); got != 0.95 {
		t.Errorf("ParseFloat64Env() = %v, want 0.95", got)
	}

	t.Setenv(testKey, "abc")
	if got := ParseFloat64Env(testKey, 1.5); got != 1.5 {
		t.Errorf("ParseFloat64Env() = %v, want 1.5", got)
	}
}

func TestParseBoolEnv(t *testing.T) {
	const testKey = "TEST_PAINT_BOOL_ENV"

	tests := []struct {
		envValue     string
		defaultValue bool
		want         bool
	}{
		{"true", false, true},
		{"YES", false, true},
		{"1", false, true},
		{"on", false, true},
		{"false", true, false},
		{"Off", true, false},
		{"0", true, false},
		{"maybe", true, true},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.envValue, func(t *testing.T) {
			t.Setenv(testKey, tt.envValue)
			if got := ParseBoolEnv(testKey, tt.defaultValue); got != tt.want {
				t.Errorf("ParseBoolEnv(%q) = %v, want %v", tt.envValue, got, tt.want)
			}
		})
	}
}

func TestParseDurationEnv(t *testing.T) {
	const testKey = "TEST_PAINT_DURATION_ENV"

	tests := []struct {
		name     string
		envValue string
		want     time.Duration
	}{
		{name: "bare seconds", envValue: "90", want: 90 * time.Second},
		{name: "duration string", envValue: "2m", want: 2 * time.Minute},
		{name: "compound duration", envValue: "1m30s", want: 90 * time.Second},
		{name: "invalid falls back", envValue: "soon", want: 5 * time.Second},
		{name: "empty falls back", envValue: "", want: 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(testKey, tt.envValue)
			if got := ParseDurationEnv(testKey, 5*time.Second); got != tt.want {
				t.Errorf("ParseDurationEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}
