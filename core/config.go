package core

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Backend kinds accepted by PAINT_BACKEND.
const (
	BackendDiffusers = "diffusers"
	BackendOpenAI    = "openai"
	BackendNull      = "null"
)

// Default model identifiers forwarded to the diffusers worker.
const (
	DefaultBaseModel       = "runwayml/stable-diffusion-v1-5"
	DefaultControlNetModel = "lllyasviel/control_v11p_sd15_inpaint"
)

// Config holds all configuration values
type Config struct {
	// Runtime environment ("development" or "production")
	Environment string

	// HTTP server
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration // Upper bound for a single /process call
	MaxUploadBytes int64

	// Diffusion backend
	Backend         string // diffusers, openai or null
	BackendURL      string // Base URL of the diffusers worker
	OpenAIAPIKey    string
	OpenAIBaseURL   string // Empty uses the public API
	OpenAIModel     string
	BaseModel       string
	ControlNetModel string

	// Pipeline
	MaxConcurrent  int           // Concurrent inference slots
	AcquireTimeout time.Duration // How long a request may queue for a slot
	MaxDimension   int           // Longest side after normalization
	DebugDir       string        // Empty disables diagnostic image output
	DefaultsFile   string        // Optional YAML overriding task defaults

	// Job history (empty path disables persistence)
	DBPath          string
	DBRetentionDays int // 0 keeps every job

	// Result archive (S3 compatible, disabled when endpoint is empty)
	ArchiveEndpoint  string
	ArchiveAccessKey string
	ArchiveSecretKey string
	ArchiveBucket    string
	ArchiveSecure    bool

	// Access control
	APITokenHash string // bcrypt hash; empty disables token auth
	RateLimit    int    // Requests per window per client IP, 0 disables
	RateWindow   time.Duration

	// Logging
	LogLevel string
	LogFile  string
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// ArchiveEnabled reports whether results should be uploaded to object storage.
func (c *Config) ArchiveEnabled() bool {
	return c.ArchiveEndpoint != ""
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoadConfig loads configuration from PAINT_* environment variables.
// Callers are expected to have loaded .env beforehand (see main).
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Environment: strings.ToLower(GetEnvOrDefault("PAINT_ENV", "production")),

		Host:           GetEnvOrDefault("PAINT_HOST", "0.0.0.0"),
		Port:           ParseIntEnv("PAINT_PORT", 5000),
		ReadTimeout:    ParseDurationEnv("PAINT_READ_TIMEOUT", 30*time.Second),
		RequestTimeout: ParseDurationEnv("PAINT_REQUEST_TIMEOUT", 10*time.Minute),
		MaxUploadBytes: int64(ParseIntEnv("PAINT_MAX_UPLOAD_MB", 32)) << 20,

		Backend:         strings.ToLower(GetEnvOrDefault("PAINT_BACKEND", BackendDiffusers)),
		BackendURL:      GetEnvOrDefault("PAINT_BACKEND_URL", "http://127.0.0.1:7860"),
		OpenAIAPIKey:    GetEnvOrDefault("PAINT_OPENAI_API_KEY", GetEnvOrDefault("OPENAI_API_KEY", "")),
		OpenAIBaseURL:   GetEnvOrDefault("PAINT_OPENAI_BASE_URL", ""),
		OpenAIModel:     GetEnvOrDefault("PAINT_OPENAI_MODEL", "dall-e-2"),
		BaseModel:       GetEnvOrDefault("PAINT_BASE_MODEL", DefaultBaseModel),
		ControlNetModel: GetEnvOrDefault("PAINT_CONTROLNET_MODEL", DefaultControlNetModel),

		MaxConcurrent:  ParseIntEnv("PAINT_MAX_CONCURRENT", 1),
		AcquireTimeout: ParseDurationEnv("PAINT_ACQUIRE_TIMEOUT", 2*time.Minute),
		MaxDimension:   ParseIntEnv("PAINT_MAX_DIMENSION", 1024),
		DebugDir:       GetEnvOrDefault("PAINT_DEBUG_DIR", ""),
		DefaultsFile:   GetEnvOrDefault("PAINT_DEFAULTS_FILE", ""),

		DBPath:          GetEnvOrDefault("PAINT_DB_PATH", "data/paint.db"),
		DBRetentionDays: ParseIntEnv("PAINT_DB_RETENTION_DAYS", 30),

		ArchiveEndpoint:  GetEnvOrDefault("PAINT_ARCHIVE_ENDPOINT", ""),
		ArchiveAccessKey: GetEnvOrDefault("PAINT_ARCHIVE_ACCESS_KEY", ""),
		ArchiveSecretKey: GetEnvOrDefault("PAINT_ARCHIVE_SECRET_KEY", ""),
		ArchiveBucket:    GetEnvOrDefault("PAINT_ARCHIVE_BUCKET", "paint-results"),
		ArchiveSecure:    ParseBoolEnv("PAINT_ARCHIVE_SECURE", true),

		APITokenHash: GetEnvOrDefault("PAINT_API_TOKEN_HASH", ""),
		RateLimit:    ParseIntEnv("PAINT_RATE_LIMIT", 60),
		RateWindow:   ParseDurationEnv("PAINT_RATE_WINDOW", time.Minute),

		LogLevel: GetEnvOrDefault("PAINT_LOG_LEVEL", "info"),
		LogFile:  GetEnvOrDefault("PAINT_LOG_FILE", "paintserver.log"),
	}

	// The write deadline covers the whole inference, so it trails the request timeout.
	cfg.WriteTimeout = ParseDurationEnv("PAINT_WRITE_TIMEOUT", cfg.RequestTimeout+30*time.Second)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return ErrInvalidValue("PAINT_PORT", fmt.Sprint(c.Port), "must be between 1 and 65535")
	}

	switch c.Backend {
	case BackendDiffusers:
		u, err := url.Parse(c.BackendURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return ErrInvalidValue("PAINT_BACKEND_URL", c.BackendURL, "must be an absolute http(s) URL")
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return ErrInvalidValue("PAINT_BACKEND_URL", c.BackendURL, "scheme must be http or https")
		}
	case BackendOpenAI:
		if c.OpenAIAPIKey == "" {
			return ErrMissingAuth("openai")
		}
	case BackendNull:
	default:
		return ErrInvalidValue("PAINT_BACKEND", c.Backend, "must be one of diffusers, openai, null")
	}

	if c.MaxConcurrent < 1 {
		return ErrInvalidValue("PAINT_MAX_CONCURRENT", fmt.Sprint(c.MaxConcurrent), "must be at least 1")
	}
	if c.MaxDimension < 64 || c.MaxDimension%8 != 0 {
		return ErrInvalidValue("PAINT_MAX_DIMENSION", fmt.Sprint(c.MaxDimension), "must be a multiple of 8 and at least 64")
	}
	if c.RequestTimeout <= 0 {
		return ErrInvalidValue("PAINT_REQUEST_TIMEOUT", c.RequestTimeout.String(), "must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return ErrInvalidValue("PAINT_MAX_UPLOAD_MB", fmt.Sprint(c.MaxUploadBytes>>20), "must be positive")
	}
	if c.DBRetentionDays < 0 {
		return ErrInvalidValue("PAINT_DB_RETENTION_DAYS", fmt.Sprint(c.DBRetentionDays), "must not be negative")
	}
	if c.RateLimit < 0 {
		return ErrInvalidValue("PAINT_RATE_LIMIT", fmt.Sprint(c.RateLimit), "must not be negative")
	}

	if c.ArchiveEnabled() {
		if c.ArchiveAccessKey == "" || c.ArchiveSecretKey == "" {
			return ErrMissingAuth("archive")
		}
		if c.ArchiveBucket == "" {
			return ErrMissingConfig("PAINT_ARCHIVE_BUCKET")
		}
	}

	if c.APITokenHash != "" && !strings.HasPrefix(c.APITokenHash, "$2") {
		return ErrInvalidValue("PAINT_API_TOKEN_HASH", "[REDACTED]", "must be a bcrypt hash")
	}

	return nil
}
