// Package webui serves the HTTP facade: image upload processing, health,
// the model descriptor, the job history and task statistics.
package webui

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"time"

	"go.uber.org/zap"

	"paintserver/db"
	"paintserver/logging"
	"paintserver/metrics"
	"paintserver/processing"
	"paintserver/sdruntime"
	"paintserver/webui/auth"
)

// Processor runs one task on decoded inputs.
type Processor interface {
	Process(ctx context.Context, task processing.Task, img, mask image.Image, params *processing.RawParams) (*sdruntime.Result, error)
}

// JobStore persists and lists job records.
type JobStore interface {
	InsertJob(ctx context.Context, job db.Job) (bool, error)
	ListRecentJobs(ctx context.Context, limit int) ([]db.Job, error)
}

// ResultArchive uploads encoded results.
type ResultArchive interface {
	SavePNG(ctx context.Context, key string, data []byte) (string, error)
}

// TaskStats aggregates finished tasks for the stats endpoint.
type TaskStats interface {
	RecordTask(task metrics.TaskRecord)
	Snapshot(recent int, pool *metrics.PoolStatus) metrics.Snapshot
}

// OperationTracker runs a function as a tracked in-flight operation.
type OperationTracker interface {
	WrapOperation(ctx context.Context, name string, fn func(context.Context) error) error
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
	MaxUploadBytes  int64

	TokenHash  string // bcrypt; empty disables auth
	RateLimit  int    // per client per window, 0 disables
	RateWindow time.Duration

	Backend         string
	BaseModel       string
	ControlNetModel string

	LogSkipPaths []string
}

// DefaultServerConfig returns the defaults used by LoadConfig.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "0.0.0.0",
		Port:            5000,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    10*time.Minute + 30*time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		RequestTimeout:  10 * time.Minute,
		MaxUploadBytes:  32 << 20,
		RateWindow:      time.Minute,
		LogSkipPaths:    []string{"/health"},
	}
}

// Dependencies are the collaborators behind the handlers. Only Processor is
// required.
type Dependencies struct {
	Processor  Processor
	Jobs       JobStore
	Archive    ResultArchive
	Operations OperationTracker
	Stats      TaskStats
	Pool       func() metrics.PoolStatus
}

// Server is the paint HTTP server.
type Server struct {
	httpServer  *http.Server
	mux         *http.ServeMux
	config      ServerConfig
	logger      *logging.Logger
	deps        Dependencies
	limiter     *RateLimiter
	auth        *auth.BearerAuth
	modelsInfo  ModelsInfo
	startedAt   time.Time
	newJobID    func() string
	archiveWait time.Duration
}

// NewServer wires routes and middleware.
func NewServer(config ServerConfig, deps Dependencies, logger *logging.Logger) (*Server, error) {
	if deps.Processor == nil {
		return nil, errors.New("webui: processor is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	defaults := DefaultServerConfig()
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = defaults.RequestTimeout
	}
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = defaults.MaxUploadBytes
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = defaults.ShutdownTimeout
	}

	s := &Server{
		mux:         http.NewServeMux(),
		config:      config,
		logger:      logger.Named("webui"),
		deps:        deps,
		limiter:     NewRateLimiter(config.RateLimit, config.RateWindow),
		modelsInfo:  NewModelsInfo(config.Backend, config.BaseModel, config.ControlNetModel),
		startedAt:   time.Now(),
		newJobID:    newJobID,
		archiveWait: 30 * time.Second,
	}

	if config.TokenHash != "" {
		a, err := auth.NewBearerAuth(config.TokenHash, logger, "/health")
		if err != nil {
			return nil, fmt.Errorf("webui: %w", err)
		}
		s.auth = a
	}

	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	s.logger.Info("Server created",
		zap.String("addr", addr),
		zap.Bool("auth_enabled", s.auth != nil),
		zap.Int("rate_limit", config.RateLimit),
		zap.Bool("jobs_enabled", deps.Jobs != nil),
		zap.Bool("archive_enabled", deps.Archive != nil),
		zap.Bool("stats_enabled", deps.Stats != nil),
	)
	return s, nil
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /process", s.handleProcess)
	s.mux.HandleFunc("GET /models/info", s.handleModelsInfo)
	s.mux.HandleFunc("GET /jobs", s.handleJobs)
	s.mux.HandleFunc("GET /stats", s.handleStats)
}

// Handler returns the mux wrapped in middleware, outermost first:
// recovery, logging, rate limit, auth.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	if s.auth != nil {
		h = s.auth.Middleware(h)
	}
	h = s.limiter.Middleware(h, "/health")
	h = NewLoggingMiddleware(s.logger, s.config.LogSkipPaths...).Handler(h)
	return RecoveryMiddleware(s.logger, h)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "server running",
	})
}

// Start listens until Shutdown. It returns nil on a clean stop.
func (s *Server) Start(ctx context.Context) error {
	s.limiter.StartCleanup(ctx, 5*time.Minute)
	s.logger.Info("Server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("webui: listen: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for active ones.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("webui: shutdown: %w", err)
	}
	s.logger.Info("Server stopped", zap.Duration("uptime", time.Since(s.startedAt)))
	return nil
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}
