package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"paintserver/archive"
	"paintserver/core"
	"paintserver/db"
	"paintserver/imagegen"
	"paintserver/logging"
	"paintserver/metrics"
	"paintserver/processing"
	"paintserver/sdruntime"
	"paintserver/shutdown"
	"paintserver/webui"
)

// App holds the wired server components.
type App struct {
	config   *core.Config
	logger   *logging.Logger
	manager  *shutdown.Manager
	pipeline *sdruntime.Pipeline
	database *db.Database
	jobs     *db.Repository
	writer   *db.AsyncWriter
	archive  *archive.Store
	stats    *metrics.Store
	server   *webui.Server
}

// newApp builds every component from cfg and registers its shutdown hook.
// On error, hooks registered so far still release what was opened.
func newApp(cfg *core.Config, logger *logging.Logger, mgr *shutdown.Manager) (*App, error) {
	app := &App{config: cfg, logger: logger, manager: mgr}

	defaults := processing.BuiltinDefaults()
	if cfg.DefaultsFile != "" {
		d, err := processing.LoadDefaults(cfg.DefaultsFile)
		if err != nil {
			return nil, err
		}
		defaults = d
		logger.Info("Loaded task defaults", zap.String("file", cfg.DefaultsFile))
	}

	app.pipeline = sdruntime.NewPipeline(sdruntime.PipelineConfig{
		MaxConcurrent:   cfg.MaxConcurrent,
		AcquireTimeout:  cfg.AcquireTimeout,
		MaxDimension:    cfg.MaxDimension,
		DebugDir:        cfg.DebugDir,
		BaseModel:       cfg.BaseModel,
		ControlNetModel: cfg.ControlNetModel,
	}, imagegen.Factory(cfg), logger)
	mgr.Register("slot-pool", shutdown.PrioritySlotPool, func(ctx context.Context) error {
		if err := app.pipeline.Pool().Shutdown(ctx); err != nil {
			return err
		}
		return app.pipeline.Close()
	})
	mgr.Register("temp-images", shutdown.PriorityTempFiles,
		shutdown.RemoveTempFiles(logger, os.TempDir(), shutdown.TempImagePatterns...))

	app.stats = metrics.NewStore(metrics.DefaultHistoryCapacity, core.Version, time.Now())
	deps := webui.Dependencies{
		Processor:  processing.NewImageProcessor(app.pipeline, defaults, logger),
		Operations: mgr,
		Stats:      app.stats,
		Pool:       app.poolStatus,
	}

	if cfg.DBPath != "" {
		if err := app.openJobs(); err != nil {
			return nil, err
		}
		deps.Jobs = app.jobs
	}

	if cfg.ArchiveEnabled() {
		if err := app.openArchive(); err != nil {
			return nil, err
		}
		deps.Archive = app.archive
	}

	server, err := webui.NewServer(webui.ServerConfig{
		Host:            cfg.Host,
		Port:            cfg.Port,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		RequestTimeout:  cfg.RequestTimeout,
		MaxUploadBytes:  cfg.MaxUploadBytes,
		TokenHash:       cfg.APITokenHash,
		RateLimit:       cfg.RateLimit,
		RateWindow:      cfg.RateWindow,
		Backend:         cfg.Backend,
		BaseModel:       cfg.BaseModel,
		ControlNetModel: cfg.ControlNetModel,
		LogSkipPaths:    []string{"/health"},
	}, deps, logger)
	if err != nil {
		return nil, err
	}
	app.server = server
	mgr.Register("http-server", shutdown.PriorityHTTPServer, server.Shutdown)

	mgr.Register("logger", shutdown.PriorityLogger, func(ctx context.Context) error {
		_ = logger.Sync()
		return nil
	})
	return app, nil
}

func (a *App) openJobs() error {
	database, err := db.Open(a.config.DBPath)
	if err != nil {
		return fmt.Errorf("open job database: %w", err)
	}
	a.database = database
	a.manager.Register("database", shutdown.PriorityDatabase, core.CloserFunc(database.Close))

	direct := db.NewRepository(database, nil)
	a.writer = db.NewAsyncWriter(direct.CreateAsyncWriteHandler(), db.DefaultChannelCapacity, func(op db.WriteOperation, err error) {
		a.logger.Warn("Async job write failed", zap.Error(err))
	})
	a.writer.Start()
	a.manager.Register("async-writer", shutdown.PriorityAsyncWriter, a.writer.Shutdown)
	a.jobs = db.NewRepository(database, a.writer)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	removed, err := a.jobs.Cleanup(ctx, a.config.DBRetentionDays)
	if err != nil {
		a.logger.Warn("Job cleanup failed", zap.Error(err))
	} else if removed > 0 {
		a.logger.Info("Removed expired jobs", zap.Int64("count", removed), zap.Int("retention_days", a.config.DBRetentionDays))
	}
	a.logger.Info("Job history enabled", zap.String("path", database.Path()))
	return nil
}

func (a *App) openArchive() error {
	store, err := archive.NewMinioStore(archive.Config{
		Endpoint:  a.config.ArchiveEndpoint,
		AccessKey: a.config.ArchiveAccessKey,
		SecretKey: a.config.ArchiveSecretKey,
		Bucket:    a.config.ArchiveBucket,
		Secure:    a.config.ArchiveSecure,
	})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.EnsureBucket(ctx); err != nil {
		// The store may come up later; uploads fail soft.
		a.logger.Warn("Archive bucket check failed", zap.String("bucket", store.Bucket()), zap.Error(err))
	}
	a.archive = store
	a.logger.Info("Result archive enabled",
		zap.String("endpoint", a.config.ArchiveEndpoint),
		zap.String("bucket", store.Bucket()),
	)
	return nil
}

func (a *App) poolStatus() metrics.PoolStatus {
	pool := a.pipeline.Pool()
	return metrics.PoolStatus{Size: pool.Size(), InUse: pool.InUse(), Waiting: pool.Waiting()}
}

// Run serves until the manager's context is cancelled, then shuts down.
func (a *App) Run() error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- a.server.Start(a.manager.Context())
	}()

	var err error
	select {
	case <-a.manager.Context().Done():
	case err = <-serveErr:
		if err != nil {
			a.logger.Error("Server failed", zap.Error(err))
		}
	}

	if shutdownErr := a.manager.Shutdown(); shutdownErr != nil {
		err = errors.Join(err, shutdownErr)
	}
	return err
}
