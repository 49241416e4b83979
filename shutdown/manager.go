package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"paintserver/core"
	"paintserver/logging"
)

// DefaultTimeout bounds the whole shutdown sequence.
const DefaultTimeout = 60 * time.Second

// Manager ties signal handling, operation tracking and the hook registry
// together.
//
//	mgr := shutdown.NewManager(logger)
//	mgr.Register("database", shutdown.PriorityDatabase, core.CloserFunc(database.Close))
//	mgr.Start()
//	<-mgr.Context().Done()
//	err := mgr.Shutdown()
type Manager struct {
	logger  *logging.Logger
	timeout time.Duration
	exit    func(code int)

	ctx    context.Context
	cancel context.CancelFunc

	tracker *OperationTracker
	hooks   *HookRegistry

	mu       sync.Mutex
	started  bool
	done     bool
	signal   os.Signal
	signals  int
	sigChan  chan os.Signal
	stopOnce sync.Once
}

// Option configures a Manager.
type Option func(*Manager)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithExitFunc replaces os.Exit for the forced exit on a second signal.
func WithExitFunc(exit func(code int)) Option {
	return func(m *Manager) {
		m.exit = exit
	}
}

// NewManager returns a Manager whose context is live until a signal arrives
// or Trigger is called.
func NewManager(logger *logging.Logger, opts ...Option) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		logger:  logger.Named("shutdown"),
		timeout: DefaultTimeout,
		exit:    os.Exit,
		ctx:     ctx,
		cancel:  cancel,
		tracker: NewOperationTracker(),
		hooks:   NewHookRegistry(),
		sigChan: make(chan os.Signal, 2),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Context is cancelled when shutdown is requested.
func (m *Manager) Context() context.Context {
	return m.ctx
}

// Register adds a cleanup hook.
func (m *Manager) Register(name string, priority int, fn core.ShutdownFunc) {
	m.hooks.Register(name, priority, fn)
	m.logger.Debug("Registered shutdown hook", zap.String("name", name), zap.Int("priority", priority))
}

// Hooks returns the hook names in execution order.
func (m *Manager) Hooks() []string {
	return m.hooks.Names()
}

// Start listens for SIGINT and SIGTERM. The first signal cancels Context; the
// second exits the process with the signal's exit code.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
	m.started = true
	signal.Notify(m.sigChan, os.Interrupt, syscall.SIGTERM)
	go m.listen()
}

func (m *Manager) listen() {
	for sig := range m.sigChan {
		m.handleSignal(sig)
	}
}

func (m *Manager) handleSignal(sig os.Signal) {
	m.mu.Lock()
	m.signals++
	count := m.signals
	if count == 1 {
		m.signal = sig
	}
	m.mu.Unlock()

	if count == 1 {
		m.logger.Info("Received signal, shutting down gracefully", zap.String("signal", sig.String()))
		m.cancel()
		return
	}
	m.logger.Warn("Received second signal, forcing exit", zap.String("signal", sig.String()))
	_ = m.logger.Sync()
	m.exit(core.ExitCodeForSignal(sig))
}

// Trigger requests shutdown without a signal.
func (m *Manager) Trigger() {
	m.cancel()
}

// Signal returns the first signal received, or nil.
func (m *Manager) Signal() os.Signal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.signal
}

// ExitCode maps the triggering signal to the process exit code.
func (m *Manager) ExitCode() int {
	return core.ExitCodeForSignal(m.Signal())
}

// IsShuttingDown reports whether new operations are being refused.
func (m *Manager) IsShuttingDown() bool {
	return m.tracker.IsClosed()
}

// ActiveOperations returns the number of tracked operations in flight.
func (m *Manager) ActiveOperations() int64 {
	return m.tracker.ActiveCount()
}

// WrapOperation runs fn as a tracked operation. After Shutdown starts it
// returns ErrTrackerClosed without calling fn.
func (m *Manager) WrapOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	if !m.tracker.Start() {
		m.logger.Debug("Rejected operation during shutdown", zap.String("operation", name))
		return ErrTrackerClosed
	}
	defer m.tracker.Done()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

// Shutdown refuses new operations, waits for running ones, then runs the
// hooks with whatever time is left. Only the first call does any work.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	if m.done {
		m.mu.Unlock()
		return nil
	}
	m.done = true
	m.mu.Unlock()

	m.cancel()
	start := time.Now()
	m.tracker.Close()

	if active := m.tracker.ActiveCount(); active > 0 {
		m.logger.Info("Waiting for in-flight operations", zap.Int64("active", active))
	}
	if err := m.tracker.Wait(m.timeout); err != nil {
		m.logger.Warn("In-flight operations still running",
			zap.Int64("active", m.tracker.ActiveCount()),
			zap.Duration("waited", time.Since(start)),
		)
	}

	remaining := m.timeout - time.Since(start)
	if remaining < time.Second {
		remaining = time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), remaining)
	defer cancel()

	m.logger.Info("Running shutdown hooks", zap.Strings("hooks", m.hooks.Names()))
	errs := m.hooks.Run(ctx)
	for _, err := range errs {
		m.logger.Error("Shutdown hook failed", zap.Error(err))
	}

	m.stopOnce.Do(func() {
		signal.Stop(m.sigChan)
	})

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	m.logger.Info("Shutdown complete", zap.Duration("duration", time.Since(start)))
	return nil
}
