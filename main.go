// Command paintserver serves inpainting and outpainting over HTTP in front of
// a Stable Diffusion + ControlNet backend.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/kardianos/service"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"paintserver/core"
	"paintserver/core/validation"
	"paintserver/logging"
	"paintserver/shutdown"
	"paintserver/webui/auth"
)

func main() {
	os.Exit(run(os.Args, os.Stdin, os.Stdout))
}

// run dispatches subcommands and returns the process exit code.
func run(args []string, stdin io.Reader, stdout io.Writer) int {
	if len(args) > 1 {
		switch cmd := args[1]; cmd {
		case "hash-token":
			return hashToken(args[2:], stdin, stdout)
		case "help", "-h", "--help", "-help":
			printUsage(stdout)
			return core.ExitCodeSuccess
		case "run":
			return serve(nil)
		case "version", "--version":
			fmt.Fprintln(stdout, "paintserver", core.VersionInfo())
			return core.ExitCodeSuccess
		default:
			if isServiceCommand(cmd) {
				return handleServiceCommand(cmd, stdout)
			}
			fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
			printUsage(os.Stderr)
			return core.ExitCodeError
		}
	}

	if !service.Interactive() {
		return runService()
	}
	return serve(nil)
}

// serve runs the HTTP server until a signal arrives or stop is closed.
func serve(stop <-chan struct{}) int {
	loadEnvFile()

	cfg, err := core.LoadConfig()
	if err != nil {
		printConfigError(err)
		return core.ExitCodeError
	}

	level := logging.ParseLogLevel(cfg.LogLevel, zapcore.InfoLevel)
	logger, err := logging.NewLoggerWithLevel(level, cfg.IsDevelopment(), cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return core.ExitCodeError
	}
	defer func() { _ = logger.Sync() }()

	if code := runStartupValidation(cfg, logger); code != core.ExitCodeSuccess {
		return code
	}

	logger.Info("Configuration loaded",
		zap.String("version", core.Version),
		zap.String("addr", cfg.Addr()),
		zap.String("backend", cfg.Backend),
		zap.String("backend_url", cfg.BackendURL),
		zap.String("base_model", cfg.BaseModel),
		zap.String("controlnet_model", cfg.ControlNetModel),
		zap.Int("max_concurrent", cfg.MaxConcurrent),
		zap.Int("max_dimension", cfg.MaxDimension),
		zap.Duration("request_timeout", cfg.RequestTimeout),
		zap.Bool("debug_images", cfg.DebugDir != ""),
		zap.Bool("auth_enabled", cfg.APITokenHash != ""),
	)

	mgr := shutdown.NewManager(logger, shutdown.WithTimeout(cfg.RequestTimeout+30*time.Second))
	mgr.Start()
	if stop != nil {
		go func() {
			select {
			case <-stop:
				mgr.Trigger()
			case <-mgr.Context().Done():
			}
		}()
	}

	app, err := newApp(cfg, logger, mgr)
	if err != nil {
		logger.Error("Startup failed", zap.Error(err))
		_ = mgr.Shutdown()
		return core.ExitCodeError
	}

	if err := app.Run(); err != nil {
		logger.Error("Exited with errors", zap.Error(err))
		return core.ExitCodeError
	}

	code := mgr.ExitCode()
	logger.Info("Goodbye", zap.String("exit", core.ExitCodeName(code)))
	return code
}

// loadEnvFile loads .env from the working directory, then from next to the
// executable. A missing file is fine; the environment may carry everything.
func loadEnvFile() {
	if err := godotenv.Load(); err == nil {
		return
	}
	if exe, err := os.Executable(); err == nil {
		_ = godotenv.Load(filepath.Join(filepath.Dir(exe), ".env"))
	}
}

func printConfigError(err error) {
	red := color.New(color.FgRed, color.Bold)
	red.Fprintln(os.Stderr, "Configuration error")
	if cfgErr, ok := core.IsConfigError(err); ok {
		fmt.Fprintf(os.Stderr, "  %s\n", cfgErr.Message)
		if cfgErr.Action != "" {
			color.New(color.FgYellow).Fprintf(os.Stderr, "  %s\n", cfgErr.Action)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "  %v\n", err)
}

// runStartupValidation checks the filesystem and backend before serving.
func runStartupValidation(cfg *core.Config, logger *logging.Logger) int {
	result := validation.NewValidationSuite("paintserver startup checks", startupChecks(cfg)...).
		WithShowProgress(cfg.IsDevelopment() || service.Interactive()).
		Validate()

	for _, step := range result.Steps {
		switch step.Status {
		case validation.StepFailed:
			logger.Error("Startup check failed", zap.String("check", step.Name), zap.String("message", step.Message), zap.Error(step.Error))
		case validation.StepWarning:
			logger.Warn("Startup check warning", zap.String("check", step.Name), zap.String("message", step.Message), zap.Error(step.Error))
		}
	}
	if !result.Success {
		return core.ExitCodeError
	}
	logger.Info("Startup checks passed", zap.Int("passed", result.PassedSteps), zap.Duration("duration", result.Duration))
	return core.ExitCodeSuccess
}

func startupChecks(cfg *core.Config) []validation.Check {
	checks := []validation.Check{
		{Name: "Log directory", Run: func() validation.CheckResult { return validation.CheckParentDir(cfg.LogFile) }},
		{Name: "Job database directory", Run: func() validation.CheckResult { return validation.CheckParentDir(cfg.DBPath) }},
		{Name: "Debug image directory", Run: func() validation.CheckResult { return validation.CheckWritableDir(cfg.DebugDir) }},
		{Name: "Task defaults file", Run: func() validation.CheckResult { return validation.CheckFileExists(cfg.DefaultsFile) }},
	}
	if cfg.Backend == core.BackendDiffusers {
		url := strings.TrimRight(cfg.BackendURL, "/") + "/health"
		checks = append(checks, validation.Check{
			Name: "Diffusers worker",
			Run:  func() validation.CheckResult { return validation.CheckReachable(url, 5*time.Second) },
		})
	}
	return checks
}

// hashToken prints the bcrypt hash for PAINT_API_TOKEN_HASH. The token comes
// from the argument or the first line of stdin.
func hashToken(args []string, stdin io.Reader, stdout io.Writer) int {
	var token string
	if len(args) > 0 {
		token = args[0]
	} else {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && err != io.EOF {
			fmt.Fprintf(os.Stderr, "read token: %v\n", err)
			return core.ExitCodeError
		}
		token = strings.TrimSpace(line)
	}
	hash, err := auth.HashToken(token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash token: %v\n", err)
		return core.ExitCodeError
	}
	fmt.Fprintln(stdout, hash)
	return core.ExitCodeSuccess
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: paintserver [command]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run                 Serve in the foreground (default)")
	fmt.Fprintln(w, "  install             Install as an OS service")
	fmt.Fprintln(w, "  uninstall           Remove the OS service")
	fmt.Fprintln(w, "  start | stop        Start or stop the installed service")
	fmt.Fprintln(w, "  restart             Restart the installed service")
	fmt.Fprintln(w, "  status              Show the service status")
	fmt.Fprintln(w, "  hash-token [TOKEN]  Print the bcrypt hash for PAINT_API_TOKEN_HASH")
	fmt.Fprintln(w, "  version             Print build information")
}
