package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/kardianos/service"

	"paintserver/core"
)

// serviceStopTimeout bounds how long Stop waits for serve to return.
const serviceStopTimeout = 90 * time.Second

// program adapts serve to the service manager's Start/Stop lifecycle.
type program struct {
	stop chan struct{}
	done chan struct{}
	code int
}

func (p *program) Start(s service.Service) error {
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go func() {
		defer close(p.done)
		p.code = serve(p.stop)
	}()
	return nil
}

func (p *program) Stop(s service.Service) error {
	close(p.stop)
	select {
	case <-p.done:
		return nil
	case <-time.After(serviceStopTimeout):
		return fmt.Errorf("timeout waiting for paintserver to stop")
	}
}

func serviceConfig() *service.Config {
	cfg := &service.Config{
		Name:        "paintserver",
		DisplayName: "Paint Server",
		Description: "Inpainting and outpainting HTTP service in front of a Stable Diffusion backend",
		Arguments:   []string{"run"},
		Option: service.KeyValue{
			"StartType": "automatic",
			"Restart":   "on-failure",
		},
	}
	if exe, err := os.Executable(); err == nil {
		cfg.WorkingDirectory = filepath.Dir(exe)
	}
	return cfg
}

func newService(prg *program) (service.Service, error) {
	s, err := service.New(prg, serviceConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return s, nil
}

// runService runs under the OS service manager.
func runService() int {
	prg := &program{}
	s, err := newService(prg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return core.ExitCodeError
	}
	if err := s.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "service run failed: %v\n", err)
		return core.ExitCodeError
	}
	return prg.code
}

func isServiceCommand(cmd string) bool {
	if cmd == "status" {
		return true
	}
	for _, action := range service.ControlAction {
		if cmd == action {
			return true
		}
	}
	return false
}

// handleServiceCommand installs, removes or controls the service.
func handleServiceCommand(cmd string, stdout io.Writer) int {
	s, err := newService(&program{})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return core.ExitCodeError
	}

	if cmd == "status" {
		status, err := s.Status()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to get service status: %v\n", err)
			return core.ExitCodeError
		}
		fmt.Fprintln(stdout, "Service is", statusName(status))
		return core.ExitCodeSuccess
	}

	if err := service.Control(s, cmd); err != nil {
		fmt.Fprintf(os.Stderr, "service %s failed: %v\n", cmd, err)
		return core.ExitCodeError
	}
	fmt.Fprintf(stdout, "Service %s: ok\n", cmd)
	return core.ExitCodeSuccess
}

func statusName(status service.Status) string {
	switch status {
	case service.StatusRunning:
		return "running"
	case service.StatusStopped:
		return "stopped"
	default:
		return "in an unknown state"
	}
}
