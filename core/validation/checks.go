package validation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// CheckWritableDir ensures dir exists (creating it if needed) and accepts writes.
func CheckWritableDir(dir string) CheckResult {
	if dir == "" {
		return Skipped("Not configured")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Failed("Cannot create directory", fmt.Errorf("create %s: %w", dir, err))
	}
	probe, err := os.CreateTemp(dir, ".write-check-*")
	if err != nil {
		return Failed("Directory is not writable", fmt.Errorf("write %s: %w", dir, err))
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)
	return Passed(dir)
}

// CheckFileExists reports whether an optional file path points at a regular file.
func CheckFileExists(path string) CheckResult {
	if path == "" {
		return Skipped("Not configured")
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Failed("File not found", fmt.Errorf("file not found: %s", path))
		}
		return Failed("Cannot read file", err)
	}
	if info.IsDir() {
		return Failed("Path is a directory", fmt.Errorf("path is a directory, not a file: %s", path))
	}
	return Passed(path)
}

// CheckParentDir checks the directory that will hold path (for example a database file).
func CheckParentDir(path string) CheckResult {
	if path == "" {
		return Skipped("Not configured")
	}
	return CheckWritableDir(filepath.Dir(path))
}

// CheckReachable issues a GET against url and reports latency.
// Any HTTP response counts as reachable; an unreachable backend is only a warning
// because the worker may come up after the server.
func CheckReachable(url string, timeout time.Duration) CheckResult {
	if url == "" {
		return Skipped("Not configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Failed("Invalid URL", err)
	}

	start := time.Now()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Warning("Timed out", fmt.Errorf("no response from %s within %v", url, timeout))
		}
		return Warning("Unreachable", err)
	}
	resp.Body.Close()

	return Passed(fmt.Sprintf("HTTP %d (latency: %v)", resp.StatusCode, time.Since(start).Round(time.Millisecond)))
}
