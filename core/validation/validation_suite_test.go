package validation

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestValidationSuite_Validate(t *testing.T) {
	var calls []string
	check := func(name string, res CheckResult) Check {
		return Check{Name: name, Run: func() CheckResult {
			calls = append(calls, name)
			return res
		}}
	}

	var out bytes.Buffer
	suite := NewValidationSuite("Startup",
		check("config", Passed("ok")),
		check("backend", Warning("unreachable", errors.New("dial tcp: refused"))),
		check("debug", Skipped("Not configured")),
	).WithOutput(&out)

	result := suite.Validate()

	if !result.Success {
		t.Fatalf("Success = false, want true (warnings are not failures)")
	}
	if result.PassedSteps != 1 || result.Warnings != 1 {
		t.Errorf("passed=%d warnings=%d, want 1/1", result.PassedSteps, result.Warnings)
	}
	if len(calls) != 3 {
		t.Errorf("ran %d checks, want 3", len(calls))
	}
	for _, want := range []string{"Startup", "config", "dial tcp: refused", "Validation Passed"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestValidationSuite_FailFast(t *testing.T) {
	ran := false
	suite := NewValidationSuite("Startup",
		Check{Name: "first", Run: func() CheckResult { return Failed("bad", errors.New("boom")) }},
		Check{Name: "second", Run: func() CheckResult { ran = true; return Passed("") }},
	).WithShowProgress(false).WithFailFast(true)

	result := suite.Validate()

	if result.Success {
		t.Error("Success = true, want false")
	}
	if ran {
		t.Error("second check ran after failure with fail-fast")
	}
	if result.Steps[1].Status != StepSkipped {
		t.Errorf("second status = %v, want skipped", result.Steps[1].Status)
	}
	if err := result.GetFirstError(); err == nil || err.Error() != "boom" {
		t.Errorf("GetFirstError() = %v, want boom", err)
	}
	if !strings.HasPrefix(result.Summary(), "Validation Failed") {
		t.Errorf("Summary() = %q", result.Summary())
	}
}

func TestCheckWritableDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "debug")

	if res := CheckWritableDir(dir); res.Status != StepPassed {
		t.Fatalf("CheckWritableDir() = %v (%v), want passed", res.Status, res.Error)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("directory not created: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("probe file left behind: %d entries", len(entries))
	}
	if res := CheckWritableDir(""); res.Status != StepSkipped {
		t.Errorf("CheckWritableDir(\"\") = %v, want skipped", res.Status)
	}
}

func TestCheckFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "defaults.yaml")
	if err := os.WriteFile(file, []byte("inpainting: {}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want StepStatus
	}{
		{"existing file", file, StepPassed},
		{"missing file", filepath.Join(dir, "nope.yaml"), StepFailed},
		{"directory", dir, StepFailed},
		{"unset", "", StepSkipped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckFileExists(tt.path).Status; got != tt.want {
				t.Errorf("CheckFileExists(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestCheckReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	res := CheckReachable(srv.URL, time.Second)
	if res.Status != StepPassed {
		t.Fatalf("CheckReachable() = %v (%v), want passed", res.Status, res.Error)
	}
	if !strings.Contains(res.Message, "HTTP 404") {
		t.Errorf("Message = %q, want status code", res.Message)
	}

	srv.Close()
	if res := CheckReachable(srv.URL, time.Second); res.Status != StepWarning {
		t.Errorf("CheckReachable(closed) = %v, want warning", res.Status)
	}
}
