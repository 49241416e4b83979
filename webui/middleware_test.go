package webui

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"paintserver/logging"
)

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	mw := NewLoggingMiddleware(logging.NewFromCore(core), "/health")
	h := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("hello"))
	}))

	for _, path := range []string{"/jobs", "/missing", "/health"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("logged %d entries, want 2 (health skipped)", len(entries))
	}
	first := entries[0].ContextMap()
	if first["path"] != "/jobs" || first["status"] != int64(200) || first["bytes"] != int64(5) {
		t.Errorf("first entry = %v", first)
	}
	if entries[1].Level != zapcore.WarnLevel {
		t.Errorf("404 logged at %v, want warn", entries[1].Level)
	}
}
