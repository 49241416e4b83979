package webui

import (
	"encoding/json"
	"errors"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"paintserver/metrics"
)

func TestStatsEndpoint(t *testing.T) {
	stats := metrics.NewStore(10, "test", time.Now())
	proc := &fakeProcessor{}
	s := newTestServer(t, DefaultServerConfig(), Dependencies{
		Processor: proc,
		Stats:     stats,
		Pool:      func() metrics.PoolStatus { return metrics.PoolStatus{Size: 2, InUse: 1, Waiting: 3} },
	})

	img := testPNG(t, 8, 8, color.White)
	fields := map[string]string{"task": "outpainting"}
	if rec := serve(s, newUploadRequest(t, upload{image: img, fields: fields})); rec.Code != http.StatusOK {
		t.Fatalf("process status = %d: %s", rec.Code, rec.Body.String())
	}
	proc.err = errors.New("boom")
	if rec := serve(s, newUploadRequest(t, upload{image: img, fields: fields})); rec.Code != http.StatusInternalServerError {
		t.Fatalf("failing process status = %d", rec.Code)
	}
	// Rejected before processing; not a task.
	serve(s, newUploadRequest(t, upload{fields: fields}))

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/stats?recent=1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d", rec.Code)
	}
	var snap metrics.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if snap.Version != "test" {
		t.Errorf("version = %q", snap.Version)
	}
	if snap.Tasks.TotalProcessed != 2 || snap.Tasks.TotalSuccess != 1 || snap.Tasks.TotalErrors != 1 {
		t.Errorf("tasks = %+v", snap.Tasks)
	}
	if got := snap.Tasks.ByTask["outpainting"]; got == nil || got.SuccessRate != 50 {
		t.Errorf("outpainting stats = %+v", got)
	}
	if snap.Pool == nil || snap.Pool.Waiting != 3 {
		t.Errorf("pool = %+v", snap.Pool)
	}
	if len(snap.Recent) != 1 || snap.Recent[0].Status != metrics.TaskStatusError || snap.Recent[0].ErrorMsg != "boom" {
		t.Errorf("recent = %+v", snap.Recent)
	}
}

func TestStatsEndpointErrors(t *testing.T) {
	disabled := newTestServer(t, DefaultServerConfig(), Dependencies{Processor: &fakeProcessor{}})
	if rec := serve(disabled, httptest.NewRequest(http.MethodGet, "/stats", nil)); rec.Code != http.StatusNotFound {
		t.Errorf("disabled status = %d", rec.Code)
	}

	s := newTestServer(t, DefaultServerConfig(), Dependencies{
		Processor: &fakeProcessor{},
		Stats:     metrics.NewStore(10, "test", time.Now()),
	})
	if rec := serve(s, httptest.NewRequest(http.MethodGet, "/stats?recent=-1", nil)); rec.Code != http.StatusBadRequest {
		t.Errorf("bad recent status = %d", rec.Code)
	}
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/stats", nil))
	var snap metrics.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if snap.Pool != nil {
		t.Errorf("pool should be omitted without a pool source, got %+v", snap.Pool)
	}
}
