package db

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestAsyncWriterProcessesWrites(t *testing.T) {
	var count atomic.Int32
	w := NewAsyncWriter(func(op WriteOperation) error {
		count.Add(1)
		return nil
	}, 0, nil)
	w.Start()
	w.Start()

	for i := 0; i < 10; i++ {
		if !w.Write(i) {
			t.Fatalf("Write(%d) rejected", i)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := w.Shutdown(ctx); err != nil {
		t.Fatal(err)
	}
	if count.Load() != 10 {
		t.Errorf("processed %d, want 10", count.Load())
	}
}

func TestAsyncWriterRejects(t *testing.T) {
	block := make(chan struct{})
	w := NewAsyncWriter(func(op WriteOperation) error {
		<-block
		return nil
	}, 1, nil)

	if w.Write("early") {
		t.Error("Write() before Start should be rejected")
	}

	w.Start()
	// The first op is taken by the goroutine and blocks; the second fills the buffer.
	w.Write(1)
	deadline := time.Now().Add(time.Second)
	for w.Pending() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !w.Write(2) {
		t.Fatal("Write() into empty buffer rejected")
	}
	if w.Write(3) {
		t.Error("Write() into full buffer should be rejected")
	}

	close(block)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := w.Shutdown(ctx); err != nil {
		t.Fatal(err)
	}
	if w.Write(4) {
		t.Error("Write() after Shutdown should be rejected")
	}
	if w.IsStarted() {
		t.Error("IsStarted() after Shutdown = true")
	}
}

func TestAsyncWriterReportsErrors(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []error
	)
	boom := errors.New("disk full")
	w := NewAsyncWriter(func(op WriteOperation) error { return boom }, 4, func(op WriteOperation, err error) {
		mu.Lock()
		seen = append(seen, err)
		mu.Unlock()
	})
	w.Start()
	w.Write("x")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	w.Shutdown(ctx)

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 || !errors.Is(seen[0], boom) {
		t.Errorf("error handler saw %v", seen)
	}
}

func TestAsyncWriterShutdownTimeout(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	w := NewAsyncWriter(func(op WriteOperation) error {
		<-block
		return nil
	}, 1, nil)
	w.Start()
	w.Write(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := w.Shutdown(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Shutdown() error = %v, want DeadlineExceeded", err)
	}
}
