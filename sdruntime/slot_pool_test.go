package sdruntime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestNewSlotPool(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		wantSize int
	}{
		{"two slots", 2, 2},
		{"zero clamps to one", 0, 1},
		{"negative clamps to one", -3, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := NewSlotPool(tt.size, time.Second)
			defer pool.Close()
			if pool.Size() != tt.wantSize {
				t.Errorf("Size() = %d, want %d", pool.Size(), tt.wantSize)
			}
		})
	}
}

func TestSlotPoolAcquireRelease(t *testing.T) {
	pool := NewSlotPool(1, time.Second)
	defer pool.Close()

	release, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	if pool.InUse() != 1 {
		t.Errorf("InUse() = %d, want 1", pool.InUse())
	}
	release()
	release() // second call is ignored
	if pool.InUse() != 0 {
		t.Errorf("InUse() after release = %d, want 0", pool.InUse())
	}

	release, err = pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() after release error: %v", err)
	}
	release()
}

func TestSlotPoolAcquireTimeout(t *testing.T) {
	pool := NewSlotPool(1, 20*time.Millisecond)
	defer pool.Close()

	release, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer release()

	_, err = pool.Acquire(context.Background())
	if !errors.Is(err, ErrAcquireTimeout) {
		t.Errorf("Acquire() error = %v, want ErrAcquireTimeout", err)
	}
}

func TestSlotPoolAcquireContextCancelled(t *testing.T) {
	pool := NewSlotPool(1, 0)
	defer pool.Close()

	release, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = pool.Acquire(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Acquire() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestSlotPoolClose(t *testing.T) {
	pool := NewSlotPool(1, time.Second)
	release, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	waiterErr := make(chan error, 1)
	go func() {
		_, err := pool.Acquire(context.Background())
		waiterErr <- err
	}()

	// Let the waiter queue.
	deadline := time.Now().Add(time.Second)
	for pool.Waiting() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	pool.Close()
	pool.Close()

	if err := <-waiterErr; !errors.Is(err, ErrPoolClosed) {
		t.Errorf("queued Acquire() error = %v, want ErrPoolClosed", err)
	}
	if _, err := pool.Acquire(context.Background()); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Acquire() after Close error = %v, want ErrPoolClosed", err)
	}

	release()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := pool.Wait(ctx); err != nil {
		t.Errorf("Wait() error: %v", err)
	}
}

func TestSlotPoolBoundsConcurrency(t *testing.T) {
	const size = 2
	pool := NewSlotPool(size, 0)
	defer pool.Close()

	var (
		mu      sync.Mutex
		active  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := pool.Acquire(context.Background())
			if err != nil {
				t.Error(err)
				return
			}
			defer release()

			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxSeen > size {
		t.Errorf("max concurrent = %d, want <= %d", maxSeen, size)
	}
}
