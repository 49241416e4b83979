package sdruntime

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// SlotPool admits at most Size concurrent inference runs.
//
// Usage:
//
//	pool := NewSlotPool(2, 30*time.Second)
//	defer pool.Close()
//
//	release, err := pool.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer release()
type SlotPool struct {
	slots   chan struct{}
	timeout time.Duration

	closed    chan struct{}
	closeOnce sync.Once
	running   sync.WaitGroup

	inUse   atomic.Int32
	waiting atomic.Int32
}

// NewSlotPool creates a pool with size slots. A zero timeout waits until the
// caller's context ends.
func NewSlotPool(size int, timeout time.Duration) *SlotPool {
	if size < 1 {
		size = 1
	}
	return &SlotPool{
		slots:   make(chan struct{}, size),
		timeout: timeout,
		closed:  make(chan struct{}),
	}
}

// Acquire blocks until a slot is free. The returned release func must be
// called exactly once; extra calls are ignored.
func (p *SlotPool) Acquire(ctx context.Context) (func(), error) {
	select {
	case <-p.closed:
		return nil, ErrPoolClosed
	default:
	}

	var timeoutCh <-chan time.Time
	if p.timeout > 0 {
		timer := time.NewTimer(p.timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	p.waiting.Add(1)
	defer p.waiting.Add(-1)

	select {
	case p.slots <- struct{}{}:
	case <-p.closed:
		return nil, ErrPoolClosed
	case <-timeoutCh:
		return nil, ErrAcquireTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	// Close may have raced the send.
	select {
	case <-p.closed:
		<-p.slots
		return nil, ErrPoolClosed
	default:
	}

	p.running.Add(1)
	p.inUse.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() {
			p.inUse.Add(-1)
			<-p.slots
			p.running.Done()
		})
	}, nil
}

// Close stops admitting new runs. Safe to call multiple times.
func (p *SlotPool) Close() {
	p.closeOnce.Do(func() {
		close(p.closed)
	})
}

// Wait blocks until all admitted runs release or ctx ends.
func (p *SlotPool) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.running.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown closes the pool and waits for in-flight runs.
func (p *SlotPool) Shutdown(ctx context.Context) error {
	p.Close()
	return p.Wait(ctx)
}

// Size returns the number of slots.
func (p *SlotPool) Size() int {
	return cap(p.slots)
}

// InUse returns the number of runs holding a slot.
func (p *SlotPool) InUse() int {
	return int(p.inUse.Load())
}

// Waiting returns the number of callers queued for a slot.
func (p *SlotPool) Waiting() int {
	return int(p.waiting.Load())
}
