package shutdown

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"paintserver/core"
)

// Hook priorities. Lower values run first.
const (
	PriorityHTTPServer  = 10
	PrioritySlotPool    = 20
	PriorityAsyncWriter = 30
	PriorityDatabase    = 40
	PriorityTempFiles   = 45
	PriorityLogger      = 50
)

type hook struct {
	name     string
	priority int
	seq      int
	fn       core.ShutdownFunc
}

// HookRegistry holds named cleanup functions and runs them once, in order.
// Hooks with equal priority run in registration order.
type HookRegistry struct {
	mu    sync.Mutex
	hooks []hook
	ran   bool
}

// NewHookRegistry returns an empty registry.
func NewHookRegistry() *HookRegistry {
	return &HookRegistry{}
}

// Register adds a hook. It is ignored after Run.
func (r *HookRegistry) Register(name string, priority int, fn core.ShutdownFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ran {
		return
	}
	r.hooks = append(r.hooks, hook{name: name, priority: priority, seq: len(r.hooks), fn: fn})
}

func (r *HookRegistry) sorted() []hook {
	out := make([]hook, len(r.hooks))
	copy(out, r.hooks)
	sort.Slice(out, func(i, j int) bool {
		if out[i].priority != out[j].priority {
			return out[i].priority < out[j].priority
		}
		return out[i].seq < out[j].seq
	})
	return out
}

// Names returns hook names in execution order.
func (r *HookRegistry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	hooks := r.sorted()
	names := make([]string, len(hooks))
	for i, h := range hooks {
		names[i] = h.name
	}
	return names
}

// Count returns the number of registered hooks.
func (r *HookRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.hooks)
}

// Run executes every hook, even after failures, and returns the failures
// labelled with the hook name. Later calls return nil.
func (r *HookRegistry) Run(ctx context.Context) []error {
	r.mu.Lock()
	if r.ran {
		r.mu.Unlock()
		return nil
	}
	r.ran = true
	hooks := r.sorted()
	r.mu.Unlock()

	var errs []error
	for _, h := range hooks {
		if err := h.fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", h.name, err))
		}
	}
	return errs
}
