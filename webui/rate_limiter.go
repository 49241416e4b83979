package webui

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"paintserver/core"
)

// RateLimiter caps requests per client IP within a fixed window.
// A limit of zero or less disables it.
type RateLimiter struct {
	mu      sync.Mutex
	records map[string]core.AttemptRecord
	limit   int
	window  time.Duration
}

// NewRateLimiter allows limit requests per window for each client.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		records: make(map[string]core.AttemptRecord),
		limit:   limit,
		window:  window,
	}
}

// Allow counts one request from ip. When the client is over the limit it
// returns false and the time until the window resets.
func (r *RateLimiter) Allow(ip string) (bool, time.Duration) {
	if r.limit <= 0 {
		return true, 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[ip]
	if !ok || record.ShouldReset() {
		r.records[ip] = core.NewAttemptRecord(r.window)
		return true, 0
	}
	if record.IsBlocked(r.limit) {
		return false, record.TimeUntilReset()
	}
	r.records[ip] = record.Increment(r.window)
	return true, 0
}

// Cleanup drops expired records and returns how many were removed.
func (r *RateLimiter) Cleanup() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for ip, record := range r.records {
		if record.ShouldReset() {
			delete(r.records, ip)
			removed++
		}
	}
	return removed
}

// StartCleanup runs Cleanup every interval until ctx is done.
func (r *RateLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Cleanup()
			}
		}
	}()
}

// Count returns the number of tracked clients.
func (r *RateLimiter) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Middleware answers 429 with Retry-After once a client is over the limit.
// Paths in exempt are never counted.
func (r *RateLimiter) Middleware(next http.Handler, exempt ...string) http.Handler {
	skip := make(map[string]bool, len(exempt))
	for _, p := range exempt {
		skip[p] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if skip[req.URL.Path] {
			next.ServeHTTP(w, req)
			return
		}
		allowed, wait := r.Allow(clientIP(req))
		if !allowed {
			seconds := int(math.Ceil(wait.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
			writeJSONError(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next.ServeHTTP(w, req)
	})
}
