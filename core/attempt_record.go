package core

import (
	"time"
)

// AttemptRecord counts requests from one client within a fixed window.
// Records are values; every mutation returns a new record.
type AttemptRecord struct {
	// Count is the number of requests within the current window
	Count int

	// ResetAt is when the count should reset
	ResetAt time.Time
}

// NewAttemptRecord creates a record with count=1 whose window ends after window.
func NewAttemptRecord(window time.Duration) AttemptRecord {
	return AttemptRecord{
		Count:   1,
		ResetAt: time.Now().Add(window),
	}
}

// ShouldReset returns true if the current time is past the ResetAt time.
func (a AttemptRecord) ShouldReset() bool {
	return time.Now().After(a.ResetAt)
}

// IsBlocked returns true if the count has reached or exceeded limit.
func (a AttemptRecord) IsBlocked(limit int) bool {
	return a.Count >= limit
}

// TimeUntilReset returns the duration until the record resets, or zero if already past.
func (a AttemptRecord) TimeUntilReset() time.Duration {
	remaining := time.Until(a.ResetAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Increment returns a record with the count incremented by 1.
// An expired record restarts at count=1 with a fresh window.
func (a AttemptRecord) Increment(window time.Duration) AttemptRecord {
	if a.ShouldReset() {
		return NewAttemptRecord(window)
	}
	return AttemptRecord{
		Count:   a.Count + 1,
		ResetAt: a.ResetAt,
	}
}
