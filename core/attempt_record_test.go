package core

import (
	"testing"
	"time"
)

func TestAttemptRecord_Increment(t *testing.T) {
	rec := NewAttemptRecord(time.Minute)
	if rec.Count != 1 {
		t.Fatalf("NewAttemptRecord().Count = %d, want 1", rec.Count)
	}

	next := rec.Increment(time.Minute)
	if next.Count != 2 {
		t.Errorf("Increment().Count = %d, want 2", next.Count)
	}
	if !next.ResetAt.Equal(rec.ResetAt) {
		t.Errorf("Increment() moved ResetAt within the window")
	}
	if rec.Count != 1 {
		t.Errorf("Increment() mutated the receiver")
	}
}

func TestAttemptRecord_ExpiredRestarts(t *testing.T) {
	rec := AttemptRecord{Count: 9, ResetAt: time.Now().Add(-time.Second)}

	if !rec.ShouldReset() {
		t.Fatal("ShouldReset() = false for past ResetAt, want true")
	}
	if rec.TimeUntilReset() != 0 {
		t.Errorf("TimeUntilReset() = %v, want 0", rec.TimeUntilReset())
	}

	next := rec.Increment(time.Minute)
	if next.Count != 1 {
		t.Errorf("Increment() on expired record Count = %d, want 1", next.Count)
	}
}

func TestAttemptRecord_IsBlocked(t *testing.T) {
	rec := AttemptRecord{Count: 3, ResetAt: time.Now().Add(time.Minute)}

	if !rec.IsBlocked(3) {
		t.Error("IsBlocked(3) = false at count 3, want true")
	}
	if rec.IsBlocked(4) {
		t.Error("IsBlocked(4) = true at count 3, want false")
	}
}
