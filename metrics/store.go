package metrics

import (
	"sync"
	"time"
)

// DefaultHistoryCapacity is how many task records a Store keeps.
const DefaultHistoryCapacity = 100

// Store is a concurrency-safe ring buffer of recent tasks plus running
// per-task aggregates.
type Store struct {
	mu sync.RWMutex

	history []TaskRecord
	head    int
	size    int

	totalTasks   int64
	totalSuccess int64
	totalErrors  int64
	byTask       map[string]*taskStats

	startTime time.Time
	version   string
}

type taskStats struct {
	count          int64
	successCount   int64
	totalDuration  time.Duration
	totalInference time.Duration
}

// NewStore creates a Store holding up to capacity records. A capacity below
// one uses DefaultHistoryCapacity.
func NewStore(capacity int, version string, startTime time.Time) *Store {
	if capacity < 1 {
		capacity = DefaultHistoryCapacity
	}
	return &Store{
		history:   make([]TaskRecord, capacity),
		byTask:    make(map[string]*taskStats),
		startTime: startTime,
		version:   version,
	}
}

// RecordTask adds a finished task.
func (s *Store) RecordTask(task TaskRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history[s.head] = task
	s.head = (s.head + 1) % len(s.history)
	if s.size < len(s.history) {
		s.size++
	}

	s.totalTasks++
	stats, ok := s.byTask[task.Task]
	if !ok {
		stats = &taskStats{}
		s.byTask[task.Task] = stats
	}
	stats.count++
	stats.totalDuration += task.Duration

	switch task.Status {
	case TaskStatusSuccess:
		s.totalSuccess++
		stats.successCount++
		stats.totalInference += task.Inference
	case TaskStatusError:
		s.totalErrors++
	}
}

// TaskMetrics returns the aggregates.
func (s *Store) TaskMetrics() TaskMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m := TaskMetrics{
		TotalProcessed: s.totalTasks,
		TotalSuccess:   s.totalSuccess,
		TotalErrors:    s.totalErrors,
		ByTask:         make(map[string]*TaskTypeMetrics, len(s.byTask)),
	}
	for task, stats := range s.byTask {
		tm := &TaskTypeMetrics{
			Count:       stats.count,
			SuccessRate: float64(stats.successCount) / float64(stats.count) * 100,
			AvgDuration: stats.totalDuration / time.Duration(stats.count),
		}
		if stats.successCount > 0 {
			tm.AvgInference = stats.totalInference / time.Duration(stats.successCount)
		}
		m.ByTask[task] = tm
	}
	return m
}

// RecentTasks returns up to limit records, newest first.
func (s *Store) RecentTasks(limit int) []TaskRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || s.size == 0 {
		return []TaskRecord{}
	}
	if limit > s.size {
		limit = s.size
	}
	n := len(s.history)
	out := make([]TaskRecord, limit)
	for i := 0; i < limit; i++ {
		out[i] = s.history[(s.head-1-i+n)%n]
	}
	return out
}

// Snapshot bundles aggregates and the most recent records. pool may be nil.
func (s *Store) Snapshot(recent int, pool *PoolStatus) Snapshot {
	return Snapshot{
		Version: s.version,
		Uptime:  time.Since(s.startTime),
		Tasks:   s.TaskMetrics(),
		Pool:    pool,
		Recent:  s.RecentTasks(recent),
	}
}
