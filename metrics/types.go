// Package metrics keeps in-memory statistics about processed tasks.
package metrics

import "time"

// Status values for TaskRecord.
const (
	TaskStatusSuccess = "success"
	TaskStatusError   = "error"
)

// TaskRecord is one finished /process call.
type TaskRecord struct {
	ID        string        `json:"id"`
	Task      string        `json:"task"`
	Status    string        `json:"status"`
	Backend   string        `json:"backend,omitempty"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
	QueueWait time.Duration `json:"queue_wait"`
	Inference time.Duration `json:"inference"`
	ErrorMsg  string        `json:"error_msg,omitempty"`
}

// TaskMetrics aggregates every recorded task.
type TaskMetrics struct {
	TotalProcessed int64                       `json:"total_processed"`
	TotalSuccess   int64                       `json:"total_success"`
	TotalErrors    int64                       `json:"total_errors"`
	ByTask         map[string]*TaskTypeMetrics `json:"by_task"`
}

// TaskTypeMetrics aggregates one task kind.
type TaskTypeMetrics struct {
	Count        int64         `json:"count"`
	SuccessRate  float64       `json:"success_rate"` // 0-100
	AvgDuration  time.Duration `json:"avg_duration"`
	AvgInference time.Duration `json:"avg_inference"` // successful runs only
}

// PoolStatus is the inference slot occupancy.
type PoolStatus struct {
	Size    int `json:"size"`
	InUse   int `json:"in_use"`
	Waiting int `json:"waiting"`
}

// Snapshot is what the stats endpoint reports.
type Snapshot struct {
	Version string        `json:"version"`
	Uptime  time.Duration `json:"uptime"`
	Tasks   TaskMetrics   `json:"tasks"`
	Pool    *PoolStatus   `json:"pool,omitempty"`
	Recent  []TaskRecord  `json:"recent"`
}
