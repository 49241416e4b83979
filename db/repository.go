package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Job statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// DefaultListLimit and MaxListLimit bound ListRecentJobs.
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// Job is one processed request.
type Job struct {
	ID           string    `json:"id"`
	Task         string    `json:"task"`
	Status       string    `json:"status"`
	Backend      string    `json:"backend,omitempty"`
	Prompt       string    `json:"prompt,omitempty"`
	InputWidth   int       `json:"input_width"`
	InputHeight  int       `json:"input_height"`
	OutputWidth  int       `json:"output_width"`
	OutputHeight int       `json:"output_height"`
	Steps        int       `json:"steps"`
	DurationMS   int64     `json:"duration_ms"`
	ErrorMessage string    `json:"error,omitempty"`
	ArchiveKey   string    `json:"archive_key,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Repository reads and writes job records. Inserts go through the async
// writer when one is running, and fall back to a direct write otherwise.
type Repository struct {
	db          *Database
	asyncWriter *AsyncWriter
}

// NewRepository creates a Repository. asyncWriter may be nil.
func NewRepository(db *Database, asyncWriter *AsyncWriter) *Repository {
	return &Repository{db: db, asyncWriter: asyncWriter}
}

const insertJobQuery = `
	INSERT INTO jobs (
		id, task, status, backend, prompt,
		input_width, input_height, output_width, output_height,
		steps, duration_ms, error_message, archive_key, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// InsertJob records job. It reports queued=true when the write was handed
// to the async writer.
func (r *Repository) InsertJob(ctx context.Context, job Job) (queued bool, err error) {
	if r.db == nil {
		return false, fmt.Errorf("database connection is nil")
	}
	if job.ID == "" {
		return false, fmt.Errorf("job id is required")
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}

	if r.asyncWriter != nil && r.asyncWriter.IsStarted() {
		if r.asyncWriter.Write(job) {
			return true, nil
		}
		// Buffer full: write directly.
	}
	return false, r.insertJob(ctx, job)
}

func (r *Repository) insertJob(ctx context.Context, job Job) error {
	_, err := r.db.exec(ctx, insertJobQuery,
		job.ID,
		job.Task,
		job.Status,
		job.Backend,
		job.Prompt,
		job.InputWidth,
		job.InputHeight,
		job.OutputWidth,
		job.OutputHeight,
		job.Steps,
		job.DurationMS,
		nullString(job.ErrorMessage),
		nullString(job.ArchiveKey),
		formatTimestamp(job.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert job %s: %w", job.ID, err)
	}
	return nil
}

const selectJobColumns = `
	SELECT id, task, status, backend, prompt,
		input_width, input_height, output_width, output_height,
		steps, duration_ms, error_message, archive_key, created_at
	FROM jobs`

// ListRecentJobs returns up to limit jobs, newest first. limit is clamped to
// [1, MaxListLimit]; zero means DefaultListLimit.
func (r *Repository) ListRecentJobs(ctx context.Context, limit int) ([]Job, error) {
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}

	rows, err := r.db.query(ctx, selectJobColumns+` ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]Job, 0, limit)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating jobs: %w", err)
	}
	return jobs, nil
}

// GetJob returns the job with id, or ErrNotFound.
func (r *Repository) GetJob(ctx context.Context, id string) (Job, error) {
	row, err := r.db.queryRow(ctx, selectJobColumns+` WHERE id = ?`, id)
	if err != nil {
		return Job{}, err
	}
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, ErrNotFound
	}
	return job, err
}

// CountJobs returns the number of stored jobs.
func (r *Repository) CountJobs(ctx context.Context) (int64, error) {
	row, err := r.db.queryRow(ctx, `SELECT COUNT(*) FROM jobs`)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}
	return n, nil
}

// CreateAsyncWriteHandler returns the WriteHandler that stores queued jobs.
func (r *Repository) CreateAsyncWriteHandler() WriteHandler {
	return func(op WriteOperation) error {
		job, ok := op.Data.(Job)
		if !ok {
			return fmt.Errorf("invalid operation type %T: expected Job", op.Data)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return r.insertJob(ctx, job)
	}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(s scanner) (Job, error) {
	var (
		job        Job
		errMsg     sql.NullString
		archiveKey sql.NullString
		createdAt  interface{}
	)
	err := s.Scan(
		&job.ID,
		&job.Task,
		&job.Status,
		&job.Backend,
		&job.Prompt,
		&job.InputWidth,
		&job.InputHeight,
		&job.OutputWidth,
		&job.OutputHeight,
		&job.Steps,
		&job.DurationMS,
		&errMsg,
		&archiveKey,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Job{}, err
		}
		return Job{}, fmt.Errorf("failed to scan job: %w", err)
	}
	job.ErrorMessage = errMsg.String
	job.ArchiveKey = archiveKey.String
	job.CreatedAt = parseTimestamp(createdAt)
	return job, nil
}

// timestampLayout is fixed-width UTC so text comparison orders correctly.
const timestampLayout = "2006-01-02 15:04:05.000000"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// parseTimestamp accepts what the driver hands back for a DATETIME column:
// either a parsed time or the stored text.
func parseTimestamp(v interface{}) time.Time {
	var s string
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case string:
		s = t
	case []byte:
		s = string(t)
	default:
		return time.Time{}
	}
	for _, layout := range []string{timestampLayout, "2006-01-02 15:04:05", time.RFC3339Nano} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// nullString stores empty strings as NULL.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
