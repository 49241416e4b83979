package db

import "errors"

var (
	errClosed = errors.New("db: database connection is closed")

	// ErrNotFound is returned when a job id has no record.
	ErrNotFound = errors.New("db: job not found")
)
