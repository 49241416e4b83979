package db

import (
	"context"
	"fmt"
	"time"
)

// DeleteJobsBefore removes jobs created before cutoff and returns how many
// were deleted.
func (r *Repository) DeleteJobsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.exec(ctx, `DELETE FROM jobs WHERE created_at < ?`, formatTimestamp(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to delete old jobs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted jobs: %w", err)
	}
	return n, nil
}

// Cleanup deletes jobs older than retentionDays. Zero or less keeps
// everything.
func (r *Repository) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	return r.DeleteJobsBefore(ctx, time.Now().AddDate(0, 0, -retentionDays))
}
