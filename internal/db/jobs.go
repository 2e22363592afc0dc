package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// jobColumns are the fields UpdateImportJob accepts.
var jobColumns = map[string]bool{
	"status":               true,
	"progress":             true,
	"summary":              true,
	"error":                true,
	"dataset_id":           true,
	"started_at":           true,
	"completed_at":         true,
	"estimated_completion": true,
}

// CreateImportJob inserts a new job row.
func (d *DB) CreateImportJob(ctx context.Context, job *ImportJob) error {
	query := `
		INSERT INTO import_jobs (job_id, status, request, progress, created_at, estimated_completion)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := d.pool.Exec(ctx, query,
		job.JobID, job.Status, job.Request, job.Progress, job.CreatedAt, job.EstimatedCompletion)
	if err != nil {
		return fmt.Errorf("inserting import job %s: %w", job.JobID, err)
	}
	return nil
}

// UpdateImportJob applies a partial update to a job row. Keys must be known
// columns; an unknown key or an unknown job id is an error. An empty fields
// map is a no-op.
func (d *DB) UpdateImportJob(ctx context.Context, jobID string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	setClauses := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	argNum := 1
	for column, value := range fields {
		if !jobColumns[column] {
			return fmt.Errorf("unsupported import job field: %s", column)
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argNum))
		args = append(args, value)
		argNum++
	}
	args = append(args, jobID)

	query := fmt.Sprintf("UPDATE import_jobs SET %s WHERE job_id = $%d",
		strings.Join(setClauses, ", "), argNum)

	tag, err := d.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating import job %s: %w", jobID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("import job not found: %s", jobID)
	}
	return nil
}

// GetImportJob returns the job document, or nil if the id is unknown.
func (d *DB) GetImportJob(ctx context.Context, jobID string) (*ImportJob, error) {
	query := `
		SELECT job_id, status, request, progress, summary, error, dataset_id,
		       created_at, started_at, completed_at, estimated_completion
		FROM import_jobs
		WHERE job_id = $1`

	var job ImportJob
	err := d.pool.QueryRow(ctx, query, jobID).Scan(
		&job.JobID, &job.Status, &job.Request, &job.Progress, &job.Summary,
		&job.Error, &job.DatasetID, &job.CreatedAt, &job.StartedAt,
		&job.CompletedAt, &job.EstimatedCompletion)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching import job %s: %w", jobID, err)
	}
	return &job, nil
}
