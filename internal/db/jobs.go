package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const jobColumns = `id, status, original_filename, input_key, output_key, error_message, created_at, updated_at`

// ErrNotProcessing indicates a terminal transition was attempted on a job that
// is not in the processing state. The caller lost the run to another writer or
// the job already reached a terminal state.
var ErrNotProcessing = errors.New("job is not processing")

// CreateJob inserts a new pending job referencing an already-stored input
// blob. The caller supplies the ID because the input key embeds it.
func (db *DB) CreateJob(ctx context.Context, id uuid.UUID, originalFilename, inputKey string) (*Job, error) {
	row := db.pool.QueryRow(ctx,
		`INSERT INTO jobs (id, status, original_filename, input_key)
		 VALUES ($1, 'pending', $2, $3)
		 RETURNING `+jobColumns,
		id, originalFilename, inputKey,
	)
	job, err := scanJob(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return job, nil
}

// GetJob retrieves a job by ID. Returns nil without error when no job exists.
func (db *DB) GetJob(ctx context.Context, id uuid.UUID) (*Job, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// ListJobs returns a page of jobs ordered newest first, plus the total count.
func (db *DB) ListJobs(ctx context.Context, offset, limit int) ([]Job, int, error) {
	var total int
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count jobs: %w", err)
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs
		 ORDER BY created_at DESC
		 OFFSET $1 LIMIT $2`,
		offset, limit,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]Job, 0, limit)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, total, nil
}

// ClaimJob atomically moves a pending job to processing and returns the claimed
// record. Returns nil without error when the job is not pending: either another
// run already claimed it or it reached a terminal state. This single UPDATE is
// the at-most-one-execution gate for the pipeline.
func (db *DB) ClaimJob(ctx context.Context, id uuid.UUID) (*Job, error) {
	row := db.pool.QueryRow(ctx,
		`UPDATE jobs SET status = 'processing', updated_at = NOW()
		 WHERE id = $1 AND status = 'pending'
		 RETURNING `+jobColumns,
		id,
	)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to claim job: %w", err)
	}
	return job, nil
}

// CompleteJob atomically moves a processing job to completed and attaches the
// output key. Status and output key are written in one statement so a reader
// never observes completed without an output reference.
func (db *DB) CompleteJob(ctx context.Context, id uuid.UUID, outputKey string) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE jobs SET status = 'completed', output_key = $2, updated_at = NOW()
		 WHERE id = $1 AND status = 'processing'`,
		id, outputKey,
	)
	if err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotProcessing
	}
	return nil
}

// FailJob atomically moves a processing job to failed and attaches the
// stage-qualified error message.
func (db *DB) FailJob(ctx context.Context, id uuid.UUID, message string) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE jobs SET status = 'failed', error_message = $2, updated_at = NOW()
		 WHERE id = $1 AND status = 'processing'`,
		id, message,
	)
	if err != nil {
		return fmt.Errorf("failed to fail job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotProcessing
	}
	return nil
}

func scanJob(row pgx.Row) (*Job, error) {
	var job Job
	err := row.Scan(
		&job.ID,
		&job.Status,
		&job.OriginalFilename,
		&job.InputKey,
		&job.OutputKey,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &job, nil
}
