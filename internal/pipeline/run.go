// Package pipeline orchestrates the three-stage conversion of an uploaded
// sketch into a rendered video, driving the job through its lifecycle states.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/sketch-animator/internal/db"
	"github.com/jonathan/sketch-animator/internal/storage"
)

// JobStore is the subset of the job store the orchestrator uses. After job
// creation the orchestrator is the only writer of status, output_key and
// error_message.
type JobStore interface {
	// ClaimJob atomically moves a pending job to processing, returning nil
	// when the job is not pending. This is the at-most-one-execution gate.
	ClaimJob(ctx context.Context, id uuid.UUID) (*db.Job, error)

	// CompleteJob atomically sets status=completed and the output key.
	CompleteJob(ctx context.Context, id uuid.UUID, outputKey string) error

	// FailJob atomically sets status=failed and the error message.
	FailJob(ctx context.Context, id uuid.UUID, message string) error
}

// Runner drives one job at a time through vectorize, animate and render.
// A single Runner is shared by all dispatcher workers.
type Runner struct {
	jobs         JobStore
	blobs        storage.Store
	vectorize    Stage
	animate      Stage
	render       Stage
	stageTimeout time.Duration
	logger       *zap.Logger
}

// NewRunner builds a Runner. stageTimeout bounds each stage call; zero disables
// the per-stage deadline.
func NewRunner(jobs JobStore, blobs storage.Store, vectorize, animate, render Stage, stageTimeout time.Duration, logger *zap.Logger) *Runner {
	return &Runner{
		jobs:         jobs,
		blobs:        blobs,
		vectorize:    vectorize,
		animate:      animate,
		render:       render,
		stageTimeout: stageTimeout,
		logger:       logger,
	}
}

// Run executes the pipeline for one job. The job must be pending with its input
// blob already stored; otherwise Run declines without side effects.
//
// Stage failures are recovered locally: the job transitions to failed with a
// stage-qualified message and Run returns nil. Store failures abort the run and
// are returned; the job stays in its last durably-written state.
func (r *Runner) Run(ctx context.Context, jobID uuid.UUID) error {
	job, err := r.jobs.ClaimJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("claiming job %s: %w", jobID, err)
	}
	if job == nil {
		r.logger.Info("job not pending, declining run", zap.String("job_id", jobID.String()))
		return nil
	}

	logger := r.logger.With(zap.String("job_id", job.ID.String()))
	logger.Info("processing job", zap.String("input_key", job.InputKey))

	input, err := r.blobs.Get(ctx, job.InputKey)
	if err != nil {
		return fmt.Errorf("reading input blob %s: %w", job.InputKey, err)
	}

	steps := []struct {
		stage       Stage
		key         string
		contentType string
	}{
		{r.vectorize, VectorKey(job.ID), "image/svg+xml"},
		{r.animate, AnimationKey(job.ID), "application/json"},
		{r.render, OutputKey(job.ID), "video/mp4"},
	}

	artifact := input
	for _, step := range steps {
		output, stageErr := r.runStage(ctx, step.stage, artifact)
		if stageErr != nil {
			logger.Warn("stage failed",
				zap.String("stage", stageErr.Stage),
				zap.Error(stageErr.Err))
			if err := r.jobs.FailJob(ctx, job.ID, stageErr.Error()); err != nil {
				return fmt.Errorf("recording failure for job %s: %w", job.ID, err)
			}
			return nil
		}

		// The artifact must be durable before the next stage may start.
		if err := r.blobs.Put(ctx, step.key, output, step.contentType); err != nil {
			return fmt.Errorf("storing artifact %s: %w", step.key, err)
		}
		logger.Info("stage complete",
			zap.String("stage", step.stage.Name()),
			zap.String("artifact_key", step.key),
			zap.Int("artifact_bytes", len(output)))
		artifact = output
	}

	if err := r.jobs.CompleteJob(ctx, job.ID, OutputKey(job.ID)); err != nil {
		return fmt.Errorf("completing job %s: %w", job.ID, err)
	}
	logger.Info("job completed", zap.String("output_key", OutputKey(job.ID)))
	return nil
}

// runStage invokes one stage under the configured deadline, mapping any error
// (including deadline expiry) to a StageError.
func (r *Runner) runStage(ctx context.Context, stage Stage, input []byte) ([]byte, *StageError) {
	if r.stageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.stageTimeout)
		defer cancel()
	}

	output, err := stage.Transform(ctx, input)
	if err != nil {
		return nil, &StageError{Stage: stage.Name(), Err: err}
	}
	return output, nil
}

// VectorKey returns the blob key of the stage-1 vector artifact.
func VectorKey(id uuid.UUID) string {
	return fmt.Sprintf("vectors/%s.svg", id)
}

// AnimationKey returns the blob key of the stage-2 animation descriptor.
func AnimationKey(id uuid.UUID) string {
	return fmt.Sprintf("animations/%s.json", id)
}

// OutputKey returns the blob key of the final video artifact.
func OutputKey(id uuid.UUID) string {
	return fmt.Sprintf("outputs/%s.mp4", id)
}
