package db

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of a conversion job.
type JobStatus string

// Job lifecycle states. Pending and processing are non-terminal; completed and
// failed are terminal and never transition again.
const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job represents one sketch-to-video conversion request and its tracked lifecycle.
type Job struct {
	ID               uuid.UUID `json:"id"`
	Status           JobStatus `json:"status"`
	OriginalFilename string    `json:"original_filename"`
	InputKey         string    `json:"input_key"`
	OutputKey        *string   `json:"output_key,omitempty"`
	ErrorMessage     *string   `json:"error_message,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
