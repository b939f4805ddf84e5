// Package domain contains core business types and interfaces.
//
// This file defines the ReportJob type: a queued request to (re)render a
// report's unsigned PDF asynchronously.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Job Status
// =============================================================================

// JobStatus represents the lifecycle state of a report generation job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be claimed.
	JobStatusPending JobStatus = "pending"

	// JobStatusProcessing indicates a worker has claimed the job and is
	// rendering the PDF.
	JobStatusProcessing JobStatus = "processing"

	// JobStatusCompleted indicates the PDF was generated and persisted.
	JobStatusCompleted JobStatus = "completed"

	// JobStatusFailed indicates rendering failed; LastError carries the
	// reason.
	JobStatusFailed JobStatus = "failed"
)

// String returns the string representation of the status.
func (s JobStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is a recognized value.
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

// IsActive reports whether the job still occupies the report's queue slot.
func (s JobStatus) IsActive() bool {
	return s == JobStatusPending || s == JobStatusProcessing
}

// IsTerminal reports whether the job has finished, successfully or not.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// =============================================================================
// Report Job
// =============================================================================

// DefaultJobPriority is assigned to jobs enqueued without an explicit
// priority. Lower values are claimed first.
const DefaultJobPriority = 100

// ReportJob is one async work item persisted in the report_jobs table.
type ReportJob struct {
	ID          uuid.UUID
	ReportID    uuid.UUID
	Status      JobStatus
	Priority    int
	Attempts    int
	MaxAttempts int
	LastError   string
	CreatedAt   time.Time
	StartedAt   *time.Time
	FinishedAt  *time.Time
}

// CanRetry reports whether a failed attempt leaves budget for another.
func (j *ReportJob) CanRetry() bool {
	return j.Attempts < j.MaxAttempts
}
