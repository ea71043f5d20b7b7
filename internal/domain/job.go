package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type JobKind string

const (
	JobKindOpportunityAnalysis JobKind = "opportunity-analysis"
	JobKindDocumentProcessing  JobKind = "document-processing"
)

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// ValidTransition checks whether a job status change is allowed.
// Allowed: pending->running, pending->cancelled, running->completed,
// running->failed, running->cancelled.
func (s JobStatus) ValidTransition(to JobStatus) bool {
	switch s {
	case JobStatusPending:
		return to == JobStatusRunning || to == JobStatusCancelled
	case JobStatusRunning:
		return to == JobStatusCompleted || to == JobStatusFailed || to == JobStatusCancelled
	default:
		return false
	}
}

// Terminal reports whether no further status changes or events are expected.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

// AnalysisJob is one asynchronous multi-stage run: either an opportunity
// analysis or a document-processing pipeline. Its progress is reported
// through the per-job event stream.
type AnalysisJob struct {
	ID          uuid.UUID  `json:"id"`
	Kind        JobKind    `json:"kind"`
	SubjectID   uuid.UUID  `json:"subject_id"` // opportunity or document ID, per kind
	Status      JobStatus  `json:"status"`
	Error       string     `json:"error,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type AnalysisJobRepository interface {
	Create(ctx context.Context, j *AnalysisJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*AnalysisJob, error)
	List(ctx context.Context, limit, offset int) ([]*AnalysisJob, error)
	ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]*AnalysisJob, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status JobStatus) error
	SetCompleted(ctx context.Context, id uuid.UUID, errMsg string) error
}
