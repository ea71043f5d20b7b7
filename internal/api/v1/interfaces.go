package v1

import (
	"context"

	"github.com/google/uuid"

	"github.com/Azure-Samples/Agentic-AI-Investment-Analysis-Sample-sub001/internal/domain"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store satisfies this interface.
type DataStore interface {
	Opportunities() domain.OpportunityRepository
	Documents() domain.DocumentRepository
	Jobs() domain.AnalysisJobRepository
	Events() domain.EventLogRepository
}

// JobRunner abstracts job lifecycle operations for handler testing.
// *analysis.Runner satisfies this interface.
type JobRunner interface {
	StartJob(ctx context.Context, kind domain.JobKind, subjectID uuid.UUID) (*domain.AnalysisJob, error)
	CancelJob(ctx context.Context, jobID uuid.UUID) error
}
