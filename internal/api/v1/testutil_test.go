package v1_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/Azure-Samples/Agentic-AI-Investment-Analysis-Sample-sub001/internal/domain"
)

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	opportunities domain.OpportunityRepository
	documents     domain.DocumentRepository
	jobs          domain.AnalysisJobRepository
	events        domain.EventLogRepository
}

func (m *mockDataStore) Opportunities() domain.OpportunityRepository { return m.opportunities }
func (m *mockDataStore) Documents() domain.DocumentRepository        { return m.documents }
func (m *mockDataStore) Jobs() domain.AnalysisJobRepository          { return m.jobs }
func (m *mockDataStore) Events() domain.EventLogRepository           { return m.events }

// ---------------------------------------------------------------------------
// Mock OpportunityRepository
// ---------------------------------------------------------------------------

type mockOpportunityRepo struct {
	createFunc       func(ctx context.Context, o *domain.Opportunity) error
	getByIDFunc      func(ctx context.Context, id uuid.UUID) (*domain.Opportunity, error)
	listFunc         func(ctx context.Context) ([]*domain.Opportunity, error)
	updateFunc       func(ctx context.Context, o *domain.Opportunity) error
	updateStatusFunc func(ctx context.Context, id uuid.UUID, status domain.OpportunityStatus) error
	deleteFunc       func(ctx context.Context, id uuid.UUID) error
}

func (m *mockOpportunityRepo) Create(ctx context.Context, o *domain.Opportunity) error {
	return m.createFunc(ctx, o)
}

func (m *mockOpportunityRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Opportunity, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockOpportunityRepo) List(ctx context.Context) ([]*domain.Opportunity, error) {
	return m.listFunc(ctx)
}

func (m *mockOpportunityRepo) Update(ctx context.Context, o *domain.Opportunity) error {
	return m.updateFunc(ctx, o)
}

func (m *mockOpportunityRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OpportunityStatus) error {
	return m.updateStatusFunc(ctx, id, status)
}

func (m *mockOpportunityRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock DocumentRepository
// ---------------------------------------------------------------------------

type mockDocumentRepo struct {
	createFunc            func(ctx context.Context, d *domain.Document) error
	getByIDFunc           func(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	listFunc              func(ctx context.Context) ([]*domain.Document, error)
	listByOpportunityFunc func(ctx context.Context, opportunityID uuid.UUID) ([]*domain.Document, error)
	updateStatusFunc      func(ctx context.Context, id uuid.UUID, status domain.DocumentStatus) error
	deleteFunc            func(ctx context.Context, id uuid.UUID) error
}

func (m *mockDocumentRepo) Create(ctx context.Context, d *domain.Document) error {
	return m.createFunc(ctx, d)
}

func (m *mockDocumentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockDocumentRepo) List(ctx context.Context) ([]*domain.Document, error) {
	return m.listFunc(ctx)
}

func (m *mockDocumentRepo) ListByOpportunity(ctx context.Context, opportunityID uuid.UUID) ([]*domain.Document, error) {
	return m.listByOpportunityFunc(ctx, opportunityID)
}

func (m *mockDocumentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.DocumentStatus) error {
	return m.updateStatusFunc(ctx, id, status)
}

func (m *mockDocumentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock AnalysisJobRepository
// ---------------------------------------------------------------------------

type mockJobRepo struct {
	createFunc        func(ctx context.Context, j *domain.AnalysisJob) error
	getByIDFunc       func(ctx context.Context, id uuid.UUID) (*domain.AnalysisJob, error)
	listFunc          func(ctx context.Context, limit, offset int) ([]*domain.AnalysisJob, error)
	listBySubjectFunc func(ctx context.Context, subjectID uuid.UUID) ([]*domain.AnalysisJob, error)
	updateStatusFunc  func(ctx context.Context, id uuid.UUID, status domain.JobStatus) error
	setCompletedFunc  func(ctx context.Context, id uuid.UUID, errMsg string) error
}

func (m *mockJobRepo) Create(ctx context.Context, j *domain.AnalysisJob) error {
	return m.createFunc(ctx, j)
}

func (m *mockJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.AnalysisJob, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockJobRepo) List(ctx context.Context, limit, offset int) ([]*domain.AnalysisJob, error) {
	return m.listFunc(ctx, limit, offset)
}

func (m *mockJobRepo) ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]*domain.AnalysisJob, error) {
	return m.listBySubjectFunc(ctx, subjectID)
}

func (m *mockJobRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.JobStatus) error {
	return m.updateStatusFunc(ctx, id, status)
}

func (m *mockJobRepo) SetCompleted(ctx context.Context, id uuid.UUID, errMsg string) error {
	return m.setCompletedFunc(ctx, id, errMsg)
}

// ---------------------------------------------------------------------------
// Mock EventLogRepository
// ---------------------------------------------------------------------------

type mockEventLog struct {
	appendFunc       func(ctx context.Context, jobID uuid.UUID, ev *domain.EventMessage) (int64, error)
	listSinceFunc    func(ctx context.Context, jobID uuid.UUID, sinceSequence int64) ([]*domain.EventMessage, error)
	lastSequenceFunc func(ctx context.Context, jobID uuid.UUID) (int64, error)
}

func (m *mockEventLog) Append(ctx context.Context, jobID uuid.UUID, ev *domain.EventMessage) (int64, error) {
	return m.appendFunc(ctx, jobID, ev)
}

func (m *mockEventLog) ListSince(ctx context.Context, jobID uuid.UUID, sinceSequence int64) ([]*domain.EventMessage, error) {
	return m.listSinceFunc(ctx, jobID, sinceSequence)
}

func (m *mockEventLog) LastSequence(ctx context.Context, jobID uuid.UUID) (int64, error) {
	return m.lastSequenceFunc(ctx, jobID)
}

// ---------------------------------------------------------------------------
// Mock JobRunner
// ---------------------------------------------------------------------------

type mockJobRunner struct {
	startJobFunc  func(ctx context.Context, kind domain.JobKind, subjectID uuid.UUID) (*domain.AnalysisJob, error)
	cancelJobFunc func(ctx context.Context, jobID uuid.UUID) error
}

func (m *mockJobRunner) StartJob(ctx context.Context, kind domain.JobKind, subjectID uuid.UUID) (*domain.AnalysisJob, error) {
	return m.startJobFunc(ctx, kind, subjectID)
}

func (m *mockJobRunner) CancelJob(ctx context.Context, jobID uuid.UUID) error {
	return m.cancelJobFunc(ctx, jobID)
}
