// Package analysis drives jobs through their stage pipelines and produces
// the per-job event stream: every progress event is appended to the
// durable event log (which assigns its sequence) and then published to
// Redis for live subscribers.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Azure-Samples/Agentic-AI-Investment-Analysis-Sample-sub001/internal/domain"
	redisstore "github.com/Azure-Samples/Agentic-AI-Investment-Analysis-Sample-sub001/internal/store/redis"
)

// ErrUnknownJobKind is returned for a job kind with no pipeline.
var ErrUnknownJobKind = errors.New("analysis: unknown job kind")

// ErrJobNotRunning is returned when cancelling a job already in a
// terminal state.
var ErrJobNotRunning = errors.New("analysis: job not running")

// Publisher abstracts the Redis publish operation.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithStageInterval sets the pacing between stage events. Tests shrink it.
func WithStageInterval(d time.Duration) RunnerOption {
	return func(r *Runner) { r.stageInterval = d }
}

// Runner owns the full job lifecycle: creation, stage execution, event
// emission, terminal status. One goroutine runs per live job; it is the
// single producer for that job's event log, so sequences never collide.
type Runner struct {
	jobs          domain.AnalysisJobRepository
	events        domain.EventLogRepository
	opportunities domain.OpportunityRepository
	documents     domain.DocumentRepository
	pubsub        Publisher

	stageInterval time.Duration

	mu      sync.Mutex
	cancels map[uuid.UUID]context.CancelFunc
	done    chan struct{}
}

func NewRunner(
	jobs domain.AnalysisJobRepository,
	events domain.EventLogRepository,
	opportunities domain.OpportunityRepository,
	documents domain.DocumentRepository,
	pubsub Publisher,
	opts ...RunnerOption,
) *Runner {
	r := &Runner{
		jobs:          jobs,
		events:        events,
		opportunities: opportunities,
		documents:     documents,
		pubsub:        pubsub,
		stageInterval: 2 * time.Second,
		cancels:       make(map[uuid.UUID]context.CancelFunc),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Shutdown stops all running jobs.
func (r *Runner) Shutdown() {
	close(r.done)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cancel := range r.cancels {
		cancel()
	}
}

// StartJob validates the subject, creates the job and launches its
// pipeline in the background.
func (r *Runner) StartJob(ctx context.Context, kind domain.JobKind, subjectID uuid.UUID) (*domain.AnalysisJob, error) {
	if Pipeline(kind) == nil {
		return nil, fmt.Errorf("analysis.Runner.StartJob: kind %q: %w", kind, ErrUnknownJobKind)
	}

	if err := r.markSubjectStarted(ctx, kind, subjectID); err != nil {
		return nil, fmt.Errorf("analysis.Runner.StartJob: %w", err)
	}

	now := time.Now()
	job := &domain.AnalysisJob{
		ID:        uuid.New(),
		Kind:      kind,
		SubjectID: subjectID,
		Status:    domain.JobStatusPending,
		CreatedAt: now,
	}

	if err := r.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("analysis.Runner.StartJob: create job: %w", err)
	}

	if err := r.jobs.UpdateStatus(ctx, job.ID, domain.JobStatusRunning); err != nil {
		return nil, fmt.Errorf("analysis.Runner.StartJob: mark running: %w", err)
	}
	job.Status = domain.JobStatusRunning

	runCtx, cancel := context.WithCancel(context.Background())
	r.mu.Lock()
	r.cancels[job.ID] = cancel
	r.mu.Unlock()

	go r.run(runCtx, job)

	return job, nil
}

// CancelJob stops a running job and closes its stream with a terminal
// event so subscribers do not wait forever.
func (r *Runner) CancelJob(ctx context.Context, jobID uuid.UUID) error {
	job, err := r.jobs.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("analysis.Runner.CancelJob: %w", err)
	}
	if !job.Status.ValidTransition(domain.JobStatusCancelled) {
		return fmt.Errorf("analysis.Runner.CancelJob: status %q: %w", job.Status, ErrJobNotRunning)
	}

	r.mu.Lock()
	cancel, ok := r.cancels[jobID]
	if ok {
		delete(r.cancels, jobID)
	}
	r.mu.Unlock()
	if ok {
		cancel()
	}

	if err := r.jobs.UpdateStatus(ctx, jobID, domain.JobStatusCancelled); err != nil {
		return fmt.Errorf("analysis.Runner.CancelJob: update status: %w", err)
	}

	r.emit(ctx, jobID, &domain.EventMessage{
		Kind:      domain.EventWorkflowFailed,
		Note:      "job cancelled",
		Timestamp: time.Now(),
	})

	return nil
}

// run walks the pipeline, emitting stage events, and finishes the job
// with a terminal event.
func (r *Runner) run(ctx context.Context, job *domain.AnalysisJob) {
	defer r.cleanup(job.ID)

	stages := Pipeline(job.Kind)
	total := len(stages)

	for i, stage := range stages {
		if !r.sleep(ctx) {
			// Cancelled: CancelJob already closed the stream.
			return
		}

		payload, _ := json.Marshal(map[string]any{"stage": i + 1, "total": total})
		if err := r.emit(ctx, job.ID, &domain.EventMessage{
			Kind:      domain.EventStageStarted,
			Producer:  stage.Producer,
			Payload:   payload,
			Note:      stage.Note,
			Timestamp: time.Now(),
		}); err != nil {
			r.fail(job, err)
			return
		}

		if !r.sleep(ctx) {
			return
		}

		progress, _ := json.Marshal(map[string]any{"percent": (i*100 + 100) / total})
		if err := r.emit(ctx, job.ID, &domain.EventMessage{
			Kind:      domain.EventStageProgress,
			Producer:  stage.Producer,
			Payload:   progress,
			Timestamp: time.Now(),
		}); err != nil {
			r.fail(job, err)
			return
		}

		if err := r.emit(ctx, job.ID, &domain.EventMessage{
			Kind:      domain.EventStageCompleted,
			Producer:  stage.Producer,
			Timestamp: time.Now(),
		}); err != nil {
			r.fail(job, err)
			return
		}
	}

	if err := r.jobs.SetCompleted(context.Background(), job.ID, ""); err != nil {
		log.Error().Err(err).Str("job_id", job.ID.String()).Msg("analysis: set completed")
	}
	r.markSubjectFinished(job, true)

	_ = r.emit(context.Background(), job.ID, &domain.EventMessage{
		Kind:      domain.EventWorkflowCompleted,
		Note:      "all stages finished",
		Timestamp: time.Now(),
	})
}

// fail marks the job failed and closes the stream.
func (r *Runner) fail(job *domain.AnalysisJob, cause error) {
	log.Error().Err(cause).Str("job_id", job.ID.String()).Msg("analysis: job failed")

	if err := r.jobs.SetCompleted(context.Background(), job.ID, cause.Error()); err != nil {
		log.Error().Err(err).Str("job_id", job.ID.String()).Msg("analysis: set failed")
	}
	r.markSubjectFinished(job, false)

	_ = r.emit(context.Background(), job.ID, &domain.EventMessage{
		Kind:      domain.EventWorkflowFailed,
		Note:      cause.Error(),
		Timestamp: time.Now(),
	})
}

// emit appends the event to the durable log (which assigns its sequence)
// and publishes the sequenced event to the job's Redis channel.
func (r *Runner) emit(ctx context.Context, jobID uuid.UUID, ev *domain.EventMessage) error {
	if _, err := r.events.Append(ctx, jobID, ev); err != nil {
		return fmt.Errorf("analysis: append event: %w", err)
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("analysis: marshal event: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.pubsub.Publish(pubCtx, redisstore.JobChannel(jobID), payload); err != nil {
		// Live subscribers miss the push but the log has it; their next
		// resume picks it up.
		log.Error().Err(err).Str("job_id", jobID.String()).Msg("analysis: publish event")
	}

	return nil
}

func (r *Runner) markSubjectStarted(ctx context.Context, kind domain.JobKind, subjectID uuid.UUID) error {
	switch kind {
	case domain.JobKindOpportunityAnalysis:
		if _, err := r.opportunities.GetByID(ctx, subjectID); err != nil {
			return err
		}
		return r.opportunities.UpdateStatus(ctx, subjectID, domain.OpportunityStatusAnalyzing)
	case domain.JobKindDocumentProcessing:
		if _, err := r.documents.GetByID(ctx, subjectID); err != nil {
			return err
		}
		return r.documents.UpdateStatus(ctx, subjectID, domain.DocumentStatusProcessing)
	default:
		return ErrUnknownJobKind
	}
}

func (r *Runner) markSubjectFinished(job *domain.AnalysisJob, ok bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var err error
	switch job.Kind {
	case domain.JobKindOpportunityAnalysis:
		status := domain.OpportunityStatusReviewed
		if !ok {
			status = domain.OpportunityStatusDraft
		}
		err = r.opportunities.UpdateStatus(ctx, job.SubjectID, status)
	case domain.JobKindDocumentProcessing:
		status := domain.DocumentStatusProcessed
		if !ok {
			status = domain.DocumentStatusFailed
		}
		err = r.documents.UpdateStatus(ctx, job.SubjectID, status)
	}
	if err != nil {
		log.Error().Err(err).Str("job_id", job.ID.String()).Msg("analysis: update subject status")
	}
}

// sleep paces stage emission. Returns false when the job was cancelled
// or the runner is shutting down.
func (r *Runner) sleep(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-r.done:
		return false
	case <-time.After(r.stageInterval):
		return true
	}
}

func (r *Runner) cleanup(jobID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cancels, jobID)
}
