package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/Azure-Samples/Agentic-AI-Investment-Analysis-Sample-sub001/internal/analysis"
	"github.com/Azure-Samples/Agentic-AI-Investment-Analysis-Sample-sub001/internal/domain"
)

type ListJobsInput struct {
	SubjectID OptionalParam[uuid.UUID] `query:"subject_id" doc:"Filter by opportunity or document ID"`
	Limit     int        `query:"limit" minimum:"1" maximum:"200" default:"50" doc:"Page size"`
	Offset    int        `query:"offset" minimum:"0" default:"0" doc:"Page offset"`
}

type ListJobsOutput struct {
	Body []*domain.AnalysisJob
}

type GetJobInput struct {
	ID uuid.UUID `path:"id" doc:"Job ID"`
}

type GetJobOutput struct {
	Body *domain.AnalysisJob
}

type ListJobEventsInput struct {
	ID            uuid.UUID `path:"id" doc:"Job ID"`
	SinceSequence int64     `query:"since_sequence" minimum:"-1" default:"-1" doc:"Return events with a sequence greater than this; -1 returns the full log"`
}

type ListJobEventsOutput struct {
	Body []*domain.EventMessage
}

type CancelJobInput struct {
	ID uuid.UUID `path:"id" doc:"Job ID"`
}

type CancelJobOutput struct {
	Body *domain.AnalysisJob
}

func RegisterJobRoutes(api huma.API, store DataStore, runner JobRunner) {
	huma.Register(api, huma.Operation{
		OperationID: "list-jobs",
		Method:      http.MethodGet,
		Path:        "/jobs",
		Summary:     "List analysis jobs",
		Tags:        []string{"Jobs"},
	}, func(ctx context.Context, input *ListJobsInput) (*ListJobsOutput, error) {
		var (
			jobs []*domain.AnalysisJob
			err  error
		)
		if input.SubjectID.IsSet {
			jobs, err = store.Jobs().ListBySubject(ctx, input.SubjectID.Value)
		} else {
			jobs, err = store.Jobs().List(ctx, input.Limit, input.Offset)
		}
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list jobs", err)
		}
		return &ListJobsOutput{Body: jobs}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-job",
		Method:      http.MethodGet,
		Path:        "/jobs/{id}",
		Summary:     "Get a job by ID",
		Tags:        []string{"Jobs"},
	}, func(ctx context.Context, input *GetJobInput) (*GetJobOutput, error) {
		job, err := store.Jobs().GetByID(ctx, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("job not found")
			}
			return nil, huma.Error500InternalServerError("failed to get job")
		}
		return &GetJobOutput{Body: job}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-job-events",
		Method:      http.MethodGet,
		Path:        "/jobs/{id}/events",
		Summary:     "List a job's persisted progress events",
		Tags:        []string{"Jobs"},
	}, func(ctx context.Context, input *ListJobEventsInput) (*ListJobEventsOutput, error) {
		if _, err := store.Jobs().GetByID(ctx, input.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("job not found")
			}
			return nil, huma.Error500InternalServerError("failed to get job")
		}

		events, err := store.Events().ListSince(ctx, input.ID, input.SinceSequence)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list events", err)
		}
		return &ListJobEventsOutput{Body: events}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "cancel-job",
		Method:      http.MethodPost,
		Path:        "/jobs/{id}/cancel",
		Summary:     "Cancel a running job",
		Tags:        []string{"Jobs"},
	}, func(ctx context.Context, input *CancelJobInput) (*CancelJobOutput, error) {
		if err := runner.CancelJob(ctx, input.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("job not found")
			}
			if errors.Is(err, analysis.ErrJobNotRunning) {
				return nil, huma.Error409Conflict("job already finished")
			}
			return nil, huma.Error500InternalServerError("failed to cancel job", err)
		}

		job, err := store.Jobs().GetByID(ctx, input.ID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to get job")
		}
		return &CancelJobOutput{Body: job}, nil
	})
}
