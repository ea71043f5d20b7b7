package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/Azure-Samples/Agentic-AI-Investment-Analysis-Sample-sub001/internal/domain"
)

type CreateOpportunityInput struct {
	Body struct {
		Name   string `json:"name" minLength:"1" maxLength:"500" doc:"Opportunity name"`
		Ticker string `json:"ticker,omitempty" maxLength:"16" doc:"Exchange ticker symbol"`
		Sector string `json:"sector,omitempty" maxLength:"100" doc:"Industry sector"`
		Thesis string `json:"thesis,omitempty" doc:"Initial investment thesis"`
	}
}

type CreateOpportunityOutput struct {
	Body *domain.Opportunity
}

type ListOpportunitiesOutput struct {
	Body []*domain.Opportunity
}

type GetOpportunityInput struct {
	ID uuid.UUID `path:"id" doc:"Opportunity ID"`
}

type GetOpportunityOutput struct {
	Body *domain.Opportunity
}

type UpdateOpportunityInput struct {
	ID   uuid.UUID `path:"id" doc:"Opportunity ID"`
	Body struct {
		Name   string `json:"name,omitempty" maxLength:"500" doc:"Opportunity name"`
		Ticker string `json:"ticker,omitempty" maxLength:"16" doc:"Exchange ticker symbol"`
		Sector string `json:"sector,omitempty" maxLength:"100" doc:"Industry sector"`
		Thesis string `json:"thesis,omitempty" doc:"Investment thesis"`
	}
}

type UpdateOpportunityOutput struct {
	Body *domain.Opportunity
}

type ArchiveOpportunityInput struct {
	ID uuid.UUID `path:"id" doc:"Opportunity ID"`
}

type ArchiveOpportunityOutput struct {
	Body *domain.Opportunity
}

type DeleteOpportunityInput struct {
	ID uuid.UUID `path:"id" doc:"Opportunity ID"`
}

type AnalyzeOpportunityInput struct {
	ID uuid.UUID `path:"id" doc:"Opportunity ID"`
}

type AnalyzeOpportunityOutput struct {
	Body *domain.AnalysisJob
}

func RegisterOpportunityRoutes(api huma.API, store DataStore, runner JobRunner) {
	huma.Register(api, huma.Operation{
		OperationID: "create-opportunity",
		Method:      http.MethodPost,
		Path:        "/opportunities",
		Summary:     "Create a new investment opportunity",
		Tags:        []string{"Opportunities"},
	}, func(ctx context.Context, input *CreateOpportunityInput) (*CreateOpportunityOutput, error) {
		now := time.Now()
		o := &domain.Opportunity{
			ID:        uuid.New(),
			Name:      input.Body.Name,
			Ticker:    input.Body.Ticker,
			Sector:    input.Body.Sector,
			Thesis:    input.Body.Thesis,
			Status:    domain.OpportunityStatusDraft,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := store.Opportunities().Create(ctx, o); err != nil {
			return nil, huma.Error500InternalServerError("failed to create opportunity", err)
		}

		return &CreateOpportunityOutput{Body: o}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-opportunities",
		Method:      http.MethodGet,
		Path:        "/opportunities",
		Summary:     "List investment opportunities",
		Tags:        []string{"Opportunities"},
	}, func(ctx context.Context, _ *struct{}) (*ListOpportunitiesOutput, error) {
		opportunities, err := store.Opportunities().List(ctx)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list opportunities", err)
		}
		return &ListOpportunitiesOutput{Body: opportunities}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-opportunity",
		Method:      http.MethodGet,
		Path:        "/opportunities/{id}",
		Summary:     "Get an opportunity by ID",
		Tags:        []string{"Opportunities"},
	}, func(ctx context.Context, input *GetOpportunityInput) (*GetOpportunityOutput, error) {
		o, err := store.Opportunities().GetByID(ctx, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("opportunity not found")
			}
			return nil, huma.Error500InternalServerError("failed to get opportunity")
		}
		return &GetOpportunityOutput{Body: o}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-opportunity",
		Method:      http.MethodPatch,
		Path:        "/opportunities/{id}",
		Summary:     "Update an opportunity",
		Tags:        []string{"Opportunities"},
	}, func(ctx context.Context, input *UpdateOpportunityInput) (*UpdateOpportunityOutput, error) {
		o, err := store.Opportunities().GetByID(ctx, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("opportunity not found")
			}
			return nil, huma.Error500InternalServerError("failed to get opportunity")
		}

		if input.Body.Name != "" {
			o.Name = input.Body.Name
		}
		if input.Body.Ticker != "" {
			o.Ticker = input.Body.Ticker
		}
		if input.Body.Sector != "" {
			o.Sector = input.Body.Sector
		}
		if input.Body.Thesis != "" {
			o.Thesis = input.Body.Thesis
		}
		o.UpdatedAt = time.Now()

		if err := store.Opportunities().Update(ctx, o); err != nil {
			return nil, huma.Error500InternalServerError("failed to update opportunity", err)
		}

		return &UpdateOpportunityOutput{Body: o}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "archive-opportunity",
		Method:      http.MethodPost,
		Path:        "/opportunities/{id}/archive",
		Summary:     "Archive an opportunity",
		Tags:        []string{"Opportunities"},
	}, func(ctx context.Context, input *ArchiveOpportunityInput) (*ArchiveOpportunityOutput, error) {
		o, err := store.Opportunities().GetByID(ctx, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("opportunity not found")
			}
			return nil, huma.Error500InternalServerError("failed to get opportunity")
		}

		if o.Status == domain.OpportunityStatusAnalyzing {
			return nil, huma.Error409Conflict("opportunity is being analyzed")
		}

		if err := store.Opportunities().UpdateStatus(ctx, input.ID, domain.OpportunityStatusArchived); err != nil {
			return nil, huma.Error500InternalServerError("failed to archive opportunity", err)
		}
		o.Status = domain.OpportunityStatusArchived

		return &ArchiveOpportunityOutput{Body: o}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-opportunity",
		Method:        http.MethodDelete,
		Path:          "/opportunities/{id}",
		Summary:       "Delete an opportunity",
		Tags:          []string{"Opportunities"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *DeleteOpportunityInput) (*struct{}, error) {
		if err := store.Opportunities().Delete(ctx, input.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("opportunity not found")
			}
			return nil, huma.Error500InternalServerError("failed to delete opportunity", err)
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "analyze-opportunity",
		Method:        http.MethodPost,
		Path:          "/opportunities/{id}/analyze",
		Summary:       "Start the analysis pipeline for an opportunity",
		Tags:          []string{"Opportunities"},
		DefaultStatus: http.StatusAccepted,
	}, func(ctx context.Context, input *AnalyzeOpportunityInput) (*AnalyzeOpportunityOutput, error) {
		job, err := runner.StartJob(ctx, domain.JobKindOpportunityAnalysis, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("opportunity not found")
			}
			return nil, huma.Error500InternalServerError("failed to start analysis", err)
		}
		return &AnalyzeOpportunityOutput{Body: job}, nil
	})
}
