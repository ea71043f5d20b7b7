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

type RegisterDocumentInput struct {
	Body struct {
		OpportunityID *uuid.UUID `json:"opportunity_id,omitempty" doc:"Opportunity the document belongs to"`
		Filename      string     `json:"filename" minLength:"1" maxLength:"500" doc:"Original filename"`
		ContentType   string     `json:"content_type,omitempty" maxLength:"255" doc:"MIME type"`
		SizeBytes     int64      `json:"size_bytes,omitempty" minimum:"0" doc:"Size in bytes"`
	}
}

type RegisterDocumentOutput struct {
	Body *domain.Document
}

type ListDocumentsInput struct {
	OpportunityID OptionalParam[uuid.UUID] `query:"opportunity_id" doc:"Filter by opportunity"`
}

type ListDocumentsOutput struct {
	Body []*domain.Document
}

type GetDocumentInput struct {
	ID uuid.UUID `path:"id" doc:"Document ID"`
}

type GetDocumentOutput struct {
	Body *domain.Document
}

type DeleteDocumentInput struct {
	ID uuid.UUID `path:"id" doc:"Document ID"`
}

type ProcessDocumentInput struct {
	ID uuid.UUID `path:"id" doc:"Document ID"`
}

type ProcessDocumentOutput struct {
	Body *domain.AnalysisJob
}

func RegisterDocumentRoutes(api huma.API, store DataStore, runner JobRunner) {
	huma.Register(api, huma.Operation{
		OperationID: "register-document",
		Method:      http.MethodPost,
		Path:        "/documents",
		Summary:     "Register an uploaded document",
		Tags:        []string{"Documents"},
	}, func(ctx context.Context, input *RegisterDocumentInput) (*RegisterDocumentOutput, error) {
		if input.Body.OpportunityID != nil {
			if _, err := store.Opportunities().GetByID(ctx, *input.Body.OpportunityID); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return nil, huma.Error404NotFound("opportunity not found")
				}
				return nil, huma.Error500InternalServerError("failed to validate opportunity")
			}
		}

		now := time.Now()
		d := &domain.Document{
			ID:            uuid.New(),
			OpportunityID: input.Body.OpportunityID,
			Filename:      input.Body.Filename,
			ContentType:   input.Body.ContentType,
			SizeBytes:     input.Body.SizeBytes,
			Status:        domain.DocumentStatusUploaded,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		if err := store.Documents().Create(ctx, d); err != nil {
			return nil, huma.Error500InternalServerError("failed to register document", err)
		}

		return &RegisterDocumentOutput{Body: d}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-documents",
		Method:      http.MethodGet,
		Path:        "/documents",
		Summary:     "List documents",
		Tags:        []string{"Documents"},
	}, func(ctx context.Context, input *ListDocumentsInput) (*ListDocumentsOutput, error) {
		var (
			documents []*domain.Document
			err       error
		)
		if input.OpportunityID.IsSet {
			documents, err = store.Documents().ListByOpportunity(ctx, input.OpportunityID.Value)
		} else {
			documents, err = store.Documents().List(ctx)
		}
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list documents", err)
		}
		return &ListDocumentsOutput{Body: documents}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-document",
		Method:      http.MethodGet,
		Path:        "/documents/{id}",
		Summary:     "Get a document by ID",
		Tags:        []string{"Documents"},
	}, func(ctx context.Context, input *GetDocumentInput) (*GetDocumentOutput, error) {
		d, err := store.Documents().GetByID(ctx, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("document not found")
			}
			return nil, huma.Error500InternalServerError("failed to get document")
		}
		return &GetDocumentOutput{Body: d}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-document",
		Method:        http.MethodDelete,
		Path:          "/documents/{id}",
		Summary:       "Delete a document",
		Tags:          []string{"Documents"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *DeleteDocumentInput) (*struct{}, error) {
		if err := store.Documents().Delete(ctx, input.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("document not found")
			}
			return nil, huma.Error500InternalServerError("failed to delete document", err)
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "process-document",
		Method:        http.MethodPost,
		Path:          "/documents/{id}/process",
		Summary:       "Start the processing pipeline for a document",
		Tags:          []string{"Documents"},
		DefaultStatus: http.StatusAccepted,
	}, func(ctx context.Context, input *ProcessDocumentInput) (*ProcessDocumentOutput, error) {
		job, err := runner.StartJob(ctx, domain.JobKindDocumentProcessing, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("document not found")
			}
			return nil, huma.Error500InternalServerError("failed to start processing", err)
		}
		return &ProcessDocumentOutput{Body: job}, nil
	})
}
