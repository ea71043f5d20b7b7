package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type DocumentStatus string

const (
	DocumentStatusUploaded   DocumentStatus = "uploaded"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusProcessed  DocumentStatus = "processed"
	DocumentStatusFailed     DocumentStatus = "failed"
)

// Document is uploaded source material (10-K, pitch deck, memo) attached
// to an opportunity. Only metadata lives here; blob storage is external.
type Document struct {
	ID            uuid.UUID      `json:"id"`
	OpportunityID *uuid.UUID     `json:"opportunity_id,omitempty"`
	Filename      string         `json:"filename"`
	ContentType   string         `json:"content_type,omitempty"`
	SizeBytes     int64          `json:"size_bytes"`
	Status        DocumentStatus `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type DocumentRepository interface {
	Create(ctx context.Context, d *Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*Document, error)
	List(ctx context.Context) ([]*Document, error)
	ListByOpportunity(ctx context.Context, opportunityID uuid.UUID) ([]*Document, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status DocumentStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}
