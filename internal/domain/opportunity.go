package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type OpportunityStatus string

const (
	OpportunityStatusDraft     OpportunityStatus = "draft"
	OpportunityStatusAnalyzing OpportunityStatus = "analyzing"
	OpportunityStatusReviewed  OpportunityStatus = "reviewed"
	OpportunityStatusArchived  OpportunityStatus = "archived"
)

// Opportunity is one investment candidate under review on the dashboard.
type Opportunity struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	Ticker    string            `json:"ticker,omitempty"`
	Sector    string            `json:"sector,omitempty"`
	Thesis    string            `json:"thesis,omitempty"`
	Status    OpportunityStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type OpportunityRepository interface {
	Create(ctx context.Context, o *Opportunity) error
	GetByID(ctx context.Context, id uuid.UUID) (*Opportunity, error)
	List(ctx context.Context) ([]*Opportunity, error)
	Update(ctx context.Context, o *Opportunity) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status OpportunityStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}
