package v1_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/Azure-Samples/Agentic-AI-Investment-Analysis-Sample-sub001/internal/api/v1"
	"github.com/Azure-Samples/Agentic-AI-Investment-Analysis-Sample-sub001/internal/domain"
)

// ---------------------------------------------------------------------------
// TestCreateOpportunity
// ---------------------------------------------------------------------------

func TestCreateOpportunity(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		var createCalled bool
		_, api := humatest.New(t)
		store := &mockDataStore{
			opportunities: &mockOpportunityRepo{
				createFunc: func(_ context.Context, o *domain.Opportunity) error {
					createCalled = true
					assert.Equal(t, "Acme Robotics", o.Name)
					assert.Equal(t, "ACME", o.Ticker)
					assert.Equal(t, domain.OpportunityStatusDraft, o.Status)
					return nil
				},
			},
		}
		v1.RegisterOpportunityRoutes(api, store, &mockJobRunner{})

		resp := api.Post("/opportunities", map[string]any{
			"name":   "Acme Robotics",
			"ticker": "ACME",
			"sector": "Industrial Automation",
			"thesis": "Undervalued relative to order backlog",
		})

		require.Equal(t, http.StatusOK, resp.Code)
		assert.True(t, createCalled, "store.Opportunities().Create must be invoked")

		var body domain.Opportunity
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "Acme Robotics", body.Name)
		assert.Equal(t, domain.OpportunityStatusDraft, body.Status)
		assert.NotEqual(t, uuid.Nil, body.ID)
	})

	t.Run("rejects_empty_name", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterOpportunityRoutes(api, &mockDataStore{}, &mockJobRunner{})

		resp := api.Post("/opportunities", map[string]any{"name": ""})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// TestGetOpportunity
// ---------------------------------------------------------------------------

func TestGetOpportunity(t *testing.T) {
	t.Parallel()

	oppID := uuid.New()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			opportunities: &mockOpportunityRepo{
				getByIDFunc: func(_ context.Context, id uuid.UUID) (*domain.Opportunity, error) {
					assert.Equal(t, oppID, id)
					return &domain.Opportunity{ID: oppID, Name: "Acme Robotics", Status: domain.OpportunityStatusReviewed}, nil
				},
			},
		}
		v1.RegisterOpportunityRoutes(api, store, &mockJobRunner{})

		resp := api.Get("/opportunities/" + oppID.String())
		require.Equal(t, http.StatusOK, resp.Code)

		var body domain.Opportunity
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, oppID, body.ID)
		assert.Equal(t, domain.OpportunityStatusReviewed, body.Status)
	})

	t.Run("not_found", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			opportunities: &mockOpportunityRepo{
				getByIDFunc: func(_ context.Context, _ uuid.UUID) (*domain.Opportunity, error) {
					return nil, domain.ErrNotFound
				},
			},
		}
		v1.RegisterOpportunityRoutes(api, store, &mockJobRunner{})

		resp := api.Get("/opportunities/" + uuid.NewString())
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// TestUpdateOpportunity
// ---------------------------------------------------------------------------

func TestUpdateOpportunity(t *testing.T) {
	t.Parallel()

	oppID := uuid.New()
	created := time.Now().Add(-time.Hour)

	var updated *domain.Opportunity
	_, api := humatest.New(t)
	store := &mockDataStore{
		opportunities: &mockOpportunityRepo{
			getByIDFunc: func(_ context.Context, _ uuid.UUID) (*domain.Opportunity, error) {
				return &domain.Opportunity{
					ID:        oppID,
					Name:      "Acme Robotics",
					Thesis:    "Original thesis",
					Status:    domain.OpportunityStatusDraft,
					CreatedAt: created,
					UpdatedAt: created,
				}, nil
			},
			updateFunc: func(_ context.Context, o *domain.Opportunity) error {
				updated = o
				return nil
			},
		},
	}
	v1.RegisterOpportunityRoutes(api, store, &mockJobRunner{})

	resp := api.Patch("/opportunities/"+oppID.String(), map[string]any{
		"thesis": "Revised after Q2 earnings",
	})

	require.Equal(t, http.StatusOK, resp.Code)
	require.NotNil(t, updated)
	assert.Equal(t, "Revised after Q2 earnings", updated.Thesis)
	assert.Equal(t, "Acme Robotics", updated.Name, "unset fields keep their value")
	assert.True(t, updated.UpdatedAt.After(created))
}

// ---------------------------------------------------------------------------
// TestArchiveOpportunity
// ---------------------------------------------------------------------------

func TestArchiveOpportunity(t *testing.T) {
	t.Parallel()

	oppID := uuid.New()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		var archived bool
		_, api := humatest.New(t)
		store := &mockDataStore{
			opportunities: &mockOpportunityRepo{
				getByIDFunc: func(_ context.Context, _ uuid.UUID) (*domain.Opportunity, error) {
					return &domain.Opportunity{ID: oppID, Status: domain.OpportunityStatusReviewed}, nil
				},
				updateStatusFunc: func(_ context.Context, id uuid.UUID, status domain.OpportunityStatus) error {
					archived = true
					assert.Equal(t, oppID, id)
					assert.Equal(t, domain.OpportunityStatusArchived, status)
					return nil
				},
			},
		}
		v1.RegisterOpportunityRoutes(api, store, &mockJobRunner{})

		resp := api.Post("/opportunities/" + oppID.String() + "/archive")
		require.Equal(t, http.StatusOK, resp.Code)
		assert.True(t, archived)
	})

	t.Run("conflict_while_analyzing", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			opportunities: &mockOpportunityRepo{
				getByIDFunc: func(_ context.Context, _ uuid.UUID) (*domain.Opportunity, error) {
					return &domain.Opportunity{ID: oppID, Status: domain.OpportunityStatusAnalyzing}, nil
				},
			},
		}
		v1.RegisterOpportunityRoutes(api, store, &mockJobRunner{})

		resp := api.Post("/opportunities/" + oppID.String() + "/archive")
		assert.Equal(t, http.StatusConflict, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// TestAnalyzeOpportunity
// ---------------------------------------------------------------------------

func TestAnalyzeOpportunity(t *testing.T) {
	t.Parallel()

	oppID := uuid.New()
	jobID := uuid.New()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		runner := &mockJobRunner{
			startJobFunc: func(_ context.Context, kind domain.JobKind, subjectID uuid.UUID) (*domain.AnalysisJob, error) {
				assert.Equal(t, domain.JobKindOpportunityAnalysis, kind)
				assert.Equal(t, oppID, subjectID)
				return &domain.AnalysisJob{
					ID:        jobID,
					Kind:      kind,
					SubjectID: subjectID,
					Status:    domain.JobStatusRunning,
				}, nil
			},
		}
		v1.RegisterOpportunityRoutes(api, &mockDataStore{}, runner)

		resp := api.Post("/opportunities/" + oppID.String() + "/analyze")
		require.Equal(t, http.StatusAccepted, resp.Code)

		var body domain.AnalysisJob
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, jobID, body.ID)
		assert.Equal(t, domain.JobStatusRunning, body.Status)
	})

	t.Run("unknown_opportunity", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		runner := &mockJobRunner{
			startJobFunc: func(_ context.Context, _ domain.JobKind, _ uuid.UUID) (*domain.AnalysisJob, error) {
				return nil, domain.ErrNotFound
			},
		}
		v1.RegisterOpportunityRoutes(api, &mockDataStore{}, runner)

		resp := api.Post("/opportunities/" + uuid.NewString() + "/analyze")
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}
