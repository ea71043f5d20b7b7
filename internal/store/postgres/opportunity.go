package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Azure-Samples/Agentic-AI-Investment-Analysis-Sample-sub001/internal/domain"
)

type OpportunityRepo struct {
	pool *pgxpool.Pool
}

func NewOpportunityRepo(pool *pgxpool.Pool) *OpportunityRepo {
	return &OpportunityRepo{pool: pool}
}

func (r *OpportunityRepo) Create(ctx context.Context, o *domain.Opportunity) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO opportunities (id, name, ticker, sector, thesis, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		o.ID, o.Name, o.Ticker, o.Sector, o.Thesis, o.Status, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("opportunityRepo.Create: %w", err)
	}

	return nil
}

func (r *OpportunityRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Opportunity, error) {
	var o domain.Opportunity

	err := r.pool.QueryRow(ctx,
		`SELECT id, name, ticker, sector, thesis, status, created_at, updated_at
		 FROM opportunities WHERE id = $1`,
		id,
	).Scan(&o.ID, &o.Name, &o.Ticker, &o.Sector, &o.Thesis, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("opportunityRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("opportunityRepo.GetByID: %w", err)
	}

	return &o, nil
}

func (r *OpportunityRepo) List(ctx context.Context) ([]*domain.Opportunity, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, ticker, sector, thesis, status, created_at, updated_at
		 FROM opportunities
		 ORDER BY created_at DESC
		 LIMIT 1000`,
	)
	if err != nil {
		return nil, fmt.Errorf("opportunityRepo.List: %w", err)
	}
	defer rows.Close()

	var out []*domain.Opportunity
	for rows.Next() {
		var o domain.Opportunity

		err = rows.Scan(&o.ID, &o.Name, &o.Ticker, &o.Sector, &o.Thesis, &o.Status, &o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("opportunityRepo.List: scan: %w", err)
		}
		out = append(out, &o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("opportunityRepo.List: rows: %w", err)
	}

	return out, nil
}

func (r *OpportunityRepo) Update(ctx context.Context, o *domain.Opportunity) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE opportunities
		 SET name = $2, ticker = $3, sector = $4, thesis = $5, status = $6, updated_at = $7
		 WHERE id = $1`,
		o.ID, o.Name, o.Ticker, o.Sector, o.Thesis, o.Status, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("opportunityRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("opportunityRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *OpportunityRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OpportunityStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE opportunities SET status = $2, updated_at = now() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("opportunityRepo.UpdateStatus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("opportunityRepo.UpdateStatus: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *OpportunityRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM opportunities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("opportunityRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("opportunityRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}
