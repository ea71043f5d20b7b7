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

type DocumentRepo struct {
	pool *pgxpool.Pool
}

func NewDocumentRepo(pool *pgxpool.Pool) *DocumentRepo {
	return &DocumentRepo{pool: pool}
}

func (r *DocumentRepo) Create(ctx context.Context, d *domain.Document) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO documents (id, opportunity_id, filename, content_type, size_bytes, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		d.ID, d.OpportunityID, d.Filename, d.ContentType, d.SizeBytes, d.Status, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("documentRepo.Create: %w", err)
	}

	return nil
}

func (r *DocumentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	var d domain.Document

	err := r.pool.QueryRow(ctx,
		`SELECT id, opportunity_id, filename, content_type, size_bytes, status, created_at, updated_at
		 FROM documents WHERE id = $1`,
		id,
	).Scan(&d.ID, &d.OpportunityID, &d.Filename, &d.ContentType, &d.SizeBytes, &d.Status, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("documentRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("documentRepo.GetByID: %w", err)
	}

	return &d, nil
}

func (r *DocumentRepo) List(ctx context.Context) ([]*domain.Document, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, opportunity_id, filename, content_type, size_bytes, status, created_at, updated_at
		 FROM documents
		 ORDER BY created_at DESC
		 LIMIT 1000`,
	)
	if err != nil {
		return nil, fmt.Errorf("documentRepo.List: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

func (r *DocumentRepo) ListByOpportunity(ctx context.Context, opportunityID uuid.UUID) ([]*domain.Document, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, opportunity_id, filename, content_type, size_bytes, status, created_at, updated_at
		 FROM documents WHERE opportunity_id = $1
		 ORDER BY created_at DESC`,
		opportunityID,
	)
	if err != nil {
		return nil, fmt.Errorf("documentRepo.ListByOpportunity: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

func (r *DocumentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.DocumentStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE documents SET status = $2, updated_at = now() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("documentRepo.UpdateStatus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("documentRepo.UpdateStatus: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *DocumentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("documentRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("documentRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func scanDocuments(rows pgx.Rows) ([]*domain.Document, error) {
	var out []*domain.Document
	for rows.Next() {
		var d domain.Document

		err := rows.Scan(&d.ID, &d.OpportunityID, &d.Filename, &d.ContentType, &d.SizeBytes, &d.Status, &d.CreatedAt, &d.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("documentRepo: scan: %w", err)
		}
		out = append(out, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("documentRepo: rows: %w", err)
	}

	return out, nil
}
