package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Azure-Samples/Agentic-AI-Investment-Analysis-Sample-sub001/internal/domain"
)

type AnalysisJobRepo struct {
	pool *pgxpool.Pool
}

func NewAnalysisJobRepo(pool *pgxpool.Pool) *AnalysisJobRepo {
	return &AnalysisJobRepo{pool: pool}
}

func (r *AnalysisJobRepo) Create(ctx context.Context, j *domain.AnalysisJob) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO analysis_jobs (id, kind, subject_id, status, error, started_at, completed_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		j.ID, j.Kind, j.SubjectID, j.Status, j.Error, j.StartedAt, j.CompletedAt, j.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("analysisJobRepo.Create: %w", err)
	}

	return nil
}

func (r *AnalysisJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.AnalysisJob, error) {
	var j domain.AnalysisJob

	err := r.pool.QueryRow(ctx,
		`SELECT id, kind, subject_id, status, error, started_at, completed_at, created_at
		 FROM analysis_jobs WHERE id = $1`,
		id,
	).Scan(&j.ID, &j.Kind, &j.SubjectID, &j.Status, &j.Error, &j.StartedAt, &j.CompletedAt, &j.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("analysisJobRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("analysisJobRepo.GetByID: %w", err)
	}

	return &j, nil
}

func (r *AnalysisJobRepo) List(ctx context.Context, limit, offset int) ([]*domain.AnalysisJob, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, kind, subject_id, status, error, started_at, completed_at, created_at
		 FROM analysis_jobs
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("analysisJobRepo.List: %w", err)
	}
	defer rows.Close()

	return scanJobs(rows)
}

func (r *AnalysisJobRepo) ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]*domain.AnalysisJob, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, kind, subject_id, status, error, started_at, completed_at, created_at
		 FROM analysis_jobs WHERE subject_id = $1
		 ORDER BY created_at DESC`,
		subjectID,
	)
	if err != nil {
		return nil, fmt.Errorf("analysisJobRepo.ListBySubject: %w", err)
	}
	defer rows.Close()

	return scanJobs(rows)
}

func (r *AnalysisJobRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.JobStatus) error {
	var started *time.Time
	if status == domain.JobStatusRunning {
		now := time.Now()
		started = &now
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE analysis_jobs SET status = $2, started_at = COALESCE($3, started_at) WHERE id = $1`,
		id, status, started,
	)
	if err != nil {
		return fmt.Errorf("analysisJobRepo.UpdateStatus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("analysisJobRepo.UpdateStatus: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *AnalysisJobRepo) SetCompleted(ctx context.Context, id uuid.UUID, errMsg string) error {
	status := domain.JobStatusCompleted
	if errMsg != "" {
		status = domain.JobStatusFailed
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE analysis_jobs SET status = $2, error = $3, completed_at = now() WHERE id = $1`,
		id, status, errMsg,
	)
	if err != nil {
		return fmt.Errorf("analysisJobRepo.SetCompleted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("analysisJobRepo.SetCompleted: %w", domain.ErrNotFound)
	}

	return nil
}

func scanJobs(rows pgx.Rows) ([]*domain.AnalysisJob, error) {
	var out []*domain.AnalysisJob
	for rows.Next() {
		var j domain.AnalysisJob

		err := rows.Scan(&j.ID, &j.Kind, &j.SubjectID, &j.Status, &j.Error, &j.StartedAt, &j.CompletedAt, &j.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("analysisJobRepo: scan: %w", err)
		}
		out = append(out, &j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("analysisJobRepo: rows: %w", err)
	}

	return out, nil
}
