package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Azure-Samples/Agentic-AI-Investment-Analysis-Sample-sub001/internal/domain"
)

// EventLogRepo persists the per-job event log that backs stream
// resumption. (job_id, sequence) is unique; sequences start at 0 and
// increase by one per append.
type EventLogRepo struct {
	pool *pgxpool.Pool
}

func NewEventLogRepo(pool *pgxpool.Pool) *EventLogRepo {
	return &EventLogRepo{pool: pool}
}

// Append stores ev under the next free sequence for the job and returns
// the assigned sequence. The subquery and the unique constraint on
// (job_id, sequence) together keep assignment collision-free as long as
// one producer appends per job, which the runner guarantees.
func (r *EventLogRepo) Append(ctx context.Context, jobID uuid.UUID, ev *domain.EventMessage) (int64, error) {
	var seq int64

	err := r.pool.QueryRow(ctx,
		`INSERT INTO job_events (job_id, sequence, kind, producer, payload, note, created_at)
		 SELECT $1, COALESCE(MAX(sequence) + 1, 0), $2, $3, $4, $5, $6
		 FROM job_events WHERE job_id = $1
		 RETURNING sequence`,
		jobID, ev.Kind, ev.Producer, ev.Payload, ev.Note, ev.Timestamp,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("eventLogRepo.Append: %w", err)
	}

	ev.Sequence = seq
	return seq, nil
}

// ListSince returns all events for the job with sequence strictly greater
// than sinceSequence, in sequence order. Pass -1 for the full log.
func (r *EventLogRepo) ListSince(ctx context.Context, jobID uuid.UUID, sinceSequence int64) ([]*domain.EventMessage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT kind, producer, payload, sequence, note, created_at
		 FROM job_events WHERE job_id = $1 AND sequence > $2
		 ORDER BY sequence ASC`,
		jobID, sinceSequence,
	)
	if err != nil {
		return nil, fmt.Errorf("eventLogRepo.ListSince: %w", err)
	}
	defer rows.Close()

	var out []*domain.EventMessage
	for rows.Next() {
		var ev domain.EventMessage

		err = rows.Scan(&ev.Kind, &ev.Producer, &ev.Payload, &ev.Sequence, &ev.Note, &ev.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("eventLogRepo.ListSince: scan: %w", err)
		}
		out = append(out, &ev)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("eventLogRepo.ListSince: rows: %w", err)
	}

	return out, nil
}

// LastSequence returns the highest sequence stored for the job, or -1
// when the job has no events yet.
func (r *EventLogRepo) LastSequence(ctx context.Context, jobID uuid.UUID) (int64, error) {
	var seq int64

	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(sequence), -1) FROM job_events WHERE job_id = $1`,
		jobID,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("eventLogRepo.LastSequence: %w", err)
	}

	return seq, nil
}
