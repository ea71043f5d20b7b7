package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Azure-Samples/Agentic-AI-Investment-Analysis-Sample-sub001/internal/domain"
)

type Store struct {
	pool          *pgxpool.Pool
	opportunities *OpportunityRepo
	documents     *DocumentRepo
	jobs          *AnalysisJobRepo
	events        *EventLogRepo
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return &Store{
		pool:          pool,
		opportunities: NewOpportunityRepo(pool),
		documents:     NewDocumentRepo(pool),
		jobs:          NewAnalysisJobRepo(pool),
		events:        NewEventLogRepo(pool),
	}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Opportunities() domain.OpportunityRepository { return s.opportunities }
func (s *Store) Documents() domain.DocumentRepository        { return s.documents }
func (s *Store) Jobs() domain.AnalysisJobRepository          { return s.jobs }
func (s *Store) Events() domain.EventLogRepository           { return s.events }
