package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/isuckplshelpmetestimony/Kairos/internal/domain"
)

// PostgresStore persists per-run diagnostics and appraisal-job status.
// A nil *PostgresStore is valid and degrades every operation to a no-op, so
// the crawl path works without a database.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("postgres not configured")
	}
	return s.db.Ping(ctx)
}

// AppendCrawlRun appends one diagnostics row to the durable run log. The row
// is observability-only and is never returned to callers.
func (s *PostgresStore) AppendCrawlRun(ctx context.Context, run domain.CrawlRun) error {
	if s == nil {
		return nil
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO crawl_runs
		   (region, property_type, requested_count, actual_count, duration_ms, early_exit, pages_scanned, outcome, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		run.Region, run.PropertyType, run.RequestedCount, run.ActualCount,
		run.Duration.Milliseconds(), run.EarlyExit, run.PagesScanned, run.Outcome, run.CreatedAt,
	)
	return err
}

// UpdateAppraisalStatus records a job status transition for an appraisal.
func (s *PostgresStore) UpdateAppraisalStatus(ctx context.Context, appraisalID, status string) error {
	if s == nil || appraisalID == "" {
		return nil
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO appraisals (id, status, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, updated_at = NOW()`,
		appraisalID, status,
	)
	return err
}

func (s *PostgresStore) Close() {
	if s != nil {
		s.db.Close()
	}
}
