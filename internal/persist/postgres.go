package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-jd-crawler/internal/models"
)

var schema = []string{`
CREATE TABLE IF NOT EXISTS crawl_runs (
	id         UUID PRIMARY KEY,
	source     TEXT NOT NULL,
	status     TEXT NOT NULL,
	job_count  INT NOT NULL DEFAULT 0,
	started_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, `
CREATE TABLE IF NOT EXISTS jobs (
	url              TEXT PRIMARY KEY,
	source           TEXT NOT NULL,
	title            TEXT NOT NULL,
	company          TEXT NOT NULL,
	experience_years TEXT NOT NULL DEFAULT '',
	location         TEXT NOT NULL DEFAULT '',
	deadline         TEXT NOT NULL DEFAULT '',
	rating           TEXT NOT NULL DEFAULT '',
	review_count     INT,
	run_id           UUID,
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE INDEX IF NOT EXISTS jobs_source_idx ON jobs (source)`,
}

const upsertJob = `
	INSERT INTO jobs (url, source, title, company, experience_years, location, deadline, rating, review_count, run_id, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::uuid, now())
	ON CONFLICT (url)
	DO UPDATE SET source = EXCLUDED.source, title = EXCLUDED.title, company = EXCLUDED.company,
		experience_years = EXCLUDED.experience_years, location = EXCLUDED.location,
		deadline = EXCLUDED.deadline, rating = EXCLUDED.rating, review_count = EXCLUDED.review_count,
		run_id = EXCLUDED.run_id, updated_at = now()`

// PostgresSink upserts records keyed by url and tracks pipeline runs.
type PostgresSink struct {
	db *pgxpool.Pool
}

var _ Sink = (*PostgresSink)(nil)

func ConnectPostgres(ctx context.Context, connString string) (*PostgresSink, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 1
	config.MaxConnLifetime = time.Hour

	// transaction-mode poolers reject prepared statements
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	return &PostgresSink{db: pool}, nil
}

func (s *PostgresSink) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *PostgresSink) Name() string { return "postgres" }

// EnsureSchema creates the tables if they do not exist.
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Write upserts every job in one transaction.
func (s *PostgresSink) Write(ctx context.Context, source, runID string, jobs []models.Job) error {
	if len(jobs) == 0 {
		return nil
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, j := range jobs {
		batch.Queue(upsertJob, j.URL, source, j.Title, j.Company, j.ExperienceYears, j.Location, j.Deadline, j.Rating, j.ReviewCount, nullable(runID))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to upsert jobs: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit jobs: %w", err)
	}
	return nil
}

// RecordRun inserts or updates the row for run.ID.
func (s *PostgresSink) RecordRun(ctx context.Context, run models.Run) error {
	query := `
		INSERT INTO crawl_runs (id, source, status, job_count, started_at, updated_at)
		VALUES ($1::uuid, $2, $3, $4, $5, now())
		ON CONFLICT (id)
		DO UPDATE SET status = EXCLUDED.status, job_count = EXCLUDED.job_count, updated_at = now()`
	if _, err := s.db.Exec(ctx, query, run.ID, run.Source, string(run.Status), run.JobCount, run.StartedAt); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// Sources lists the sources that have at least one stored job.
func (s *PostgresSink) Sources(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT DISTINCT source FROM jobs ORDER BY source`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// Jobs returns the stored jobs of source, most recently updated first.
func (s *PostgresSink) Jobs(ctx context.Context, source string) ([]models.StoredJob, error) {
	query := `
		SELECT title, company, experience_years, location, deadline, url, rating, review_count,
			source, COALESCE(run_id::text, ''), updated_at
		FROM jobs WHERE source = $1 ORDER BY updated_at DESC, url`
	rows, err := s.db.Query(ctx, query, source)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.StoredJob, error) {
		var j models.StoredJob
		err := row.Scan(&j.Title, &j.Company, &j.ExperienceYears, &j.Location, &j.Deadline, &j.URL,
			&j.Rating, &j.ReviewCount, &j.Source, &j.RunID, &j.UpdatedAt)
		return j, err
	})
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
