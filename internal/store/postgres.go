package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS topsis_runs (
	run_id       UUID PRIMARY KEY,
	source       TEXT NOT NULL,
	filename     TEXT NOT NULL DEFAULT '',
	weights      TEXT NOT NULL,
	impacts      TEXT NOT NULL,
	email        TEXT,
	alternatives INTEGER NOT NULL,
	criteria     INTEGER NOT NULL,
	best         TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL,
	result       BYTEA NOT NULL,
	error        TEXT,
	attempts     INTEGER NOT NULL DEFAULT 0,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	delivered_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_topsis_runs_status ON topsis_runs (status, created_at);
`

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const runColumns = `run_id, source, filename, weights, impacts, email,
	alternatives, criteria, best,
	status, result, error, attempts,
	created_at, updated_at, delivered_at`

func (s *PostgresStore) CreateRun(ctx context.Context, run *Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	return s.pool.QueryRow(ctx, `
		INSERT INTO topsis_runs (run_id, source, filename, weights, impacts, email,
			alternatives, criteria, best, status, result, error, attempts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at`,
		run.ID, run.Source, run.Filename, run.Weights, run.Impacts, run.Email,
		run.Alternatives, run.Criteria, run.Best, run.Status, run.Result, run.Error, run.Attempts,
	).Scan(&run.CreatedAt, &run.UpdatedAt)
}

func (s *PostgresStore) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM topsis_runs WHERE run_id = $1`, id)
	r, err := scanRun(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM topsis_runs WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.Status != nil {
		n++
		query += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, string(*filter.Status))
	}
	if filter.Source != "" {
		n++
		query += fmt.Sprintf(" AND source = $%d", n)
		args = append(args, string(filter.Source))
	}

	query += " ORDER BY created_at DESC"

	n++
	query += fmt.Sprintf(" LIMIT $%d", n)
	args = append(args, listLimit(filter))

	if filter.Offset > 0 {
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRuns(rows)
}

func (s *PostgresStore) UpdateRun(ctx context.Context, run *Run) error {
	return s.pool.QueryRow(ctx, `
		UPDATE topsis_runs SET
			status = $2, error = $3, attempts = $4, delivered_at = $5, updated_at = now()
		WHERE run_id = $1
		RETURNING updated_at`,
		run.ID, run.Status, run.Error, run.Attempts, run.DeliveredAt,
	).Scan(&run.UpdatedAt)
}

func (s *PostgresStore) GetPendingDeliveries(ctx context.Context, limit int) ([]*Run, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+runColumns+`
		FROM topsis_runs WHERE status = 'pending'
		ORDER BY created_at ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRuns(rows)
}

func (s *PostgresStore) DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM topsis_runs
		WHERE created_at < $1 AND status <> 'pending'`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) GetStats(ctx context.Context) (*RunStats, error) {
	stats := &RunStats{}
	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'delivered' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0)
		FROM topsis_runs`,
	).Scan(&stats.Total, &stats.Completed, &stats.Pending, &stats.Delivered, &stats.Failed)
	return stats, err
}

func scanRun(row pgx.Row) (*Run, error) {
	r := &Run{}
	var email, runError sql.NullString
	if err := row.Scan(
		&r.ID, &r.Source, &r.Filename, &r.Weights, &r.Impacts, &email,
		&r.Alternatives, &r.Criteria, &r.Best,
		&r.Status, &r.Result, &runError, &r.Attempts,
		&r.CreatedAt, &r.UpdatedAt, &r.DeliveredAt,
	); err != nil {
		return nil, err
	}
	r.Email = email.String
	r.Error = runError.String
	return r, nil
}

func scanRuns(rows pgx.Rows) ([]*Run, error) {
	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
