package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS topsis_runs (
	run_id       TEXT PRIMARY KEY,
	source       TEXT NOT NULL,
	filename     TEXT NOT NULL DEFAULT '',
	weights      TEXT NOT NULL,
	impacts      TEXT NOT NULL,
	email        TEXT,
	alternatives INTEGER NOT NULL,
	criteria     INTEGER NOT NULL,
	best         TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL,
	result       BLOB NOT NULL,
	error        TEXT,
	attempts     INTEGER NOT NULL DEFAULT 0,
	created_at   DATETIME NOT NULL,
	updated_at   DATETIME NOT NULL,
	delivered_at DATETIME
);
CREATE INDEX IF NOT EXISTS idx_topsis_runs_status ON topsis_runs (status, created_at);
`

// SQLiteStore keeps runs in a local SQLite file. It needs no external
// service and is the default store.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// a single connection serialises writers and keeps :memory: databases shared
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteStore{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, run *Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	now := s.now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO topsis_runs (run_id, source, filename, weights, impacts, email,
			alternatives, criteria, best, status, result, error, attempts, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), string(run.Source), run.Filename, run.Weights, run.Impacts, run.Email,
		run.Alternatives, run.Criteria, run.Best, string(run.Status), run.Result, run.Error, run.Attempts,
		now, now,
	)
	if err != nil {
		return err
	}
	run.CreatedAt, run.UpdatedAt = now, now
	return nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM topsis_runs WHERE run_id = ?`, id.String())
	r, err := scanSQLRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM topsis_runs WHERE 1=1`
	args := []interface{}{}

	if filter.Status != nil {
		query += " AND status = ?"
		args = append(args, string(*filter.Status))
	}
	if filter.Source != "" {
		query += " AND source = ?"
		args = append(args, string(filter.Source))
	}
	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, listLimit(filter), filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSQLRuns(rows)
}

func (s *SQLiteStore) UpdateRun(ctx context.Context, run *Run) error {
	now := s.now()
	var deliveredAt interface{}
	if run.DeliveredAt != nil {
		deliveredAt = run.DeliveredAt.UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE topsis_runs SET status = ?, error = ?, attempts = ?, delivered_at = ?, updated_at = ?
		WHERE run_id = ?`,
		string(run.Status), run.Error, run.Attempts, deliveredAt, now, run.ID.String(),
	)
	if err != nil {
		return err
	}
	run.UpdatedAt = now
	return nil
}

func (s *SQLiteStore) GetPendingDeliveries(ctx context.Context, limit int) ([]*Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM topsis_runs WHERE status = 'pending'
		ORDER BY created_at ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSQLRuns(rows)
}

func (s *SQLiteStore) DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM topsis_runs
		WHERE created_at < ? AND status <> 'pending'`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) GetStats(ctx context.Context) (*RunStats, error) {
	stats := &RunStats{}
	err := s.db.QueryRowContext(ctx, `
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

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSQLRun(row rowScanner) (*Run, error) {
	r := &Run{}
	var id, source, status string
	var email, runError sql.NullString
	var deliveredAt sql.NullTime
	if err := row.Scan(
		&id, &source, &r.Filename, &r.Weights, &r.Impacts, &email,
		&r.Alternatives, &r.Criteria, &r.Best,
		&status, &r.Result, &runError, &r.Attempts,
		&r.CreatedAt, &r.UpdatedAt, &deliveredAt,
	); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse run id %q: %w", id, err)
	}
	r.ID = parsed
	r.Source = RunSource(source)
	r.Status = RunStatus(status)
	r.Email = email.String
	r.Error = runError.String
	if deliveredAt.Valid {
		t := deliveredAt.Time
		r.DeliveredAt = &t
	}
	return r, nil
}

func scanSQLRuns(rows *sql.Rows) ([]*Run, error) {
	var runs []*Run
	for rows.Next() {
		r, err := scanSQLRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
