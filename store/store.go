// Package store persists generated report runs to SQLite so past days stay
// queryable after the upstream API has moved on.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound reports a run id with no stored row.
var ErrNotFound = errors.New("store: run not found")

// Store is a handle on the report-run database.
type Store struct {
	db *sql.DB
}

// RunMeta identifies one stored report run.
type RunMeta struct {
	ID         string
	District   string
	ReportDate string
	CreatedAt  time.Time
}

// Open initializes the database at path, creating directories and schema as
// needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("store: mkdir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if _, err := db.Exec(`pragma journal_mode=WAL; pragma synchronous=NORMAL; pragma busy_timeout=5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: pragmas: %w", err)
	}
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func ensureSchema(db *sql.DB) error {
	const schema = `
create table if not exists report_runs (
	id          text primary key,
	district    text not null,
	report_date text not null,
	created_at  text not null,
	report_json blob not null
);
create index if not exists idx_report_runs_district_date
	on report_runs(district, report_date);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("store: ensure schema: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores one generated report and returns its run id.
func (s *Store) SaveRun(ctx context.Context, district, reportDate string, reportJSON []byte) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`insert into report_runs (id, district, report_date, created_at, report_json)
		 values (?, ?, ?, ?, ?)`,
		id, district, reportDate, time.Now().UTC().Format(time.RFC3339), reportJSON)
	if err != nil {
		return "", fmt.Errorf("store: save run: %w", err)
	}
	return id, nil
}

// ListRuns returns run metadata for a district, newest first. A zero limit
// means no limit; an empty district lists every district.
func (s *Store) ListRuns(ctx context.Context, district string, limit int) ([]RunMeta, error) {
	query := `select id, district, report_date, created_at from report_runs`
	args := []any{}
	if district != "" {
		query += ` where district = ?`
		args = append(args, district)
	}
	query += ` order by created_at desc`
	if limit > 0 {
		query += ` limit ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunMeta
	for rows.Next() {
		var m RunMeta
		var created string
		if err := rows.Scan(&m.ID, &m.District, &m.ReportDate, &created); err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		m.CreatedAt, _ = time.Parse(time.RFC3339, created)
		runs = append(runs, m)
	}
	return runs, rows.Err()
}

// GetRun returns one stored run and its report JSON.
func (s *Store) GetRun(ctx context.Context, id string) (RunMeta, []byte, error) {
	var m RunMeta
	var created string
	var body []byte
	err := s.db.QueryRowContext(ctx,
		`select id, district, report_date, created_at, report_json
		 from report_runs where id = ?`, id).
		Scan(&m.ID, &m.District, &m.ReportDate, &created, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return RunMeta{}, nil, ErrNotFound
	}
	if err != nil {
		return RunMeta{}, nil, fmt.Errorf("store: get run: %w", err)
	}
	m.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return m, body, nil
}

// DeleteOlderThan removes runs created before cutoff and reports how many
// went.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`delete from report_runs where created_at < ?`,
		cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("store: delete old runs: %w", err)
	}
	return res.RowsAffected()
}
