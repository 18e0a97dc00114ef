// Package sqlite stores reports in an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/OFFIS-RIT/osint/pkg/report"
	"github.com/OFFIS-RIT/osint/pkg/store"

	_ "modernc.org/sqlite"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS reports (
		id           TEXT PRIMARY KEY,
		title        TEXT NOT NULL DEFAULT '',
		status       TEXT NOT NULL,
		entity_count INTEGER NOT NULL DEFAULT 0,
		created_at   TEXT NOT NULL,
		document     TEXT NOT NULL,
		diagnostics  TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS reports_created_at ON reports (created_at DESC)`,
}

// Store implements store.ReportStore with SQLite.
type Store struct {
	db *sql.DB
}

var _ store.ReportStore = (*Store)(nil)

// Open opens or creates a SQLite database at path and creates the schema.
// The parent directory is created when missing.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite serialises writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// SaveReport inserts rec or replaces the stored report with the same id.
func (s *Store) SaveReport(ctx context.Context, rec store.ReportRecord) error {
	if rec.ID == "" {
		return store.ErrMissingID
	}
	var diag sql.NullString
	if len(rec.Diagnostics) > 0 {
		diag = sql.NullString{String: string(rec.Diagnostics), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reports (id, title, status, entity_count, created_at, document, diagnostics)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title        = excluded.title,
			status       = excluded.status,
			entity_count = excluded.entity_count,
			created_at   = excluded.created_at,
			document     = excluded.document,
			diagnostics  = excluded.diagnostics`,
		rec.ID, rec.Title, string(rec.Status), rec.EntityCount,
		rec.CreatedAt.UTC().Format(time.RFC3339Nano), string(rec.Document), diag,
	)
	if err != nil {
		return fmt.Errorf("save report %s: %w", rec.ID, err)
	}
	return nil
}

// GetReport loads a report with its document and diagnostics.
func (s *Store) GetReport(ctx context.Context, id string) (store.ReportRecord, error) {
	var (
		rec       store.ReportRecord
		status    string
		createdAt string
		document  string
		diag      sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, status, entity_count, created_at, document, diagnostics
		FROM reports WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.Title, &status, &rec.EntityCount, &createdAt, &document, &diag)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ReportRecord{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	if err != nil {
		return store.ReportRecord{}, fmt.Errorf("get report %s: %w", id, err)
	}

	rec.Status = report.CompletionStatus(status)
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return store.ReportRecord{}, fmt.Errorf("parse created_at of %s: %w", id, err)
	}
	rec.Document = []byte(document)
	if diag.Valid {
		rec.Diagnostics = []byte(diag.String)
	}
	return rec, nil
}

// ListReports returns report headers, newest first.
func (s *Store) ListReports(ctx context.Context, opts store.ListOptions) ([]store.ReportRecord, error) {
	opts = opts.Normalize()
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, status, entity_count, created_at
		FROM reports
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?`, opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	out := []store.ReportRecord{}
	for rows.Next() {
		var (
			rec       store.ReportRecord
			status    string
			createdAt string
		)
		if err := rows.Scan(&rec.ID, &rec.Title, &status, &rec.EntityCount, &createdAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		rec.Status = report.CompletionStatus(status)
		if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at of %s: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
