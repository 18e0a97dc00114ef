package pgx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/OFFIS-RIT/osint/pkg/report"
	"github.com/OFFIS-RIT/osint/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
}

// ReportDBStorage implements store.ReportStore on PostgreSQL. Documents are
// kept as JSONB.
type ReportDBStorage struct {
	conn  pgxIConn
	close func()
}

var _ store.ReportStore = (*ReportDBStorage)(nil)

// NewReportDBStorage creates a storage on pool. Close closes the pool.
func NewReportDBStorage(pool *pgxpool.Pool) *ReportDBStorage {
	return &ReportDBStorage{conn: pool, close: pool.Close}
}

// NewReportDBStorageWithConnection creates a storage on an existing
// connection owned by the caller.
func NewReportDBStorageWithConnection(conn pgxIConn) *ReportDBStorage {
	return &ReportDBStorage{conn: conn}
}

const saveReportSQL = `
INSERT INTO reports (id, title, status, entity_count, created_at, document, diagnostics)
VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7::jsonb)
ON CONFLICT (id) DO UPDATE
SET title        = EXCLUDED.title,
    status       = EXCLUDED.status,
    entity_count = EXCLUDED.entity_count,
    created_at   = EXCLUDED.created_at,
    document     = EXCLUDED.document,
    diagnostics  = EXCLUDED.diagnostics;
`

const getReportSQL = `
SELECT id, title, status, entity_count, created_at, document::text, diagnostics::text
FROM reports
WHERE id = $1;
`

const listReportsSQL = `
SELECT id, title, status, entity_count, created_at
FROM reports
ORDER BY created_at DESC, id
LIMIT $1 OFFSET $2;
`

// SaveReport inserts rec or replaces the stored report with the same id.
func (s *ReportDBStorage) SaveReport(ctx context.Context, rec store.ReportRecord) error {
	if rec.ID == "" {
		return store.ErrMissingID
	}
	var diag *string
	if len(rec.Diagnostics) > 0 {
		d := string(rec.Diagnostics)
		diag = &d
	}
	_, err := s.conn.Exec(ctx, saveReportSQL,
		rec.ID, rec.Title, string(rec.Status), rec.EntityCount,
		rec.CreatedAt.UTC(), string(rec.Document), diag,
	)
	if err != nil {
		return fmt.Errorf("save report %s: %w", rec.ID, err)
	}
	return nil
}

// GetReport loads a report with its document and diagnostics.
func (s *ReportDBStorage) GetReport(ctx context.Context, id string) (store.ReportRecord, error) {
	var (
		rec      store.ReportRecord
		status   string
		document string
		diag     *string
	)
	err := s.conn.QueryRow(ctx, getReportSQL, id).
		Scan(&rec.ID, &rec.Title, &status, &rec.EntityCount, &rec.CreatedAt, &document, &diag)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return store.ReportRecord{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	if err != nil {
		return store.ReportRecord{}, fmt.Errorf("get report %s: %w", id, err)
	}

	rec.Status = report.CompletionStatus(status)
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.Document = []byte(document)
	if diag != nil {
		rec.Diagnostics = []byte(*diag)
	}
	return rec, nil
}

// ListReports returns report headers, newest first.
func (s *ReportDBStorage) ListReports(ctx context.Context, opts store.ListOptions) ([]store.ReportRecord, error) {
	opts = opts.Normalize()
	rows, err := s.conn.Query(ctx, listReportsSQL, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	out := []store.ReportRecord{}
	for rows.Next() {
		var (
			rec     store.ReportRecord
			status  string
			created time.Time
		)
		if err := rows.Scan(&rec.ID, &rec.Title, &status, &rec.EntityCount, &created); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		rec.Status = report.CompletionStatus(status)
		rec.CreatedAt = created.UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close releases the pool when the storage owns it.
func (s *ReportDBStorage) Close() error {
	if s.close != nil {
		s.close()
	}
	return nil
}
