package pgx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/OFFIS-RIT/osint/pkg/report"
	"github.com/OFFIS-RIT/osint/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type execCall struct {
	sql  string
	args []any
}

type fakeRow struct {
	err error
}

func (r fakeRow) Scan(dest ...any) error { return r.err }

type fakeConn struct {
	execs  []execCall
	rowErr error
}

func (c *fakeConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	c.execs = append(c.execs, execCall{sql: sql, args: args})
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (c *fakeConn) Query(ctx context.Context, sql string, args ...any) (pgxv5.Rows, error) {
	return nil, errors.New("not implemented")
}

func (c *fakeConn) QueryRow(ctx context.Context, sql string, args ...any) pgxv5.Row {
	return fakeRow{err: c.rowErr}
}

func TestSaveReportArguments(t *testing.T) {
	conn := &fakeConn{}
	s := NewReportDBStorageWithConnection(conn)

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	err := s.SaveReport(context.Background(), store.ReportRecord{
		ID:        "run-1",
		Title:     "Air",
		Status:    report.StatusComplete,
		CreatedAt: created,
		Document:  []byte(`{"@type":"Report"}`),
	})
	if err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}
	if len(conn.execs) != 1 {
		t.Fatalf("expected 1 exec, got %d", len(conn.execs))
	}
	args := conn.execs[0].args
	if args[0] != "run-1" || args[2] != "complete" || args[5] != `{"@type":"Report"}` {
		t.Fatalf("unexpected args %v", args)
	}
	if ts, ok := args[4].(time.Time); !ok || ts.Location() != time.UTC {
		t.Fatalf("expected UTC timestamp, got %v", args[4])
	}
	if diag, ok := args[6].(*string); !ok || diag != nil {
		t.Fatalf("expected NULL diagnostics, got %v", args[6])
	}
}

func TestGetReportNotFound(t *testing.T) {
	s := NewReportDBStorageWithConnection(&fakeConn{rowErr: pgxv5.ErrNoRows})
	if _, err := s.GetReport(context.Background(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveReportWithoutID(t *testing.T) {
	conn := &fakeConn{}
	if err := NewReportDBStorageWithConnection(conn).SaveReport(context.Background(), store.ReportRecord{}); !errors.Is(err, store.ErrMissingID) {
		t.Fatalf("expected ErrMissingID, got %v", err)
	}
	if len(conn.execs) != 0 {
		t.Fatalf("expected no exec")
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 migration files, got %d", len(entries))
	}
}
