package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/OFFIS-RIT/osint/pkg/report"
	"github.com/OFFIS-RIT/osint/pkg/store"
	"github.com/google/go-cmp/cmp"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "reports.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func record(id string, created time.Time) store.ReportRecord {
	return store.ReportRecord{
		ID:          id,
		Title:       "Report " + id,
		Status:      report.StatusPartial,
		EntityCount: 2,
		CreatedAt:   created,
		Document:    json.RawMessage(`{"@context":"https://schema.org","@type":"Report","hasPart":[]}`),
		Diagnostics: json.RawMessage(`{"rejected":1}`),
	}
}

func TestSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	want := record("run-1", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	if err := s.SaveReport(ctx, want); err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}
	got, err := s.GetReport(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetReport failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}

	want.Status = report.StatusComplete
	want.Diagnostics = nil
	if err := s.SaveReport(ctx, want); err != nil {
		t.Fatalf("SaveReport (replace) failed: %v", err)
	}
	got, err = s.GetReport(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetReport failed: %v", err)
	}
	if got.Status != report.StatusComplete || got.Diagnostics != nil {
		t.Fatalf("expected replaced record, got %+v", got)
	}
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.GetReport(context.Background(), "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.SaveReport(context.Background(), store.ReportRecord{}); !errors.Is(err, store.ErrMissingID) {
		t.Fatalf("expected ErrMissingID, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		if err := s.SaveReport(ctx, record(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("SaveReport(%s) failed: %v", id, err)
		}
	}

	list, err := s.ListReports(ctx, store.ListOptions{Limit: 2})
	if err != nil {
		t.Fatalf("ListReports failed: %v", err)
	}
	var ids []string
	for _, rec := range list {
		ids = append(ids, rec.ID)
		if rec.Document != nil {
			t.Fatalf("list must not load documents")
		}
	}
	if diff := cmp.Diff([]string{"c", "b"}, ids); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	rest, err := s.ListReports(ctx, store.ListOptions{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("ListReports failed: %v", err)
	}
	if len(rest) != 1 || rest[0].ID != "a" {
		t.Fatalf("unexpected second page %+v", rest)
	}
}
