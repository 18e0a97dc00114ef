package store

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/OFFIS-RIT/osint/pkg/common"
	"github.com/OFFIS-RIT/osint/pkg/report"
)

func TestNewReportRecord(t *testing.T) {
	e := common.NewEntity("e1", "Data Act", common.PolicyDetails{Identifier: "2023/2854"})
	r := report.Assembler{
		RunID: "run-1",
		Title: "Data governance",
		Now:   func() time.Time { return time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC) },
	}.Assemble([]common.Entity{e}, nil, report.OutcomeCompleted).WithDiagnostics(report.Diagnostics{Rejected: 2})

	rec, err := NewReportRecord(r)
	if err != nil {
		t.Fatalf("NewReportRecord failed: %v", err)
	}
	if rec.ID != "run-1" || rec.Status != report.StatusComplete || rec.EntityCount != 1 {
		t.Fatalf("unexpected record %+v", rec)
	}

	var doc map[string]any
	if err := json.Unmarshal(rec.Document, &doc); err != nil {
		t.Fatalf("document is not JSON: %v", err)
	}
	if doc["@id"] != "urn:osint:report:run-1" {
		t.Fatalf("unexpected document id %v", doc["@id"])
	}

	var diag report.Diagnostics
	if err := json.Unmarshal(rec.Diagnostics, &diag); err != nil || diag.Rejected != 2 {
		t.Fatalf("unexpected diagnostics %s (%v)", rec.Diagnostics, err)
	}
}

func TestNewReportRecordWithoutID(t *testing.T) {
	if _, err := NewReportRecord(report.Report{}); !errors.Is(err, ErrMissingID) {
		t.Fatalf("expected ErrMissingID, got %v", err)
	}
}

func TestListOptionsNormalize(t *testing.T) {
	got := ListOptions{Limit: 0, Offset: -3}.Normalize()
	if got.Limit != DefaultListLimit || got.Offset != 0 {
		t.Fatalf("unexpected options %+v", got)
	}
	got = ListOptions{Limit: 5, Offset: 10}.Normalize()
	if got.Limit != 5 || got.Offset != 10 {
		t.Fatalf("unexpected options %+v", got)
	}
}
