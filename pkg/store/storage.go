package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/OFFIS-RIT/osint/pkg/report"
)

// ReportStore defines the interface for persisting assembled reports.
// Reports are immutable; saving a report with an existing id replaces the
// stored rendering of that run.
type ReportStore interface {
	SaveReport(ctx context.Context, rec ReportRecord) error
	GetReport(ctx context.Context, id string) (ReportRecord, error)
	ListReports(ctx context.Context, opts ListOptions) ([]ReportRecord, error)
	Close() error
}

// ReportRecord is the stored form of a report: its linked-data document
// plus the columns needed for listing.
type ReportRecord struct {
	ID          string                  `json:"id"`
	Title       string                  `json:"title"`
	Status      report.CompletionStatus `json:"status"`
	EntityCount int                     `json:"entityCount"`
	CreatedAt   time.Time               `json:"createdAt"`
	// Document and Diagnostics are left empty by ListReports.
	Document    json.RawMessage `json:"document,omitempty"`
	Diagnostics json.RawMessage `json:"diagnostics,omitempty"`
}

// ListOptions pages through stored reports, newest first.
type ListOptions struct {
	Limit  int
	Offset int
}

// DefaultListLimit applies when ListOptions.Limit is not positive.
const DefaultListLimit = 50
