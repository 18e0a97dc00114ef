package store

import (
	"encoding/json"
	"fmt"

	"github.com/OFFIS-RIT/osint/pkg/report"
)

// NewReportRecord renders r into its stored form.
func NewReportRecord(r report.Report) (ReportRecord, error) {
	if r.ID == "" {
		return ReportRecord{}, ErrMissingID
	}
	doc, err := r.Marshal()
	if err != nil {
		return ReportRecord{}, err
	}

	rec := ReportRecord{
		ID:          r.ID,
		Title:       r.Title,
		Status:      r.CompletionStatus,
		EntityCount: len(r.Entities),
		CreatedAt:   r.CreatedAt.UTC(),
		Document:    doc,
	}
	if r.Diagnostics != nil {
		diag, err := json.Marshal(r.Diagnostics)
		if err != nil {
			return ReportRecord{}, fmt.Errorf("failed to marshal diagnostics: %w", err)
		}
		rec.Diagnostics = diag
	}
	return rec, nil
}

// Normalize applies the default limit and clamps negative offsets.
func (o ListOptions) Normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultListLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}
