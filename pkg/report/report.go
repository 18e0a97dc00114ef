package report

import (
	"time"

	"github.com/OFFIS-RIT/osint/pkg/common"
	"github.com/OFFIS-RIT/osint/pkg/coverage"
)

// Outcome describes how the research run ended.
type Outcome string

const (
	// OutcomeCompleted is a normal termination with usable output.
	OutcomeCompleted Outcome = "completed"
	// OutcomeDegraded is a run that returned a payload nothing could be
	// recovered from.
	OutcomeDegraded Outcome = "degraded"
	// OutcomeFailed is a run without any usable payload.
	OutcomeFailed Outcome = "failed"
)

// CompletionStatus is the status carried by a report.
type CompletionStatus string

const (
	StatusComplete CompletionStatus = "complete"
	StatusPartial  CompletionStatus = "partial"
	StatusFailed   CompletionStatus = "failed"
)

// Diagnostics are the per-run counters shown next to a report. They are
// informational only.
type Diagnostics struct {
	SectionsParsed        int      `json:"sectionsParsed"`
	SectionsDiscarded     int      `json:"sectionsDiscarded"`
	Strategy              string   `json:"strategy"`
	ParseFailure          bool     `json:"parseFailure"`
	PayloadLength         int      `json:"payloadLength"`
	UnknownKinds          []string `json:"unknownKinds,omitempty"`
	Rejected              int      `json:"rejected"`
	EntitiesBeforeDedup   int      `json:"entitiesBeforeDedup"`
	EntitiesAfterDedup    int      `json:"entitiesAfterDedup"`
	EnrichmentUnavailable bool     `json:"enrichmentUnavailable"`
	CoveragePercentage    float64  `json:"coveragePercentage"`
	OrderDeviations       int      `json:"orderDeviations"`
	DurationMillis        int64    `json:"durationMs"`
}

// Report is the final output of one research run. It is never changed after
// assembly; a later run produces a new Report.
type Report struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	CreatedAt        time.Time         `json:"createdAt"`
	Entities         []common.Entity   `json:"entities"`
	CompletionStatus CompletionStatus  `json:"completionStatus"`
	RemainingWork    []string          `json:"remainingWork,omitempty"`
	Coverage         *coverage.Summary `json:"coverage,omitempty"`
	Diagnostics      *Diagnostics      `json:"diagnostics,omitempty"`
}

// Assembler builds reports. The zero value works; Now defaults to
// time.Now.
type Assembler struct {
	RunID string
	Title string
	Now   func() time.Time
	// IsAuthoritative marks organizations with an official URL as
	// government organizations. Optional.
	IsAuthoritative func(rawURL string) bool
}

// Assemble maps the final entity set and coverage state into a report.
// Apart from CreatedAt the result depends only on the arguments.
func (a Assembler) Assemble(entities []common.Entity, summary *coverage.Summary, outcome Outcome) Report {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}

	r := Report{
		ID:               a.RunID,
		Title:            a.Title,
		CreatedAt:        now().UTC(),
		Entities:         []common.Entity{},
		CompletionStatus: StatusPartial,
	}

	hasCoverage := summary != nil && !summary.Inert
	if hasCoverage {
		s := *summary
		s.RemainingNodes = append([]string{}, summary.RemainingNodes...)
		r.Coverage = &s
	}

	if outcome == OutcomeFailed {
		r.CompletionStatus = StatusFailed
		return r
	}

	for _, e := range entities {
		c := e.Clone()
		if c.TypeHint == "" && a.governmentURL(c) {
			c.TypeHint = common.SchemaGovernmentOrganization
		}
		r.Entities = append(r.Entities, c)
	}

	switch {
	case outcome == OutcomeCompleted && (!hasCoverage || summary.CompletionPercentage >= 100):
		r.CompletionStatus = StatusComplete
	case hasCoverage:
		r.RemainingWork = append([]string{}, summary.RemainingNodes...)
	}
	return r
}

func (a Assembler) governmentURL(e common.Entity) bool {
	d, ok := e.Details.(common.OrganizationDetails)
	if !ok || d.URL == "" || a.IsAuthoritative == nil {
		return false
	}
	return a.IsAuthoritative(d.URL)
}

// WithDiagnostics returns a copy of r carrying d.
func (r Report) WithDiagnostics(d Diagnostics) Report {
	d.UnknownKinds = append([]string(nil), d.UnknownKinds...)
	r.Diagnostics = &d
	return r
}
