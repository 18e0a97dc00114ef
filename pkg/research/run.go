package research

import (
	"github.com/OFFIS-RIT/osint/pkg/coverage"
	"github.com/OFFIS-RIT/osint/pkg/report"
)

// Run is the collected output of one research run, as handed over by the
// orchestrator.
type Run struct {
	ID    string `json:"run_id,omitempty"`
	Title string `json:"title,omitempty"`
	// Primary is the main agent output, marker text or JSON.
	Primary string `json:"primary"`
	// Enrichment is the optional cross-referencing pass.
	Enrichment string `json:"enrichment,omitempty"`
	// Plan is the optional topic decomposition.
	Plan *coverage.Plan `json:"plan,omitempty"`
	// CompletedDimensions are dimension ids or labels the orchestrator
	// considers exhausted.
	CompletedDimensions []string `json:"completed_dimensions,omitempty"`
	// Attributions adds entity counts per dimension id or label on top of the
	// dimensions named by the entities themselves.
	Attributions map[string]int `json:"attributions,omitempty"`
}

// Result is the output of processing one run.
type Result struct {
	Report      report.Report      `json:"report"`
	Diagnostics report.Diagnostics `json:"diagnostics"`
	Coverage    coverage.Tree      `json:"coverage"`
}
