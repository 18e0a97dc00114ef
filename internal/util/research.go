package util

import (
	"github.com/OFFIS-RIT/osint/pkg/research"
	"github.com/OFFIS-RIT/osint/pkg/validate"
)

// NewResearchClient creates the pipeline client described by cfg.
func NewResearchClient(cfg Config) (*research.Client, error) {
	rules, err := validate.LoadAuthorityRules(cfg.AuthorityRules)
	if err != nil {
		return nil, err
	}
	return research.NewClient(research.NewClientParams{
		SoftAcceptThreshold: cfg.SoftAcceptThreshold,
		IsAuthoritative:     rules.Predicate(),
		ParallelRuns:        cfg.ParallelRuns,
	})
}
