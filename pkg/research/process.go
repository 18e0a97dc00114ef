package research

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/OFFIS-RIT/osint/pkg/common"
	"github.com/OFFIS-RIT/osint/pkg/coverage"
	"github.com/OFFIS-RIT/osint/pkg/dedupe"
	"github.com/OFFIS-RIT/osint/pkg/logger"
	"github.com/OFFIS-RIT/osint/pkg/parse"
	"github.com/OFFIS-RIT/osint/pkg/report"
	"github.com/OFFIS-RIT/osint/pkg/validate"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/errgroup"
)

// Process turns one run into a report. Problems with individual records
// never fail the run; they are counted in the diagnostics. An error is only
// returned for a cancelled context or an invalid decomposition plan.
func (c *Client) Process(ctx context.Context, run Run) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	if run.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return nil, fmt.Errorf("failed to generate run id: %w", err)
		}
		run.ID = id
	}
	title := run.Title
	if title == "" && run.Plan != nil {
		title = run.Plan.Topic
	}

	tracker := coverage.New()
	if _, err := tracker.ApplyDecomposition(run.Plan); err != nil {
		return nil, fmt.Errorf("failed to apply decomposition for run %s: %w", run.ID, err)
	}
	v := validate.New(c.validatorConfig)

	var diag report.Diagnostics

	primary := c.parser.Parse(run.Primary)
	diag.SectionsParsed = primary.Summary.SectionsFound
	diag.SectionsDiscarded = primary.Summary.SectionsDiscarded
	diag.Strategy = string(primary.Summary.Strategy)
	diag.ParseFailure = primary.Summary.ParseFailure
	diag.PayloadLength = primary.Summary.PayloadLength
	diag.UnknownKinds = append(diag.UnknownKinds, primary.Summary.UnknownKinds...)
	if primary.Summary.ParseFailure {
		logger.Warn("[Research] primary payload yielded no entities", "run", run.ID, "payload_length", primary.Summary.PayloadLength)
	}

	found, rejected := c.validateRecords(v, run.ID, primary.Records)
	diag.Rejected += rejected
	diag.EntitiesBeforeDedup += len(found)
	entities := dedupe.Merge(nil, found)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if strings.TrimSpace(run.Enrichment) == "" {
		diag.EnrichmentUnavailable = true
		logger.Info("[Research] enrichment unavailable", "run", run.ID)
	} else {
		enrichment := c.parser.ParseEnrichment(run.Enrichment)
		if enrichment.Summary.ParseFailure {
			diag.EnrichmentUnavailable = true
			logger.Info("[Research] enrichment payload yielded no entities", "run", run.ID, "payload_length", enrichment.Summary.PayloadLength)
		}
		diag.SectionsDiscarded += enrichment.Summary.SectionsDiscarded
		diag.UnknownKinds = append(diag.UnknownKinds, enrichment.Summary.UnknownKinds...)

		extra, rejected := c.validateRecords(v, run.ID, enrichment.Records)
		diag.Rejected += rejected
		diag.EntitiesBeforeDedup += len(extra)

		var stats dedupe.Stats
		entities, stats = dedupe.MergeWithStats(entities, extra)
		logger.Debug("[Research] merged enrichment", "run", run.ID, "merged", stats.Merged, "skipped", stats.Skipped)
	}

	for i := range entities {
		v.Rescore(&entities[i])
	}
	diag.EntitiesAfterDedup = len(entities)

	c.updateCoverage(tracker, run, entities)
	summary := tracker.Summary()
	diag.CoveragePercentage = summary.CompletionPercentage
	diag.OrderDeviations = tracker.OrderDeviations()

	outcome := report.OutcomeCompleted
	switch {
	case strings.TrimSpace(run.Primary) == "" && strings.TrimSpace(run.Enrichment) == "":
		outcome = report.OutcomeFailed
	case primary.Summary.ParseFailure:
		outcome = report.OutcomeDegraded
	}

	assembler := report.Assembler{
		RunID:           run.ID,
		Title:           title,
		Now:             c.now,
		IsAuthoritative: c.validatorConfig.IsAuthoritative,
	}
	diag.DurationMillis = time.Since(start).Milliseconds()
	r := assembler.Assemble(entities, &summary, outcome).WithDiagnostics(diag)

	logger.Info("[Research] assembled report",
		"run", run.ID,
		"status", r.CompletionStatus,
		"entities", len(r.Entities),
		"rejected", diag.Rejected,
		"coverage", diag.CoveragePercentage,
	)

	return &Result{Report: r, Diagnostics: diag, Coverage: tracker.Tree()}, nil
}

// validateRecords turns records into entities. Records of an unknown kind
// are skipped; invalid ones are counted as rejected.
func (c *Client) validateRecords(v *validate.Validator, runID string, records []parse.Record) ([]common.Entity, int) {
	entities := make([]common.Entity, 0, len(records))
	rejected := 0
	for _, rec := range records {
		if _, ok := common.ParseKind(rec.Kind); !ok {
			logger.Warn("[Research] skipping record of unknown kind", "run", runID, "kind", rec.Kind, "name", rec.Name)
			continue
		}
		res := v.Validate(rec)
		if !res.Valid || res.Entity == nil {
			logger.Debug("[Validate] rejected record", "run", runID, "name", rec.Name, "score", res.Score, "issues", strings.Join(res.Issues, "; "))
			rejected++
			continue
		}
		entities = append(entities, *res.Entity)
	}
	return entities, rejected
}

// updateCoverage attributes entities to the dimensions they name, applies
// the explicit attributions and completes the dimensions the orchestrator
// reported as done.
func (c *Client) updateCoverage(tracker *coverage.Tracker, run Run, entities []common.Entity) {
	if tracker.Inert() {
		return
	}

	counts := make(map[string]int)
	var order []string
	add := func(ref string, n int) {
		id, ok := tracker.Resolve(ref)
		if !ok {
			logger.Warn("[Coverage] unknown dimension", "run", run.ID, "dimension", ref)
			return
		}
		if _, seen := counts[id]; !seen {
			order = append(order, id)
		}
		counts[id] += n
	}

	for _, e := range entities {
		if e.Dimension != "" {
			add(e.Dimension, 1)
		}
	}
	refs := make([]string, 0, len(run.Attributions))
	for ref := range run.Attributions {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	for _, ref := range refs {
		add(ref, run.Attributions[ref])
	}

	for _, id := range order {
		if err := tracker.AttributeEntities(id, counts[id]); err != nil {
			logger.Warn("[Coverage] failed to attribute entities", "run", run.ID, "dimension", id, "err", err)
		}
	}

	for _, ref := range run.CompletedDimensions {
		id, ok := tracker.Resolve(ref)
		if !ok {
			logger.Warn("[Coverage] unknown completed dimension", "run", run.ID, "dimension", ref)
			continue
		}
		if err := tracker.MarkComplete(id); err != nil {
			if errors.Is(err, coverage.ErrIncompleteChildren) {
				logger.Warn("[Coverage] dimension has incomplete children", "run", run.ID, "dimension", id)
				continue
			}
			logger.Warn("[Coverage] failed to complete dimension", "run", run.ID, "dimension", id, "err", err)
		}
	}
}

// ProcessBatch processes independent runs concurrently, at most
// ParallelRuns at a time. Results keep the order of runs.
func (c *Client) ProcessBatch(ctx context.Context, runs []Run) ([]*Result, error) {
	results := make([]*Result, len(runs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallelRuns)
	for i, run := range runs {
		g.Go(func() error {
			select {
			case <-gCtx.Done():
				return gCtx.Err()
			default:
				res, err := c.Process(gCtx, run)
				if err != nil {
					return fmt.Errorf("failed to process run %d: %w", i, err)
				}
				results[i] = res
				return nil
			}
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
