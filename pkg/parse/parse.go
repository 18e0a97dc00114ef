package parse

import (
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/osint/pkg/logger"
)

// EnrichmentVia is the provenance given to enrichment records that do not
// name their own.
const EnrichmentVia = "enrichment"

// Config configures a Parser. A nil Patterns uses the shared defaults.
type Config struct {
	Patterns *Patterns
}

// Parser turns raw agent output into records. A Parser holds no per-call
// state and may be shared between goroutines.
type Parser struct {
	patterns   *Patterns
	strategies []strategy
}

// New creates a parser.
func New(cfg Config) *Parser {
	p := &Parser{patterns: cfg.Patterns}
	if p.patterns == nil {
		p.patterns = DefaultPatterns()
	}
	p.strategies = p.jsonStrategies()
	return p
}

// Parse extracts records from payload. Marker sections are preferred; the
// JSON strategies are tried only when no known marker section was found.
// Parse never panics and never returns an error: a payload that yields
// nothing is reported through Summary.ParseFailure.
func (p *Parser) Parse(payload string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("[Parse] recovered from panic", "err", fmt.Sprint(r), "payload_length", len(payload))
			res = Result{Records: []Record{}, Summary: newSummary(payload)}
			res.Summary.ParseFailure = true
		}
	}()

	if strings.TrimSpace(payload) == "" {
		summary := newSummary(payload)
		summary.ParseFailure = true
		return Result{Records: []Record{}, Summary: summary}
	}

	records, summary := p.ParseText(payload)
	if len(records) > 0 {
		logger.Debug("[Parse] parsed marker sections", "sections", summary.SectionsFound, "discarded", summary.SectionsDiscarded)
		return Result{Records: records, Summary: summary}
	}

	records, strategy, err := p.ParseJSON(payload)
	if err != nil {
		summary.ParseFailure = true
		logger.Warn("[Parse] no entities recovered from payload", "payload_length", len(payload), "err", err)
		return Result{Records: []Record{}, Summary: summary}
	}

	summary.Strategy = strategy
	summary.SectionsFound += len(records)
	for _, rec := range records {
		summary.count(rec)
	}
	logger.Debug("[Parse] parsed JSON fallback", "strategy", strategy, "records", len(records))
	return Result{Records: records, Summary: summary}
}

// ParseEnrichment parses the secondary enrichment payload. Records that do
// not carry their own provenance are marked with EnrichmentVia.
func (p *Parser) ParseEnrichment(payload string) Result {
	res := p.Parse(payload)
	for i := range res.Records {
		if res.Records[i].DiscoveredVia == "" {
			res.Records[i].DiscoveredVia = EnrichmentVia
		}
	}
	return res
}
