package parse

import (
	"github.com/OFFIS-RIT/osint/pkg/common"
)

// Keys used in Record.Fields. Values are kept exactly as extracted; date
// normalization happens when a record is turned into an entity.
const (
	FieldJobTitle       = "jobTitle"
	FieldURL            = "url"
	FieldStartDate      = "startDate"
	FieldEndDate        = "endDate"
	FieldLocation       = "location"
	FieldOrganizer      = "organizer"
	FieldIdentifier     = "identifier"
	FieldEnactmentDate  = "enactmentDate"
	FieldEffectiveDate  = "effectiveDate"
	FieldExpirationDate = "expirationDate"
	FieldJurisdiction   = "jurisdiction"
)

// DateFields lists the Record.Fields keys that hold dates.
var DateFields = []string{
	FieldStartDate,
	FieldEndDate,
	FieldEnactmentDate,
	FieldEffectiveDate,
	FieldExpirationDate,
}

// Record is a raw entity as found in agent output, before validation.
// Kind is the raw kind label; it may name a kind the system does not know.
type Record struct {
	Kind          string            `json:"kind"`
	Name          string            `json:"name"`
	Description   string            `json:"description,omitempty"`
	Sources       []common.Source   `json:"sources"`
	Fields        map[string]string `json:"fields,omitempty"`
	ExternalLinks []string          `json:"externalLinks,omitempty"`
	ExternalID    string            `json:"externalId,omitempty"`
	DiscoveredVia string            `json:"discoveredVia,omitempty"`
	Dimension     string            `json:"dimension,omitempty"`
	TypeHint      string            `json:"typeHint,omitempty"`
}

// Field returns the value stored under key, or "".
func (r Record) Field(key string) string {
	if r.Fields == nil {
		return ""
	}
	return r.Fields[key]
}

func (r *Record) setField(key, value string) {
	if value == "" {
		return
	}
	if r.Fields == nil {
		r.Fields = make(map[string]string)
	}
	if _, ok := r.Fields[key]; ok {
		return
	}
	r.Fields[key] = value
}

// Strategy names the extraction path that produced a parse result.
type Strategy string

const (
	StrategyMarkers    Strategy = "markers"
	StrategyDirect     Strategy = "direct"
	StrategyFenced     Strategy = "fenced"
	StrategyEmbedded   Strategy = "embedded"
	StrategyPermissive Strategy = "permissive"
	StrategyNone       Strategy = "none"
)

// Summary describes what a parse saw. Every skip is counted here so that
// reports stay auditable.
type Summary struct {
	PayloadLength     int                 `json:"payloadLength"`
	SectionsFound     int                 `json:"sectionsFound"`
	SectionsDiscarded int                 `json:"sectionsDiscarded"`
	PerKind           map[common.Kind]int `json:"perKind"`
	UnknownKinds      []string            `json:"unknownKinds,omitempty"`
	Strategy          Strategy            `json:"strategy"`
	ParseFailure      bool                `json:"parseFailure"`
}

// Result is the output of Parser.Parse.
type Result struct {
	Records []Record `json:"records"`
	Summary Summary  `json:"summary"`
}

func newSummary(payload string) Summary {
	return Summary{
		PayloadLength: len(payload),
		PerKind:       make(map[common.Kind]int),
		Strategy:      StrategyNone,
	}
}

func (s *Summary) count(rec Record) {
	if k, ok := common.ParseKind(rec.Kind); ok {
		s.PerKind[k]++
		return
	}
	s.UnknownKinds = append(s.UnknownKinds, rec.Kind)
}
