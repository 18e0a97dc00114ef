package validate

import (
	"fmt"
	"math"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/OFFIS-RIT/osint/pkg/common"
	"github.com/OFFIS-RIT/osint/pkg/parse"

	"github.com/go-playground/validator"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// DefaultSoftAcceptThreshold is the score above which an entity with a
// hard-fail issue is still kept.
const DefaultSoftAcceptThreshold = 0.4

// Issue strings reported by the validator.
const (
	IssueMissingName      = "missing name"
	IssueInvalidKind      = "invalid kind"
	IssueMissingStartDate = "missing startDate (recommended)"
	IssueMissingPolicyRef = "missing effectiveDate or identifier (recommended)"
)

// Score weights.
const (
	weightName        = 0.2
	weightDescription = 0.2
	weightSource      = 0.2
	weightAuthority   = 0.2
	weightEnrichment  = 0.1

	bonusEventStart    = 0.10
	bonusEventLocation = 0.05
	bonusPolicyDate    = 0.10
	bonusPolicyID      = 0.05

	minNameLength        = 2
	minDescriptionLength = 10
)

// Hard reports whether issue prevents an entity from being valid on its own.
func Hard(issue string) bool {
	return issue == IssueMissingName || issue == IssueInvalidKind
}

// UnparsableIssue formats the issue recorded for a date that could not be
// normalized.
func UnparsableIssue(field, raw string) string {
	return fmt.Sprintf("unparsable %s %q (recommended)", field, raw)
}

// Config configures a Validator.
type Config struct {
	// SoftAcceptThreshold defaults to DefaultSoftAcceptThreshold when zero.
	// A negative value accepts every scored entity.
	SoftAcceptThreshold float64
	// IsAuthoritative decides the authority bonus. Nil disables the bonus.
	IsAuthoritative AuthorityFunc
	// NewID generates entity ids. Defaults to nanoid.
	NewID func() string
}

// Validator checks raw records against the per-kind rules and scores them.
// It holds no per-call state and may be shared between goroutines.
type Validator struct {
	threshold   float64
	isAuthority AuthorityFunc
	newID       func() string
	urls        *validator.Validate
}

// Result is the outcome of validating one record.
type Result struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues"`
	Score  float64  `json:"score"`
	// Entity is nil when the record kind is not recognized.
	Entity *common.Entity `json:"entity,omitempty"`
}

// New creates a validator.
func New(cfg Config) *Validator {
	v := &Validator{
		threshold:   cfg.SoftAcceptThreshold,
		isAuthority: cfg.IsAuthoritative,
		newID:       cfg.NewID,
		urls:        validator.New(),
	}
	if v.threshold == 0 {
		v.threshold = DefaultSoftAcceptThreshold
	}
	if v.newID == nil {
		v.newID = func() string { return gonanoid.Must() }
	}
	return v
}

// Threshold returns the soft-accept threshold in use.
func (v *Validator) Threshold() float64 {
	return v.threshold
}

// Validate applies the rules in order: name, kind, then the recommended
// per-kind checks. Records of an unknown kind are still scored but produce
// no entity.
func (v *Validator) Validate(rec parse.Record) Result {
	kind, ok := common.ParseKind(rec.Kind)
	if !ok {
		var issues []string
		if strings.TrimSpace(rec.Name) == "" {
			issues = append(issues, IssueMissingName)
		}
		issues = append(issues, IssueInvalidKind)
		enriched := len(rec.ExternalLinks) > 0 || strings.TrimSpace(rec.ExternalID) != ""
		score := clamp(v.baseScore(rec.Name, rec.Description, rec.Sources, enriched))
		return Result{
			Valid:  score > v.threshold,
			Issues: issues,
			Score:  score,
		}
	}

	entity := v.entityFromRecord(rec, kind)
	v.Rescore(&entity)
	return Result{
		Valid:  v.accept(entity.ValidationIssues, entity.QualityScore),
		Issues: entity.ValidationIssues,
		Score:  entity.QualityScore,
		Entity: &entity,
	}
}

// Rescore recomputes QualityScore and ValidationIssues from the current
// fields of e. It is called after every change to an entity.
func (v *Validator) Rescore(e *common.Entity) {
	var issues []string
	if strings.TrimSpace(e.Name) == "" {
		issues = append(issues, IssueMissingName)
	}

	bonus := 0.0
	switch d := e.Details.(type) {
	case common.EventDetails:
		if d.StartDate == "" && e.RawValues[parse.FieldStartDate] == "" {
			issues = append(issues, IssueMissingStartDate)
		}
		if d.StartDate != "" {
			bonus += bonusEventStart
		}
		if strings.TrimSpace(d.Location) != "" {
			bonus += bonusEventLocation
		}
	case common.PolicyDetails:
		hasEffective := d.EffectiveDate != "" || e.RawValues[parse.FieldEffectiveDate] != ""
		if !hasEffective && strings.TrimSpace(d.Identifier) == "" {
			issues = append(issues, IssueMissingPolicyRef)
		}
		if d.EffectiveDate != "" || d.EnactmentDate != "" {
			bonus += bonusPolicyDate
		}
		if strings.TrimSpace(d.Identifier) != "" {
			bonus += bonusPolicyID
		}
	case nil:
		issues = append(issues, IssueInvalidKind)
	}

	for _, field := range parse.DateFields {
		if raw, ok := e.RawValues[field]; ok {
			issues = append(issues, UnparsableIssue(field, raw))
		}
	}

	e.ValidationIssues = issues
	e.QualityScore = clamp(v.baseScore(e.Name, e.Description, e.Sources, e.HasEnrichment()) + bonus)
}

// accept reports whether an entity with the given issues and score is kept.
func (v *Validator) accept(issues []string, score float64) bool {
	for _, issue := range issues {
		if Hard(issue) {
			return score > v.threshold
		}
	}
	return true
}

func (v *Validator) baseScore(name, description string, sources []common.Source, enriched bool) float64 {
	score := 0.0
	if utf8.RuneCountInString(strings.TrimSpace(name)) >= minNameLength {
		score += weightName
	}
	if utf8.RuneCountInString(strings.TrimSpace(description)) >= minDescriptionLength {
		score += weightDescription
	}

	wellFormed, authoritative := false, false
	for _, src := range sources {
		if !v.WellFormedURL(src.URL) {
			continue
		}
		wellFormed = true
		if v.isAuthority != nil && v.isAuthority(src.URL) {
			authoritative = true
			break
		}
	}
	if wellFormed {
		score += weightSource
	}
	if authoritative {
		score += weightAuthority
	}
	if enriched {
		score += weightEnrichment
	}
	return score
}

// WellFormedURL reports whether raw is an absolute http(s) URL with a host.
func (v *Validator) WellFormedURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" || v.urls.Var(raw, "url") != nil {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Hostname() != ""
}

func (v *Validator) entityFromRecord(rec parse.Record, kind common.Kind) common.Entity {
	raw := map[string]string{}
	date := func(field string) string {
		value := strings.TrimSpace(rec.Field(field))
		if value == "" {
			return ""
		}
		if d, ok := common.NormalizeDate(value); ok {
			return d
		}
		raw[field] = value
		return ""
	}

	var details common.Details
	switch kind {
	case common.KindPerson:
		details = common.PersonDetails{JobTitle: rec.Field(parse.FieldJobTitle)}
	case common.KindOrganization:
		details = common.OrganizationDetails{URL: rec.Field(parse.FieldURL)}
	case common.KindEvent:
		details = common.EventDetails{
			StartDate: date(parse.FieldStartDate),
			EndDate:   date(parse.FieldEndDate),
			Location:  rec.Field(parse.FieldLocation),
			Organizer: rec.Field(parse.FieldOrganizer),
		}
	case common.KindPolicy:
		details = common.PolicyDetails{
			Identifier:     rec.Field(parse.FieldIdentifier),
			EnactmentDate:  date(parse.FieldEnactmentDate),
			EffectiveDate:  date(parse.FieldEffectiveDate),
			ExpirationDate: date(parse.FieldExpirationDate),
			Jurisdiction:   rec.Field(parse.FieldJurisdiction),
		}
	default:
		details = common.TopicDetails{}
	}

	e := common.NewEntity(v.newID(), strings.TrimSpace(rec.Name), details)
	e.Description = strings.TrimSpace(rec.Description)
	e.Sources = append(e.Sources, rec.Sources...)
	if len(rec.ExternalLinks) > 0 {
		e.ExternalLinks = append([]string(nil), rec.ExternalLinks...)
	}
	e.ExternalID = rec.ExternalID
	e.DiscoveredVia = rec.DiscoveredVia
	e.Dimension = rec.Dimension
	e.TypeHint = rec.TypeHint
	if len(raw) > 0 {
		e.RawValues = raw
	}
	return e
}

func clamp(score float64) float64 {
	score = math.Round(score*1e4) / 1e4
	return math.Max(0, math.Min(1, score))
}
