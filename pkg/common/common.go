package common

import "strings"

// Kind enumerates the entity kinds a research run can report on.
type Kind string

const (
	KindPerson       Kind = "Person"
	KindOrganization Kind = "Organization"
	KindTopic        Kind = "Topic"
	KindEvent        Kind = "Event"
	KindPolicy       Kind = "Policy"
)

// Kinds lists every recognized kind in a stable order.
var Kinds = []Kind{KindPerson, KindOrganization, KindTopic, KindEvent, KindPolicy}

var kindAliases = map[string]Kind{
	"PERSON":       KindPerson,
	"PEOPLE":       KindPerson,
	"INDIVIDUAL":   KindPerson,
	"ORGANIZATION": KindOrganization,
	"ORGANISATION": KindOrganization,
	"ORG":          KindOrganization,
	"AGENCY":       KindOrganization,
	"TOPIC":        KindTopic,
	"CONCEPT":      KindTopic,
	"THEME":        KindTopic,
	"THING":        KindTopic,
	"EVENT":        KindEvent,
	"POLICY":       KindPolicy,
	"LAW":          KindPolicy,
	"LEGISLATION":  KindPolicy,
	"REGULATION":   KindPolicy,
}

// ParseKind maps a raw kind label (case-insensitive, aliases allowed) to a Kind.
func ParseKind(s string) (Kind, bool) {
	key := strings.ToUpper(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(key)
	if key == "" {
		return "", false
	}
	k, ok := kindAliases[key]
	return k, ok
}

// Source is an evidentiary citation. It is never modified after creation.
type Source struct {
	URL     string `json:"url"`
	Excerpt string `json:"excerpt,omitempty"`
}

// Details holds the kind-specific fields of an entity. The set of
// implementations is closed; the concrete type decides the entity's kind.
type Details interface {
	Kind() Kind
	details()
}

type PersonDetails struct {
	JobTitle string `json:"jobTitle,omitempty"`
}

type OrganizationDetails struct {
	URL string `json:"url,omitempty"`
}

type TopicDetails struct{}

type EventDetails struct {
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	Location  string `json:"location,omitempty"`
	Organizer string `json:"organizer,omitempty"`
}

type PolicyDetails struct {
	Identifier     string `json:"identifier,omitempty"`
	EnactmentDate  string `json:"enactmentDate,omitempty"`
	EffectiveDate  string `json:"effectiveDate,omitempty"`
	ExpirationDate string `json:"expirationDate,omitempty"`
	Jurisdiction   string `json:"jurisdiction,omitempty"`
}

func (PersonDetails) Kind() Kind       { return KindPerson }
func (OrganizationDetails) Kind() Kind { return KindOrganization }
func (TopicDetails) Kind() Kind        { return KindTopic }
func (EventDetails) Kind() Kind        { return KindEvent }
func (PolicyDetails) Kind() Kind       { return KindPolicy }

func (PersonDetails) details()       {}
func (OrganizationDetails) details() {}
func (TopicDetails) details()        {}
func (EventDetails) details()        {}
func (PolicyDetails) details()       {}

// EmptyDetails returns the zero details value for kind k.
func EmptyDetails(k Kind) (Details, bool) {
	switch k {
	case KindPerson:
		return PersonDetails{}, true
	case KindOrganization:
		return OrganizationDetails{}, true
	case KindTopic:
		return TopicDetails{}, true
	case KindEvent:
		return EventDetails{}, true
	case KindPolicy:
		return PolicyDetails{}, true
	}
	return nil, false
}

// Entity represents a single research finding: a person, organization,
// topic, event or policy, together with the sources supporting it.
//
// The kind of an entity is carried by Details and is fixed at construction.
// QualityScore and ValidationIssues are owned by the validator and are
// recomputed from the current fields whenever the entity changes.
type Entity struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Sources     []Source `json:"sources"`
	Details     Details  `json:"details"`

	ExternalLinks []string `json:"externalLinks,omitempty"`
	ExternalID    string   `json:"externalId,omitempty"`
	DiscoveredVia string   `json:"discoveredVia,omitempty"`

	// Dimension is the coverage dimension the finding was attributed to.
	Dimension string `json:"dimension,omitempty"`
	// TypeHint is an optional vocabulary subtype, e.g. GovernmentOrganization.
	TypeHint string `json:"typeHint,omitempty"`
	// RawValues keeps field values that could not be normalized, verbatim.
	RawValues map[string]string `json:"rawValues,omitempty"`
	// MergedFrom lists the ids of entities absorbed into this one.
	MergedFrom []string `json:"mergedFrom,omitempty"`

	QualityScore     float64  `json:"qualityScore"`
	ValidationIssues []string `json:"validationIssues,omitempty"`
}

// NewEntity creates an entity of the kind determined by details.
func NewEntity(id, name string, details Details) Entity {
	return Entity{
		ID:      id,
		Name:    name,
		Details: details,
		Sources: []Source{},
	}
}

// Kind returns the entity kind, or an empty Kind if no details are set.
func (e Entity) Kind() Kind {
	if e.Details == nil {
		return ""
	}
	return e.Details.Kind()
}

// HasEnrichment reports whether the entity carries an external cross-reference.
func (e Entity) HasEnrichment() bool {
	return len(e.ExternalLinks) > 0 || strings.TrimSpace(e.ExternalID) != ""
}

// Clone returns a deep copy of e so that callers can mutate slices freely.
func (e Entity) Clone() Entity {
	c := e
	c.Sources = append([]Source{}, e.Sources...)
	if e.ExternalLinks != nil {
		c.ExternalLinks = append([]string(nil), e.ExternalLinks...)
	}
	if e.MergedFrom != nil {
		c.MergedFrom = append([]string(nil), e.MergedFrom...)
	}
	if e.ValidationIssues != nil {
		c.ValidationIssues = append([]string(nil), e.ValidationIssues...)
	}
	if e.RawValues != nil {
		c.RawValues = make(map[string]string, len(e.RawValues))
		for k, v := range e.RawValues {
			c.RawValues[k] = v
		}
	}
	return c
}
