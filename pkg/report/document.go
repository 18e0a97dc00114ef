package report

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/OFFIS-RIT/osint/pkg/common"
	"github.com/OFFIS-RIT/osint/pkg/dedupe"
)

const (
	reportType = "Report"
	idPrefix   = "urn:osint:"
)

// Document is the linked-data rendering of a report.
type Document struct {
	Context            string           `json:"@context" jsonschema:"const=https://schema.org"`
	Type               string           `json:"@type" jsonschema:"const=Report"`
	ID                 string           `json:"@id" jsonschema_description:"Stable identifier of the research run"`
	Name               string           `json:"name"`
	DateCreated        string           `json:"dateCreated" jsonschema_description:"RFC 3339 creation timestamp"`
	CreativeWorkStatus CompletionStatus `json:"creativeWorkStatus" jsonschema:"enum=complete,enum=partial,enum=failed"`
	HasPart            []Part           `json:"hasPart" jsonschema_description:"Validated, deduplicated entities"`
	RemainingWork      []string         `json:"remainingWork,omitempty" jsonschema_description:"Labels of incomplete research dimensions by priority"`
	Coverage           *CoverageDoc     `json:"coverage,omitempty"`
	Diagnostics        *Diagnostics     `json:"diagnostics,omitempty"`
}

// Part is one entity in vocabulary form.
type Part struct {
	Type        string `json:"@type"`
	ID          string `json:"@id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	JobTitle  string     `json:"jobTitle,omitempty"`
	URL       string     `json:"url,omitempty"`
	StartDate string     `json:"startDate,omitempty"`
	EndDate   string     `json:"endDate,omitempty"`
	Location  *NamedNode `json:"location,omitempty"`
	Organizer *NamedNode `json:"organizer,omitempty"`

	LegislationIdentifier          string `json:"legislationIdentifier,omitempty"`
	LegislationDate                string `json:"legislationDate,omitempty"`
	LegislationDateOfApplicability string `json:"legislationDateOfApplicability,omitempty"`
	Expires                        string `json:"expires,omitempty"`
	LegislationJurisdiction        string `json:"legislationJurisdiction,omitempty"`
	Jurisdiction                   string `json:"jurisdiction,omitempty"`

	Identifier         string          `json:"identifier,omitempty"`
	SameAs             []string        `json:"sameAs,omitempty"`
	Citation           []Citation      `json:"citation"`
	AdditionalProperty []PropertyValue `json:"additionalProperty,omitempty"`
}

// NamedNode is a nested typed node that only carries a name.
type NamedNode struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

// Citation is a source in vocabulary form.
type Citation struct {
	Type string `json:"@type" jsonschema:"const=CreativeWork"`
	URL  string `json:"url"`
	Text string `json:"text,omitempty"`
}

// PropertyValue carries values the vocabulary has no property for.
type PropertyValue struct {
	Type  string `json:"@type" jsonschema:"const=PropertyValue"`
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// CoverageDoc is the coverage summary embedded in a document.
type CoverageDoc struct {
	CompletionPercentage float64  `json:"completionPercentage"`
	RemainingNodes       []string `json:"remainingNodes"`
	TotalLeaves          int      `json:"totalLeaves"`
	CompleteLeaves       int      `json:"completeLeaves"`
}

// DocumentID returns the document id of a run.
func DocumentID(runID, title string) string {
	if runID = strings.TrimSpace(runID); runID != "" {
		return idPrefix + "report:" + runID
	}
	if s := common.Slug(title); s != "" {
		return idPrefix + "report:" + s
	}
	return idPrefix + "report:untitled"
}

// Document renders the report. The document always carries the context, the
// root type and a (possibly empty) parts list.
func (r Report) Document() Document {
	doc := Document{
		Context:            common.SchemaContext,
		Type:               reportType,
		ID:                 DocumentID(r.ID, r.Title),
		Name:               r.Title,
		DateCreated:        r.CreatedAt.UTC().Format(time.RFC3339),
		CreativeWorkStatus: r.CompletionStatus,
		HasPart:            make([]Part, 0, len(r.Entities)),
		Diagnostics:        r.Diagnostics,
	}
	if doc.CreativeWorkStatus == "" {
		doc.CreativeWorkStatus = StatusFailed
	}
	if len(r.RemainingWork) > 0 {
		doc.RemainingWork = append([]string{}, r.RemainingWork...)
	}
	if r.Coverage != nil {
		doc.Coverage = &CoverageDoc{
			CompletionPercentage: r.Coverage.CompletionPercentage,
			RemainingNodes:       append([]string{}, r.Coverage.RemainingNodes...),
			TotalLeaves:          r.Coverage.TotalLeaves,
			CompleteLeaves:       r.Coverage.CompleteLeaves,
		}
	}

	used := make(map[string]int, len(r.Entities))
	for i, e := range r.Entities {
		id := entityID(e, i)
		used[id]++
		if n := used[id]; n > 1 {
			id += "-" + strconv.Itoa(n)
		}
		doc.HasPart = append(doc.HasPart, toPart(e, id))
	}
	return doc
}

// Marshal renders the document as indented JSON.
func (r Report) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(r.Document(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report document: %w", err)
	}
	return data, nil
}

func toPart(e common.Entity, id string) Part {
	p := Part{
		Type:        VocabularyType(e),
		ID:          id,
		Name:        e.Name,
		Description: e.Description,
		Identifier:  e.ExternalID,
		Citation:    make([]Citation, 0, len(e.Sources)),
	}
	if len(e.ExternalLinks) > 0 {
		p.SameAs = append([]string{}, e.ExternalLinks...)
	}
	for _, s := range e.Sources {
		p.Citation = append(p.Citation, Citation{Type: "CreativeWork", URL: s.URL, Text: s.Excerpt})
	}

	switch d := e.Details.(type) {
	case common.PersonDetails:
		p.JobTitle = d.JobTitle
	case common.OrganizationDetails:
		p.URL = d.URL
	case common.EventDetails:
		p.StartDate = d.StartDate
		p.EndDate = d.EndDate
		p.Location = named("Place", d.Location)
		p.Organizer = named("Organization", d.Organizer)
	case common.PolicyDetails:
		if p.Type == common.SchemaGovernmentService {
			p.Jurisdiction = d.Jurisdiction
			break
		}
		p.LegislationIdentifier = d.Identifier
		p.LegislationDate = d.EnactmentDate
		p.LegislationDateOfApplicability = d.EffectiveDate
		p.Expires = d.ExpirationDate
		p.LegislationJurisdiction = d.Jurisdiction
	}

	p.AdditionalProperty = append(p.AdditionalProperty, property("qualityScore", e.QualityScore))
	if len(e.ValidationIssues) > 0 {
		p.AdditionalProperty = append(p.AdditionalProperty, property("validationIssues", append([]string{}, e.ValidationIssues...)))
	}
	if e.Dimension != "" {
		p.AdditionalProperty = append(p.AdditionalProperty, property("dimension", e.Dimension))
	}
	if e.DiscoveredVia != "" {
		p.AdditionalProperty = append(p.AdditionalProperty, property("discoveredVia", e.DiscoveredVia))
	}
	for _, field := range sortedKeys(e.RawValues) {
		p.AdditionalProperty = append(p.AdditionalProperty, property("raw:"+field, e.RawValues[field]))
	}
	return p
}

func named(typ, name string) *NamedNode {
	if strings.TrimSpace(name) == "" {
		return nil
	}
	return &NamedNode{Type: typ, Name: name}
}

func property(name string, value any) PropertyValue {
	return PropertyValue{Type: "PropertyValue", Name: name, Value: value}
}

// entityID derives a stable id from the identity key so that the same
// entity gets the same id in every report.
func entityID(e common.Entity, index int) string {
	kind := strings.ToLower(string(e.Kind()))
	if kind == "" {
		kind = "thing"
	}
	s := common.Slug(dedupe.NormalizeName(e.Name))
	if s == "" {
		s = "unnamed-" + strconv.Itoa(index+1)
	}
	return idPrefix + kind + ":" + s
}
