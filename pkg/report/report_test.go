package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/OFFIS-RIT/osint/pkg/common"
	"github.com/OFFIS-RIT/osint/pkg/coverage"
	"github.com/google/go-cmp/cmp"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func sampleEntities() []common.Entity {
	summit := common.NewEntity("e1", "Clean Air Summit 2024", common.EventDetails{
		StartDate: "2024-03-15",
		EndDate:   "2024-03-16",
		Location:  "Berlin",
	})
	summit.Sources = []common.Source{{URL: "https://example.org/summit", Excerpt: "The summit opened"}}
	summit.QualityScore = 0.7
	summit.Dimension = "Events"

	ministry := common.NewEntity("e2", "Federal Environment Ministry", common.OrganizationDetails{URL: "https://www.bmuv.bund.de"})
	ministry.Sources = []common.Source{{URL: "https://www.bmuv.bund.de/about"}}
	ministry.QualityScore = 0.6

	return []common.Entity{summit, ministry}
}

func TestFailedReportIsStillADocument(t *testing.T) {
	a := Assembler{RunID: "run-1", Title: "Air quality", Now: fixedClock(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))}
	r := a.Assemble(nil, nil, OutcomeFailed)

	data, err := r.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("document is not JSON: %v", err)
	}
	if doc["@context"] != common.SchemaContext {
		t.Fatalf("unexpected context %v", doc["@context"])
	}
	if doc["@type"] != "Report" {
		t.Fatalf("unexpected type %v", doc["@type"])
	}
	if doc["creativeWorkStatus"] != "failed" {
		t.Fatalf("unexpected status %v", doc["creativeWorkStatus"])
	}
	parts, ok := doc["hasPart"].([]any)
	if !ok || len(parts) != 0 {
		t.Fatalf("expected empty hasPart array, got %#v", doc["hasPart"])
	}
}

func TestCompletionStatus(t *testing.T) {
	half := &coverage.Summary{CompletionPercentage: 50, RemainingNodes: []string{"National laws", "NGOs"}, TotalLeaves: 4, CompleteLeaves: 2}
	full := &coverage.Summary{CompletionPercentage: 100, RemainingNodes: []string{}, TotalLeaves: 4, CompleteLeaves: 4}
	inert := &coverage.Summary{CompletionPercentage: 100, RemainingNodes: []string{}, Inert: true}

	tests := []struct {
		name      string
		summary   *coverage.Summary
		outcome   Outcome
		want      CompletionStatus
		remaining []string
	}{
		{name: "NoCoverage", outcome: OutcomeCompleted, want: StatusComplete},
		{name: "InertCoverage", summary: inert, outcome: OutcomeCompleted, want: StatusComplete},
		{name: "FullCoverage", summary: full, outcome: OutcomeCompleted, want: StatusComplete},
		{name: "HalfCoverage", summary: half, outcome: OutcomeCompleted, want: StatusPartial, remaining: []string{"National laws", "NGOs"}},
		{name: "Degraded", outcome: OutcomeDegraded, want: StatusPartial},
		{name: "DegradedWithCoverage", summary: half, outcome: OutcomeDegraded, want: StatusPartial, remaining: []string{"National laws", "NGOs"}},
		{name: "Failed", summary: half, outcome: OutcomeFailed, want: StatusFailed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := Assembler{RunID: "run"}.Assemble(sampleEntities(), tc.summary, tc.outcome)
			if r.CompletionStatus != tc.want {
				t.Fatalf("status = %q, want %q", r.CompletionStatus, tc.want)
			}
			if diff := cmp.Diff(tc.remaining, r.RemainingWork); diff != "" {
				t.Fatalf("remaining work mismatch (-want +got):\n%s", diff)
			}
			if tc.outcome == OutcomeFailed && len(r.Entities) != 0 {
				t.Fatalf("failed report must not carry entities")
			}
		})
	}
}

func TestDocumentIsDeterministic(t *testing.T) {
	cov := &coverage.Summary{CompletionPercentage: 50, RemainingNodes: []string{"NGOs"}, TotalLeaves: 2, CompleteLeaves: 1}

	first := Assembler{RunID: "run-7", Title: "Air", Now: fixedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))}.
		Assemble(sampleEntities(), cov, OutcomeCompleted).Document()
	second := Assembler{RunID: "run-7", Title: "Air", Now: fixedClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))}.
		Assemble(sampleEntities(), cov, OutcomeCompleted).Document()

	if first.DateCreated == second.DateCreated {
		t.Fatalf("expected different creation dates")
	}
	second.DateCreated = first.DateCreated
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("documents differ (-first +second):\n%s", diff)
	}
}

func TestAssembleDoesNotMutateInput(t *testing.T) {
	entities := sampleEntities()
	a := Assembler{IsAuthoritative: func(u string) bool { return strings.Contains(u, ".bund.de") }}
	r := a.Assemble(entities, nil, OutcomeCompleted)

	if entities[1].TypeHint != "" {
		t.Fatalf("input entity was modified: %+v", entities[1])
	}
	if r.Entities[1].TypeHint != common.SchemaGovernmentOrganization {
		t.Fatalf("expected government hint on report entity, got %q", r.Entities[1].TypeHint)
	}
}

func TestDocumentParts(t *testing.T) {
	a := Assembler{
		RunID:           "run-2",
		Now:             fixedClock(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)),
		IsAuthoritative: func(u string) bool { return strings.Contains(u, ".bund.de") },
	}
	doc := a.Assemble(sampleEntities(), nil, OutcomeCompleted).Document()

	if len(doc.HasPart) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(doc.HasPart))
	}

	event := doc.HasPart[0]
	if event.Type != common.SchemaEvent || event.ID != "urn:osint:event:clean-air-summit-2024" {
		t.Fatalf("unexpected event part %+v", event)
	}
	if event.StartDate != "2024-03-15" || event.EndDate != "2024-03-16" {
		t.Fatalf("unexpected event dates %+v", event)
	}
	if event.Location == nil || event.Location.Type != "Place" || event.Location.Name != "Berlin" {
		t.Fatalf("unexpected location %+v", event.Location)
	}
	if event.Organizer != nil {
		t.Fatalf("expected no organizer, got %+v", event.Organizer)
	}
	wantCitation := []Citation{{Type: "CreativeWork", URL: "https://example.org/summit", Text: "The summit opened"}}
	if diff := cmp.Diff(wantCitation, event.Citation); diff != "" {
		t.Fatalf("citation mismatch (-want +got):\n%s", diff)
	}

	org := doc.HasPart[1]
	if org.Type != common.SchemaGovernmentOrganization || org.URL != "https://www.bmuv.bund.de" {
		t.Fatalf("unexpected organization part %+v", org)
	}
	if org.AdditionalProperty[0].Name != "qualityScore" || org.AdditionalProperty[0].Value != 0.6 {
		t.Fatalf("expected quality score property first, got %+v", org.AdditionalProperty)
	}
}

func TestDocumentIDCollision(t *testing.T) {
	a := common.NewEntity("a", "Data Act", common.PolicyDetails{Identifier: "2023/2854"})
	b := common.NewEntity("b", "data  act", common.PolicyDetails{Identifier: "COM/2022/68"})

	doc := Report{ID: "r", Entities: []common.Entity{a, b}, CompletionStatus: StatusComplete}.Document()
	if doc.HasPart[0].ID != "urn:osint:policy:data-act" || doc.HasPart[1].ID != "urn:osint:policy:data-act-2" {
		t.Fatalf("unexpected ids %q %q", doc.HasPart[0].ID, doc.HasPart[1].ID)
	}
	if doc.HasPart[0].Type != common.SchemaLegislation || doc.HasPart[0].LegislationIdentifier != "2023/2854" {
		t.Fatalf("unexpected policy part %+v", doc.HasPart[0])
	}
}

func TestVocabularyType(t *testing.T) {
	tests := []struct {
		name    string
		details common.Details
		hint    string
		want    string
	}{
		{name: "Person", details: common.PersonDetails{}, want: "Person"},
		{name: "Topic", details: common.TopicDetails{}, want: "Thing"},
		{name: "NGOSubtype", details: common.OrganizationDetails{}, hint: "ngo", want: "NGO"},
		{name: "PublicBody", details: common.OrganizationDetails{}, hint: "public agency", want: "GovernmentOrganization"},
		{name: "ServicePolicy", details: common.PolicyDetails{}, hint: "public service", want: "GovernmentService"},
		{name: "MismatchedSubtype", details: common.PersonDetails{}, hint: "Legislation", want: "Person"},
		{name: "EventSubtype", details: common.EventDetails{}, hint: "schema:BusinessEvent", want: "BusinessEvent"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := common.NewEntity("x", "X", tc.details)
			e.TypeHint = tc.hint
			if got := VocabularyType(e); got != tc.want {
				t.Fatalf("VocabularyType() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestGovernmentServiceJurisdiction(t *testing.T) {
	e := common.NewEntity("s", "Air quality permits", common.PolicyDetails{Jurisdiction: "Bavaria", Identifier: "P-1"})
	e.TypeHint = common.SchemaGovernmentService

	part := Report{Entities: []common.Entity{e}}.Document().HasPart[0]
	if part.Type != common.SchemaGovernmentService || part.Jurisdiction != "Bavaria" || part.LegislationJurisdiction != "" {
		t.Fatalf("unexpected service part %+v", part)
	}
}

func TestSchema(t *testing.T) {
	data, err := Schema()
	if err != nil {
		t.Fatalf("Schema failed: %v", err)
	}
	var s map[string]any
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	props, ok := s["properties"].(map[string]any)
	if !ok {
		t.Fatalf("schema has no properties: %s", data)
	}
	for _, key := range []string{"@context", "@type", "hasPart", "creativeWorkStatus"} {
		if _, ok := props[key]; !ok {
			t.Fatalf("schema misses %q", key)
		}
	}
}
