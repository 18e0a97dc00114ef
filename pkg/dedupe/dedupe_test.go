package dedupe

import (
	"testing"

	"github.com/OFFIS-RIT/osint/pkg/common"
	"github.com/google/go-cmp/cmp"
)

func org(id, name, url string) common.Entity {
	e := common.NewEntity(id, name, common.OrganizationDetails{})
	e.Sources = []common.Source{{URL: url}}
	return e
}

func TestMergeSameOrganizationDifferentCasing(t *testing.T) {
	base := []common.Entity{org("a1", "Ministry Of Health", "https://health.gov.example/about")}
	incoming := []common.Entity{org("b1", "ministry of health", "https://news.example/ministry")}

	got, stats := MergeWithStats(base, incoming)

	if len(got) != 1 {
		t.Fatalf("expected 1 entity, got %d", len(got))
	}
	if len(got[0].Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(got[0].Sources))
	}
	if got[0].ID != "a1" || got[0].Name != "Ministry Of Health" {
		t.Fatalf("expected base entity to stay the entity of record, got %+v", got[0])
	}
	if stats.Before != 2 || stats.After != 1 || stats.Merged != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	person := common.NewEntity("p1", "Jane Doe", common.PersonDetails{})
	person.Sources = []common.Source{{URL: "https://a.example"}}

	enriched := common.NewEntity("p2", "JANE  DOE", common.PersonDetails{JobTitle: "Minister"})
	enriched.Sources = []common.Source{{URL: "https://b.example"}}
	enriched.ExternalID = "Q1"

	event := common.NewEntity("e1", "Summit", common.EventDetails{StartDate: "2024-03-15"})
	dupEvent := common.NewEntity("e2", "summit", common.EventDetails{Location: "Paris"})

	ministry := common.NewEntity("", "Ministry Of Health", common.OrganizationDetails{})
	ministry.Sources = []common.Source{{URL: "https://a.example"}}
	ministryDup := common.NewEntity("", "ministry of health", common.OrganizationDetails{URL: "https://health.example"})
	ministryDup.Sources = []common.Source{{URL: "https://b.example"}}

	tests := []struct {
		name string
		a    []common.Entity
		b    []common.Entity
	}{
		{"Disjoint", []common.Entity{person}, []common.Entity{event}},
		{"Overlapping", []common.Entity{person, event}, []common.Entity{enriched}},
		{"DuplicatesWithinIncoming", []common.Entity{person}, []common.Entity{event, dupEvent, enriched}},
		{"EmptyBase", nil, []common.Entity{event, dupEvent}},
		{"EmptyIncoming", []common.Entity{person}, nil},
		{"WithoutIDs", []common.Entity{ministry}, []common.Entity{ministryDup}},
		{"WithoutIDsWithinIncoming", nil, []common.Entity{ministry, ministryDup}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			once := Merge(tc.a, tc.b)
			twice := Merge(once, tc.b)
			if diff := cmp.Diff(once, twice); diff != "" {
				t.Fatalf("merge not idempotent (-once +twice):\n%s", diff)
			}
		})
	}
}

func TestMergeWithoutIDsKeepsSourcesOnce(t *testing.T) {
	a := common.NewEntity("", "Ministry Of Health", common.OrganizationDetails{})
	a.Sources = []common.Source{{URL: "https://a.example"}}
	b := common.NewEntity("", "ministry of health", common.OrganizationDetails{})
	b.Sources = []common.Source{{URL: "https://b.example"}}

	once := Merge([]common.Entity{a}, []common.Entity{b})
	twice := Merge(once, []common.Entity{b})
	if len(twice) != 1 || len(twice[0].Sources) != 2 {
		t.Fatalf("expected one entity with 2 sources, got %+v", twice)
	}
	if diff := cmp.Diff([]string{ContentID(b)}, twice[0].MergedFrom); diff != "" {
		t.Fatalf("merged from mismatch (-want +got):\n%s", diff)
	}
	if ContentID(a) == ContentID(b) {
		t.Fatalf("expected different content ids for different sources")
	}
}

func TestMergeFillsOnlyMissingFields(t *testing.T) {
	base := common.NewEntity("p1", "Jane Doe", common.PersonDetails{JobTitle: "Minister of Health"})
	base.ExternalID = "Q1"

	in := common.NewEntity("p2", "Jane Doe", common.PersonDetails{JobTitle: "Doctor"})
	in.ExternalID = "Q999"
	in.ExternalLinks = []string{"https://www.wikidata.org/wiki/Q1"}
	in.Description = "Physician and politician."
	in.DiscoveredVia = "wikidata"

	got := Merge([]common.Entity{base}, []common.Entity{in})[0]

	if got.ExternalID != "Q1" {
		t.Fatalf("external id overwritten: %q", got.ExternalID)
	}
	if got.Details.(common.PersonDetails).JobTitle != "Minister of Health" {
		t.Fatalf("job title overwritten: %+v", got.Details)
	}
	if len(got.ExternalLinks) != 1 || got.Description != "Physician and politician." || got.DiscoveredVia != "wikidata" {
		t.Fatalf("missing enrichment fields not copied: %+v", got)
	}
	if diff := cmp.Diff([]string{"p2"}, got.MergedFrom); diff != "" {
		t.Fatalf("merged-from mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeKeepsOrderAndInputs(t *testing.T) {
	a := []common.Entity{org("1", "Alpha", "https://a.example"), org("2", "Beta", "https://b.example")}
	b := []common.Entity{org("3", "Gamma", "https://c.example"), org("4", "alpha", "https://d.example"), org("5", "Delta", "https://e.example")}
	aBefore := cloneAll(a)
	bBefore := cloneAll(b)

	got := Merge(a, b)

	var names []string
	for _, e := range got {
		names = append(names, e.Name)
	}
	if diff := cmp.Diff([]string{"Alpha", "Beta", "Gamma", "Delta"}, names); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(aBefore, a); diff != "" {
		t.Fatalf("base mutated (-before +after):\n%s", diff)
	}
	if diff := cmp.Diff(bBefore, b); diff != "" {
		t.Fatalf("incoming mutated (-before +after):\n%s", diff)
	}
}

func TestMergeDifferentKindsStaySeparate(t *testing.T) {
	topic := common.NewEntity("t1", "Data Act", common.TopicDetails{})
	policy := common.NewEntity("p1", "Data Act", common.PolicyDetails{})

	got := Merge([]common.Entity{topic}, []common.Entity{policy})
	if len(got) != 2 {
		t.Fatalf("expected kinds to stay separate, got %d entities", len(got))
	}
}

func TestKeyStability(t *testing.T) {
	tests := []struct {
		a, b string
	}{
		{"Ministry of Health", "MINISTRY OF HEALTH"},
		{"  Ministry of Health ", "Ministry of Health"},
		{"Ministry\tof\n Health", "ministry of health"},
		{"Ｗｏｒｌｄ Health", "world health"},
	}
	for _, tc := range tests {
		ka := KeyOf(tc.a, common.KindOrganization)
		kb := KeyOf(tc.b, common.KindOrganization)
		if ka != kb {
			t.Fatalf("KeyOf(%q) = %q, KeyOf(%q) = %q", tc.a, ka, tc.b, kb)
		}
	}
	if KeyOf("Jane Doe", common.KindPerson) == KeyOf("Jane Doe", common.KindTopic) {
		t.Fatalf("keys must differ by kind")
	}
}

func cloneAll(in []common.Entity) []common.Entity {
	out := make([]common.Entity, len(in))
	for i, e := range in {
		out[i] = e.Clone()
	}
	return out
}
