package coverage

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func fourLeafPlan() *Plan {
	return &Plan{
		Topic: "Air pollution policy",
		Dimensions: []Dimension{
			{ID: "actors", Label: "Actors", Priority: 1, Children: []Dimension{
				{ID: "gov", Label: "Government bodies", Priority: 2},
				{ID: "ngo", Label: "NGOs", Priority: 4},
			}},
			{ID: "rules", Label: "Rules", Priority: 2, Children: []Dimension{
				{ID: "laws", Label: "National laws", Priority: 1},
				{ID: "events", Label: "Events", Priority: 3},
			}},
		},
	}
}

func TestSummaryHalfComplete(t *testing.T) {
	tr := New()
	if _, err := tr.ApplyDecomposition(fourLeafPlan()); err != nil {
		t.Fatalf("ApplyDecomposition failed: %v", err)
	}
	if err := tr.MarkComplete("gov"); err != nil {
		t.Fatalf("MarkComplete(gov) failed: %v", err)
	}
	if err := tr.MarkComplete("events"); err != nil {
		t.Fatalf("MarkComplete(events) failed: %v", err)
	}

	s := tr.Summary()
	if s.CompletionPercentage != 50.0 {
		t.Fatalf("expected 50%%, got %v", s.CompletionPercentage)
	}
	if diff := cmp.Diff([]string{"National laws", "NGOs"}, s.RemainingNodes); diff != "" {
		t.Fatalf("remaining mismatch (-want +got):\n%s", diff)
	}
	if s.TotalLeaves != 4 || s.CompleteLeaves != 2 {
		t.Fatalf("unexpected leaf counts %+v", s)
	}
}

func TestCompletionIsMonotonic(t *testing.T) {
	tr := New()
	if _, err := tr.ApplyDecomposition(fourLeafPlan()); err != nil {
		t.Fatalf("ApplyDecomposition failed: %v", err)
	}

	last := tr.Summary().CompletionPercentage
	for _, id := range []string{"ngo", "ngo", "laws", "gov", "events", "gov"} {
		_ = tr.AttributeEntities(id, 2)
		if err := tr.MarkComplete(id); err != nil {
			t.Fatalf("MarkComplete(%s) failed: %v", id, err)
		}
		got := tr.Summary().CompletionPercentage
		if got < last {
			t.Fatalf("completion decreased from %v to %v after %s", last, got, id)
		}
		last = got
	}
	if last != 100 {
		t.Fatalf("expected 100%% at the end, got %v", last)
	}
}

func TestStatusRollup(t *testing.T) {
	tr := New()
	if _, err := tr.ApplyDecomposition(fourLeafPlan()); err != nil {
		t.Fatalf("ApplyDecomposition failed: %v", err)
	}

	assertStatus := func(id string, want Status) {
		t.Helper()
		got, err := tr.Status(id)
		if err != nil {
			t.Fatalf("Status(%s) failed: %v", id, err)
		}
		if got != want {
			t.Fatalf("Status(%s) = %q, want %q", id, got, want)
		}
	}

	assertStatus("actors", StatusNotStarted)

	if err := tr.AttributeEntities("gov", 3); err != nil {
		t.Fatalf("AttributeEntities failed: %v", err)
	}
	assertStatus("gov", StatusInProgress)
	assertStatus("actors", StatusInProgress)

	if err := tr.MarkComplete("actors"); !errors.Is(err, ErrIncompleteChildren) {
		t.Fatalf("expected ErrIncompleteChildren, got %v", err)
	}

	_ = tr.MarkComplete("gov")
	_ = tr.MarkComplete("ngo")
	assertStatus("actors", StatusComplete)
	if err := tr.MarkComplete("actors"); err != nil {
		t.Fatalf("completing a parent with complete children should succeed, got %v", err)
	}
	assertStatus("rules", StatusNotStarted)

	tree := tr.Tree()
	if tree.Nodes[0].Children[0].EntitiesFound != 3 {
		t.Fatalf("expected 3 entities on gov, got %+v", tree.Nodes[0].Children[0])
	}
}

func TestInertTracker(t *testing.T) {
	tr := New()
	if _, err := tr.ApplyDecomposition(nil); err != nil {
		t.Fatalf("nil plan should be accepted, got %v", err)
	}
	if err := tr.AttributeEntities("anything", 5); err != nil {
		t.Fatalf("attribution on inert tracker should be a no-op, got %v", err)
	}
	if err := tr.MarkComplete("anything"); err != nil {
		t.Fatalf("completion on inert tracker should be a no-op, got %v", err)
	}

	s := tr.Summary()
	if !s.Inert || s.CompletionPercentage != 100 || s.TotalLeaves != 0 || len(s.RemainingNodes) != 0 {
		t.Fatalf("unexpected inert summary %+v", s)
	}
	if len(tr.Tree().Nodes) != 0 {
		t.Fatalf("expected empty tree")
	}
}

func TestApplyDecompositionErrors(t *testing.T) {
	tests := []struct {
		name string
		plan *Plan
		want error
	}{
		{
			name: "DuplicateID",
			plan: &Plan{Dimensions: []Dimension{{ID: "a", Label: "A"}, {ID: "a", Label: "B"}}},
			want: ErrDuplicateNode,
		},
		{
			name: "DuplicateGeneratedID",
			plan: &Plan{Dimensions: []Dimension{{Label: "Key Actors"}, {Label: "key actors!"}}},
			want: ErrDuplicateNode,
		},
		{
			name: "NoIDOrLabel",
			plan: &Plan{Dimensions: []Dimension{{Label: "  "}}},
			want: ErrInvalidPlan,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New().ApplyDecomposition(tc.plan)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	tr := New()
	if _, err := tr.ApplyDecomposition(fourLeafPlan()); err != nil {
		t.Fatalf("ApplyDecomposition failed: %v", err)
	}
	if _, err := tr.ApplyDecomposition(fourLeafPlan()); !errors.Is(err, ErrAlreadyApplied) {
		t.Fatalf("expected ErrAlreadyApplied, got %v", err)
	}
	if err := tr.AttributeEntities("missing", 1); !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("expected ErrUnknownNode, got %v", err)
	}
	if err := tr.AttributeEntities("gov", -1); !errors.Is(err, ErrNegativeCount) {
		t.Fatalf("expected ErrNegativeCount, got %v", err)
	}
}

func TestGeneratedIDsAndResolve(t *testing.T) {
	plan, err := ParsePlan([]byte(`
topic: Data governance
dimensions:
  - label: Key Actors
    priority: 1
    children:
      - label: Regulators
        priority: 1
  - label: Legal Framework
    priority: 2
`))
	if err != nil {
		t.Fatalf("ParsePlan failed: %v", err)
	}

	tr := New()
	tree, err := tr.ApplyDecomposition(plan)
	if err != nil {
		t.Fatalf("ApplyDecomposition failed: %v", err)
	}
	if tree.Topic != "Data governance" || tree.Nodes[0].Children[0].ID != "key-actors/regulators" {
		t.Fatalf("unexpected tree %+v", tree)
	}

	for ref, want := range map[string]string{
		"legal-framework":       "legal-framework",
		"legal framework":       "legal-framework",
		"REGULATORS":            "key-actors/regulators",
		"key-actors/regulators": "key-actors/regulators",
	} {
		got, ok := tr.Resolve(ref)
		if !ok || got != want {
			t.Fatalf("Resolve(%q) = (%q, %v), want %q", ref, got, ok, want)
		}
	}
	if _, ok := tr.Resolve("unrelated"); ok {
		t.Fatalf("expected unresolved reference")
	}
}

func TestObservedOrderAndDeviations(t *testing.T) {
	tr := New()
	if _, err := tr.ApplyDecomposition(fourLeafPlan()); err != nil {
		t.Fatalf("ApplyDecomposition failed: %v", err)
	}

	_ = tr.AttributeEntities("laws", 1)   // priority 1
	_ = tr.AttributeEntities("events", 1) // priority 3
	_ = tr.AttributeEntities("gov", 1)    // priority 2, after 3
	_ = tr.MarkComplete("laws")

	if diff := cmp.Diff([]string{"laws", "events", "gov"}, tr.ObservedOrder()); diff != "" {
		t.Fatalf("observed order mismatch (-want +got):\n%s", diff)
	}
	if got := tr.OrderDeviations(); got != 1 {
		t.Fatalf("expected 1 deviation, got %d", got)
	}
}
