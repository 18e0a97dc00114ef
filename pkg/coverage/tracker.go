package coverage

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/OFFIS-RIT/osint/pkg/common"
)

// Status is the exploration state of a coverage node.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusComplete   Status = "complete"
)

type node struct {
	id            string
	label         string
	priority      int
	children      []int
	entitiesFound int
	started       bool
	complete      bool
}

// Tracker tracks how far a research run has covered its decomposition plan.
// Nodes live in a flat slice and refer to their children by index. Parent
// status is derived from the children on every read and never stored.
//
// A Tracker belongs to a single run and is not safe for concurrent use.
type Tracker struct {
	topic    string
	nodes    []node
	index    map[string]int
	roots    []int
	order    []int // depth-first plan order
	observed []string
	seen     map[string]bool
	applied  bool
}

// New returns an inert tracker. It stays inert until a non-empty plan is
// applied.
func New() *Tracker {
	return &Tracker{
		index: make(map[string]int),
		seen:  make(map[string]bool),
	}
}

// Inert reports whether no decomposition is being tracked.
func (t *Tracker) Inert() bool {
	return len(t.nodes) == 0
}

// ApplyDecomposition builds the node tree from plan. Missing ids are derived
// from the labels of the node and its ancestors. A nil or empty plan keeps
// the tracker inert.
func (t *Tracker) ApplyDecomposition(plan *Plan) (*Tree, error) {
	if t.applied {
		return nil, ErrAlreadyApplied
	}
	if plan == nil || len(plan.Dimensions) == 0 {
		tree := t.Tree()
		return &tree, nil
	}

	var (
		nodes []node
		index = make(map[string]int)
	)
	var build func(d Dimension, parentID string) (int, error)
	build = func(d Dimension, parentID string) (int, error) {
		label := strings.TrimSpace(d.Label)
		id := strings.TrimSpace(d.ID)
		if id == "" {
			id = common.Slug(label)
			if id == "" {
				return 0, fmt.Errorf("%w: dimension without id or label", ErrInvalidPlan)
			}
			if parentID != "" {
				id = parentID + "/" + id
			}
		}
		if label == "" {
			label = id
		}
		if _, ok := index[id]; ok {
			return 0, fmt.Errorf("%w: %q", ErrDuplicateNode, id)
		}

		i := len(nodes)
		nodes = append(nodes, node{id: id, label: label, priority: d.Priority})
		index[id] = i
		for _, c := range d.Children {
			ci, err := build(c, id)
			if err != nil {
				return 0, err
			}
			nodes[i].children = append(nodes[i].children, ci)
		}
		return i, nil
	}

	var roots []int
	for _, d := range plan.Dimensions {
		i, err := build(d, "")
		if err != nil {
			return nil, err
		}
		roots = append(roots, i)
	}

	t.topic = plan.Topic
	t.nodes = nodes
	t.index = index
	t.roots = roots
	t.applied = true
	t.order = t.order[:0]
	for _, r := range roots {
		t.walk(r, func(i int) { t.order = append(t.order, i) })
	}

	tree := t.Tree()
	return &tree, nil
}

func (t *Tracker) walk(i int, fn func(int)) {
	fn(i)
	for _, c := range t.nodes[i].children {
		t.walk(c, fn)
	}
}

// Resolve maps a dimension reference to a node id. It accepts an id or a
// label, the latter compared case-insensitively.
func (t *Tracker) Resolve(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}
	if _, ok := t.index[ref]; ok {
		return ref, true
	}
	for _, i := range t.order {
		if strings.EqualFold(t.nodes[i].label, ref) {
			return t.nodes[i].id, true
		}
	}
	return "", false
}

func (t *Tracker) lookup(id string) (int, error) {
	i, ok := t.index[id]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}
	return i, nil
}

// AttributeEntities adds count entities to a node. The first positive
// attribution moves the node from not_started to in_progress. On an inert
// tracker this is a no-op.
func (t *Tracker) AttributeEntities(id string, count int) error {
	if t.Inert() {
		return nil
	}
	if count < 0 {
		return ErrNegativeCount
	}
	i, err := t.lookup(id)
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	n := &t.nodes[i]
	n.entitiesFound += count
	n.started = true
	t.observe(n.id)
	return nil
}

// MarkComplete completes a leaf. A parent cannot be completed directly: it
// is complete once all of its children are, and asking for it earlier fails
// with ErrIncompleteChildren. On an inert tracker this is a no-op.
func (t *Tracker) MarkComplete(id string) error {
	if t.Inert() {
		return nil
	}
	i, err := t.lookup(id)
	if err != nil {
		return err
	}
	n := &t.nodes[i]
	if len(n.children) > 0 {
		if t.status(i) != StatusComplete {
			return fmt.Errorf("%w: %q", ErrIncompleteChildren, id)
		}
		return nil
	}
	n.complete = true
	t.observe(n.id)
	return nil
}

func (t *Tracker) observe(id string) {
	if t.seen[id] {
		return
	}
	t.seen[id] = true
	t.observed = append(t.observed, id)
}

// Status returns the rolled-up status of a node.
func (t *Tracker) Status(id string) (Status, error) {
	i, err := t.lookup(id)
	if err != nil {
		return "", err
	}
	return t.status(i), nil
}

func (t *Tracker) status(i int) Status {
	n := t.nodes[i]
	if len(n.children) == 0 {
		switch {
		case n.complete:
			return StatusComplete
		case n.started:
			return StatusInProgress
		}
		return StatusNotStarted
	}

	allComplete, anyStarted := true, n.started
	for _, c := range n.children {
		switch t.status(c) {
		case StatusComplete:
			anyStarted = true
		case StatusInProgress:
			allComplete = false
			anyStarted = true
		default:
			allComplete = false
		}
	}
	switch {
	case allComplete:
		return StatusComplete
	case anyStarted:
		return StatusInProgress
	}
	return StatusNotStarted
}

// Summary is the derived completion state of a run.
type Summary struct {
	CompletionPercentage float64  `json:"completionPercentage"`
	RemainingNodes       []string `json:"remainingNodes"`
	TotalLeaves          int      `json:"totalLeaves"`
	CompleteLeaves       int      `json:"completeLeaves"`
	Inert                bool     `json:"-"`
}

// Summary computes the completion percentage over leaf nodes and lists the
// labels of incomplete leaves by ascending priority, ties in plan order. An
// inert tracker reports a complete summary with zero nodes.
func (t *Tracker) Summary() Summary {
	if t.Inert() {
		return Summary{CompletionPercentage: 100, RemainingNodes: []string{}, Inert: true}
	}

	var remaining []node
	total, complete := 0, 0
	for _, i := range t.order {
		n := t.nodes[i]
		if len(n.children) > 0 {
			continue
		}
		total++
		if n.complete {
			complete++
			continue
		}
		remaining = append(remaining, n)
	}
	sort.SliceStable(remaining, func(a, b int) bool {
		return remaining[a].priority < remaining[b].priority
	})

	labels := make([]string, 0, len(remaining))
	for _, n := range remaining {
		labels = append(labels, n.label)
	}

	pct := 100.0
	if total > 0 {
		pct = math.Round(float64(complete)*100/float64(total)*100) / 100
	}
	return Summary{
		CompletionPercentage: pct,
		RemainingNodes:       labels,
		TotalLeaves:          total,
		CompleteLeaves:       complete,
	}
}

// ObservedOrder returns node ids in the order they were first attributed
// or completed.
func (t *Tracker) ObservedOrder() []string {
	return append([]string(nil), t.observed...)
}

// OrderDeviations counts observed leaves that were reached after a leaf of
// a strictly higher priority value, i.e. departures from depth-first by
// priority. The tracker only records them.
func (t *Tracker) OrderDeviations() int {
	deviations := 0
	highest, seenLeaf := 0, false
	for _, id := range t.observed {
		n := t.nodes[t.index[id]]
		if len(n.children) > 0 {
			continue
		}
		if seenLeaf && n.priority < highest {
			deviations++
		}
		if !seenLeaf || n.priority > highest {
			highest = n.priority
		}
		seenLeaf = true
	}
	return deviations
}

// Node is a read-only snapshot of a coverage node.
type Node struct {
	ID            string `json:"id"`
	Label         string `json:"label"`
	Status        Status `json:"status"`
	Priority      int    `json:"priority"`
	EntitiesFound int    `json:"entitiesFound"`
	Children      []Node `json:"children,omitempty"`
}

// Tree is a read-only snapshot of the whole decomposition.
type Tree struct {
	Topic string `json:"topic,omitempty"`
	Nodes []Node `json:"nodes"`
}

// Tree returns a snapshot of the current state.
func (t *Tracker) Tree() Tree {
	tree := Tree{Topic: t.topic, Nodes: []Node{}}
	for _, r := range t.roots {
		tree.Nodes = append(tree.Nodes, t.snapshot(r))
	}
	return tree
}

func (t *Tracker) snapshot(i int) Node {
	n := t.nodes[i]
	out := Node{
		ID:            n.id,
		Label:         n.label,
		Status:        t.status(i),
		Priority:      n.priority,
		EntitiesFound: n.entitiesFound,
	}
	for _, c := range n.children {
		out.Children = append(out.Children, t.snapshot(c))
	}
	return out
}
