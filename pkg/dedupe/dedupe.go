package dedupe

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/OFFIS-RIT/osint/pkg/common"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/text/unicode/norm"
)

const contentIDPrefix = "content:"

// Stats counts what a merge did.
type Stats struct {
	Before int `json:"before"`
	After  int `json:"after"`
	Merged int `json:"merged"`
	// Skipped counts incoming entities that had already been absorbed.
	Skipped int `json:"skipped"`
}

// NormalizeName folds a name for identity comparison: NFKC, collapsed
// whitespace, lower case.
func NormalizeName(name string) string {
	name = norm.NFKC.String(name)
	name = strings.Join(strings.Fields(name), " ")
	return strings.ToLower(name)
}

// Key returns the identity key of an entity. Two entities with the same key
// denote the same real-world thing.
func Key(e common.Entity) string {
	return KeyOf(e.Name, e.Kind())
}

// KeyOf builds an identity key from a name and a kind.
func KeyOf(name string, kind common.Kind) string {
	return NormalizeName(name) + "|" + string(kind)
}

// Merge folds incoming into base and returns a new slice; neither input is
// modified. Base order is kept and novel incoming entities are appended in
// their original order. See MergeWithStats.
func Merge(base, incoming []common.Entity) []common.Entity {
	out, _ := MergeWithStats(base, incoming)
	return out
}

// MergeWithStats merges like Merge and reports counts.
//
// When an incoming entity shares a key with an entity already in the result,
// its sources are appended and its enrichment fields fill the gaps of the
// existing entity, which stays the entity of record. Every merge records the
// absorbed id in MergedFrom, so merging the same batch twice is a no-op.
// Incoming entities without an id are given one derived from their content
// (see ContentID) before they are merged.
func MergeWithStats(base, incoming []common.Entity) ([]common.Entity, Stats) {
	stats := Stats{Before: len(base) + len(incoming)}

	out := make([]common.Entity, 0, len(base)+len(incoming))
	index := make(map[string]int, len(base)+len(incoming))
	for _, e := range base {
		out = append(out, e.Clone())
		k := Key(e)
		if _, ok := index[k]; !ok {
			index[k] = len(out) - 1
		}
	}

	for _, in := range incoming {
		if in.ID == "" {
			in.ID = ContentID(in)
		}
		k := Key(in)
		i, ok := index[k]
		if !ok {
			out = append(out, in.Clone())
			index[k] = len(out) - 1
			continue
		}
		if absorbed(out[i], in) {
			stats.Skipped++
			continue
		}
		absorb(&out[i], in)
		stats.Merged++
	}

	stats.After = len(out)
	return out, stats
}

// ContentID derives a stable id from the identity key, the sources and the
// enrichment fields of e.
func ContentID(e common.Entity) string {
	var b strings.Builder
	b.WriteString(Key(e))
	for _, s := range e.Sources {
		b.WriteString("\x00s:" + s.URL + "\x00" + s.Excerpt)
	}
	b.WriteString("\x00d:" + e.Description)
	b.WriteString("\x00x:" + e.ExternalID)
	for _, l := range e.ExternalLinks {
		b.WriteString("\x00l:" + l)
	}
	b.WriteString("\x00v:" + e.DiscoveredVia)
	b.WriteString("\x00m:" + e.Dimension)
	b.WriteString("\x00h:" + e.TypeHint)
	if e.Details != nil {
		fmt.Fprintf(&b, "\x00t:%+v", e.Details)
	}
	fields := make([]string, 0, len(e.RawValues))
	for f := range e.RawValues {
		fields = append(fields, f)
	}
	slices.Sort(fields)
	for _, f := range fields {
		b.WriteString("\x00r:" + f + "=" + e.RawValues[f])
	}
	return contentIDPrefix + strconv.FormatUint(xxhash.Sum64String(b.String()), 16)
}

// absorbed reports whether in is already part of target.
func absorbed(target, in common.Entity) bool {
	return in.ID == target.ID || slices.Contains(target.MergedFrom, in.ID)
}

func absorb(target *common.Entity, in common.Entity) {
	target.Sources = append(target.Sources, in.Sources...)

	if in.ID != "" {
		target.MergedFrom = append(target.MergedFrom, in.ID)
	}
	for _, id := range in.MergedFrom {
		if id != target.ID && !slices.Contains(target.MergedFrom, id) {
			target.MergedFrom = append(target.MergedFrom, id)
		}
	}

	if target.Description == "" {
		target.Description = in.Description
	}
	if len(target.ExternalLinks) == 0 && len(in.ExternalLinks) > 0 {
		target.ExternalLinks = append([]string(nil), in.ExternalLinks...)
	}
	if target.ExternalID == "" {
		target.ExternalID = in.ExternalID
	}
	if target.DiscoveredVia == "" {
		target.DiscoveredVia = in.DiscoveredVia
	}
	if target.Dimension == "" {
		target.Dimension = in.Dimension
	}
	if target.TypeHint == "" {
		target.TypeHint = in.TypeHint
	}
	target.Details = fillDetails(target.Details, in.Details)

	for field, raw := range in.RawValues {
		if _, ok := target.RawValues[field]; ok {
			continue
		}
		if target.RawValues == nil {
			target.RawValues = make(map[string]string)
		}
		target.RawValues[field] = raw
	}
}

// fillDetails copies fields set on in but empty on base. Details of a
// different kind are ignored.
func fillDetails(base, in common.Details) common.Details {
	switch b := base.(type) {
	case common.PersonDetails:
		if d, ok := in.(common.PersonDetails); ok {
			fill(&b.JobTitle, d.JobTitle)
		}
		return b
	case common.OrganizationDetails:
		if d, ok := in.(common.OrganizationDetails); ok {
			fill(&b.URL, d.URL)
		}
		return b
	case common.EventDetails:
		if d, ok := in.(common.EventDetails); ok {
			fill(&b.StartDate, d.StartDate)
			fill(&b.EndDate, d.EndDate)
			fill(&b.Location, d.Location)
			fill(&b.Organizer, d.Organizer)
		}
		return b
	case common.PolicyDetails:
		if d, ok := in.(common.PolicyDetails); ok {
			fill(&b.Identifier, d.Identifier)
			fill(&b.EnactmentDate, d.EnactmentDate)
			fill(&b.EffectiveDate, d.EffectiveDate)
			fill(&b.ExpirationDate, d.ExpirationDate)
			fill(&b.Jurisdiction, d.Jurisdiction)
		}
		return b
	}
	return base
}

func fill(dst *string, src string) {
	if *dst == "" {
		*dst = src
	}
}
