package parse

import (
	"strings"
	"unicode"

	"github.com/OFFIS-RIT/osint/pkg/common"
)

type section struct {
	marker string
	kind   common.Kind
	known  bool
	name   string
	lines  []string
}

// ParseText splits marker-delimited agent output into raw records.
//
// A section starts at a line such as "EVENT: Climate Summit 2024" and runs
// until the next marker line. Text before the first marker is ignored.
// Sections introduced by an unrecognized upper-case marker are counted as
// discarded and never produce a record.
func (p *Parser) ParseText(text string) ([]Record, Summary) {
	summary := newSummary(text)
	sections := p.splitSections(text)

	records := make([]Record, 0, len(sections))
	for _, s := range sections {
		summary.SectionsFound++
		if !s.known {
			summary.SectionsDiscarded++
			summary.UnknownKinds = append(summary.UnknownKinds, s.marker)
			continue
		}
		rec := p.extractSection(s)
		summary.PerKind[s.kind]++
		records = append(records, rec)
	}
	if len(records) > 0 {
		summary.Strategy = StrategyMarkers
	}
	return records, summary
}

func (p *Parser) splitSections(text string) []section {
	var (
		sections []section
		current  *section
	)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if s, ok := p.markerLine(line); ok {
			sections = append(sections, s)
			current = &sections[len(sections)-1]
			continue
		}
		if current != nil {
			current.lines = append(current.lines, line)
		}
	}
	return sections
}

// markerLine reports whether line opens a new section. Known keywords must be
// written in upper case unless the line is a markdown heading or the keyword
// is wrapped in emphasis. Unknown
// upper-case words open a discarded section unless they are field labels.
func (p *Parser) markerLine(line string) (section, bool) {
	m := p.patterns.marker.FindStringSubmatch(line)
	if m == nil {
		return section{}, false
	}
	word := strings.TrimSpace(m[2])
	value := p.patterns.cleanValue(m[3])
	if strings.HasPrefix(value, "//") {
		return section{}, false
	}

	heading := strings.HasPrefix(strings.TrimSpace(line), "#")
	emphasized := m[1] != ""
	upper := isUpperWord(word)
	key := strings.ToUpper(strings.ReplaceAll(word, " ", ""))

	if kind, ok := p.patterns.markers[key]; ok && (upper || heading || emphasized) {
		return section{marker: word, kind: kind, known: true, name: value}, true
	}

	if !upper || value == "" || strings.Contains(word, " ") || len(word) < 3 {
		return section{}, false
	}
	if _, isLabel := p.patterns.lookupLabel(word); isLabel {
		return section{}, false
	}
	return section{marker: word, name: value}, true
}

func isUpperWord(w string) bool {
	hasLetter := false
	for _, r := range w {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

// extractSection runs the field extractors over one known section.
func (p *Parser) extractSection(s section) Record {
	rec := Record{
		Kind:    string(s.kind),
		Name:    s.name,
		Sources: []common.Source{},
	}

	var (
		description []string
		loose       []string
		block       string
	)

	for _, line := range s.lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			block = ""
			continue
		}

		key, value, ok := p.patterns.splitLabel(line)
		if !ok {
			switch block {
			case labelSources:
				if src, ok := p.patterns.SourceLine(trimmed); ok {
					rec.Sources = append(rec.Sources, src)
				}
			case labelExternalLinks:
				rec.ExternalLinks = append(rec.ExternalLinks, p.patterns.URLs(trimmed)...)
			case labelDescription:
				description = append(description, p.patterns.cleanValue(trimmed))
			default:
				if src, ok := p.patterns.SourceLine(trimmed); ok {
					rec.Sources = append(rec.Sources, src)
					continue
				}
				loose = append(loose, p.patterns.cleanValue(strings.TrimLeft(trimmed, "-*+> ")))
			}
			continue
		}

		block = ""
		switch key {
		case "":
		case labelName:
			if rec.Name == "" {
				rec.Name = value
			}
		case labelDescription:
			if value != "" {
				description = append(description, value)
			}
			block = labelDescription
		case labelSources:
			if src, ok := p.patterns.SourceLine(value); ok {
				rec.Sources = append(rec.Sources, src)
			}
			block = labelSources
		case labelDate:
			p.applyDate(&rec, s.kind, value)
		case labelExternalLinks:
			if urls := p.patterns.URLs(value); len(urls) > 0 {
				rec.ExternalLinks = append(rec.ExternalLinks, urls...)
			} else {
				rec.ExternalLinks = append(rec.ExternalLinks, p.patterns.List(value)...)
			}
			block = labelExternalLinks
		case labelExternalID:
			if rec.ExternalID == "" {
				rec.ExternalID = value
			}
		case labelDimension:
			if rec.Dimension == "" {
				rec.Dimension = value
			}
		case labelTypeHint:
			if rec.TypeHint == "" {
				rec.TypeHint = value
			}
		case labelDiscoveredVia:
			if rec.DiscoveredVia == "" {
				rec.DiscoveredVia = value
			}
		case FieldJobTitle:
			// "Title:" names the document for events and policies.
			if s.kind != common.KindPerson {
				if rec.Name == "" {
					rec.Name = value
				}
				continue
			}
			rec.setField(key, value)
		case FieldURL:
			if urls := p.patterns.URLs(value); len(urls) > 0 {
				value = urls[0]
			}
			rec.setField(key, value)
		case FieldStartDate:
			start, end := p.patterns.DateRange(value)
			rec.setField(FieldStartDate, start)
			rec.setField(FieldEndDate, end)
		default:
			rec.setField(key, value)
		}
	}

	if len(description) > 0 {
		rec.Description = strings.Join(description, " ")
	} else if len(loose) > 0 {
		rec.Description = strings.Join(loose, " ")
	}
	return rec
}

// applyDate places a generic "Date:" value according to the record kind.
func (p *Parser) applyDate(rec *Record, kind common.Kind, value string) {
	switch kind {
	case common.KindEvent:
		start, end := p.patterns.DateRange(value)
		rec.setField(FieldStartDate, start)
		rec.setField(FieldEndDate, end)
	case common.KindPolicy:
		rec.setField(FieldEnactmentDate, value)
	}
}
