package parse

import (
	"regexp"
	"strings"

	"github.com/OFFIS-RIT/osint/pkg/common"
)

// Label keys for section fields that are not stored in Record.Fields.
const (
	labelName          = "name"
	labelDescription   = "description"
	labelSources       = "sources"
	labelDate          = "date"
	labelExternalLinks = "externalLinks"
	labelExternalID    = "externalId"
	labelDimension     = "dimension"
	labelTypeHint      = "typeHint"
	labelDiscoveredVia = "discoveredVia"
)

// Patterns holds the compiled expressions and lookup tables used by the
// parser. It is built once and only read afterwards.
type Patterns struct {
	marker     *regexp.Regexp
	labelLine  *regexp.Regexp
	url        *regexp.Regexp
	quoted     *regexp.Regexp
	dateRange  *regexp.Regexp
	fenced     *regexp.Regexp
	markers    map[string]common.Kind
	labels     map[string]string
	emphasis   *strings.Replacer
	whitespace *regexp.Regexp
}

var defaultPatterns = newPatterns()

// DefaultPatterns returns the shared, read-only pattern set.
func DefaultPatterns() *Patterns {
	return defaultPatterns
}

func newPatterns() *Patterns {
	return &Patterns{
		// Optional bullet or heading, optional emphasis, the keyword, optional
		// closing emphasis, a colon and the rest of the line.
		marker: regexp.MustCompile(
			`^\s*(?:[-*+]\s+|#{1,6}\s*|\d+[.)]\s+)?(\*\*|__|\*|_)?\s*([A-Za-z][A-Za-z ]{1,30}?)\s*(?:\*\*|__|\*|_)?\s*:\s*(?:\*\*|__|\*|_)?\s*(.*?)\s*$`,
		),
		labelLine: regexp.MustCompile(
			`^\s*(?:[-*+]\s+)?(?:\*\*|__)?\s*([A-Za-z][A-Za-z ()/_-]{0,40}?)\s*(?:\*\*|__)?\s*:\s*(?:\*\*|__)?\s*(.*?)\s*$`,
		),
		url:        regexp.MustCompile(`https?://[^\s"'<>\])}]+`),
		quoted:     regexp.MustCompile(`["“']([^"”']+)["”']`),
		dateRange:  regexp.MustCompile(`^(.+?)\s+(?:to|until|through|–|—|-)\s+(.+)$`),
		fenced:     regexp.MustCompile("(?s)```[A-Za-z]*\\s*\\n?(.*?)```"),
		whitespace: regexp.MustCompile(`\s+`),
		emphasis:   strings.NewReplacer("**", "", "__", "", "`", ""),
		markers: map[string]common.Kind{
			"PERSON":       common.KindPerson,
			"ORGANIZATION": common.KindOrganization,
			"ORGANISATION": common.KindOrganization,
			"ORG":          common.KindOrganization,
			"TOPIC":        common.KindTopic,
			"EVENT":        common.KindEvent,
			"POLICY":       common.KindPolicy,
			"LEGISLATION":  common.KindPolicy,
		},
		labels: map[string]string{
			"name":                 labelName,
			"description":          labelDescription,
			"summary":              labelDescription,
			"overview":             labelDescription,
			"about":                labelDescription,
			"sources":              labelSources,
			"source":               labelSources,
			"references":           labelSources,
			"citations":            labelSources,
			"date":                 labelDate,
			"dates":                labelDate,
			"when":                 labelDate,
			"start date":           FieldStartDate,
			"start":                FieldStartDate,
			"startdate":            FieldStartDate,
			"end date":             FieldEndDate,
			"end":                  FieldEndDate,
			"enddate":              FieldEndDate,
			"location":             FieldLocation,
			"venue":                FieldLocation,
			"place":                FieldLocation,
			"organizer":            FieldOrganizer,
			"organiser":            FieldOrganizer,
			"organized by":         FieldOrganizer,
			"hosted by":            FieldOrganizer,
			"host":                 FieldOrganizer,
			"identifier":           FieldIdentifier,
			"id":                   FieldIdentifier,
			"bill number":          FieldIdentifier,
			"reference number":     FieldIdentifier,
			"enactment date":       FieldEnactmentDate,
			"enacted":              FieldEnactmentDate,
			"adopted":              FieldEnactmentDate,
			"effective date":       FieldEffectiveDate,
			"effective":            FieldEffectiveDate,
			"entry into force":     FieldEffectiveDate,
			"expiration date":      FieldExpirationDate,
			"expiry date":          FieldExpirationDate,
			"expires":              FieldExpirationDate,
			"jurisdiction":         FieldJurisdiction,
			"job title":            FieldJobTitle,
			"jobtitle":             FieldJobTitle,
			"title":                FieldJobTitle,
			"role":                 FieldJobTitle,
			"position":             FieldJobTitle,
			"url":                  FieldURL,
			"website":              FieldURL,
			"homepage":             FieldURL,
			"external links":       labelExternalLinks,
			"externallinks":        labelExternalLinks,
			"links":                labelExternalLinks,
			"same as":              labelExternalLinks,
			"external id":          labelExternalID,
			"externalid":           labelExternalID,
			"wikidata":             labelExternalID,
			"wikidata id":          labelExternalID,
			"dimension":            labelDimension,
			"research dimension":   labelDimension,
			"coverage dimension":   labelDimension,
			"type":                 labelTypeHint,
			"schema type":          labelTypeHint,
			"discovered via":       labelDiscoveredVia,
			"discoveredvia":        labelDiscoveredVia,
			"confidence":           "",
			"notes":                "",
			"note":                 "",
			"status":               "",
			"evidence":             "",
			"relevance":            "",
			"aliases":              "",
			"related entities":     "",
			"affiliation":          "",
			"country":              "",
			"organization":         "",
			"organisation":         "",
			"key points":           "",
			"significance":         "",
		},
	}
}

// normalizeLabel lower-cases a label and folds separators to single spaces.
func (p *Patterns) normalizeLabel(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	label = strings.NewReplacer("_", " ", "-", " ").Replace(label)
	return p.whitespace.ReplaceAllString(label, " ")
}

// lookupLabel resolves a raw label to its field key. The second result is
// false for labels the parser has never heard of.
func (p *Patterns) lookupLabel(label string) (string, bool) {
	key, ok := p.labels[p.normalizeLabel(label)]
	return key, ok
}

// splitLabel returns the label key and value of a "Label: value" line.
func (p *Patterns) splitLabel(line string) (key string, value string, ok bool) {
	m := p.labelLine.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	// "https://..." must not be read as a label named "https".
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(m[2])), "//") {
		return "", "", false
	}
	key, ok = p.lookupLabel(m[1])
	if !ok {
		return "", "", false
	}
	return key, p.cleanValue(m[2]), true
}

// cleanValue strips emphasis, wrapping quotes and trailing separators.
func (p *Patterns) cleanValue(v string) string {
	v = p.emphasis.Replace(v)
	v = strings.TrimSpace(v)
	v = strings.Trim(v, `"“”`)
	v = strings.TrimRight(v, " ;,")
	return strings.TrimSpace(v)
}

// Field returns the value of the first line labeled with one of labels.
// Labels match case-insensitively and may be decorated with bullets or
// emphasis. Missing fields return "".
func (p *Patterns) Field(body string, labels ...string) string {
	want := make(map[string]bool, len(labels))
	for _, l := range labels {
		want[p.normalizeLabel(l)] = true
	}
	for _, line := range strings.Split(body, "\n") {
		m := p.labelLine.FindStringSubmatch(line)
		if m == nil || !want[p.normalizeLabel(m[1])] {
			continue
		}
		if v := p.cleanValue(m[2]); v != "" {
			return v
		}
	}
	return ""
}

// URLs returns every http(s) URL in text in order of appearance.
func (p *Patterns) URLs(text string) []string {
	found := p.url.FindAllString(text, -1)
	out := make([]string, 0, len(found))
	for _, u := range found {
		u = strings.TrimRight(u, ".,;:!?*")
		if u != "" {
			out = append(out, u)
		}
	}
	return out
}

// SourceLine parses one citation line such as
//
//	- https://example.org/report: "Quoted excerpt"
//
// It returns false when the line carries no URL.
func (p *Patterns) SourceLine(line string) (common.Source, bool) {
	loc := p.url.FindStringIndex(line)
	if loc == nil {
		return common.Source{}, false
	}
	u := strings.TrimRight(line[loc[0]:loc[1]], ".,;:!?*")
	rest := strings.TrimSpace(line[loc[1]:])
	rest = strings.TrimLeft(rest, ":-–— )]")

	excerpt := ""
	if m := p.quoted.FindStringSubmatch(rest); m != nil {
		excerpt = strings.TrimSpace(m[1])
	} else if rest != "" {
		excerpt = p.cleanValue(rest)
	}
	if excerpt == "" {
		// "Title: url" style, the excerpt precedes the URL.
		before := strings.TrimSpace(line[:loc[0]])
		before = strings.TrimLeft(before, "-*+0123456789.) ")
		before = strings.TrimRight(before, ":-–— ")
		if m := p.quoted.FindStringSubmatch(before); m != nil {
			excerpt = strings.TrimSpace(m[1])
		} else if before != "" && !strings.EqualFold(before, "source") && !strings.EqualFold(before, "url") {
			excerpt = p.cleanValue(before)
		}
	}
	return common.Source{URL: u, Excerpt: excerpt}, true
}

// List splits a comma or semicolon separated value into trimmed items.
func (p *Patterns) List(value string) []string {
	parts := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ';' || r == '|'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = p.cleanValue(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// DateRange splits "2024-03-15 to 2024-03-17" style values. When value is
// not a range, start is value and end is "".
func (p *Patterns) DateRange(value string) (start string, end string) {
	value = strings.TrimSpace(value)
	// ISO dates contain hyphens; only split on a hyphen surrounded by spaces.
	if m := p.dateRange.FindStringSubmatch(value); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	return value, ""
}
