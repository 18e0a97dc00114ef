package parse

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/osint/pkg/common"
	"github.com/kaptinlin/jsonrepair"
	"github.com/tidwall/gjson"
)

// maxEmbeddedCandidates bounds how many opening brackets the embedded
// strategy tries before giving up.
const maxEmbeddedCandidates = 64

type strategy struct {
	name Strategy
	fn   func(string) ([]Record, error)
}

// listKeys are the object keys that may hold a list of entity records.
var listKeys = []string{
	"entities",
	"discoveredEntities",
	"discovered_entities",
	"results",
	"items",
	"records",
	"data",
	"data.entities",
	"result.entities",
}

// kindListKeys hold per-kind lists; the key decides the kind.
var kindListKeys = map[string]common.Kind{
	"people":        common.KindPerson,
	"persons":       common.KindPerson,
	"organizations": common.KindOrganization,
	"organisations": common.KindOrganization,
	"topics":        common.KindTopic,
	"events":        common.KindEvent,
	"policies":      common.KindPolicy,
	"legislation":   common.KindPolicy,
}

var (
	kindKeys        = []string{"type", "kind", "@type", "entityType", "entity_type", "category"}
	nameKeys        = []string{"name", "title", "label", "entityName", "entity_name"}
	descriptionKeys = []string{"description", "summary", "desc", "about", "abstract"}
	sourceListKeys  = []string{"sources", "citations", "references", "evidence", "source"}
	sourceURLKeys   = []string{"url", "link", "href", "source", "uri"}
	excerptKeys     = []string{"excerpt", "quote", "snippet", "text", "title"}
	linkKeys        = []string{"externalLinks", "external_links", "sameAs", "same_as", "links"}
	externalIDKeys  = []string{"externalId", "external_id", "wikidataId", "wikidata_id", "wikidata", "qid"}
	viaKeys         = []string{"discoveredVia", "discovered_via", "provenance"}
	dimensionKeys   = []string{"dimension", "dimensionId", "dimension_id"}
	typeHintKeys    = []string{"typeHint", "type_hint", "subtype", "schemaType", "schema_type"}
)

var fieldKeys = map[string][]string{
	FieldJobTitle:       {"jobTitle", "job_title", "role", "position"},
	FieldURL:            {"url", "website", "homepage"},
	FieldStartDate:      {"startDate", "start_date", "start"},
	FieldEndDate:        {"endDate", "end_date", "end"},
	FieldLocation:       {"location", "venue", "place"},
	FieldOrganizer:      {"organizer", "organiser", "host"},
	FieldIdentifier:     {"identifier", "legislationIdentifier", "bill_number", "billNumber", "reference"},
	FieldEnactmentDate:  {"enactmentDate", "enactment_date", "dateEnacted", "legislationDate"},
	FieldEffectiveDate:  {"effectiveDate", "effective_date", "legislationDateVersion"},
	FieldExpirationDate: {"expirationDate", "expiration_date", "expires"},
	FieldJurisdiction:   {"jurisdiction", "legislationJurisdiction"},
}

func (p *Parser) jsonStrategies() []strategy {
	return []strategy{
		{StrategyDirect, p.parseDirect},
		{StrategyFenced, p.parseFenced},
		{StrategyEmbedded, p.parseEmbedded},
		{StrategyPermissive, p.parsePermissive},
	}
}

// ParseJSON runs the fallback strategies in order and returns the records of
// the first one that succeeds together with its name.
func (p *Parser) ParseJSON(payload string) ([]Record, Strategy, error) {
	var errs []string
	for _, s := range p.strategies {
		records, err := s.fn(payload)
		if err == nil {
			return records, s.name, nil
		}
		errs = append(errs, fmt.Sprintf("%s: %v", s.name, err))
	}
	return nil, StrategyNone, fmt.Errorf("%w (%s)", ErrNoRecords, strings.Join(errs, "; "))
}

// parseDirect reads the whole payload as JSON. A JSON string holding JSON is
// decoded once more.
func (p *Parser) parseDirect(payload string) ([]Record, error) {
	input := strings.TrimSpace(payload)
	if input == "" {
		return nil, ErrEmptyPayload
	}
	if json.Valid([]byte(input)) {
		if records, err := recordsFromJSON(input); err == nil {
			return records, nil
		}
	}

	var inner string
	if err := json.Unmarshal([]byte(input), &inner); err == nil {
		inner = strings.TrimSpace(inner)
		if json.Valid([]byte(inner)) {
			return recordsFromJSON(inner)
		}
	}
	return nil, ErrNotJSON
}

// parseFenced reads the first fenced code block that holds a record list.
func (p *Parser) parseFenced(payload string) ([]Record, error) {
	blocks := p.patterns.fenced.FindAllStringSubmatch(payload, -1)
	if len(blocks) == 0 {
		return nil, ErrNoFence
	}
	for _, b := range blocks {
		body := strings.TrimSpace(b[1])
		if !json.Valid([]byte(body)) {
			continue
		}
		if records, err := recordsFromJSON(body); err == nil {
			return records, nil
		}
	}
	return nil, ErrNoRecords
}

// parseEmbedded reads the first balanced {...} or [...] span that holds a
// record list. Brackets inside string literals are ignored.
func (p *Parser) parseEmbedded(payload string) ([]Record, error) {
	tried := 0
	for start := 0; start < len(payload) && tried < maxEmbeddedCandidates; start++ {
		c := payload[start]
		if c != '{' && c != '[' {
			continue
		}
		tried++
		end := balancedEnd(payload, start)
		if end < 0 {
			continue
		}
		span := payload[start : end+1]
		if !json.Valid([]byte(span)) {
			continue
		}
		if records, err := recordsFromJSON(span); err == nil {
			return records, nil
		}
	}
	return nil, ErrNoRecords
}

// parsePermissive repairs malformed JSON (single quotes, trailing commas,
// unquoted keys) starting at the first bracket of the payload.
func (p *Parser) parsePermissive(payload string) ([]Record, error) {
	input := payload
	if blocks := p.patterns.fenced.FindStringSubmatch(payload); blocks != nil {
		input = blocks[1]
	}
	idx := strings.IndexAny(input, "{[")
	if idx < 0 {
		return nil, ErrNotJSON
	}
	input = stripDuplicateLeadingBrace(input[idx:])

	repaired, err := jsonrepair.JSONRepair(input)
	if err != nil {
		return nil, fmt.Errorf("json repair failed: %w", err)
	}
	return recordsFromJSON(repaired)
}

func stripDuplicateLeadingBrace(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{") {
		rest := strings.TrimSpace(s[1:])
		if strings.HasPrefix(rest, "{") {
			return rest
		}
	}
	return s
}

// balancedEnd returns the index of the bracket closing the one at start, or
// -1 when the span never closes.
func balancedEnd(s string, start int) int {
	var (
		stack    []byte
		inString bool
		escaped  bool
	)
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return -1
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i
			}
		}
	}
	return -1
}

// recordsFromJSON finds a list of entity-like objects in raw and converts
// each object to a Record. It fails with ErrNoRecords when raw holds no such
// list.
func recordsFromJSON(raw string) ([]Record, error) {
	root := gjson.Parse(raw)

	if root.IsArray() {
		return recordsFromList(root, "", "")
	}
	if !root.IsObject() {
		return nil, ErrNoRecords
	}

	via := firstString(root, viaKeys...)
	for _, key := range listKeys {
		list := root.Get(key)
		if !list.IsArray() {
			continue
		}
		if records, err := recordsFromList(list, "", via); err == nil {
			return records, nil
		}
	}

	var records []Record
	root.ForEach(func(key, value gjson.Result) bool {
		kind, ok := kindListKeys[strings.ToLower(key.String())]
		if !ok || !value.IsArray() {
			return true
		}
		if recs, err := recordsFromList(value, string(kind), via); err == nil {
			records = append(records, recs...)
		}
		return true
	})
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	return records, nil
}

func recordsFromList(list gjson.Result, kindHint, via string) ([]Record, error) {
	var records []Record
	for _, item := range list.Array() {
		if !item.IsObject() {
			continue
		}
		records = append(records, recordFromObject(item, kindHint, via))
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	return records, nil
}

func recordFromObject(obj gjson.Result, kindHint, via string) Record {
	rec := Record{
		Kind:          firstString(obj, kindKeys...),
		Name:          firstString(obj, nameKeys...),
		Description:   firstString(obj, descriptionKeys...),
		Sources:       sourcesFromObject(obj),
		ExternalLinks: stringList(obj, linkKeys...),
		ExternalID:    firstString(obj, externalIDKeys...),
		DiscoveredVia: firstString(obj, viaKeys...),
		Dimension:     firstString(obj, dimensionKeys...),
		TypeHint:      firstString(obj, typeHintKeys...),
	}
	if rec.Kind == "" {
		rec.Kind = kindHint
	}
	if rec.DiscoveredVia == "" {
		rec.DiscoveredVia = via
	}
	// Vocabulary subtypes such as GovernmentOrganization carry their kind.
	if _, ok := common.ParseKind(rec.Kind); !ok {
		if kind, ok := common.KindForSchemaType(rec.Kind); ok {
			if rec.TypeHint == "" {
				rec.TypeHint = rec.Kind
			}
			rec.Kind = string(kind)
		}
	}

	for field, keys := range fieldKeys {
		rec.setField(field, firstString(obj, keys...))
	}
	if date := firstString(obj, "date", "dates"); date != "" {
		kind, _ := common.ParseKind(rec.Kind)
		switch kind {
		case common.KindEvent:
			rec.setField(FieldStartDate, date)
		case common.KindPolicy:
			rec.setField(FieldEnactmentDate, date)
		}
	}
	return rec
}

func sourcesFromObject(obj gjson.Result) []common.Source {
	sources := []common.Source{}
	for _, key := range sourceListKeys {
		v := obj.Get(key)
		if !v.Exists() {
			continue
		}
		items := []gjson.Result{v}
		if v.IsArray() {
			items = v.Array()
		}
		for _, item := range items {
			if src, ok := sourceFromValue(item); ok {
				sources = append(sources, src)
			}
		}
	}
	for _, key := range []string{"sourceUrl", "source_url"} {
		if u := obj.Get(key).String(); u != "" {
			sources = append(sources, common.Source{URL: strings.TrimSpace(u)})
		}
	}
	return sources
}

func sourceFromValue(v gjson.Result) (common.Source, bool) {
	switch {
	case v.IsObject():
		u := firstString(v, sourceURLKeys...)
		if u == "" {
			return common.Source{}, false
		}
		return common.Source{URL: u, Excerpt: firstString(v, excerptKeys...)}, true
	case v.Type == gjson.String:
		if s := strings.TrimSpace(v.String()); s != "" {
			if src, ok := defaultPatterns.SourceLine(s); ok {
				return src, true
			}
			return common.Source{URL: s}, true
		}
	}
	return common.Source{}, false
}

// firstString returns the first non-empty scalar found under keys. Numbers
// and booleans are rendered as text.
func firstString(obj gjson.Result, keys ...string) string {
	for _, key := range keys {
		v := obj.Get(gjsonEscape(key))
		if !v.Exists() || v.IsArray() || v.IsObject() || v.Type == gjson.Null {
			continue
		}
		if s := strings.TrimSpace(v.String()); s != "" {
			return s
		}
	}
	return ""
}

func stringList(obj gjson.Result, keys ...string) []string {
	var out []string
	for _, key := range keys {
		v := obj.Get(gjsonEscape(key))
		switch {
		case v.IsArray():
			for _, item := range v.Array() {
				s := strings.TrimSpace(item.String())
				if item.IsObject() {
					s = firstString(item, sourceURLKeys...)
				}
				if s != "" {
					out = append(out, s)
				}
			}
		case v.Type == gjson.String:
			out = append(out, defaultPatterns.List(v.String())...)
		}
		if len(out) > 0 {
			return out
		}
	}
	return out
}

// gjsonEscape escapes path metacharacters in a literal key such as "@type".
func gjsonEscape(key string) string {
	if !strings.ContainsAny(key, "@*?|#") {
		return key
	}
	var b strings.Builder
	for _, r := range key {
		if strings.ContainsRune("@*?|#.", r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
