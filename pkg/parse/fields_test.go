package parse

import (
	"testing"

	"github.com/OFFIS-RIT/osint/pkg/common"
)

func TestPatternsField(t *testing.T) {
	body := `- **Job Title:** Chief Scientist
Location:   Geneva
location: ignored second value`

	p := DefaultPatterns()
	tests := []struct {
		labels []string
		want   string
	}{
		{[]string{"job title"}, "Chief Scientist"},
		{[]string{"Location"}, "Geneva"},
		{[]string{"missing", "LOCATION"}, "Geneva"},
		{[]string{"jurisdiction"}, ""},
	}
	for _, tc := range tests {
		if got := p.Field(body, tc.labels...); got != tc.want {
			t.Fatalf("Field(%v) = %q, want %q", tc.labels, got, tc.want)
		}
	}
}

func TestPatternsSourceLine(t *testing.T) {
	p := DefaultPatterns()
	tests := []struct {
		line   string
		want   common.Source
		wantOK bool
	}{
		{`- https://who.int/news: "WHO statement"`, common.Source{URL: "https://who.int/news", Excerpt: "WHO statement"}, true},
		{`- https://example.org/a.`, common.Source{URL: "https://example.org/a"}, true},
		{`* Annual report: https://example.org/report`, common.Source{URL: "https://example.org/report", Excerpt: "Annual report"}, true},
		{`- no link here`, common.Source{}, false},
	}
	for _, tc := range tests {
		got, ok := p.SourceLine(tc.line)
		if ok != tc.wantOK || got != tc.want {
			t.Fatalf("SourceLine(%q) = (%+v, %v), want (%+v, %v)", tc.line, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestPatternsDateRange(t *testing.T) {
	p := DefaultPatterns()
	tests := []struct {
		in    string
		start string
		end   string
	}{
		{"2024-03-15", "2024-03-15", ""},
		{"2024-03-15 to 2024-03-17", "2024-03-15", "2024-03-17"},
		{"March 15, 2024 - March 17, 2024", "March 15, 2024", "March 17, 2024"},
	}
	for _, tc := range tests {
		start, end := p.DateRange(tc.in)
		if start != tc.start || end != tc.end {
			t.Fatalf("DateRange(%q) = (%q, %q), want (%q, %q)", tc.in, start, end, tc.start, tc.end)
		}
	}
}

func TestPatternsList(t *testing.T) {
	got := DefaultPatterns().List(`https://a.example, "https://b.example"; ;`)
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("unexpected list %v", got)
	}
}
