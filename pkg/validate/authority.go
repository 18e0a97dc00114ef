package validate

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AuthorityFunc reports whether a source URL points at an authoritative
// (government or official) publisher.
type AuthorityFunc func(rawURL string) bool

// AuthorityRules lists host suffixes and exact domains treated as
// authoritative. Matching is case-insensitive and includes subdomains.
type AuthorityRules struct {
	Suffixes []string `yaml:"suffixes" json:"suffixes"`
	Domains  []string `yaml:"domains" json:"domains"`
}

type authorityFile struct {
	Authority AuthorityRules `yaml:"authority"`
}

// DefaultAuthorityRules returns the built-in government and
// intergovernmental heuristics.
func DefaultAuthorityRules() AuthorityRules {
	return AuthorityRules{
		Suffixes: []string{
			".gov",
			".gov.uk",
			".gov.au",
			".gc.ca",
			".gouv.fr",
			".bund.de",
			".admin.ch",
			".europa.eu",
			".int",
			".mil",
		},
		Domains: []string{
			"who.int",
			"un.org",
			"oecd.org",
			"worldbank.org",
			"imf.org",
			"legislation.gov.uk",
			"eur-lex.europa.eu",
		},
	}
}

// LoadAuthorityRules reads rules from a YAML file of the form
//
//	authority:
//	  suffixes: [".gov", ".europa.eu"]
//	  domains: ["who.int"]
//
// An empty path returns the defaults.
func LoadAuthorityRules(path string) (AuthorityRules, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultAuthorityRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return AuthorityRules{}, fmt.Errorf("failed to read authority rules: %w", err)
	}
	return ParseAuthorityRules(data)
}

// ParseAuthorityRules decodes YAML authority rules. A document without any
// rule falls back to the defaults.
func ParseAuthorityRules(data []byte) (AuthorityRules, error) {
	var file authorityFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return AuthorityRules{}, fmt.Errorf("failed to parse authority rules: %w", err)
	}
	if len(file.Authority.Suffixes) == 0 && len(file.Authority.Domains) == 0 {
		return DefaultAuthorityRules(), nil
	}
	return file.Authority, nil
}

// Predicate compiles the rules into an AuthorityFunc.
func (r AuthorityRules) Predicate() AuthorityFunc {
	suffixes := make([]string, 0, len(r.Suffixes))
	for _, s := range r.Suffixes {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if !strings.HasPrefix(s, ".") {
			s = "." + s
		}
		suffixes = append(suffixes, s)
	}
	domains := make(map[string]struct{}, len(r.Domains))
	for _, d := range r.Domains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			domains[d] = struct{}{}
		}
	}

	return func(rawURL string) bool {
		host := hostOf(rawURL)
		if host == "" {
			return false
		}
		for _, s := range suffixes {
			if strings.HasSuffix(host, s) {
				return true
			}
		}
		for h := host; h != ""; {
			if _, ok := domains[h]; ok {
				return true
			}
			i := strings.IndexByte(h, '.')
			if i < 0 {
				break
			}
			h = h[i+1:]
		}
		return false
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimSuffix(host, ".")
}
