// Package search implements directory search: shorthand query expansion
// followed by substring matching over a profile's text fields. Ratings play
// no part in search relevance.
package search

import (
	"fmt"
	"strings"

	"github.com/dvhs/alumnirank/internal/models"
)

// expansions maps common shorthand to the terms users actually mean. A
// query containing a key gets the value's words appended before matching.
var expansions = map[string]string{
	"yc":                 "y combinator",
	"ai":                 "artificial intelligence machine learning",
	"ml":                 "machine learning artificial intelligence",
	"space tech":         "space aerospace rocket nasa spacex",
	"fintech":            "finance financial technology",
	"startup":            "startup entrepreneur founder",
	"faang":              "facebook amazon apple netflix google meta",
	"big tech":           "google apple microsoft amazon meta",
	"consulting":         "consultant consulting mckinsey bcg bain",
	"investment banking": "investment bank goldman sachs morgan stanley",
	"venture capital":    "vc venture capital investor",
	"software engineer":  "software engineer developer programmer",
	"data scientist":     "data scientist analytics machine learning",
	"product manager":    "product manager pm product",
	"quant":              "quantitative finance trading algorithm",
}

// ExpandQuery lowercases and tokenizes the query, appending expansion terms
// for any shorthand it contains. The result is deduplicated and ordered:
// original tokens first, expansions after.
func ExpandQuery(query string) []string {
	lower := strings.ToLower(strings.TrimSpace(query))
	if lower == "" {
		return nil
	}

	var terms []string
	seen := make(map[string]struct{})
	add := func(tok string) {
		if tok == "" {
			return
		}
		if _, ok := seen[tok]; ok {
			return
		}
		seen[tok] = struct{}{}
		terms = append(terms, tok)
	}

	for _, tok := range strings.Fields(lower) {
		add(tok)
	}
	for key, value := range expansions {
		if strings.Contains(lower, key) {
			for _, tok := range strings.Fields(value) {
				add(tok)
			}
		}
	}
	return terms
}

// Match scores a profile against the expanded terms. The score is the
// fraction of terms found in any text field; ok is false when nothing
// matched. The snippet summarizes the strongest profile facts, mirroring
// what the result card shows.
func Match(p models.Profile, terms []string) (score float64, snippet string, ok bool) {
	if len(terms) == 0 {
		return 0, "", false
	}

	haystack := strings.ToLower(strings.Join(textFields(p), " "))
	matched := 0
	for _, term := range terms {
		if strings.Contains(haystack, term) {
			matched++
		}
	}
	if matched == 0 {
		return 0, "", false
	}
	return float64(matched) / float64(len(terms)), buildSnippet(p), true
}

func textFields(p models.Profile) []string {
	fields := []string{p.Name, p.Location, p.HighSchool, p.ClassOf}
	for _, c := range p.Colleges {
		fields = append(fields, c.Name, c.Degree)
	}
	for _, e := range p.Experiences {
		fields = append(fields, e.Company, e.Role)
	}
	return fields
}

func buildSnippet(p models.Profile) string {
	var parts []string
	for _, e := range p.Experiences {
		if e.Company == "" {
			continue
		}
		if e.Role != "" {
			parts = append(parts, fmt.Sprintf("%s at %s", e.Role, e.Company))
		} else {
			parts = append(parts, e.Company)
		}
		break
	}
	for _, c := range p.Colleges {
		if c.Name == "" {
			continue
		}
		if c.Degree != "" {
			parts = append(parts, fmt.Sprintf("studied %s at %s", c.Degree, c.Name))
		} else {
			parts = append(parts, fmt.Sprintf("studied at %s", c.Name))
		}
		break
	}
	if len(parts) == 0 {
		return p.Name
	}
	return strings.Join(parts, ", ")
}
