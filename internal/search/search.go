// Package search runs read-only queries over document text and OCR
// blocks. Matching strategies are pluggable so the semantic stub can be
// swapped for a real backend without touching callers.
package search

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/review-cli/internal/ocr"
)

// Matcher decides whether a piece of text satisfies a query.
type Matcher interface {
	Name() string
	Match(text, query string) bool
}

// Exact is case-insensitive substring matching.
type Exact struct{}

func (Exact) Name() string { return "exact" }

func (Exact) Match(text, query string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(query))
}

// Fuzzy matches when the query's characters appear in order, not
// necessarily adjacent.
type Fuzzy struct{}

func (Fuzzy) Name() string { return "fuzzy" }

func (Fuzzy) Match(text, query string) bool {
	var b strings.Builder
	for _, r := range query {
		b.WriteString(regexp.QuoteMeta(string(r)))
		b.WriteString(".*?")
	}
	re, err := regexp.Compile("(?is)" + b.String())
	if err != nil {
		return false
	}
	return re.MatchString(text)
}

// Semantic is a stand-in for embedding-based search. Until a real
// backend is plugged in it behaves like Exact.
type Semantic struct{}

func (Semantic) Name() string { return "semantic" }

func (Semantic) Match(text, query string) bool {
	return Exact{}.Match(text, query)
}

// ByName resolves a matcher from its wire name.
func ByName(name string) (Matcher, error) {
	switch name {
	case "exact", "":
		return Exact{}, nil
	case "fuzzy":
		return Fuzzy{}, nil
	case "semantic":
		return Semantic{}, nil
	default:
		return nil, eris.Errorf("search: unknown match type %q", name)
	}
}

// Result is one hit, with enough position data to highlight it: a page
// and bounding box for OCR hits, a line number for text hits.
type Result struct {
	Page       int              `json:"page,omitempty"`
	Line       int              `json:"line,omitempty"`
	Text       string           `json:"text"`
	Box        *ocr.BoundingBox `json:"box,omitempty"`
	Confidence float64          `json:"confidence,omitempty"`
}

// Blocks searches OCR text blocks, returning hits with their page and
// normalized bounding box for overlay drawing.
func Blocks(blocks []ocr.Block, query string, m Matcher) []Result {
	var results []Result
	for _, b := range ocr.TextBlocks(blocks) {
		if !m.Match(b.Text, query) {
			continue
		}
		page := b.Page
		if page == 0 {
			page = 1
		}
		box := b.Geometry.BoundingBox
		results = append(results, Result{
			Page:       page,
			Text:       b.Text,
			Box:        &box,
			Confidence: b.Confidence,
		})
	}
	return results
}

// Lines searches plain text line by line (XML and other text documents),
// returning 1-based line numbers with trimmed content.
func Lines(text, query string, m Matcher) []Result {
	var results []Result
	for i, line := range strings.Split(text, "\n") {
		if !m.Match(line, query) {
			continue
		}
		results = append(results, Result{
			Line: i + 1,
			Text: strings.TrimSpace(line),
		})
	}
	return results
}
