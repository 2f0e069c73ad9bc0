// Package matcher provides the two matching primitives of the extraction
// engine: declarative regex descriptors bound to a document text view, and a
// longest-match multi-keyword scanner for curated dictionaries.
package matcher

import (
	"regexp"

	"robotoff/internal/ocr"
)

// ProcessFunc turns the capture groups of a regex match into a canonical
// value. groups[0] is the full match. Returning ok=false rejects the match:
// it parsed syntactically but is semantically invalid, and is dropped rather
// than surfaced as a low-confidence prediction.
type ProcessFunc func(groups []string) (string, bool)

// FieldMatcher is a pure descriptor pairing a compiled pattern with the text
// view it searches. It never mutates the document; several matchers may match
// the same substring and the owning extractor decides how to merge them.
type FieldMatcher struct {
	// Regex is the compiled pattern.
	Regex *regexp.Regexp

	// Field selects the document text view to search.
	Field ocr.TextField

	// Lowercase requests the case-folded variant of the view.
	Lowercase bool

	// Process optionally post-processes a match into a canonical value.
	Process ProcessFunc

	// Priority ranks competing matchers; lower wins. Zero means unranked.
	Priority int

	// Notify flags resulting predictions for external moderation.
	Notify bool
}

// Match is one regex hit: the capture groups plus the byte span of the full
// match within the searched text.
type Match struct {
	Groups []string
	Start  int
	End    int
}

// Text returns the document view this matcher searches, honoring the
// fallback rules of the document (structured text absent -> raw annotation
// string -> empty string).
func (m FieldMatcher) Text(doc *ocr.Document) string {
	return doc.GetText(m.Field, m.Lowercase)
}

// FindAll runs the matcher against the document and returns every match in
// order of occurrence. An empty view yields no matches, never an error.
func (m FieldMatcher) FindAll(doc *ocr.Document) []Match {
	text := m.Text(doc)
	if text == "" {
		return nil
	}
	return m.FindAllString(text)
}

// FindAllString runs the matcher against an explicit string.
func (m FieldMatcher) FindAllString(text string) []Match {
	var matches []Match
	for _, span := range m.Regex.FindAllStringSubmatchIndex(text, -1) {
		groups := make([]string, 0, len(span)/2)
		for i := 0; i < len(span); i += 2 {
			if span[i] < 0 {
				groups = append(groups, "")
				continue
			}
			groups = append(groups, text[span[i]:span[i+1]])
		}
		matches = append(matches, Match{
			Groups: groups,
			Start:  span[0],
			End:    span[1],
		})
	}
	return matches
}
