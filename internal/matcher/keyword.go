package matcher

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
)

// Keyword is one entry of a curated dictionary: a canonical key, the surface
// form to search for, and an optional regex override used by extractors that
// compile a single alternation instead of running the scanner.
type Keyword struct {
	Key   string
	Name  string
	Regex string
}

// ParseDictionary reads `key||display_name` (or `key||display_name||regex`)
// lines. Blank lines and lines starting with '#' are skipped. keep, when
// non-nil, filters entries after parsing.
func ParseDictionary(r io.Reader, keep func(Keyword) bool) ([]Keyword, error) {
	var keywords []Keyword
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		parts := strings.Split(raw, "||")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("matcher: dictionary line %d: expected 2 or 3 fields, got %d", line, len(parts))
		}
		kw := Keyword{Key: parts[0], Name: parts[1]}
		if len(parts) == 3 {
			kw.Regex = parts[2]
		}
		if keep != nil && !keep(kw) {
			continue
		}
		keywords = append(keywords, kw)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("matcher: reading dictionary: %w", err)
	}
	return keywords, nil
}

// KeywordMatch is one dictionary hit with its span in the original text.
type KeywordMatch struct {
	Keyword Keyword
	Start   int
	End     int
}

// KeywordProcessor scans text for a set of keywords, resolving overlapping
// candidates to the single longest match at each position and returning
// matches in order of occurrence.
//
// When case-insensitive, the scan runs over a case-folded copy of the input
// while reported spans always refer to the original text, even when folding
// changes byte lengths (e.g. Turkish İ folds to a two-rune sequence).
type KeywordProcessor struct {
	keywords      []Keyword
	caseSensitive bool
	ac            ahocorasick.AhoCorasick
}

// NewKeywordProcessor builds a longest-match scanner over the given keywords.
func NewKeywordProcessor(keywords []Keyword, caseSensitive bool) *KeywordProcessor {
	patterns := make([]string, len(keywords))
	for i, kw := range keywords {
		if caseSensitive {
			patterns[i] = kw.Name
		} else {
			patterns[i] = foldCase(kw.Name)
		}
	}

	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		MatchOnlyWholeWords: true,
		MatchKind:           ahocorasick.LeftMostLongestMatch,
		DFA:                 true,
	})

	return &KeywordProcessor{
		keywords:      keywords,
		caseSensitive: caseSensitive,
		ac:            builder.Build(patterns),
	}
}

// Extract returns every keyword occurrence in text, left to right.
func (p *KeywordProcessor) Extract(text string) []KeywordMatch {
	if text == "" || len(p.keywords) == 0 {
		return nil
	}

	haystack := text
	var startMap, endMap []int
	if !p.caseSensitive {
		haystack, startMap, endMap = foldCaseWithOffsets(text)
	}

	var matches []KeywordMatch
	for _, m := range p.ac.FindAll(haystack) {
		start, end := m.Start(), m.End()
		if startMap != nil {
			start = startMap[start]
			end = endMap[end]
		}
		matches = append(matches, KeywordMatch{
			Keyword: p.keywords[m.Pattern()],
			Start:   start,
			End:     end,
		})
	}
	return matches
}

// foldCase lowercases text rune by rune, matching the fold applied to the
// haystack so patterns and text fold identically.
func foldCase(text string) string {
	return strings.ToLower(text)
}

// foldCaseWithOffsets lowercases text and returns, for every byte position of
// the folded string, the corresponding start and end offsets in the original
// text. Folding may change a rune's byte length, so offsets are tracked per
// source rune: every folded byte produced by a rune maps back to that rune's
// original span.
func foldCaseWithOffsets(text string) (string, []int, []int) {
	var b strings.Builder
	b.Grow(len(text))

	startMap := make([]int, 0, len(text)+1)
	endMap := make([]int, 0, len(text)+1)
	endMap = append(endMap, 0)

	for pos, r := range text {
		folded := strings.ToLower(string(r))
		runeEnd := pos + utf8.RuneLen(r)
		for i := 0; i < len(folded); i++ {
			startMap = append(startMap, pos)
			endMap = append(endMap, runeEnd)
		}
		b.WriteString(folded)
	}
	startMap = append(startMap, len(text))

	return b.String(), startMap, endMap
}
