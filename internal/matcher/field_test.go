package matcher

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"robotoff/internal/ocr"
)

func TestFieldMatcherFindAllString(t *testing.T) {
	m := FieldMatcher{
		Regex: regexp.MustCompile(`(\d+) ?(g|kg)`),
	}

	matches := m.FindAllString("poids 500 g puis 2kg")
	require.Len(t, matches, 2)

	assert.Equal(t, []string{"500 g", "500", "g"}, matches[0].Groups)
	assert.Equal(t, 6, matches[0].Start)
	assert.Equal(t, 11, matches[0].End)

	assert.Equal(t, []string{"2kg", "2", "kg"}, matches[1].Groups)
	assert.Equal(t, "2kg", "poids 500 g puis 2kg"[matches[1].Start:matches[1].End])
}

func TestFieldMatcherOptionalGroupIsEmpty(t *testing.T) {
	m := FieldMatcher{
		Regex: regexp.MustCompile(`emb(\d+)([a-z]{1,2})?`),
	}

	matches := m.FindAllString("emb12345")
	require.Len(t, matches, 1)
	assert.Equal(t, []string{"emb12345", "12345", ""}, matches[0].Groups)
}

func TestFieldMatcherFindAllUsesDocumentView(t *testing.T) {
	doc := ocr.FromText("Poids NET 500g")

	upper := FieldMatcher{
		Regex: regexp.MustCompile(`net (\d+g)`),
		Field: ocr.FieldFullText,
	}
	assert.Empty(t, upper.FindAll(doc))

	lower := FieldMatcher{
		Regex:     regexp.MustCompile(`net (\d+g)`),
		Field:     ocr.FieldFullText,
		Lowercase: true,
	}
	matches := lower.FindAll(doc)
	require.Len(t, matches, 1)
	assert.Equal(t, "500g", matches[0].Groups[1])
}

func TestFieldMatcherEmptyDocument(t *testing.T) {
	doc := ocr.FromText("")
	m := FieldMatcher{
		Regex: regexp.MustCompile(`.+`),
		Field: ocr.FieldFullTextContiguous,
	}
	assert.Nil(t, m.FindAll(doc))
}
