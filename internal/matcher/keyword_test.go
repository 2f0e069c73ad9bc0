package matcher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDictionary(t *testing.T) {
	input := `# brands
carrefour||Carrefour
leclerc||Leclerc||e[ .-]?leclerc

auchan||Auchan
`
	keywords, err := ParseDictionary(strings.NewReader(input), nil)
	require.NoError(t, err)
	require.Len(t, keywords, 3)

	assert.Equal(t, Keyword{Key: "carrefour", Name: "Carrefour"}, keywords[0])
	assert.Equal(t, Keyword{Key: "leclerc", Name: "Leclerc", Regex: "e[ .-]?leclerc"}, keywords[1])
	assert.Equal(t, Keyword{Key: "auchan", Name: "Auchan"}, keywords[2])
}

func TestParseDictionaryFilter(t *testing.T) {
	input := "a||A\nb||B\n"
	keywords, err := ParseDictionary(strings.NewReader(input), func(kw Keyword) bool {
		return kw.Key != "a"
	})
	require.NoError(t, err)
	require.Len(t, keywords, 1)
	assert.Equal(t, "b", keywords[0].Key)
}

func TestParseDictionaryMalformedLine(t *testing.T) {
	_, err := ParseDictionary(strings.NewReader("justonefield\n"), nil)
	assert.Error(t, err)

	_, err = ParseDictionary(strings.NewReader("a||b||c||d\n"), nil)
	assert.Error(t, err)
}

func TestKeywordProcessorLongestMatchWins(t *testing.T) {
	processor := NewKeywordProcessor([]Keyword{
		{Key: "en:gluten", Name: "gluten"},
		{Key: "en:no-gluten", Name: "sans gluten"},
	}, false)

	matches := processor.Extract("produit sans gluten garanti")
	require.Len(t, matches, 1)
	assert.Equal(t, "en:no-gluten", matches[0].Keyword.Key)
	assert.Equal(t, "sans gluten", "produit sans gluten garanti"[matches[0].Start:matches[0].End])
}

func TestKeywordProcessorWholeWordsOnly(t *testing.T) {
	processor := NewKeywordProcessor([]Keyword{
		{Key: "en:milk", Name: "lait"},
	}, false)

	assert.Empty(t, processor.Extract("laitue fraiche"))

	matches := processor.Extract("contient du lait.")
	require.Len(t, matches, 1)
	assert.Equal(t, "en:milk", matches[0].Keyword.Key)
}

func TestKeywordProcessorCaseFolding(t *testing.T) {
	processor := NewKeywordProcessor([]Keyword{
		{Key: "carrefour", Name: "Carrefour"},
	}, false)

	text := "CARREFOUR bio"
	matches := processor.Extract(text)
	require.Len(t, matches, 1)
	assert.Equal(t, "CARREFOUR", text[matches[0].Start:matches[0].End])
}

func TestKeywordProcessorCaseSensitive(t *testing.T) {
	processor := NewKeywordProcessor([]Keyword{
		{Key: "carrefour", Name: "Carrefour"},
	}, true)

	assert.Empty(t, processor.Extract("carrefour bio"))
	assert.Len(t, processor.Extract("Carrefour bio"), 1)
}

func TestKeywordProcessorMultipleOccurrences(t *testing.T) {
	processor := NewKeywordProcessor([]Keyword{
		{Key: "a", Name: "miel"},
	}, false)

	matches := processor.Extract("miel de lavande, miel de sapin")
	require.Len(t, matches, 2)
	assert.Less(t, matches[0].Start, matches[1].Start)
}

func TestFoldCaseWithOffsets(t *testing.T) {
	// Turkish dotted capital I folds to a two-rune sequence, shifting every
	// byte offset after it. Spans must still point into the original text.
	text := "İstanbul SPICE"
	folded, startMap, endMap := foldCaseWithOffsets(text)

	idx := strings.Index(folded, "spice")
	require.GreaterOrEqual(t, idx, 0)

	start := startMap[idx]
	end := endMap[idx+len("spice")]
	assert.Equal(t, "SPICE", text[start:end])
}
