package taxonomy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const countriesJSON = `{
  "en:france": {
    "name": {"en": "France", "fr": "France"},
    "synonyms": {"fr": ["française", "français", "France métropolitaine"], "en": ["French"]}
  },
  "en:spain": {
    "name": {"en": "Spain", "fr": "Espagne"},
    "synonyms": {"fr": ["espagnole", "espagnol"]},
    "parents": ["en:europe"]
  }
}`

func loadFixture(t *testing.T) Taxonomy {
	t.Helper()
	taxo, err := Load(strings.NewReader(countriesJSON))
	require.NoError(t, err)
	return taxo
}

func TestLoad(t *testing.T) {
	taxo := loadFixture(t)
	require.Len(t, taxo, 2)

	node := taxo.Get("en:spain")
	require.NotNil(t, node)
	assert.Equal(t, "Espagne", node.Name("fr"))
	assert.Equal(t, []string{"en:europe"}, node.Parents)

	assert.Nil(t, taxo.Get("en:atlantis"))
	assert.Equal(t, "", taxo.Get("en:atlantis").Name("fr"))
}

func TestLoadInvalidJSON(t *testing.T) {
	_, err := Load(strings.NewReader(`{]`))
	assert.Error(t, err)
}

func TestResolveSynonym(t *testing.T) {
	taxo := loadFixture(t)

	tests := []struct {
		name     string
		value    string
		lang     string
		expected string
	}{
		{"canonical name", "France", "fr", "en:france"},
		{"synonym", "espagnole", "fr", "en:spain"},
		{"case insensitive", "FRANCE", "fr", "en:france"},
		{"accents ignored", "francaise", "fr", "en:france"},
		{"multi word synonym", "france métropolitaine", "fr", "en:france"},
		{"wrong language", "espagnole", "en", ""},
		{"unknown value", "germany", "fr", ""},
		{"empty value", "", "fr", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, taxo.ResolveSynonym(tt.value, tt.lang))
		})
	}
}

func TestAllSynonyms(t *testing.T) {
	taxo := loadFixture(t)

	synonyms := taxo.AllSynonyms("fr")
	assert.Contains(t, synonyms, "france")
	assert.Contains(t, synonyms, "espagnole")
	assert.Contains(t, synonyms, "france métropolitaine")

	seen := make(map[string]int)
	for _, s := range synonyms {
		seen[s]++
		assert.Equal(t, strings.ToLower(s), s)
	}
	for s, count := range seen {
		assert.Equal(t, 1, count, "duplicated synonym %q", s)
	}
}
