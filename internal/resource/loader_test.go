package resource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"robotoff/internal/matcher"
)

func TestLoadDictionaryEmbedded(t *testing.T) {
	keywords, err := LoadDictionary("brands.txt", nil)
	require.NoError(t, err)
	require.NotEmpty(t, keywords)

	for _, kw := range keywords {
		assert.NotEmpty(t, kw.Key)
		assert.NotEmpty(t, kw.Name)
	}
}

func TestLoadJSONEmbedded(t *testing.T) {
	var countries map[string]struct {
		Names map[string]string `json:"name"`
	}
	err := LoadJSON("taxonomy_countries.json", &countries)
	require.NoError(t, err)
	assert.Contains(t, countries, "en:france")
}

func TestLoadGzippedJSONEmbedded(t *testing.T) {
	var cities []struct {
		Name       string `json:"name"`
		PostalCode string `json:"postal_code"`
	}
	err := LoadGzippedJSON("fr_cities.json.gz", &cities)
	require.NoError(t, err)
	assert.NotEmpty(t, cities)
}

func TestDataDirOverridesEmbedded(t *testing.T) {
	dir := t.TempDir()
	override := "zz-test||ZZ Test\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "brands.txt"), []byte(override), 0644))

	SetDataDir(dir)
	t.Cleanup(func() { SetDataDir("") })

	keywords, err := LoadDictionary("brands.txt", nil)
	require.NoError(t, err)
	require.Len(t, keywords, 1)
	assert.Equal(t, matcher.Keyword{Key: "zz-test", Name: "ZZ Test"}, keywords[0])

	// Files absent from the override directory still resolve embedded.
	stores, err := LoadDictionary("stores.txt", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, stores)
}

func TestOpenUnknownFile(t *testing.T) {
	_, err := Open("does-not-exist.txt")
	assert.Error(t, err)
}
