package prediction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"robotoff/internal/ocr"
	"robotoff/pkg/models"
)

func labelTags(t *testing.T, doc *ocr.Document) []string {
	t.Helper()
	predictions, err := FindLabels(doc)
	require.NoError(t, err)
	var tags []string
	for _, p := range predictions {
		assert.Equal(t, models.TypeLabel, p.Type)
		tags = append(tags, p.ValueTag)
	}
	return tags
}

func TestFindLabelsRegex(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"organic french", "issu de l'agriculture biologique", "en:organic"},
		{"gluten free", "produit garanti sans gluten", "en:no-gluten"},
		{"gluten free english", "gluten-free recipe", "en:no-gluten"},
		{"vegan", "100% végétal", "en:vegan"},
		{"pdo", "appellation d'origine protégée", "en:pdo"},
		{"made in france", "fabriqué en france", "en:made-in-france"},
		{"no added sugar", "sans sucres ajoutés", "en:no-added-sugar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tags := labelTags(t, ocr.FromText(tt.input))
			assert.Contains(t, tags, tt.expected)
		})
	}
}

func TestFindLabelsEsEco(t *testing.T) {
	tags := labelTags(t, ocr.FromText("certificado ES-ECO-021-AN"))
	assert.Contains(t, tags, "en:es-eco-021-an")
}

func TestFindLabelsDictionary(t *testing.T) {
	doc := ocr.FromText("poisson certifié MSC pêche durable")

	predictions, err := FindLabels(doc)
	require.NoError(t, err)
	require.Len(t, predictions, 1)
	assert.Equal(t, "en:sustainable-seafood-msc", predictions[0].ValueTag)
	assert.Equal(t, "flashtext", predictions[0].Predictor)
}

func TestFindLabelsLogo(t *testing.T) {
	doc, err := ocr.FromJSON([]byte(`{"responses": [{
		"logoAnnotations": [
			{"description": "Fairtrade", "score": 0.95},
			{"description": "EU Organic", "score": 0.5},
			{"description": "Unrelated Brand", "score": 0.99}
		]
	}]}`))
	require.NoError(t, err)

	predictions, err := FindLabels(doc)
	require.NoError(t, err)
	require.Len(t, predictions, 1)

	p := predictions[0]
	assert.Equal(t, "en:fair-trade", p.ValueTag)
	assert.Equal(t, "logo", p.Predictor)
	assert.Equal(t, 0.95, p.Confidence)
}

func TestFindLabelsNoMatch(t *testing.T) {
	assert.Empty(t, labelTags(t, ocr.FromText("liste des ingrédients")))
}
