package prediction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"robotoff/internal/ocr"
	"robotoff/pkg/models"
)

func TestParsePackaging(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []packagingElement
	}{
		{
			name:  "shape material recycling",
			input: "bouteille en plastique a recycler",
			expected: []packagingElement{{
				shapeTerm: "bouteille", shape: "en:bottle",
				materialTerm: "plastique", material: "en:plastic",
				recyclingTerm: "a recycler", recycling: "en:recycle",
			}},
		},
		{
			name:  "material without preposition",
			input: "pot verre",
			expected: []packagingElement{{
				shapeTerm: "pot", shape: "en:pot",
				materialTerm: "verre", material: "en:glass",
			}},
		},
		{
			name:  "two word material",
			input: "boite fer blanc",
			expected: []packagingElement{{
				shapeTerm: "boite", shape: "en:box",
				materialTerm: "fer blanc", material: "en:tinplate",
			}},
		},
		{
			name:  "multiple elements",
			input: "etui carton a recycler film plastique a jeter",
			expected: []packagingElement{
				{
					shapeTerm: "etui", shape: "en:sleeve",
					materialTerm: "carton", material: "en:cardboard",
					recyclingTerm: "a recycler", recycling: "en:recycle",
				},
				{
					shapeTerm: "film", shape: "en:film",
					materialTerm: "plastique", material: "en:plastic",
					recyclingTerm: "a jeter", recycling: "en:discard",
				},
			},
		},
		{
			name:     "no packaging vocabulary",
			input:    "liste des ingredients",
			expected: nil,
		},
		{
			name:  "punctuated statement",
			input: "Bouteille en plastique. Bocal en verre, couvercle métal.",
			expected: []packagingElement{
				{
					shapeTerm: "bouteille", shape: "en:bottle",
					materialTerm: "plastique", material: "en:plastic",
				},
				{
					shapeTerm: "bocal", shape: "en:jar",
					materialTerm: "verre", material: "en:glass",
				},
				{
					shapeTerm: "couvercle", shape: "en:lid",
					materialTerm: "metal", material: "en:metal",
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parsePackaging(normalizePackagingText(tt.input)))
		})
	}
}

func TestNormalizePackagingText(t *testing.T) {
	assert.Equal(t, "bouteille en plastique a recycler",
		normalizePackagingText("Bouteille  en plastique, à recycler."))
}

func TestFindPackaging(t *testing.T) {
	doc := ocr.FromText("Bouteille en plastique à recycler")

	predictions, err := FindPackaging(doc)
	require.NoError(t, err)
	require.Len(t, predictions, 1)

	p := predictions[0]
	assert.Equal(t, models.TypePackaging, p.Type)
	assert.Equal(t, "en:bottle", p.ValueTag)

	shape := p.Data["shape"].(map[string]interface{})
	assert.Equal(t, "en:bottle", shape["value_tag"])
	material := p.Data["material"].(map[string]interface{})
	assert.Equal(t, "en:plastic", material["value_tag"])
	recycling := p.Data["recycling"].(map[string]interface{})
	assert.Equal(t, "en:recycle", recycling["value_tag"])
}

func TestFindPackagingDropsBareGenericShape(t *testing.T) {
	predictions, err := FindPackaging(ocr.FromText("emballage pratique"))
	require.NoError(t, err)
	assert.Empty(t, predictions)

	predictions, err = FindPackaging(ocr.FromText("emballage carton à recycler"))
	require.NoError(t, err)
	require.Len(t, predictions, 1)
	assert.Equal(t, "en:packaging", predictions[0].ValueTag)
}
