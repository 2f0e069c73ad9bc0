package prediction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"robotoff/internal/ocr"
	"robotoff/pkg/models"
)

func TestFindNutrientValues(t *testing.T) {
	doc := ocr.FromText("Valeurs nutritionnelles\nÉnergie: 1046 kJ\nGlucides 30 g\nSel 0,9 g")

	predictions, err := FindNutrientValues(doc)
	require.NoError(t, err)

	byNutrient := make(map[string]models.Prediction)
	for _, p := range predictions {
		assert.Equal(t, models.TypeNutrient, p.Type)
		byNutrient[p.Data["nutrient"].(string)] = p
	}

	energy, ok := byNutrient["energy"]
	require.True(t, ok)
	assert.Equal(t, "1046 kj", energy.Value)
	assert.Equal(t, "1046", energy.Data["value"])
	assert.Equal(t, "kj", energy.Data["unit"])

	carbs, ok := byNutrient["carbohydrate"]
	require.True(t, ok)
	assert.Equal(t, "30", carbs.Data["value"])

	salt, ok := byNutrient["salt"]
	require.True(t, ok)
	assert.Equal(t, "0.9", salt.Data["value"])
}

func TestFindNutrientValuesNoValue(t *testing.T) {
	predictions, err := FindNutrientValues(ocr.FromText("énergie et vitalité"))
	require.NoError(t, err)
	assert.Empty(t, predictions)
}

func TestFindNutrientMentions(t *testing.T) {
	doc := ocr.FromText("valeurs nutritionnelles énergie glucides sel")

	predictions, err := FindNutrientMentions(doc)
	require.NoError(t, err)
	require.Len(t, predictions, 1)

	p := predictions[0]
	assert.Equal(t, models.TypeNutrientMention, p.Type)

	mentions := p.Data["mentions"].(map[string][]map[string]interface{})
	assert.Contains(t, mentions, "energy")
	assert.Contains(t, mentions, "carbohydrate")
	assert.Contains(t, mentions, "salt")
	assert.Contains(t, mentions, "nutrition_values")

	energyMention := mentions["energy"][0]
	assert.Equal(t, "énergie", energyMention["raw"])
	assert.Equal(t, []string{"fr"}, energyMention["languages"])
}

func TestFindNutrientMentionsEmpty(t *testing.T) {
	predictions, err := FindNutrientMentions(ocr.FromText("belle photo du produit"))
	require.NoError(t, err)
	assert.Empty(t, predictions)
}

func TestMentionLanguages(t *testing.T) {
	assert.Equal(t, []string{"fr"}, mentionLanguages("fr_0"))
	assert.Equal(t, []string{"fr", "en"}, mentionLanguages("fr_en_2"))
	assert.Nil(t, mentionLanguages("malformed"))
}
