package prediction

import (
	"robotoff/internal/matcher"
	"robotoff/internal/ocr"
	"robotoff/internal/resource"
	"robotoff/pkg/models"
)

const brandVersion = "1.0"

var brandDictionaryStore = resource.NewStore(func() (*matcher.KeywordProcessor, error) {
	keywords, err := resource.LoadDictionary("brands.txt", nil)
	if err != nil {
		return nil, err
	}
	return matcher.NewKeywordProcessor(keywords, false), nil
})

// brandLogos maps Vision logo descriptions to brand tags.
var brandLogos = map[string]string{
	"Nestlé":    "nestle",
	"Danone":    "danone",
	"Carrefour": "carrefour",
	"Lindt":     "lindt",
	"Barilla":   "barilla",
	"Bonduelle": "bonduelle",
	"Ferrero":   "ferrero",
	"Kellogg's": "kellogg-s",
}

const brandLogoMinScore = 0.9

// FindBrands matches the curated brand list against the document text and
// layers detected brand logos on top. Both signals contribute independently.
func FindBrands(doc *ocr.Document) ([]models.Prediction, error) {
	var predictions []models.Prediction

	processor, err := brandDictionaryStore.Get()
	if err != nil {
		return nil, err
	}
	content := doc.GetText(ocr.FieldFullTextContiguous, true)
	for _, m := range processor.Extract(content) {
		predictions = append(predictions, models.Prediction{
			Type:     models.TypeBrand,
			Value:    m.Keyword.Name,
			ValueTag: m.Keyword.Key,
			Data: map[string]interface{}{
				"raw":  content[m.Start:m.End],
				"span": []int{m.Start, m.End},
			},
			Predictor:        "flashtext",
			PredictorVersion: brandVersion,
		})
	}

	for _, logo := range doc.LogoAnnotations() {
		tag, ok := brandLogos[logo.Description]
		if !ok || logo.Score < brandLogoMinScore {
			continue
		}
		predictions = append(predictions, models.Prediction{
			Type:       models.TypeBrand,
			Value:      logo.Description,
			ValueTag:   tag,
			Confidence: logo.Score,
			Data: map[string]interface{}{
				"logo_description": logo.Description,
			},
			Predictor:        "logo",
			PredictorVersion: brandVersion,
		})
	}

	return predictions, nil
}
