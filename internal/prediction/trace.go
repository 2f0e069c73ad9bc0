package prediction

import (
	"regexp"

	"robotoff/internal/matcher"
	"robotoff/internal/ocr"
	"robotoff/internal/resource"
	"robotoff/pkg/models"
)

const traceVersion = "1.0"

// tracesMatcher finds a "may contain traces of ..." statement and captures
// the clause after it, up to the next sentence boundary.
var tracesMatcher = matcher.FieldMatcher{
	Regex:     regexp.MustCompile(`(?:possibilit[ée] de traces|traces? [ée]ventuelles? d[e']|traces? possibles? d[e']|peut contenir des traces d[e']|peut contenir|may contain traces of|may contain|kann spuren von)\s?:?\s?([^.]{0,150})`),
	Field:     ocr.FieldFullTextContiguous,
	Lowercase: true,
}

var traceAllergenStore = resource.NewStore(func() (*matcher.KeywordProcessor, error) {
	keywords, err := resource.LoadDictionary("traces.txt", nil)
	if err != nil {
		return nil, err
	}
	return matcher.NewKeywordProcessor(keywords, false), nil
})

// FindTraces locates trace-allergen statements: a trigger phrase followed by
// a clause scanned against the allergen dictionary. One prediction per
// allergen found in the clause.
func FindTraces(doc *ocr.Document) ([]models.Prediction, error) {
	processor, err := traceAllergenStore.Get()
	if err != nil {
		return nil, err
	}

	var predictions []models.Prediction
	for _, m := range tracesMatcher.FindAll(doc) {
		clause := m.Groups[1]
		for _, km := range processor.Extract(clause) {
			predictions = append(predictions, models.Prediction{
				Type:     models.TypeTrace,
				ValueTag: km.Keyword.Key,
				Data: map[string]interface{}{
					"raw":     clause[km.Start:km.End],
					"extract": m.Groups[0],
				},
				Predictor:        "regex",
				PredictorVersion: traceVersion,
			})
		}
	}
	return predictions, nil
}
