// Package prediction contains the per-category extractors that mine OCR
// documents for structured facts: packager codes, expiration dates, product
// weights, nutrient mentions and values, labels, brands, stores, traces,
// locations, ingredient origins, packaging elements and image-level signals.
//
// Extractors are pure functions from an immutable *ocr.Document to a list of
// models.Prediction records. They share no mutable state beyond the lazily
// loaded read-only dictionaries, so running many extractions concurrently is
// safe once the dictionaries are warm.
package prediction

import (
	"fmt"
	"sort"

	"robotoff/internal/ocr"
	"robotoff/pkg/models"
)

// ExtractorFunc derives predictions of one category from a document. A
// document with no matching text yields an empty list, never an error;
// errors are reserved for resource loading and malformed page trees.
type ExtractorFunc func(doc *ocr.Document) ([]models.Prediction, error)

// Extractors maps every supported prediction type to its extractor.
var Extractors = map[models.PredictionType]ExtractorFunc{
	models.TypePackagerCode:     FindPackagerCodes,
	models.TypeExpirationDate:   FindExpirationDates,
	models.TypeProductWeight:    FindProductWeights,
	models.TypeNutrient:         FindNutrientValues,
	models.TypeNutrientMention:  FindNutrientMentions,
	models.TypeLabel:            FindLabels,
	models.TypeBrand:            FindBrands,
	models.TypeStore:            FindStores,
	models.TypeTrace:            FindTraces,
	models.TypeLocation:         FindLocations,
	models.TypeOrigin:           FindOrigins,
	models.TypePackaging:        FindPackaging,
	models.TypeImageFlag:        FindImageFlags,
	models.TypeImageOrientation: FindImageOrientation,
	models.TypeImageLang:        FindImageLang,
}

// Extract runs the extractor registered for the given type.
// An unknown type is a programming error: the set of types is closed.
func Extract(predictionType models.PredictionType, doc *ocr.Document) ([]models.Prediction, error) {
	extractor, ok := Extractors[predictionType]
	if !ok {
		return nil, fmt.Errorf("prediction: no extractor for type %q", predictionType)
	}
	return extractor(doc)
}

// ExtractAll runs every registered extractor (or only the listed types) and
// concatenates the results. Duplicate predictions from independently firing
// signals are preserved; deduplication belongs to the importer.
func ExtractAll(doc *ocr.Document, types ...models.PredictionType) ([]models.Prediction, error) {
	if len(types) == 0 {
		types = make([]models.PredictionType, 0, len(Extractors))
		for t := range Extractors {
			types = append(types, t)
		}
		sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	}

	var all []models.Prediction
	for _, t := range types {
		predictions, err := Extract(t, doc)
		if err != nil {
			return nil, fmt.Errorf("prediction: extracting %s: %w", t, err)
		}
		all = append(all, predictions...)
	}
	return all, nil
}
