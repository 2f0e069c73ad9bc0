package prediction

import (
	"sort"

	"robotoff/internal/ocr"
	"robotoff/pkg/models"
)

const imageVersion = "1.0"

// Safe-search categories that flag an image for moderation when their
// likelihood reaches LIKELY.
var flaggedSafeSearchCategories = []struct {
	name       string
	likelihood func(*ocr.SafeSearchAnnotation) ocr.Likelihood
}{
	{"adult", func(s *ocr.SafeSearchAnnotation) ocr.Likelihood { return s.Adult }},
	{"violence", func(s *ocr.SafeSearchAnnotation) ocr.Likelihood { return s.Violence }},
}

// Label annotations that flag an image as likely showing people rather than
// a product.
var flaggedLabelDescriptions = map[string]struct{}{
	"Face":   {},
	"Head":   {},
	"Selfie": {},
	"Child":  {},
	"Baby":   {},
	"Human":  {},
}

const (
	faceDetectionMinConfidence = 0.6
	flaggedLabelMinScore       = 0.6
)

// FindImageFlags derives moderation flags from safe-search likelihoods,
// face detections and image-level labels.
func FindImageFlags(doc *ocr.Document) ([]models.Prediction, error) {
	var predictions []models.Prediction

	if safeSearch := doc.SafeSearch(); safeSearch != nil {
		for _, category := range flaggedSafeSearchCategories {
			likelihood := category.likelihood(safeSearch)
			if !likelihood.AtLeast(ocr.LikelihoodLikely) {
				continue
			}
			predictions = append(predictions, models.Prediction{
				Type: models.TypeImageFlag,
				Data: map[string]interface{}{
					"type":       "safe_search",
					"label":      category.name,
					"likelihood": string(likelihood),
				},
				Predictor:        "safe_search",
				PredictorVersion: imageVersion,
			})
		}
	}

	for _, face := range doc.FaceAnnotations() {
		if face.DetectionConfidence < faceDetectionMinConfidence {
			continue
		}
		predictions = append(predictions, models.Prediction{
			Type:       models.TypeImageFlag,
			Confidence: face.DetectionConfidence,
			Data: map[string]interface{}{
				"type":  "face_annotation",
				"label": "face",
			},
			Predictor:        "face_annotation",
			PredictorVersion: imageVersion,
		})
		// One flag per image is enough.
		break
	}

	for _, label := range doc.LabelAnnotations() {
		if _, flagged := flaggedLabelDescriptions[label.Description]; !flagged {
			continue
		}
		if label.Score < flaggedLabelMinScore {
			continue
		}
		predictions = append(predictions, models.Prediction{
			Type:       models.TypeImageFlag,
			Confidence: label.Score,
			Data: map[string]interface{}{
				"type":  "label_annotation",
				"label": label.Description,
			},
			Predictor:        "label_annotation",
			PredictorVersion: imageVersion,
		})
		break
	}

	return predictions, nil
}

// FindImageOrientation emits a prediction when the majority text orientation
// is not upright, carrying the full per-orientation counts for debugging.
func FindImageOrientation(doc *ocr.Document) ([]models.Prediction, error) {
	result, err := doc.DetectOrientation()
	if err != nil {
		return nil, err
	}
	if result.Orientation == ocr.OrientationUp || result.Orientation == ocr.OrientationUnknown {
		return nil, nil
	}

	counts := make(map[string]int, len(result.Count))
	for orientation, count := range result.Count {
		counts[string(orientation)] = count
	}
	return []models.Prediction{{
		Type:  models.TypeImageOrientation,
		Value: string(result.Orientation),
		Data: map[string]interface{}{
			"orientation": string(result.Orientation),
			"count":       counts,
		},
		Predictor:        "geometry",
		PredictorVersion: imageVersion,
	}}, nil
}

// FindImageLang converts the per-word language counts into percentages and
// emits them as a single prediction.
func FindImageLang(doc *ocr.Document) ([]models.Prediction, error) {
	counts, err := doc.LanguagesCount()
	if err != nil {
		return nil, err
	}
	totalWords := counts["words"]
	if totalWords == 0 {
		return nil, nil
	}

	percentages := make(map[string]float64, len(counts))
	languages := make([]string, 0, len(counts))
	for lang := range counts {
		if lang == "words" {
			continue
		}
		languages = append(languages, lang)
	}
	sort.Strings(languages)
	for _, lang := range languages {
		percentages[lang] = float64(counts[lang]*100) / float64(totalWords)
	}

	return []models.Prediction{{
		Type: models.TypeImageLang,
		Data: map[string]interface{}{
			"count":      counts,
			"percent":    percentages,
			"word_count": totalWords,
		},
		Predictor:        "language_counter",
		PredictorVersion: imageVersion,
	}}, nil
}
