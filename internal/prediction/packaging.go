package prediction

import (
	"strings"

	"robotoff/internal/ocr"
	"robotoff/internal/text"
	"robotoff/pkg/models"
)

const packagingVersion = "1.0"

// French packaging vocabulary, term -> taxonomy identifier. Terms are
// matched against normalized text (lowercase, accents stripped, whitespace
// collapsed), so they are spelled accent-free here.
var packagingShapes = map[string]string{
	"bouteille": "en:bottle",
	"pot":       "en:pot",
	"bocal":     "en:jar",
	"boite":     "en:box",
	"brique":    "en:brick",
	"sachet":    "en:bag",
	"barquette": "en:tray",
	"film":      "en:film",
	"couvercle": "en:lid",
	"bouchon":   "en:cap",
	"etui":      "en:sleeve",
	"flacon":    "en:flask",
	"gourde":    "en:pouch",
	"opercule":  "en:seal",
	"emballage": "en:packaging",
}

var packagingMaterials = map[string]string{
	"plastique": "en:plastic",
	"verre":     "en:glass",
	"carton":    "en:cardboard",
	"metal":     "en:metal",
	"aluminium": "en:aluminium",
	"acier":     "en:steel",
	"papier":    "en:paper",
	"bois":      "en:wood",
	"fer blanc": "en:tinplate",
}

var packagingRecycling = map[string]string{
	"a recycler": "en:recycle",
	"recyclable": "en:recycle",
	"a jeter":    "en:discard",
	"consigne":   "en:return-to-store",
}

// Generic shapes that are only meaningful with a material or a recycling
// instruction attached: a bare "emballage" or "barquette" is noise.
var packagingFalsePositiveShapes = map[string]struct{}{
	"en:packaging": {},
	"en:tray":      {},
}

// packagingElement is one shape+material+recycling triple extracted from a
// packaging statement.
type packagingElement struct {
	shapeTerm     string
	shape         string
	materialTerm  string
	material      string
	recyclingTerm string
	recycling     string
}

// parsePackaging runs a small token grammar over normalized French text:
//
//	element   := shape ["en" | "de"] [material] [recycling]
//	statement := element { separator element }
//
// Multi-word terms (e.g. "a recycler", "fer blanc") are matched greedily,
// two tokens before one.
func parsePackaging(normalized string) []packagingElement {
	tokens := strings.Fields(normalized)
	var elements []packagingElement

	i := 0
	for i < len(tokens) {
		term, ok := lookupAt(tokens, i, packagingShapes)
		if !ok {
			i++
			continue
		}
		element := packagingElement{shapeTerm: term, shape: packagingShapes[term]}
		i += tokenLen(term)

		// Optional linking preposition before the material.
		if i < len(tokens) && (tokens[i] == "en" || tokens[i] == "de") {
			if term, ok := lookupAt(tokens, i+1, packagingMaterials); ok {
				element.materialTerm = term
				element.material = packagingMaterials[term]
				i += 1 + tokenLen(term)
			}
		} else if term, ok := lookupAt(tokens, i, packagingMaterials); ok {
			element.materialTerm = term
			element.material = packagingMaterials[term]
			i += tokenLen(term)
		}

		if term, ok := lookupAt(tokens, i, packagingRecycling); ok {
			element.recyclingTerm = term
			element.recycling = packagingRecycling[term]
			i += tokenLen(term)
		}

		elements = append(elements, element)
	}
	return elements
}

// lookupAt tries the two-token and then the one-token term starting at i.
func lookupAt(tokens []string, i int, table map[string]string) (string, bool) {
	if i >= len(tokens) {
		return "", false
	}
	if i+1 < len(tokens) {
		two := tokens[i] + " " + tokens[i+1]
		if _, ok := table[two]; ok {
			return two, true
		}
	}
	if _, ok := table[tokens[i]]; ok {
		return tokens[i], true
	}
	return "", false
}

func tokenLen(term string) int {
	return len(strings.Fields(term))
}

// normalizePackagingText lowercases, strips accents, spaces out punctuation
// and collapses whitespace. OCR statements arrive comma- and
// period-punctuated ("bouteille en plastique."); punctuation glued to a
// token would otherwise miss the vocabulary lookups.
func normalizePackagingText(content string) string {
	content = text.StripAccents(strings.ToLower(content))
	content = strings.Map(func(r rune) rune {
		if strings.ContainsRune(".,;:!?()[]'\"/-", r) {
			return ' '
		}
		return r
	}, content)
	return strings.Join(strings.Fields(content), " ")
}

// FindPackaging extracts packaging shape/material/recycling triples from
// French packaging statements ("bouteille en plastique a recycler").
// Elements whose shape is a known false positive and that carry neither
// material nor recycling information are dropped.
func FindPackaging(doc *ocr.Document) ([]models.Prediction, error) {
	content := doc.GetText(ocr.FieldFullTextContiguous, false)
	if content == "" {
		return nil, nil
	}

	var predictions []models.Prediction
	for _, element := range parsePackaging(normalizePackagingText(content)) {
		if _, falsePositive := packagingFalsePositiveShapes[element.shape]; falsePositive {
			if element.material == "" && element.recycling == "" {
				continue
			}
		}

		data := map[string]interface{}{
			"shape": map[string]interface{}{
				"value":     element.shapeTerm,
				"value_tag": element.shape,
			},
		}
		if element.material != "" {
			data["material"] = map[string]interface{}{
				"value":     element.materialTerm,
				"value_tag": element.material,
			}
		}
		if element.recycling != "" {
			data["recycling"] = map[string]interface{}{
				"value":     element.recyclingTerm,
				"value_tag": element.recycling,
			}
		}

		predictions = append(predictions, models.Prediction{
			Type:             models.TypePackaging,
			ValueTag:         element.shape,
			Data:             data,
			Predictor:        "grammar",
			PredictorVersion: packagingVersion,
		})
	}
	return predictions, nil
}
