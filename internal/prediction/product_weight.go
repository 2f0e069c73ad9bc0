package prediction

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"robotoff/internal/matcher"
	"robotoff/internal/ocr"
	"robotoff/internal/text"
	"robotoff/pkg/models"
)

const productWeightVersion = "1.0"

// Unit alternation, longest spelling first so the trailing-letter boundary
// group only ever captures genuine surplus characters.
const weightUnits = `fl oz|dle|cle|mge|mle|kge|lbs|dl|cl|mg|ml|oz|kg|ge|le|g|l`

// Three competing matchers. An explicit prompt word ("poids net: 30g") is
// trusted most; a bare number+unit least. After matching, only the best
// (lowest) priority tier is kept, so a prompted weight suppresses the bare
// match it contains.
var productWeightMatchers = []struct {
	name     string
	priority int
	fm       matcher.FieldMatcher
}{
	{
		name:     "with_mention",
		priority: 1,
		fm: matcher.FieldMatcher{
			Regex:     regexp.MustCompile(`(?:^|[^a-z])(poids net [àa] l'emballage|poids net [ée]goutt[ée]|poids net total|poids net|poids|net weight|peso neto|peso l[íi]quido|nettogewicht|netto gewicht)\s?:?\s?([0-9]+[,.]?[0-9]*)\s?(` + weightUnits + `)([a-z]*)`),
			Field:     ocr.FieldFullTextContiguous,
			Lowercase: true,
			Priority:  1,
		},
	},
	{
		name:     "multi_packaging",
		priority: 2,
		fm: matcher.FieldMatcher{
			Regex:     regexp.MustCompile(`(?:^|[^a-z0-9])(\d+)\s?x\s?([0-9]+[,.]?[0-9]*)\s?(` + weightUnits + `)([a-z]*)`),
			Field:     ocr.FieldFullTextContiguous,
			Lowercase: true,
			Priority:  2,
		},
	},
	{
		name:     "no_mention",
		priority: 3,
		fm: matcher.FieldMatcher{
			Regex:     regexp.MustCompile(`(?:^|[^a-z0-9])([0-9]+[,.]?[0-9]*)\s?(` + weightUnits + `)([a-z]*)`),
			Field:     ocr.FieldFullTextContiguous,
			Lowercase: true,
			Priority:  3,
		},
	},
}

type weightCandidate struct {
	prediction models.Prediction
	priority   int
}

// FindProductWeights extracts net-weight/volume statements. Values failing
// the validity predicate are dropped; implausible but possible values are
// kept with AutomaticProcessing=false so a human confirms them.
func FindProductWeights(doc *ocr.Document) ([]models.Prediction, error) {
	var candidates []weightCandidate

	for _, entry := range productWeightMatchers {
		for _, m := range entry.fm.FindAll(doc) {
			var p models.Prediction
			var ok bool
			switch entry.name {
			case "multi_packaging":
				p, ok = processMultiPackagingMatch(m, doc)
			default:
				p, ok = processWeightMatch(entry.name, m, doc)
			}
			if !ok {
				continue
			}
			candidates = append(candidates, weightCandidate{prediction: p, priority: entry.priority})
		}
	}

	if len(candidates) == 0 {
		return nil, nil
	}

	best := candidates[0].priority
	for _, c := range candidates[1:] {
		if c.priority < best {
			best = c.priority
		}
	}

	var predictions []models.Prediction
	for _, c := range candidates {
		if c.priority == best {
			predictions = append(predictions, c.prediction)
		}
	}
	return predictions, nil
}

func processWeightMatch(name string, m matcher.Match, doc *ocr.Document) (models.Prediction, bool) {
	var mention, value, unit, trailing string
	if name == "with_mention" {
		mention, value, unit, trailing = m.Groups[1], m.Groups[2], m.Groups[3], m.Groups[4]
	} else {
		value, unit, trailing = m.Groups[1], m.Groups[2], m.Groups[3]
	}
	if trailing != "" {
		// The unit runs into more letters ("2kgv"): not a unit boundary.
		return models.Prediction{}, false
	}
	if !text.IsValidWeight(value) {
		return models.Prediction{}, false
	}

	normalized, normalizedUnit, err := text.NormalizeWeight(value, unit)
	if err != nil {
		return models.Prediction{}, false
	}

	raw := matchText(m)
	data := map[string]interface{}{
		"raw":              raw,
		"matcher_type":     name,
		"value":            value,
		"unit":             unit,
		"normalized_value": normalized,
		"normalized_unit":  normalizedUnit,
		"prompt":           mention != "",
	}
	attachBoundingBox(doc, raw, data)

	return models.Prediction{
		Type:                models.TypeProductWeight,
		Value:               fmt.Sprintf("%s %s", value, unit),
		Data:                data,
		AutomaticProcessing: !text.IsSuspiciousWeight(normalized, normalizedUnit),
		Predictor:           "regex",
		PredictorVersion:    productWeightVersion,
	}, true
}

func processMultiPackagingMatch(m matcher.Match, doc *ocr.Document) (models.Prediction, bool) {
	count, value, unit, trailing := m.Groups[1], m.Groups[2], m.Groups[3], m.Groups[4]
	if trailing != "" {
		return models.Prediction{}, false
	}
	if !text.IsValidWeight(value) {
		return models.Prediction{}, false
	}

	countValue, err := strconv.Atoi(count)
	if err != nil || countValue <= 0 {
		return models.Prediction{}, false
	}
	normalized, normalizedUnit, err := text.NormalizeWeight(value, unit)
	if err != nil {
		return models.Prediction{}, false
	}
	total := float64(countValue) * normalized

	raw := matchText(m)
	data := map[string]interface{}{
		"raw":              raw,
		"matcher_type":     "multi_packaging",
		"count":            countValue,
		"value":            value,
		"unit":             unit,
		"normalized_value": total,
		"normalized_unit":  normalizedUnit,
		"prompt":           false,
	}
	attachBoundingBox(doc, raw, data)

	return models.Prediction{
		Type:                models.TypeProductWeight,
		Value:               fmt.Sprintf("%s x %s %s", count, value, unit),
		Data:                data,
		AutomaticProcessing: !text.IsSuspiciousWeight(total, normalizedUnit),
		Predictor:           "regex",
		PredictorVersion:    productWeightVersion,
	}, true
}

// matchText strips the consumed boundary character from the front of the
// full match, so the reported raw text starts at the real content.
func matchText(m matcher.Match) string {
	raw := m.Groups[0]
	trimmed := strings.TrimLeft(raw, " \t.,;:!?")
	if len(trimmed) < len(raw) {
		return trimmed
	}
	// Boundary was a single non-letter character (e.g. a digit separator).
	if len(raw) > 0 && !strings.ContainsAny(raw[:1], "0123456789abcdefghijklmnopqrstuvwxyz") {
		return raw[1:]
	}
	return raw
}

// attachBoundingBox maps a raw lowercase match back into the full text and,
// when the span resolves to located words, records the absolute bounding box.
func attachBoundingBox(doc *ocr.Document, raw string, data map[string]interface{}) {
	fullLower := strings.ToLower(doc.FullText())
	idx := strings.Index(fullLower, raw)
	if idx < 0 {
		return
	}
	if box, ok := doc.MatchBoundingBox(idx, idx+len(raw)); ok {
		data["bounding_box"] = box
	}
}
