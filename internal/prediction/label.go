package prediction

import (
	"regexp"
	"strings"

	"robotoff/internal/matcher"
	"robotoff/internal/ocr"
	"robotoff/internal/resource"
	"robotoff/internal/text"
	"robotoff/pkg/models"
)

const labelVersion = "1.0"

// labelMatchers maps a label tag to the regex descriptors that detect it.
// Hand-written multilingual alternations; the tag is the taxonomy identifier
// the prediction carries as value_tag.
var labelMatchers = map[string][]matcher.FieldMatcher{
	"en:organic": {{
		Regex:     regexp.MustCompile(`(?:^|[^\w])(?:issu[e]?s? de l'|de l')?agriculture biologique(?:$|[^\w])`),
		Field:     ocr.FieldFullTextContiguous,
		Lowercase: true,
	}, {
		Regex:     regexp.MustCompile(`(?:^|[^\w])(?:100% )?(?:organic|bio)(?:logique)?(?:$|[^\w])`),
		Field:     ocr.FieldFullTextContiguous,
		Lowercase: true,
	}},
	"en:pgi": {{
		Regex:     regexp.MustCompile(`(?:^|[^\w])(?:indication g[ée]ographique prot[ée]g[ée]e|protected geographical indication|igp|pgi)(?:$|[^\w])`),
		Field:     ocr.FieldFullTextContiguous,
		Lowercase: true,
	}},
	"en:pdo": {{
		Regex:     regexp.MustCompile(`(?:^|[^\w])(?:appellation d'origine prot[ée]g[ée]e|protected designation of origin|aop|pdo)(?:$|[^\w])`),
		Field:     ocr.FieldFullTextContiguous,
		Lowercase: true,
	}},
	"fr:aoc": {{
		Regex:     regexp.MustCompile(`(?:^|[^\w])(?:appellation d'origine contr[ôo]l[ée]e|aoc)(?:$|[^\w])`),
		Field:     ocr.FieldFullTextContiguous,
		Lowercase: true,
	}},
	"en:no-gluten": {{
		Regex:     regexp.MustCompile(`(?:^|[^\w])(?:sans gluten|gluten[ -]free|glutenfrei|sin gluten|senza glutine)(?:$|[^\w])`),
		Field:     ocr.FieldFullTextContiguous,
		Lowercase: true,
	}},
	"en:vegan": {{
		Regex:     regexp.MustCompile(`(?:^|[^\w])(?:vegan|v[ée]g[ée]talien|100 ?% v[ée]g[ée]tal)(?:$|[^\w])`),
		Field:     ocr.FieldFullTextContiguous,
		Lowercase: true,
	}},
	"en:vegetarian": {{
		Regex:     regexp.MustCompile(`(?:^|[^\w])(?:vegetarian|v[ée]g[ée]tarien)(?:$|[^\w])`),
		Field:     ocr.FieldFullTextContiguous,
		Lowercase: true,
	}},
	"en:no-preservatives": {{
		Regex:     regexp.MustCompile(`(?:^|[^\w])(?:sans conservateurs?|no preservatives?|ohne konservierungsstoffe)(?:$|[^\w])`),
		Field:     ocr.FieldFullTextContiguous,
		Lowercase: true,
	}},
	"en:no-additives": {{
		Regex:     regexp.MustCompile(`(?:^|[^\w])(?:sans additifs?|no additives?)(?:$|[^\w])`),
		Field:     ocr.FieldFullTextContiguous,
		Lowercase: true,
	}},
	"en:no-added-sugar": {{
		Regex:     regexp.MustCompile(`(?:^|[^\w])(?:sans sucres? ajout[ée]s?|no added sugars?)(?:$|[^\w])`),
		Field:     ocr.FieldFullTextContiguous,
		Lowercase: true,
	}},
	"en:palm-oil-free": {{
		Regex:     regexp.MustCompile(`(?:^|[^\w])(?:sans huile de palme|palm oil free)(?:$|[^\w])`),
		Field:     ocr.FieldFullTextContiguous,
		Lowercase: true,
	}},
	"en:made-in-france": {{
		Regex:     regexp.MustCompile(`(?:^|[^\w])(?:fabriqu[ée] en france|produit en france|made in france)(?:$|[^\w])`),
		Field:     ocr.FieldFullTextContiguous,
		Lowercase: true,
	}},
	"en:fair-trade": {{
		Regex:     regexp.MustCompile(`(?:^|[^\w])(?:fairtrade|fair trade|max havelaar|commerce [ée]quitable)(?:$|[^\w])`),
		Field:     ocr.FieldFullTextContiguous,
		Lowercase: true,
	}},
}

// Spanish organic-farming authority codes ("ES-ECO-001-AN"): the two-letter
// community suffix is required, a bare "ES-ECO-001" is not a label claim.
var esEcoMatcher = matcher.FieldMatcher{
	Regex:     regexp.MustCompile(`es[-\s.]eco[-\s.]\d{3}[-\s.][a-z]{2}`),
	Field:     ocr.FieldFullTextContiguous,
	Lowercase: true,
	Process:   processEsEco,
}

func processEsEco(groups []string) (string, bool) {
	return "en:" + text.Slugify(groups[0]), true
}

// labelLogos maps Vision logo descriptions to label tags, a third signal
// independent of text matching.
var labelLogos = map[string]string{
	"Fairtrade":                 "en:fair-trade",
	"Fairtrade International":   "en:fair-trade",
	"EU Organic":                "en:eu-organic",
	"AB Agriculture Biologique": "fr:ab-agriculture-biologique",
	"Rainforest Alliance":       "en:rainforest-alliance",
	"UTZ Certified":             "en:utz-certified",
	"Vegan Society":             "en:vegan",
}

const labelLogoMinScore = 0.8

var labelDictionaryStore = resource.NewStore(func() (*matcher.KeywordProcessor, error) {
	keywords, err := resource.LoadDictionary("labels.txt", nil)
	if err != nil {
		return nil, err
	}
	return matcher.NewKeywordProcessor(keywords, false), nil
})

// FindLabels detects label/claim statements from three independent signals:
// hand-written regexes, the curated label dictionary and detected logos.
// All three may fire for the same label; deduplication is the importer's job.
func FindLabels(doc *ocr.Document) ([]models.Prediction, error) {
	var predictions []models.Prediction

	for _, tag := range sortedKeys(labelMatchers) {
		for _, fm := range labelMatchers[tag] {
			for _, m := range fm.FindAll(doc) {
				predictions = append(predictions, models.Prediction{
					Type:     models.TypeLabel,
					ValueTag: tag,
					Data: map[string]interface{}{
						"raw": strings.TrimSpace(m.Groups[0]),
					},
					Predictor:        "regex",
					PredictorVersion: labelVersion,
				})
			}
		}
	}

	for _, m := range esEcoMatcher.FindAll(doc) {
		tag, ok := esEcoMatcher.Process(m.Groups)
		if !ok {
			continue
		}
		predictions = append(predictions, models.Prediction{
			Type:     models.TypeLabel,
			ValueTag: tag,
			Data: map[string]interface{}{
				"raw": m.Groups[0],
			},
			Predictor:        "regex",
			PredictorVersion: labelVersion,
		})
	}

	processor, err := labelDictionaryStore.Get()
	if err != nil {
		return nil, err
	}
	content := doc.GetText(ocr.FieldFullTextContiguous, true)
	for _, m := range processor.Extract(content) {
		predictions = append(predictions, models.Prediction{
			Type:     models.TypeLabel,
			Value:    m.Keyword.Name,
			ValueTag: m.Keyword.Key,
			Data: map[string]interface{}{
				"raw": content[m.Start:m.End],
			},
			Predictor:        "flashtext",
			PredictorVersion: labelVersion,
		})
	}

	for _, logo := range doc.LogoAnnotations() {
		tag, ok := labelLogos[logo.Description]
		if !ok || logo.Score < labelLogoMinScore {
			continue
		}
		predictions = append(predictions, models.Prediction{
			Type:       models.TypeLabel,
			ValueTag:   tag,
			Confidence: logo.Score,
			Data: map[string]interface{}{
				"logo_description": logo.Description,
			},
			Predictor:        "logo",
			PredictorVersion: labelVersion,
		})
	}

	return predictions, nil
}
