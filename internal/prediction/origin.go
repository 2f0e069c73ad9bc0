package prediction

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"robotoff/internal/ocr"
	"robotoff/internal/resource"
	"robotoff/internal/taxonomy"
	"robotoff/pkg/models"
)

const originVersion = "1.0"

// originLarge is the sentinel for a diffuse origin: negated statements
// ("does not come from the EU"), "outside the EU" markers and
// "several countries" phrases all resolve to it.
const originLarge = "en:large-origin"

var countryTaxonomyStore = resource.NewStore(func() (taxonomy.Taxonomy, error) {
	f, err := resource.Open("taxonomy_countries.json")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return taxonomy.Load(f)
})

var ingredientTaxonomyStore = resource.NewStore(func() (taxonomy.Taxonomy, error) {
	f, err := resource.Open("taxonomy_ingredients.json")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return taxonomy.Load(f)
})

// originGrammar holds the per-language linguistic scaffolding around the
// taxonomy-derived alternations.
type originGrammar struct {
	lang         string
	verbs        string // verbs of origin
	negation     string
	outside      string // "outside of" markers
	diverse      string // "several countries" phrases
	prepositions string
	genericWords map[string]struct{}
}

var originGrammars = []originGrammar{
	{
		lang:         "fr",
		verbs:        `provenan(?:t|ce)|provien(?:t|nent)|origin(?:e|aire)s?|cultiv[ée]e?s?|fabriqu[ée]e?s?|produite?s?|r[ée]colt[ée]e?s?`,
		negation:     `ne |n'|pas |non `,
		outside:      `hors|en dehors de`,
		diverse:      `divers pays|plusieurs pays|diff[ée]rents pays`,
		prepositions: `de puis|depuis|des|du|de|d'|en|au|aux|:`,
		genericWords: map[string]struct{}{
			"ingredients": {}, "ingrédients": {}, "production": {},
			"produit": {}, "produits": {}, "agriculture": {},
		},
	},
	{
		lang:         "en",
		verbs:        `origin|originat(?:es?|ing)|grown|produced|made|harvested|comes? from`,
		negation:     `not |don't |doesn't `,
		outside:      `outside(?: of)?`,
		diverse:      `several countries|various countries|multiple countries`,
		prepositions: `from|in|of|:`,
		genericWords: map[string]struct{}{
			"ingredients": {}, "production": {}, "product": {}, "products": {},
		},
	},
}

type originMatcher struct {
	grammar originGrammar
	regex   *regexp.Regexp
}

// originMatcherStore compiles, per language, one regex combining ingredient
// alternations, country alternations and the grammar scaffolding, with named
// groups driving the classification.
var originMatcherStore = resource.NewStore(func() ([]originMatcher, error) {
	countries, err := countryTaxonomyStore.Get()
	if err != nil {
		return nil, err
	}
	ingredients, err := ingredientTaxonomyStore.Get()
	if err != nil {
		return nil, err
	}

	var matchers []originMatcher
	for _, grammar := range originGrammars {
		countryAlt := alternation(countries.AllSynonyms(grammar.lang))
		ingredientAlt := alternation(ingredients.AllSynonyms(grammar.lang))
		if countryAlt == "" {
			continue
		}

		// Negation may sit before the verb ("ne provient") or after it
		// ("provient pas"), so it is captured on both sides.
		pattern := fmt.Sprintf(
			`(?:^|[^\w])(?:(?P<ingredients>%s)\s)?(?P<neg1>%s)?(?:%s)\s?(?P<neg2>%s)?\s?(?:%s)?\s?(?:(?P<outside>%s)\s?)?(?:(?P<diverse>%s)|(?P<country>%s))(?:$|[^\w])`,
			ingredientAlt,
			grammar.negation,
			grammar.verbs,
			grammar.negation,
			grammar.prepositions,
			grammar.outside,
			grammar.diverse,
			countryAlt,
		)
		regex, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("prediction: compiling origin regex (%s): %w", grammar.lang, err)
		}
		matchers = append(matchers, originMatcher{grammar: grammar, regex: regex})
	}
	return matchers, nil
})

// alternation joins lowercased terms longest-first into a regex alternation.
func alternation(terms []string) string {
	escaped := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(strings.ToLower(t))
		if t == "" {
			continue
		}
		escaped = append(escaped, regexp.QuoteMeta(t))
	}
	sort.SliceStable(escaped, func(i, j int) bool { return len(escaped[i]) > len(escaped[j]) })
	return strings.Join(escaped, "|")
}

// FindOrigins extracts origin-of-ingredient statements.
//
// Classification: a negated or "outside of" statement resolves to the large
// origin sentinel; a captured country resolves through the taxonomy; a
// "several countries" phrase also resolves to the large origin; anything
// else is an unknown origin and produces no prediction. When a non-generic
// ingredient is captured the result applies to that ingredient only,
// otherwise to the whole product.
func FindOrigins(doc *ocr.Document) ([]models.Prediction, error) {
	matchers, err := originMatcherStore.Get()
	if err != nil {
		return nil, err
	}
	countries, err := countryTaxonomyStore.Get()
	if err != nil {
		return nil, err
	}
	ingredients, err := ingredientTaxonomyStore.Get()
	if err != nil {
		return nil, err
	}

	content := doc.GetText(ocr.FieldFullTextContiguous, true)
	if content == "" {
		return nil, nil
	}

	var predictions []models.Prediction
	for _, om := range matchers {
		names := om.regex.SubexpNames()
		for _, groups := range om.regex.FindAllStringSubmatch(content, -1) {
			captured := make(map[string]string)
			for i, name := range names {
				if name != "" {
					captured[name] = groups[i]
				}
			}

			origin := classifyOrigin(captured, om.grammar.lang, countries)
			if origin == "" {
				continue
			}

			data := map[string]interface{}{
				"raw":  strings.TrimSpace(groups[0]),
				"lang": om.grammar.lang,
			}
			if ingredientList := resolveOriginIngredients(
				captured["ingredients"], om.grammar, ingredients); len(ingredientList) > 0 {
				data["ingredients"] = ingredientList
			}

			predictions = append(predictions, models.Prediction{
				Type:             models.TypeOrigin,
				ValueTag:         origin,
				Data:             data,
				Predictor:        "regex",
				PredictorVersion: originVersion,
			})
		}
	}
	return predictions, nil
}

func classifyOrigin(captured map[string]string, lang string, countries taxonomy.Taxonomy) string {
	if captured["neg1"] != "" || captured["neg2"] != "" || captured["outside"] != "" {
		return originLarge
	}
	if country := captured["country"]; country != "" {
		if id := countries.ResolveSynonym(country, lang); id != "" {
			return id
		}
		return ""
	}
	if captured["diverse"] != "" {
		return originLarge
	}
	// Unknown origin: discarded.
	return ""
}

// resolveOriginIngredients maps the captured ingredient words to taxonomy
// identifiers where known, keeping the raw word otherwise. Solely generic
// words ("ingredients", "production") mean the statement covers the whole
// product, so nil is returned.
func resolveOriginIngredients(raw string, grammar originGrammar, ingredients taxonomy.Taxonomy) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	words := strings.Fields(raw)
	allGeneric := true
	for _, w := range words {
		if _, ok := grammar.genericWords[w]; !ok {
			allGeneric = false
			break
		}
	}
	if allGeneric {
		return nil
	}

	if id := ingredients.ResolveSynonym(raw, grammar.lang); id != "" {
		return []string{id}
	}
	var resolved []string
	for _, w := range words {
		if id := ingredients.ResolveSynonym(w, grammar.lang); id != "" {
			resolved = append(resolved, id)
		} else {
			resolved = append(resolved, w)
		}
	}
	return resolved
}
