package prediction

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"robotoff/internal/ocr"
	"robotoff/pkg/models"
)

const nutrientVersion = "1.0"

// nutrientMention is one language-tagged group of keywords for a nutrient.
// The group's languages are encoded in the regex group name as
// "lang1_lang2_index", which mention extraction decodes back.
type nutrientMention struct {
	languages []string
	terms     []string
}

var nutrientMentions = map[string][]nutrientMention{
	"energy": {
		{[]string{"fr"}, []string{"énergie", "energie", "valeur énergétique", "valeurs énergétiques"}},
		{[]string{"en"}, []string{"energy", "energy value"}},
		{[]string{"es"}, []string{"energía", "valor energético"}},
		{[]string{"de"}, []string{"energie", "brennwert"}},
	},
	"fat": {
		{[]string{"fr"}, []string{"matières grasses", "matieres grasses", "lipides"}},
		{[]string{"en"}, []string{"fat", "total fat"}},
		{[]string{"es"}, []string{"grasas"}},
		{[]string{"de"}, []string{"fett"}},
	},
	"saturated_fat": {
		{[]string{"fr"}, []string{"acides gras saturés", "dont saturés", "dont acides gras saturés"}},
		{[]string{"en"}, []string{"saturated fat", "of which saturates"}},
		{[]string{"es"}, []string{"grasas saturadas", "de las cuales saturadas"}},
		{[]string{"de"}, []string{"gesättigte fettsäuren"}},
	},
	"carbohydrate": {
		{[]string{"fr"}, []string{"glucides"}},
		{[]string{"en"}, []string{"carbohydrate", "carbohydrates", "total carbohydrate"}},
		{[]string{"es"}, []string{"hidratos de carbono", "carbohidratos"}},
		{[]string{"de"}, []string{"kohlenhydrate"}},
	},
	"sugar": {
		{[]string{"fr"}, []string{"dont sucres", "sucres"}},
		{[]string{"en"}, []string{"of which sugars", "sugars", "sugar"}},
		{[]string{"es"}, []string{"de los cuales azúcares", "azúcares"}},
		{[]string{"de"}, []string{"davon zucker", "zucker"}},
	},
	"protein": {
		{[]string{"fr"}, []string{"protéines", "proteines"}},
		{[]string{"en"}, []string{"protein", "proteins"}},
		{[]string{"es"}, []string{"proteínas"}},
		{[]string{"de"}, []string{"eiweiß", "eiweiss"}},
	},
	"salt": {
		{[]string{"fr"}, []string{"sel"}},
		{[]string{"en"}, []string{"salt"}},
		{[]string{"es"}, []string{"sal"}},
		{[]string{"de"}, []string{"salz"}},
	},
	"fiber": {
		{[]string{"fr"}, []string{"fibres", "fibres alimentaires"}},
		{[]string{"en"}, []string{"fiber", "fibre", "dietary fiber"}},
		{[]string{"es"}, []string{"fibra", "fibra alimentaria"}},
		{[]string{"de"}, []string{"ballaststoffe"}},
	},
	"trans_fat": {
		{[]string{"fr"}, []string{"acides gras trans"}},
		{[]string{"en"}, []string{"trans fat"}},
	},
	"nutrition_values": {
		{[]string{"fr"}, []string{"valeurs nutritionnelles", "informations nutritionnelles", "valeurs moyennes"}},
		{[]string{"en"}, []string{"nutrition facts", "nutritional values", "nutrition information"}},
		{[]string{"es"}, []string{"información nutricional", "valores nutricionales"}},
		{[]string{"de"}, []string{"nährwerte", "nährwertangaben"}},
	},
}

// nutrientValueUnits maps a nutrient to the units its value may carry.
var nutrientValueUnits = map[string]string{
	"energy":        "kj|kcal",
	"fat":           "g|mg",
	"saturated_fat": "g|mg",
	"carbohydrate":  "g|mg",
	"sugar":         "g|mg",
	"protein":       "g|mg",
	"salt":          "g|mg",
	"fiber":         "g|mg",
	"trans_fat":     "g|mg",
}

var (
	nutrientMentionRegexes = buildNutrientMentionRegexes()
	nutrientValueRegexes   = buildNutrientValueRegexes()
)

// buildNutrientMentionRegexes compiles, per nutrient, one alternation of all
// language groups, each wrapped in a named group "lang1_lang2_index".
func buildNutrientMentionRegexes() map[string]*regexp.Regexp {
	regexes := make(map[string]*regexp.Regexp, len(nutrientMentions))
	for nutrient, groups := range nutrientMentions {
		var alternatives []string
		for i, group := range groups {
			name := fmt.Sprintf("%s_%d", strings.Join(group.languages, "_"), i)
			alternatives = append(alternatives,
				fmt.Sprintf(`(?P<%s>%s)`, name, strings.Join(escapeTerms(group.terms), "|")))
		}
		pattern := fmt.Sprintf(`(?:^|[^\w])(?:%s)(?:$|[^\w])`, strings.Join(alternatives, "|"))
		regexes[nutrient] = regexp.MustCompile(pattern)
	}
	return regexes
}

// buildNutrientValueRegexes compiles, per nutrient, the keyword alternation
// followed by a numeric value and unit.
func buildNutrientValueRegexes() map[string]*regexp.Regexp {
	regexes := make(map[string]*regexp.Regexp, len(nutrientValueUnits))
	for nutrient, units := range nutrientValueUnits {
		var terms []string
		for _, group := range nutrientMentions[nutrient] {
			terms = append(terms, escapeTerms(group.terms)...)
		}
		pattern := fmt.Sprintf(`(?:^|[^\w])(?:%s)\s?:?\s?([0-9]+[,.]?[0-9]*)\s?(%s)\b`,
			strings.Join(terms, "|"), units)
		regexes[nutrient] = regexp.MustCompile(pattern)
	}
	return regexes
}

// escapeTerms quotes regex metacharacters and sorts longer terms first so
// alternation picks the longest spelling.
func escapeTerms(terms []string) []string {
	escaped := make([]string, len(terms))
	for i, t := range terms {
		escaped[i] = regexp.QuoteMeta(t)
	}
	sort.SliceStable(escaped, func(i, j int) bool {
		return len(escaped[i]) > len(escaped[j])
	})
	return escaped
}

// FindNutrientValues extracts "keyword: number unit" nutrient statements.
func FindNutrientValues(doc *ocr.Document) ([]models.Prediction, error) {
	content := doc.GetText(ocr.FieldFullTextContiguous, true)
	if content == "" {
		return nil, nil
	}

	var predictions []models.Prediction
	for _, nutrient := range sortedKeys(nutrientValueRegexes) {
		re := nutrientValueRegexes[nutrient]
		for _, groups := range re.FindAllStringSubmatch(content, -1) {
			raw := strings.TrimSpace(strings.Trim(groups[0], ".,;:"))
			value := strings.ReplaceAll(groups[1], ",", ".")
			unit := groups[2]

			data := map[string]interface{}{
				"raw":      raw,
				"nutrient": nutrient,
				"value":    value,
				"unit":     unit,
			}
			attachBoundingBox(doc, strings.ToLower(groups[0]), data)

			predictions = append(predictions, models.Prediction{
				Type:             models.TypeNutrient,
				Value:            fmt.Sprintf("%s %s", value, unit),
				Data:             data,
				Predictor:        "regex",
				PredictorVersion: nutrientVersion,
			})
		}
	}
	return predictions, nil
}

// FindNutrientMentions records which nutrients are mentioned and in which
// languages, without requiring a numeric value nearby. Used to decide whether
// an image shows a nutrition table.
func FindNutrientMentions(doc *ocr.Document) ([]models.Prediction, error) {
	content := doc.GetText(ocr.FieldFullTextContiguous, true)
	if content == "" {
		return nil, nil
	}

	mentions := make(map[string][]map[string]interface{})
	for _, nutrient := range sortedKeys(nutrientMentionRegexes) {
		re := nutrientMentionRegexes[nutrient]
		names := re.SubexpNames()
		for _, span := range re.FindAllStringSubmatchIndex(content, -1) {
			for g, name := range names {
				if name == "" || span[2*g] < 0 {
					continue
				}
				mentions[nutrient] = append(mentions[nutrient], map[string]interface{}{
					"raw":       content[span[2*g]:span[2*g+1]],
					"span":      []int{span[2*g], span[2*g+1]},
					"languages": mentionLanguages(name),
				})
				break
			}
		}
	}
	if len(mentions) == 0 {
		return nil, nil
	}

	data := map[string]interface{}{"mentions": mentions}
	return []models.Prediction{{
		Type:             models.TypeNutrientMention,
		Data:             data,
		Predictor:        "regex",
		PredictorVersion: nutrientVersion,
	}}, nil
}

// mentionLanguages decodes "fr_en_0" into ["fr", "en"].
func mentionLanguages(groupName string) []string {
	parts := strings.Split(groupName, "_")
	if len(parts) < 2 {
		return nil
	}
	return parts[:len(parts)-1]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
