package prediction

import (
	"fmt"
	"regexp"
	"strings"

	"robotoff/internal/matcher"
	"robotoff/internal/ocr"
	"robotoff/internal/resource"
	"robotoff/pkg/models"
)

const packagerCodeVersion = "1.0"

// germanStateCodeLengths gives, per issuing German state, the digit counts a
// valid company identifier may have. A syntactic match with a wrong length is
// rejected outright rather than surfaced with low confidence.
var germanStateCodeLengths = map[string][]int{
	"bw": {3, 4}, "by": {3, 4, 5}, "be": {3, 4}, "bb": {3, 4},
	"hb": {3}, "hh": {3, 4}, "he": {3, 4}, "mv": {3, 4},
	"ni": {3, 4, 5}, "nw": {3, 4, 5}, "rp": {3, 4}, "sl": {3},
	"sn": {3, 4}, "st": {3, 4}, "sh": {3, 4}, "th": {3, 4},
}

// packagerCodeMatchers is the region-specific regex table. RE2 has no
// lookarounds, so trailing-boundary checks are expressed as an extra capture
// group of surplus characters that the processing function rejects.
var packagerCodeMatchers = map[string]matcher.FieldMatcher{
	"fr_emb": {
		Regex:     regexp.MustCompile(`\bemb ?(\d ?){5,6}([a-z]{1,2})?`),
		Field:     ocr.FieldTextAnnotations,
		Lowercase: true,
		Process:   processFrEmb,
	},
	"eu_fr": {
		Regex:     regexp.MustCompile(`fr (\d{2,3}|2[ab])[-\s.](\d{3})[-\s.](\d{3}) (ce|ec)\b`),
		Field:     ocr.FieldFullTextContiguous,
		Lowercase: true,
		Process:   processFrApproval,
	},
	"eu_de": {
		Regex:     regexp.MustCompile(`de (bw|by|be|bb|hb|hh|he|mv|ni|nw|rp|sl|sn|st|sh|th)[-\s.](\d{1,5})[-\s.]? ?(eg|ec)\b`),
		Field:     ocr.FieldFullTextContiguous,
		Lowercase: true,
		Process:   processDeApproval,
	},
	"fsc": {
		Regex:     regexp.MustCompile(`fsc(?:-| )?(c\d{6,})`),
		Field:     ocr.FieldFullTextContiguous,
		Lowercase: true,
		Process:   processFsc,
	},
	"rspo": {
		Regex:     regexp.MustCompile(`rspo-(\d{7,})`),
		Field:     ocr.FieldFullTextContiguous,
		Lowercase: true,
		Process:   processRspo,
	},
}

// Extraction walks the table in this order so prediction output is stable
// across runs.
var packagerCodeMatcherOrder = []string{"fr_emb", "eu_fr", "eu_de", "fsc", "rspo"}

// processFrEmb canonicalizes a French EMB code: digits squeezed together,
// optional commune letters appended, all uppercase.
func processFrEmb(groups []string) (string, bool) {
	code := strings.ToUpper(groups[0])
	code = strings.ReplaceAll(code, " ", "")
	code = strings.ReplaceAll(code, "-", "")
	return "EMB " + strings.TrimPrefix(code, "EMB"), true
}

// processFrApproval renders a French EC approval number as
// "FR {dept}.{commune}.{company} EC", uppercased.
func processFrApproval(groups []string) (string, bool) {
	return strings.ToUpper(fmt.Sprintf("fr %s.%s.%s ec", groups[1], groups[2], groups[3])), true
}

// processDeApproval renders a German EC approval number, rejecting company
// identifiers whose digit count is invalid for the issuing state.
func processDeApproval(groups []string) (string, bool) {
	state, company := groups[1], groups[2]
	valid := false
	for _, length := range germanStateCodeLengths[state] {
		if len(company) == length {
			valid = true
			break
		}
	}
	if !valid {
		return "", false
	}
	return strings.ToUpper(fmt.Sprintf("de %s-%s ec", state, company)), true
}

func processFsc(groups []string) (string, bool) {
	// Exactly C + 6 digits; surplus digits mean a different code.
	if len(groups[1]) != 7 {
		return "", false
	}
	return "FSC-" + strings.ToUpper(groups[1]), true
}

func processRspo(groups []string) (string, bool) {
	if len(groups[1]) != 7 {
		return "", false
	}
	return "RSPO-" + groups[1], true
}

var fishingCodeStore = resource.NewStore(func() (*matcher.KeywordProcessor, error) {
	keywords, err := resource.LoadDictionary("fishing_codes.txt", nil)
	if err != nil {
		return nil, err
	}
	return matcher.NewKeywordProcessor(keywords, false), nil
})

// FindPackagerCodes extracts packager/approval codes: the regional regex
// table plus a flat fishing-code dictionary layered on top. Both sources
// contribute predictions independently; no deduplication happens here.
func FindPackagerCodes(doc *ocr.Document) ([]models.Prediction, error) {
	var predictions []models.Prediction

	for _, name := range packagerCodeMatcherOrder {
		fm := packagerCodeMatchers[name]
		for _, m := range fm.FindAll(doc) {
			value, ok := fm.Process(m.Groups)
			if !ok {
				continue
			}
			predictions = append(predictions, models.Prediction{
				Type:  models.TypePackagerCode,
				Value: value,
				Data: map[string]interface{}{
					"raw":    m.Groups[0],
					"type":   name,
					"notify": fm.Notify,
				},
				AutomaticProcessing: true,
				Predictor:           "regex",
				PredictorVersion:    packagerCodeVersion,
			})
		}
	}

	processor, err := fishingCodeStore.Get()
	if err != nil {
		return nil, err
	}
	text := doc.GetText(ocr.FieldFullTextContiguous, true)
	for _, m := range processor.Extract(text) {
		predictions = append(predictions, models.Prediction{
			Type:  models.TypePackagerCode,
			Value: strings.ToUpper(m.Keyword.Key),
			Data: map[string]interface{}{
				"raw":  text[m.Start:m.End],
				"type": "fishing",
			},
			AutomaticProcessing: true,
			Predictor:           "flashtext",
			PredictorVersion:    packagerCodeVersion,
		})
	}

	return predictions, nil
}
