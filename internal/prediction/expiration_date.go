package prediction

import (
	"regexp"
	"strings"
	"time"

	"robotoff/internal/matcher"
	"robotoff/internal/ocr"
	"robotoff/pkg/models"
)

const expirationDateVersion = "1.0"

// Dates before 2015 or after 2025 are treated as OCR noise (lot numbers,
// phone fragments) and silently discarded. This is a business-rule filter,
// not a parsing error.
const (
	minExpirationYear = 2015
	maxExpirationYear = 2025
)

// Two variants: 4-digit and 2-digit years, DD/MM with -, . or / separators.
// Digit-run boundaries on both sides: the leading non-digit group anchors
// the day, and the trailing digit-run capture stands in for a (?!\d)
// boundary. A match with surplus trailing digits is rejected by its
// processing function.
var expirationDateMatchers = map[string]matcher.FieldMatcher{
	"full_digits_long": {
		Regex:     regexp.MustCompile(`(?:^|[^0-9])(\d{2})[-./](\d{2})[-./](20\d{2})(\d*)`),
		Field:     ocr.FieldFullText,
		Lowercase: false,
		Process:   processFullYearDate,
	},
	"full_digits_short": {
		Regex:     regexp.MustCompile(`(?:^|[^0-9])(\d{2})[-./](\d{2})[-./](\d{2})(\d*)`),
		Field:     ocr.FieldFullText,
		Lowercase: false,
		Process:   processShortYearDate,
	},
}

func processFullYearDate(groups []string) (string, bool) {
	return parseExpirationDate(groups, "02/01/2006")
}

func processShortYearDate(groups []string) (string, bool) {
	return parseExpirationDate(groups, "02/01/06")
}

// parseExpirationDate strictly parses DD/MM/YY(YY), applies the plausible
// year window and re-serializes to ISO-8601.
func parseExpirationDate(groups []string, layout string) (string, bool) {
	if groups[4] != "" {
		// The year run continues: this is part of a longer number.
		return "", false
	}
	value := groups[1] + "/" + groups[2] + "/" + groups[3]
	date, err := time.Parse(layout, value)
	if err != nil {
		return "", false
	}
	if date.Year() < minExpirationYear || date.Year() > maxExpirationYear {
		return "", false
	}
	return date.Format("2006-01-02"), true
}

// FindExpirationDates extracts use-by dates from the document text.
func FindExpirationDates(doc *ocr.Document) ([]models.Prediction, error) {
	var predictions []models.Prediction
	seen := make(map[string]struct{})

	for _, key := range []string{"full_digits_long", "full_digits_short"} {
		fm := expirationDateMatchers[key]
		for _, m := range fm.FindAll(doc) {
			value, ok := fm.Process(m.Groups)
			if !ok {
				continue
			}
			raw := rawDate(m.Groups[0])
			if _, dup := seen[raw]; dup {
				continue
			}
			seen[raw] = struct{}{}
			predictions = append(predictions, models.Prediction{
				Type:  models.TypeExpirationDate,
				Value: value,
				Data: map[string]interface{}{
					"raw":  raw,
					"type": key,
				},
				AutomaticProcessing: true,
				Predictor:           "regex",
				PredictorVersion:    expirationDateVersion,
			})
		}
	}

	return predictions, nil
}

// rawDate drops the consumed leading boundary rune so the reported raw
// text starts at the day digits.
func rawDate(match string) string {
	return strings.TrimLeftFunc(match, func(r rune) bool {
		return r < '0' || r > '9'
	})
}
