package prediction

import (
	"regexp"

	"robotoff/internal/matcher"
	"robotoff/internal/ocr"
	"robotoff/internal/resource"
	"robotoff/pkg/models"
)

const locationVersion = "1.0"

// City is one entry of the French city gazetteer.
type City struct {
	Name       string      `json:"name"`
	PostalCode string      `json:"postal_code"`
	GPS        *[2]float64 `json:"gps,omitempty"`
}

// CityFinder matches city names in text and confirms each candidate by
// locating the city's postal code in the surrounding characters.
type CityFinder struct {
	cities    []City
	processor *matcher.KeywordProcessor

	// PostalDistance bounds how far (in bytes) from the city name the
	// postal code may sit.
	PostalDistance int
	// ExtractDistance sizes the surrounding-text extract kept for human
	// review, counted from the ends of the combined city+code span.
	ExtractDistance int
}

// postalCodeRegex matches a 5-digit code not glued to other digits.
var postalCodeRegex = regexp.MustCompile(`(?:^|[^0-9])(\d{5})(?:$|[^0-9])`)

// NewCityFinder builds a finder over an explicit gazetteer.
func NewCityFinder(cities []City, postalDistance, extractDistance int) *CityFinder {
	keywords := make([]matcher.Keyword, len(cities))
	for i, c := range cities {
		keywords[i] = matcher.Keyword{Key: c.PostalCode, Name: c.Name}
	}
	return &CityFinder{
		cities:          cities,
		processor:       matcher.NewKeywordProcessor(keywords, false),
		PostalDistance:  postalDistance,
		ExtractDistance: extractDistance,
	}
}

// Find returns one prediction per city name whose postal code appears within
// PostalDistance characters of the name. Matches without a confirming code
// are dropped.
func (f *CityFinder) Find(content string) []models.Prediction {
	var predictions []models.Prediction
	for _, m := range f.processor.Extract(content) {
		postalCode := m.Keyword.Key
		codeStart, codeEnd, found := f.findPostalCode(content, m, postalCode)
		if !found {
			continue
		}

		spanStart, spanEnd := m.Start, m.End
		if codeStart < spanStart {
			spanStart = codeStart
		}
		if codeEnd > spanEnd {
			spanEnd = codeEnd
		}

		predictions = append(predictions, models.Prediction{
			Type: models.TypeLocation,
			Data: map[string]interface{}{
				"country_code": "fr",
				"city":         m.Keyword.Name,
				"postal_code":  postalCode,
				"text_extract": extractWindow(content, spanStart, spanEnd, f.ExtractDistance),
			},
			Predictor:        "flashtext",
			PredictorVersion: locationVersion,
		})
	}
	return predictions
}

// findPostalCode searches the window around the city match for the city's
// postal code, returning its absolute span.
func (f *CityFinder) findPostalCode(content string, m matcher.KeywordMatch, postalCode string) (int, int, bool) {
	start := m.Start - f.PostalDistance
	if start < 0 {
		start = 0
	}
	end := m.End + f.PostalDistance
	if end > len(content) {
		end = len(content)
	}
	window := content[start:end]

	for _, span := range postalCodeRegex.FindAllStringSubmatchIndex(window, -1) {
		if window[span[2]:span[3]] == postalCode {
			return start + span[2], start + span[3], true
		}
	}
	return 0, 0, false
}

func extractWindow(content string, start, end, distance int) string {
	start -= distance
	if start < 0 {
		start = 0
	}
	end += distance
	if end > len(content) {
		end = len(content)
	}
	return content[start:end]
}

const (
	defaultPostalDistance  = 10
	defaultExtractDistance = 30
)

var cityFinderStore = resource.NewStore(func() (*CityFinder, error) {
	var cities []City
	if err := resource.LoadGzippedJSON("fr_cities.json.gz", &cities); err != nil {
		return nil, err
	}
	return NewCityFinder(cities, defaultPostalDistance, defaultExtractDistance), nil
})

// FindLocations extracts French city/postal-code pairs using the bundled
// gazetteer.
func FindLocations(doc *ocr.Document) ([]models.Prediction, error) {
	finder, err := cityFinderStore.Get()
	if err != nil {
		return nil, err
	}
	content := doc.GetText(ocr.FieldFullTextContiguous, true)
	if content == "" {
		return nil, nil
	}
	return finder.Find(content), nil
}
