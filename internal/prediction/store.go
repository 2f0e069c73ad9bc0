package prediction

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"robotoff/internal/matcher"
	"robotoff/internal/ocr"
	"robotoff/internal/resource"
	"robotoff/pkg/models"
)

const storeVersion = "1.0"

// notifyStores flags store chains whose detection should be brought to a
// moderator's attention (own-brand products are often mislabeled).
var notifyStores = map[string]struct{}{
	"carrefour":   {},
	"auchan":      {},
	"leclerc":     {},
	"intermarche": {},
}

type storePattern struct {
	keyword matcher.Keyword
	notify  bool
}

type storeMatcher struct {
	regex    *regexp.Regexp
	patterns []storePattern
}

// storeMatcherStore compiles the curated store list into a single
// alternation regex. Entries are sorted by (-len(name), name) before
// compilation so the longest store name wins at any position, which is the
// greedy-correct precedence for a first-alternative-wins engine.
var storeMatcherStore = resource.NewStore(func() (*storeMatcher, error) {
	keywords, err := resource.LoadDictionary("stores.txt", nil)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(keywords, func(i, j int) bool {
		if len(keywords[i].Name) != len(keywords[j].Name) {
			return len(keywords[i].Name) > len(keywords[j].Name)
		}
		return keywords[i].Name < keywords[j].Name
	})

	patterns := make([]storePattern, len(keywords))
	alternatives := make([]string, len(keywords))
	for i, kw := range keywords {
		_, notify := notifyStores[kw.Key]
		patterns[i] = storePattern{keyword: kw, notify: notify}
		if kw.Regex != "" {
			// Overrides must use non-capturing groups: one capture per
			// store keeps group index i+1 aligned with patterns[i].
			alternatives[i] = fmt.Sprintf(`(%s)`, kw.Regex)
		} else {
			alternatives[i] = fmt.Sprintf(`(%s)`, regexp.QuoteMeta(strings.ToLower(kw.Name)))
		}
	}

	pattern := fmt.Sprintf(`(?:^|[^\w])(?:%s)(?:$|[^\w])`, strings.Join(alternatives, "|"))
	regex, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("prediction: compiling store regex: %w", err)
	}
	return &storeMatcher{regex: regex, patterns: patterns}, nil
})

// FindStores matches the curated store-chain list against the document.
func FindStores(doc *ocr.Document) ([]models.Prediction, error) {
	sm, err := storeMatcherStore.Get()
	if err != nil {
		return nil, err
	}

	content := doc.GetText(ocr.FieldFullTextContiguous, true)
	if content == "" {
		return nil, nil
	}

	var predictions []models.Prediction
	for _, groups := range sm.regex.FindAllStringSubmatch(content, -1) {
		// Group i+1 corresponds to patterns[i]; exactly one is non-empty.
		for i, captured := range groups[1:] {
			if captured == "" {
				continue
			}
			p := sm.patterns[i]
			predictions = append(predictions, models.Prediction{
				Type:     models.TypeStore,
				Value:    p.keyword.Name,
				ValueTag: p.keyword.Key,
				Data: map[string]interface{}{
					"raw":    captured,
					"notify": p.notify,
				},
				Predictor:        "regex",
				PredictorVersion: storeVersion,
			})
			break
		}
	}
	return predictions, nil
}
