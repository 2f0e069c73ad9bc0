package prediction

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"robotoff/internal/ocr"
	"robotoff/pkg/models"
)

// annotationsDoc builds a document whose text lives in the flat
// text-annotations list only, the view the EMB matcher searches.
func annotationsDoc(t *testing.T, text string) *ocr.Document {
	t.Helper()
	envelope := fmt.Sprintf(`{"responses": [{"textAnnotations": [{"description": %q}]}]}`, text)
	doc, err := ocr.FromJSON([]byte(envelope))
	require.NoError(t, err)
	return doc
}

func packagerCodes(t *testing.T, doc *ocr.Document) []models.Prediction {
	t.Helper()
	predictions, err := FindPackagerCodes(doc)
	require.NoError(t, err)
	return predictions
}

func TestFindPackagerCodesFrenchEmb(t *testing.T) {
	doc := annotationsDoc(t, "EMB 50155B\nconditionné par")

	predictions := packagerCodes(t, doc)
	require.Len(t, predictions, 1)

	p := predictions[0]
	assert.Equal(t, models.TypePackagerCode, p.Type)
	assert.Equal(t, "EMB 50155B", p.Value)
	assert.Equal(t, "fr_emb", p.Data["type"])
	assert.True(t, p.AutomaticProcessing)
	assert.Equal(t, "regex", p.Predictor)
}

func TestFindPackagerCodesFrenchApproval(t *testing.T) {
	doc := ocr.FromText("estampille FR 38.012.001 CE sanitaire")

	predictions := packagerCodes(t, doc)
	require.Len(t, predictions, 1)
	assert.Equal(t, "FR 38.012.001 EC", predictions[0].Value)
	assert.Equal(t, "eu_fr", predictions[0].Data["type"])
}

func TestFindPackagerCodesGermanApproval(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "valid company length",
			input:    "DE BY-718 EC",
			expected: []string{"DE BY-718 EC"},
		},
		{
			name:     "company too short for the state",
			input:    "DE HB-12 EC",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := ocr.FromText(tt.input)
			predictions := packagerCodes(t, doc)

			var values []string
			for _, p := range predictions {
				values = append(values, p.Value)
			}
			assert.Equal(t, tt.expected, values)
		})
	}
}

func TestFindPackagerCodesFsc(t *testing.T) {
	doc := ocr.FromText("certifié FSC-C123456 papier")

	predictions := packagerCodes(t, doc)
	require.Len(t, predictions, 1)
	assert.Equal(t, "FSC-C123456", predictions[0].Value)

	// Surplus digits mean a different code entirely.
	doc = ocr.FromText("FSC-C1234567")
	assert.Empty(t, packagerCodes(t, doc))
}

func TestFindPackagerCodesRspo(t *testing.T) {
	doc := ocr.FromText("huile de palme durable RSPO-5068502")

	predictions := packagerCodes(t, doc)
	require.Len(t, predictions, 1)
	assert.Equal(t, "RSPO-5068502", predictions[0].Value)

	doc = ocr.FromText("RSPO-50685021")
	assert.Empty(t, packagerCodes(t, doc))
}

func TestFindPackagerCodesFishing(t *testing.T) {
	doc := ocr.FromText("pêché en Atlantique Nord-Est (FAO 27)")

	predictions := packagerCodes(t, doc)
	require.Len(t, predictions, 2)
	for _, p := range predictions {
		assert.Equal(t, "FAO-27", p.Value)
		assert.Equal(t, "fishing", p.Data["type"])
		assert.Equal(t, "flashtext", p.Predictor)
	}
}

func TestFindPackagerCodesNoMatch(t *testing.T) {
	doc := ocr.FromText("liste des ingrédients sans codes")
	assert.Empty(t, packagerCodes(t, doc))
}

// A canonical code must re-match the regex that produced it once lowered,
// so re-running extraction over already-canonicalized text is stable.
func TestPackagerCodeCanonicalValuesRematch(t *testing.T) {
	tests := []struct {
		matcher string
		input   string
	}{
		{"fr_emb", "EMB 50155B"},
		{"eu_fr", "FR 38.012.001 CE"},
		{"eu_de", "DE BY-718 EC"},
		{"fsc", "FSC-C123456"},
		{"rspo", "RSPO-5068502"},
	}

	for _, tt := range tests {
		t.Run(tt.matcher, func(t *testing.T) {
			fm := packagerCodeMatchers[tt.matcher]

			doc := ocr.FromText(tt.input)
			if fm.Field == ocr.FieldTextAnnotations {
				doc = annotationsDoc(t, tt.input)
			}

			matches := fm.FindAll(doc)
			require.Len(t, matches, 1)
			value, ok := fm.Process(matches[0].Groups)
			require.True(t, ok)

			assert.True(t, fm.Regex.MatchString(strings.ToLower(value)),
				"canonical value %q does not re-match its source pattern", value)
		})
	}
}

func TestPackagerCodeMatcherOrderCoversTable(t *testing.T) {
	var names []string
	for name := range packagerCodeMatchers {
		names = append(names, name)
	}
	assert.ElementsMatch(t, packagerCodeMatcherOrder, names)
}
