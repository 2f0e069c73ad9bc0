package prediction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"robotoff/internal/ocr"
	"robotoff/pkg/models"
)

func imageDoc(t *testing.T, envelope string) *ocr.Document {
	t.Helper()
	doc, err := ocr.FromJSON([]byte(envelope))
	require.NoError(t, err)
	return doc
}

func TestFindImageFlagsSafeSearch(t *testing.T) {
	doc := imageDoc(t, `{"responses": [{
		"safeSearchAnnotation": {
			"adult": "VERY_LIKELY",
			"spoof": "VERY_LIKELY",
			"medical": "UNLIKELY",
			"violence": "POSSIBLE",
			"racy": "LIKELY"
		}
	}]}`)

	predictions, err := FindImageFlags(doc)
	require.NoError(t, err)
	require.Len(t, predictions, 1)

	p := predictions[0]
	assert.Equal(t, models.TypeImageFlag, p.Type)
	assert.Equal(t, "safe_search", p.Data["type"])
	assert.Equal(t, "adult", p.Data["label"])
	assert.Equal(t, "VERY_LIKELY", p.Data["likelihood"])
}

func TestFindImageFlagsFace(t *testing.T) {
	doc := imageDoc(t, `{"responses": [{
		"faceAnnotations": [
			{"detectionConfidence": 0.3},
			{"detectionConfidence": 0.85},
			{"detectionConfidence": 0.9}
		]
	}]}`)

	predictions, err := FindImageFlags(doc)
	require.NoError(t, err)
	require.Len(t, predictions, 1)
	assert.Equal(t, "face_annotation", predictions[0].Data["type"])
	assert.Equal(t, 0.85, predictions[0].Confidence)
}

func TestFindImageFlagsLabel(t *testing.T) {
	doc := imageDoc(t, `{"responses": [{
		"labelAnnotations": [
			{"description": "Food", "score": 0.98},
			{"description": "Face", "score": 0.75}
		]
	}]}`)

	predictions, err := FindImageFlags(doc)
	require.NoError(t, err)
	require.Len(t, predictions, 1)
	assert.Equal(t, "label_annotation", predictions[0].Data["type"])
	assert.Equal(t, "Face", predictions[0].Data["label"])
}

func TestFindImageFlagsCleanImage(t *testing.T) {
	doc := imageDoc(t, `{"responses": [{
		"safeSearchAnnotation": {
			"adult": "VERY_UNLIKELY",
			"violence": "UNLIKELY"
		},
		"labelAnnotations": [{"description": "Food", "score": 0.98}]
	}]}`)

	predictions, err := FindImageFlags(doc)
	require.NoError(t, err)
	assert.Empty(t, predictions)
}

// rotatedEnvelope holds one word whose polygon is rotated 90 degrees
// counter-clockwise.
const rotatedEnvelope = `{"responses": [{
	"fullTextAnnotation": {
		"text": "abc\n",
		"pages": [{"blocks": [{"paragraphs": [{"words": [{
			"boundingBox": {"vertices": [{"x": 10, "y": 30}, {"x": 10, "y": 0}, {"x": 0, "y": 0}, {"x": 0, "y": 30}]},
			"symbols": [{"text": "a"}, {"text": "b"}, {"text": "c"}]
		}]}]}]}]
	}
}]}`

func TestFindImageOrientationRotated(t *testing.T) {
	doc := imageDoc(t, rotatedEnvelope)

	predictions, err := FindImageOrientation(doc)
	require.NoError(t, err)
	require.Len(t, predictions, 1)

	p := predictions[0]
	assert.Equal(t, models.TypeImageOrientation, p.Type)
	assert.Equal(t, "left", p.Value)
}

func TestFindImageOrientationUprightIsSilent(t *testing.T) {
	doc := imageDoc(t, `{"responses": [{
		"fullTextAnnotation": {
			"text": "abc\n",
			"pages": [{"blocks": [{"paragraphs": [{"words": [{
				"boundingBox": {"vertices": [{"x": 0, "y": 0}, {"x": 30, "y": 0}, {"x": 30, "y": 10}, {"x": 0, "y": 10}]},
				"symbols": [{"text": "a"}, {"text": "b"}, {"text": "c"}]
			}]}]}]}]
		}
	}]}`)

	predictions, err := FindImageOrientation(doc)
	require.NoError(t, err)
	assert.Empty(t, predictions)
}

func TestFindImageLang(t *testing.T) {
	doc := imageDoc(t, `{"responses": [{
		"fullTextAnnotation": {
			"text": "lait milk eau\n",
			"pages": [{"blocks": [{"paragraphs": [{"words": [
				{
					"symbols": [{"text": "l"}, {"text": "a"}, {"text": "i"}, {"text": "t"}],
					"property": {"detectedLanguages": [{"languageCode": "fr"}]}
				},
				{
					"symbols": [{"text": "m"}, {"text": "i"}, {"text": "l"}, {"text": "k"}],
					"property": {"detectedLanguages": [{"languageCode": "en"}]}
				},
				{
					"symbols": [{"text": "e"}, {"text": "a"}, {"text": "u"}]
				}
			]}]}]}]
		}
	}]}`)

	predictions, err := FindImageLang(doc)
	require.NoError(t, err)
	require.Len(t, predictions, 1)

	p := predictions[0]
	assert.Equal(t, models.TypeImageLang, p.Type)
	assert.Equal(t, 3, p.Data["word_count"])

	percent := p.Data["percent"].(map[string]float64)
	assert.InDelta(t, 100.0/3, percent["fr"], 1e-9)
	assert.InDelta(t, 100.0/3, percent["en"], 1e-9)
	assert.InDelta(t, 100.0/3, percent["null"], 1e-9)
}

func TestFindImageLangNoWords(t *testing.T) {
	predictions, err := FindImageLang(ocr.FromText("texte brut"))
	require.NoError(t, err)
	assert.Empty(t, predictions)
}
