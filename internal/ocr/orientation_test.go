package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Four rotations of the same 30x10 word box, vertices listed clockwise
// starting at the word's top-left in reading order.
var (
	polyUp = BoundingPoly{Vertices: []Vertex{
		{X: 0, Y: 0}, {X: 30, Y: 0}, {X: 30, Y: 10}, {X: 0, Y: 10},
	}}
	polyDown = BoundingPoly{Vertices: []Vertex{
		{X: 30, Y: 10}, {X: 0, Y: 10}, {X: 0, Y: 0}, {X: 30, Y: 0},
	}}
	polyLeft = BoundingPoly{Vertices: []Vertex{
		{X: 10, Y: 30}, {X: 10, Y: 0}, {X: 0, Y: 0}, {X: 0, Y: 30},
	}}
	polyRight = BoundingPoly{Vertices: []Vertex{
		{X: 0, Y: 0}, {X: 10, Y: 30}, {X: 0, Y: 30}, {X: 10, Y: 0},
	}}
)

func TestDetectPolyOrientation(t *testing.T) {
	tests := []struct {
		name     string
		poly     BoundingPoly
		expected Orientation
	}{
		{"reading order", polyUp, OrientationUp},
		{"upside down", polyDown, OrientationDown},
		{"rotated counter clockwise", polyLeft, OrientationLeft},
		{"rotated clockwise", polyRight, OrientationRight},
		{"degenerate polygon", BoundingPoly{Vertices: []Vertex{{X: 0, Y: 0}}}, OrientationUnknown},
		{"empty polygon", BoundingPoly{}, OrientationUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, detectPolyOrientation(tt.poly))
		})
	}
}

func orientationFixture(words []Word) *Document {
	full := &FullTextAnnotation{
		Text: "x",
		pages: []Page{
			{Blocks: []Block{{Paragraphs: []Paragraph{{Words: words}}}}},
		},
		parsed: true,
	}
	doc := &Document{fullText: full}
	doc.buildTextViews()
	return doc
}

func TestDetectOrientationMajorityVote(t *testing.T) {
	doc := orientationFixture([]Word{
		{BoundingBox: polyLeft},
		{BoundingBox: polyLeft},
		{BoundingBox: polyLeft},
		{BoundingBox: polyUp},
	})

	result, err := doc.DetectOrientation()
	require.NoError(t, err)
	assert.Equal(t, OrientationLeft, result.Orientation)
	assert.Equal(t, 3, result.Count[OrientationLeft])
	assert.Equal(t, 1, result.Count[OrientationUp])
}

func TestDetectOrientationEmptyDocument(t *testing.T) {
	doc := FromText("")

	result, err := doc.DetectOrientation()
	require.NoError(t, err)
	assert.Equal(t, OrientationUnknown, result.Orientation)
}
