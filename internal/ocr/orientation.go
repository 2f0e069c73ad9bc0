package ocr

import "sort"

// Orientation classifies how text is rotated within the image.
type Orientation string

const (
	OrientationUp      Orientation = "up"
	OrientationDown    Orientation = "down"
	OrientationLeft    Orientation = "left"
	OrientationRight   Orientation = "right"
	OrientationUnknown Orientation = "unknown"
)

// OrientationResult is the document-level orientation vote.
type OrientationResult struct {
	// Orientation is the majority orientation across all words.
	Orientation Orientation
	// Count holds the per-orientation word counts, for debugging.
	Count map[Orientation]int
}

// DetectOrientation classifies every word's bounding polygon and returns the
// majority orientation. A document without words yields OrientationUnknown.
func (d *Document) DetectOrientation() (OrientationResult, error) {
	words, err := d.Words()
	if err != nil {
		return OrientationResult{}, err
	}

	counts := make(map[Orientation]int)
	for _, w := range words {
		counts[detectPolyOrientation(w.BoundingBox)]++
	}

	result := OrientationResult{
		Orientation: OrientationUnknown,
		Count:       counts,
	}
	best := 0
	for _, orientation := range []Orientation{
		OrientationUp, OrientationDown, OrientationLeft, OrientationRight, OrientationUnknown,
	} {
		if counts[orientation] > best {
			best = counts[orientation]
			result.Orientation = orientation
		}
	}
	return result, nil
}

// detectPolyOrientation maps a word polygon to an orientation.
//
// Vision emits the four vertices clockwise starting at the word's top-left in
// reading order, so the positions of the two topmost vertices (smallest y)
// within the vertex list identify the rotation: indices (0,1) mean the word
// reads left to right (up), (1,2) rotated 90° counter-clockwise (left),
// (2,3) upside down, (0,3) rotated 90° clockwise (right). Any other pair,
// or a degenerate polygon, is unknown.
func detectPolyOrientation(poly BoundingPoly) Orientation {
	if len(poly.Vertices) != 4 {
		return OrientationUnknown
	}

	// Stable sort: vertices sharing the same y (the common, axis-aligned
	// case) must keep their original index order.
	indexes := []int{0, 1, 2, 3}
	sort.SliceStable(indexes, func(i, j int) bool {
		return poly.Vertices[indexes[i]].Y < poly.Vertices[indexes[j]].Y
	})

	first, second := indexes[0], indexes[1]
	if first > second {
		first, second = second, first
	}

	switch {
	case first == 0 && second == 1:
		return OrientationUp
	case first == 1 && second == 2:
		return OrientationLeft
	case first == 2 && second == 3:
		return OrientationDown
	case first == 0 && second == 3:
		return OrientationRight
	default:
		return OrientationUnknown
	}
}
