// Package ocr models the Google-Vision-shaped OCR payload produced for
// product images and exposes it as a queryable document.
//
// A Document wraps the first entry of the `{"responses": [...]}` envelope and
// offers several normalized text views (full text, contiguous text, raw
// text-annotation string, each with a lowercase variant) plus the visual
// annotations (logos, labels, safe search, faces) and derived signals
// (orientation, per-language word counts).
//
// Text views are never nil: when the structured full-text annotation is
// absent the full-text views fall back to the text-annotations string, and
// when that too is missing they are empty strings, so matching code never
// branches on a missing value.
package ocr

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// TextField selects which text view of a Document a matcher searches.
type TextField int

const (
	// FieldFullText is the structured full text, newline separated.
	FieldFullText TextField = iota
	// FieldFullTextContiguous is the full text with newlines replaced by
	// spaces and space runs collapsed.
	FieldFullTextContiguous
	// FieldTextAnnotations is the raw text of the first (whole-image)
	// text annotation.
	FieldTextAnnotations
)

var multipleSpacesRegex = regexp.MustCompile(` {2,}`)

// responseJSON is the wire shape of one entry of the "responses" list.
type responseJSON struct {
	TextAnnotations      []TextAnnotation      `json:"textAnnotations"`
	FullTextAnnotation   *fullTextJSON         `json:"fullTextAnnotation"`
	LogoAnnotations      []LogoAnnotation      `json:"logoAnnotations"`
	LabelAnnotations     []LabelAnnotation     `json:"labelAnnotations"`
	SafeSearchAnnotation *SafeSearchAnnotation `json:"safeSearchAnnotation"`
	FaceAnnotations      []FaceAnnotation      `json:"faceAnnotations"`
	Error                json.RawMessage       `json:"error"`
}

type envelopeJSON struct {
	Responses []json.RawMessage `json:"responses"`
}

// Document is the parsed OCR payload for a single image. It is immutable
// after construction except for the lazy materialization of the page tree.
type Document struct {
	textAnnotations []TextAnnotation
	fullText        *FullTextAnnotation
	logos           []LogoAnnotation
	labels          []LabelAnnotation
	safeSearch      *SafeSearchAnnotation
	faces           []FaceAnnotation

	// Cached text views, computed once at construction.
	fullTextStr          string
	fullTextLower        string
	contiguousStr        string
	contiguousLower      string
	textAnnotationsStr   string
	textAnnotationsLower string
}

// FromJSON parses a raw `{"responses": [...]}` OCR envelope.
//
// It fails with an *OCRError when the envelope is malformed: no "responses"
// list, an empty list, or a first response carrying an "error" field.
func FromJSON(data []byte) (*Document, error) {
	const op = "FromJSON"

	var envelope envelopeJSON
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, WrapOCRError(op, ErrInvalidJSON, err.Error())
	}
	if envelope.Responses == nil {
		return nil, WrapOCRError(op, ErrNoResponses, "")
	}
	if len(envelope.Responses) == 0 {
		return nil, WrapOCRError(op, ErrEmptyResponses, "")
	}

	var response responseJSON
	if err := json.Unmarshal(envelope.Responses[0], &response); err != nil {
		return nil, WrapOCRError(op, ErrInvalidJSON, err.Error())
	}
	if len(response.Error) > 0 {
		return nil, WrapOCRError(op, ErrResponseError, string(response.Error))
	}

	doc := &Document{
		textAnnotations: response.TextAnnotations,
		logos:           response.LogoAnnotations,
		labels:          response.LabelAnnotations,
		safeSearch:      response.SafeSearchAnnotation,
		faces:           response.FaceAnnotations,
	}
	if response.FullTextAnnotation != nil {
		doc.fullText = newFullTextAnnotation(*response.FullTextAnnotation)
	}
	doc.buildTextViews()
	return doc, nil
}

// FromText builds a degenerate document around a bare string: it exposes the
// string through every text view and carries no annotations. Used by tests
// and CLI tools that feed plain text to the extractors.
func FromText(text string) *Document {
	doc := &Document{
		fullText: &FullTextAnnotation{Text: text, parsed: true},
	}
	doc.buildTextViews()
	return doc
}

func (d *Document) buildTextViews() {
	if d.fullText != nil {
		d.fullTextStr = d.fullText.Text
	}
	d.contiguousStr = ContiguousText(d.fullTextStr)
	if len(d.textAnnotations) > 0 {
		d.textAnnotationsStr = d.textAnnotations[0].Text
	}
	d.fullTextLower = strings.ToLower(d.fullTextStr)
	d.contiguousLower = strings.ToLower(d.contiguousStr)
	d.textAnnotationsLower = strings.ToLower(d.textAnnotationsStr)
}

// ContiguousText replaces every newline with a single space and collapses
// runs of 2+ spaces into one. Downstream regexes assume single-space
// separators, so this transformation is reproduced byte for byte.
func ContiguousText(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	return multipleSpacesRegex.ReplaceAllString(text, " ")
}

// GetText returns the requested text view. Full-text views fall back to the
// text-annotations string when the structured full text is empty. The result
// is always a string, possibly empty, never an error for a known field; an
// unknown field is a programming error and panics.
func (d *Document) GetText(field TextField, lowercase bool) string {
	switch field {
	case FieldFullText:
		if d.fullTextStr == "" {
			return d.annotationsView(lowercase)
		}
		if lowercase {
			return d.fullTextLower
		}
		return d.fullTextStr
	case FieldFullTextContiguous:
		if d.contiguousStr == "" {
			return d.annotationsView(lowercase)
		}
		if lowercase {
			return d.contiguousLower
		}
		return d.contiguousStr
	case FieldTextAnnotations:
		return d.annotationsView(lowercase)
	default:
		panic(fmt.Sprintf("ocr: unknown text field %d", field))
	}
}

func (d *Document) annotationsView(lowercase bool) string {
	if lowercase {
		return d.textAnnotationsLower
	}
	return d.textAnnotationsStr
}

// FullText returns the structured full text, with fallback.
func (d *Document) FullText() string { return d.GetText(FieldFullText, false) }

// FullTextContiguous returns the contiguous full text, with fallback.
func (d *Document) FullTextContiguous() string {
	return d.GetText(FieldFullTextContiguous, false)
}

// LogoAnnotations returns the detected logos.
func (d *Document) LogoAnnotations() []LogoAnnotation { return d.logos }

// LabelAnnotations returns the detected image labels.
func (d *Document) LabelAnnotations() []LabelAnnotation { return d.labels }

// SafeSearch returns the safe-search likelihoods, or nil.
func (d *Document) SafeSearch() *SafeSearchAnnotation { return d.safeSearch }

// FaceAnnotations returns the detected faces.
func (d *Document) FaceAnnotations() []FaceAnnotation { return d.faces }

// Words materializes the page tree and returns every detected word in
// reading order.
func (d *Document) Words() ([]*Word, error) {
	if d.fullText == nil {
		return nil, nil
	}
	pages, err := d.fullText.Pages()
	if err != nil {
		return nil, err
	}
	var words []*Word
	for p := range pages {
		for b := range pages[p].Blocks {
			for g := range pages[p].Blocks[b].Paragraphs {
				paragraph := &pages[p].Blocks[b].Paragraphs[g]
				for w := range paragraph.Words {
					words = append(words, &paragraph.Words[w])
				}
			}
		}
	}
	return words, nil
}

// WordsInRange returns the words whose character span overlaps
// [start, end) in the full text. Used to map regex matches back to geometry.
func (d *Document) WordsInRange(start, end int) ([]*Word, error) {
	words, err := d.Words()
	if err != nil {
		return nil, err
	}
	var selected []*Word
	for _, w := range words {
		if w.StartIdx < 0 {
			continue
		}
		if w.StartIdx < end && w.EndIdx > start {
			selected = append(selected, w)
		}
	}
	return selected, nil
}

// MatchBoundingBox returns the absolute bounding box (yMin, xMin, yMax, xMax)
// covering the words overlapping [start, end), or false when the span maps
// to no located word.
func (d *Document) MatchBoundingBox(start, end int) ([4]int, bool) {
	words, err := d.WordsInRange(start, end)
	if err != nil || len(words) == 0 {
		return [4]int{}, false
	}
	yMin, xMin := int(^uint(0)>>1), int(^uint(0)>>1)
	yMax, xMax := 0, 0
	for _, w := range words {
		for _, v := range w.BoundingBox.Vertices {
			if v.Y < yMin {
				yMin = v.Y
			}
			if v.Y > yMax {
				yMax = v.Y
			}
			if v.X < xMin {
				xMin = v.X
			}
			if v.X > xMax {
				xMax = v.X
			}
		}
	}
	return [4]int{yMin, xMin, yMax, xMax}, true
}

// LanguagesCount aggregates per-word detected languages. Each word increments
// the counter of every language attached to it, words without language
// metadata increment the "null" bucket, and the "words" bucket counts every
// word. Callers convert counts to percentages.
func (d *Document) LanguagesCount() (map[string]int, error) {
	words, err := d.Words()
	if err != nil {
		return nil, err
	}
	counts := map[string]int{"words": 0}
	for _, w := range words {
		counts["words"]++
		languages := w.DetectedLanguages()
		if len(languages) == 0 {
			counts["null"]++
			continue
		}
		for _, lang := range languages {
			counts[lang.LanguageCode]++
		}
	}
	return counts, nil
}
