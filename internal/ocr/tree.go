package ocr

import (
	"encoding/json"
	"strings"
	"sync"
)

// The structured full-text tree: pages contain blocks, blocks contain
// paragraphs, paragraphs contain words, words contain symbols. Deep documents
// are expensive to decode and most callers only ever need the flat text, so
// the page tree stays as raw JSON until first access.

// DetectedLanguage is a per-word (or per-symbol) language guess.
type DetectedLanguage struct {
	LanguageCode string  `json:"languageCode"`
	Confidence   float64 `json:"confidence,omitempty"`
}

// DetectedBreak marks the whitespace following (or prefixing) a symbol.
type DetectedBreak struct {
	Type     string `json:"type"`
	IsPrefix bool   `json:"isPrefix,omitempty"`
}

// TextProperty groups the optional metadata Vision attaches to words and symbols.
type TextProperty struct {
	DetectedLanguages []DetectedLanguage `json:"detectedLanguages,omitempty"`
	DetectedBreak     *DetectedBreak     `json:"detectedBreak,omitempty"`
}

// Symbol is a single detected character.
type Symbol struct {
	BoundingBox *BoundingPoly `json:"boundingBox,omitempty"`
	Text        string        `json:"text"`
	Confidence  float64       `json:"confidence,omitempty"`
	Property    *TextProperty `json:"property,omitempty"`
}

// Word is a detected word with its geometry and language metadata.
//
// StartIdx/EndIdx are byte offsets of the word within the document full text.
// They are filled in during page parsing and are consistent with the exact
// full-text string, which lets regex match positions map back to geometry.
type Word struct {
	BoundingBox BoundingPoly  `json:"boundingBox"`
	Symbols     []Symbol      `json:"symbols"`
	Property    *TextProperty `json:"property,omitempty"`

	StartIdx int `json:"-"`
	EndIdx   int `json:"-"`
}

// Text returns the word's symbols concatenated, without break characters.
func (w *Word) Text() string {
	var b strings.Builder
	for _, s := range w.Symbols {
		b.WriteString(s.Text)
	}
	return b.String()
}

// DetectedLanguages returns the word's language guesses, or nil.
func (w *Word) DetectedLanguages() []DetectedLanguage {
	if w.Property == nil {
		return nil
	}
	return w.Property.DetectedLanguages
}

// Paragraph groups consecutive words.
type Paragraph struct {
	BoundingBox *BoundingPoly `json:"boundingBox,omitempty"`
	Words       []Word        `json:"words"`
}

// Block is a layout block on a page.
type Block struct {
	BlockType   string        `json:"blockType,omitempty"`
	BoundingBox *BoundingPoly `json:"boundingBox,omitempty"`
	Paragraphs  []Paragraph   `json:"paragraphs"`
}

// Page is a single page of the structured text.
type Page struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Blocks []Block `json:"blocks"`
}

// FullTextAnnotation holds the flat text plus the (lazily decoded) page tree.
type FullTextAnnotation struct {
	// Text is the whole detected text, newline separated.
	Text string

	rawPages json.RawMessage

	mu     sync.Mutex
	pages  []Page
	parsed bool
}

// fullTextJSON is the wire shape of "fullTextAnnotation".
type fullTextJSON struct {
	Text  string          `json:"text"`
	Pages json.RawMessage `json:"pages"`
}

func newFullTextAnnotation(raw fullTextJSON) *FullTextAnnotation {
	return &FullTextAnnotation{
		Text:     raw.Text,
		rawPages: raw.Pages,
	}
}

// Pages decodes and returns the page tree, materializing it on first call.
// The decode is idempotent, so the lock only prevents duplicate work.
func (f *FullTextAnnotation) Pages() ([]Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.parsed {
		return f.pages, nil
	}

	var pages []Page
	if len(f.rawPages) > 0 {
		if err := json.Unmarshal(f.rawPages, &pages); err != nil {
			return nil, WrapOCRError("parsePages", ErrInvalidJSON, err.Error())
		}
	}

	f.assignWordOffsets(pages)
	f.pages = pages
	f.parsed = true
	f.rawPages = nil
	return f.pages, nil
}

// assignWordOffsets walks every word and locates its symbol concatenation in
// the full text, scanning forward from a cursor so repeated words resolve to
// successive occurrences. Words that cannot be located keep offsets (-1, -1).
func (f *FullTextAnnotation) assignWordOffsets(pages []Page) {
	cursor := 0
	for p := range pages {
		for b := range pages[p].Blocks {
			for g := range pages[p].Blocks[b].Paragraphs {
				words := pages[p].Blocks[b].Paragraphs[g].Words
				for w := range words {
					text := words[w].Text()
					if text == "" {
						words[w].StartIdx = -1
						words[w].EndIdx = -1
						continue
					}
					idx := strings.Index(f.Text[cursor:], text)
					if idx < 0 {
						words[w].StartIdx = -1
						words[w].EndIdx = -1
						continue
					}
					words[w].StartIdx = cursor + idx
					words[w].EndIdx = cursor + idx + len(text)
					cursor = words[w].EndIdx
				}
			}
		}
	}
}
