// Package text holds the normalization helpers shared by the extractors:
// accent stripping, taxonomy slug generation and weight/volume unit handling.
package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var accentStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// StripAccents removes combining marks: "éco" becomes "eco".
func StripAccents(s string) string {
	out, _, err := transform.String(accentStripper, s)
	if err != nil {
		return s
	}
	return out
}

// Slugify turns free text into a taxonomy slug: lower-case, accent-free,
// non-alphanumeric runs collapsed to single hyphens.
//
// Slugs are the canonical identifiers matched against taxonomies downstream,
// so this must stay stable.
func Slugify(s string) string {
	s = StripAccents(strings.ToLower(s))

	var b strings.Builder
	b.Grow(len(s))
	pendingHyphen := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}
