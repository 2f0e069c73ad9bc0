// Package taxonomy models the hierarchical vocabularies (countries,
// ingredients, labels) used to canonicalize free-text matches into stable
// identifiers.
package taxonomy

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"robotoff/internal/text"
)

// Node is one taxonomy entry: localized names, per-language synonyms and
// parent links.
type Node struct {
	Names    map[string]string   `json:"name"`
	Synonyms map[string][]string `json:"synonyms"`
	Parents  []string            `json:"parents"`
}

// Name returns the node's name in lang, or "".
func (n *Node) Name(lang string) string {
	if n == nil {
		return ""
	}
	return n.Names[lang]
}

// Taxonomy maps canonical identifiers (e.g. "en:france") to nodes.
type Taxonomy map[string]*Node

// Load decodes a taxonomy JSON file.
func Load(r io.Reader) (Taxonomy, error) {
	var t Taxonomy
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("taxonomy: decoding: %w", err)
	}
	return t, nil
}

// Get returns the node for id, or nil.
func (t Taxonomy) Get(id string) *Node {
	return t[id]
}

// ResolveSynonym returns the canonical identifier whose name or synonyms in
// lang match value (compared as slugs, so case and accents are ignored), or
// "" when the value is unknown.
func (t Taxonomy) ResolveSynonym(value, lang string) string {
	slug := text.Slugify(value)
	if slug == "" {
		return ""
	}
	for id, node := range t {
		if text.Slugify(node.Names[lang]) == slug {
			return id
		}
		for _, synonym := range node.Synonyms[lang] {
			if text.Slugify(synonym) == slug {
				return id
			}
		}
	}
	return ""
}

// AllSynonyms returns every name and synonym of every node in lang,
// lowercased, deduplicated, without a guaranteed order. Used to build
// alternation patterns.
func (t Taxonomy) AllSynonyms(lang string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(s string) {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, node := range t {
		add(node.Names[lang])
		for _, synonym := range node.Synonyms[lang] {
			add(synonym)
		}
	}
	return out
}
