package autolocale

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StaticDictionary is a literal phrase table keyed by language, then by
// source text. A lookup for "fr_RW" falls back to "fr" entries.
//
// File format:
//
//	fr:
//	  "Book now": "Réserver"
//	  "Check-in": "Arrivée"
//	rw:
//	  "Book now": "Bika"
type StaticDictionary struct {
	entries map[string]map[string]string
}

// NewStaticDictionary creates a dictionary from lang → text → translation.
func NewStaticDictionary(entries map[string]map[string]string) *StaticDictionary {
	normalized := make(map[string]map[string]string, len(entries))
	for lang, phrases := range entries {
		normalized[NormalizeLocale(lang)] = phrases
	}
	return &StaticDictionary{entries: normalized}
}

// ParseDictionary decodes a YAML dictionary.
func ParseDictionary(data []byte) (*StaticDictionary, error) {
	var entries map[string]map[string]string
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing dictionary: %w", err)
	}
	return NewStaticDictionary(entries), nil
}

// LoadDictionary reads a YAML dictionary file.
func LoadDictionary(path string) (*StaticDictionary, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseDictionary(data)
}

// Lookup returns the literal entry for text in lang.
func (d *StaticDictionary) Lookup(text, lang string) (string, bool) {
	lang = NormalizeLocale(lang)
	if v, ok := d.entries[lang][text]; ok {
		return v, true
	}
	if base := normalizeBaseLang(lang); base != lang {
		v, ok := d.entries[base][text]
		return v, ok
	}
	return "", false
}

// Len returns the number of phrases across all languages.
func (d *StaticDictionary) Len() int {
	n := 0
	for _, phrases := range d.entries {
		n += len(phrases)
	}
	return n
}

// Verify StaticDictionary implements Dictionary
var _ Dictionary = (*StaticDictionary)(nil)
