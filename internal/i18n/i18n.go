package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// DefaultLanguage is used when a student has no stored preference.
const DefaultLanguage = "ru"

// Languages lists the supported language codes.
var Languages = []string{"ru", "uz"}

// Provider resolves translation keys to localized text. It is constructed
// once at startup and passed to every component that renders text; there is
// no package-level translation state.
type Provider struct {
	tables   map[string]map[string]string
	fallback string
}

// Load reads locales/<lang>/translations.json for every supported language.
// A missing file for a language is an error: shipping a half-translated
// bot is worse than failing at startup. fallback is the language used for
// users without a stored preference; empty means DefaultLanguage.
func Load(dir, fallback string) (*Provider, error) {
	if fallback == "" {
		fallback = DefaultLanguage
	}
	if !Supported(fallback) {
		return nil, fmt.Errorf("unsupported default language %q", fallback)
	}
	p := &Provider{tables: make(map[string]map[string]string), fallback: fallback}

	for _, lang := range Languages {
		path := filepath.Join(dir, lang, "translations.json")
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read locale %s: %w", lang, err)
		}

		var nested map[string]any
		if err := json.Unmarshal(raw, &nested); err != nil {
			return nil, fmt.Errorf("failed to parse locale %s: %w", lang, err)
		}

		table := make(map[string]string)
		flatten("", nested, table)
		p.tables[lang] = table
	}

	return p, nil
}

// flatten turns nested JSON objects into dotted keys: {"course":{"add":"x"}}
// becomes "course.add" -> "x".
func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case string:
			out[key] = val
		case map[string]any:
			flatten(key, val, out)
		}
	}
}

// Text returns the translation of key for the given language, falling back
// to the key itself when the key or the language is unknown.
func (p *Provider) Text(key, lang string) string {
	if lang == "" {
		lang = p.fallback
	}
	table, ok := p.tables[lang]
	if !ok {
		table = p.tables[p.fallback]
	}
	if text, ok := table[key]; ok {
		return text
	}
	return key
}

// Fallback returns the language used for users without a stored preference.
func (p *Provider) Fallback() string {
	return p.fallback
}

// All returns every translation of key across the supported languages, with
// duplicates collapsed. Used to match reply-keyboard button presses no
// matter what language the button was rendered in.
func (p *Provider) All(key string) []string {
	seen := make(map[string]struct{})
	for _, lang := range Languages {
		if text, ok := p.tables[lang][key]; ok {
			seen[text] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for text := range seen {
		out = append(out, text)
	}
	sort.Strings(out)
	return out
}

// Matches reports whether text equals the translation of key in any
// supported language.
func (p *Provider) Matches(text, key string) bool {
	for _, lang := range Languages {
		if t, ok := p.tables[lang][key]; ok && t == text {
			return true
		}
	}
	return false
}

// Supported reports whether lang is one of the configured language codes.
func Supported(lang string) bool {
	for _, l := range Languages {
		if l == lang {
			return true
		}
	}
	return false
}
