// Package i18n localizes notification and email text.
//
// Each supported language has a nested JSON file under locales/. Keys are
// flattened to dot notation ("producer.verified.title"). Lookups fall back to
// the default language and finally to the key itself.
package i18n

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"slices"
	"strings"
)

// SupportedLanguages lists the locale files that must exist.
var SupportedLanguages = []string{"el", "en"}

// DefaultLanguage is used for unknown or empty language codes.
const DefaultLanguage = "el"

// Catalog holds every loaded translation. It is read-only after Load.
type Catalog struct {
	messages map[string]map[string]string
}

// Load reads <lang>.json for each supported language from localesFS.
func Load(localesFS fs.FS) (*Catalog, error) {
	c := &Catalog{messages: make(map[string]map[string]string)}

	for _, lang := range SupportedLanguages {
		fileName := lang + ".json"

		data, err := fs.ReadFile(localesFS, fileName)
		if err != nil {
			return nil, fmt.Errorf("failed to read translation file %s: %w", fileName, err)
		}

		var nested map[string]any
		if err := json.Unmarshal(data, &nested); err != nil {
			return nil, fmt.Errorf("failed to parse translation file %s: %w", fileName, err)
		}

		flat := make(map[string]string)
		flatten("", nested, flat)
		c.messages[lang] = flat
	}

	return c, nil
}

// Len returns the number of keys for lang.
func (c *Catalog) Len(lang string) int { return len(c.messages[lang]) }

// Localizer translates into one language.
type Localizer struct {
	catalog *Catalog
	lang    string
}

// Localizer returns a Localizer for lang, falling back to DefaultLanguage.
func (c *Catalog) Localizer(lang string) *Localizer {
	if !slices.Contains(SupportedLanguages, lang) {
		lang = DefaultLanguage
	}
	return &Localizer{catalog: c, lang: lang}
}

// Lang is the effective language.
func (l *Localizer) Lang() string { return l.lang }

// T returns the message for key.
func (l *Localizer) T(key string) string {
	if msg, ok := l.catalog.messages[l.lang][key]; ok {
		return msg
	}
	if msg, ok := l.catalog.messages[DefaultLanguage][key]; ok {
		return msg
	}
	return key
}

// TWithParams replaces {{name}} placeholders in the message for key.
func (l *Localizer) TWithParams(key string, params map[string]string) string {
	msg := l.T(key)
	for k, v := range params {
		msg = strings.ReplaceAll(msg, "{{"+k+"}}", v)
	}
	return msg
}

// DetectLanguage picks the first supported language from an Accept-Language header.
func DetectLanguage(acceptLanguage string) string {
	for _, part := range strings.Split(acceptLanguage, ",") {
		tag, _, _ := strings.Cut(part, ";")
		base, _, _ := strings.Cut(strings.TrimSpace(tag), "-")
		base = strings.ToLower(base)

		if slices.Contains(SupportedLanguages, base) {
			return base
		}
	}
	return DefaultLanguage
}

func flatten(prefix string, src map[string]any, dst map[string]string) {
	for k, v := range src {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		switch val := v.(type) {
		case string:
			dst[key] = val
		case map[string]any:
			flatten(key, val, dst)
		}
	}
}
