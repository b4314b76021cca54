// Package slug turns Greek and Latin text into URL slugs and folds text for
// accent-insensitive matching.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Greek digraphs are matched before single letters.
var greekDigraphs = []struct{ from, to string }{
	{"ου", "ou"},
	{"αι", "ai"},
	{"ει", "ei"},
	{"οι", "oi"},
	{"μπ", "mp"},
	{"ντ", "nt"},
	{"γκ", "gk"},
}

var greekLetters = map[rune]string{
	'α': "a", 'β': "v", 'γ': "g", 'δ': "d", 'ε': "e", 'ζ': "z",
	'η': "i", 'θ': "th", 'ι': "i", 'κ': "k", 'λ': "l", 'μ': "m",
	'ν': "n", 'ξ': "x", 'ο': "o", 'π': "p", 'ρ': "r", 'σ': "s",
	'ς': "s", 'τ': "t", 'υ': "y", 'φ': "f", 'χ': "ch", 'ψ': "ps",
	'ω': "o",
}

// Fold lowercases s and strips combining marks, so "Ελιά" and "ελια" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Make builds a lowercase, dash separated ASCII slug.
func Make(s string) string {
	s = Fold(s)
	for _, d := range greekDigraphs {
		s = strings.ReplaceAll(s, d.from, d.to)
	}

	var b strings.Builder
	dash := false
	for _, r := range s {
		if latin, ok := greekLetters[r]; ok {
			b.WriteString(latin)
			dash = false
			continue
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}
