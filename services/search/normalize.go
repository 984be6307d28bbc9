package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases raw, strips diacritics, replaces every rune outside
// [a-z0-9], whitespace and '-' with a space and collapses whitespace.
// An empty result means the query places no constraint on text.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	lowered := strings.TrimSpace(strings.ToLower(raw))

	// Transformers are stateful, so each call builds its own chain
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	stripped, _, err := transform.String(stripMarks, lowered)
	if err != nil {
		stripped = lowered
	}

	cleaned := strings.Map(func(r rune) rune {
		switch {
		case 'a' <= r && r <= 'z', '0' <= r && r <= '9', r == '-':
			return r
		default:
			return ' '
		}
	}, stripped)

	return strings.Join(strings.Fields(cleaned), " ")
}

// Slugify turns a title into a lowercase, hyphen separated identifier.
func Slugify(title string) string {
	words := strings.Fields(strings.ReplaceAll(Normalize(title), "-", " "))
	return strings.Join(words, "-")
}
