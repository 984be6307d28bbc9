package search

import (
	"strings"
	"unicode/utf8"
)

const DefaultMaxVariants = 256

// letterVariants lists, per base letter, the spellings a title may use for it.
var letterVariants = map[rune][]rune{
	'i': {'ı', 'i', 'İ', 'I'},
	'o': {'o', 'ö', 'O', 'Ö'},
	'u': {'u', 'ü', 'U', 'Ü'},
	's': {'s', 'ş', 'S', 'Ş'},
	'c': {'c', 'ç', 'C', 'Ç'},
	'g': {'g', 'ğ', 'G', 'Ğ'},
	'a': {'a', 'â', 'A', 'Â'},
	'e': {'e', 'ê', 'E', 'Ê'},
}

// ExpandVariants returns word together with every spelling reachable by
// substituting qualifying letters from letterVariants, one position at a time,
// composing across positions. Variants are compared case-insensitively and
// the first spelling of each is kept, so limit only counts variants that can
// match different text. Positions are visited left to right and growth stops
// once limit variants exist. limit <= 0 means DefaultMaxVariants.
func ExpandVariants(word string, limit int) []string {
	if limit <= 0 {
		limit = DefaultMaxVariants
	}

	base := []rune(word)
	variants := [][]rune{base}
	seen := map[string]struct{}{strings.ToLower(word): {}}

	for position, r := range base {
		replacements, ok := letterVariants[toLowerASCII(r)]
		if !ok {
			continue
		}

		current := len(variants)
		for i := 0; i < current && len(variants) < limit; i++ {
			for _, replacement := range replacements {
				if len(variants) >= limit {
					break
				}
				candidate := make([]rune, len(variants[i]))
				copy(candidate, variants[i])
				candidate[position] = replacement

				key := strings.ToLower(string(candidate))
				if _, exists := seen[key]; exists {
					continue
				}
				seen[key] = struct{}{}
				variants = append(variants, candidate)
			}
		}
	}

	out := make([]string, 0, len(variants))
	for _, variant := range variants {
		out = append(out, string(variant))
	}
	return out
}

func toLowerASCII(r rune) rune {
	if r < utf8.RuneSelf && 'A' <= r && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
