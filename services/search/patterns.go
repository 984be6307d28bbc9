package search

import (
	"strings"
	"unicode/utf8"

	"github.com/meghashyamc/vidcat/db/searchdb"
)

const minWordLength = 3

var (
	patternFields = []searchdb.Field{searchdb.FieldTitle, searchdb.FieldDescription}
	facetFields   = []searchdb.Field{searchdb.FieldTitle, searchdb.FieldDescription, searchdb.FieldCategoryName}
)

// BuildPatterns returns the whole normalized query followed by the spelling
// variants of each of its words longer than two characters. Patterns match
// case-insensitively, so variants that only differ in case are kept once.
func BuildPatterns(normalized string, maxVariants int) []string {
	if normalized == "" {
		return nil
	}

	patterns := []string{normalized}
	seen := map[string]struct{}{strings.ToLower(normalized): {}}

	for _, word := range strings.Split(normalized, " ") {
		if utf8.RuneCountInString(word) < minWordLength {
			continue
		}
		for _, variant := range ExpandVariants(word, maxVariants) {
			key := strings.ToLower(variant)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			patterns = append(patterns, variant)
		}
	}

	return patterns
}

// TextPredicate requires at least one pattern to occur in the title or the description.
// No patterns means no text constraint.
func TextPredicate(patterns []string) searchdb.Predicate {
	return anyFieldContains(patternFields, patterns)
}

// facetTextPredicate only uses the whole query, and also looks at category names.
func facetTextPredicate(normalized string) searchdb.Predicate {
	if normalized == "" {
		return searchdb.MatchAll{}
	}
	return anyFieldContains(facetFields, []string{normalized})
}

func anyFieldContains(fields []searchdb.Field, patterns []string) searchdb.Predicate {
	if len(patterns) == 0 {
		return searchdb.MatchAll{}
	}

	or := make(searchdb.Or, 0, len(patterns)*len(fields))
	for _, pattern := range patterns {
		for _, field := range fields {
			or = append(or, searchdb.Contains{Field: field, Pattern: pattern})
		}
	}
	return or
}
