package search

import (
	"strings"
	"testing"

	"github.com/meghashyamc/vidcat/db/searchdb"
	"github.com/stretchr/testify/require"
)

func TestExpandVariants(t *testing.T) {
	type testCase struct {
		name  string
		word  string
		limit int
		want  []string
	}

	testCases := []testCase{
		{name: "NoQualifyingLetters", word: "xyz", want: []string{"xyz"}},
		{name: "SingleQualifyingLetter", word: "ab", want: []string{"ab", "âb"}},
		{name: "LimitKeepsOriginalFirst", word: "abc", limit: 2, want: []string{"abc", "âbc"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := require.New(t)
			assert.Equal(tc.want, ExpandVariants(tc.word, tc.limit))
		})
	}
}

func TestExpandVariantsComposesAcrossPositions(t *testing.T) {
	assert := require.New(t)
	variants := ExpandVariants("is", 0)

	assert.Equal([]string{"is", "ıs", "iş", "ış"}, variants)
}

func TestExpandVariantsIgnoresCaseOnlyDifferences(t *testing.T) {
	assert := require.New(t)
	variants := ExpandVariants("cekilis", 0)

	// c, e and s have two spellings each once case is folded; i has two, and İ folds to i
	assert.Len(variants, 32)
	assert.Contains(variants, "çekiliş")
	assert.Contains(variants, "çekılış")

	seen := map[string]bool{}
	for _, variant := range variants {
		key := strings.ToLower(variant)
		assert.False(seen[key], "duplicate variant %q", variant)
		seen[key] = true
	}
}

func TestExpandVariantsIsCapped(t *testing.T) {
	assert := require.New(t)
	assert.Len(ExpandVariants("aeiougcsa", 0), DefaultMaxVariants)
	assert.Len(ExpandVariants("aaaaaaaa", 10), 10)
	assert.Equal("aeiougcsa", ExpandVariants("aeiougcsa", 0)[0])
}

func TestBuildPatterns(t *testing.T) {
	t.Run("EmptyQuery", func(t *testing.T) {
		assert := require.New(t)
		assert.Nil(BuildPatterns("", 0))
	})

	t.Run("ShortWordsAreNotExpanded", func(t *testing.T) {
		assert := require.New(t)
		assert.Equal([]string{"ab cd"}, BuildPatterns("ab cd", 0))
	})

	t.Run("WholeQueryComesFirst", func(t *testing.T) {
		assert := require.New(t)
		patterns := BuildPatterns("street food", 0)
		assert.Equal("street food", patterns[0])
		assert.Contains(patterns, "street")
		assert.Contains(patterns, "ştrêet")
		assert.Contains(patterns, "föod")
	})

	t.Run("CaseOnlyVariantsAreCollapsed", func(t *testing.T) {
		assert := require.New(t)
		patterns := BuildPatterns("istanbul", 0)

		// i, s, a and u each have two case-insensitive spellings
		assert.Len(patterns, 16)
		assert.Contains(patterns, "istanbul")
		assert.Contains(patterns, "ıstanbul")
		assert.Contains(patterns, "ıştânbül")

		seen := map[string]bool{}
		for _, pattern := range patterns {
			key := strings.ToLower(pattern)
			assert.False(seen[key], "duplicate pattern %q", pattern)
			seen[key] = true
		}
	})
}

func TestTextPredicate(t *testing.T) {
	assert := require.New(t)
	assert.Equal(searchdb.MatchAll{}, TextPredicate(nil))
	assert.Equal(searchdb.Or{
		searchdb.Contains{Field: searchdb.FieldTitle, Pattern: "food"},
		searchdb.Contains{Field: searchdb.FieldDescription, Pattern: "food"},
	}, TextPredicate([]string{"food"}))
}

func TestFacetTextPredicateUsesOnlyTheWholeQuery(t *testing.T) {
	assert := require.New(t)
	assert.Equal(searchdb.MatchAll{}, facetTextPredicate(""))
	assert.Equal(searchdb.Or{
		searchdb.Contains{Field: searchdb.FieldTitle, Pattern: "street food"},
		searchdb.Contains{Field: searchdb.FieldDescription, Pattern: "street food"},
		searchdb.Contains{Field: searchdb.FieldCategoryName, Pattern: "street food"},
	}, facetTextPredicate("street food"))
}
