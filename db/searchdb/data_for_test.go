package searchdb

import (
	"log/slog"
	"os"
	"time"

	"github.com/meghashyamc/vidcat/logger"
)

var testNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestLogger() logger.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func testVideos() []Video {
	return []Video{
		{
			ID:          "v1",
			Title:       "İstanbul Gezisi",
			Description: "Boğaz turu ve tarihi yarımada",
			Category:    []Category{{ID: "travel", Name: "Travel", Active: true}},
			Platforms: []Platform{
				{ID: "p1", Name: "YouTube", URL: "https://youtube.example/v1", Quality: "1080p"},
				{ID: "p2", Name: "Vimeo", URL: "https://vimeo.example/v1", Quality: "4K"},
			},
			Views:      5,
			Statistics: Statistics{Likes: 10, Downloads: 1},
			CreatedAt:  testNow.Add(-2 * time.Hour),
		},
		{
			ID:          "v2",
			Title:       "Street food tour",
			Description: "Tasting kebab\nand baklava",
			Category: []Category{
				{ID: "food", Name: "Food", Active: true},
				{ID: "travel", Name: "Travel", Active: false},
			},
			Platforms:  []Platform{{ID: "p3", Name: "YouTube", URL: "https://youtube.example/v2", Quality: "720p"}},
			Views:      5,
			Statistics: Statistics{Likes: 3, Downloads: 7},
			CreatedAt:  testNow.Add(-48 * time.Hour),
		},
		{
			ID:          "v3",
			Title:       "Cooking at home",
			Description: "Simple recipes",
			Category:    []Category{{ID: "food", Name: "Food", Active: true}},
			Platforms:   []Platform{{ID: "p4", Name: "Dailymotion", URL: "https://dm.example/v3", Quality: "480p"}},
			Views:       2,
			Statistics:  Statistics{Likes: 30, Downloads: 0},
			CreatedAt:   testNow.Add(-400 * 24 * time.Hour),
		},
	}
}

func ids(videos []Video) []string {
	out := make([]string, 0, len(videos))
	for _, video := range videos {
		out = append(out, video.ID)
	}
	return out
}

type predicateTestCase struct {
	name        string
	filter      Predicate
	expectedIDs []string
}

// expectedIDs are listed in id order.
var predicateTestCases = []predicateTestCase{
	{name: "MatchAll", filter: MatchAll{}, expectedIDs: []string{"v1", "v2", "v3"}},
	{name: "EmptyAnd", filter: And{}, expectedIDs: []string{"v1", "v2", "v3"}},
	{name: "EmptyOr", filter: Or{}, expectedIDs: []string{}},
	{name: "TitleSubstringIgnoresCase", filter: Contains{Field: FieldTitle, Pattern: "FOOD"}, expectedIDs: []string{"v2"}},
	{name: "TitleDottedCapitalI", filter: Contains{Field: FieldTitle, Pattern: "istanbul"}, expectedIDs: []string{"v1"}},
	{name: "DescriptionAcrossLineBreak", filter: Contains{Field: FieldDescription, Pattern: "kebab\nand"}, expectedIDs: []string{"v2"}},
	{name: "DescriptionSpaceDoesNotMatchLineBreak", filter: Contains{Field: FieldDescription, Pattern: "kebab and"}, expectedIDs: []string{}},
	{name: "CategoryNameSubstring", filter: Contains{Field: FieldCategoryName, Pattern: "trav"}, expectedIDs: []string{"v1", "v2"}},
	{name: "PlatformName", filter: Equals{Field: FieldPlatformName, Value: "YouTube"}, expectedIDs: []string{"v1", "v2"}},
	{name: "PlatformNameIsExact", filter: Equals{Field: FieldPlatformName, Value: "youtube"}, expectedIDs: []string{}},
	{name: "PlatformQuality", filter: Equals{Field: FieldPlatformQuality, Value: "4K"}, expectedIDs: []string{"v1"}},
	{name: "ActiveCategoryOnly", filter: ActiveCategory{ID: "travel"}, expectedIDs: []string{"v1"}},
	{name: "Since", filter: Since{Field: FieldCreatedAt, Time: testNow.Add(-24 * time.Hour)}, expectedIDs: []string{"v1"}},
	{name: "SinceIsInclusive", filter: Since{Field: FieldCreatedAt, Time: testNow.Add(-48 * time.Hour)}, expectedIDs: []string{"v1", "v2"}},
	{
		name: "OrOfContains",
		filter: Or{
			Contains{Field: FieldTitle, Pattern: "cooking"},
			Contains{Field: FieldDescription, Pattern: "boğaz"},
		},
		expectedIDs: []string{"v1", "v3"},
	},
	{
		name: "AndOfTextAndFilters",
		filter: And{
			Or{Contains{Field: FieldTitle, Pattern: "o"}},
			Equals{Field: FieldPlatformName, Value: "YouTube"},
			ActiveCategory{ID: "food"},
		},
		expectedIDs: []string{"v2"},
	},
}

var idOrder = Sort{{Field: FieldID}}

type sortTestCase struct {
	name        string
	order       Sort
	expectedIDs []string
}

var sortTestCases = []sortTestCase{
	{name: "Newest", order: Sort{{Field: FieldCreatedAt, Descending: true}, {Field: FieldID}}, expectedIDs: []string{"v1", "v2", "v3"}},
	{name: "Oldest", order: Sort{{Field: FieldCreatedAt}, {Field: FieldID}}, expectedIDs: []string{"v3", "v2", "v1"}},
	{name: "ViewsWithTieBreak", order: Sort{{Field: FieldViews, Descending: true}, {Field: FieldID}}, expectedIDs: []string{"v1", "v2", "v3"}},
	{name: "Likes", order: Sort{{Field: FieldLikes, Descending: true}, {Field: FieldID}}, expectedIDs: []string{"v3", "v1", "v2"}},
	{name: "Downloads", order: Sort{{Field: FieldDownloads, Descending: true}, {Field: FieldID}}, expectedIDs: []string{"v2", "v1", "v3"}},
}
