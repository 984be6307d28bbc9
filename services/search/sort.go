package search

import "github.com/meghashyamc/vidcat/db/searchdb"

const (
	SortDate      = "date"
	SortOldest    = "oldest"
	SortViews     = "views"
	SortLikes     = "likes"
	SortDownloads = "downloads"
)

var tieBreak = searchdb.SortKey{Field: searchdb.FieldID}

var sortKeys = map[string]searchdb.SortKey{
	SortDate:      {Field: searchdb.FieldCreatedAt, Descending: true},
	SortOldest:    {Field: searchdb.FieldCreatedAt},
	SortViews:     {Field: searchdb.FieldViews, Descending: true},
	SortLikes:     {Field: searchdb.FieldLikes, Descending: true},
	SortDownloads: {Field: searchdb.FieldDownloads, Descending: true},
}

// Option is a selectable value offered to clients, with a display label.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var (
	sortOptions = []Option{
		{Value: SortDate, Label: "Newest"},
		{Value: SortOldest, Label: "Oldest"},
		{Value: SortViews, Label: "Most viewed"},
		{Value: SortLikes, Label: "Most liked"},
		{Value: SortDownloads, Label: "Most downloaded"},
	}
	timeRanges = []Option{
		{Value: TimeRangeToday, Label: "Today"},
		{Value: TimeRangeWeek, Label: "This week"},
		{Value: TimeRangeMonth, Label: "This month"},
		{Value: TimeRangeYear, Label: "This year"},
	}
)

// ResolveSort maps sortBy to an ordering. Unknown values sort by date.
// Every ordering ends with id ascending so equal keys page deterministically.
func ResolveSort(sortBy string) searchdb.Sort {
	key, ok := sortKeys[sortBy]
	if !ok {
		key = sortKeys[SortDate]
	}
	return searchdb.Sort{key, tieBreak}
}

// EffectiveSort is the sort name ResolveSort actually applies for sortBy.
func EffectiveSort(sortBy string) string {
	if _, ok := sortKeys[sortBy]; ok {
		return sortBy
	}
	return SortDate
}

func SortOptions() []Option {
	return append([]Option(nil), sortOptions...)
}

func TimeRanges() []Option {
	return append([]Option(nil), timeRanges...)
}
