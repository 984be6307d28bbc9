package search

import (
	"time"

	"github.com/meghashyamc/vidcat/db/searchdb"
)

const (
	TimeRangeToday = "today"
	TimeRangeWeek  = "week"
	TimeRangeMonth = "month"
	TimeRangeYear  = "year"
)

// Filters are the structural constraints of a request. Empty fields place no constraint.
type Filters struct {
	Category  string
	Platform  string
	Quality   string
	TimeRange string
}

// ComposeFilters AND-s one predicate per non-empty filter. now is the request
// timestamp and is the only clock the time range cutoff is derived from.
func ComposeFilters(filters Filters, now time.Time) searchdb.Predicate {
	and := searchdb.And{}

	if filters.Category != "" {
		and = append(and, searchdb.ActiveCategory{ID: filters.Category})
	}
	if filters.Platform != "" {
		and = append(and, searchdb.Equals{Field: searchdb.FieldPlatformName, Value: filters.Platform})
	}
	if filters.Quality != "" {
		and = append(and, searchdb.Equals{Field: searchdb.FieldPlatformQuality, Value: filters.Quality})
	}
	if cutoff, ok := TimeRangeCutoff(filters.TimeRange, now); ok {
		and = append(and, searchdb.Since{Field: searchdb.FieldCreatedAt, Time: cutoff})
	}

	return and
}

// TimeRangeCutoff returns the earliest creation time admitted by timeRange.
// ok is false for an empty or unknown range.
func TimeRangeCutoff(timeRange string, now time.Time) (cutoff time.Time, ok bool) {
	switch timeRange {
	case TimeRangeToday:
		return now.AddDate(0, 0, -1), true
	case TimeRangeWeek:
		return now.AddDate(0, 0, -7), true
	case TimeRangeMonth:
		return now.AddDate(0, -1, 0), true
	case TimeRangeYear:
		return now.AddDate(-1, 0, 0), true
	}
	return time.Time{}, false
}

func IsValidTimeRange(timeRange string) bool {
	_, ok := TimeRangeCutoff(timeRange, time.Time{})
	return ok
}
