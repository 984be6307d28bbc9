package search

import (
	"context"
	"time"

	"github.com/meghashyamc/vidcat/db/searchdb"
)

// FeaturedWindow is how far back Featured looks before falling back to all videos.
const FeaturedWindow = 7 * 24 * time.Hour

// ListRequest pages through the catalog newest first, optionally within one category.
type ListRequest struct {
	Page     int
	Limit    int
	Category string
	Now      time.Time
}

type ListResponse struct {
	Videos      []FormattedVideo `json:"videos"`
	TotalPages  int              `json:"totalPages"`
	CurrentPage int              `json:"currentPage"`
	TotalVideos int              `json:"totalVideos"`
}

func (s *Service) List(ctx context.Context, req ListRequest) (*ListResponse, error) {
	clamped := s.clamp(Request{Page: req.Page, Limit: req.Limit, Now: req.Now})

	var filter searchdb.Predicate = searchdb.MatchAll{}
	if req.Category != "" {
		filter = searchdb.ActiveCategory{ID: req.Category}
	}
	skip := (clamped.Page - 1) * clamped.Limit

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	videos, err := s.db.Find(ctx, filter, ResolveSort(SortDate), skip, clamped.Limit)
	if err != nil {
		s.logger.Error("could not list videos", "category", req.Category, "err", err.Error())
		return nil, &executionError{cause: err}
	}
	total, err := s.db.Count(ctx, filter)
	if err != nil {
		s.logger.Error("could not count videos", "category", req.Category, "err", err.Error())
		return nil, &executionError{cause: err}
	}

	formatted := make([]FormattedVideo, 0, len(videos))
	for _, video := range videos {
		formatted = append(formatted, formatVideo(video, clamped.Now))
	}

	return &ListResponse{
		Videos:      formatted,
		TotalPages:  TotalPages(total, clamped.Limit),
		CurrentPage: clamped.Page,
		TotalVideos: total,
	}, nil
}

// Featured returns the most viewed video created within FeaturedWindow of now,
// or the most viewed video overall when none is that recent.
func (s *Service) Featured(ctx context.Context, now time.Time) (*FormattedVideo, error) {
	if now.IsZero() {
		now = time.Now()
	}
	order := ResolveSort(SortViews)

	for _, filter := range []searchdb.Predicate{
		searchdb.Since{Field: searchdb.FieldCreatedAt, Time: now.Add(-FeaturedWindow)},
		searchdb.MatchAll{},
	} {
		videos, err := s.db.Find(ctx, filter, order, 0, 1)
		if err != nil {
			s.logger.Error("could not find featured video", "filter", filter.String(), "err", err.Error())
			return nil, &executionError{cause: err}
		}
		if len(videos) > 0 {
			formatted := formatVideo(videos[0], now)
			return &formatted, nil
		}
	}

	return nil, ErrNoFeaturedVideo
}
