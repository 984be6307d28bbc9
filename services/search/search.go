package search

import (
	"context"
	"math"
	"time"

	"github.com/meghashyamc/vidcat/config"
	"github.com/meghashyamc/vidcat/db/searchdb"
	"github.com/meghashyamc/vidcat/logger"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultLimit = 8
	// MaxPage bounds the page number so the result offset always fits in an int.
	MaxPage = 100000
)

type Service struct {
	logger      logger.Logger
	db          searchdb.DB
	timeout     time.Duration
	maxVariants int
	maxPageSize int
}

func New(logger logger.Logger, db searchdb.DB, cfg *config.Config) *Service {
	return &Service{
		logger:      logger,
		db:          db,
		timeout:     cfg.GetSearchTimeout(),
		maxVariants: cfg.GetMaxVariants(),
		maxPageSize: cfg.GetMaxPageSize(),
	}
}

// Request is one search. Now is the request timestamp; every time based
// computation of the request is derived from it.
type Request struct {
	Query  string
	Page   int
	Limit  int
	SortBy string
	Filters
	Now time.Time
}

type Response struct {
	Videos      []FormattedVideo `json:"videos"`
	TotalPages  int              `json:"totalPages"`
	CurrentPage int              `json:"currentPage"`
	TotalVideos int              `json:"totalVideos"`
	Filters     FilterOptions    `json:"filters"`
	Stats       Stats            `json:"stats"`
	Pagination  Pagination       `json:"pagination"`
}

type FilterOptions struct {
	Categories  []string `json:"categories"`
	Platforms   []string `json:"platforms"`
	Qualities   []string `json:"qualities"`
	SortOptions []Option `json:"sortOptions"`
	TimeRanges  []Option `json:"timeRanges"`
}

type Stats struct {
	TotalResults       int            `json:"totalResults"`
	AvailablePlatforms int            `json:"availablePlatforms"`
	AvailableQualities int            `json:"availableQualities"`
	ResultsInThisPage  int            `json:"resultsInThisPage"`
	SearchTerm         *string        `json:"searchTerm"`
	AppliedFilters     AppliedFilters `json:"appliedFilters"`
}

// AppliedFilters echoes the request. Absent filters are null.
type AppliedFilters struct {
	Category  *string `json:"category"`
	Platform  *string `json:"platform"`
	Quality   *string `json:"quality"`
	TimeRange *string `json:"timeRange"`
	SortBy    string  `json:"sortBy"`
}

type Pagination struct {
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
	TotalPages      int  `json:"totalPages"`
	CurrentPage     int  `json:"currentPage"`
	PageSize        int  `json:"pageSize"`
	TotalResults    int  `json:"totalResults"`
}

// Search runs the text and structural filters against the collection and
// returns one page of results with the facets of the text query.
// The page, the total count and the facets are read concurrently; if any read
// fails the error wraps ErrSearchFailed and no response is returned.
func (s *Service) Search(ctx context.Context, req Request) (*Response, error) {
	req = s.clamp(req)

	normalized := Normalize(req.Query)
	patterns := BuildPatterns(normalized, s.maxVariants)
	filter := searchdb.And{TextPredicate(patterns), ComposeFilters(req.Filters, req.Now)}
	order := ResolveSort(req.SortBy)
	skip := (req.Page - 1) * req.Limit

	s.logger.Debug("searching videos", "query", normalized, "patterns", len(patterns), "filter", filter.String(), "skip", skip, "limit", req.Limit)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var (
		videos []searchdb.Video
		total  int
		facets *Facets
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		videos, err = s.db.Find(gctx, filter, order, skip, req.Limit)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.db.Count(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		facets, err = s.aggregateFacets(gctx, normalized)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("search failed", "query", normalized, "err", err.Error())
		return nil, &executionError{cause: err}
	}

	formatted := make([]FormattedVideo, 0, len(videos))
	for _, video := range videos {
		formatted = append(formatted, formatVideo(video, req.Now))
	}

	totalPages := TotalPages(total, req.Limit)

	return &Response{
		Videos:      formatted,
		TotalPages:  totalPages,
		CurrentPage: req.Page,
		TotalVideos: total,
		Filters: FilterOptions{
			Categories:  facets.Categories,
			Platforms:   facets.Platforms,
			Qualities:   facets.Qualities,
			SortOptions: SortOptions(),
			TimeRanges:  TimeRanges(),
		},
		Stats: Stats{
			TotalResults:       total,
			AvailablePlatforms: len(facets.Platforms),
			AvailableQualities: len(facets.Qualities),
			ResultsInThisPage:  len(formatted),
			SearchTerm:         searchTerm(req.Query, normalized),
			AppliedFilters: AppliedFilters{
				Category:  optional(req.Category),
				Platform:  optional(req.Platform),
				Quality:   optional(req.Quality),
				TimeRange: optional(req.TimeRange),
				SortBy:    EffectiveSort(req.SortBy),
			},
		},
		Pagination: Pagination{
			HasNextPage:     skip+len(formatted) < total,
			HasPreviousPage: req.Page > 1,
			TotalPages:      totalPages,
			CurrentPage:     req.Page,
			PageSize:        req.Limit,
			TotalResults:    total,
		},
	}, nil
}

// TotalPages is ceil(total/limit).
func TotalPages(total int, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

func (s *Service) clamp(req Request) Request {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Page > MaxPage {
		req.Page = MaxPage
	}
	if req.Limit <= 0 {
		req.Limit = DefaultLimit
	}
	if s.maxPageSize > 0 && req.Limit > s.maxPageSize {
		req.Limit = s.maxPageSize
	}
	if req.Limit > math.MaxInt32 {
		req.Limit = math.MaxInt32
	}
	if req.Now.IsZero() {
		req.Now = time.Now()
	}
	return req
}

func searchTerm(raw string, normalized string) *string {
	if raw == "" {
		return nil
	}
	return &normalized
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

