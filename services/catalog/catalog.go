package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meghashyamc/vidcat/db/kvdb"
	"github.com/meghashyamc/vidcat/db/searchdb"
	"github.com/meghashyamc/vidcat/logger"
	"github.com/meghashyamc/vidcat/services/search"
)

// ViewWindow is how long a view from the same address is not counted again.
const ViewWindow = 24 * time.Hour

// Indexer mirrors stored videos into the search collection.
type Indexer interface {
	Index(ctx context.Context, videos []searchdb.Video) error
	Delete(ctx context.Context, ids []string) error
}

// Service owns the video records. Records are written to the key-value store
// first and then mirrored into the search collection.
type Service struct {
	logger  logger.Logger
	store   kvdb.DB
	indexer Indexer
	now     func() time.Time
}

func New(logger logger.Logger, store kvdb.DB, indexer Indexer) *Service {
	return &Service{
		logger:  logger,
		store:   store,
		indexer: indexer,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

type CategoryInput struct {
	ID     string
	Name   string
	Active *bool
}

// VideoInput carries the editable fields of a video. On update, empty strings
// and nil slices leave the stored value unchanged.
type VideoInput struct {
	Title         string
	Description   string
	Thumbnail     string
	Category      []CategoryInput
	Platforms     []searchdb.Platform
	Images        []searchdb.Image
	DownloadLinks []searchdb.DownloadLink
}

func (s *Service) Create(ctx context.Context, input VideoInput) (*searchdb.Video, error) {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Description) == "" {
		return nil, fmt.Errorf("%w: title and description are required", ErrInvalidVideo)
	}

	now := s.now()
	id := uuid.NewString()
	video := searchdb.Video{
		ID:            id,
		Title:         input.Title,
		Description:   input.Description,
		Thumbnail:     input.Thumbnail,
		Slug:          slug(input.Title, id),
		Category:      toCategories(input.Category),
		Platforms:     withBgColors(input.Platforms),
		Images:        input.Images,
		DownloadLinks: input.DownloadLinks,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.put(video); err != nil {
		return nil, err
	}
	if err := s.mirror(ctx, video); err != nil {
		return nil, err
	}

	s.logger.Info("created video", "id", video.ID, "slug", video.Slug)
	return &video, nil
}

func (s *Service) Get(ctx context.Context, id string) (*searchdb.Video, error) {
	value, err := s.store.Get(kvdb.VideosBucket, id)
	if err != nil {
		return nil, s.storeError(id, err)
	}
	return decodeVideo(value)
}

func (s *Service) Update(ctx context.Context, id string, input VideoInput) (*searchdb.Video, error) {
	video, err := s.modify(id, func(video *searchdb.Video) {
		if input.Title != "" {
			video.Title = input.Title
			video.Slug = slug(input.Title, video.ID)
		}
		if input.Description != "" {
			video.Description = input.Description
		}
		if input.Thumbnail != "" {
			video.Thumbnail = input.Thumbnail
		}
		if input.Category != nil {
			video.Category = toCategories(input.Category)
		}
		if input.Platforms != nil {
			video.Platforms = withBgColors(input.Platforms)
		}
		if input.Images != nil {
			video.Images = input.Images
		}
		if input.DownloadLinks != nil {
			video.DownloadLinks = input.DownloadLinks
		}
		video.UpdatedAt = s.now()
	})
	if err != nil {
		return nil, err
	}

	if err := s.mirror(ctx, *video); err != nil {
		return nil, err
	}
	return video, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.store.Get(kvdb.VideosBucket, id); err != nil {
		return s.storeError(id, err)
	}

	if err := s.store.Delete(kvdb.VideosBucket, id); err != nil {
		s.logger.Error("could not delete video", "id", id, "err", err.Error())
		return err
	}
	if err := s.indexer.Delete(ctx, []string{id}); err != nil {
		s.logger.Error("could not remove video from search collection", "id", id, "err", err.Error())
		return err
	}

	s.forgetViews(id)
	s.logger.Info("deleted video", "id", id)
	return nil
}

func (s *Service) Like(ctx context.Context, id string) (*searchdb.Video, error) {
	return s.increment(ctx, id, func(video *searchdb.Video) { video.Statistics.Likes++ })
}

func (s *Service) Share(ctx context.Context, id string) (*searchdb.Video, error) {
	return s.increment(ctx, id, func(video *searchdb.Video) { video.Statistics.Shares++ })
}

// RecordView counts a view of the video from address ip, unless the same
// address already viewed it within ViewWindow. counted reports whether the
// view was added.
func (s *Service) RecordView(ctx context.Context, id string, ip string) (video *searchdb.Video, counted bool, err error) {
	video, err = s.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}

	now := s.now()
	err = s.store.Update(kvdb.ViewsBucket, viewKey(id, ip), func(value string, found bool) (string, error) {
		if found {
			record := kvdb.ViewRecord{}
			if err := json.Unmarshal([]byte(value), &record); err == nil && now.Sub(record.LastViewed) < ViewWindow {
				return value, nil
			}
		}
		counted = true
		data, err := json.Marshal(kvdb.ViewRecord{LastViewed: now})
		return string(data), err
	})
	if err != nil {
		s.logger.Error("could not update view history", "id", id, "err", err.Error())
		return nil, false, err
	}

	if !counted {
		return video, false, nil
	}

	video, err = s.increment(ctx, id, func(video *searchdb.Video) { video.Views++ })
	if err != nil {
		return nil, false, err
	}
	return video, true, nil
}

// HourlyViews is the number of counted views that started within one hour.
type HourlyViews struct {
	Hour  string `json:"hour"`
	Views int    `json:"views"`
}

type ViewStats struct {
	ViewStats  []HourlyViews `json:"viewStats"`
	TotalViews int           `json:"totalViews"`
}

// ViewStats groups the views counted within the last ViewWindow by hour, oldest first.
// Each address is counted at most once per window, so every recent history entry is one view.
func (s *Service) ViewStats(ctx context.Context, id string) (*ViewStats, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	since := s.now().Add(-ViewWindow)
	prefix := viewKey(id, "")
	perHour := map[string]int{}
	total := 0

	err := s.store.ForEach(kvdb.ViewsBucket, func(key string, value string) error {
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		record := kvdb.ViewRecord{}
		if err := json.Unmarshal([]byte(value), &record); err != nil {
			s.logger.Warn("skipping unreadable view history", "key", key, "err", err.Error())
			return nil
		}
		if record.LastViewed.Before(since) {
			return nil
		}
		perHour[record.LastViewed.UTC().Truncate(time.Hour).Format("2006-01-02 15:00")]++
		total++
		return nil
	})
	if err != nil {
		s.logger.Error("could not read view history", "id", id, "err", err.Error())
		return nil, err
	}

	stats := &ViewStats{ViewStats: make([]HourlyViews, 0, len(perHour)), TotalViews: total}
	for hour, views := range perHour {
		stats.ViewStats = append(stats.ViewStats, HourlyViews{Hour: hour, Views: views})
	}
	sort.Slice(stats.ViewStats, func(i, j int) bool { return stats.ViewStats[i].Hour < stats.ViewStats[j].Hour })

	return stats, nil
}

// ClearViewHistory forgets which addresses viewed the video. The view counter is kept.
func (s *Service) ClearViewHistory(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.deleteViews(id); err != nil {
		return err
	}
	s.logger.Info("cleared view history", "id", id)
	return nil
}

func (s *Service) increment(ctx context.Context, id string, fn func(video *searchdb.Video)) (*searchdb.Video, error) {
	video, err := s.modify(id, fn)
	if err != nil {
		return nil, err
	}
	if err := s.mirror(ctx, *video); err != nil {
		return nil, err
	}
	return video, nil
}

// modify applies fn to the stored video inside one store transaction.
func (s *Service) modify(id string, fn func(video *searchdb.Video)) (*searchdb.Video, error) {
	var modified *searchdb.Video

	err := s.store.Update(kvdb.VideosBucket, id, func(value string, found bool) (string, error) {
		if !found {
			return "", &kvdb.NotFoundError{Bucket: kvdb.VideosBucket, Key: id}
		}
		video, err := decodeVideo(value)
		if err != nil {
			return "", err
		}
		fn(video)

		data, err := json.Marshal(video)
		if err != nil {
			return "", err
		}
		modified = video
		return string(data), nil
	})
	if err != nil {
		return nil, s.storeError(id, err)
	}
	return modified, nil
}

func (s *Service) put(video searchdb.Video) error {
	data, err := json.Marshal(video)
	if err != nil {
		s.logger.Error("could not marshal video", "id", video.ID, "err", err.Error())
		return err
	}
	if err := s.store.Set(kvdb.VideosBucket, video.ID, string(data)); err != nil {
		s.logger.Error("could not store video", "id", video.ID, "err", err.Error())
		return err
	}
	return nil
}

func (s *Service) mirror(ctx context.Context, video searchdb.Video) error {
	if err := s.indexer.Index(ctx, []searchdb.Video{video}); err != nil {
		s.logger.Error("could not index video", "id", video.ID, "err", err.Error())
		return fmt.Errorf("could not index video %s: %w", video.ID, err)
	}
	return nil
}

func (s *Service) forgetViews(id string) {
	if err := s.deleteViews(id); err != nil {
		s.logger.Warn("could not delete view history", "id", id, "err", err.Error())
	}
}

func (s *Service) deleteViews(id string) error {
	keys, err := s.store.GetAllKeys(kvdb.ViewsBucket)
	if err != nil {
		s.logger.Error("could not list view history", "id", id, "err", err.Error())
		return err
	}
	prefix := viewKey(id, "")
	for _, key := range keys {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if err := s.store.Delete(kvdb.ViewsBucket, key); err != nil {
			s.logger.Error("could not delete view history", "key", key, "err", err.Error())
			return err
		}
	}
	return nil
}

func (s *Service) storeError(id string, err error) error {
	if errors.Is(err, kvdb.ErrNotFound) || errors.Is(err, kvdb.ErrInvalidKey) {
		return fmt.Errorf("%w: %s", ErrVideoNotFound, id)
	}
	s.logger.Error("could not read video", "id", id, "err", err.Error())
	return err
}

func decodeVideo(value string) (*searchdb.Video, error) {
	video := &searchdb.Video{}
	if err := json.Unmarshal([]byte(value), video); err != nil {
		return nil, fmt.Errorf("could not decode video: %w", err)
	}
	return video, nil
}

func viewKey(id string, ip string) string {
	return id + "|" + ip
}

func slug(title string, id string) string {
	base := search.Slugify(title)
	suffix := strings.ReplaceAll(id, "-", "")[:8]
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}

func toCategories(inputs []CategoryInput) []searchdb.Category {
	categories := make([]searchdb.Category, 0, len(inputs))
	for _, input := range inputs {
		active := true
		if input.Active != nil {
			active = *input.Active
		}
		categories = append(categories, searchdb.Category{ID: input.ID, Name: input.Name, Active: active})
	}
	return categories
}

func withBgColors(platforms []searchdb.Platform) []searchdb.Platform {
	out := make([]searchdb.Platform, 0, len(platforms))
	for _, platform := range platforms {
		if platform.BgColor == "" {
			platform.BgColor = search.QualityBadgeColor(platform.Quality)
		}
		out = append(out, platform)
	}
	return out
}
