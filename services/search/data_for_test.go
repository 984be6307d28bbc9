package search

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/meghashyamc/vidcat/db/searchdb"
	"github.com/meghashyamc/vidcat/logger"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestLogger() logger.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func testVideos() []searchdb.Video {
	return []searchdb.Video{
		{
			ID:          "v1",
			Title:       "İstanbul Gezisi",
			Description: "Boğaz turu ve tarihi yarımada",
			Category:    []searchdb.Category{{ID: "travel", Name: "Travel", Active: true}},
			Platforms: []searchdb.Platform{
				{ID: "p1", Name: "YouTube", URL: "https://youtube.example/v1", Quality: "1080p"},
				{ID: "p2", Name: "Vimeo", URL: "https://vimeo.example/v1", Quality: "4K"},
			},
			Views:      5,
			Statistics: searchdb.Statistics{Likes: 10, Downloads: 1},
			CreatedAt:  testNow.Add(-2 * time.Hour),
		},
		{
			ID:          "v2",
			Title:       "Street food tour",
			Description: "Tasting kebab and baklava",
			Category: []searchdb.Category{
				{ID: "food", Name: "Food", Active: true},
				{ID: "travel", Name: "Travel", Active: false},
			},
			Platforms:  []searchdb.Platform{{ID: "p3", Name: "YouTube", URL: "https://youtube.example/v2", Quality: "720p"}},
			Views:      5,
			Statistics: searchdb.Statistics{Likes: 3, Downloads: 7},
			CreatedAt:  testNow.Add(-48 * time.Hour),
		},
		{
			ID:          "v3",
			Title:       "Cooking at home",
			Description: "Simple recipes",
			Category:    []searchdb.Category{{ID: "food", Name: "Food", Active: true}},
			Platforms:   []searchdb.Platform{{ID: "p4", Name: "Dailymotion", URL: "https://dm.example/v3", Quality: "480p"}},
			Views:       2,
			Statistics:  searchdb.Statistics{Likes: 30},
			CreatedAt:   testNow.Add(-400 * 24 * time.Hour),
		},
	}
}

func newTestService(t *testing.T, videos []searchdb.Video) *Service {
	t.Helper()

	db := searchdb.NewMemoryDB(newTestLogger())
	require.NoError(t, db.Index(context.Background(), videos))

	return newTestServiceWithDB(db)
}

func newTestServiceWithDB(db searchdb.DB) *Service {
	return &Service{
		logger:      newTestLogger(),
		db:          db,
		timeout:     5 * time.Second,
		maxVariants: DefaultMaxVariants,
		maxPageSize: 50,
	}
}

func resultIDs(videos []FormattedVideo) []string {
	out := make([]string, 0, len(videos))
	for _, video := range videos {
		out = append(out, video.ID)
	}
	return out
}

var errStorageDown = errors.New("connection refused")

// failingDB fails every read.
type failingDB struct {
	*searchdb.MemoryDB
}

func (f *failingDB) Find(ctx context.Context, filter searchdb.Predicate, order searchdb.Sort, skip int, limit int) ([]searchdb.Video, error) {
	return nil, errStorageDown
}

func (f *failingDB) Count(ctx context.Context, filter searchdb.Predicate) (int, error) {
	return 0, errStorageDown
}

func (f *failingDB) Distinct(ctx context.Context, field searchdb.Field, filter searchdb.Predicate) ([]string, error) {
	return nil, errStorageDown
}

// slowDB only answers counts and blocks every other read until ctx is done.
type slowDB struct {
	*searchdb.MemoryDB
}

func (s slowDB) Find(ctx context.Context, filter searchdb.Predicate, order searchdb.Sort, skip int, limit int) ([]searchdb.Video, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (s slowDB) Distinct(ctx context.Context, field searchdb.Field, filter searchdb.Predicate) ([]string, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
