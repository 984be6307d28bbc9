package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/meghashyamc/vidcat/db/kvdb"
	"github.com/meghashyamc/vidcat/db/searchdb"
	"github.com/stretchr/testify/require"
)

func testVideos(now time.Time) []searchdb.Video {
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
			CreatedAt:  now.Add(-2 * time.Hour),
			UpdatedAt:  now.Add(-2 * time.Hour),
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
			CreatedAt:  now.Add(-48 * time.Hour),
			UpdatedAt:  now.Add(-48 * time.Hour),
		},
		{
			ID:          "v3",
			Title:       "Cooking at home",
			Description: "Simple recipes",
			Category:    []searchdb.Category{{ID: "food", Name: "Food", Active: true}},
			Platforms:   []searchdb.Platform{{ID: "p4", Name: "Dailymotion", URL: "https://dm.example/v3", Quality: "480p"}},
			Views:       1500,
			Statistics:  searchdb.Statistics{Likes: 30},
			CreatedAt:   now.Add(-400 * 24 * time.Hour),
			UpdatedAt:   now.Add(-400 * 24 * time.Hour),
		},
	}
}

// seedVideos stores videos the way the catalog does and indexes them.
func seedVideos(assert *require.Assertions, server *testServer, videos []searchdb.Video) {
	for _, video := range videos {
		data, err := json.Marshal(video)
		assert.NoError(err)
		assert.NoError(server.kvDB.Set(kvdb.VideosBucket, video.ID, string(data)))
	}
	assert.NoError(server.searchDB.Index(context.Background(), videos))
}

func responseIDs(response map[string]any) []string {
	ids := []string{}
	videos, _ := response["videos"].([]any)
	for _, video := range videos {
		ids = append(ids, video.(map[string]any)["id"].(string))
	}
	return ids
}
