package search

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/meghashyamc/vidcat/db/searchdb"
)

// FormattedVideo is a video as shown in search results. Views and timestamp
// are rendered for display against the request time.
type FormattedVideo struct {
	ID            string                  `json:"id"`
	Title         string                  `json:"title"`
	Description   string                  `json:"description"`
	Thumbnail     string                  `json:"thumbnail"`
	Slug          string                  `json:"slug"`
	Category      []searchdb.Category     `json:"category"`
	Platforms     []FormattedPlatform     `json:"platforms"`
	Images        []searchdb.Image        `json:"images"`
	DownloadLinks []searchdb.DownloadLink `json:"downloadLinks"`
	Views         string                  `json:"views"`
	Statistics    searchdb.Statistics     `json:"statistics"`
	CreatedAt     time.Time               `json:"createdAt"`
	UpdatedAt     time.Time               `json:"updatedAt"`
	Timestamp     string                  `json:"timestamp"`
}

type FormattedPlatform struct {
	searchdb.Platform
	QualityBadgeColor string `json:"qualityBadgeColor"`
}

func formatVideo(video searchdb.Video, now time.Time) FormattedVideo {
	platforms := make([]FormattedPlatform, 0, len(video.Platforms))
	for _, platform := range video.Platforms {
		platforms = append(platforms, FormattedPlatform{
			Platform:          platform,
			QualityBadgeColor: QualityBadgeColor(platform.Quality),
		})
	}

	return FormattedVideo{
		ID:            video.ID,
		Title:         video.Title,
		Description:   video.Description,
		Thumbnail:     video.Thumbnail,
		Slug:          video.Slug,
		Category:      nonNil(video.Category),
		Platforms:     platforms,
		Images:        nonNil(video.Images),
		DownloadLinks: nonNil(video.DownloadLinks),
		Views:         FormatViews(video.Views),
		Statistics:    video.Statistics,
		CreatedAt:     video.CreatedAt,
		UpdatedAt:     video.UpdatedAt,
		Timestamp:     FormatTimestamp(video.CreatedAt, now),
	}
}

// FormatViews renders a view count as 999, 1.2K or 3.4M.
func FormatViews(views int64) string {
	switch {
	case views >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(views)/1_000_000)
	case views >= 1_000:
		return fmt.Sprintf("%.1fK", float64(views)/1_000)
	default:
		return fmt.Sprintf("%d", views)
	}
}

func FormatTimestamp(createdAt time.Time, now time.Time) string {
	if createdAt.IsZero() {
		return ""
	}
	return humanize.RelTime(createdAt, now, "ago", "from now")
}

func QualityBadgeColor(quality string) string {
	switch quality {
	case "4K":
		return "bg-purple-500"
	case "1080p":
		return "bg-green-500"
	case "720p":
		return "bg-blue-500"
	case "480p":
		return "bg-yellow-500"
	case "360p":
		return "bg-red-500"
	default:
		return "bg-gray-500"
	}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
