package searchdb

import "time"

type Video struct {
	ID            string         `json:"id" bson:"_id"`
	Title         string         `json:"title" bson:"title"`
	Description   string         `json:"description" bson:"description"`
	Thumbnail     string         `json:"thumbnail" bson:"thumbnail"`
	Slug          string         `json:"slug" bson:"slug"`
	Category      []Category     `json:"category" bson:"category"`
	Platforms     []Platform     `json:"platforms" bson:"platforms"`
	Images        []Image        `json:"images" bson:"images"`
	DownloadLinks []DownloadLink `json:"downloadLinks" bson:"downloadLinks"`
	Views         int64          `json:"views" bson:"views"`
	Statistics    Statistics     `json:"statistics" bson:"statistics"`
	CreatedAt     time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// Category attributions only count towards filtering while Active is set.
type Category struct {
	ID     string `json:"id" bson:"id"`
	Name   string `json:"name" bson:"name"`
	Active bool   `json:"active" bson:"active"`
}

type Platform struct {
	ID      string `json:"id" bson:"id"`
	Name    string `json:"name" bson:"name"`
	URL     string `json:"url" bson:"url"`
	Quality string `json:"quality" bson:"quality"`
	BgColor string `json:"bgColor" bson:"bgColor"`
}

type Image struct {
	ID        int    `json:"id" bson:"id"`
	URL       string `json:"url" bson:"url"`
	Thumbnail string `json:"thumbnail" bson:"thumbnail"`
}

type DownloadLink struct {
	Title   string `json:"title" bson:"title"`
	Quality string `json:"quality" bson:"quality"`
	URL     string `json:"url" bson:"url"`
}

type Statistics struct {
	Likes     int64 `json:"likes" bson:"likes"`
	Shares    int64 `json:"shares" bson:"shares"`
	Downloads int64 `json:"downloads" bson:"downloads"`
}

// values returns every value a document holds for field, flattening arrays.
func (v *Video) values(field Field) []string {
	switch field {
	case FieldID:
		return []string{v.ID}
	case FieldTitle:
		return []string{v.Title}
	case FieldDescription:
		return []string{v.Description}
	case FieldCategoryName:
		names := make([]string, 0, len(v.Category))
		for _, category := range v.Category {
			names = append(names, category.Name)
		}
		return names
	case FieldPlatformName:
		names := make([]string, 0, len(v.Platforms))
		for _, platform := range v.Platforms {
			names = append(names, platform.Name)
		}
		return names
	case FieldPlatformQuality:
		qualities := make([]string, 0, len(v.Platforms))
		for _, platform := range v.Platforms {
			qualities = append(qualities, platform.Quality)
		}
		return qualities
	}
	return nil
}

func (v *Video) activeCategoryIDs() []string {
	ids := make([]string, 0, len(v.Category))
	for _, category := range v.Category {
		if category.Active {
			ids = append(ids, category.ID)
		}
	}
	return ids
}

func (v *Video) timeValue(field Field) time.Time {
	switch field {
	case FieldCreatedAt:
		return v.CreatedAt
	case FieldUpdatedAt:
		return v.UpdatedAt
	}
	return time.Time{}
}

func (v *Video) numericValue(field Field) int64 {
	switch field {
	case FieldViews:
		return v.Views
	case FieldLikes:
		return v.Statistics.Likes
	case FieldShares:
		return v.Statistics.Shares
	case FieldDownloads:
		return v.Statistics.Downloads
	case FieldCreatedAt, FieldUpdatedAt:
		return v.timeValue(field).UnixNano()
	}
	return 0
}
