package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/vidcat/db/searchdb"
	"github.com/meghashyamc/vidcat/logger"
	"github.com/meghashyamc/vidcat/services/catalog"
	"github.com/meghashyamc/vidcat/validation"
)

type CategoryRequest struct {
	ID     string `json:"id" validate:"required,max=200"`
	Name   string `json:"name" validate:"required,max=200"`
	Active *bool  `json:"active"`
}

type PlatformRequest struct {
	ID      string `json:"id" validate:"required"`
	Name    string `json:"name" validate:"required,max=100"`
	URL     string `json:"url" validate:"required,valid_url"`
	Quality string `json:"quality" validate:"required,max=50"`
	BgColor string `json:"bgColor" validate:"max=50"`
}

type ImageRequest struct {
	ID        int    `json:"id"`
	URL       string `json:"url" validate:"required,valid_url"`
	Thumbnail string `json:"thumbnail" validate:"valid_url"`
}

type DownloadLinkRequest struct {
	Title   string `json:"title" validate:"required"`
	Quality string `json:"quality"`
	URL     string `json:"url" validate:"required,valid_url"`
}

type CreateVideoRequest struct {
	Title         string                `json:"title" validate:"required,max=500"`
	Description   string                `json:"description" validate:"required,max=10000"`
	Thumbnail     string                `json:"thumbnail" validate:"required,valid_url"`
	Category      []CategoryRequest     `json:"category" validate:"dive"`
	Platforms     []PlatformRequest     `json:"platforms" validate:"dive"`
	Images        []ImageRequest        `json:"images" validate:"dive"`
	DownloadLinks []DownloadLinkRequest `json:"downloadLinks" validate:"dive"`
}

// UpdateVideoRequest leaves omitted fields unchanged.
type UpdateVideoRequest struct {
	Title         string                `json:"title" validate:"max=500"`
	Description   string                `json:"description" validate:"max=10000"`
	Thumbnail     string                `json:"thumbnail" validate:"valid_url"`
	Category      []CategoryRequest     `json:"category" validate:"dive"`
	Platforms     []PlatformRequest     `json:"platforms" validate:"dive"`
	Images        []ImageRequest        `json:"images" validate:"dive"`
	DownloadLinks []DownloadLinkRequest `json:"downloadLinks" validate:"dive"`
}

type ViewResponse struct {
	Video   *searchdb.Video `json:"video"`
	Counted bool            `json:"counted"`
}

func SetupVideos(router *gin.Engine, logger logger.Logger, service *catalog.Service, validator *validation.Validator) {
	videos := router.Group("/api/videos")
	videos.POST("", handleCreateVideo(service, logger, validator))
	videos.GET("/:id", handleGetVideo(service, logger))
	videos.PUT("/:id", handleUpdateVideo(service, logger, validator))
	videos.DELETE("/:id", handleDeleteVideo(service, logger))
	videos.POST("/:id/view", handleViewVideo(service, logger))
	videos.POST("/:id/like", handleCounter(service.Like, logger))
	videos.POST("/:id/share", handleCounter(service.Share, logger))
	videos.GET("/:id/views/stats", handleViewStats(service, logger))
	videos.DELETE("/:id/views", handleClearViewHistory(service, logger))
}

func handleCreateVideo(service *catalog.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := CreateVideoRequest{}
		if err := c.ShouldBindJSON(&request); err != nil {
			logger.Warn("could not extract expected fields from create video request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request body parameters"})
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate create video request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		video, err := service.Create(c.Request.Context(), toVideoInput(request.Title, request.Description, request.Thumbnail, request.Category, request.Platforms, request.Images, request.DownloadLinks))
		if err != nil {
			writeCatalogError(c, logger, err)
			return
		}

		writeResponse(c, video, http.StatusCreated, nil)
	}
}

func handleGetVideo(service *catalog.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		video, err := service.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeCatalogError(c, logger, err)
			return
		}

		writeResponse(c, video, http.StatusOK, nil)
	}
}

func handleUpdateVideo(service *catalog.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := UpdateVideoRequest{}
		if err := c.ShouldBindJSON(&request); err != nil {
			logger.Warn("could not extract expected fields from update video request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request body parameters"})
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate update video request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		video, err := service.Update(c.Request.Context(), c.Param("id"), toVideoInput(request.Title, request.Description, request.Thumbnail, request.Category, request.Platforms, request.Images, request.DownloadLinks))
		if err != nil {
			writeCatalogError(c, logger, err)
			return
		}

		writeResponse(c, video, http.StatusOK, nil)
	}
}

func handleDeleteVideo(service *catalog.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := service.Delete(c.Request.Context(), c.Param("id")); err != nil {
			writeCatalogError(c, logger, err)
			return
		}

		writeResponse(c, nil, http.StatusNoContent, nil)
	}
}

func handleViewVideo(service *catalog.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		video, counted, err := service.RecordView(c.Request.Context(), c.Param("id"), c.ClientIP())
		if err != nil {
			writeCatalogError(c, logger, err)
			return
		}

		writeResponse(c, ViewResponse{Video: video, Counted: counted}, http.StatusOK, nil)
	}
}

func handleViewStats(service *catalog.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := service.ViewStats(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeCatalogError(c, logger, err)
			return
		}

		writeResponse(c, stats, http.StatusOK, nil)
	}
}

func handleClearViewHistory(service *catalog.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := service.ClearViewHistory(c.Request.Context(), c.Param("id")); err != nil {
			writeCatalogError(c, logger, err)
			return
		}

		writeResponse(c, nil, http.StatusNoContent, nil)
	}
}

func handleCounter(increment func(ctx context.Context, id string) (*searchdb.Video, error), logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		video, err := increment(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeCatalogError(c, logger, err)
			return
		}

		writeResponse(c, video, http.StatusOK, nil)
	}
}

func writeCatalogError(c *gin.Context, logger logger.Logger, err error) {
	c.Abort()
	switch {
	case errors.Is(err, catalog.ErrVideoNotFound):
		writeResponse(c, nil, http.StatusNotFound, []string{"video not found"})
	case errors.Is(err, catalog.ErrInvalidVideo):
		writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
	default:
		logger.Error("video request failed", "path", c.FullPath(), "err", err.Error())
		writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
	}
}

func toVideoInput(title string, description string, thumbnail string, categories []CategoryRequest, platforms []PlatformRequest, images []ImageRequest, downloadLinks []DownloadLinkRequest) catalog.VideoInput {
	input := catalog.VideoInput{
		Title:       title,
		Description: description,
		Thumbnail:   thumbnail,
	}

	if categories != nil {
		input.Category = make([]catalog.CategoryInput, 0, len(categories))
		for _, category := range categories {
			input.Category = append(input.Category, catalog.CategoryInput{ID: category.ID, Name: category.Name, Active: category.Active})
		}
	}
	if platforms != nil {
		input.Platforms = make([]searchdb.Platform, 0, len(platforms))
		for _, platform := range platforms {
			input.Platforms = append(input.Platforms, searchdb.Platform(platform))
		}
	}
	if images != nil {
		input.Images = make([]searchdb.Image, 0, len(images))
		for _, image := range images {
			input.Images = append(input.Images, searchdb.Image(image))
		}
	}
	if downloadLinks != nil {
		input.DownloadLinks = make([]searchdb.DownloadLink, 0, len(downloadLinks))
		for _, link := range downloadLinks {
			input.DownloadLinks = append(input.DownloadLinks, searchdb.DownloadLink(link))
		}
	}

	return input
}
