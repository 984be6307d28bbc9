package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/vidcat/logger"
	"github.com/meghashyamc/vidcat/services/search"
	"github.com/meghashyamc/vidcat/validation"
)

type ListVideosRequest struct {
	Page     int    `form:"page" validate:"min=1,max=100000"`
	Limit    int    `form:"limit" validate:"min=1"`
	Category string `form:"category" validate:"max=200"`
}

func (r *ListVideosRequest) setDefaults() {
	if r.Page < 1 {
		r.Page = 1
	}

	if r.Limit <= 0 {
		r.Limit = search.DefaultLimit
	}
}

// SetupBrowse registers the read-only listing routes backed by the search collection.
func SetupBrowse(router *gin.Engine, logger logger.Logger, service *search.Service, validator *validation.Validator) {
	videos := router.Group("/api/videos")
	videos.GET("", handleListVideos(service, logger, validator, ""))
	videos.GET("/category/:id", handleListVideos(service, logger, validator, "id"))
	videos.GET("/featured", handleFeaturedVideo(service, logger))
}

// handleListVideos takes the category from the path parameter categoryParam,
// or from the query string when categoryParam is empty.
func handleListVideos(service *search.Service, logger logger.Logger, validator *validation.Validator, categoryParam string) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()

		request := ListVideosRequest{}
		if err := c.ShouldBindQuery(&request); err != nil {
			logger.Warn("could not extract expected params from list videos request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract query parameters"})
			return
		}
		if categoryParam != "" {
			request.Category = c.Param(categoryParam)
		}
		request.setDefaults()

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate list videos request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		videos, err := service.List(c.Request.Context(), search.ListRequest{
			Page:     request.Page,
			Limit:    request.Limit,
			Category: request.Category,
			Now:      now,
		})
		if err != nil {
			logger.Error("could not list videos", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		writeResponse(c, videos, http.StatusOK, nil)
	}
}

func handleFeaturedVideo(service *search.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		video, err := service.Featured(c.Request.Context(), time.Now())
		if err != nil {
			c.Abort()
			if errors.Is(err, search.ErrNoFeaturedVideo) {
				writeResponse(c, nil, http.StatusNotFound, []string{err.Error()})
				return
			}
			logger.Error("could not get featured video", "err", err.Error())
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		writeResponse(c, video, http.StatusOK, nil)
	}
}
