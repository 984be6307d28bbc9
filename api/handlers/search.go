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

type SearchRequest struct {
	Query     string `form:"q" validate:"valid_query,max=1000"`
	Page      int    `form:"page" validate:"min=1,max=100000"`
	Limit     int    `form:"limit" validate:"min=1"`
	SortBy    string `form:"sortBy" validate:"max=50"`
	Category  string `form:"category" validate:"max=200"`
	Platform  string `form:"platform" validate:"max=200"`
	Quality   string `form:"quality" validate:"max=50"`
	TimeRange string `form:"timeRange" validate:"valid_time_range"`
}

func (r *SearchRequest) setDefaults() {
	if r.Page < 1 {
		r.Page = 1
	}

	if r.Limit <= 0 {
		r.Limit = search.DefaultLimit
	}

	if r.SortBy == "" {
		r.SortBy = search.SortDate
	}
}

func SetupSearch(router *gin.Engine, logger logger.Logger, service *search.Service, validator *validation.Validator, middlewares ...gin.HandlerFunc) {
	chain := append(middlewares, handleSearch(service, logger, validator))
	router.GET("/api/videos/search", chain...)
}

func handleSearch(service *search.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()

		request := SearchRequest{}
		if err := c.ShouldBindQuery(&request); err != nil {
			logger.Warn("could not extract expected params from search request", "err", err.Error())
			c.Abort()
			writeErrorResponse(c, http.StatusUnprocessableEntity, "failed to extract query parameters", err)
			return
		}
		request.setDefaults()

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate search request", "err", err.Error())
			writeSearchError(c, search.InvalidRequest(err))
			return
		}

		results, err := service.Search(c.Request.Context(), search.Request{
			Query:  request.Query,
			Page:   request.Page,
			Limit:  request.Limit,
			SortBy: request.SortBy,
			Filters: search.Filters{
				Category:  request.Category,
				Platform:  request.Platform,
				Quality:   request.Quality,
				TimeRange: request.TimeRange,
			},
			Now: now,
		})
		if err != nil {
			logger.Error("search failed", "err", err.Error())
			writeSearchError(c, err)
			return
		}

		c.JSON(http.StatusOK, results)
	}
}

func writeSearchError(c *gin.Context, err error) {
	c.Abort()
	if errors.Is(err, search.ErrValidation) {
		writeErrorResponse(c, http.StatusNotAcceptable, search.ErrValidation.Error(), err)
		return
	}
	writeErrorResponse(c, http.StatusInternalServerError, search.ErrSearchFailed.Error(), err)
}
