package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/vidcat/api/handlers"
)

func (s *server) setupRoutes(router *gin.Engine) {
	router.GET("/health", health())

	searchMiddlewares := []gin.HandlerFunc{}
	if limit := s.cfg.GetRateLimit(); limit > 0 {
		searchMiddlewares = append(searchMiddlewares, rateLimitMiddleware(newClientLimiters(limit, s.cfg.GetRateBurst()), s.logger))
	}

	handlers.SetupSearch(router, s.logger, s.searchService, s.validator, searchMiddlewares...)
	handlers.SetupBrowse(router, s.logger, s.searchService, s.validator)
	handlers.SetupVideos(router, s.logger, s.catalogService, s.validator)
	handlers.SetupIndex(router, s.logger, s.indexService)
}

func health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	}
}

func newRouter() *gin.Engine {
	router := gin.New()
	router.UseRawPath = true
	router.Use(_CORSMiddleware())
	router.Use(gin.Recovery())

	return router
}
