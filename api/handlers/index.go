package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/meghashyamc/vidcat/db/kvdb"
	"github.com/meghashyamc/vidcat/logger"
	"github.com/meghashyamc/vidcat/services/index"
)

type IndexResponse struct {
	ID string `json:"id"`
}

type IndexStatusResponse struct {
	ID     string `json:"id"`
	Status int    `json:"status"`
}

func SetupIndex(router *gin.Engine, logger logger.Logger, service *index.Service) {
	router.POST("/api/index", handleIndex(service, logger))
	router.GET("/api/index/:id", handleIndexStatus(service, logger))
}

func handleIndex(service *index.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()

		if err := service.Build(requestID); err != nil {
			logger.Warn("could not start rebuilding the index", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusConflict, []string{err.Error()})
			return
		}

		writeResponse(c, IndexResponse{ID: requestID}, http.StatusAccepted, nil)
	}
}

func handleIndexStatus(service *index.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.Param("id")

		status, err := service.GetStatus(requestID)
		if err != nil {
			if errors.Is(err, kvdb.ErrNotFound) || errors.Is(err, kvdb.ErrInvalidKey) {
				c.Abort()
				writeResponse(c, nil, http.StatusNotFound, []string{"index request not found"})
				return
			}
			logger.Error("could not get index status", "request_id", requestID, "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		writeResponse(c, IndexStatusResponse{ID: requestID, Status: status}, http.StatusOK, nil)
	}
}
