package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type response struct {
	Data   any      `json:"data"`
	Errors []string `json:"errors"`
}

func writeResponse(c *gin.Context, data interface{}, statusCode int, errors []string) {

	if statusCode == http.StatusNoContent {
		c.Status(statusCode)
		return

	}

	response := response{
		Data:   data,
		Errors: errors,
	}

	c.JSON(statusCode, response)
}

// errorResponse is the failure body of the search route.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func writeErrorResponse(c *gin.Context, statusCode int, message string, err error) {
	c.JSON(statusCode, errorResponse{
		Success: false,
		Message: message,
		Error:   err.Error(),
	})
}
