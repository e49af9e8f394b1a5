package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/minters-xyz/go-minters/service/logger"
)

// ErrorResponse is the shape of every non-2xx JSON body
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse is a generic response for endpoints with nothing else to say
type SuccessResponse struct {
	Success bool `json:"success"`
}

// ErrResponse aborts the request with the given status and the error's message
func ErrResponse(c *gin.Context, code int, err error) {
	logger.For(c.Request.Context()).Errorf("%d | %s %s: %s", code, c.Request.Method, c.Request.URL.Path, err)
	c.AbortWithStatusJSON(code, ErrorResponse{Error: err.Error()})
}

// HealthCheckHandler returns a handler reporting liveness
func HealthCheckHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, SuccessResponse{Success: true})
	}
}

// Contains reports whether s is present in slice
func Contains[T comparable](slice []T, s T) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}

// FirstNonEmpty returns the first non-empty string of its arguments
func FirstNonEmpty(strs ...string) string {
	for _, s := range strs {
		if s != "" {
			return s
		}
	}
	return ""
}
