package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/minters-xyz/go-minters/env"
	"github.com/minters-xyz/go-minters/service/logger"
	sentryutil "github.com/minters-xyz/go-minters/service/sentry"
)

// ErrLogger logs and reports any errors attached to the gin context after the
// handler chain has run
func ErrLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		for _, ginErr := range c.Errors {
			logger.For(c.Request.Context()).Errorf("%s %s: %s", c.Request.Method, c.Request.URL.Path, ginErr.Err)
			sentryutil.ReportError(c.Request.Context(), ginErr.Err)
		}
	}
}

// HandleCORS sets the CORS headers for allowed origins and short-circuits
// preflight requests
func HandleCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestOrigin := c.Request.Header.Get("Origin")

		if IsOriginAllowed(requestOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", requestOrigin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// IsOriginAllowed checks an origin against the ALLOWED_ORIGINS list
func IsOriginAllowed(requestOrigin string) bool {
	allowedOrigins := strings.Split(env.GetString("ALLOWED_ORIGINS"), ",")

	for _, allowedOrigin := range allowedOrigins {
		if strings.TrimSpace(allowedOrigin) == requestOrigin {
			return true
		}
	}

	return false
}
