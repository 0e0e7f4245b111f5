// ========================================
// internal/middleware/logger.go
// Request logging middleware with structured logs

package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Logger creates a custom logging middleware
func Logger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()

		if raw != "" {
			path = path + "?" + raw
		}

		event := logger.Info()
		if statusCode >= 500 {
			event = logger.Error()
		} else if statusCode >= 400 {
			event = logger.Warn()
		}
		event.
			Str("request_id", c.GetString("request_id")).
			Str("client_ip", c.ClientIP()).
			Str("method", c.Request.Method).
			Int("status", statusCode).
			Dur("latency", latency).
			Str("path", path).
			Str("error", errorMessage).
			Msg("request handled")
	}
}
