package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fintrack/internal/logger"
)

const requestIDKey = "requestID"

// RequestLogging tags every request with a generated ID, echoes it in the
// X-Request-ID response header, and logs one structured line per request.
// Error statuses log at warn level so they stand out in production output.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := uuid.New().String()
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}

		if status >= 500 {
			logger.Get().Warnw("request failed", fields...)
			return
		}
		logger.Get().Infow("request", fields...)
	}
}
