// internal/server/middleware.go
package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"surprise-service/internal/common/logger"
)

const (
	HeaderRequestID = "X-Request-ID"
	ctxRequestID    = "requestId"
)

// RequestID reuses the caller's X-Request-ID or generates one, echoes it back
// and attaches a request-scoped logger to the request context.
func RequestID(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(HeaderRequestID, id)

		reqLog := log.WithFields(map[string]interface{}{"requestId": id})
		c.Request = c.Request.WithContext(logger.IntoContext(c.Request.Context(), reqLog))
		c.Next()
	}
}

// AccessLog writes one line per request once the handler chain has finished.
func AccessLog(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := map[string]interface{}{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"latencyMs": time.Since(start).Milliseconds(),
			"requestId": c.GetString(ctxRequestID),
		}
		if c.Writer.Status() >= 500 {
			log.Warn("request completed", fields)
			return
		}
		log.Debug("request completed", fields)
	}
}
