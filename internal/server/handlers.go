// internal/server/handlers.go
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"surprise-service/internal/command"
	"surprise-service/internal/common/metrics"
)

// RootReply is the body of GET /.
const RootReply = "Service works!"

func (s *Server) handleRoot(c *gin.Context) {
	c.String(http.StatusOK, RootReply)
}

// handleCommand extracts the slash command form. Presence matters: a field sent
// with an empty value is present, an omitted one is not.
func (s *Server) handleCommand(c *gin.Context) {
	metrics.RequestsInFlight.Inc()
	defer metrics.RequestsInFlight.Dec()

	input := &command.Input{}
	input.Token, input.HasToken = formValue(c, "token")
	input.Command, input.HasCommand = formValue(c, "command")
	input.Text, _ = formValue(c, "text")

	out, err := s.commands.Execute(c.Request.Context(), input)
	if err != nil {
		s.errors.HandleRequestError(c, err)
		return
	}

	c.Data(out.Status, out.ContentType, out.Body)
}

func formValue(c *gin.Context, key string) (string, bool) {
	if v, ok := c.GetPostForm(key); ok {
		return v, true
	}
	return c.GetQuery(key)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleReady runs every registered dependency check.
func (s *Server) handleReady(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failed := map[string]string{}
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}

	if len(failed) > 0 {
		s.logger.Warn("readiness check failed", map[string]interface{}{"checks": failed})
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"failed": failed,
			"time":   time.Now().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}
