// internal/common/errors/handler.go
package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorHandler turns request errors into HTTP responses. Internal details are
// logged, never written to the caller.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleRequestError writes the mapped status for err and aborts the chain.
// Client errors get an empty body; upstream and internal failures get the
// generic status text.
func (h *ErrorHandler) HandleRequestError(c *gin.Context, err error) {
	stdErr := Normalize(err)
	status := HTTPStatus(stdErr.Code)

	h.logError(c, stdErr, status)
	_ = c.Error(stdErr)

	if IsClientError(stdErr.Code) {
		c.AbortWithStatus(status)
		return
	}
	c.Data(status, "text/plain; charset=utf-8", []byte(http.StatusText(status)))
	c.Abort()
}

func (h *ErrorHandler) logError(c *gin.Context, stdErr *StandardError, status int) {
	fields := map[string]interface{}{
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
		"status":        status,
		"path":          c.FullPath(),
	}
	for k, v := range stdErr.Metadata {
		fields[k] = v
	}

	if IsClientError(stdErr.Code) {
		h.logger.Warn("request rejected", fields)
		return
	}
	h.logger.Error("request failed", fields)
}
