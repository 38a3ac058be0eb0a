package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (h *handlerImpl) HandleRequestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()

	event := h.logger.Info()
	if c.Writer.Status() >= 500 {
		event = h.logger.Error()
	}
	event.
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Int("status", c.Writer.Status()).
		Dur("latency", time.Since(start)).
		Msg("handled request")
}

func (h *handlerImpl) HandleRemoteRequired(c *gin.Context) {
	if h.remoteTasks == nil {
		h.logger.Warn().
			Str("path", c.FullPath()).
			Msg("remote request without backend")
		abort(c, newAPIError(http.StatusServiceUnavailable, errRemoteUnavailable.Error()))
		return
	}
	c.Next()
}
