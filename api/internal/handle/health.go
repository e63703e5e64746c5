package handle

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handle) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Server is running",
		"status":  "online",
		"version": h.opts.Version,
	})
}

// Health performs a live round trip against the model.
func (h *Handle) Health(c *gin.Context) {
	ctx := c.Request.Context()
	if h.opts.PingTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opts.PingTimeout)
		defer cancel()
	}
	if err := h.model.Ping(ctx); err != nil {
		h.log.Sugar().Errorw("health: model check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"message": "model connection failed",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Server and model are functioning correctly",
	})
}
