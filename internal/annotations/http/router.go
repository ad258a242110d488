package http

import (
	"github.com/gin-gonic/gin"

	"github.com/Barap1/UniExplorer/internal/annotations/stream"
)

// Register attaches annotation routes to the given router group. Reads are
// open to anonymous viewers; writes require a session.
func (h *Handler) Register(rg *gin.RouterGroup, streamHandler *stream.Handler, requireAuth gin.HandlerFunc) {
	rg.GET("", h.list)
	rg.GET("/live", streamHandler.Live)
	rg.POST("", requireAuth, h.create)
}
