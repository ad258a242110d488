package bodies

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	registry *Registry
}

func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

// Register attaches body routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.GET("/:key", h.get)
}

func (h *Handler) list(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "bodies": h.registry.List()})
}

func (h *Handler) get(c *gin.Context) {
	b, err := h.registry.Get(c.Param("key"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "unknown celestial body"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "body": b})
}
