package explorers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Barap1/UniExplorer/internal/auth"
)

type Handler struct {
	repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{repo: repo}
}

// Register attaches session routes to the given router group. Both routes
// require a verified Firebase token.
func (h *Handler) Register(rg *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	rg.POST("/sync", requireAuth, h.sync)
	rg.GET("/me", requireAuth, h.me)
}

// sync upserts the explorer profile after a sign-in. The client calls this
// once per session so the leaderboard can show a display name instead of a
// bare uid.
func (h *Handler) sync(c *gin.Context) {
	e, err := h.repo.EnsureExplorer(c.Request.Context(), UpsertExplorer{
		FirebaseUID: auth.UserFirebaseUID(c),
		Email:       auth.UserEmail(c),
		DisplayName: auth.UserDisplayName(c),
		PhotoURL:    auth.UserPhotoURL(c),
	})
	if err != nil {
		log.Printf("[explorers] sync failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to sync profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "explorer": e})
}

func (h *Handler) me(c *gin.Context) {
	e, err := h.repo.GetByFirebaseUID(c.Request.Context(), auth.UserFirebaseUID(c))
	if err != nil {
		if errors.Is(err, ErrExplorerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "explorer not found"})
			return
		}
		log.Printf("[explorers] me failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "explorer": e})
}
