package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Barap1/UniExplorer/internal/annotations/domain"
	"github.com/Barap1/UniExplorer/internal/annotations/service"
	"github.com/Barap1/UniExplorer/internal/auth"
)

type Handler struct {
	svc *service.AnnotationService
}

func New(svc *service.AnnotationService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) create(c *gin.Context) {
	userID := auth.UserFirebaseUID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "sign in to leave a discovery"})
		return
	}

	var req domain.CreateAnnotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	a, err := h.svc.Create(c.Request.Context(), userID, auth.UserDisplayName(c), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyText),
			errors.Is(err, domain.ErrInvalidCoordinates),
			errors.Is(err, domain.ErrUnknownBody):
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		case errors.Is(err, domain.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"ok": false, "error": err.Error()})
		default:
			log.Printf("[annotations] create failed for user %s: %v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to save discovery"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "annotation": a})
}

func (h *Handler) list(c *gin.Context) {
	body := c.Query("body")
	if body == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "body query parameter is required"})
		return
	}

	// The mine-only filter is meaningless without a session.
	userID := ""
	if c.Query("mine") == "true" {
		userID = auth.UserFirebaseUID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "sign in to filter your discoveries"})
			return
		}
	}

	items, err := h.svc.ListByBody(c.Request.Context(), body, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownBody) {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
			return
		}
		log.Printf("[annotations] list failed for body %s: %v", body, err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to load discoveries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "annotations": items, "count": len(items)})
}
