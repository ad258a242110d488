package leaderboard

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Barap1/UniExplorer/internal/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register attaches leaderboard routes to the given router group. Auth is
// optional: signed-in viewers additionally get their own rank.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.get)
	rg.GET("/stream", h.stream)
}

func (h *Handler) get(c *gin.Context) {
	board, err := h.svc.Get(c.Request.Context())
	if err != nil {
		log.Printf("[leaderboard] get failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to load leaderboard"})
		return
	}

	resp := gin.H{"ok": true, "leaderboard": board}
	if name := auth.UserDisplayName(c); name != "" {
		resp["my_rank"] = board.RankOf(name)
	}

	c.JSON(http.StatusOK, resp)
}

// stream pushes the leaderboard over Server-Sent Events whenever a fresh
// board has been computed.
func (h *Handler) stream(c *gin.Context) {
	// Set SSE headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "streaming unsupported"})
		return
	}

	ctx := c.Request.Context()

	var lastComputedAt time.Time
	if board, err := h.svc.Get(ctx); err == nil {
		lastComputedAt = board.ComputedAt
		data, _ := json.Marshal(board)
		fmt.Fprintf(c.Writer, "event: leaderboard\ndata: %s\n\n", data)
		flusher.Flush()
	}

	// Keep-alive pings
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	// Poll the cache for a fresher board
	pollTicker := time.NewTicker(5 * time.Second)
	defer pollTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Client disconnected
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case <-pollTicker.C:
			board, err := h.svc.Get(ctx)
			if err != nil {
				continue
			}

			if board.ComputedAt.After(lastComputedAt) {
				lastComputedAt = board.ComputedAt

				data, _ := json.Marshal(board)
				fmt.Fprintf(c.Writer, "event: leaderboard\ndata: %s\n\n", data)
				flusher.Flush()
			}
		}
	}
}
