package stream

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Barap1/UniExplorer/internal/auth"
	"github.com/Barap1/UniExplorer/internal/bodies"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

// clientMessage is what the viewer sends over the socket. Subscribing again
// with a different body or filter replaces the previous subscription.
type clientMessage struct {
	Type string `json:"type"`
	Body string `json:"body"`
	Mine bool   `json:"mine"`
}

// Handler upgrades live-query requests to websocket sessions.
type Handler struct {
	watcher  Watcher
	registry *bodies.Registry
	upgrader websocket.Upgrader
}

func NewHandler(watcher Watcher, registry *bodies.Registry, allowedOrigins []string) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &Handler{
		watcher:  watcher,
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin] || allowed["*"]
			},
		},
	}
}

// Live upgrades the request and runs a session until the viewer disconnects.
// Anonymous viewers are allowed; the mine-only filter just stays off for
// them.
func (h *Handler) Live(c *gin.Context) {
	userID := auth.UserFirebaseUID(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[stream] websocket upgrade failed: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	session := NewSession(h.watcher, h.registry, userID)
	go session.Run(ctx)
	go h.writePump(cancel, conn, session)
	h.readPump(ctx, cancel, conn, session)
}

// readPump feeds subscribe messages into the session until the connection
// drops.
func (h *Handler) readPump(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, session *Session) {
	defer func() {
		cancel()
		_ = conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[stream] websocket closed unexpectedly: %v", err)
			}
			return
		}

		if msg.Type == "subscribe" {
			session.Subscribe(ctx, msg.Body, msg.Mine)
		}
	}
}

// writePump drains session events to the connection and keeps it alive with
// pings.
func (h *Handler) writePump(cancel context.CancelFunc, conn *websocket.Conn, session *Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cancel()
		_ = conn.Close()
	}()

	for {
		select {
		case event, ok := <-session.Events():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
