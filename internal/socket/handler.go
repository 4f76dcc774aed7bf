// internal/socket/handler.go
package socket

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Marga-Ghale/sanchari-backend/internal/session"
)

// SessionResolver turns a session token into its live session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*session.Session, error)
}

// Handler handles WebSocket connections
type Handler struct {
	Hub      *Hub
	sessions SessionResolver
	upgrader websocket.Upgrader
}

// NewHandler accepts upgrades from the listed origins, or from any origin
// when the list is empty.
func NewHandler(hub *Hub, sessions SessionResolver, allowedOrigins []string) *Handler {
	return &Handler{
		Hub:      hub,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowedOrigins) == 0 || origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// HandleWebSocket upgrades a request carrying a session token. Browsers
// cannot set headers on a WebSocket, so the token may come as ?token=.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		}
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
		return
	}

	sess, err := h.sessions.Resolve(c.Request.Context(), token)
	if err != nil {
		log.Warn().Err(err).Msg("[WebSocket] Rejected session token")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("[WebSocket] Upgrade error")
		return
	}

	client := NewClient(h.Hub, sess, conn)
	h.Hub.Register(client)
	h.Hub.JoinRoom(client, SessionRoom(sess.ID()))
	if sess.IsAuthorized() {
		h.Hub.JoinRoom(client, RoomEvents)
	}

	log.Info().Msgf("[WebSocket] ✅ Client connected: session=%s", sess.ID())

	go client.WritePump()
	go client.ReadPump()
}
