// internal/socket/client.go
package socket

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize int64 = 4096
)

// ClientMessage is an incoming frame from the browser.
type ClientMessage struct {
	Action string `json:"action"`
	Room   string `json:"room,omitempty"`
}

// NewClient wraps an upgraded connection for the session behind it.
func NewClient(hub *Hub, viewer Viewer, conn *websocket.Conn) *Client {
	return &Client{
		ID:       uuid.NewString(),
		Viewer:   viewer,
		Conn:     conn,
		Hub:      hub,
		Send:     make(chan []byte, 256),
		Rooms:    make(map[string]bool),
		lastPing: time.Now(),
	}
}

// ReadPump pumps messages from the WebSocket connection to the hub
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		c.touch()
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Msgf("[Client] WebSocket error for session %s", c.Viewer.ID())
			}
			return
		}
		c.handleMessage(message)
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// One frame per message; snapshots are whole JSON documents.
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) touch() {
	c.mu.Lock()
	c.lastPing = time.Now()
	c.mu.Unlock()
}

// handleMessage processes incoming messages from the client
func (c *Client) handleMessage(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Warn().Err(err).Msgf("[Client] Unreadable frame from session %s", c.Viewer.ID())
		return
	}

	switch msg.Action {
	case "join":
		if msg.Room == "" {
			return
		}
		if c.Hub.JoinRoom(c, msg.Room) {
			c.reply(MessageAck, map[string]any{"action": "joined", "room": msg.Room})
		} else {
			c.reply(MessageError, map[string]any{"action": "join", "room": msg.Room, "error": "not allowed"})
		}

	case "leave":
		if msg.Room == "" {
			return
		}
		c.Hub.LeaveRoom(c, msg.Room)
		c.reply(MessageAck, map[string]any{"action": "left", "room": msg.Room})

	case "ping":
		c.touch()
		c.reply(MessagePong, map[string]any{"time": time.Now().Unix()})

	case "pong":
		c.touch()

	default:
		log.Debug().Msgf("[Client] Unknown action %q from session %s", msg.Action, c.Viewer.ID())
	}
}

func (c *Client) reply(msgType MessageType, payload map[string]any) {
	data, err := Encode(msgType, "", payload)
	if err != nil {
		return
	}
	if !c.trySend(data) {
		log.Warn().Msgf("[Client] Dropped reply for session %s", c.Viewer.ID())
	}
}

// trySend queues data without blocking. It reports false when the buffer is
// full or the hub has already closed Send.
func (c *Client) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// closeSend closes Send once. The caller holds c.mu.
func (c *Client) closeSend() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}
