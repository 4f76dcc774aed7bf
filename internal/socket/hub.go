// internal/socket/hub.go
package socket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Marga-Ghale/sanchari-backend/internal/types"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Mirror messages
	MessageSnapshot MessageType = "snapshot"
	MessageStale    MessageType = "mirror_stale"

	// Session messages
	MessageSessionChanged MessageType = "session_changed"

	// System messages
	MessagePing  MessageType = "ping"
	MessagePong  MessageType = "pong"
	MessageAck   MessageType = "ack"
	MessageError MessageType = "error"
)

// Rooms a client can join. Every session also has a private room.
const (
	RoomEvents        = types.CollectionEvents
	RoomRegistrations = types.CollectionRegistrations
	RoomMembers       = types.CollectionMembers
	RoomStats         = "stats"
)

func SessionRoom(sessionID string) string {
	return "session:" + sessionID
}

// Message represents a WebSocket message
type Message struct {
	Type      MessageType `json:"type"`
	Room      string      `json:"room,omitempty"`
	Payload   any         `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Viewer is the session behind a connection.
type Viewer interface {
	ID() string
	Role() types.Role
	IsAuthorized() bool
}

// RoomSource decides who may join a room and what a new member of it
// receives first.
type RoomSource interface {
	CanJoin(v Viewer, room string) bool
	Snapshot(room string) ([]byte, bool)
}

// Client represents a connected WebSocket client
type Client struct {
	ID       string
	Viewer   Viewer
	Conn     *websocket.Conn
	Hub      *Hub
	Send     chan []byte
	Rooms    map[string]bool
	mu       sync.Mutex
	lastPing time.Time
	closed   bool
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	clients     map[*Client]bool
	roomClients map[string]map[*Client]bool

	unregister    chan *Client
	roomBroadcast chan *RoomMessage

	source RoomSource

	mu sync.RWMutex
}

// RoomMessage represents a message to be sent to a specific room
type RoomMessage struct {
	Room    string
	Message []byte
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:       make(map[*Client]bool),
		roomClients:   make(map[string]map[*Client]bool),
		unregister:    make(chan *Client),
		roomBroadcast: make(chan *RoomMessage, 256),
	}
}

// SetRoomSource installs the join policy and initial snapshots.
func (h *Hub) SetRoomSource(src RoomSource) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.source = src
}

// Run starts the hub's main loop and returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	log.Info().Msg("[Hub] WebSocket hub started")

	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			log.Info().Msg("[Hub] WebSocket hub stopped")
			return

		case client := <-h.unregister:
			h.unregisterClient(client)

		case rm := <-h.roomBroadcast:
			h.broadcastToRoom(rm)

		case <-pingTicker.C:
			h.pingClients()
		}
	}
}

// Register adds a client before any room join. It takes effect before it
// returns.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
	log.Info().Msgf("[Hub] ✅ Client registered: session=%s, id=%s, total_clients=%d",
		client.Viewer.ID(), client.ID, len(h.clients))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)

	client.mu.Lock()
	for room := range client.Rooms {
		if clients, ok := h.roomClients[room]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.roomClients, room)
			}
		}
	}
	client.closeSend()
	client.mu.Unlock()

	log.Info().Msgf("[Hub] ❌ Client disconnected: session=%s, id=%s, total_clients=%d",
		client.Viewer.ID(), client.ID, len(h.clients))
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.mu.Lock()
		client.closeSend()
		client.mu.Unlock()
	}
	h.clients = make(map[*Client]bool)
	h.roomClients = make(map[string]map[*Client]bool)
}

// drop queues a slow client for removal without blocking the caller.
func (h *Hub) drop(c *Client) {
	go func() {
		h.unregister <- c
	}()
}

func (h *Hub) broadcastToRoom(rm *RoomMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for client := range h.roomClients[rm.Room] {
		select {
		case client.Send <- rm.Message:
			sent++
		default:
			h.drop(client)
		}
	}
	log.Debug().Msgf("[Hub] Broadcast to room %s: sent to %d clients", rm.Room, sent)
}

func (h *Hub) pingClients() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data, _ := json.Marshal(Message{Type: MessagePing, Timestamp: time.Now()})
	for client := range h.clients {
		select {
		case client.Send <- data:
		default:
			h.drop(client)
		}
	}
}

// ============================================
// Public Methods for Room Management
// ============================================

// JoinRoom adds a registered client to a room it is allowed into and queues
// the room's current snapshot for it. A client the hub has already dropped
// is refused.
func (h *Hub) JoinRoom(client *Client, room string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[client] {
		return false
	}
	if room != SessionRoom(client.Viewer.ID()) {
		if h.source == nil || !h.source.CanJoin(client.Viewer, room) {
			log.Warn().Msgf("[Hub] 🚫 Join refused: session=%s, room=%s", client.Viewer.ID(), room)
			return false
		}
	}

	client.mu.Lock()
	if client.closed {
		client.mu.Unlock()
		return false
	}
	client.Rooms[room] = true
	client.mu.Unlock()

	if h.roomClients[room] == nil {
		h.roomClients[room] = make(map[*Client]bool)
	}
	h.roomClients[room][client] = true

	if h.source != nil {
		if data, ok := h.source.Snapshot(room); ok && !client.trySend(data) {
			h.drop(client)
		}
	}

	log.Debug().Msgf("[Hub] 👥 Client joined room: session=%s, room=%s", client.Viewer.ID(), room)
	return true
}

// LeaveRoom removes a client from a room
func (h *Hub) LeaveRoom(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client.mu.Lock()
	delete(client.Rooms, room)
	client.mu.Unlock()

	if clients, ok := h.roomClients[room]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.roomClients, room)
		}
	}
	log.Debug().Msgf("[Hub] 👋 Client left room: session=%s, room=%s", client.Viewer.ID(), room)
}

// ============================================
// Public Methods for Sending Messages
// ============================================

func Encode(msgType MessageType, room string, payload any) ([]byte, error) {
	return json.Marshal(Message{
		Type:      msgType,
		Room:      room,
		Payload:   payload,
		Timestamp: time.Now(),
	})
}

// SendToRoom broadcasts a message to all clients in a room
func (h *Hub) SendToRoom(room string, msgType MessageType, payload any) {
	data, err := Encode(msgType, room, payload)
	if err != nil {
		log.Error().Err(err).Msg("[Hub] Error marshaling message")
		return
	}
	h.roomBroadcast <- &RoomMessage{Room: room, Message: data}
}

// ============================================
// Query Methods
// ============================================

// GetRoomClients returns the number of clients in a room
func (h *Hub) GetRoomClients(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.roomClients[room])
}

// GetConnectedClientsCount returns total connected clients
func (h *Hub) GetConnectedClientsCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
