package socket

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Marga-Ghale/sanchari-backend/internal/mirror"
	"github.com/Marga-Ghale/sanchari-backend/internal/models"
	"github.com/Marga-Ghale/sanchari-backend/internal/service"
	"github.com/Marga-Ghale/sanchari-backend/internal/types"
)

// Broadcaster forwards every mirror snapshot to the rooms that show it.
// It is also the hub's RoomSource.
type Broadcaster struct {
	hub     *Hub
	mirrors *mirror.Mirrors
	events  service.EventService
	admin   service.AdminService

	mu    sync.Mutex
	unsub []func()
}

// NewBroadcaster creates a Broadcaster and installs it on the hub.
func NewBroadcaster(hub *Hub, mirrors *mirror.Mirrors, events service.EventService, admin service.AdminService) *Broadcaster {
	b := &Broadcaster{hub: hub, mirrors: mirrors, events: events, admin: admin}
	hub.SetRoomSource(b)
	return b
}

// ============================================
// Mirror Subscriptions
// ============================================

// Start subscribes to the three mirrors. Each subscription pushes at once,
// so rooms receive the current state before any change arrives.
func (b *Broadcaster) Start(ctx context.Context) error {
	memberUnsub, err := b.mirrors.Members.Subscribe(ctx, func(members []models.Member) {
		b.hub.SendToRoom(RoomMembers, MessageSnapshot, memberResponses(members))
		b.hub.SendToRoom(RoomStats, MessageSnapshot, b.admin.Stats())
	})
	if err != nil {
		return err
	}
	b.track(memberUnsub)

	eventUnsub, err := b.mirrors.Events.Subscribe(ctx, func([]models.TravelEvent) {
		b.hub.SendToRoom(RoomEvents, MessageSnapshot, b.events.PublishedEvents())
	})
	if err != nil {
		b.Stop()
		return err
	}
	b.track(eventUnsub)

	regUnsub, err := b.mirrors.Registrations.Subscribe(ctx, func(regs []models.Registration) {
		b.hub.SendToRoom(RoomRegistrations, MessageSnapshot, regs)
		// Remaining slots and active bookings derive from registrations.
		b.hub.SendToRoom(RoomEvents, MessageSnapshot, b.events.PublishedEvents())
		b.hub.SendToRoom(RoomStats, MessageSnapshot, b.admin.Stats())
	})
	if err != nil {
		b.Stop()
		return err
	}
	b.track(regUnsub)

	log.Info().Msg("[Broadcaster] 📡 Streaming mirror snapshots to rooms")
	return nil
}

func (b *Broadcaster) track(fn func()) {
	b.mu.Lock()
	b.unsub = append(b.unsub, fn)
	b.mu.Unlock()
}

// Stop drops all mirror subscriptions.
func (b *Broadcaster) Stop() {
	b.mu.Lock()
	unsub := b.unsub
	b.unsub = nil
	b.mu.Unlock()
	for _, fn := range unsub {
		fn()
	}
}

// ============================================
// Direct Notices
// ============================================

// NotifySession pushes a session's state to its own connections.
func (b *Broadcaster) NotifySession(sessionID string, state models.SessionResponse) {
	b.hub.SendToRoom(SessionRoom(sessionID), MessageSessionChanged, state)
}

// BroadcastStale tells a mirror's room that its data stopped updating.
func (b *Broadcaster) BroadcastStale(collection string, err error) {
	b.hub.SendToRoom(collection, MessageStale, map[string]any{
		"collection": collection,
		"error":      err.Error(),
	})
}

// ============================================
// RoomSource
// ============================================

// CanJoin admits authorized sessions to events and unlocked admins to
// everything else.
func (b *Broadcaster) CanJoin(v Viewer, room string) bool {
	if !v.IsAuthorized() {
		return false
	}
	switch room {
	case RoomEvents:
		return true
	case RoomMembers, RoomRegistrations, RoomStats:
		return v.Role() == types.RoleAdmin
	default:
		return false
	}
}

func (b *Broadcaster) Snapshot(room string) ([]byte, bool) {
	var payload any
	switch room {
	case RoomEvents:
		payload = b.events.PublishedEvents()
	case RoomMembers:
		payload = memberResponses(b.mirrors.Members.Snapshot())
	case RoomRegistrations:
		payload = b.mirrors.Registrations.Snapshot()
	case RoomStats:
		payload = b.admin.Stats()
	default:
		return nil, false
	}
	data, err := Encode(MessageSnapshot, room, payload)
	if err != nil {
		log.Error().Err(err).Msgf("[Broadcaster] Encode %s snapshot", room)
		return nil, false
	}
	return data, true
}

func memberResponses(members []models.Member) []models.MemberResponse {
	out := make([]models.MemberResponse, len(members))
	for i, m := range members {
		out[i] = models.ToMemberResponse(m)
	}
	return out
}
