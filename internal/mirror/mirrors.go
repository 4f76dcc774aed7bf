package mirror

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"

	"github.com/Marga-Ghale/sanchari-backend/internal/models"
	"github.com/Marga-Ghale/sanchari-backend/internal/repository"
	"github.com/Marga-Ghale/sanchari-backend/internal/types"
)

// Mirrors groups the three process-wide mirrors. They are independently
// consistent with the store; nothing orders updates across them.
type Mirrors struct {
	Members       *Collection[models.Member]
	Events        *Collection[models.TravelEvent]
	Registrations *Collection[models.Registration]
}

func NewMirrors(store repository.Store) *Mirrors {
	return &Mirrors{
		Members:       NewCollection[models.Member](store, types.CollectionMembers),
		Events:        NewCollection[models.TravelEvent](store, types.CollectionEvents),
		Registrations: NewCollection[models.Registration](store, types.CollectionRegistrations),
	}
}

// Start opens all three watches.
func (m *Mirrors) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return m.Members.Start(gctx) })
	g.Go(func() error { return m.Events.Start(gctx) })
	g.Go(func() error { return m.Registrations.Start(gctx) })
	if err := g.Wait(); err != nil {
		m.Close()
		return err
	}
	log.Info().Msg("[Mirror] ✅ members, events and registrations mirrors live")
	return nil
}

func (m *Mirrors) Close() {
	m.Members.Close()
	m.Events.Close()
	m.Registrations.Close()
}

// Health maps each mirror name to its watch error, nil when healthy.
func (m *Mirrors) Health() map[string]error {
	return map[string]error{
		m.Members.Name():       m.Members.Err(),
		m.Events.Name():        m.Events.Err(),
		m.Registrations.Name(): m.Registrations.Err(),
	}
}

// FindMemberByEmail matches email case-insensitively against the members
// snapshot.
func (m *Mirrors) FindMemberByEmail(email string) (models.Member, bool) {
	folder := cases.Fold()
	want := folder.String(email)
	for _, mem := range m.Members.Snapshot() {
		if folder.String(mem.Email) == want {
			return mem, true
		}
	}
	return models.Member{}, false
}

func (m *Mirrors) FindMember(id string) (models.Member, bool) {
	for _, mem := range m.Members.Snapshot() {
		if mem.ID == id {
			return mem, true
		}
	}
	return models.Member{}, false
}

func (m *Mirrors) FindEvent(id string) (models.TravelEvent, bool) {
	for _, ev := range m.Events.Snapshot() {
		if ev.ID == id {
			return ev, true
		}
	}
	return models.TravelEvent{}, false
}
