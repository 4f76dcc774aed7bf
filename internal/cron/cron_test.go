package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marga-Ghale/sanchari-backend/internal/generation"
	"github.com/Marga-Ghale/sanchari-backend/internal/mirror"
	"github.com/Marga-Ghale/sanchari-backend/internal/models"
	"github.com/Marga-Ghale/sanchari-backend/internal/registration"
	"github.com/Marga-Ghale/sanchari-backend/internal/repository"
	"github.com/Marga-Ghale/sanchari-backend/internal/service"
	"github.com/Marga-Ghale/sanchari-backend/internal/types"
)

type fakeHealth map[string]error

func (f fakeHealth) Health() map[string]error { return f }

type staleRecorder struct{ got []string }

func (r *staleRecorder) BroadcastStale(collection string, _ error) {
	r.got = append(r.got, collection)
}

type fakePruner struct{ ids []string }

func (p fakePruner) Prune(time.Duration) []string { return p.ids }

type client struct {
	id     string
	member models.Member
}

func (c client) ID() string                           { return c.id }
func (c client) CurrentMember() (models.Member, bool) { return c.member, true }

func newServices(t *testing.T) (*service.Services, repository.Store) {
	t.Helper()
	store := repository.NewMemoryStore()
	mirrors := mirror.NewMirrors(store)
	require.NoError(t, mirrors.Start(context.Background()))
	t.Cleanup(mirrors.Close)
	return service.NewServices(&service.ServiceDeps{
		Repos:     repository.NewRepositories(store),
		Mirrors:   mirrors,
		Generator: generation.NewGenerator(nil),
	}), store
}

func TestCompletePastEvents(t *testing.T) {
	ctx := context.Background()
	services, store := newServices(t)
	require.NoError(t, store.Set(ctx, types.CollectionEvents, "past", map[string]any{
		"title": "Past", "date": "2026-01-01", "status": types.EventPublished,
	}))
	require.NoError(t, store.Set(ctx, types.CollectionEvents, "future", map[string]any{
		"title": "Future", "date": "2027-01-01", "status": types.EventPublished,
	}))

	s := NewScheduler(services, fakePruner{}, fakeHealth{}, nil, time.Hour)
	s.now = func() time.Time { return time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC) }
	s.completePastEvents()

	docs, err := store.GetAll(ctx, types.CollectionEvents)
	require.NoError(t, err)
	status := map[string]any{}
	for _, d := range docs {
		status[d.ID] = d.Data["status"]
	}
	assert.Equal(t, types.EventCompleted, status["past"])
	assert.Equal(t, types.EventPublished, status["future"])
}

func TestMirrorHealthNotifiesOncePerFailure(t *testing.T) {
	services, _ := newServices(t)
	health := fakeHealth{"events": errors.New("stream closed"), "members": nil}
	rec := &staleRecorder{}

	s := NewScheduler(services, fakePruner{}, health, rec, time.Hour)
	s.checkMirrorHealth()
	s.checkMirrorHealth()
	assert.Equal(t, []string{"events"}, rec.got)

	health["events"] = nil
	s.checkMirrorHealth()
	health["events"] = errors.New("stream closed")
	s.checkMirrorHealth()
	assert.Equal(t, []string{"events", "events"}, rec.got)
}

func TestPruneSessionsForgetsWorkflows(t *testing.T) {
	ctx := context.Background()
	services, store := newServices(t)
	require.NoError(t, store.Set(ctx, types.CollectionEvents, "e1", map[string]any{
		"title": "Ride", "date": "2027-01-01", "capacity": 10, "status": types.EventPublished,
	}))

	c := client{id: "s1", member: models.Member{ID: "m1", Name: "Meera"}}
	require.NoError(t, services.Registration.RequestJoin(c, "e1"))
	require.Equal(t, registration.StatusPending, services.Registration.State(c).Status)

	s := NewScheduler(services, fakePruner{ids: []string{"s1"}}, fakeHealth{}, nil, time.Hour)
	s.pruneSessions()

	assert.Equal(t, registration.StatusIdle, services.Registration.State(c).Status)
}

func TestStartAndStop(t *testing.T) {
	services, _ := newServices(t)
	s := NewScheduler(services, fakePruner{}, fakeHealth{}, nil, time.Hour)
	require.NoError(t, s.Start())
	s.Stop()
}
