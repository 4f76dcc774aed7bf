package mirror

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marga-Ghale/sanchari-backend/internal/models"
	"github.com/Marga-Ghale/sanchari-backend/internal/repository"
	"github.com/Marga-Ghale/sanchari-backend/internal/types"
)

func TestSubscribeCallsImmediatelyWithEmptySnapshot(t *testing.T) {
	store := repository.NewMemoryStore()
	events := NewCollection[models.TravelEvent](store, types.CollectionEvents)

	var got [][]models.TravelEvent
	unsub, err := events.Subscribe(context.Background(), func(evs []models.TravelEvent) {
		got = append(got, evs)
	})
	require.NoError(t, err)
	defer unsub()

	require.Len(t, got, 1)
	assert.NotNil(t, got[0])
	assert.Empty(t, got[0])
}

func TestSubscribeReceivesEveryChange(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	require.NoError(t, store.Set(ctx, types.CollectionEvents, "e1", map[string]any{"title": "Rara", "capacity": 10}))
	events := NewCollection[models.TravelEvent](store, types.CollectionEvents)

	var got [][]models.TravelEvent
	unsub, err := events.Subscribe(ctx, func(evs []models.TravelEvent) { got = append(got, evs) })
	require.NoError(t, err)
	defer unsub()

	require.NoError(t, store.Set(ctx, types.CollectionEvents, "e2", map[string]any{"title": "Tilicho"}))
	require.NoError(t, store.Update(ctx, types.CollectionEvents, "e1", map[string]any{"status": "published"}))

	require.Len(t, got, 3)
	assert.Equal(t, "e1", got[0][0].ID)
	assert.Equal(t, 10, got[0][0].Capacity)
	assert.Len(t, got[1], 2)
	assert.Equal(t, "published", got[2][0].Status)
	assert.Equal(t, got[2], events.Snapshot())
}

func TestUnsubscribeIsIdempotentAndReleasesWatch(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	members := NewCollection[models.Member](store, types.CollectionMembers)

	calls := 0
	unsubA, err := members.Subscribe(ctx, func([]models.Member) { calls++ })
	require.NoError(t, err)
	unsubB, err := members.Subscribe(ctx, func([]models.Member) {})
	require.NoError(t, err)
	assert.Equal(t, 1, store.WatchCount(types.CollectionMembers))

	unsubA()
	unsubA()
	assert.Equal(t, 1, store.WatchCount(types.CollectionMembers))

	require.NoError(t, store.Set(ctx, types.CollectionMembers, "m1", map[string]any{"name": "Asha"}))
	assert.Equal(t, 1, calls)

	unsubB()
	assert.Equal(t, 0, store.WatchCount(types.CollectionMembers))
}

func TestResubscribeAfterRelease(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	members := NewCollection[models.Member](store, types.CollectionMembers)

	unsub, err := members.Subscribe(ctx, func([]models.Member) {})
	require.NoError(t, err)
	unsub()

	require.NoError(t, store.Set(ctx, types.CollectionMembers, "m1", map[string]any{"name": "Asha"}))

	var first []models.Member
	unsub, err = members.Subscribe(ctx, func(ms []models.Member) {
		if first == nil {
			first = ms
		}
	})
	require.NoError(t, err)
	defer unsub()
	require.Len(t, first, 1)
	assert.Equal(t, "Asha", first[0].Name)
}

func TestMalformedDocumentPassesThrough(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	require.NoError(t, store.Set(ctx, types.CollectionEvents, "bad", map[string]any{"title": "Odd", "capacity": "many"}))
	events := NewCollection[models.TravelEvent](store, types.CollectionEvents)

	var got []models.TravelEvent
	unsub, err := events.Subscribe(ctx, func(evs []models.TravelEvent) { got = evs })
	require.NoError(t, err)
	defer unsub()

	require.Len(t, got, 1)
	assert.Equal(t, "bad", got[0].ID)
	assert.Equal(t, "Odd", got[0].Title)
	assert.Zero(t, got[0].Capacity)
}

func TestWatchFailureIsReportedNotRetried(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	events := NewCollection[models.TravelEvent](store, types.CollectionEvents)
	require.NoError(t, events.Start(ctx))
	defer events.Close()

	require.NoError(t, store.Set(ctx, types.CollectionEvents, "e1", map[string]any{"title": "Rara"}))
	assert.NoError(t, events.Err())

	lost := errors.New("connection reset")
	store.DropWatches(types.CollectionEvents, lost)

	assert.ErrorIs(t, events.Err(), lost)
	assert.Equal(t, 0, store.WatchCount(types.CollectionEvents))

	// The stale snapshot stays.
	require.NoError(t, store.Set(ctx, types.CollectionEvents, "e2", map[string]any{"title": "Tilicho"}))
	assert.Len(t, events.Snapshot(), 1)
}

func TestMirrorsStartAndFind(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	require.NoError(t, store.Set(ctx, types.CollectionMembers, "m1", map[string]any{"name": "Asha", "email": "Asha.Gurung@Example.com"}))
	require.NoError(t, store.Set(ctx, types.CollectionEvents, "e1", map[string]any{"title": "Rara"}))

	m := NewMirrors(store)
	require.NoError(t, m.Start(ctx))
	defer m.Close()

	assert.True(t, m.Members.Loaded())
	assert.True(t, m.Registrations.Loaded())

	mem, ok := m.FindMemberByEmail("asha.gurung@example.COM")
	require.True(t, ok)
	assert.Equal(t, "m1", mem.ID)

	_, ok = m.FindMemberByEmail("nobody@example.com")
	assert.False(t, ok)

	ev, ok := m.FindEvent("e1")
	require.True(t, ok)
	assert.Equal(t, "Rara", ev.Title)

	for name, err := range m.Health() {
		assert.NoError(t, err, name)
	}

	m.Close()
	assert.Equal(t, 0, store.WatchCount(types.CollectionMembers))
}
