package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(docs []Doc) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func TestMemoryStoreWatchDeliversSnapshotImmediately(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, "events", "e1", map[string]any{"title": "Rara"}))

	var got [][]Doc
	unsub, err := s.Watch(ctx, "events", func(docs []Doc) { got = append(got, docs) }, nil)
	require.NoError(t, err)
	defer unsub()

	require.Len(t, got, 1)
	assert.Equal(t, []string{"e1"}, ids(got[0]))
	assert.Equal(t, "Rara", got[0][0].Data["title"])
}

func TestMemoryStoreWatchEmptyCollection(t *testing.T) {
	s := NewMemoryStore()

	calls := 0
	var last []Doc
	unsub, err := s.Watch(context.Background(), "members", func(docs []Doc) {
		calls++
		last = docs
	}, nil)
	require.NoError(t, err)
	defer unsub()

	assert.Equal(t, 1, calls)
	assert.NotNil(t, last)
	assert.Empty(t, last)
}

func TestMemoryStoreNotifiesEveryChangeInOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var lengths []int
	unsub, err := s.Watch(ctx, "registrations", func(docs []Doc) { lengths = append(lengths, len(docs)) }, nil)
	require.NoError(t, err)
	defer unsub()

	require.NoError(t, s.Set(ctx, "registrations", "r1", map[string]any{"eventId": "e1"}))
	_, err = s.Add(ctx, "registrations", map[string]any{"eventId": "e1"})
	require.NoError(t, err)
	require.NoError(t, s.Update(ctx, "registrations", "r1", map[string]any{"specialRequests": "veg"}))

	assert.Equal(t, []int{0, 1, 2, 2}, lengths)
}

func TestMemoryStoreOtherCollectionsDoNotNotify(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	calls := 0
	unsub, err := s.Watch(ctx, "members", func([]Doc) { calls++ }, nil)
	require.NoError(t, err)
	defer unsub()

	require.NoError(t, s.Set(ctx, "events", "e1", map[string]any{}))
	assert.Equal(t, 1, calls)
}

func TestMemoryStoreUnsubscribeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	calls := 0
	unsub, err := s.Watch(ctx, "events", func([]Doc) { calls++ }, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, s.WatchCount("events"))

	unsub()
	unsub()
	assert.Equal(t, 0, s.WatchCount("events"))

	require.NoError(t, s.Set(ctx, "events", "e1", map[string]any{}))
	assert.Equal(t, 1, calls)
}

func TestMemoryStoreSetReplacesAndKeepsOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, "members", "a", map[string]any{"name": "A", "phone": "1"}))
	require.NoError(t, s.Set(ctx, "members", "b", map[string]any{"name": "B"}))
	require.NoError(t, s.Set(ctx, "members", "a", map[string]any{"name": "A2"}))

	docs, err := s.GetAll(ctx, "members")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(docs))
	assert.Equal(t, map[string]any{"name": "A2"}, docs[0].Data)
}

func TestMemoryStoreUpdateMergesFields(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, "events", "e1", map[string]any{"title": "Rara", "status": "draft"}))
	require.NoError(t, s.Update(ctx, "events", "e1", map[string]any{"status": "published"}))

	docs, err := s.GetAll(ctx, "events")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "Rara", "status": "published"}, docs[0].Data)
}

func TestMemoryStoreUpdateMissingDocument(t *testing.T) {
	s := NewMemoryStore()
	err := s.Update(context.Background(), "events", "nope", map[string]any{"status": "published"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreSnapshotsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, "members", "a", map[string]any{"name": "A"}))

	docs, err := s.GetAll(ctx, "members")
	require.NoError(t, err)
	docs[0].Data["name"] = "mutated"

	docs, err = s.GetAll(ctx, "members")
	require.NoError(t, err)
	assert.Equal(t, "A", docs[0].Data["name"])
}

func TestMemoryStoreDropWatches(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	dropped := errors.New("transport lost")

	calls := 0
	var gotErr error
	unsub, err := s.Watch(ctx, "events", func([]Doc) { calls++ }, func(err error) { gotErr = err })
	require.NoError(t, err)

	s.DropWatches("events", dropped)
	assert.ErrorIs(t, gotErr, dropped)

	require.NoError(t, s.Set(ctx, "events", "e1", map[string]any{}))
	assert.Equal(t, 1, calls)

	// Releasing a dropped watch is still safe.
	unsub()
}

func TestMemoryStoreCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewMemoryStore()

	_, err := s.Watch(ctx, "events", func([]Doc) {}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Set(ctx, "events", "e1", nil), context.Canceled)
}
