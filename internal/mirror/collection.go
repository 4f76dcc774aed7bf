package mirror

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/Marga-Ghale/sanchari-backend/internal/repository"
)

// Collection is a live, read-only local copy of one store collection.
//
// The remote watch is opened by the first subscriber and released by the
// last. Snapshots are replaced wholesale and never mutated, so a slice
// handed to a subscriber or returned by Snapshot stays consistent forever.
type Collection[T any] struct {
	name  string
	store repository.Store

	// openMu serializes opening and releasing the remote watch.
	openMu sync.Mutex
	refs   int
	remote repository.Unsubscribe

	// deliverMu serializes callbacks so subscribers see snapshots in the
	// order the store reported them.
	deliverMu sync.Mutex

	mu       sync.RWMutex
	snapshot []T
	loaded   bool
	err      error
	subs     map[int]*subscriber[T]
	nextID   int

	keepAlive func()
}

type subscriber[T any] struct {
	fn     func([]T)
	active atomic.Bool
}

func NewCollection[T any](store repository.Store, name string) *Collection[T] {
	return &Collection[T]{
		name:     name,
		store:    store,
		snapshot: []T{},
		subs:     make(map[int]*subscriber[T]),
	}
}

func (c *Collection[T]) Name() string { return c.name }

// Subscribe calls fn at once with the current snapshot (empty when nothing
// has loaded yet) and again after every change the store reports.
//
// The returned function unsubscribes. It is idempotent and once it returns fn
// is not called again. It must not be called from inside fn.
func (c *Collection[T]) Subscribe(ctx context.Context, fn func([]T)) (func(), error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}

	sub := &subscriber[T]{fn: fn}
	sub.active.Store(true)

	c.deliverMu.Lock()
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = sub
	snap := c.snapshot
	c.mu.Unlock()
	fn(snap)
	c.deliverMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.active.Store(false)
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
			// Wait out a delivery that may still be running fn.
			c.deliverMu.Lock()
			c.deliverMu.Unlock()
			c.release()
		})
	}, nil
}

func (c *Collection[T]) acquire(ctx context.Context) error {
	c.openMu.Lock()
	defer c.openMu.Unlock()

	if c.refs == 0 {
		c.mu.Lock()
		c.err = nil
		c.mu.Unlock()

		unsub, err := c.store.Watch(ctx, c.name, c.onChange, c.onError)
		if err != nil {
			c.mu.Lock()
			c.err = err
			c.mu.Unlock()
			return err
		}
		c.remote = unsub
	}
	c.refs++
	return nil
}

func (c *Collection[T]) release() {
	c.openMu.Lock()
	defer c.openMu.Unlock()

	c.refs--
	if c.refs == 0 && c.remote != nil {
		c.remote()
		c.remote = nil
	}
}

func (c *Collection[T]) onChange(docs []repository.Doc) {
	records, err := repository.DecodeDocs[T](docs)
	if err != nil {
		log.Warn().Err(err).Msgf("[Mirror] %s: malformed document kept as-is", c.name)
	}

	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()

	c.mu.Lock()
	c.snapshot = records
	c.loaded = true
	subs := make([]*subscriber[T], 0, len(c.subs))
	for _, s := range c.subs {
		subs = append(subs, s)
	}
	c.mu.Unlock()

	for _, s := range subs {
		if s.active.Load() {
			s.fn(records)
		}
	}
}

// onError records a terminated watch. Nothing reconnects it; the last
// snapshot stays in place and Err reports the failure.
func (c *Collection[T]) onError(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
	log.Error().Err(err).Msgf("[Mirror] ❌ %s watch terminated, snapshot is now stale", c.name)
}

// Snapshot returns the current records in store order. Callers must not
// modify the slice.
func (c *Collection[T]) Snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Loaded reports whether the store has delivered at least one snapshot.
func (c *Collection[T]) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Err returns the error that terminated the remote watch, or nil.
func (c *Collection[T]) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Start holds an internal subscription so the mirror stays warm without
// outside subscribers.
func (c *Collection[T]) Start(ctx context.Context) error {
	unsub, err := c.Subscribe(ctx, func([]T) {})
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.keepAlive = unsub
	c.mu.Unlock()
	return nil
}

func (c *Collection[T]) Close() {
	c.mu.Lock()
	unsub := c.keepAlive
	c.keepAlive = nil
	c.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}
