package repository

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// MemoryStore is a process-local Store. It backs development runs without a
// MongoDB URI and the package tests of everything built on Store.
//
// Notifications are delivered synchronously by the writing goroutine, after
// the write is applied and before the write call returns.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]*memCollection
	nextWatchID int
}

type memCollection struct {
	order   []string
	docs    map[string]map[string]any
	watches map[int]*memWatch

	// notifyMu serializes deliveries so every watch sees snapshots in the
	// order writes were applied.
	notifyMu sync.Mutex
}

type memWatch struct {
	onChange ChangeHandler
	onError  ErrorHandler
	active   atomic.Bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memCollection)}
}

func (s *MemoryStore) collection(name string) *memCollection {
	c, ok := s.collections[name]
	if !ok {
		c = &memCollection{
			docs:    make(map[string]map[string]any),
			watches: make(map[int]*memWatch),
		}
		s.collections[name] = c
	}
	return c
}

func (c *memCollection) snapshot() []Doc {
	docs := make([]Doc, 0, len(c.order))
	for _, id := range c.order {
		docs = append(docs, Doc{ID: id, Data: copyMap(c.docs[id])})
	}
	return docs
}

func (s *MemoryStore) Watch(ctx context.Context, collection string, onChange ChangeHandler, onError ErrorHandler) (Unsubscribe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	c := s.collection(collection)
	id := s.nextWatchID
	s.nextWatchID++
	w := &memWatch{onChange: onChange, onError: onError}
	w.active.Store(true)
	c.watches[id] = w
	docs := c.snapshot()
	c.notifyMu.Lock()
	s.mu.Unlock()

	w.onChange(docs)
	c.notifyMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(c.watches, id)
			s.mu.Unlock()
			w.active.Store(false)
			// Wait out a delivery that may already be running.
			c.notifyMu.Lock()
			c.notifyMu.Unlock()
		})
	}, nil
}

// notify must be called with s.mu held; it releases it.
func (s *MemoryStore) notify(c *memCollection) {
	docs := c.snapshot()
	watches := make([]*memWatch, 0, len(c.watches))
	for _, w := range c.watches {
		watches = append(watches, w)
	}
	c.notifyMu.Lock()
	s.mu.Unlock()
	defer c.notifyMu.Unlock()

	for _, w := range watches {
		if w.active.Load() {
			w.onChange(cloneDocs(docs))
		}
	}
}

func (s *MemoryStore) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	id := uuid.NewString()
	if err := s.Set(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, data map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	c := s.collection(collection)
	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = copyMap(data)
	s.notify(c)
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	c := s.collection(collection)
	doc, ok := c.docs[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	for k, v := range copyMap(fields) {
		doc[k] = v
	}
	s.notify(c)
	return nil
}

func (s *MemoryStore) GetAll(ctx context.Context, collection string) ([]Doc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collection(collection).snapshot(), nil
}

// DropWatches terminates every watch on collection with err, as a dropped
// transport would.
func (s *MemoryStore) DropWatches(collection string, err error) {
	s.mu.Lock()
	c := s.collection(collection)
	watches := make([]*memWatch, 0, len(c.watches))
	for id, w := range c.watches {
		watches = append(watches, w)
		delete(c.watches, id)
	}
	c.notifyMu.Lock()
	s.mu.Unlock()
	defer c.notifyMu.Unlock()

	for _, w := range watches {
		if w.active.Swap(false) && w.onError != nil {
			w.onError(err)
		}
	}
}

// WatchCount reports how many watches are open on collection.
func (s *MemoryStore) WatchCount(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.collection(collection).watches)
}

func cloneDocs(docs []Doc) []Doc {
	out := make([]Doc, len(docs))
	for i, d := range docs {
		out[i] = Doc{ID: d.ID, Data: copyMap(d.Data)}
	}
	return out
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	default:
		return v
	}
}
