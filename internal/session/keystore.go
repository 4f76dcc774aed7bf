package session

import (
	"context"
	"sync"
)

// KeyStore is the durable storage for persisted session records. RedisDB
// satisfies it in production.
type KeyStore interface {
	GetSession(ctx context.Context, key string) ([]byte, bool, error)
	SetSession(ctx context.Context, key string, data []byte) error
	DeleteSession(ctx context.Context, key string) error
}

// MemoryKeyStore keeps records in process memory. Records do not survive a
// restart.
type MemoryKeyStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryKeyStore() *MemoryKeyStore {
	return &MemoryKeyStore{data: make(map[string][]byte)}
}

func (m *MemoryKeyStore) GetSession(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *MemoryKeyStore) SetSession(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(data))
	copy(v, data)
	m.data[key] = v
	return nil
}

func (m *MemoryKeyStore) DeleteSession(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
