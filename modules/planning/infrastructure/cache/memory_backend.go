package cache

import (
	"context"
	"sync"
)

type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]Entry)}
}

func (m *MemoryBackend) Load(_ context.Context, key string) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	if !ok {
		return Entry{}, ErrNotFound
	}
	e.Payload = append([]byte(nil), e.Payload...)
	return e, nil
}

func (m *MemoryBackend) Store(_ context.Context, entry Entry) error {
	if !validKey(entry.Key) {
		return ErrInvalidKey
	}
	entry.Payload = append([]byte(nil), entry.Payload...)
	m.mu.Lock()
	m.entries[entry.Key] = entry
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) DeleteAll(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.entries)
	m.entries = make(map[string]Entry)
	return n, nil
}

func (m *MemoryBackend) List(_ context.Context) ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Info, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, Info{Key: e.Key, Size: int64(len(e.Payload)), StoredAt: e.StoredAt})
	}
	return out, nil
}
