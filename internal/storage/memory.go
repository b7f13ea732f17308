package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps a thread-safe map of values for one client.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[Key][]byte
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[Key][]byte)}
}

// Get returns a copy of the stored value.
func (s *MemoryStore) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set replaces the value at key.
func (s *MemoryStore) Set(ctx context.Context, key Key, value []byte) error {
	_ = ctx
	if !validKey(key) {
		return fmt.Errorf("storage: unknown key %q", key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = append([]byte(nil), value...)
	return nil
}

// Remove deletes the value at key. Missing keys are not an error.
func (s *MemoryStore) Remove(ctx context.Context, key Key) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

// MemoryProvider hands out one MemoryStore per client.
type MemoryProvider struct {
	mu     sync.Mutex
	stores map[string]*MemoryStore
}

// NewMemoryProvider constructs an empty provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{stores: make(map[string]*MemoryStore)}
}

// ForClient returns the store for clientID, creating it on first use.
func (p *MemoryProvider) ForClient(clientID string) (Store, error) {
	if !validClientID(clientID) {
		return nil, ErrInvalidClient
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.stores[clientID]
	if !ok {
		s = NewMemoryStore()
		p.stores[clientID] = s
	}
	return s, nil
}
