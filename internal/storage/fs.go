package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

var clientIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

func validClientID(id string) bool {
	return clientIDPattern.MatchString(id)
}

// FSStore keeps each key as a JSON file under {basePath}/{clientID}/{key}.json.
// Writes go through a temp file and rename so readers never see partial data.
type FSStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFSStore constructs a store rooted at dir.
func NewFSStore(dir string) *FSStore {
	return &FSStore{dir: dir}
}

func (s *FSStore) path(key Key) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s.json", key))
}

// Get reads the file for key.
func (s *FSStore) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	_ = ctx
	if s == nil {
		return nil, false, errors.New("storage: fs store not configured")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Set writes the value for key atomically.
func (s *FSStore) Set(ctx context.Context, key Key, value []byte) error {
	_ = ctx
	if s == nil {
		return errors.New("storage: fs store not configured")
	}
	if !validKey(key) {
		return fmt.Errorf("storage: unknown key %q", key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	target := s.path(key)
	if existing, err := os.ReadFile(target); err == nil && bytes.Equal(existing, value) {
		return nil
	}
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, target)
}

// Remove deletes the file for key.
func (s *FSStore) Remove(ctx context.Context, key Key) error {
	_ = ctx
	if s == nil {
		return errors.New("storage: fs store not configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// FSProvider hands out FSStores rooted at {basePath}/{clientID}.
type FSProvider struct {
	basePath string
	mu       sync.Mutex
	stores   map[string]*FSStore
}

// NewFSProvider constructs a provider rooted at basePath.
func NewFSProvider(basePath string) *FSProvider {
	return &FSProvider{basePath: basePath, stores: make(map[string]*FSStore)}
}

// BasePath exposes the provider root (primarily for testing).
func (p *FSProvider) BasePath() string {
	if p == nil {
		return ""
	}
	return p.basePath
}

// ForClient returns the store for clientID.
func (p *FSProvider) ForClient(clientID string) (Store, error) {
	if !validClientID(clientID) {
		return nil, ErrInvalidClient
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.stores[clientID]
	if !ok {
		s = NewFSStore(filepath.Join(p.basePath, clientID))
		p.stores[clientID] = s
	}
	return s, nil
}
