// Package storage is the local persistence adapter: a small key-value cache
// scoped per client device, standing in for the browser's storage.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Key names one cached value.
type Key string

const (
	KeyLanguage           Key = "language"
	KeyFavorites          Key = "favorites"
	KeyChatHistory        Key = "chatHistory"
	KeyChatSessionID      Key = "chatSessionId"
	KeyOnboardingComplete Key = "onboardingComplete"
	KeyUser               Key = "user"
	KeyOutbox             Key = "outbox"
	KeyPendingMessages    Key = "pendingMessages"
)

// AllKeys lists every key the client writes.
var AllKeys = []Key{
	KeyLanguage,
	KeyFavorites,
	KeyChatHistory,
	KeyChatSessionID,
	KeyOnboardingComplete,
	KeyUser,
	KeyOutbox,
	KeyPendingMessages,
}

// ErrInvalidClient is returned when a client id cannot be used as a namespace.
var ErrInvalidClient = errors.New("storage: invalid client id")

// Store reads and writes raw values for a single client.
type Store interface {
	Get(ctx context.Context, key Key) ([]byte, bool, error)
	Set(ctx context.Context, key Key, value []byte) error
	Remove(ctx context.Context, key Key) error
}

// Provider hands out the Store for a client id.
type Provider interface {
	ForClient(clientID string) (Store, error)
}

// GetJSON decodes the value at key into a T. ok is false when the key is absent.
func GetJSON[T any](ctx context.Context, s Store, key Key) (T, bool, error) {
	var zero T
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return zero, ok, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, false, fmt.Errorf("storage: decode %s: %w", key, err)
	}
	return out, true, nil
}

// SetJSON encodes v and stores it at key.
func SetJSON(ctx context.Context, s Store, key Key, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}

// ClearExcept removes every known key except the ones listed.
func ClearExcept(ctx context.Context, s Store, keep ...Key) error {
	skip := make(map[Key]struct{}, len(keep))
	for _, k := range keep {
		skip[k] = struct{}{}
	}
	var errs []error
	for _, k := range AllKeys {
		if _, ok := skip[k]; ok {
			continue
		}
		if err := s.Remove(ctx, k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func validKey(key Key) bool {
	for _, k := range AllKeys {
		if k == key {
			return true
		}
	}
	return false
}
