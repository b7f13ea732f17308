package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type providerFactory func(t *testing.T) Provider

func providers() map[string]providerFactory {
	return map[string]providerFactory{
		"memory": func(t *testing.T) Provider { return NewMemoryProvider() },
		"fs":     func(t *testing.T) Provider { return NewFSProvider(t.TempDir()) },
		"sqlite": func(t *testing.T) Provider {
			p, err := OpenSQLite(filepath.Join(t.TempDir(), "client.db"))
			if err != nil {
				t.Fatalf("open sqlite: %v", err)
			}
			t.Cleanup(func() { _ = p.Close() })
			return p
		},
	}
}

func TestStoreRoundTripAcrossProviders(t *testing.T) {
	ctx := context.Background()
	for name, factory := range providers() {
		t.Run(name, func(t *testing.T) {
			s, err := factory(t).ForClient("device-1")
			if err != nil {
				t.Fatalf("for client: %v", err)
			}
			if _, ok, err := s.Get(ctx, KeyLanguage); err != nil || ok {
				t.Fatalf("expected empty store, ok=%v err=%v", ok, err)
			}
			if err := s.Set(ctx, KeyLanguage, []byte(`"pt"`)); err != nil {
				t.Fatalf("set: %v", err)
			}
			if err := s.Set(ctx, KeyLanguage, []byte(`"bg"`)); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			got, ok, err := s.Get(ctx, KeyLanguage)
			if err != nil || !ok {
				t.Fatalf("get: ok=%v err=%v", ok, err)
			}
			if string(got) != `"bg"` {
				t.Fatalf("expected overwritten value, got %s", got)
			}
			if err := s.Remove(ctx, KeyLanguage); err != nil {
				t.Fatalf("remove: %v", err)
			}
			if err := s.Remove(ctx, KeyLanguage); err != nil {
				t.Fatalf("remove missing key: %v", err)
			}
			if _, ok, _ := s.Get(ctx, KeyLanguage); ok {
				t.Fatal("expected key removed")
			}
		})
	}
}

func TestStoreIsolatesClients(t *testing.T) {
	ctx := context.Background()
	for name, factory := range providers() {
		t.Run(name, func(t *testing.T) {
			p := factory(t)
			a, _ := p.ForClient("a")
			b, _ := p.ForClient("b")
			if err := a.Set(ctx, KeyChatSessionID, []byte(`"s1"`)); err != nil {
				t.Fatalf("set: %v", err)
			}
			if _, ok, _ := b.Get(ctx, KeyChatSessionID); ok {
				t.Fatal("expected client b not to see client a's value")
			}
		})
	}
}

func TestForClientRejectsUnsafeIDs(t *testing.T) {
	for name, factory := range providers() {
		t.Run(name, func(t *testing.T) {
			p := factory(t)
			for _, id := range []string{"", "../etc", "a/b", "spaces here"} {
				if _, err := p.ForClient(id); !errors.Is(err, ErrInvalidClient) {
					t.Fatalf("expected ErrInvalidClient for %q, got %v", id, err)
				}
			}
		})
	}
}

func TestSetRejectsUnknownKey(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Set(context.Background(), Key("other"), []byte("1")); err == nil {
		t.Fatal("expected unknown key error")
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, ok, err := GetJSON[[]string](ctx, s, KeyFavorites); ok || err != nil {
		t.Fatalf("expected absent key, ok=%v err=%v", ok, err)
	}
	want := []string{"a", "b"}
	if err := SetJSON(ctx, s, KeyFavorites, want); err != nil {
		t.Fatalf("set json: %v", err)
	}
	got, ok, err := GetJSON[[]string](ctx, s, KeyFavorites)
	if err != nil || !ok {
		t.Fatalf("get json: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected value (-want +got):\n%s", diff)
	}

	_ = s.Set(ctx, KeyUser, []byte("{broken"))
	if _, ok, err := GetJSON[map[string]string](ctx, s, KeyUser); err == nil || ok {
		t.Fatalf("expected decode error, ok=%v err=%v", ok, err)
	}
}

func TestClearExceptKeepsListedKeys(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for _, k := range AllKeys {
		if err := s.Set(ctx, k, []byte(`1`)); err != nil {
			t.Fatalf("seed %s: %v", k, err)
		}
	}
	if err := ClearExcept(ctx, s, KeyLanguage); err != nil {
		t.Fatalf("clear: %v", err)
	}
	for _, k := range AllKeys {
		_, ok, _ := s.Get(ctx, k)
		if k == KeyLanguage && !ok {
			t.Fatal("expected language to survive")
		}
		if k != KeyLanguage && ok {
			t.Fatalf("expected %s removed", k)
		}
	}
}

func TestFSStoreWritesAtomically(t *testing.T) {
	ctx := context.Background()
	p := NewFSProvider(t.TempDir())
	s, _ := p.ForClient("device")
	if err := s.Set(ctx, KeyFavorites, []byte(`[]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	dir := filepath.Join(p.BasePath(), "device")
	if _, err := os.Stat(filepath.Join(dir, "favorites.json")); err != nil {
		t.Fatalf("expected favorites file: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "favorites.json.tmp")); !os.IsNotExist(err) {
		t.Fatalf("expected temp file renamed away, got %v", err)
	}
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Set(ctx, KeyLanguage, []byte(`"en"`))
			_, _, _ = s.Get(ctx, KeyLanguage)
		}()
	}
	wg.Wait()
}
