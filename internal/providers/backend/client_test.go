package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/scoutline/scout-client/internal/domain/players"
	"github.com/scoutline/scout-client/internal/i18n"
	"github.com/scoutline/scout-client/internal/providers"
)

func TestUpdateFavoriteSendsActionWithBearer(t *testing.T) {
	var got struct {
		Action string         `json:"action"`
		Player players.Player `json:"player"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/preferences" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Fatalf("expected bearer token, got %q", r.Header.Get("Authorization"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"success": true, "message": "ok"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	err := c.UpdateFavorite(context.Background(), "tok", providers.ActionAddFavorite, players.Player{ID: "p1", Name: "Ana"})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if got.Action != "add_favorite" || got.Player.ID != "p1" {
		t.Fatalf("unexpected body %+v", got)
	}
}

func TestUpdateFavoriteFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get("Authorization"), "bad") {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success": false, "error": "invalid token"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success": false, "error": "player missing"}`))
	}))
	defer srv.Close()
	c := NewClient(Config{BaseURL: srv.URL})
	p := players.Player{ID: "p1"}

	if err := c.UpdateFavorite(context.Background(), "", providers.ActionAddFavorite, p); !errors.Is(err, providers.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated without token, got %v", err)
	}
	if err := c.UpdateFavorite(context.Background(), "bad", providers.ActionAddFavorite, p); !errors.Is(err, providers.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated on 401, got %v", err)
	}
	err := c.UpdateFavorite(context.Background(), "tok", providers.ActionRemoveFavorite, p)
	api, ok := providers.AsAPIError(err)
	if !ok || api.Message != "player missing" {
		t.Fatalf("expected api error from success=false, got %v", err)
	}
}

func TestLanguagesAcceptsArrayAndEnvelope(t *testing.T) {
	bodies := []string{
		`[{"code": "EN", "name": "English"}, {"code": "pt", "name": "Português"}, {"code": ""}]`,
		`{"languages": [{"code": "en", "name": "English"}, {"code": "pt", "name": "Português"}]}`,
	}
	want := []i18n.Language{{Code: "en", Name: "English"}, {Code: "pt", Name: "Português"}}
	for _, body := range bodies {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		c := NewClient(Config{BaseURL: srv.URL})
		got, err := c.Languages(context.Background())
		srv.Close()
		if err != nil {
			t.Fatalf("expected languages, got %v", err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("unexpected languages (-want +got):\n%s", diff)
		}
	}
}

func TestLanguagesErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/empty/languages" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := NewClient(Config{BaseURL: srv.URL}).Languages(context.Background()); err == nil {
		t.Fatal("expected error on 404")
	}
	if _, err := NewClient(Config{BaseURL: srv.URL + "/empty"}).Languages(context.Background()); err == nil {
		t.Fatal("expected error on empty list")
	}
}

func TestPhotoCandidatesOrder(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://api.local/", AvatarBaseURL: "https://avatars.local"})

	got := c.PhotoCandidates(players.Player{ID: "p 1", Name: "Ana Costa", PhotoURL: "https://cdn/ana.png"})
	want := []string{
		"https://cdn/ana.png",
		"http://api.local/player-image/p%201",
		"https://avatars.local/?background=random&name=Ana+Costa&size=256",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected candidates (-want +got):\n%s", diff)
	}

	bare := c.PhotoCandidates(players.Player{})
	if len(bare) != 1 || !strings.Contains(bare[0], "Unknown+Player") {
		t.Fatalf("expected avatar only for empty player, got %v", bare)
	}
}
