package app

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/scoutline/scout-client/internal/delivery"
	"github.com/scoutline/scout-client/internal/domain/players"
	"github.com/scoutline/scout-client/internal/domain/profile"
	"github.com/scoutline/scout-client/internal/metrics"
	"github.com/scoutline/scout-client/internal/providers/fixture"
	"github.com/scoutline/scout-client/internal/storage"
	"github.com/scoutline/scout-client/internal/testutil"
)

var testNow = testutil.MustParseRFC3339("2024-05-10T09:30:00Z")

type harness struct {
	c     *Controller
	fx    *fixture.Provider
	store storage.Store
	rec   *metrics.Recorder
	deps  Deps
	opts  Options
}

func sequentialIDs() func() string {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newHarness(t *testing.T, opts Options, factory StrategyFactory) *harness {
	t.Helper()
	fx := fixture.New()
	rec := metrics.NewRecorder()
	deps := Deps{
		Remote:    fx,
		Search:    fx,
		Fallback:  fx,
		Languages: fx,
		Metrics:   rec,
		Now:       testutil.NowAt(testNow),
		NewID:     sequentialIDs(),
	}
	store := storage.NewMemoryStore()
	return &harness{
		c:     NewController("device-1", store, deps, opts, factory),
		fx:    fx,
		store: store,
		rec:   rec,
		deps:  deps,
		opts:  opts,
	}
}

// signedIn registers a fixture account with a completed profile and signs in.
func (h *harness) signedIn(t *testing.T) string {
	t.Helper()
	userID := h.fx.AddAccount("scout@club.com", "secret1", map[string]string{"user_type": "club", "name": "Scout"})
	h.fx.SetProfile(profileFor(userID, true))
	if _, err := h.c.SignIn(context.Background(), "scout@club.com", "secret1"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	return userID
}

func cached[T any](t *testing.T, s storage.Store, key storage.Key) (T, bool) {
	t.Helper()
	v, ok, err := storage.GetJSON[T](context.Background(), s, key)
	if err != nil {
		t.Fatalf("read %s: %v", key, err)
	}
	return v, ok
}

func striker() players.Player {
	return players.Player{ID: "p-9", Name: "Ana Costa", Age: "24", Club: "Benfica", Positions: []string{"cf"}, Score: 91}
}

func winger() players.Player {
	return players.Player{ID: "p-7", Name: "Ivan Petrov", Age: "21", Club: "Ludogorets", Positions: []string{"lw"}, Score: 80}
}

// gatedStrategy holds session-create ops until released and delivers
// everything else inline.
type gatedStrategy struct {
	d    *delivery.Dispatcher
	mu   sync.Mutex
	held []delivery.Op
}

func (g *gatedStrategy) Submit(ctx context.Context, op delivery.Op) error {
	if op.Kind == kindSessionCreate {
		g.mu.Lock()
		g.held = append(g.held, op)
		g.mu.Unlock()
		return nil
	}
	return g.d.Dispatch(ctx, op)
}

func (g *gatedStrategy) release(ctx context.Context) error {
	g.mu.Lock()
	held := g.held
	g.held = nil
	g.mu.Unlock()
	for _, op := range held {
		if err := g.d.Dispatch(ctx, op); err != nil {
			return err
		}
	}
	return nil
}

func profileFor(userID string, onboarded bool) profile.Profile {
	return profile.Profile{
		ID:                 userID,
		Email:              "scout@club.com",
		UserType:           profile.UserTypeClub,
		Name:               "Scout",
		Team:               "FC Test",
		OnboardingComplete: onboarded,
	}
}
