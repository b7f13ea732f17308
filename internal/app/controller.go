// Package app holds the per-client view/state controller: auth and onboarding,
// favorites, chat and the best-effort sync of all of it to the remote store.
package app

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scoutline/scout-client/internal/delivery"
	"github.com/scoutline/scout-client/internal/domain/chat"
	"github.com/scoutline/scout-client/internal/domain/players"
	"github.com/scoutline/scout-client/internal/domain/profile"
	"github.com/scoutline/scout-client/internal/i18n"
	"github.com/scoutline/scout-client/internal/intent"
	"github.com/scoutline/scout-client/internal/logging"
	"github.com/scoutline/scout-client/internal/metrics"
	"github.com/scoutline/scout-client/internal/providers"
	"github.com/scoutline/scout-client/internal/reconcile"
	"github.com/scoutline/scout-client/internal/storage"
)

// Deps are the collaborators shared by every controller.
type Deps struct {
	Remote     providers.Remote
	Search     providers.SearchProvider
	Fallback   providers.FavoritesFallback
	Languages  providers.LanguageSource
	Photos     providers.PhotoSource
	Classifier intent.Classifier
	Logger     *slog.Logger
	Metrics    *metrics.Recorder
	Now        func() time.Time
	NewID      func() string
}

// Options are product switches.
type Options struct {
	PlayerDefaults     players.Defaults
	VerificationBypass bool
	DemoAccounts       bool
	DefaultLanguage    string
	// MaxClients caps the controllers a Registry keeps loaded. Zero means
	// DefaultMaxClients.
	MaxClients int
}

// StrategyFactory builds the sync strategy for one client.
type StrategyFactory func(d *delivery.Dispatcher, store storage.Store) delivery.Strategy

// Controller owns one client's state. Every intent updates local state and the
// local cache before anything is sent to a remote collaborator.
type Controller struct {
	clientID string
	deps     Deps
	opts     Options
	store    storage.Store
	sync     delivery.Strategy
	logger   *slog.Logger

	mu        sync.Mutex
	state     State
	session   profile.AuthSession
	languages []i18n.Language
	// sign-up details kept while the email is being verified
	pendingProfile profile.Profile
	// unsent messages per local session id, waiting for the remote id
	pending map[string][]chat.Message
}

// NewController wires a controller for clientID over store. A nil factory
// delivers every op once, inline.
func NewController(clientID string, store storage.Store, deps Deps, opts Options, factory StrategyFactory) *Controller {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	if deps.Classifier == nil {
		deps.Classifier = intent.NewDefaultClassifier()
	}
	opts.DefaultLanguage = i18n.Match(opts.DefaultLanguage)
	logger := deps.Logger
	if logger != nil {
		logger = logger.With(logging.FieldClientID, clientID)
	}

	c := &Controller{
		clientID: clientID,
		deps:     deps,
		opts:     opts,
		store:    store,
		logger:   logger,
		pending:  make(map[string][]chat.Message),
		state: State{
			Auth:     profile.StateLoggedOut,
			View:     profile.ViewLogin,
			Language: opts.DefaultLanguage,
		},
	}

	d := delivery.NewDispatcher()
	c.registerHandlers(d)
	if factory == nil {
		c.sync = delivery.NewImmediate(d, logger, deps.Metrics)
	} else {
		c.sync = factory(d, store)
	}
	return c
}

// ClientID returns the client this controller serves.
func (c *Controller) ClientID() string {
	return c.clientID
}

// Strategy exposes the sync strategy (for flushing and draining).
func (c *Controller) Strategy() delivery.Strategy {
	return c.sync
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Restore loads the cached state of a previous run. Unreadable keys are
// logged and skipped.
func (c *Controller) Restore(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if lang, ok := loadKey[string](ctx, c, storage.KeyLanguage); ok && lang != "" {
		c.state.Language = lang
	}
	if favs, ok := loadKey[[]players.Player](ctx, c, storage.KeyFavorites); ok {
		c.state.Favorites = players.NormalizeAll(favs, c.opts.PlayerDefaults)
	}
	if history, ok := loadKey[[]chat.Session](ctx, c, storage.KeyChatHistory); ok {
		c.state.History = history
	}
	if id, ok := loadKey[string](ctx, c, storage.KeyChatSessionID); ok {
		if _, found := reconcile.FindSession(c.state.History, id); found {
			c.state.ActiveSessionID = id
		}
	}
	if queues, ok := loadKey[map[string][]chat.Message](ctx, c, storage.KeyPendingMessages); ok {
		for id, msgs := range queues {
			if s, found := reconcile.FindSession(c.state.History, id); found && s.RemoteID == "" {
				c.pending[id] = msgs
			}
		}
	}
	onboarded, _ := loadKey[bool](ctx, c, storage.KeyOnboardingComplete)

	user, ok := loadKey[cachedUser](ctx, c, storage.KeyUser)
	switch {
	case !ok:
	case user.PendingEmail != "" && user.Profile.ID == "":
		c.state.Auth = profile.StateVerifying
		c.state.PendingEmail = user.PendingEmail
		c.pendingProfile = user.Profile
	case user.Profile.ID != "":
		p := user.Profile
		c.session = user.Session
		c.state.Profile = &p
		if onboarded || p.OnboardingComplete {
			c.setAuthenticatedLocked()
		} else {
			c.state.Auth = profile.StateOnboarding
			c.state.View = profile.ViewOnboarding
		}
	}
}

func loadKey[T any](ctx context.Context, c *Controller, key storage.Key) (T, bool) {
	v, ok, err := storage.GetJSON[T](ctx, c.store, key)
	if err != nil {
		logging.Warn(c.log(ctx), "cached value unreadable", "key", key, "error", err)
		var zero T
		return zero, false
	}
	return v, ok
}

// Navigate switches the visible view.
func (c *Controller) Navigate(view profile.View) error {
	if !view.Valid() {
		return invalid("view", "unknown view")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if view.RequiresAuth() && c.state.Auth != profile.StateAuthenticated {
		return invalid("view", "sign in first")
	}
	c.state.View = view
	return nil
}

// SelectPlayer opens p on the dashboard.
func (c *Controller) SelectPlayer(p players.Player) (Dashboard, error) {
	if strings.TrimSpace(p.Identity()) == "" {
		return Dashboard{}, invalid("player", "player is required")
	}
	p = players.Normalize(p, c.opts.PlayerDefaults)

	c.mu.Lock()
	c.state.SelectedPlayer = &p
	if c.state.Auth == profile.StateAuthenticated {
		c.state.View = profile.ViewDashboard
	}
	c.mu.Unlock()

	return c.Dashboard(p), nil
}

// Dashboard builds the detail view for p.
func (c *Controller) Dashboard(p players.Player) Dashboard {
	p = players.Normalize(p, c.opts.PlayerDefaults)
	c.mu.Lock()
	fav := reconcile.ContainsFavorite(c.state.Favorites, p)
	c.mu.Unlock()
	return Dashboard{
		Player:     p,
		Radar:      players.RadarPoints(p, nil),
		IsFavorite: fav,
		Photos:     c.PhotoCandidates(p),
	}
}

// PhotoCandidates lists image URLs for p, best first.
func (c *Controller) PhotoCandidates(p players.Player) []string {
	if c.deps.Photos != nil {
		return c.deps.Photos.PhotoCandidates(p)
	}
	if p.PhotoURL != "" {
		return []string{p.PhotoURL}
	}
	return nil
}

// Languages lists the selectable languages, falling back to the built-in set.
func (c *Controller) Languages(ctx context.Context) []i18n.Language {
	if c.deps.Languages != nil {
		list, err := c.deps.Languages.Languages(ctx)
		if err == nil && len(list) > 0 {
			c.mu.Lock()
			c.languages = list
			c.mu.Unlock()
			return list
		}
		logging.Warn(c.log(ctx), "language list unavailable, using defaults",
			logging.FieldUpstream, "languages",
			"error", err,
		)
	}
	return i18n.Defaults()
}

// SetLanguage stores the UI language locally and, when signed in, remotely.
func (c *Controller) SetLanguage(ctx context.Context, code string) error {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return invalid("language", "language is required")
	}

	c.mu.Lock()
	if !containsLanguage(c.languages, code) {
		resolved, ok := i18n.Resolve(code)
		if !ok {
			c.mu.Unlock()
			return invalid("language", "unsupported language")
		}
		code = resolved
	}
	c.state.Language = code
	if c.state.Profile != nil {
		c.state.Profile.Language = code
	}
	c.persistLocked(ctx, storage.KeyLanguage, code)
	token, userID, ok := c.remoteIdentityLocked()
	c.mu.Unlock()

	if ok {
		c.submit(ctx, kindPreferencesLanguage, languagePayload{Token: token, UserID: userID, Language: code})
	}
	return nil
}

func containsLanguage(list []i18n.Language, code string) bool {
	for _, l := range list {
		if l.Code == code {
			return true
		}
	}
	return false
}

func (c *Controller) log(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, c.logger)
}

// persistLocked writes v to the local cache. Failures are logged: local state
// stays authoritative for this run.
func (c *Controller) persistLocked(ctx context.Context, key storage.Key, v any) {
	if err := storage.SetJSON(ctx, c.store, key, v); err != nil {
		logging.Error(c.log(ctx), "local cache write failed", err, "key", key)
	}
}

func (c *Controller) removeLocked(ctx context.Context, key storage.Key) {
	if err := c.store.Remove(ctx, key); err != nil {
		logging.Error(c.log(ctx), "local cache remove failed", err, "key", key)
	}
}

// remoteIdentityLocked returns the credentials remote writes need. Demo and
// unverified sessions have none.
func (c *Controller) remoteIdentityLocked() (token, userID string, ok bool) {
	if c.deps.Remote == nil || !c.session.Valid() {
		return "", "", false
	}
	return c.session.AccessToken, c.session.UserID, true
}

func (c *Controller) setAuthenticatedLocked() {
	c.state.Auth = profile.StateAuthenticated
	if !c.state.View.RequiresAuth() {
		c.state.View = profile.ViewChat
	}
}
