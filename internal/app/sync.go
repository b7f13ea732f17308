package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/scoutline/scout-client/internal/delivery"
	"github.com/scoutline/scout-client/internal/domain/chat"
	"github.com/scoutline/scout-client/internal/domain/players"
	"github.com/scoutline/scout-client/internal/domain/profile"
	"github.com/scoutline/scout-client/internal/logging"
	"github.com/scoutline/scout-client/internal/providers"
	"github.com/scoutline/scout-client/internal/reconcile"
)

// Op kinds the controller hands to its sync strategy.
const (
	kindFavoritesSync       delivery.Kind = "favorites.sync"
	kindSessionCreate       delivery.Kind = "chat.session.create"
	kindMessageAppend       delivery.Kind = "chat.message.append"
	kindHistoryDelete       delivery.Kind = "chat.history.delete"
	kindProfileUpsert       delivery.Kind = "profile.upsert"
	kindPreferencesLanguage delivery.Kind = "preferences.language"
)

type favoritePayload struct {
	Token  string                   `json:"token"`
	UserID string                   `json:"userId"`
	Action providers.FavoriteAction `json:"action"`
	Player players.Player           `json:"player"`
}

type sessionPayload struct {
	Token   string       `json:"token"`
	UserID  string       `json:"userId"`
	Session chat.Session `json:"session"`
}

type messagePayload struct {
	Token           string       `json:"token"`
	RemoteSessionID string       `json:"remoteSessionId"`
	Message         chat.Message `json:"message"`
}

type historyPayload struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

type profilePayload struct {
	Token   string          `json:"token"`
	Profile profile.Profile `json:"profile"`
}

type languagePayload struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	Language string `json:"language"`
}

func (c *Controller) registerHandlers(d *delivery.Dispatcher) {
	d.Register(kindFavoritesSync, c.syncFavorite)
	d.Register(kindSessionCreate, c.createSession)
	d.Register(kindMessageAppend, c.appendMessage)
	d.Register(kindHistoryDelete, c.deleteHistory)
	d.Register(kindProfileUpsert, c.upsertProfile)
	d.Register(kindPreferencesLanguage, c.syncLanguage)
}

// submit builds and hands an op to the sync strategy. Failures are already
// logged by the strategy and never reach the user.
func (c *Controller) submit(ctx context.Context, kind delivery.Kind, payload any) {
	op, err := delivery.NewOp(kind, payload, c.deps.Now())
	if err != nil {
		logging.Error(c.log(ctx), "sync op not built", err, logging.FieldOpKind, kind)
		return
	}
	_ = c.sync.Submit(logging.WithLogger(ctx, c.log(ctx)), op)
}

// syncFavorite reads the remote preferences and writes the updated favorites
// back, creating the row when missing. Any remote failure switches to the
// direct favorites API.
func (c *Controller) syncFavorite(ctx context.Context, op delivery.Op) error {
	var p favoritePayload
	if err := op.Decode(&p); err != nil {
		return err
	}
	err := c.writeFavoritePreference(ctx, p)
	if err == nil {
		return nil
	}
	logging.Warn(c.log(ctx), "favorite preference sync failed",
		logging.FieldUpstream, "remote",
		logging.FieldUserID, p.UserID,
		"error", err,
	)
	if c.deps.Fallback == nil {
		return remoteError(err)
	}
	c.deps.Metrics.RecordSyncFallback(string(kindFavoritesSync))
	if fbErr := c.deps.Fallback.UpdateFavorite(ctx, p.Token, p.Action, p.Player); fbErr != nil {
		return remoteError(fbErr)
	}
	return nil
}

func (c *Controller) writeFavoritePreference(ctx context.Context, p favoritePayload) error {
	remote := c.deps.Remote
	prefs, err := remote.GetPreferences(ctx, p.Token, p.UserID)
	if providers.IsNotFound(err) {
		return remote.CreatePreferences(ctx, p.Token, profile.Preferences{
			UserID:          p.UserID,
			FavoritePlayers: applyFavorite(nil, p.Action, p.Player),
		})
	}
	if err != nil {
		return err
	}
	prefs.UserID = p.UserID
	current := players.NormalizeAll(prefs.FavoritePlayers, c.opts.PlayerDefaults)
	prefs.FavoritePlayers = applyFavorite(current, p.Action, p.Player)
	return remote.UpdatePreferences(ctx, p.Token, prefs)
}

func applyFavorite(list []players.Player, action providers.FavoriteAction, p players.Player) []players.Player {
	if action == providers.ActionRemoveFavorite {
		return reconcile.WithoutFavorite(list, p)
	}
	return reconcile.WithFavorite(list, p)
}

func (c *Controller) createSession(ctx context.Context, op delivery.Op) error {
	var p sessionPayload
	if err := op.Decode(&p); err != nil {
		return err
	}
	remoteID, err := c.deps.Remote.CreateChatSession(ctx, p.Token, p.UserID, p.Session)
	if err != nil {
		return remoteError(err)
	}
	c.resolveSession(ctx, p.Session.ID, remoteID)
	return nil
}

func (c *Controller) appendMessage(ctx context.Context, op delivery.Op) error {
	var p messagePayload
	if err := op.Decode(&p); err != nil {
		return err
	}
	return remoteError(c.deps.Remote.AppendChatMessage(ctx, p.Token, p.RemoteSessionID, p.Message))
}

func (c *Controller) deleteHistory(ctx context.Context, op delivery.Op) error {
	var p historyPayload
	if err := op.Decode(&p); err != nil {
		return err
	}
	return remoteError(c.deps.Remote.DeleteChatSessions(ctx, p.Token, p.UserID))
}

func (c *Controller) upsertProfile(ctx context.Context, op delivery.Op) error {
	var p profilePayload
	if err := op.Decode(&p); err != nil {
		return err
	}
	return remoteError(c.deps.Remote.UpsertProfile(ctx, p.Token, p.Profile))
}

func (c *Controller) syncLanguage(ctx context.Context, op delivery.Op) error {
	var p languagePayload
	if err := op.Decode(&p); err != nil {
		return err
	}
	remote := c.deps.Remote
	prefs, err := remote.GetPreferences(ctx, p.Token, p.UserID)
	if providers.IsNotFound(err) {
		return remoteError(remote.CreatePreferences(ctx, p.Token, profile.Preferences{UserID: p.UserID, Language: p.Language}))
	}
	if err != nil {
		return remoteError(err)
	}
	prefs.UserID = p.UserID
	prefs.Language = p.Language
	return remoteError(remote.UpdatePreferences(ctx, p.Token, prefs))
}

// remoteError marks failures that no retry can fix as permanent.
func remoteError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, providers.ErrUnauthenticated) || errors.Is(err, providers.ErrNotFound) {
		return delivery.Permanent(err)
	}
	if apiErr, ok := providers.AsAPIError(err); ok &&
		apiErr.StatusCode >= http.StatusBadRequest && apiErr.StatusCode < http.StatusInternalServerError {
		return delivery.Permanent(err)
	}
	return err
}
