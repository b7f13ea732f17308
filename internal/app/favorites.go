package app

import (
	"context"
	"strings"

	"github.com/scoutline/scout-client/internal/domain/players"
	"github.com/scoutline/scout-client/internal/providers"
	"github.com/scoutline/scout-client/internal/reconcile"
	"github.com/scoutline/scout-client/internal/storage"
)

// Favorites returns the current favorites.
func (c *Controller) Favorites() []players.Player {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]players.Player{}, c.state.Favorites...)
}

// ToggleFavorite adds p when absent and removes it otherwise. State and cache
// change first; the remote write is best-effort and never rolled back.
func (c *Controller) ToggleFavorite(ctx context.Context, p players.Player) (bool, error) {
	if strings.TrimSpace(p.Identity()) == "" {
		return false, invalid("player", "player is required")
	}
	p = players.Normalize(p, c.opts.PlayerDefaults)

	c.mu.Lock()
	added := !reconcile.ContainsFavorite(c.state.Favorites, p)
	action := providers.ActionAddFavorite
	if added {
		c.state.Favorites = reconcile.WithFavorite(c.state.Favorites, p)
	} else {
		action = providers.ActionRemoveFavorite
		c.state.Favorites = reconcile.WithoutFavorite(c.state.Favorites, p)
	}
	c.persistLocked(ctx, storage.KeyFavorites, c.state.Favorites)
	token, userID, ok := c.remoteIdentityLocked()
	c.mu.Unlock()

	if ok {
		c.submit(ctx, kindFavoritesSync, favoritePayload{Token: token, UserID: userID, Action: action, Player: p})
	}
	return added, nil
}
