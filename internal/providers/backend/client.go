// Package backend talks to the scouting API's auxiliary endpoints: the direct
// favorites update, the language list and player images.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/scoutline/scout-client/internal/domain/players"
	"github.com/scoutline/scout-client/internal/i18n"
	"github.com/scoutline/scout-client/internal/providers"
)

const (
	defaultBaseURL       = "http://localhost:8000"
	defaultAvatarBaseURL = "https://ui-avatars.com/api"
	defaultHTTPTimeout   = 10 * time.Second

	// Upstream names used for logs and metrics.
	UpstreamFallback  = "favorites-fallback"
	UpstreamLanguages = "languages"
)

// Config controls how the backend client reaches the API.
type Config struct {
	BaseURL       string
	AvatarBaseURL string
	HTTPClient    *http.Client
	Timeout       time.Duration
}

// Client implements providers.FavoritesFallback, providers.LanguageSource and providers.PhotoSource.
type Client struct {
	baseURL       string
	avatarBaseURL string
	httpClient    providers.HTTPDoer
}

// NewClient constructs a backend client.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:       providers.NormalizeBaseURL(cfg.BaseURL, defaultBaseURL),
		avatarBaseURL: providers.NormalizeBaseURL(cfg.AvatarBaseURL, defaultAvatarBaseURL),
		httpClient:    providers.ResolveHTTPClient(cfg.HTTPClient, timeoutOrDefault(cfg.Timeout)),
	}
}

func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultHTTPTimeout
	}
	return d
}

type preferenceUpdate struct {
	Action providers.FavoriteAction `json:"action"`
	Player players.Player           `json:"player"`
}

type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// UpdateFavorite posts an add/remove action for p, authenticated with token.
func (c *Client) UpdateFavorite(ctx context.Context, token string, action providers.FavoriteAction, p players.Player) error {
	if token == "" {
		return providers.ErrUnauthenticated
	}
	var resp statusResponse
	err := providers.DoJSON(ctx, c.httpClient, providers.Request{
		Upstream: UpstreamFallback,
		Method:   http.MethodPost,
		URL:      c.baseURL + "/user/preferences",
		Header:   providers.BearerHeader(token),
		Body:     preferenceUpdate{Action: action, Player: p},
	}, &resp)
	if err != nil {
		return err
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = resp.Message
		}
		return &providers.APIError{Upstream: UpstreamFallback, StatusCode: http.StatusOK, Message: msg}
	}
	return nil
}

type languagesEnvelope struct {
	Languages []i18n.Language `json:"languages"`
}

// Languages lists the languages offered by the API. Both a bare array and a
// {"languages": [...]} envelope are accepted.
func (c *Client) Languages(ctx context.Context) ([]i18n.Language, error) {
	var raw json.RawMessage
	err := providers.DoJSON(ctx, c.httpClient, providers.Request{
		Upstream: UpstreamLanguages,
		Method:   http.MethodGet,
		URL:      c.baseURL + "/languages",
	}, &raw)
	if err != nil {
		return nil, err
	}

	var list []i18n.Language
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		err = json.Unmarshal(raw, &list)
	} else {
		var env languagesEnvelope
		err = json.Unmarshal(raw, &env)
		list = env.Languages
	}
	if err != nil {
		return nil, fmt.Errorf("%s: decode: %w", UpstreamLanguages, err)
	}

	out := make([]i18n.Language, 0, len(list))
	for _, l := range list {
		code := strings.ToLower(strings.TrimSpace(l.Code))
		if code == "" {
			continue
		}
		if l.Name == "" {
			l.Name = code
		}
		l.Code = code
		out = append(out, l)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: empty language list", UpstreamLanguages)
	}
	return out, nil
}

// PlayerImageURL is the backend image endpoint for a player id.
func (c *Client) PlayerImageURL(playerID string) string {
	return c.baseURL + "/player-image/" + url.PathEscape(playerID)
}

// AvatarURL is a generated initials image for name.
func (c *Client) AvatarURL(name string) string {
	q := url.Values{}
	q.Set("name", name)
	q.Set("background", "random")
	q.Set("size", "256")
	return c.avatarBaseURL + "/?" + q.Encode()
}

// PhotoCandidates returns the photo URLs to try for p in order: the player's
// own photo, the backend image, then the initials avatar.
func (c *Client) PhotoCandidates(p players.Player) []string {
	out := make([]string, 0, 3)
	if strings.TrimSpace(p.PhotoURL) != "" {
		out = append(out, p.PhotoURL)
	}
	if id := p.Identity(); id != "" {
		out = append(out, c.PlayerImageURL(id))
	}
	name := p.Name
	if name == "" {
		name = players.UnknownName
	}
	return append(out, c.AvatarURL(name))
}
