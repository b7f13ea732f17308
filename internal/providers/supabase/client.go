// Package supabase implements providers.Remote against a Supabase project:
// GoTrue for auth and PostgREST for the profiles, chat and preferences tables.
package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/scoutline/scout-client/internal/domain/chat"
	"github.com/scoutline/scout-client/internal/domain/profile"
	"github.com/scoutline/scout-client/internal/providers"
)

const (
	upstreamName       = "supabase"
	defaultHTTPTimeout = 15 * time.Second

	tableProfiles     = "profiles"
	tableSessions     = "chat_sessions"
	tableMessages     = "chat_messages"
	tablePreferences  = "user_preferences"
	acceptSingleRow   = "application/vnd.pgrst.object+json"
	preferMinimal     = "return=minimal"
	preferRepresent   = "return=representation"
	preferMergeUpsert = "resolution=merge-duplicates,return=minimal"
)

// Config identifies the Supabase project.
type Config struct {
	URL        string
	AnonKey    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client is a thin REST client; every call carries the project key and, when
// available, the user's access token for row-level security.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient providers.HTTPDoer
	now        func() time.Time
}

var _ providers.Remote = (*Client)(nil)

// NewClient constructs a client. It returns an error when the project is not configured.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" || strings.TrimSpace(cfg.AnonKey) == "" {
		return nil, errors.New("supabase: url and anon key are required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &Client{
		baseURL:    providers.NormalizeBaseURL(cfg.URL, ""),
		anonKey:    cfg.AnonKey,
		httpClient: providers.ResolveHTTPClient(cfg.HTTPClient, timeout),
		now:        time.Now,
	}, nil
}

func (c *Client) headers(token string, extra ...string) http.Header {
	if token == "" {
		token = c.anonKey
	}
	h := providers.BearerHeader(token)
	h.Set("apikey", c.anonKey)
	for i := 0; i+1 < len(extra); i += 2 {
		h.Set(extra[i], extra[i+1])
	}
	return h
}

func (c *Client) do(ctx context.Context, method, path string, header http.Header, body, out any) error {
	return providers.DoJSON(ctx, c.httpClient, providers.Request{
		Upstream: upstreamName,
		Method:   method,
		URL:      c.baseURL + path,
		Header:   header,
		Body:     body,
	}, out)
}

func restPath(table string, q url.Values) string {
	path := "/rest/v1/" + table
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	return path
}

func eq(v string) string {
	return "eq." + v
}

// SignIn exchanges email and password for a session.
func (c *Client) SignIn(ctx context.Context, email, password string) (profile.AuthSession, error) {
	var resp sessionResponse
	err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", c.headers(""),
		credentials{Email: email, Password: password}, &resp)
	if err != nil {
		return profile.AuthSession{}, err
	}
	s, ok := resp.session()
	if !ok {
		return profile.AuthSession{}, fmt.Errorf("%s: sign in returned no session: %w", upstreamName, providers.ErrUnauthenticated)
	}
	return s, nil
}

// SignUp registers an account. A nil session means email confirmation is pending.
func (c *Client) SignUp(ctx context.Context, req providers.SignUpRequest) (*profile.AuthSession, error) {
	data := map[string]string{"user_type": string(req.UserType)}
	if req.Name != "" {
		data["name"] = req.Name
	}
	if req.Language != "" {
		data["language"] = req.Language
	}
	var resp sessionResponse
	err := c.do(ctx, http.MethodPost, "/auth/v1/signup", c.headers(""),
		signUpBody{Email: req.Email, Password: req.Password, Data: data}, &resp)
	if err != nil {
		return nil, err
	}
	if s, ok := resp.session(); ok {
		return &s, nil
	}
	return nil, nil
}

// Verify confirms a signup with the emailed one-time code.
func (c *Client) Verify(ctx context.Context, email, code string) (profile.AuthSession, error) {
	var resp sessionResponse
	err := c.do(ctx, http.MethodPost, "/auth/v1/verify", c.headers(""),
		verifyBody{Type: "signup", Email: email, Token: code}, &resp)
	if err != nil {
		return profile.AuthSession{}, err
	}
	s, ok := resp.session()
	if !ok {
		return profile.AuthSession{}, fmt.Errorf("%s: verify returned no session: %w", upstreamName, providers.ErrUnauthenticated)
	}
	return s, nil
}

// SignOut revokes the session behind accessToken.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	return c.do(ctx, http.MethodPost, "/auth/v1/logout", c.headers(accessToken), nil, nil)
}

// GetProfile reads the profile row for userID.
func (c *Client) GetProfile(ctx context.Context, token, userID string) (profile.Profile, error) {
	q := url.Values{}
	q.Set("id", eq(userID))
	q.Set("select", "*")
	var p profile.Profile
	err := c.do(ctx, http.MethodGet, restPath(tableProfiles, q), c.headers(token, "Accept", acceptSingleRow), nil, &p)
	return p, err
}

// UpsertProfile inserts or merges the profile row.
func (c *Client) UpsertProfile(ctx context.Context, token string, p profile.Profile) error {
	return c.do(ctx, http.MethodPost, restPath(tableProfiles, nil), c.headers(token, "Prefer", preferMergeUpsert), p, nil)
}

// CreateChatSession stores s under its correlation id and returns the row id.
func (c *Client) CreateChatSession(ctx context.Context, token, userID string, s chat.Session) (string, error) {
	created := s.Date
	if created.IsZero() {
		created = c.now()
	}
	row := sessionRow{
		UserID:     userID,
		ExternalID: s.ID,
		Title:      s.Title,
		Snippet:    s.Snippet,
		CreatedAt:  created.UTC(),
	}
	var rows []sessionRow
	if err := c.do(ctx, http.MethodPost, restPath(tableSessions, nil), c.headers(token, "Prefer", preferRepresent), row, &rows); err != nil {
		return "", err
	}
	if len(rows) == 0 || rows[0].ID == "" {
		return "", fmt.Errorf("%s: create session returned no id", upstreamName)
	}
	return rows[0].ID, nil
}

// ListChatSessions returns the user's sessions, most recent first.
func (c *Client) ListChatSessions(ctx context.Context, token, userID string) ([]chat.Session, error) {
	q := url.Values{}
	q.Set("user_id", eq(userID))
	q.Set("select", "id,external_id,title,snippet,created_at")
	q.Set("order", "created_at.desc")
	var rows []sessionRow
	if err := c.do(ctx, http.MethodGet, restPath(tableSessions, q), c.headers(token), nil, &rows); err != nil {
		return nil, err
	}
	out := make([]chat.Session, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toSession())
	}
	return out, nil
}

// AppendChatMessage stores one message under the remote session id.
func (c *Client) AppendChatMessage(ctx context.Context, token, remoteSessionID string, m chat.Message) error {
	if remoteSessionID == "" {
		return errors.New("supabase: remote session id is required")
	}
	created := m.CreatedAt
	if created.IsZero() {
		created = c.now()
	}
	row := messageRow{
		SessionID:              remoteSessionID,
		Sender:                 m.Sender,
		Content:                m.Text,
		Players:                m.Players,
		IsSatisfactionQuestion: m.IsSatisfactionQuestion,
		CreatedAt:              created.UTC(),
	}
	return c.do(ctx, http.MethodPost, restPath(tableMessages, nil), c.headers(token, "Prefer", preferMinimal), row, nil)
}

// DeleteChatSessions removes every session for the user.
func (c *Client) DeleteChatSessions(ctx context.Context, token, userID string) error {
	q := url.Values{}
	q.Set("user_id", eq(userID))
	return c.do(ctx, http.MethodDelete, restPath(tableSessions, q), c.headers(token, "Prefer", preferMinimal), nil, nil)
}

// GetPreferences reads the preferences row; a missing row yields providers.ErrNotFound.
func (c *Client) GetPreferences(ctx context.Context, token, userID string) (profile.Preferences, error) {
	q := url.Values{}
	q.Set("user_id", eq(userID))
	q.Set("select", "*")
	var prefs profile.Preferences
	err := c.do(ctx, http.MethodGet, restPath(tablePreferences, q), c.headers(token, "Accept", acceptSingleRow), nil, &prefs)
	return prefs, err
}

// CreatePreferences inserts the preferences row.
func (c *Client) CreatePreferences(ctx context.Context, token string, prefs profile.Preferences) error {
	return c.do(ctx, http.MethodPost, restPath(tablePreferences, nil), c.headers(token, "Prefer", preferMinimal), prefs, nil)
}

// UpdatePreferences patches the preferences row for prefs.UserID.
func (c *Client) UpdatePreferences(ctx context.Context, token string, prefs profile.Preferences) error {
	q := url.Values{}
	q.Set("user_id", eq(prefs.UserID))
	return c.do(ctx, http.MethodPatch, restPath(tablePreferences, q), c.headers(token, "Prefer", preferMinimal), prefs, nil)
}
