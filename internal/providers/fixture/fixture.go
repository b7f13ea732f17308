// Package fixture provides in-memory collaborators for local runs and tests:
// a Remote, a SearchProvider, a FavoritesFallback and a LanguageSource, with
// per-operation failure injection.
package fixture

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/scoutline/scout-client/internal/domain/chat"
	"github.com/scoutline/scout-client/internal/domain/players"
	"github.com/scoutline/scout-client/internal/domain/profile"
	"github.com/scoutline/scout-client/internal/i18n"
	"github.com/scoutline/scout-client/internal/providers"
)

// Op names an operation that can be made to fail.
type Op string

const (
	OpSignIn            Op = "signIn"
	OpSignUp            Op = "signUp"
	OpVerify            Op = "verify"
	OpSignOut           Op = "signOut"
	OpGetProfile        Op = "getProfile"
	OpUpsertProfile     Op = "upsertProfile"
	OpCreateSession     Op = "createChatSession"
	OpListSessions      Op = "listChatSessions"
	OpAppendMessage     Op = "appendChatMessage"
	OpDeleteSessions    Op = "deleteChatSessions"
	OpGetPreferences    Op = "getPreferences"
	OpCreatePreferences Op = "createPreferences"
	OpUpdatePreferences Op = "updatePreferences"
	OpSearch            Op = "search"
	OpFallback          Op = "favoritesFallback"
	OpLanguages         Op = "languages"
)

// VerificationCode is the code every fixture signup expects.
const VerificationCode = "123456"

type account struct {
	id       string
	email    string
	password string
	verified bool
	metadata map[string]string
}

// FallbackCall records one direct favorites update.
type FallbackCall struct {
	Token  string
	Action providers.FavoriteAction
	Player players.Player
}

// Provider is a deterministic, thread-safe in-memory backend.
type Provider struct {
	mu          sync.Mutex
	now         func() time.Time
	seq         int
	AutoConfirm bool

	accounts    map[string]*account
	tokens      map[string]string
	profiles    map[string]profile.Profile
	preferences map[string]profile.Preferences
	sessions    map[string][]chat.Session
	messages    map[string][]chat.Message

	failures  map[Op]error
	calls     map[Op]int
	fallbacks []FallbackCall
	searches  []chat.SearchRequest
}

var (
	_ providers.Remote            = (*Provider)(nil)
	_ providers.SearchProvider    = (*Provider)(nil)
	_ providers.FavoritesFallback = (*Provider)(nil)
	_ providers.LanguageSource    = (*Provider)(nil)
)

// New creates an empty fixture provider.
func New() *Provider {
	return &Provider{
		now:         time.Now,
		accounts:    make(map[string]*account),
		tokens:      make(map[string]string),
		profiles:    make(map[string]profile.Profile),
		preferences: make(map[string]profile.Preferences),
		sessions:    make(map[string][]chat.Session),
		messages:    make(map[string][]chat.Message),
		failures:    make(map[Op]error),
		calls:       make(map[Op]int),
	}
}

// Fail makes op return err until cleared with a nil err.
func (p *Provider) Fail(op Op, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err == nil {
		delete(p.failures, op)
		return
	}
	p.failures[op] = err
}

// Calls returns how many times op was invoked.
func (p *Provider) Calls(op Op) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[op]
}

// FallbackCalls returns the recorded direct favorites updates.
func (p *Provider) FallbackCalls() []FallbackCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]FallbackCall(nil), p.fallbacks...)
}

// Searches returns the recorded search requests.
func (p *Provider) Searches() []chat.SearchRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]chat.SearchRequest(nil), p.searches...)
}

// Messages returns the messages stored under a remote session id.
func (p *Provider) Messages(remoteSessionID string) []chat.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]chat.Message(nil), p.messages[remoteSessionID]...)
}

// AddAccount registers a verified account and returns its user id.
func (p *Provider) AddAccount(email, password string, meta map[string]string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addAccountLocked(email, password, true, meta).id
}

// SetProfile stores a profile directly.
func (p *Provider) SetProfile(pr profile.Profile) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profiles[pr.ID] = pr
}

// SetPreferences stores a preferences row directly.
func (p *Provider) SetPreferences(prefs profile.Preferences) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.preferences[prefs.UserID] = prefs
}

// Preferences returns the stored preferences row, if any.
func (p *Provider) Preferences(userID string) (profile.Preferences, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prefs, ok := p.preferences[userID]
	return prefs, ok
}

// Profile returns the stored profile, if any.
func (p *Provider) Profile(userID string) (profile.Profile, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pr, ok := p.profiles[userID]
	return pr, ok
}

// SetSessions replaces the stored chat sessions for a user.
func (p *Provider) SetSessions(userID string, sessions []chat.Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions[userID] = append([]chat.Session(nil), sessions...)
}

// Sessions returns the stored chat sessions for a user.
func (p *Provider) Sessions(userID string) []chat.Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]chat.Session(nil), p.sessions[userID]...)
}

func (p *Provider) addAccountLocked(email, password string, verified bool, meta map[string]string) *account {
	p.seq++
	a := &account{
		id:       fmt.Sprintf("user-%d", p.seq),
		email:    strings.ToLower(strings.TrimSpace(email)),
		password: password,
		verified: verified,
		metadata: meta,
	}
	p.accounts[a.email] = a
	return a
}

// enter records a call and returns the injected failure for op, if any.
// Callers must hold p.mu.
func (p *Provider) enter(op Op) error {
	p.calls[op]++
	return p.failures[op]
}

func (p *Provider) sessionForLocked(a *account) profile.AuthSession {
	p.seq++
	token := fmt.Sprintf("token-%d", p.seq)
	p.tokens[token] = a.id
	return profile.AuthSession{
		AccessToken: token,
		UserID:      a.id,
		Email:       a.email,
		Metadata:    a.metadata,
	}
}

func (p *Provider) checkTokenLocked(token, userID string) error {
	owner, ok := p.tokens[token]
	if !ok || (userID != "" && owner != userID) {
		return providers.ErrUnauthenticated
	}
	return nil
}

func invalidCredentials() error {
	return &providers.APIError{Upstream: "fixture", StatusCode: 400, Message: "invalid login credentials", Err: providers.ErrUnauthenticated}
}

// SignIn implements providers.AuthService.
func (p *Provider) SignIn(ctx context.Context, email, password string) (profile.AuthSession, error) {
	_ = ctx
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpSignIn); err != nil {
		return profile.AuthSession{}, err
	}
	a, ok := p.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok || a.password != password {
		return profile.AuthSession{}, invalidCredentials()
	}
	if !a.verified {
		return profile.AuthSession{}, &providers.APIError{Upstream: "fixture", StatusCode: 400, Message: "email not confirmed", Err: providers.ErrUnauthenticated}
	}
	return p.sessionForLocked(a), nil
}

// SignUp implements providers.AuthService. Without AutoConfirm it returns no session.
func (p *Provider) SignUp(ctx context.Context, req providers.SignUpRequest) (*profile.AuthSession, error) {
	_ = ctx
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpSignUp); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, exists := p.accounts[email]; exists {
		return nil, &providers.APIError{Upstream: "fixture", StatusCode: 422, Message: "user already registered"}
	}
	meta := map[string]string{"user_type": string(req.UserType)}
	if req.Name != "" {
		meta["name"] = req.Name
	}
	if req.Language != "" {
		meta["language"] = req.Language
	}
	a := p.addAccountLocked(email, req.Password, p.AutoConfirm, meta)
	if !p.AutoConfirm {
		return nil, nil
	}
	s := p.sessionForLocked(a)
	return &s, nil
}

// Verify implements providers.AuthService.
func (p *Provider) Verify(ctx context.Context, email, code string) (profile.AuthSession, error) {
	_ = ctx
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpVerify); err != nil {
		return profile.AuthSession{}, err
	}
	a, ok := p.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok || strings.TrimSpace(code) != VerificationCode {
		return profile.AuthSession{}, &providers.APIError{Upstream: "fixture", StatusCode: 400, Message: "invalid verification code", Err: providers.ErrUnauthenticated}
	}
	a.verified = true
	return p.sessionForLocked(a), nil
}

// SignOut implements providers.AuthService.
func (p *Provider) SignOut(ctx context.Context, accessToken string) error {
	_ = ctx
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpSignOut); err != nil {
		return err
	}
	delete(p.tokens, accessToken)
	return nil
}

// GetProfile implements providers.ProfileStore.
func (p *Provider) GetProfile(ctx context.Context, token, userID string) (profile.Profile, error) {
	_ = ctx
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpGetProfile); err != nil {
		return profile.Profile{}, err
	}
	if err := p.checkTokenLocked(token, userID); err != nil {
		return profile.Profile{}, err
	}
	pr, ok := p.profiles[userID]
	if !ok {
		return profile.Profile{}, providers.ErrNotFound
	}
	return pr, nil
}

// UpsertProfile implements providers.ProfileStore.
func (p *Provider) UpsertProfile(ctx context.Context, token string, pr profile.Profile) error {
	_ = ctx
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpUpsertProfile); err != nil {
		return err
	}
	if err := p.checkTokenLocked(token, pr.ID); err != nil {
		return err
	}
	p.profiles[pr.ID] = pr
	return nil
}

// CreateChatSession implements providers.ChatStore; repeated calls for the
// same correlation id return the same remote id.
func (p *Provider) CreateChatSession(ctx context.Context, token, userID string, s chat.Session) (string, error) {
	_ = ctx
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpCreateSession); err != nil {
		return "", err
	}
	if err := p.checkTokenLocked(token, userID); err != nil {
		return "", err
	}
	for _, existing := range p.sessions[userID] {
		if existing.ID == s.ID {
			return existing.RemoteID, nil
		}
	}
	p.seq++
	s.RemoteID = fmt.Sprintf("remote-%d", p.seq)
	p.sessions[userID] = append([]chat.Session{s}, p.sessions[userID]...)
	return s.RemoteID, nil
}

// ListChatSessions implements providers.ChatStore.
func (p *Provider) ListChatSessions(ctx context.Context, token, userID string) ([]chat.Session, error) {
	_ = ctx
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpListSessions); err != nil {
		return nil, err
	}
	if err := p.checkTokenLocked(token, userID); err != nil {
		return nil, err
	}
	return append([]chat.Session(nil), p.sessions[userID]...), nil
}

// AppendChatMessage implements providers.ChatStore.
func (p *Provider) AppendChatMessage(ctx context.Context, token, remoteSessionID string, m chat.Message) error {
	_ = ctx
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpAppendMessage); err != nil {
		return err
	}
	if err := p.checkTokenLocked(token, ""); err != nil {
		return err
	}
	if remoteSessionID == "" {
		return providers.ErrNotFound
	}
	p.messages[remoteSessionID] = append(p.messages[remoteSessionID], m)
	return nil
}

// DeleteChatSessions implements providers.ChatStore.
func (p *Provider) DeleteChatSessions(ctx context.Context, token, userID string) error {
	_ = ctx
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpDeleteSessions); err != nil {
		return err
	}
	if err := p.checkTokenLocked(token, userID); err != nil {
		return err
	}
	for _, s := range p.sessions[userID] {
		delete(p.messages, s.RemoteID)
	}
	delete(p.sessions, userID)
	return nil
}

// GetPreferences implements providers.PreferenceStore.
func (p *Provider) GetPreferences(ctx context.Context, token, userID string) (profile.Preferences, error) {
	_ = ctx
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpGetPreferences); err != nil {
		return profile.Preferences{}, err
	}
	if err := p.checkTokenLocked(token, userID); err != nil {
		return profile.Preferences{}, err
	}
	prefs, ok := p.preferences[userID]
	if !ok {
		return profile.Preferences{}, providers.ErrNotFound
	}
	prefs.FavoritePlayers = append([]players.Player(nil), prefs.FavoritePlayers...)
	return prefs, nil
}

// CreatePreferences implements providers.PreferenceStore.
func (p *Provider) CreatePreferences(ctx context.Context, token string, prefs profile.Preferences) error {
	_ = ctx
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpCreatePreferences); err != nil {
		return err
	}
	if err := p.checkTokenLocked(token, prefs.UserID); err != nil {
		return err
	}
	if _, exists := p.preferences[prefs.UserID]; exists {
		return &providers.APIError{Upstream: "fixture", StatusCode: 409, Code: "23505", Message: "duplicate key"}
	}
	p.preferences[prefs.UserID] = prefs
	return nil
}

// UpdatePreferences implements providers.PreferenceStore.
func (p *Provider) UpdatePreferences(ctx context.Context, token string, prefs profile.Preferences) error {
	_ = ctx
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpUpdatePreferences); err != nil {
		return err
	}
	if err := p.checkTokenLocked(token, prefs.UserID); err != nil {
		return err
	}
	if _, exists := p.preferences[prefs.UserID]; !exists {
		return providers.ErrNotFound
	}
	p.preferences[prefs.UserID] = prefs
	return nil
}

// UpdateFavorite implements providers.FavoritesFallback and applies the action
// to the stored preferences.
func (p *Provider) UpdateFavorite(ctx context.Context, token string, action providers.FavoriteAction, pl players.Player) error {
	_ = ctx
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fallbacks = append(p.fallbacks, FallbackCall{Token: token, Action: action, Player: pl})
	if err := p.enter(OpFallback); err != nil {
		return err
	}
	userID, ok := p.tokens[token]
	if !ok {
		return providers.ErrUnauthenticated
	}
	prefs := p.preferences[userID]
	prefs.UserID = userID
	var kept []players.Player
	for _, existing := range prefs.FavoritePlayers {
		if !players.SameIdentity(existing, pl) {
			kept = append(kept, existing)
		}
	}
	if action == providers.ActionAddFavorite {
		kept = append(kept, pl)
	}
	prefs.FavoritePlayers = kept
	p.preferences[userID] = prefs
	return nil
}

// Languages implements providers.LanguageSource.
func (p *Provider) Languages(ctx context.Context) ([]i18n.Language, error) {
	_ = ctx
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpLanguages); err != nil {
		return nil, err
	}
	return i18n.Defaults(), nil
}
