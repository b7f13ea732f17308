package app

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/scoutline/scout-client/internal/domain/chat"
	"github.com/scoutline/scout-client/internal/domain/players"
	"github.com/scoutline/scout-client/internal/domain/profile"
	"github.com/scoutline/scout-client/internal/logging"
	"github.com/scoutline/scout-client/internal/providers"
	"github.com/scoutline/scout-client/internal/reconcile"
	"github.com/scoutline/scout-client/internal/storage"
)

const minPasswordLength = 6

type demoAccount struct {
	password string
	userType profile.UserType
	name     string
}

var demoAccounts = map[string]demoAccount{
	"club@demo.com":   {password: "demo123", userType: profile.UserTypeClub, name: "Demo Club"},
	"player@demo.com": {password: "demo123", userType: profile.UserTypePlayer, name: "Demo Player"},
}

// SignUpForm is the registration form.
type SignUpForm struct {
	Email    string           `json:"email"`
	Password string           `json:"password"`
	UserType profile.UserType `json:"userType"`
	Name     string           `json:"name"`
}

// OnboardingForm completes the profile after sign-up.
type OnboardingForm struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	Team     string `json:"team"`
	Position string `json:"position"`
}

func validEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", invalid("email", "email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", invalid("email", "email is invalid")
	}
	return email, nil
}

// SignIn authenticates with the remote auth service, or directly for the demo
// accounts. A missing or unreadable profile never blocks sign-in.
func (c *Controller) SignIn(ctx context.Context, email, password string) (State, error) {
	email, err := validEmail(email)
	if err != nil {
		return State{}, err
	}
	if password == "" {
		return State{}, invalid("password", "password is required")
	}

	if demo, ok := demoAccounts[email]; ok && c.opts.DemoAccounts && demo.password == password {
		c.signInDemo(ctx, email, demo)
		return c.State(), nil
	}
	if c.deps.Remote == nil {
		return State{}, invalid("credentials", "sign-in is unavailable")
	}

	session, err := c.deps.Remote.SignIn(ctx, email, password)
	if err != nil {
		logging.Warn(c.log(ctx), "sign-in failed", logging.FieldUpstream, "remote", "error", err)
		if errors.Is(err, providers.ErrUnauthenticated) {
			return State{}, invalid("credentials", "invalid email or password")
		}
		return State{}, invalid("credentials", "sign-in is unavailable, try again")
	}

	p := c.loadProfile(ctx, session)
	c.establish(ctx, session, p)
	c.SyncRemote(ctx)
	return c.State(), nil
}

func (c *Controller) signInDemo(ctx context.Context, email string, demo demoAccount) {
	p := profile.Profile{
		ID:                 "demo-" + string(demo.userType),
		Email:              email,
		UserType:           demo.userType,
		Name:               demo.name,
		OnboardingComplete: true,
	}
	c.establish(ctx, profile.AuthSession{UserID: p.ID, Email: email}, p)
}

// loadProfile fetches the profile for session. A missing row is synthesized
// and created; any other failure falls back to the synthetic profile.
func (c *Controller) loadProfile(ctx context.Context, session profile.AuthSession) profile.Profile {
	p, err := c.deps.Remote.GetProfile(ctx, session.AccessToken, session.UserID)
	if err == nil {
		return p
	}
	synthetic := profile.SyntheticProfile(session)
	if providers.IsNotFound(err) {
		c.submit(ctx, kindProfileUpsert, profilePayload{Token: session.AccessToken, Profile: synthetic})
		return synthetic
	}
	logging.Warn(c.log(ctx), "profile fetch failed, using session metadata",
		logging.FieldUpstream, "remote",
		logging.FieldUserID, session.UserID,
		"error", err,
	)
	return synthetic
}

// establish records a signed-in identity and picks onboarding or the app.
func (c *Controller) establish(ctx context.Context, session profile.AuthSession, p profile.Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()

	onboarded, _ := loadKey[bool](ctx, c, storage.KeyOnboardingComplete)
	if onboarded && c.cachedUserIDLocked(ctx) == p.ID {
		p.OnboardingComplete = true
	}

	c.session = session
	c.state.Profile = &p
	c.state.PendingEmail = ""
	if p.OnboardingComplete {
		c.setAuthenticatedLocked()
	} else {
		c.state.Auth = profile.StateOnboarding
		c.state.View = profile.ViewOnboarding
	}
	c.persistUserLocked(ctx)
	c.persistLocked(ctx, storage.KeyOnboardingComplete, p.OnboardingComplete)
}

func (c *Controller) cachedUserIDLocked(ctx context.Context) string {
	u, _ := loadKey[cachedUser](ctx, c, storage.KeyUser)
	return u.Profile.ID
}

func (c *Controller) persistUserLocked(ctx context.Context) {
	u := cachedUser{Session: c.session, PendingEmail: c.state.PendingEmail, Profile: c.pendingProfile}
	if c.state.Profile != nil {
		u.Profile = *c.state.Profile
	}
	c.persistLocked(ctx, storage.KeyUser, u)
}

// SignUp registers an account. Without an immediate session the flow waits
// for email verification.
func (c *Controller) SignUp(ctx context.Context, form SignUpForm) (State, error) {
	email, err := validEmail(form.Email)
	if err != nil {
		return State{}, err
	}
	if len(form.Password) < minPasswordLength {
		return State{}, invalid("password", "password must be at least 6 characters")
	}
	if !form.UserType.Valid() {
		return State{}, invalid("userType", "choose club or player")
	}
	if c.deps.Remote == nil {
		return State{}, invalid("email", "sign-up is unavailable")
	}

	c.mu.Lock()
	lang := c.state.Language
	c.mu.Unlock()

	session, err := c.deps.Remote.SignUp(ctx, providers.SignUpRequest{
		Email:    email,
		Password: form.Password,
		UserType: form.UserType,
		Name:     strings.TrimSpace(form.Name),
		Language: lang,
	})
	if err != nil {
		logging.Warn(c.log(ctx), "sign-up failed", logging.FieldUpstream, "remote", "error", err)
		if apiErr, ok := providers.AsAPIError(err); ok && apiErr.Message != "" {
			return State{}, invalid("email", apiErr.Message)
		}
		return State{}, invalid("email", "sign-up is unavailable, try again")
	}

	if session == nil {
		c.mu.Lock()
		c.session = profile.AuthSession{}
		c.pendingProfile = profile.Profile{Email: email, UserType: form.UserType, Name: strings.TrimSpace(form.Name), Language: lang}
		c.state.Profile = nil
		c.state.Auth = profile.StateVerifying
		c.state.View = profile.ViewLogin
		c.state.PendingEmail = email
		c.persistUserLocked(ctx)
		c.mu.Unlock()
		return c.State(), nil
	}

	c.startOnboarding(ctx, *session)
	return c.State(), nil
}

// Verify confirms the emailed code with the auth service. With the bypass
// switch on, the code is not checked and no remote session is created.
func (c *Controller) Verify(ctx context.Context, code string) (State, error) {
	c.mu.Lock()
	auth, email := c.state.Auth, c.state.PendingEmail
	c.mu.Unlock()
	if auth != profile.StateVerifying {
		return State{}, invalid("code", "nothing to verify")
	}

	if c.opts.VerificationBypass {
		c.mu.Lock()
		p := c.pendingProfile
		p.ID = "local-" + c.clientID
		p.Email = email
		if !p.UserType.Valid() {
			p.UserType = profile.UserTypeClub
		}
		c.pendingProfile = profile.Profile{}
		c.state.Profile = &p
		c.state.Auth = profile.StateOnboarding
		c.state.View = profile.ViewOnboarding
		c.state.PendingEmail = ""
		c.persistUserLocked(ctx)
		c.mu.Unlock()
		return c.State(), nil
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return State{}, invalid("code", "verification code is required")
	}
	session, err := c.deps.Remote.Verify(ctx, email, code)
	if err != nil {
		logging.Warn(c.log(ctx), "verification failed", logging.FieldUpstream, "remote", "error", err)
		return State{}, invalid("code", "invalid or expired code")
	}
	c.startOnboarding(ctx, session)
	return c.State(), nil
}

func (c *Controller) startOnboarding(ctx context.Context, session profile.AuthSession) {
	p := profile.SyntheticProfile(session)
	c.submit(ctx, kindProfileUpsert, profilePayload{Token: session.AccessToken, Profile: p})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = session
	c.pendingProfile = profile.Profile{}
	c.state.Profile = &p
	c.state.PendingEmail = ""
	c.state.Auth = profile.StateOnboarding
	c.state.View = profile.ViewOnboarding
	c.persistUserLocked(ctx)
}

// CompleteOnboarding fills in the profile and enters the app. The remote
// profile write is best-effort.
func (c *Controller) CompleteOnboarding(ctx context.Context, form OnboardingForm) (State, error) {
	c.mu.Lock()
	if c.state.Auth != profile.StateOnboarding || c.state.Profile == nil {
		c.mu.Unlock()
		return State{}, invalid("", "onboarding is not in progress")
	}
	p := *c.state.Profile
	c.mu.Unlock()

	name := strings.TrimSpace(form.Name)
	if name == "" {
		return State{}, invalid("name", "name is required")
	}
	team, position := strings.TrimSpace(form.Team), strings.TrimSpace(form.Position)
	switch p.UserType {
	case profile.UserTypePlayer:
		if position == "" {
			return State{}, invalid("position", "position is required")
		}
	default:
		if team == "" {
			return State{}, invalid("team", "team is required")
		}
	}
	if form.Language != "" {
		if err := c.SetLanguage(ctx, form.Language); err != nil {
			return State{}, err
		}
	}

	c.mu.Lock()
	p.Name = name
	p.Team = team
	p.Position = position
	p.Language = c.state.Language
	p.OnboardingComplete = true
	c.state.Profile = &p
	c.setAuthenticatedLocked()
	c.state.View = profile.ViewChat
	c.persistUserLocked(ctx)
	c.persistLocked(ctx, storage.KeyOnboardingComplete, true)
	token, _, ok := c.remoteIdentityLocked()
	c.mu.Unlock()

	if ok {
		c.submit(ctx, kindProfileUpsert, profilePayload{Token: token, Profile: p})
	}
	return c.State(), nil
}

// SignOut ends the session and clears every cached key except the language.
func (c *Controller) SignOut(ctx context.Context) State {
	c.mu.Lock()
	token := c.session.AccessToken
	c.mu.Unlock()

	if token != "" && c.deps.Remote != nil {
		if err := c.deps.Remote.SignOut(ctx, token); err != nil {
			logging.Warn(c.log(ctx), "remote sign-out failed", logging.FieldUpstream, "remote", "error", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := storage.ClearExcept(ctx, c.store, storage.KeyLanguage); err != nil {
		logging.Error(c.log(ctx), "local cache clear failed", err)
	}
	c.session = profile.AuthSession{}
	c.pendingProfile = profile.Profile{}
	c.pending = make(map[string][]chat.Message)
	c.state = State{
		Auth:     profile.StateLoggedOut,
		View:     profile.ViewLogin,
		Language: c.state.Language,
	}
	return c.state.clone()
}

// SyncRemote pulls remote favorites and chat sessions and merges them into the
// local copies, remote winning by identity. Failures leave local data as is.
func (c *Controller) SyncRemote(ctx context.Context) {
	c.mu.Lock()
	token, userID, ok := c.remoteIdentityLocked()
	c.mu.Unlock()
	if !ok {
		return
	}

	var remoteFavs []players.Player
	favsOK := true
	prefs, err := c.deps.Remote.GetPreferences(ctx, token, userID)
	switch {
	case err == nil:
		remoteFavs = players.NormalizeAll(prefs.FavoritePlayers, c.opts.PlayerDefaults)
	case providers.IsNotFound(err):
	default:
		favsOK = false
		logging.Warn(c.log(ctx), "remote favorites unavailable", logging.FieldUpstream, "remote", "error", err)
	}

	sessions, err := c.deps.Remote.ListChatSessions(ctx, token, userID)
	sessionsOK := err == nil
	if err != nil {
		logging.Warn(c.log(ctx), "remote chat history unavailable", logging.FieldUpstream, "remote", "error", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session.UserID != userID {
		return
	}
	if favsOK {
		c.state.Favorites = reconcile.MergeFavorites(c.state.Favorites, remoteFavs)
		c.persistLocked(ctx, storage.KeyFavorites, c.state.Favorites)
	}
	if sessionsOK {
		c.state.History = reconcile.MergeChatSessions(c.state.History, sessions)
		c.persistLocked(ctx, storage.KeyChatHistory, c.state.History)
	}
	logging.Info(c.log(ctx), "remote sync complete",
		logging.FieldUserID, userID,
		"favorites", len(c.state.Favorites),
		"sessions", len(c.state.History),
	)
}
