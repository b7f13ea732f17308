package app

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/scoutline/scout-client/internal/domain/chat"
	"github.com/scoutline/scout-client/internal/domain/players"
	"github.com/scoutline/scout-client/internal/domain/profile"
	"github.com/scoutline/scout-client/internal/providers/fixture"
	"github.com/scoutline/scout-client/internal/storage"
)

func TestDemoAccountSignsInDirectly(t *testing.T) {
	h := newHarness(t, Options{DemoAccounts: true}, nil)

	st, err := h.c.SignIn(context.Background(), "Club@Demo.com", "demo123")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if st.Auth != profile.StateAuthenticated || st.View != profile.ViewChat {
		t.Fatalf("expected authenticated chat view, got %s/%s", st.Auth, st.View)
	}
	if st.Profile == nil || st.Profile.UserType != profile.UserTypeClub {
		t.Fatalf("unexpected demo profile: %+v", st.Profile)
	}
	if h.fx.Calls(fixture.OpSignIn) != 0 {
		t.Fatal("expected demo sign-in to skip the auth service")
	}
}

func TestDemoAccountsCanBeDisabled(t *testing.T) {
	h := newHarness(t, Options{}, nil)
	var verr *ValidationError
	if _, err := h.c.SignIn(context.Background(), "club@demo.com", "demo123"); !errors.As(err, &verr) || verr.Field != "credentials" {
		t.Fatalf("expected credentials error, got %v", err)
	}
}

func TestSignInValidatesForm(t *testing.T) {
	h := newHarness(t, Options{}, nil)
	cases := []struct {
		email, password, field string
	}{
		{"", "x", "email"},
		{"not-an-email", "x", "email"},
		{"a@b.com", "", "password"},
	}
	for _, tc := range cases {
		var verr *ValidationError
		if _, err := h.c.SignIn(context.Background(), tc.email, tc.password); !errors.As(err, &verr) || verr.Field != tc.field {
			t.Fatalf("%q/%q: expected %s error, got %v", tc.email, tc.password, tc.field, err)
		}
	}
}

func TestSignInOnboardedProfileIsAuthenticated(t *testing.T) {
	h := newHarness(t, Options{}, nil)
	h.signedIn(t)

	st := h.c.State()
	if st.Auth != profile.StateAuthenticated || st.Profile.Team != "FC Test" {
		t.Fatalf("unexpected state: %+v", st)
	}
	u, ok := cached[cachedUser](t, h.store, storage.KeyUser)
	if !ok || u.Session.AccessToken == "" {
		t.Fatalf("expected user cached with session, got %+v", u)
	}
}

func TestSignInMissingProfileIsCreated(t *testing.T) {
	h := newHarness(t, Options{}, nil)
	userID := h.fx.AddAccount("new@club.com", "secret1", map[string]string{"user_type": "player", "name": "Rui"})

	st, err := h.c.SignIn(context.Background(), "new@club.com", "secret1")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if st.Auth != profile.StateOnboarding || st.View != profile.ViewOnboarding {
		t.Fatalf("expected onboarding, got %s/%s", st.Auth, st.View)
	}
	created, ok := h.fx.Profile(userID)
	if !ok || created.UserType != profile.UserTypePlayer || created.Name != "Rui" {
		t.Fatalf("expected synthetic profile created remotely, got %+v", created)
	}
}

func TestSignInProfileFailureUsesSessionMetadata(t *testing.T) {
	h := newHarness(t, Options{}, nil)
	h.fx.AddAccount("coach@club.com", "secret1", map[string]string{"user_type": "club"})
	h.fx.Fail(fixture.OpGetProfile, errors.New("503"))

	st, err := h.c.SignIn(context.Background(), "coach@club.com", "secret1")
	if err != nil {
		t.Fatalf("expected profile failure to be non-fatal, got %v", err)
	}
	if st.Profile == nil || st.Profile.Name != "coach" || st.Auth != profile.StateOnboarding {
		t.Fatalf("unexpected synthetic state: %+v", st)
	}
	if h.fx.Calls(fixture.OpUpsertProfile) != 0 {
		t.Fatal("expected no profile write when the fetch failed")
	}
}

func TestSignInWrongPassword(t *testing.T) {
	h := newHarness(t, Options{}, nil)
	h.fx.AddAccount("scout@club.com", "secret1", nil)
	var verr *ValidationError
	if _, err := h.c.SignIn(context.Background(), "scout@club.com", "nope"); !errors.As(err, &verr) || verr.Message != "invalid email or password" {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if h.c.State().Auth != profile.StateLoggedOut {
		t.Fatal("expected to stay logged out")
	}
}

func TestSignInMergesRemoteData(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{}, nil)
	h.c.ToggleFavorite(ctx, winger())
	h.c.SubmitQuery(ctx, "I need a striker")
	localSession := h.c.State().History[0]

	userID := h.fx.AddAccount("scout@club.com", "secret1", nil)
	h.fx.SetProfile(profileFor(userID, true))
	remoteStriker := striker()
	remoteStriker.Club = "Remote FC"
	h.fx.SetPreferences(profile.Preferences{UserID: userID, FavoritePlayers: []players.Player{remoteStriker, winger()}})
	remoteCopy := localSession
	remoteCopy.RemoteID = "remote-77"
	h.fx.SetSessions(userID, []chat.Session{
		{ID: "older", RemoteID: "remote-1", Title: "Older"},
		remoteCopy,
	})

	if _, err := h.c.SignIn(ctx, "scout@club.com", "secret1"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	st := h.c.State()
	if diff := cmp.Diff([]string{"p-9", "p-7"}, favoriteIDs(st.Favorites)); diff != "" {
		t.Fatalf("unexpected merged favorites (-want +got):\n%s", diff)
	}
	if st.Favorites[0].Club != "Remote FC" {
		t.Fatal("expected remote copy to win")
	}
	if len(st.History) != 2 || st.History[1].RemoteID != "remote-77" {
		t.Fatalf("expected remote session to supersede placeholder, got %+v", st.History)
	}
	cachedFavs, _ := cached[[]players.Player](t, h.store, storage.KeyFavorites)
	if len(cachedFavs) != 2 {
		t.Fatalf("expected merged favorites cached, got %d", len(cachedFavs))
	}
}

func TestSyncRemoteKeepsLocalDataOnFailure(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{}, nil)
	h.signedIn(t)
	h.c.ToggleFavorite(ctx, striker())
	h.fx.Fail(fixture.OpGetPreferences, errors.New("down"))
	h.fx.Fail(fixture.OpListSessions, errors.New("down"))

	h.c.SyncRemote(ctx)
	if len(h.c.Favorites()) != 1 {
		t.Fatal("expected local favorites untouched")
	}
}

func TestSignUpVerifyOnboardFlow(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{}, nil)

	st, err := h.c.SignUp(ctx, SignUpForm{Email: "rookie@club.com", Password: "secret1", UserType: profile.UserTypeClub, Name: "Rookie"})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if st.Auth != profile.StateVerifying || st.PendingEmail != "rookie@club.com" {
		t.Fatalf("expected verifying, got %+v", st)
	}

	var verr *ValidationError
	if _, err := h.c.Verify(ctx, "000000"); !errors.As(err, &verr) || verr.Field != "code" {
		t.Fatalf("expected code error, got %v", err)
	}
	st, err = h.c.Verify(ctx, fixture.VerificationCode)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if st.Auth != profile.StateOnboarding || st.Profile == nil {
		t.Fatalf("expected onboarding, got %+v", st)
	}

	if _, err := h.c.CompleteOnboarding(ctx, OnboardingForm{Name: "Rookie"}); !errors.As(err, &verr) || verr.Field != "team" {
		t.Fatalf("expected team required for clubs, got %v", err)
	}
	st, err = h.c.CompleteOnboarding(ctx, OnboardingForm{Name: "Rookie", Team: "FC Porto", Language: "es"})
	if err != nil {
		t.Fatalf("complete onboarding: %v", err)
	}
	if st.Auth != profile.StateAuthenticated || st.View != profile.ViewChat || st.Language != "es" {
		t.Fatalf("expected authenticated in es, got %+v", st)
	}
	remote, ok := h.fx.Profile(st.Profile.ID)
	if !ok || !remote.OnboardingComplete || remote.Team != "FC Porto" {
		t.Fatalf("expected onboarded profile stored remotely, got %+v", remote)
	}
	if flag, _ := cached[bool](t, h.store, storage.KeyOnboardingComplete); !flag {
		t.Fatal("expected onboarding flag cached")
	}
}

func TestSignUpWithImmediateSessionSkipsVerification(t *testing.T) {
	h := newHarness(t, Options{}, nil)
	h.fx.AutoConfirm = true
	st, err := h.c.SignUp(context.Background(), SignUpForm{Email: "fast@club.com", Password: "secret1", UserType: profile.UserTypePlayer})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if st.Auth != profile.StateOnboarding {
		t.Fatalf("expected onboarding, got %s", st.Auth)
	}
}

func TestSignUpValidation(t *testing.T) {
	h := newHarness(t, Options{}, nil)
	cases := []struct {
		form  SignUpForm
		field string
	}{
		{SignUpForm{Email: "x", Password: "secret1", UserType: profile.UserTypeClub}, "email"},
		{SignUpForm{Email: "a@b.com", Password: "123", UserType: profile.UserTypeClub}, "password"},
		{SignUpForm{Email: "a@b.com", Password: "secret1", UserType: "coach"}, "userType"},
	}
	for _, tc := range cases {
		var verr *ValidationError
		if _, err := h.c.SignUp(context.Background(), tc.form); !errors.As(err, &verr) || verr.Field != tc.field {
			t.Fatalf("%+v: expected %s error, got %v", tc.form, tc.field, err)
		}
	}
	if h.fx.Calls(fixture.OpSignUp) != 0 {
		t.Fatal("expected invalid forms to block submission")
	}
}

func TestVerificationBypass(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{VerificationBypass: true}, nil)
	h.c.SignUp(ctx, SignUpForm{Email: "rookie@club.com", Password: "secret1", UserType: profile.UserTypePlayer})

	st, err := h.c.Verify(ctx, "")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if st.Auth != profile.StateOnboarding || st.Profile.UserType != profile.UserTypePlayer {
		t.Fatalf("unexpected bypass state: %+v", st)
	}
	if h.fx.Calls(fixture.OpVerify) != 0 {
		t.Fatal("expected bypass to skip the auth service")
	}
	st, err = h.c.CompleteOnboarding(ctx, OnboardingForm{Name: "Rookie", Position: "cf"})
	if err != nil || st.Auth != profile.StateAuthenticated {
		t.Fatalf("expected authenticated, got %+v %v", st, err)
	}
}

func TestVerifyOutsideFlow(t *testing.T) {
	h := newHarness(t, Options{}, nil)
	var verr *ValidationError
	if _, err := h.c.Verify(context.Background(), "123456"); !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCompleteOnboardingSwallowsProfileWriteFailure(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{}, nil)
	h.fx.AddAccount("new@club.com", "secret1", map[string]string{"user_type": "club"})
	h.c.SignIn(ctx, "new@club.com", "secret1")
	h.fx.Fail(fixture.OpUpsertProfile, errors.New("write failed"))

	st, err := h.c.CompleteOnboarding(ctx, OnboardingForm{Name: "New", Team: "Braga"})
	if err != nil || st.Auth != profile.StateAuthenticated {
		t.Fatalf("expected onboarding to complete anyway, got %+v %v", st, err)
	}
}

func TestSignOutKeepsOnlyLanguage(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{}, nil)
	h.signedIn(t)
	if err := h.c.SetLanguage(ctx, "bg"); err != nil {
		t.Fatalf("set language: %v", err)
	}
	h.c.ToggleFavorite(ctx, striker())
	h.c.SubmitQuery(ctx, "търся вратар")

	st := h.c.SignOut(ctx)
	if st.Auth != profile.StateLoggedOut || st.Language != "bg" || len(st.Favorites) != 0 || len(st.History) != 0 {
		t.Fatalf("unexpected state after sign-out: %+v", st)
	}
	if lang, ok := cached[string](t, h.store, storage.KeyLanguage); !ok || lang != "bg" {
		t.Fatalf("expected language retained, got %q ok=%v", lang, ok)
	}
	for _, key := range []storage.Key{storage.KeyFavorites, storage.KeyChatHistory, storage.KeyChatSessionID, storage.KeyUser, storage.KeyOnboardingComplete} {
		if _, ok, _ := h.store.Get(ctx, key); ok {
			t.Fatalf("expected %s cleared", key)
		}
	}
	if h.fx.Calls(fixture.OpSignOut) != 1 {
		t.Fatal("expected remote sign-out")
	}
}

func TestSignOutSurvivesRemoteFailure(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{}, nil)
	h.signedIn(t)
	h.fx.Fail(fixture.OpSignOut, errors.New("down"))

	if st := h.c.SignOut(ctx); st.Auth != profile.StateLoggedOut {
		t.Fatalf("expected logged out, got %s", st.Auth)
	}
}

func TestRestoreReloadsCachedState(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{}, nil)
	h.signedIn(t)
	h.c.SetLanguage(ctx, "pt")
	h.c.ToggleFavorite(ctx, striker())
	h.c.SubmitQuery(ctx, "I need a striker")
	before := h.c.State()

	c := NewController("device-1", h.store, h.deps, h.opts, nil)
	c.Restore(ctx)
	after := c.State()

	if after.Auth != profile.StateAuthenticated || after.Language != "pt" {
		t.Fatalf("unexpected restored auth/language: %s/%s", after.Auth, after.Language)
	}
	if diff := cmp.Diff(before.History, after.History); diff != "" {
		t.Fatalf("history mismatch (-before +after):\n%s", diff)
	}
	if diff := cmp.Diff(before.Favorites, after.Favorites); diff != "" {
		t.Fatalf("favorites mismatch (-before +after):\n%s", diff)
	}
	if after.ActiveSessionID != before.ActiveSessionID {
		t.Fatal("expected active session restored")
	}

	// the restored session still authorizes remote writes
	updates := h.fx.Calls(fixture.OpUpdatePreferences)
	c.ToggleFavorite(ctx, winger())
	if h.fx.Calls(fixture.OpUpdatePreferences) != updates+1 || len(h.fx.FallbackCalls()) != 0 {
		t.Fatal("expected restored token to be used")
	}
}

func TestRestoreIgnoresCorruptKeys(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	_ = store.Set(ctx, storage.KeyFavorites, []byte("{not json"))
	_ = store.Set(ctx, storage.KeyLanguage, []byte(`"es"`))

	c := NewController("device-9", store, Deps{}, Options{}, nil)
	c.Restore(ctx)
	st := c.State()
	if st.Language != "es" || len(st.Favorites) != 0 || st.Auth != profile.StateLoggedOut {
		t.Fatalf("unexpected restored state: %+v", st)
	}
}

func TestRestoreVerifyingState(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{}, nil)
	h.c.SignUp(ctx, SignUpForm{Email: "rookie@club.com", Password: "secret1", UserType: profile.UserTypeClub})

	c := NewController("device-1", h.store, h.deps, h.opts, nil)
	c.Restore(ctx)
	if st := c.State(); st.Auth != profile.StateVerifying || st.PendingEmail != "rookie@club.com" {
		t.Fatalf("expected verifying restored, got %+v", st)
	}
	if _, err := c.Verify(ctx, fixture.VerificationCode); err != nil {
		t.Fatalf("verify after restore: %v", err)
	}
}
