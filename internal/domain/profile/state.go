package profile

// AuthState is the position in the sign-in/onboarding flow.
type AuthState string

const (
	StateLoggedOut     AuthState = "loggedOut"
	StateVerifying     AuthState = "verifying"
	StateOnboarding    AuthState = "onboarding"
	StateAuthenticated AuthState = "authenticated"
)

// View is the screen the client should present.
type View string

const (
	ViewLogin      View = "login"
	ViewOnboarding View = "onboarding"
	ViewChat       View = "chat"
	ViewDashboard  View = "dashboard"
	ViewFavorites  View = "favorites"
	ViewSettings   View = "settings"
)

// Valid reports whether v is a known view.
func (v View) Valid() bool {
	switch v {
	case ViewLogin, ViewOnboarding, ViewChat, ViewDashboard, ViewFavorites, ViewSettings:
		return true
	}
	return false
}

// RequiresAuth reports whether the view is only reachable once authenticated.
func (v View) RequiresAuth() bool {
	return v != ViewLogin && v != ViewOnboarding
}
