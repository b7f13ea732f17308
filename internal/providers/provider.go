package providers

import (
	"context"

	"github.com/scoutline/scout-client/internal/domain/chat"
	"github.com/scoutline/scout-client/internal/domain/players"
	"github.com/scoutline/scout-client/internal/domain/profile"
	"github.com/scoutline/scout-client/internal/i18n"
)

// SignUpRequest carries the registration form.
type SignUpRequest struct {
	Email    string
	Password string
	UserType profile.UserType
	Name     string
	Language string
}

// AuthService signs users in and out of the external auth service.
// SignUp returns a nil session when the account still needs email verification.
type AuthService interface {
	SignIn(ctx context.Context, email, password string) (profile.AuthSession, error)
	SignUp(ctx context.Context, req SignUpRequest) (*profile.AuthSession, error)
	Verify(ctx context.Context, email, code string) (profile.AuthSession, error)
	SignOut(ctx context.Context, accessToken string) error
}

// ProfileStore reads and writes profiles keyed by user id.
type ProfileStore interface {
	GetProfile(ctx context.Context, token, userID string) (profile.Profile, error)
	UpsertProfile(ctx context.Context, token string, p profile.Profile) error
}

// ChatStore persists chat sessions and messages. Sessions are created under
// the caller's correlation id (chat.Session.ID) and the store returns its own id.
type ChatStore interface {
	CreateChatSession(ctx context.Context, token, userID string, s chat.Session) (string, error)
	ListChatSessions(ctx context.Context, token, userID string) ([]chat.Session, error)
	AppendChatMessage(ctx context.Context, token, remoteSessionID string, m chat.Message) error
	DeleteChatSessions(ctx context.Context, token, userID string) error
}

// PreferenceStore manages the per-user preferences row.
// GetPreferences returns ErrNotFound when the row does not exist.
type PreferenceStore interface {
	GetPreferences(ctx context.Context, token, userID string) (profile.Preferences, error)
	CreatePreferences(ctx context.Context, token string, prefs profile.Preferences) error
	UpdatePreferences(ctx context.Context, token string, prefs profile.Preferences) error
}

// Remote is the full auth + database collaborator.
type Remote interface {
	AuthService
	ProfileStore
	ChatStore
	PreferenceStore
}

// SearchProvider runs one enhanced search per user query.
type SearchProvider interface {
	Search(ctx context.Context, req chat.SearchRequest) (chat.SearchResult, error)
}

// FavoriteAction names a direct favorites update.
type FavoriteAction string

const (
	ActionAddFavorite    FavoriteAction = "add_favorite"
	ActionRemoveFavorite FavoriteAction = "remove_favorite"
)

// FavoritesFallback is the secondary write path used when the preferences store fails.
type FavoritesFallback interface {
	UpdateFavorite(ctx context.Context, token string, action FavoriteAction, p players.Player) error
}

// LanguageSource lists the UI languages offered by the backend.
type LanguageSource interface {
	Languages(ctx context.Context) ([]i18n.Language, error)
}

// PhotoSource orders the image URLs to try for a player, best first.
type PhotoSource interface {
	PhotoCandidates(p players.Player) []string
}
