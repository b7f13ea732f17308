package profile

import (
	"strings"

	"github.com/scoutline/scout-client/internal/domain/players"
)

// UserType distinguishes club scouts from player accounts.
type UserType string

const (
	UserTypeClub   UserType = "club"
	UserTypePlayer UserType = "player"
)

// Valid reports whether t is a known account kind.
func (t UserType) Valid() bool {
	return t == UserTypeClub || t == UserTypePlayer
}

// Profile is the signed-in identity plus onboarding fields.
type Profile struct {
	ID                 string   `json:"id"`
	Email              string   `json:"email"`
	UserType           UserType `json:"user_type"`
	Name               string   `json:"name,omitempty"`
	Language           string   `json:"language,omitempty"`
	Team               string   `json:"team,omitempty"`
	Position           string   `json:"position,omitempty"`
	OnboardingComplete bool     `json:"onboarding_completed"`
}

// Preferences is the remote per-user preferences row.
type Preferences struct {
	UserID          string           `json:"user_id"`
	Language        string           `json:"language,omitempty"`
	Theme           string           `json:"theme,omitempty"`
	FavoritePlayers []players.Player `json:"favorite_players"`
}

// AuthSession is what the auth service hands back after sign-in.
type AuthSession struct {
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token,omitempty"`
	UserID       string            `json:"user_id"`
	Email        string            `json:"email"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Valid reports whether the session can authorize remote calls.
func (s AuthSession) Valid() bool {
	return s.AccessToken != "" && s.UserID != ""
}

// SyntheticProfile builds a minimal profile from auth metadata, used when the
// profile row cannot be fetched.
func SyntheticProfile(s AuthSession) Profile {
	userType := UserType(s.Metadata["user_type"])
	if !userType.Valid() {
		userType = UserTypeClub
	}
	name := s.Metadata["name"]
	if name == "" {
		name = localPart(s.Email)
	}
	return Profile{
		ID:       s.UserID,
		Email:    s.Email,
		UserType: userType,
		Name:     name,
		Language: s.Metadata["language"],
	}
}

func localPart(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}
