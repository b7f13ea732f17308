package postgres

import (
	"time"

	"github.com/scoutline/scout-client/internal/domain/chat"
	"github.com/scoutline/scout-client/internal/domain/players"
	"github.com/scoutline/scout-client/internal/domain/profile"
)

type userRow struct {
	ID               string `gorm:"primaryKey;type:uuid"`
	Email            string `gorm:"uniqueIndex;not null"`
	PasswordHash     string `gorm:"not null"`
	Verified         bool   `gorm:"not null;default:false"`
	VerificationCode string
	CodeExpiresAt    *time.Time
	Metadata         map[string]string `gorm:"serializer:json"`
	CreatedAt        time.Time
}

func (userRow) TableName() string { return "auth_users" }

type revokedTokenRow struct {
	TokenID   string `gorm:"primaryKey"`
	ExpiresAt time.Time
}

func (revokedTokenRow) TableName() string { return "auth_revoked_tokens" }

type profileRow struct {
	ID                  string `gorm:"primaryKey;type:uuid"`
	Email               string
	UserType            string
	Name                string
	Language            string
	Team                string
	Position            string
	OnboardingCompleted bool
	UpdatedAt           time.Time
}

func (profileRow) TableName() string { return "profiles" }

func profileFromRow(r profileRow) profile.Profile {
	return profile.Profile{
		ID:                 r.ID,
		Email:              r.Email,
		UserType:           profile.UserType(r.UserType),
		Name:               r.Name,
		Language:           r.Language,
		Team:               r.Team,
		Position:           r.Position,
		OnboardingComplete: r.OnboardingCompleted,
	}
}

func profileToRow(p profile.Profile) profileRow {
	return profileRow{
		ID:                  p.ID,
		Email:               p.Email,
		UserType:            string(p.UserType),
		Name:                p.Name,
		Language:            p.Language,
		Team:                p.Team,
		Position:            p.Position,
		OnboardingCompleted: p.OnboardingComplete,
	}
}

type sessionRow struct {
	ID         string `gorm:"primaryKey;type:uuid"`
	UserID     string `gorm:"index;uniqueIndex:idx_session_external,priority:1;not null"`
	ExternalID string `gorm:"uniqueIndex:idx_session_external,priority:2"`
	Title      string
	Snippet    string
	CreatedAt  time.Time `gorm:"index"`
}

func (sessionRow) TableName() string { return "chat_sessions" }

func (r sessionRow) toSession() chat.Session {
	id := r.ExternalID
	if id == "" {
		id = r.ID
	}
	return chat.Session{ID: id, RemoteID: r.ID, Title: r.Title, Date: r.CreatedAt, Snippet: r.Snippet}
}

type messageRow struct {
	ID                     uint   `gorm:"primaryKey;autoIncrement"`
	SessionID              string `gorm:"index;type:uuid;not null"`
	Sender                 string
	Content                string
	Players                []players.Player `gorm:"serializer:json"`
	IsSatisfactionQuestion bool
	CreatedAt              time.Time
}

func (messageRow) TableName() string { return "chat_messages" }

type preferencesRow struct {
	UserID          string `gorm:"primaryKey;type:uuid"`
	Language        string
	Theme           string
	FavoritePlayers []players.Player `gorm:"serializer:json"`
	UpdatedAt       time.Time
}

func (preferencesRow) TableName() string { return "user_preferences" }

func preferencesFromRow(r preferencesRow) profile.Preferences {
	return profile.Preferences{
		UserID:          r.UserID,
		Language:        r.Language,
		Theme:           r.Theme,
		FavoritePlayers: r.FavoritePlayers,
	}
}

func preferencesToRow(p profile.Preferences) preferencesRow {
	return preferencesRow{
		UserID:          p.UserID,
		Language:        p.Language,
		Theme:           p.Theme,
		FavoritePlayers: p.FavoritePlayers,
	}
}

func allModels() []any {
	return []any{&userRow{}, &revokedTokenRow{}, &profileRow{}, &sessionRow{}, &messageRow{}, &preferencesRow{}}
}
