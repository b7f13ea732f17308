package supabase

import (
	"fmt"
	"time"

	"github.com/scoutline/scout-client/internal/domain/chat"
	"github.com/scoutline/scout-client/internal/domain/players"
	"github.com/scoutline/scout-client/internal/domain/profile"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signUpBody struct {
	Email    string            `json:"email"`
	Password string            `json:"password"`
	Data     map[string]string `json:"data,omitempty"`
}

type verifyBody struct {
	Type  string `json:"type"`
	Email string `json:"email"`
	Token string `json:"token"`
}

type userResponse struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

// sessionResponse covers both the token grant and the signup reply; the latter
// is a bare user object when email confirmation is pending.
type sessionResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	User         *userResponse `json:"user"`

	ID    string `json:"id"`
	Email string `json:"email"`
}

func (r sessionResponse) session() (profile.AuthSession, bool) {
	if r.AccessToken == "" || r.User == nil || r.User.ID == "" {
		return profile.AuthSession{}, false
	}
	return profile.AuthSession{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		UserID:       r.User.ID,
		Email:        r.User.Email,
		Metadata:     stringMetadata(r.User.UserMetadata),
	}, true
}

func stringMetadata(in map[string]any) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		switch val := v.(type) {
		case nil:
		case string:
			out[k] = val
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}

type sessionRow struct {
	ID         string    `json:"id,omitempty"`
	UserID     string    `json:"user_id"`
	ExternalID string    `json:"external_id"`
	Title      string    `json:"title"`
	Snippet    string    `json:"snippet,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (r sessionRow) toSession() chat.Session {
	id := r.ExternalID
	if id == "" {
		id = r.ID
	}
	return chat.Session{
		ID:       id,
		RemoteID: r.ID,
		Title:    r.Title,
		Date:     r.CreatedAt,
		Snippet:  r.Snippet,
	}
}

type messageRow struct {
	SessionID              string           `json:"session_id"`
	Sender                 chat.Sender      `json:"sender"`
	Content                string           `json:"content"`
	Players                []players.Player `json:"players,omitempty"`
	IsSatisfactionQuestion bool             `json:"is_satisfaction_question"`
	CreatedAt              time.Time        `json:"created_at"`
}
