package app

import (
	"encoding/json"

	"github.com/scoutline/scout-client/internal/domain/chat"
	"github.com/scoutline/scout-client/internal/domain/players"
	"github.com/scoutline/scout-client/internal/domain/profile"
)

// State is everything a client view renders.
type State struct {
	Auth            profile.AuthState `json:"auth"`
	Profile         *profile.Profile  `json:"profile,omitempty"`
	PendingEmail    string            `json:"pendingEmail,omitempty"`
	View            profile.View      `json:"view"`
	SelectedPlayer  *players.Player   `json:"selectedPlayer,omitempty"`
	Language        string            `json:"language"`
	Favorites       []players.Player  `json:"favorites"`
	Messages        []chat.Message    `json:"messages"`
	History         []chat.Session    `json:"history"`
	ActiveSessionID string            `json:"activeSessionId,omitempty"`
	IsLoading       bool              `json:"isLoading"`
}

func (s State) clone() State {
	out := s
	if s.Profile != nil {
		p := *s.Profile
		out.Profile = &p
	}
	if s.SelectedPlayer != nil {
		p := *s.SelectedPlayer
		out.SelectedPlayer = &p
	}
	out.Favorites = append([]players.Player{}, s.Favorites...)
	out.Messages = append([]chat.Message{}, s.Messages...)
	out.History = append([]chat.Session{}, s.History...)
	return out
}

// profileView is the client-facing profile. The domain type keeps the remote
// row's snake_case names.
type profileView struct {
	ID                  string           `json:"id"`
	Email               string           `json:"email"`
	UserType            profile.UserType `json:"userType"`
	Name                string           `json:"name,omitempty"`
	Language            string           `json:"language,omitempty"`
	Team                string           `json:"team,omitempty"`
	Position            string           `json:"position,omitempty"`
	OnboardingCompleted bool             `json:"onboardingCompleted"`
}

type stateJSON struct {
	plainState
	Profile *profileView `json:"profile,omitempty"`
}

type plainState State

// MarshalJSON writes the state with camelCase profile fields.
func (s State) MarshalJSON() ([]byte, error) {
	out := stateJSON{plainState: plainState(s)}
	if p := s.Profile; p != nil {
		out.Profile = &profileView{
			ID:                  p.ID,
			Email:               p.Email,
			UserType:            p.UserType,
			Name:                p.Name,
			Language:            p.Language,
			Team:                p.Team,
			Position:            p.Position,
			OnboardingCompleted: p.OnboardingComplete,
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads what MarshalJSON writes.
func (s *State) UnmarshalJSON(data []byte) error {
	var in stateJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*s = State(in.plainState)
	s.Profile = nil
	if v := in.Profile; v != nil {
		s.Profile = &profile.Profile{
			ID:                 v.ID,
			Email:              v.Email,
			UserType:           v.UserType,
			Name:               v.Name,
			Language:           v.Language,
			Team:               v.Team,
			Position:           v.Position,
			OnboardingComplete: v.OnboardingCompleted,
		}
	}
	return nil
}

// cachedUser is what the client keeps under the user key between runs.
type cachedUser struct {
	Profile      profile.Profile     `json:"profile"`
	Session      profile.AuthSession `json:"session"`
	PendingEmail string              `json:"pendingEmail,omitempty"`
}

// Dashboard is the detail view of one player.
type Dashboard struct {
	Player     players.Player       `json:"player"`
	Radar      []players.RadarPoint `json:"radar"`
	IsFavorite bool                 `json:"isFavorite"`
	Photos     []string             `json:"photos"`
}
