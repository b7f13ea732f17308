package chat

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/scoutline/scout-client/internal/domain/players"
)

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

const (
	titleMaxRunes   = 30
	snippetMaxRunes = 100
	ellipsis        = "..."
)

// Message is a single entry in the active transcript.
type Message struct {
	ID                     string           `json:"id"`
	Sender                 Sender           `json:"sender"`
	Text                   string           `json:"text"`
	Players                []players.Player `json:"players,omitempty"`
	IsSatisfactionQuestion bool             `json:"isSatisfactionQuestion,omitempty"`
	CreatedAt              time.Time        `json:"createdAt"`
}

// IsBotSatisfactionQuestion reports whether m is a bot prompt asking if results fit.
func (m *Message) IsBotSatisfactionQuestion() bool {
	return m != nil && m.Sender == SenderBot && m.IsSatisfactionQuestion
}

// Session is one conversation thread. ID is the local correlation key;
// RemoteID is filled once the remote store has persisted the session.
type Session struct {
	ID       string    `json:"id"`
	RemoteID string    `json:"remoteId,omitempty"`
	Title    string    `json:"title"`
	Date     time.Time `json:"date"`
	Snippet  string    `json:"snippet,omitempty"`
}

// NewSession derives a session record from the first query of a conversation.
func NewSession(id, query string, now time.Time) Session {
	return Session{
		ID:      id,
		Title:   TitleFromQuery(query),
		Date:    now,
		Snippet: truncate(strings.TrimSpace(query), snippetMaxRunes),
	}
}

// TitleFromQuery keeps the first 30 characters of the query and appends an
// ellipsis when anything was cut.
func TitleFromQuery(query string) string {
	return truncate(strings.TrimSpace(query), titleMaxRunes)
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + ellipsis
}
