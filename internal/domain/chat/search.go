package chat

import "github.com/scoutline/scout-client/internal/domain/players"

// SearchRequest is one query sent to the enhanced search endpoint.
type SearchRequest struct {
	SessionID       string
	Query           string
	IsFollowUp      bool
	Satisfaction    *bool
	Language        string
	UserID          string
	RemoteSessionID string
}

// SearchResult is the parsed search response. Success=false carries Message.
type SearchResult struct {
	Success              bool
	Response             string
	Players              []players.Player
	SatisfactionQuestion string
	RemoteSessionID      string
	Message              string
}
