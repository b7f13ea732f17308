package search

import (
	"strings"

	"github.com/scoutline/scout-client/internal/domain/chat"
	"github.com/scoutline/scout-client/internal/domain/players"
)

func mapRequest(req chat.SearchRequest) searchRequest {
	return searchRequest{
		SessionID:         req.SessionID,
		Query:             req.Query,
		IsFollowUp:        req.IsFollowUp,
		Satisfaction:      req.Satisfaction,
		Language:          req.Language,
		UserID:            req.UserID,
		SupabaseSessionID: req.RemoteSessionID,
	}
}

func mapResult(resp searchResponse, defaults players.Defaults) chat.SearchResult {
	out := chat.SearchResult{
		Success:              resp.Success,
		Response:             resp.Response,
		SatisfactionQuestion: strings.TrimSpace(resp.SatisfactionQuestion),
		RemoteSessionID:      resp.SupabaseSessionID,
		Message:              firstNonEmpty(resp.Message, resp.Error),
	}
	if !resp.Success {
		return out
	}
	out.Players = make([]players.Player, 0, len(resp.Players))
	for _, p := range resp.Players {
		out.Players = append(out.Players, mapPlayer(p, defaults))
	}
	return out
}

func mapPlayer(p playerResponse, defaults players.Defaults) players.Player {
	score := defaults.Score
	if p.Score != nil {
		score = *p.Score
	}
	return players.Normalize(players.Player{
		ID:         strings.TrimSpace(string(p.ID)),
		ExternalID: strings.TrimSpace(string(p.ExternalID)),
		Name:       p.Name,
		Age:        p.Age,
		Club:       p.Club,
		Positions:  p.Positions,
		Stats:      p.Stats,
		Score:      score,
		PhotoURL:   firstNonEmpty(p.PhotoURL, p.PhotoURLv2),
	}, defaults)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
