package search

import (
	"bytes"
	"encoding/json"

	"github.com/scoutline/scout-client/internal/domain/players"
)

type searchRequest struct {
	SessionID         string `json:"session_id"`
	Query             string `json:"query"`
	IsFollowUp        bool   `json:"is_follow_up"`
	Satisfaction      *bool  `json:"satisfaction"`
	Language          string `json:"language"`
	UserID            string `json:"user_id,omitempty"`
	SupabaseSessionID string `json:"supabase_session_id,omitempty"`
}

type searchResponse struct {
	Success              bool             `json:"success"`
	Response             string           `json:"response"`
	Players              []playerResponse `json:"players"`
	SatisfactionQuestion string           `json:"satisfaction_question"`
	SupabaseSessionID    string           `json:"supabase_session_id"`
	Message              string           `json:"message"`
	Error                string           `json:"error"`
}

type playerResponse struct {
	ID         flexString         `json:"id"`
	ExternalID flexString         `json:"external_id"`
	Name       string             `json:"name"`
	Age        players.Age        `json:"age"`
	Club       string             `json:"club"`
	Positions  []string           `json:"positions"`
	Stats      map[string]float64 `json:"stats"`
	Score      *float64           `json:"score"`
	PhotoURL   string             `json:"photo_url"`
	PhotoURLv2 string             `json:"photoUrl"`
}

// flexString accepts ids sent either as JSON strings or numbers.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}
