package players

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Player is the immutable snapshot of a scouted player as returned by search.
// Copies are replaced wholesale when a fresher version arrives.
type Player struct {
	ID         string             `json:"id"`
	ExternalID string             `json:"externalId,omitempty"`
	Name       string             `json:"name"`
	Age        Age                `json:"age"`
	Club       string             `json:"club"`
	Positions  []string           `json:"positions"`
	Stats      map[string]float64 `json:"stats"`
	Score      float64            `json:"score"`
	PhotoURL   string             `json:"photoUrl,omitempty"`
}

// MissingScore marks a record that arrived without a score. It lies outside
// 0..100, so Normalize replaces it with the configured default.
const MissingScore = -1.0

// UnmarshalJSON decodes a player, recording an absent or null score as MissingScore.
func (p *Player) UnmarshalJSON(data []byte) error {
	type plain Player
	aux := struct {
		*plain
		Score *float64 `json:"score"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.Score = MissingScore
	if aux.Score != nil {
		p.Score = *aux.Score
	}
	return nil
}

// Identity returns the key used to deduplicate players: id, then external id, then name.
func (p Player) Identity() string {
	if p.ID != "" {
		return p.ID
	}
	if p.ExternalID != "" {
		return p.ExternalID
	}
	return p.Name
}

// PrimaryPosition returns the first listed position code, lower-cased.
func (p Player) PrimaryPosition() string {
	if len(p.Positions) == 0 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(p.Positions[0]))
}

// SameIdentity reports whether a and b describe the same player. Two ids
// decide on their own; name plus positions only matters when an id is missing.
func SameIdentity(a, b Player) bool {
	if a.ID != "" && b.ID != "" {
		return a.ID == b.ID
	}
	if a.Name == "" || a.Name != b.Name {
		return false
	}
	return samePositions(a.Positions, b.Positions)
}

func samePositions(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.EqualFold(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Age holds a numeric age or a placeholder such as "?". Upstream sends either form.
type Age string

// UnmarshalJSON accepts numbers, strings and null.
func (a *Age) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Age(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*a = Age(n.String())
	return nil
}

// MarshalJSON writes numeric ages as numbers and everything else as strings.
func (a Age) MarshalJSON() ([]byte, error) {
	if _, err := strconv.Atoi(string(a)); err == nil {
		return []byte(a), nil
	}
	return json.Marshal(string(a))
}
