package players

import "strings"

const (
	UnknownName         = "Unknown Player"
	UnknownAge      Age = "?"
	UnknownClub         = "Unknown Club"
	DefaultPosition     = "cf"

	minScore = 0
	maxScore = 100
)

// Defaults configures values applied to malformed player records.
type Defaults struct {
	// Score is used when a record carries no score or one outside 0..100.
	Score float64
}

// Normalize coerces a player record into the shape the views rely on.
func Normalize(p Player, d Defaults) Player {
	out := p
	out.Name = strings.TrimSpace(out.Name)
	if out.Name == "" {
		out.Name = UnknownName
	}
	if out.ID == "" {
		out.ID = out.ExternalID
	}
	if out.ID == "" {
		out.ID = out.Name
	}
	if out.Age == "" {
		out.Age = UnknownAge
	}
	if strings.TrimSpace(out.Club) == "" {
		out.Club = UnknownClub
	}
	if len(out.Positions) == 0 {
		out.Positions = []string{DefaultPosition}
	} else {
		out.Positions = append([]string(nil), out.Positions...)
	}
	stats := make(map[string]float64, len(out.Stats))
	for k, v := range out.Stats {
		stats[k] = v
	}
	out.Stats = stats
	if out.Score < minScore || out.Score > maxScore {
		out.Score = d.Score
	}
	return out
}

// NormalizeAll applies Normalize to every record.
func NormalizeAll(items []Player, d Defaults) []Player {
	out := make([]Player, 0, len(items))
	for _, p := range items {
		out = append(out, Normalize(p, d))
	}
	return out
}
