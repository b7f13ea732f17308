package testutil

import (
	"github.com/scoutline/scout-client/internal/domain/players"
)

// SamplePlayer returns a minimal player fixture with the provided id.
func SamplePlayer(id, name string) players.Player {
	return players.Player{
		ID:        id,
		Name:      name,
		Age:       "24",
		Club:      "Test FC",
		Positions: []string{"cf"},
		Stats:     map[string]float64{"goals": 12, "assists": 4},
		Score:     81,
	}
}
