package fixture

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/gosimple/unidecode"

	"github.com/scoutline/scout-client/internal/domain/chat"
	"github.com/scoutline/scout-client/internal/domain/players"
)

// positionKeywords maps query words in the supported languages to position codes.
var positionKeywords = map[string][]string{
	"striker":        {"cf", "st"},
	"forward":        {"cf", "st"},
	"avancado":       {"cf", "st"},
	"ponta":          {"lw", "rw"},
	"delantero":      {"cf", "st"},
	"napadatel":      {"cf", "st"},
	"winger":         {"lw", "rw"},
	"extremo":        {"lw", "rw"},
	"midfielder":     {"cm", "cam", "cdm"},
	"medio":          {"cm", "cam", "cdm"},
	"centrocampista": {"cm", "cam", "cdm"},
	"defender":       {"cb", "lb", "rb"},
	"zagueiro":       {"cb"},
	"defensa":        {"cb", "lb", "rb"},
	"goalkeeper":     {"gk"},
	"goleiro":        {"gk"},
	"portero":        {"gk"},
	"vratar":         {"gk"},
}

var roster = []players.Player{
	{ID: "fx-1", Name: "Ana Costa", Age: "23", Club: "SL Benfica", Positions: []string{"cf", "st"}, Stats: map[string]float64{"finishing": 88, "pace": 84, "dribbling": 79, "shooting": 86, "passing": 70, "physical": 75}, Score: 91},
	{ID: "fx-2", Name: "Mateo Ruiz", Age: "26", Club: "Real Betis", Positions: []string{"st"}, Stats: map[string]float64{"finishing": 82, "pace": 77, "dribbling": 74, "shooting": 83, "passing": 66, "physical": 85}, Score: 84},
	{ID: "fx-3", Name: "Ivan Petrov", Age: "21", Club: "Ludogorets", Positions: []string{"lw", "rw"}, Stats: map[string]float64{"finishing": 71, "pace": 92, "dribbling": 86, "shooting": 72, "passing": 74, "physical": 63}, Score: 80},
	{ID: "fx-4", Name: "Lucas Almeida", Age: "28", Club: "FC Porto", Positions: []string{"cm", "cam"}, Stats: map[string]float64{"passing": 89, "vision": 87, "dribbling": 80, "tackling": 64, "stamina": 85, "shooting": 74}, Score: 86},
	{ID: "fx-5", Name: "Diego Navarro", Age: "30", Club: "Villarreal", Positions: []string{"cb"}, Stats: map[string]float64{"tackling": 87, "marking": 88, "heading": 84, "strength": 86, "pace": 68, "passing": 72}, Score: 83},
	{ID: "fx-6", Name: "Georgi Ivanov", Age: "27", Club: "CSKA Sofia", Positions: []string{"gk"}, Stats: map[string]float64{"reflexes": 85, "diving": 83, "handling": 80, "positioning": 82, "kicking": 74}, Score: 79},
}

// Search implements providers.SearchProvider with a keyword match over a fixed roster.
func (p *Provider) Search(ctx context.Context, req chat.SearchRequest) (chat.SearchResult, error) {
	_ = ctx
	p.mu.Lock()
	p.searches = append(p.searches, req)
	err := p.enter(OpSearch)
	p.mu.Unlock()
	if err != nil {
		return chat.SearchResult{}, err
	}

	wanted := wantedPositions(req.Query)
	var matched []players.Player
	for _, pl := range roster {
		if len(wanted) == 0 || sharesPosition(pl.Positions, wanted) {
			matched = append(matched, clonePlayer(pl))
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Score > matched[j].Score })
	if len(matched) > 3 {
		matched = matched[:3]
	}

	return chat.SearchResult{
		Success:              true,
		Response:             fmt.Sprintf("I found %d players that fit your search.", len(matched)),
		Players:              matched,
		SatisfactionQuestion: "Did these players match what you were looking for?",
		RemoteSessionID:      req.RemoteSessionID,
	}, nil
}

func wantedPositions(query string) map[string]struct{} {
	out := make(map[string]struct{})
	text := strings.ToLower(unidecode.Unidecode(query))
	for _, word := range strings.FieldsFunc(text, func(r rune) bool { return r < 'a' || r > 'z' }) {
		for _, pos := range positionKeywords[strings.TrimSuffix(word, "s")] {
			out[pos] = struct{}{}
		}
	}
	return out
}

func sharesPosition(positions []string, wanted map[string]struct{}) bool {
	for _, pos := range positions {
		if _, ok := wanted[pos]; ok {
			return true
		}
	}
	return false
}

func clonePlayer(p players.Player) players.Player {
	out := p
	out.Positions = append([]string(nil), p.Positions...)
	out.Stats = make(map[string]float64, len(p.Stats))
	for k, v := range p.Stats {
		out.Stats[k] = v
	}
	return out
}
