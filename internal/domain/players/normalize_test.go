package players

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeFillsDefaults(t *testing.T) {
	got := Normalize(Player{}, Defaults{Score: 0})
	want := Player{
		ID:        UnknownName,
		Name:      UnknownName,
		Age:       UnknownAge,
		Club:      UnknownClub,
		Positions: []string{DefaultPosition},
		Stats:     map[string]float64{},
		Score:     0,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected normalized player (-want +got):\n%s", diff)
	}
}

func TestNormalizeIDFallsBackToExternalThenName(t *testing.T) {
	if got := Normalize(Player{ExternalID: "ext-9", Name: "Rui"}, Defaults{}); got.ID != "ext-9" {
		t.Fatalf("expected external id, got %q", got.ID)
	}
	if got := Normalize(Player{Name: "Rui"}, Defaults{}); got.ID != "Rui" {
		t.Fatalf("expected name as id, got %q", got.ID)
	}
}

func TestNormalizeScoreOutOfRangeUsesDefault(t *testing.T) {
	got := Normalize(Player{Name: "A", Score: 140}, Defaults{Score: 80})
	if got.Score != 80 {
		t.Fatalf("expected default score 80, got %v", got.Score)
	}
	got = Normalize(Player{Name: "A", Score: 67}, Defaults{Score: 80})
	if got.Score != 67 {
		t.Fatalf("expected score preserved, got %v", got.Score)
	}
}

func TestNormalizeDecodedPlayerWithoutScoreUsesDefault(t *testing.T) {
	for _, raw := range []string{`{"id":"x","name":"No Score"}`, `{"id":"x","name":"No Score","score":null}`} {
		var p Player
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
		if got := Normalize(p, Defaults{Score: 70}); got.Score != 70 {
			t.Fatalf("expected default 70 for %s, got %v", raw, got.Score)
		}
	}

	var zero Player
	if err := json.Unmarshal([]byte(`{"id":"x","name":"Zero","score":0}`), &zero); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := Normalize(zero, Defaults{Score: 70}); got.Score != 0 {
		t.Fatalf("expected explicit zero kept, got %v", got.Score)
	}
}

func TestNormalizeDoesNotAliasInput(t *testing.T) {
	in := Player{Name: "A", Positions: []string{"cb"}, Stats: map[string]float64{"pace": 70}}
	out := Normalize(in, Defaults{})
	out.Positions[0] = "gk"
	out.Stats["pace"] = 1
	if in.Positions[0] != "cb" || in.Stats["pace"] != 70 {
		t.Fatalf("expected input untouched, got %+v", in)
	}
}

func TestRadarPointsUsesPositionMetrics(t *testing.T) {
	p := Player{Positions: []string{"GK"}, Stats: map[string]float64{"reflexes": 120, "handling": -4, "diving": 75}}
	points := RadarPoints(p, nil)
	if len(points) != len(goalkeeperMetrics) {
		t.Fatalf("expected %d axes, got %d", len(goalkeeperMetrics), len(points))
	}
	if points[0].Metric != "reflexes" || points[0].Value != 100 {
		t.Fatalf("expected clamped reflexes, got %+v", points[0])
	}
	if points[1].Value != 0 {
		t.Fatalf("expected negative stat clamped to 0, got %+v", points[1])
	}
	if points[2].Value != 75 {
		t.Fatalf("expected diving 75, got %+v", points[2])
	}
}

func TestRadarPointsExplicitMetrics(t *testing.T) {
	points := RadarPoints(Player{Stats: map[string]float64{"xg": 40}}, []string{"xg", "assists"})
	want := []RadarPoint{{Metric: "xg", Value: 40}, {Metric: "assists", Value: 0}}
	if diff := cmp.Diff(want, points); diff != "" {
		t.Fatalf("unexpected radar points (-want +got):\n%s", diff)
	}
}
