package players

// RadarPoint is one axis of the dashboard radar chart.
type RadarPoint struct {
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
}

var (
	attackingMetrics  = []string{"pace", "shooting", "dribbling", "passing", "physical", "heading"}
	midfieldMetrics   = []string{"passing", "vision", "dribbling", "stamina", "tackling", "shooting"}
	defensiveMetrics  = []string{"tackling", "marking", "heading", "pace", "physical", "passing"}
	goalkeeperMetrics = []string{"reflexes", "handling", "diving", "positioning", "kicking", "communication"}
)

var positionGroups = map[string][]string{
	"cf": attackingMetrics, "st": attackingMetrics, "ss": attackingMetrics,
	"lw": attackingMetrics, "rw": attackingMetrics,
	"cm": midfieldMetrics, "cam": midfieldMetrics, "cdm": midfieldMetrics,
	"lm": midfieldMetrics, "rm": midfieldMetrics,
	"cb": defensiveMetrics, "lb": defensiveMetrics, "rb": defensiveMetrics,
	"lwb": defensiveMetrics, "rwb": defensiveMetrics,
	"gk": goalkeeperMetrics,
}

// MetricsFor returns the default radar axes for a position code.
func MetricsFor(position string) []string {
	if m, ok := positionGroups[position]; ok {
		return m
	}
	return attackingMetrics
}

// RadarPoints builds radar axes for p. When metrics is empty the axes are chosen
// from the player's primary position. Missing stats read as 0.
func RadarPoints(p Player, metrics []string) []RadarPoint {
	if len(metrics) == 0 {
		metrics = MetricsFor(p.PrimaryPosition())
	}
	points := make([]RadarPoint, 0, len(metrics))
	for _, m := range metrics {
		points = append(points, RadarPoint{Metric: m, Value: clamp(p.Stats[m])})
	}
	return points
}

func clamp(v float64) float64 {
	switch {
	case v < minScore:
		return minScore
	case v > maxScore:
		return maxScore
	default:
		return v
	}
}
