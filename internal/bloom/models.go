package bloom

import (
	"time"

	"github.com/brandonli5211/bloomguard/internal/geo"
)

// WindObservation is a single reduced wind reading for a coordinate.
// Direction follows the meteorological convention: the bearing the wind
// blows FROM, in [0, 360).
type WindObservation struct {
	SpeedKmh     float64 `json:"speedKmh"`
	DirectionDeg float64 `json:"directionDeg"`
}

// Calm is the neutral observation substituted when no wind source is
// available. Zero wind means no drift and leaves the risk model at its
// stagnant-water ceiling.
func Calm() WindObservation {
	return WindObservation{SpeedKmh: 0, DirectionDeg: 0}
}

// Analysis is the full result for one analyzed coordinate.
type Analysis struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"` // always UTC

	Point      geo.Point       `json:"point"`
	Wind       WindObservation `json:"wind"`
	RiskScore  float64         `json:"risk_score"`
	Drift      geo.Point       `json:"drift_vector"`
	FlightPath []geo.Point     `json:"flight_path"`
	ImageURL   string          `json:"image_url"`
	Report     string          `json:"ai_report"`

	// Degraded is true when every wind source failed and the calm
	// fallback was used.
	Degraded bool `json:"degraded"`

	// Sources contributing wind data to this analysis.
	Sources []SourceContribution `json:"sources,omitempty"`
}

// SourceContribution records a wind source that fed the reduced observation.
type SourceContribution struct {
	SourceName string          `json:"source"`
	Reading    WindObservation `json:"reading"`
}
