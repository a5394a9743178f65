package bloom

import "math"

// RiskModel scores bloom risk from wind speed alone. Stagnant water lets
// surface scum accumulate; wind mixes it back down. The constants are
// tunable per deployment rather than fixed engineering truths.
type RiskModel struct {
	// Base is the risk at zero wind.
	Base float64
	// Slope is the risk removed per km/h of wind.
	Slope float64
	// Min and Max bound the reported score. Min keeps the score away
	// from zero (residual uncertainty); Max caps alarm saturation.
	Min float64
	Max float64
}

// DefaultRiskModel returns the production risk parameters.
func DefaultRiskModel() RiskModel {
	return RiskModel{Base: 0.90, Slope: 0.02, Min: 0.10, Max: 0.95}
}

// Score returns the bounded risk for the given wind speed in km/h.
// Total and deterministic: any speed maps into [Min, Max].
func (m RiskModel) Score(windSpeedKmh float64) float64 {
	raw := m.Base - windSpeedKmh*m.Slope
	return math.Max(m.Min, math.Min(m.Max, raw))
}
