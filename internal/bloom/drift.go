package bloom

import (
	"math"

	"github.com/brandonli5211/bloomguard/internal/geo"
)

// DriftModel predicts where wind-driven surface transport carries a bloom.
type DriftModel struct {
	// Transfer is the wind-to-surface-current coefficient; the usual
	// empirical figure is ~3% of wind speed.
	Transfer float64
	// Hours is the forecast window.
	Hours float64
}

// DefaultDriftModel returns the 3%-rule model over a one-hour window.
func DefaultDriftModel() DriftModel {
	return DriftModel{Transfer: 0.03, Hours: 1}
}

// Predict returns the expected position of a surface feature at p after
// the model's forecast window under the given wind. Calm or invalid wind
// returns p unchanged. The function is pure: wind availability is the
// caller's concern.
func (m DriftModel) Predict(p geo.Point, wind WindObservation) geo.Point {
	if wind.SpeedKmh <= 0 {
		return p
	}

	distanceKm := wind.SpeedKmh * m.Transfer * m.Hours
	degrees := distanceKm / geo.KmPerDegree

	// Wind direction is where it blows from; the water goes the other way.
	travel := geo.Radians(wind.DirectionDeg - 180)

	dLat := degrees * math.Cos(travel)
	dLon := degrees * math.Sin(travel) / geo.LatCorrection(p.Lat)

	return geo.Point{
		Lat: geo.ClampLat(p.Lat + dLat),
		Lon: geo.NormalizeLon(p.Lon + dLon),
	}
}
