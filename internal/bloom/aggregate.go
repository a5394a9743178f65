package bloom

import "github.com/brandonli5211/bloomguard/internal/geo"

// ReduceObservations combines readings from multiple wind sources into a
// single representative observation: arithmetic mean for speed, circular
// mean for direction. Naive averaging of bearings is invalid across the
// 0/360 discontinuity, so direction goes through the sine/cosine form.
// An empty input reduces to the calm observation.
func ReduceObservations(readings []WindObservation) WindObservation {
	if len(readings) == 0 {
		return Calm()
	}

	var speedSum float64
	directions := make([]float64, 0, len(readings))
	for _, r := range readings {
		speedSum += r.SpeedKmh
		directions = append(directions, r.DirectionDeg)
	}

	return WindObservation{
		SpeedKmh:     speedSum / float64(len(readings)),
		DirectionDeg: geo.CircularMean(directions),
	}
}
