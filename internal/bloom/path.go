package bloom

import (
	"math"

	"github.com/brandonli5211/bloomguard/internal/geo"
)

// PathPlanner synthesizes drone interception paths. The drone flies from
// home to the bloom, then sweeps a zigzag corridor along the predicted
// drift line so it covers area instead of flying straight through.
type PathPlanner struct {
	// Home is the fixed deployment base, always the first waypoint.
	Home geo.Point
	// Steps is the number of zigzag legs along the drift line.
	Steps int
	// WidthKm is the lateral half-width of the sweep corridor.
	WidthKm float64
}

// DefaultPathPlanner returns a planner with the production sweep shape
// around the given home base.
func DefaultPathPlanner(home geo.Point) PathPlanner {
	return PathPlanner{Home: home, Steps: 8, WidthKm: 1.5}
}

// Plan returns the ordered waypoint list: home, the bloom itself, then an
// alternating +offset/-offset pair for each interpolated point along the
// bloom→drift line. Output length is always 2 + 2*Steps, and the order is
// the flight sequence the controller executes.
func (pl PathPlanner) Plan(bloom, drift geo.Point) []geo.Point {
	path := make([]geo.Point, 0, 2+2*pl.Steps)
	path = append(path, pl.Home, bloom)

	dLat := drift.Lat - bloom.Lat
	dLon := drift.Lon - bloom.Lon

	// Bearing of the drift line. atan2(0,0) is the degenerate zero-length
	// case; fall back to due north rather than letting NaN propagate.
	var bearing float64
	if dLat != 0 || dLon != 0 {
		bearing = math.Atan2(dLon*math.Cos(geo.Radians(bloom.Lat)), dLat)
	}
	perp := bearing + math.Pi/2

	offsetDeg := pl.WidthKm / geo.KmPerDegree

	for i := 1; i <= pl.Steps; i++ {
		frac := float64(i) / float64(pl.Steps)
		center := geo.Point{
			Lat: bloom.Lat + dLat*frac,
			Lon: bloom.Lon + dLon*frac,
		}

		latOff := offsetDeg * math.Cos(perp)
		lonOff := offsetDeg * math.Sin(perp) / geo.LatCorrection(center.Lat)

		path = append(path,
			geo.Point{Lat: geo.ClampLat(center.Lat + latOff), Lon: geo.NormalizeLon(center.Lon + lonOff)},
			geo.Point{Lat: geo.ClampLat(center.Lat - latOff), Lon: geo.NormalizeLon(center.Lon - lonOff)},
		)
	}

	return path
}
