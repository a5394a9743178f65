// Package geo holds the small spherical-geometry helpers shared by the
// drift predictor and the flight-path planner. Everything works in plain
// WGS84 degrees; distances use the flat 111 km-per-degree approximation,
// which is plenty for the few-kilometre scales involved.
package geo

import "math"

// KmPerDegree is the approximate length of one degree of latitude.
const KmPerDegree = 111.0

// minLatCorrection floors the cos(lat) longitude correction so that
// points near the poles do not blow up the division.
const minLatCorrection = 0.01

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// BoundingBox is an axis-aligned lat/lon box.
type BoundingBox struct {
	MinLon float64 `json:"minLon"`
	MinLat float64 `json:"minLat"`
	MaxLon float64 `json:"maxLon"`
	MaxLat float64 `json:"maxLat"`
}

// BoxAround returns a bounding box of roughly sizeDeg degrees on each side
// centred on p. The latitude half-size is stretched by 1/cos(lat) so the
// box stays roughly square on the ground as meridians converge.
func BoxAround(p Point, sizeDeg float64) BoundingBox {
	half := sizeDeg / 2

	correction := math.Max(math.Abs(math.Cos(Radians(p.Lat))), minLatCorrection)
	adjustedHalf := half / correction

	return BoundingBox{
		MinLon: p.Lon - half,
		MaxLon: p.Lon + half,
		MinLat: ClampLat(p.Lat - adjustedHalf),
		MaxLat: ClampLat(p.Lat + adjustedHalf),
	}
}

// ClampLat clamps a latitude into [-90, 90].
func ClampLat(lat float64) float64 {
	return math.Max(-90, math.Min(90, lat))
}

// NormalizeLon wraps a longitude back into [-180, 180]. A single wrap is
// enough: displacements produced by the drift model are bounded well below
// a full revolution.
func NormalizeLon(lon float64) float64 {
	if lon > 180 {
		return lon - 360
	}
	if lon < -180 {
		return lon + 360
	}
	return lon
}

// LatCorrection returns the cos(lat) factor used to convert east-west
// degree displacements at the given latitude, floored away from zero.
func LatCorrection(lat float64) float64 {
	return math.Max(math.Cos(Radians(lat)), minLatCorrection)
}

// CircularMean computes the mean of bearings in degrees, respecting the
// 0/360 wraparound: the mean of 350 and 10 is 0, not 180. The result is
// normalized into [0, 360). An empty input yields 0.
func CircularMean(degrees []float64) float64 {
	if len(degrees) == 0 {
		return 0
	}

	var sinSum, cosSum float64
	for _, d := range degrees {
		r := Radians(d)
		sinSum += math.Sin(r)
		cosSum += math.Cos(r)
	}

	n := float64(len(degrees))
	mean := Degrees(math.Atan2(sinSum/n, cosSum/n))
	if mean < 0 {
		mean += 360
	}
	return mean
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
