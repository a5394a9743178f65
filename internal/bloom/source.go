package bloom

import (
	"context"

	"github.com/brandonli5211/bloomguard/internal/geo"
)

// WindSource abstracts a wind data provider (e.g. Open-Meteo Marine,
// OpenWeatherMap).
type WindSource interface {
	Name() string
	Fetch(ctx context.Context, p geo.Point) (WindObservation, error)
}

// ImagerySource produces a raster artifact reference for a bounding box.
// Implementations must degrade to a fallback reference instead of failing.
type ImagerySource interface {
	Fetch(ctx context.Context, box geo.BoundingBox) (string, error)
}

// ReportGenerator turns the computed numbers into a human-readable
// situation report.
type ReportGenerator interface {
	Generate(ctx context.Context, riskScore float64, wind WindObservation) (string, error)
}

// Store is the contract the in-memory analysis store (and any future
// persistent store) must satisfy.
type Store interface {
	SaveAnalysis(a Analysis)
	GetLatest(p geo.Point) (Analysis, error)
	GetRecent(p geo.Point, limit int) ([]Analysis, error)
}
