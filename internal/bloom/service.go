package bloom

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brandonli5211/bloomguard/internal/geo"
	"github.com/brandonli5211/bloomguard/internal/observability"
)

const reportUnavailable = "SYSTEM OFFLINE: Unable to generate tactical report. Proceed with standard containment protocols."

// Params bundles the tunable model constants for a Service.
type Params struct {
	Risk    RiskModel
	Drift   DriftModel
	Planner PathPlanner

	// BBoxSizeDeg is the imagery bounding-box edge length in degrees.
	BBoxSizeDeg float64

	// WindTimeout bounds the single outbound wind lookup per analysis.
	WindTimeout time.Duration
}

// Service runs the analysis pipeline: one wind lookup, then the purely
// local risk/drift/path math, merged with imagery and report collaborators.
type Service struct {
	params   Params
	sources  []WindSource
	imagery  ImagerySource
	reporter ReportGenerator
	store    Store
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewService creates a Service. imagery, reporter, and store may be nil,
// in which case the corresponding part of the result stays empty.
func NewService(
	params Params,
	sources []WindSource,
	imagery ImagerySource,
	reporter ReportGenerator,
	store Store,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Service {
	if params.WindTimeout <= 0 {
		params.WindTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		params:   params,
		sources:  sources,
		imagery:  imagery,
		reporter: reporter,
		store:    store,
		metrics:  metrics,
		logger:   logger,
	}
}

// Analyze runs the full pipeline for a coordinate. It is total for any
// in-range point: collaborator failures degrade the result, they never
// fail the request. Out-of-range coordinates are the caller's concern.
func (s *Service) Analyze(ctx context.Context, p geo.Point) Analysis {
	start := time.Now()

	wind, contribs, degraded := s.fetchWind(ctx, p)

	risk := s.params.Risk.Score(wind.SpeedKmh)
	drift := s.params.Drift.Predict(p, wind)
	path := s.params.Planner.Plan(p, drift)
	box := geo.BoxAround(p, s.params.BBoxSizeDeg)

	a := Analysis{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		Point:      p,
		Wind:       wind,
		RiskScore:  risk,
		Drift:      drift,
		FlightPath: path,
		Degraded:   degraded,
		Sources:    contribs,
	}

	if s.imagery != nil {
		url, err := s.imagery.Fetch(ctx, box)
		if err != nil {
			s.logger.Warn("imagery fetch failed", "error", err)
		}
		a.ImageURL = url
	}

	if s.reporter != nil {
		text, err := s.reporter.Generate(ctx, risk, wind)
		if err != nil {
			s.logger.Warn("report generation failed", "error", err)
			text = reportUnavailable
			s.metrics.ReportFallbacks.Inc()
		}
		a.Report = text
	}

	if s.store != nil {
		s.store.SaveAnalysis(a)
	}

	s.metrics.AnalysesTotal.Inc()
	if degraded {
		s.metrics.DegradedAnalyses.Inc()
	}
	s.metrics.AnalysisDuration.Observe(time.Since(start).Seconds())

	s.logger.Info("analysis complete",
		"lat", p.Lat, "lon", p.Lon,
		"risk", risk,
		"wind_kmh", wind.SpeedKmh,
		"degraded", degraded,
	)

	return a
}

// fetchWind fans out to every configured wind source concurrently and
// reduces the survivors to one observation. When every source fails the
// calm observation is substituted and the result is flagged degraded;
// upstream unavailability must never fail the analysis.
func (s *Service) fetchWind(ctx context.Context, p geo.Point) (WindObservation, []SourceContribution, bool) {
	if len(s.sources) == 0 {
		return Calm(), nil, true
	}

	ctx, cancel := context.WithTimeout(ctx, s.params.WindTimeout)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		contribs []SourceContribution
	)

	for _, src := range s.sources {
		src := src
		wg.Add(1)
		go func() {
			defer wg.Done()

			obs, err := src.Fetch(ctx, p)
			if err != nil {
				s.logger.Warn("wind source failed", "source", src.Name(), "error", err)
				s.metrics.WindFetches.WithLabelValues(src.Name(), "error").Inc()
				return
			}
			s.metrics.WindFetches.WithLabelValues(src.Name(), "success").Inc()

			mu.Lock()
			contribs = append(contribs, SourceContribution{SourceName: src.Name(), Reading: obs})
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(contribs) == 0 {
		return Calm(), nil, true
	}

	readings := make([]WindObservation, 0, len(contribs))
	for _, c := range contribs {
		readings = append(readings, c.Reading)
	}
	return ReduceObservations(readings), contribs, false
}
