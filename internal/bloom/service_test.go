package bloom

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandonli5211/bloomguard/internal/geo"
	"github.com/brandonli5211/bloomguard/internal/observability"
)

// --- stub collaborators ---

type stubSource struct {
	name string
	obs  WindObservation
	err  error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(_ context.Context, _ geo.Point) (WindObservation, error) {
	return s.obs, s.err
}

type stubImagery struct {
	url string
	err error
}

func (s *stubImagery) Fetch(_ context.Context, _ geo.BoundingBox) (string, error) {
	return s.url, s.err
}

type stubReporter struct {
	text string
	err  error
}

func (s *stubReporter) Generate(_ context.Context, _ float64, _ WindObservation) (string, error) {
	return s.text, s.err
}

type recordingStore struct {
	saved []Analysis
}

func (r *recordingStore) SaveAnalysis(a Analysis)                  { r.saved = append(r.saved, a) }
func (r *recordingStore) GetLatest(geo.Point) (Analysis, error)    { return Analysis{}, nil }
func (r *recordingStore) GetRecent(geo.Point, int) ([]Analysis, error) { return nil, nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(sources []WindSource, imagery ImagerySource, reporter ReportGenerator, st Store) *Service {
	return NewService(
		Params{
			Risk:        DefaultRiskModel(),
			Drift:       DefaultDriftModel(),
			Planner:     DefaultPathPlanner(geo.Point{Lat: 41.90, Lon: -83.35}),
			BBoxSizeDeg: 0.1,
			WindTimeout: time.Second,
		},
		sources, imagery, reporter, st,
		observability.NewMetricsForTesting(), discardLogger(),
	)
}

// --- tests ---

func TestAnalyzeLakeErieScenario(t *testing.T) {
	src := &stubSource{name: "stub", obs: WindObservation{SpeedKmh: 10, DirectionDeg: 270}}
	st := &recordingStore{}
	svc := newTestService([]WindSource{src}, &stubImagery{url: "/assets/demo_heatmap.png"}, &stubReporter{text: "all clear"}, st)

	p := geo.Point{Lat: 41.85, Lon: -83.10}
	a := svc.Analyze(context.Background(), p)

	assert.InDelta(t, 0.70, a.RiskScore, 1e-9)
	assert.False(t, a.Degraded)

	// Westerly wind pushes the bloom east.
	assert.Greater(t, a.Drift.Lon, p.Lon)
	assert.InDelta(t, p.Lat, a.Drift.Lat, 1e-9)

	require.Len(t, a.FlightPath, 2+2*8)
	assert.Equal(t, geo.Point{Lat: 41.90, Lon: -83.35}, a.FlightPath[0])
	assert.Equal(t, p, a.FlightPath[1])

	assert.Equal(t, "/assets/demo_heatmap.png", a.ImageURL)
	assert.Equal(t, "all clear", a.Report)
	assert.NotEmpty(t, a.ID)

	require.Len(t, st.saved, 1)
	assert.Equal(t, a.ID, st.saved[0].ID)
}

func TestAnalyzeDegradesToCalmWhenAllSourcesFail(t *testing.T) {
	src := &stubSource{name: "down", err: errors.New("connection refused")}
	svc := newTestService([]WindSource{src}, nil, nil, nil)

	p := geo.Point{Lat: 41.85, Lon: -83.10}
	a := svc.Analyze(context.Background(), p)

	assert.True(t, a.Degraded)
	assert.Equal(t, Calm(), a.Wind)
	assert.InDelta(t, 0.90, a.RiskScore, 1e-9, "calm fallback hits the risk ceiling")
	assert.Equal(t, p, a.Drift, "no wind means no drift")
	assert.Len(t, a.FlightPath, 2+2*8, "path is still planned around the degenerate drift")
}

func TestAnalyzeReducesAcrossSources(t *testing.T) {
	sources := []WindSource{
		&stubSource{name: "a", obs: WindObservation{SpeedKmh: 8, DirectionDeg: 350}},
		&stubSource{name: "b", obs: WindObservation{SpeedKmh: 12, DirectionDeg: 10}},
	}
	svc := newTestService(sources, nil, nil, nil)

	a := svc.Analyze(context.Background(), geo.Point{Lat: 41.85, Lon: -83.10})

	assert.False(t, a.Degraded)
	assert.InDelta(t, 10, a.Wind.SpeedKmh, 1e-9)

	diff := a.Wind.DirectionDeg
	if diff > 180 {
		diff = 360 - diff
	}
	assert.InDelta(t, 0, diff, 1e-6, "bearings straddling north reduce to 0")
	assert.Len(t, a.Sources, 2)
}

func TestAnalyzePartialSourceFailureIsNotDegraded(t *testing.T) {
	sources := []WindSource{
		&stubSource{name: "down", err: errors.New("timeout")},
		&stubSource{name: "up", obs: WindObservation{SpeedKmh: 20, DirectionDeg: 90}},
	}
	svc := newTestService(sources, nil, nil, nil)

	a := svc.Analyze(context.Background(), geo.Point{Lat: 41.85, Lon: -83.10})

	assert.False(t, a.Degraded)
	assert.InDelta(t, 20, a.Wind.SpeedKmh, 1e-9)
	require.Len(t, a.Sources, 1)
	assert.Equal(t, "up", a.Sources[0].SourceName)
}

func TestAnalyzeReporterFailureFallsBackToOfflineText(t *testing.T) {
	src := &stubSource{name: "stub", obs: WindObservation{SpeedKmh: 5, DirectionDeg: 180}}
	svc := newTestService([]WindSource{src}, nil, &stubReporter{err: errors.New("quota exhausted")}, nil)

	a := svc.Analyze(context.Background(), geo.Point{Lat: 41.85, Lon: -83.10})

	assert.Equal(t, reportUnavailable, a.Report)
}

func TestAnalyzeNoSourcesConfigured(t *testing.T) {
	svc := newTestService(nil, nil, nil, nil)

	a := svc.Analyze(context.Background(), geo.Point{Lat: 0, Lon: 0})

	assert.True(t, a.Degraded)
	assert.Equal(t, Calm(), a.Wind)
}
