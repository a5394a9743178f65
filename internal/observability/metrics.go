package observability

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus instruments for the analysis pipeline.
type Metrics struct {
	AnalysesTotal    prometheus.Counter
	DegradedAnalyses prometheus.Counter
	AnalysisDuration prometheus.Histogram

	// Outbound collaborator calls.
	WindFetches      *prometheus.CounterVec // labels: source, outcome={success,error}
	ImageryFallbacks prometheus.Counter
	ReportFallbacks  prometheus.Counter

	// Watch scheduler.
	WatchRuns prometheus.Counter
}

// NewMetrics creates the pipeline metrics and registers them with the
// default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.AnalysesTotal,
		m.DegradedAnalyses,
		m.AnalysisDuration,
		m.WindFetches,
		m.ImageryFallbacks,
		m.ReportFallbacks,
		m.WatchRuns,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics so parallel tests do
// not trip the "already registered" panic.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		AnalysesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bloomguard",
			Name:      "analyses_total",
			Help:      "Total bloom analyses performed.",
		}),
		DegradedAnalyses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bloomguard",
			Name:      "degraded_analyses_total",
			Help:      "Analyses that fell back to the calm wind observation.",
		}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bloomguard",
			Name:      "analysis_duration_seconds",
			Help:      "Wall time of a full analyze call including collaborators.",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		WindFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bloomguard",
			Name:      "wind_fetches_total",
			Help:      "Wind source fetches by source and outcome.",
		}, []string{"source", "outcome"}),
		ImageryFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bloomguard",
			Name:      "imagery_fallbacks_total",
			Help:      "Imagery requests served by the bundled demo heatmap.",
		}),
		ReportFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bloomguard",
			Name:      "report_fallbacks_total",
			Help:      "Situation reports served by the offline fallback text.",
		}),
		WatchRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bloomguard",
			Name:      "watch_runs_total",
			Help:      "Completed watch-point analysis sweeps.",
		}),
	}
}
