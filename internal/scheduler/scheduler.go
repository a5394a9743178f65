package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/brandonli5211/bloomguard/internal/bloom"
	"github.com/brandonli5211/bloomguard/internal/geo"
	"github.com/brandonli5211/bloomguard/internal/observability"
)

// Scheduler periodically re-analyzes the configured watch points so the
// stored history stays fresh between operator requests.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *bloom.Service
	points    []geo.Point
	interval  time.Duration
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// New creates a Scheduler over the given watch points.
func New(points []geo.Point, interval time.Duration, service *bloom.Service, metrics *observability.Metrics, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		points:    points,
		interval:  interval,
		metrics:   metrics,
		logger:    logger,
	}
}

// Start schedules the periodic sweep and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.points) == 0 {
		s.logger.Info("scheduler: no watch points configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 30
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		s.logger.Info("scheduler: running watch-point sweep", "points", len(s.points))

		var wg sync.WaitGroup
		for _, p := range s.points {
			p := p
			wg.Add(1)
			go func() {
				defer wg.Done()

				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				s.service.Analyze(ctx, p)
			}()
		}
		wg.Wait()

		s.metrics.WatchRuns.Inc()
		s.logger.Info("scheduler: completed watch-point sweep")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
