package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/kelvins/geocoder"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/brandonli5211/bloomguard/internal/api/http"
	"github.com/brandonli5211/bloomguard/internal/bloom"
	"github.com/brandonli5211/bloomguard/internal/config"
	"github.com/brandonli5211/bloomguard/internal/imagery"
	"github.com/brandonli5211/bloomguard/internal/logging"
	"github.com/brandonli5211/bloomguard/internal/observability"
	"github.com/brandonli5211/bloomguard/internal/report"
	"github.com/brandonli5211/bloomguard/internal/scheduler"
	"github.com/brandonli5211/bloomguard/internal/store"
	"github.com/brandonli5211/bloomguard/internal/wind"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := os.MkdirAll(cfg.AssetsDir, 0o755); err != nil {
		log.Fatalf("failed to create assets dir: %v", err)
	}

	metrics := observability.NewMetrics()

	// Shared HTTP client for outbound wind provider calls.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	// Wind sources. Open-Meteo Marine needs no key and is always on;
	// OpenWeatherMap joins as a second opinion when configured.
	sources := []bloom.WindSource{wind.NewOpenMeteoMarine(httpClient)}
	if cfg.OpenWeatherAPIKey != "" {
		sources = append(sources, wind.NewOpenWeather(httpClient, cfg.OpenWeatherAPIKey))
	}
	if cfg.WeatherAPIKey != "" {
		sources = append(sources, wind.NewWeatherAPI(httpClient, cfg.WeatherAPIKey))
	}

	imagerySource := imagery.NewSentinelClient(
		cfg.SentinelClientID, cfg.SentinelClientSecret,
		cfg.AssetsDir, cfg.HTTPTimeout, metrics, slog.Default(),
	)
	reporter := report.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.HTTPTimeout, slog.Default())

	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	service := bloom.NewService(
		bloom.Params{
			Risk:        bloom.DefaultRiskModel(),
			Drift:       bloom.DriftModel{Transfer: cfg.DriftTransfer, Hours: cfg.DriftHours},
			Planner:     bloom.PathPlanner{Home: cfg.HomeBase, Steps: cfg.PathSteps, WidthKm: cfg.PathWidthKm},
			BBoxSizeDeg: cfg.BBoxSizeDeg,
			WindTimeout: cfg.WindTimeout,
		},
		sources, imagerySource, reporter, memStore, metrics, slog.Default(),
	)

	// Scheduler that periodically re-analyzes the configured watch points.
	sched := scheduler.New(cfg.WatchPoints, cfg.WatchInterval, service, metrics, slog.Default())
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "bloomguard",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware. CORS stays open: the dashboard frontend is
	// served from a different origin.
	app.Use(cors.New())
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "bloomguard",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Rendered heatmaps and the demo fallback image.
	app.Static("/assets", cfg.AssetsDir)

	// Optional place-name resolution.
	var geocode httpapi.GeocodeFunc
	if cfg.GeocoderAPIKey != "" {
		geocoder.ApiKey = cfg.GeocoderAPIKey
		geocode = httpapi.GoogleGeocode
	}

	httpapi.RegisterRoutes(app, service, memStore, geocode)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("error during shutdown", "error", err)
	}
}
