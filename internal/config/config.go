package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/brandonli5211/bloomguard/internal/geo"
)

// AppConfig holds all service settings, loaded once at startup and
// immutable thereafter.
type AppConfig struct {
	Port        string
	HTTPTimeout time.Duration
	AssetsDir   string

	LogLevel  string
	LogFormat string

	// Collaborator credentials. All optional: missing keys disable the
	// collaborator and the pipeline degrades instead of failing.
	OpenWeatherAPIKey    string
	WeatherAPIKey        string
	SentinelClientID     string
	SentinelClientSecret string
	GeminiAPIKey         string
	GeminiModel          string
	GeocoderAPIKey       string

	// Model constants. The drift and sweep numbers are deployment
	// tunables, not fixed truths.
	DriftTransfer float64
	DriftHours    float64
	PathSteps     int
	PathWidthKm   float64
	BBoxSizeDeg   float64

	// HomeBase is the drone deployment base, the first waypoint of every
	// flight path.
	HomeBase geo.Point

	// WindTimeout bounds the outbound wind lookup per analysis.
	WindTimeout time.Duration

	// Watch points re-analyzed on a schedule.
	WatchPoints   []geo.Point
	WatchInterval time.Duration

	// In-memory store retention.
	StoreMaxHistory int
	StoreMaxAge     time.Duration
}

// Load reads configuration from environment with sensible defaults.
// Defaults target the western Lake Erie basin, the system's home turf.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		Port:      getenvDefault("PORT", "8080"),
		AssetsDir: getenvDefault("ASSETS_DIR", "./assets"),
		LogLevel:  getenvDefault("LOG_LEVEL", "info"),
		LogFormat: getenvDefault("LOG_FORMAT", "json"),

		OpenWeatherAPIKey:    os.Getenv("OPENWEATHER_API_KEY"),
		WeatherAPIKey:        os.Getenv("WEATHERAPI_API_KEY"),
		SentinelClientID:     os.Getenv("SENTINEL_CLIENT_ID"),
		SentinelClientSecret: os.Getenv("SENTINEL_CLIENT_SECRET"),
		GeminiAPIKey:         os.Getenv("GEMINI_API_KEY"),
		GeminiModel:          getenvDefault("GEMINI_MODEL", "gemini-pro"),
		GeocoderAPIKey:       os.Getenv("GEOCODER_API_KEY"),

		DriftTransfer: getenvFloat("DRIFT_TRANSFER", 0.03),
		DriftHours:    getenvFloat("DRIFT_HOURS", 24),
		PathSteps:     getenvInt("PATH_STEPS", 8),
		PathWidthKm:   getenvFloat("PATH_WIDTH_KM", 1.5),
		BBoxSizeDeg:   getenvFloat("BBOX_SIZE_DEGREES", 0.1),

		HomeBase: geo.Point{
			Lat: getenvFloat("HOME_BASE_LAT", 41.90),
			Lon: getenvFloat("HOME_BASE_LON", -83.35),
		},

		StoreMaxHistory: getenvInt("STORE_MAX_HISTORY", 96),
	}

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.WindTimeout, err = getenvDuration("WIND_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.WatchInterval, err = getenvDuration("WATCH_INTERVAL", "30m"); err != nil {
		return nil, err
	}
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "24h"); err != nil {
		return nil, err
	}

	if cfg.WatchPoints, err = parseWatchPoints(os.Getenv("WATCH_POINTS")); err != nil {
		return nil, err
	}

	if cfg.PathSteps <= 0 {
		return nil, fmt.Errorf("PATH_STEPS must be positive, got %d", cfg.PathSteps)
	}
	if cfg.DriftHours <= 0 {
		return nil, fmt.Errorf("DRIFT_HOURS must be positive, got %f", cfg.DriftHours)
	}

	return cfg, nil
}

// parseWatchPoints parses "lat,lon;lat,lon" into coordinates.
func parseWatchPoints(raw string) ([]geo.Point, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var points []geo.Point
	for _, pair := range strings.Split(raw, ";") {
		parts := strings.Split(strings.TrimSpace(pair), ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid WATCH_POINTS entry %q; want lat,lon", pair)
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid WATCH_POINTS latitude %q: %w", parts[0], err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid WATCH_POINTS longitude %q: %w", parts[1], err)
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return nil, fmt.Errorf("WATCH_POINTS entry %q out of range", pair)
		}

		points = append(points, geo.Point{Lat: lat, Lon: lon})
	}

	return points, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	v := getenvDefault(key, def)
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
