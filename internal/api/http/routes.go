package httpapi

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/kelvins/geocoder"

	"github.com/brandonli5211/bloomguard/internal/bloom"
	"github.com/brandonli5211/bloomguard/internal/geo"
	"github.com/brandonli5211/bloomguard/internal/store"
)

var validate = validator.New()

// Default analyze target: the western Lake Erie basin, where the system
// was first deployed.
var defaultPoint = geo.Point{Lat: 41.85, Lon: -83.10}

// GeocodeFunc resolves a city/country pair to a coordinate. nil disables
// place-name requests.
type GeocodeFunc func(city, country string) (geo.Point, error)

// GoogleGeocode resolves places through the Google geocoding API. The
// geocoder package key must be set at startup.
func GoogleGeocode(city, country string) (geo.Point, error) {
	loc, err := geocoder.Geocoding(geocoder.Address{City: city, Country: country})
	if err != nil {
		return geo.Point{}, fmt.Errorf("geocode %s, %s: %w", city, country, err)
	}
	return geo.Point{Lat: loc.Latitude, Lon: loc.Longitude}, nil
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *bloom.Service, history bloom.Store, geocode GeocodeFunc) {
	v1 := app.Group("/api/v1")

	v1.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "online",
			"service": "bloomguard",
			"version": "1.0.0",
		})
	})

	v1.Post("/analyze", func(c *fiber.Ctx) error {
		var req analyzeRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		point, err := req.resolve(geocode)
		if err != nil {
			var ge geocodeError
			if errors.As(err, &ge) {
				return fiber.NewError(fiber.StatusBadGateway, ge.Error())
			}
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		// Analyze is total for in-range coordinates; collaborator
		// failures show up as a degraded result, not an error.
		return c.JSON(service.Analyze(c.Context(), point))
	})

	v1.Get("/analyses/recent", func(c *fiber.Ctx) error {
		var q recentQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		analyses, err := history.GetRecent(geo.Point{Lat: q.Lat, Lon: q.Lon}, q.Limit)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no analyses for requested coordinate")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch analyses")
		}

		return c.JSON(fiber.Map{
			"point":    geo.Point{Lat: q.Lat, Lon: q.Lon},
			"analyses": analyses,
		})
	})
}

// analyzeRequest accepts either a coordinate or a place name. With
// neither, the Lake Erie default applies.
type analyzeRequest struct {
	Lat *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lon *float64 `json:"lon" validate:"omitempty,gte=-180,lte=180"`

	City    string `json:"city"`
	Country string `json:"country"`
}

type geocodeError struct{ err error }

func (e geocodeError) Error() string { return e.err.Error() }
func (e geocodeError) Unwrap() error { return e.err }

func (r analyzeRequest) resolve(geocode GeocodeFunc) (geo.Point, error) {
	switch {
	case r.Lat != nil && r.Lon != nil:
		return geo.Point{Lat: *r.Lat, Lon: *r.Lon}, nil
	case r.Lat != nil || r.Lon != nil:
		return geo.Point{}, errors.New("lat and lon must be provided together")
	case r.City != "":
		if geocode == nil {
			return geo.Point{}, errors.New("place-name lookup is not configured; provide lat and lon")
		}
		p, err := geocode(r.City, r.Country)
		if err != nil {
			return geo.Point{}, geocodeError{err: err}
		}
		return p, nil
	default:
		return defaultPoint, nil
	}
}

// recentQuery holds query parameters for the recent-analyses endpoint.
type recentQuery struct {
	Lat   float64 `validate:"gte=-90,lte=90"`
	Lon   float64 `validate:"gte=-180,lte=180"`
	Limit int     `validate:"gte=0,lte=500"`
}

func (q *recentQuery) bind(c *fiber.Ctx) error {
	if c.Query("lat") == "" || c.Query("lon") == "" {
		return errors.New("lat and lon query parameters are required")
	}

	q.Lat = c.QueryFloat("lat")
	q.Lon = c.QueryFloat("lon")
	q.Limit = c.QueryInt("limit", 20)

	return validate.Struct(q)
}
