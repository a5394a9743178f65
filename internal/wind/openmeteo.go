package wind

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/brandonli5211/bloomguard/internal/bloom"
	"github.com/brandonli5211/bloomguard/internal/geo"
)

// maxForecastSamples caps how many hourly samples feed the reduced
// observation: a day of forecast smooths gusts without dragging in stale
// long-range data.
const maxForecastSamples = 24

// OpenMeteoMarine fetches 10 m wind from the Open-Meteo marine forecast.
// The API needs no key, which makes it the default source.
type OpenMeteoMarine struct {
	name    string
	baseURL string
	http    resilientClient
}

func NewOpenMeteoMarine(client *http.Client) *OpenMeteoMarine {
	return &OpenMeteoMarine{
		name:    "openmeteo-marine",
		baseURL: "https://marine-api.open-meteo.com/v1/marine",
		http: resilientClient{
			client:  client,
			backoff: defaultBackoff(),
			circuit: newBreaker("openmeteo-marine"),
		},
	}
}

func (p *OpenMeteoMarine) Name() string {
	return p.name
}

// Fetch returns the reduced wind observation for a coordinate: mean speed
// and circular-mean direction over the next day of hourly samples.
func (p *OpenMeteoMarine) Fetch(ctx context.Context, pt geo.Point) (bloom.WindObservation, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", pt.Lat))
		values.Set("longitude", fmt.Sprintf("%f", pt.Lon))
		values.Set("hourly", "wind_speed_10m,wind_direction_10m")
		values.Set("forecast_days", "1")
		values.Set("timezone", "UTC")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := p.http.do(ctx, buildRequest)
	if err != nil {
		return bloom.WindObservation{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Hourly struct {
			// Values can be null over land cells, hence pointers.
			WindSpeed     []*float64 `json:"wind_speed_10m"`
			WindDirection []*float64 `json:"wind_direction_10m"`
		} `json:"hourly"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return bloom.WindObservation{}, fmt.Errorf("decode marine response: %w", err)
	}

	speeds := compactSamples(payload.Hourly.WindSpeed)
	directions := compactSamples(payload.Hourly.WindDirection)
	if len(speeds) == 0 || len(directions) == 0 {
		return bloom.WindObservation{}, fmt.Errorf("no marine wind data for (%f, %f)", pt.Lat, pt.Lon)
	}

	var speedSum float64
	for _, s := range speeds {
		speedSum += s
	}

	return bloom.WindObservation{
		SpeedKmh:     speedSum / float64(len(speeds)),
		DirectionDeg: geo.CircularMean(directions),
	}, nil
}

// compactSamples drops null samples and caps the window.
func compactSamples(in []*float64) []float64 {
	out := make([]float64, 0, len(in))
	for _, v := range in {
		if v == nil {
			continue
		}
		out = append(out, *v)
		if len(out) == maxForecastSamples {
			break
		}
	}
	return out
}
