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

// OpenWeather fetches current wind from OpenWeatherMap. Key-gated; used as
// a second opinion next to the marine forecast when configured.
type OpenWeather struct {
	name    string
	apiKey  string
	baseURL string
	http    resilientClient
}

func NewOpenWeather(client *http.Client, apiKey string) *OpenWeather {
	return &OpenWeather{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		http: resilientClient{
			client:  client,
			backoff: defaultBackoff(),
			circuit: newBreaker("openweathermap"),
		},
	}
}

func (p *OpenWeather) Name() string {
	return p.name
}

func (p *OpenWeather) Fetch(ctx context.Context, pt geo.Point) (bloom.WindObservation, error) {
	if p.apiKey == "" {
		return bloom.WindObservation{}, fmt.Errorf("openweather api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")
		values.Set("lat", fmt.Sprintf("%f", pt.Lat))
		values.Set("lon", fmt.Sprintf("%f", pt.Lon))

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := p.http.do(ctx, buildRequest)
	if err != nil {
		return bloom.WindObservation{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Wind struct {
			Speed float64 `json:"speed"` // m/s with units=metric
			Deg   float64 `json:"deg"`
		} `json:"wind"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return bloom.WindObservation{}, fmt.Errorf("decode openweather response: %w", err)
	}

	return bloom.WindObservation{
		SpeedKmh:     payload.Wind.Speed * 3.6,
		DirectionDeg: geo.CircularMean([]float64{payload.Wind.Deg}),
	}, nil
}
