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

// WeatherAPI fetches current wind from WeatherAPI.com. Key-gated.
type WeatherAPI struct {
	name    string
	apiKey  string
	baseURL string
	http    resilientClient
}

func NewWeatherAPI(client *http.Client, apiKey string) *WeatherAPI {
	return &WeatherAPI{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/current.json",
		http: resilientClient{
			client:  client,
			backoff: defaultBackoff(),
			circuit: newBreaker("weatherapi"),
		},
	}
}

func (p *WeatherAPI) Name() string {
	return p.name
}

func (p *WeatherAPI) Fetch(ctx context.Context, pt geo.Point) (bloom.WindObservation, error) {
	if p.apiKey == "" {
		return bloom.WindObservation{}, fmt.Errorf("weatherapi api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		// WeatherAPI uses "q" for location; "lat,lon" is accepted.
		values.Set("q", fmt.Sprintf("%f,%f", pt.Lat, pt.Lon))

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := p.http.do(ctx, buildRequest)
	if err != nil {
		return bloom.WindObservation{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Current struct {
			WindKph    float64 `json:"wind_kph"`
			WindDegree float64 `json:"wind_degree"`
		} `json:"current"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return bloom.WindObservation{}, fmt.Errorf("decode weatherapi response: %w", err)
	}

	return bloom.WindObservation{
		SpeedKmh:     payload.Current.WindKph,
		DirectionDeg: geo.CircularMean([]float64{payload.Current.WindDegree}),
	}, nil
}
