package wind

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandonli5211/bloomguard/internal/geo"
)

func TestOpenWeatherFetchConvertsToKmh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.NotEmpty(t, r.URL.Query().Get("appid"))
		fmt.Fprint(w, `{"wind":{"speed":5,"deg":270}}`)
	}))
	defer srv.Close()

	p := NewOpenWeather(srv.Client(), "test-key")
	p.baseURL = srv.URL

	obs, err := p.Fetch(context.Background(), geo.Point{Lat: 41.85, Lon: -83.10})

	require.NoError(t, err)
	assert.InDelta(t, 18, obs.SpeedKmh, 1e-9, "5 m/s is 18 km/h")
	assert.InDelta(t, 270, obs.DirectionDeg, 1e-6)
}

func TestOpenWeatherFetchRequiresKey(t *testing.T) {
	p := NewOpenWeather(http.DefaultClient, "")

	_, err := p.Fetch(context.Background(), geo.Point{})
	assert.Error(t, err)
}
