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

func TestWeatherAPIFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "41.850000,-83.100000", r.URL.Query().Get("q"))
		fmt.Fprint(w, `{"current":{"wind_kph":14.4,"wind_degree":225}}`)
	}))
	defer srv.Close()

	p := NewWeatherAPI(srv.Client(), "test-key")
	p.baseURL = srv.URL

	obs, err := p.Fetch(context.Background(), geo.Point{Lat: 41.85, Lon: -83.10})

	require.NoError(t, err)
	assert.InDelta(t, 14.4, obs.SpeedKmh, 1e-9)
	assert.InDelta(t, 225, obs.DirectionDeg, 1e-6)
}

func TestWeatherAPIFetchRequiresKey(t *testing.T) {
	p := NewWeatherAPI(http.DefaultClient, "")

	_, err := p.Fetch(context.Background(), geo.Point{})
	assert.Error(t, err)
}
