package imagery

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandonli5211/bloomguard/internal/geo"
	"github.com/brandonli5211/bloomguard/internal/observability"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testBox = geo.BoundingBox{MinLon: -83.15, MinLat: 41.80, MaxLon: -83.05, MaxLat: 41.90}

func TestFetchWithoutCredentialsServesFallback(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	c := NewSentinelClient("", "", t.TempDir(), time.Second, metrics, discardLogger())

	url, err := c.Fetch(context.Background(), testBox)

	require.NoError(t, err)
	assert.Equal(t, "/assets/demo_heatmap.png", url)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ImageryFallbacks))
}

func TestFetchRendersAndWritesHeatmap(t *testing.T) {
	png := []byte("\x89PNG fake image bytes")

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.FormValue("grant_type"))
		fmt.Fprint(w, `{"access_token":"tok-1","expires_in":3600}`)
	}))
	defer tokenSrv.Close()

	processSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		w.Write(png)
	}))
	defer processSrv.Close()

	dir := t.TempDir()
	c := NewSentinelClient("id", "secret", dir, time.Second, observability.NewMetricsForTesting(), discardLogger())
	c.tokenURL = tokenSrv.URL
	c.baseURL = processSrv.URL

	url, err := c.Fetch(context.Background(), testBox)

	require.NoError(t, err)
	assert.Equal(t, "/assets/sentinel_heatmap.png", url)

	written, err := os.ReadFile(filepath.Join(dir, heatmapFile))
	require.NoError(t, err)
	assert.Equal(t, png, written)
}

func TestFetchUpstreamFailureServesFallback(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"access_token":"tok-1","expires_in":3600}`)
	}))
	defer tokenSrv.Close()

	processSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer processSrv.Close()

	metrics := observability.NewMetricsForTesting()
	c := NewSentinelClient("id", "secret", t.TempDir(), time.Second, metrics, discardLogger())
	c.tokenURL = tokenSrv.URL
	c.baseURL = processSrv.URL

	url, err := c.Fetch(context.Background(), testBox)

	require.NoError(t, err, "imagery failures must degrade, not propagate")
	assert.Equal(t, "/assets/demo_heatmap.png", url)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ImageryFallbacks))
}

func TestTokenIsCachedAcrossFetches(t *testing.T) {
	var tokenCalls int
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		tokenCalls++
		fmt.Fprint(w, `{"access_token":"tok-1","expires_in":3600}`)
	}))
	defer tokenSrv.Close()

	processSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("png"))
	}))
	defer processSrv.Close()

	c := NewSentinelClient("id", "secret", t.TempDir(), time.Second, observability.NewMetricsForTesting(), discardLogger())
	c.tokenURL = tokenSrv.URL
	c.baseURL = processSrv.URL

	ctx := context.Background()
	_, err := c.Fetch(ctx, testBox)
	require.NoError(t, err)
	_, err = c.Fetch(ctx, testBox)
	require.NoError(t, err)

	assert.Equal(t, 1, tokenCalls)
}
