// Package imagery fetches NDCI-highlighted satellite rasters from the
// Sentinel Hub Process API. The service never depends on it succeeding:
// missing credentials or any upstream failure degrade to the bundled demo
// heatmap so the dashboard always has something to draw.
package imagery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/brandonli5211/bloomguard/internal/geo"
	"github.com/brandonli5211/bloomguard/internal/observability"
)

const (
	defaultBaseURL  = "https://services.sentinel-hub.com/api/v1/process"
	defaultTokenURL = "https://services.sentinel-hub.com/oauth/token"

	// Refresh the OAuth token a little before it actually expires.
	tokenRefreshBuffer = 2 * time.Minute

	heatmapFile  = "sentinel_heatmap.png"
	fallbackFile = "demo_heatmap.png"

	imageSize = 512
)

// ndciEvalscript paints pixels with NDCI > 0.2 (likely algae) solid red
// and leaves everything else transparent.
// NDCI = (B05 - B04) / (B05 + B04); B04 = red, B05 = red edge 1.
const ndciEvalscript = `//VERSION=3
function setup() {
    return {
        input: [{ bands: ["B04", "B05", "B08"] }],
        output: { bands: 4, sampleType: "AUTO" }
    };
}

function evaluatePixel(samples) {
    const red = samples.B04;
    const redEdge = samples.B05;
    const denominator = redEdge + red;
    const ndci = denominator != 0 ? (redEdge - red) / denominator : 0;
    if (ndci > 0.2) {
        return [1, 0, 0, 1];
    }
    return [0, 0, 0, 0];
}`

// SentinelClient implements bloom.ImagerySource against Sentinel Hub.
type SentinelClient struct {
	clientID     string
	clientSecret string
	httpClient   *http.Client
	baseURL      string
	tokenURL     string
	assetsDir    string
	logger       *slog.Logger
	metrics      *observability.Metrics

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewSentinelClient creates an imagery client writing rasters under
// assetsDir. Empty credentials are allowed; the client then always serves
// the fallback image.
func NewSentinelClient(clientID, clientSecret, assetsDir string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *SentinelClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &SentinelClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: timeout},
		baseURL:      defaultBaseURL,
		tokenURL:     defaultTokenURL,
		assetsDir:    assetsDir,
		logger:       logger,
		metrics:      metrics,
	}
}

// Fetch renders the NDCI raster for a bounding box and returns the URL
// path the HTTP layer serves it under. Never returns an error in
// production use: every failure path degrades to the demo heatmap.
func (c *SentinelClient) Fetch(ctx context.Context, box geo.BoundingBox) (string, error) {
	if c.clientID == "" || c.clientSecret == "" {
		c.logger.Debug("sentinel hub credentials not configured, serving fallback image")
		return c.fallback(), nil
	}

	png, err := c.render(ctx, box)
	if err != nil {
		c.logger.Warn("sentinel hub render failed, serving fallback image", "error", err)
		return c.fallback(), nil
	}

	path := filepath.Join(c.assetsDir, heatmapFile)
	if err := os.WriteFile(path, png, 0o644); err != nil {
		c.logger.Warn("writing heatmap failed, serving fallback image", "error", err)
		return c.fallback(), nil
	}

	return "/assets/" + heatmapFile, nil
}

func (c *SentinelClient) fallback() string {
	if c.metrics != nil {
		c.metrics.ImageryFallbacks.Inc()
	}
	return "/assets/" + fallbackFile
}

func (c *SentinelClient) render(ctx context.Context, box geo.BoundingBox) ([]byte, error) {
	token, err := c.getToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("sentinel hub auth: %w", err)
	}

	now := time.Now().UTC()
	body := processRequest{
		Input: processInput{
			Bounds: processBounds{
				BBox: [4]float64{box.MinLon, box.MinLat, box.MaxLon, box.MaxLat},
			},
			Data: []processData{{
				Type: "sentinel-2-l2a",
				DataFilter: dataFilter{
					TimeRange: timeRange{
						From: now.AddDate(-1, 0, 0).Format(time.RFC3339),
						To:   now.Format(time.RFC3339),
					},
				},
			}},
		},
		Output: processOutput{
			Width:  imageSize,
			Height: imageSize,
			Responses: []processResponse{{
				Identifier: "default",
				Format:     responseFormat{Type: "image/png"},
			}},
		},
		Evalscript: ndciEvalscript,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal process request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create process request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "image/png")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("process request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("sentinel hub API error: status %d: %s", resp.StatusCode, detail)
	}

	return io.ReadAll(resp.Body)
}

// getToken returns a cached OAuth2 client-credentials token, fetching a
// fresh one when the cached token is within the refresh buffer of expiry.
func (c *SentinelClient) getToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry.Add(-tokenRefreshBuffer)) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	c.token = payload.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	return c.token, nil
}

// Sentinel Hub Process API request types.

type processRequest struct {
	Input      processInput  `json:"input"`
	Output     processOutput `json:"output"`
	Evalscript string        `json:"evalscript"`
}

type processInput struct {
	Bounds processBounds `json:"bounds"`
	Data   []processData `json:"data"`
}

type processBounds struct {
	BBox [4]float64 `json:"bbox"` // [minLon, minLat, maxLon, maxLat]
}

type processData struct {
	Type       string     `json:"type"`
	DataFilter dataFilter `json:"dataFilter"`
}

type dataFilter struct {
	TimeRange timeRange `json:"timeRange"`
}

type timeRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type processOutput struct {
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Responses []processResponse `json:"responses"`
}

type processResponse struct {
	Identifier string         `json:"identifier"`
	Format     responseFormat `json:"format"`
}

type responseFormat struct {
	Type string `json:"type"`
}
