// Package report generates the narrative situation report shown on the
// dashboard next to the raw numbers.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/brandonli5211/bloomguard/internal/bloom"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// GeminiClient implements bloom.ReportGenerator against the Gemini
// generateContent API.
type GeminiClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewGeminiClient creates a report client. An empty key is allowed; calls
// then fail and the service substitutes its offline fallback text.
func NewGeminiClient(apiKey, model string, timeout time.Duration, logger *slog.Logger) *GeminiClient {
	if model == "" {
		model = "gemini-pro"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GeminiClient{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Generate asks the model for a two-sentence tactical report.
func (c *GeminiClient) Generate(ctx context.Context, riskScore float64, wind bloom.WindObservation) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("gemini api key is not configured")
	}

	prompt := fmt.Sprintf(`You are an environmental crisis commander.
Current Status:
- Algae Toxicity Risk: %.2f (Scale 0-1.0)
- Wind Speed: %.1f km/h
- Wind Direction: %.0f degrees

Task: Write a 2-sentence SITUATION REPORT for the dashboard.
1. First sentence: Assess the immediate threat (drift direction, intensity).
2. Second sentence: Recommend a specific drone deployment strategy.

Tone: Urgent, technical, precise.
Output text only. No markdown formatting.`, riskScore, wind.SpeedKmh, wind.DirectionDeg)

	body := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	u := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("gemini API error: status %d: %s", resp.StatusCode, detail)
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}

	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini response contained no candidates")
	}

	return decoded.Candidates[0].Content.Parts[0].Text, nil
}

// Gemini API request/response types (only the fields used).

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}
