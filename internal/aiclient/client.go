package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/caroarena/moderation-backend/internal/config"
)

// Verdict tokens returned by the analysis service.
const (
	VerdictCheat = "co"
	VerdictClean = "khong"
)

var supportedLanguages = map[string]bool{"vi": true, "en": true}

// MovePayload is one move as the analysis service expects it, in play order.
type MovePayload struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Player string `json:"player"`
}

// AnalysisRequest carries everything the service needs to judge one match.
type AnalysisRequest struct {
	MatchID    string        `json:"match_id"`
	Moves      []MovePayload `json:"moves"`
	Tier       string        `json:"tier"`
	UserID     string        `json:"user_id"`
	Difficulty string        `json:"difficulty,omitempty"`
	Language   string        `json:"language"`
}

// AnalysisResult is the service's verdict for a match. A nil result means
// the service could not be reached or returned something unusable.
type AnalysisResult struct {
	MatchID    string    `json:"match_id"`
	Verdict    string    `json:"verdict"`
	Comments   string    `json:"comments,omitempty"`
	Actions    []string  `json:"actions,omitempty"`
	Model      string    `json:"model,omitempty"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}

// IsCheating reports whether the verdict says the player cheated.
func (r *AnalysisResult) IsCheating() bool {
	v := strings.ToLower(strings.TrimSpace(r.Verdict))
	return v == VerdictCheat || v == "yes"
}

// Client calls the external match analysis service. It owns the full retry
// and timeout policy: callers never retry, and a nil result uniformly means
// "analysis unavailable".
type Client struct {
	baseURL  string
	apiKey   string
	language string
	retries  int
	client   *http.Client
}

func New(cfg *config.Config) *Client {
	timeout := cfg.AnalysisTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	language := cfg.AnalysisLanguage
	if !supportedLanguages[language] {
		language = "vi"
	}
	return &Client{
		baseURL:  strings.TrimSuffix(cfg.AnalysisAPIURL, "/"),
		apiKey:   cfg.AnalysisAPIKey,
		language: language,
		retries:  cfg.AnalysisRetries,
		client:   &http.Client{Timeout: timeout},
	}
}

// AnalyzeMatch asks the service for a verdict. On any failure after retries
// it returns nil rather than an error so the pipeline can fold "unavailable"
// into its decision table.
func (c *Client) AnalyzeMatch(ctx context.Context, req *AnalysisRequest) *AnalysisResult {
	if req.Language == "" {
		req.Language = c.language
	}

	body, err := json.Marshal(req)
	if err != nil {
		slog.Error("analysis request marshal failed", "match_id", req.MatchID, "error", err)
		return nil
	}

	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		result, retryable := c.doRequest(ctx, body)
		if result != nil {
			return result
		}
		if !retryable {
			return nil
		}
	}

	slog.Warn("analysis service unavailable after retries", "match_id", req.MatchID, "attempts", c.retries+1)
	return nil
}

// doRequest performs one attempt. The second return reports whether the
// failure was transient (network error or 5xx).
func (c *Client) doRequest(ctx context.Context, body []byte) (*AnalysisResult, bool) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, false
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		slog.Warn("analysis request failed", "error", err)
		return nil, true
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true
	}

	if resp.StatusCode >= 500 {
		slog.Warn("analysis service error", "status", resp.StatusCode)
		return nil, true
	}
	if resp.StatusCode != http.StatusOK {
		slog.Warn("analysis request rejected", "status", resp.StatusCode, "body", string(respBody))
		return nil, false
	}

	var result AnalysisResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		slog.Warn("analysis response malformed", "error", err)
		return nil, false
	}
	if result.Verdict == "" {
		slog.Warn("analysis response missing verdict")
		return nil, false
	}
	if result.AnalyzedAt.IsZero() {
		result.AnalyzedAt = time.Now().UTC()
	}
	return &result, false
}

// HealthCheck reports whether the analysis service answers its health probe.
func (c *Client) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
