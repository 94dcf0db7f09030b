package util

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// AIClient talks to the external analysis service. Every call is a single
// attempt with a bounded timeout; callers surface failures once and never
// retry.
type AIClient struct {
	BaseURL string
	client  *http.Client
}

// SimplifiedPoint is one plain-language item returned by consent simplification.
type SimplifiedPoint struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// NewAIClient returns a client for the AI service at baseURL.
func NewAIClient(baseURL string) *AIClient {
	return &AIClient{
		BaseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (a *AIClient) postJSON(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("ai service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused, then report the status.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("ai service returned status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode ai response: %w", err)
		}
	}
	return nil
}

// SummarizeHandoffs sends today's handoff report texts verbatim and returns
// the generated summary.
func (a *AIClient) SummarizeHandoffs(ctx context.Context, reports []string) (string, error) {
	var result struct {
		Summary string `json:"summary"`
	}
	payload := map[string]interface{}{"reports": reports}
	if err := a.postJSON(ctx, "/smart-handoff-summary", payload, &result); err != nil {
		return "", err
	}
	return result.Summary, nil
}

// SimplifyConsent sends a consent form text and returns plain-language points.
func (a *AIClient) SimplifyConsent(ctx context.Context, consentText string) ([]SimplifiedPoint, error) {
	var result struct {
		SimplifiedPoints []SimplifiedPoint `json:"simplified_points"`
	}
	payload := map[string]interface{}{"consent_text": consentText}
	if err := a.postJSON(ctx, "/simplify-consent", payload, &result); err != nil {
		return nil, err
	}
	return result.SimplifiedPoints, nil
}

// AnalyzeReport sends an uploaded report file URL for analysis and returns
// the raw structured result.
func (a *AIClient) AnalyzeReport(ctx context.Context, fileURL string) (map[string]interface{}, error) {
	var result map[string]interface{}
	payload := map[string]interface{}{"fileUrl": fileURL}
	if err := a.postJSON(ctx, "/analyze", payload, &result); err != nil {
		return nil, err
	}
	return result, nil
}
