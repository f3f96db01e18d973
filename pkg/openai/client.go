// Package openai is a minimal chat/completions client. Only the JSON-mode
// surface the extraction pipeline needs is implemented.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client defines the OpenAI operations used by the pipeline.
type Client interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
}

// ChatRequest is a chat/completions call. JSONMode constrains the reply to a
// single JSON object.
type ChatRequest struct {
	Model       string
	Temperature float64
	JSONMode    bool
	Messages    []Message
}

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type httpClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates an OpenAI client. An empty baseURL uses the public API;
// requests are rate limited to stay under per-key quotas.
func NewClient(apiKey, baseURL string, rps float64) Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if rps <= 0 {
		rps = 2
	}
	return &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 60 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Chat runs a chat completion and returns the raw content of the first
// choice.
func (c *httpClient) Chat(ctx context.Context, req ChatRequest) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "openai: rate limit wait")
	}

	body := map[string]any{
		"model":       req.Model,
		"temperature": req.Temperature,
		"messages":    req.Messages,
	}
	if req.JSONMode {
		body["response_format"] = map[string]any{"type": "json_object"}
	}

	raw, err := c.post(ctx, c.baseURL+"/chat/completions", body)
	if err != nil {
		return "", err
	}

	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", eris.Wrap(err, "openai: decode response")
	}
	if len(resp.Choices) == 0 {
		return "", eris.New("openai: no choices in response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *httpClient) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, eris.Wrap(err, "openai: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, eris.Wrap(err, "openai: build request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "openai: http request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "openai: read response body")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, eris.Errorf("openai: status %d: %s", resp.StatusCode, string(data))
	}
	return data, nil
}
