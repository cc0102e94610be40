// Package openai implements the Forecaster over the OpenAI chat completions
// API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"

	"marketlens/internal/interfaces"
	"marketlens/internal/store"
	"marketlens/internal/trace"
	"marketlens/internal/types"
)

const defaultEndpoint = "https://api.openai.com/v1/chat/completions"

type Client struct {
	cfg      *store.Config
	endpoint string
	http     *http.Client
}

var _ interfaces.Forecaster = (*Client)(nil)

// NewClient creates an OpenAI-backed forecaster. The endpoint can be
// overridden with OPENAI_API_ENDPOINT for proxies and tests.
func NewClient(cfg *store.Config) *Client {
	endpoint := defaultEndpoint
	if ep := os.Getenv("OPENAI_API_ENDPOINT"); ep != "" {
		endpoint = ep
	}
	return &Client{
		cfg:      cfg,
		endpoint: endpoint,
		http:     &http.Client{Timeout: cfg.HTTPTimeout()},
	}
}

// Ready reports whether the API key is configured. Checked by the
// orchestrator before it does any I/O at all.
func (c *Client) Ready() error {
	if os.Getenv("OPENAI_API_KEY") == "" {
		return &types.ConfigurationError{Missing: "OPENAI_API_KEY"}
	}
	return nil
}

// Complete issues exactly one chat completion request at the configured low
// temperature, requiring a single JSON object response. No retries here; a
// failed call is the caller's to handle.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return "", &types.ConfigurationError{Missing: "OPENAI_API_KEY"}
	}

	ctx, span := trace.StartSpan(ctx, "openai-api-call")
	defer span.End()

	body := map[string]any{
		"model":           c.cfg.LLM.Model,
		"messages":        []map[string]string{{"role": "user", "content": prompt}},
		"temperature":     c.cfg.LLM.Temperature,
		"max_tokens":      c.cfg.LLM.MaxTokens,
		"response_format": map[string]string{"type": "json_object"},
	}
	bb, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bb))
	if err != nil {
		return "", &types.ModelCallError{Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &types.ModelCallError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &types.ModelCallError{Status: resp.StatusCode, Body: string(raw)}
	}

	var r struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", &types.ModelCallError{Err: err}
	}
	if len(r.Choices) == 0 || strings.TrimSpace(r.Choices[0].Message.Content) == "" {
		return "", &types.ModelCallError{Status: resp.StatusCode, Body: "empty completion"}
	}

	return strings.TrimSpace(r.Choices[0].Message.Content), nil
}
