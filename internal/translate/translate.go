// Package translate calls the Groq chat-completions API to translate a
// synopsis when no source-provided translation exists. The whole package is
// credential-gated: without an API key every call is a silent, successful
// no-op so enrichment never blocks a sync.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/medialibre/mediatheque/internal/apierr"
	"github.com/medialibre/mediatheque/internal/config"
)

const (
	defaultBaseURL = "https://api.groq.com/openai/v1"
	defaultModel   = "llama-3.3-70b-versatile"
)

// Result reports the outcome of one translation attempt. Success false with
// a nil error means the service was skipped, not that it failed.
type Result struct {
	Success bool
	Text    string
}

// Client talks to the Groq chat-completions endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewClient builds a client from the configured credential. An empty key is
// allowed; such a client skips every call.
func NewClient() *Client {
	return &Client{
		apiKey:     config.GroqAPIKey,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClientWithBaseURL builds a client against a custom endpoint, for tests.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      defaultModel,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Translate renders text into targetLang. domainHint ("movie synopsis",
// "book synopsis", ...) steers register. Without a credential the result is
// an unsuccessful skip with no error.
func (c *Client) Translate(ctx context.Context, text, targetLang, domainHint string) (Result, error) {
	if c.apiKey == "" {
		slog.Debug("translation skipped, no credential configured")
		return Result{}, nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, nil
	}

	hint := domainHint
	if hint == "" {
		hint = "synopsis"
	}
	prompt := fmt.Sprintf(
		"Translate the following %s into %s. Reply with the translation only, no preamble.\n\n%s",
		hint, targetLang, text)

	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode translation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("translation request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody any
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return Result{}, apierr.NewStatusError("groq", resp.StatusCode, errBody)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Result{}, apierr.NewParseError("groq", err)
	}
	if len(parsed.Choices) == 0 {
		return Result{}, nil
	}

	translated := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if translated == "" {
		return Result{}, nil
	}
	return Result{Success: true, Text: translated}, nil
}
