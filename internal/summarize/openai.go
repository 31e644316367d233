// Package summarize condenses transcripts through an OpenAI-compatible
// chat-completions endpoint.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"govwatcher/internal/config"
	"govwatcher/internal/errkind"
)

// Client implements the summarization collaborator backed by
// OpenAI-compatible APIs.
type Client struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	maxLength    int
	httpClient   *http.Client
}

// NewClient builds a client from configuration.
func NewClient(cfg config.OpenAIConfig) *Client {
	return &Client{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		maxLength:    cfg.SummaryMaxLength,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

// Available reports whether the stage can run at all.
func (c *Client) Available() bool {
	return c.apiKey != "" && c.endpoint != "" && c.model != ""
}

// Summarize posts the transcript and returns the model's condensed text.
func (c *Client) Summarize(ctx context.Context, transcript string) (string, error) {
	if !c.Available() {
		return "", errkind.New(errkind.Unavailable, "summarization not configured")
	}

	instruction := fmt.Sprintf(
		"Summarize the following transcript in at most %d characters. Keep concrete facts, names, dates, and decisions.\n\n%s",
		c.maxLength, transcript)

	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": safePrompt(c.systemPrompt)},
			{"role": "user", "content": instruction},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal summarize payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errkind.Wrap(errkind.Transient, fmt.Errorf("summarize request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", errkind.New(errkind.Transient, "summarize error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var decoded struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", errkind.Wrap(errkind.Parse, fmt.Errorf("decode summarize response: %w", err))
	}
	if len(decoded.Choices) == 0 {
		return "", errkind.New(errkind.Parse, "summarize response carries no choices")
	}

	return strings.TrimSpace(decoded.Choices[0].Message.Content), nil
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "You summarize official video transcripts accurately and concisely."
	}
	return prompt
}
