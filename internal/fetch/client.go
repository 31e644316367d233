// Package fetch is the raw HTTP collaborator for discovery and resolution.
// Timeouts are fixed and per-fetch: a slow source fails its own fetch, never
// the run.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"govwatcher/internal/errkind"
)

const (
	defaultTimeout = 30 * time.Second
	// Some ministry sites refuse non-browser user agents.
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	maxBodyBytes     = 32 << 20
)

// Fetcher is the injected fetch function the engine and resolvers depend on.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Client implements Fetcher over net/http with browser-like headers.
type Client struct {
	httpClient *http.Client
}

var _ Fetcher = (*Client)(nil)

// NewClient builds a client; a non-positive timeout selects the default.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch issues a GET and returns the body bytes. Failures are classified
// transient: the caller logs, skips this source or hop, and retries next run.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errkind.Wrap(errkind.Transient, fmt.Errorf("build request %s: %w", url, err))
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errkind.Wrap(errkind.Transient, fmt.Errorf("fetch %s: %w", url, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errkind.New(errkind.Transient, "fetch %s: unexpected status %s", url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errkind.Wrap(errkind.Transient, fmt.Errorf("read body %s: %w", url, err))
	}
	return body, nil
}

// Func adapts a plain function to the Fetcher interface; used by tests and
// by callers that inject canned documents.
type Func func(ctx context.Context, url string) ([]byte, error)

// Fetch calls the wrapped function.
func (f Func) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}
