package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"govwatcher/internal/config"
)

// SlackNotifier posts the digest to an incoming webhook as a header block
// plus one section of mrkdwn text.
type SlackNotifier struct {
	webhookURL string
	channel    string
	client     *http.Client
}

var _ Notifier = (*SlackNotifier)(nil)

// NewSlackNotifier wires the webhook transport.
func NewSlackNotifier(cfg config.SlackConfig) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: cfg.WebhookURL,
		channel:    cfg.Channel,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Publish posts the digest; Slack replies "ok" on success.
func (n *SlackNotifier) Publish(ctx context.Context, digest Digest) error {
	if n.webhookURL == "" {
		return fmt.Errorf("slack notifier misconfigured: webhook url missing")
	}

	payload := map[string]any{
		"channel": n.channel,
		"blocks": []map[string]any{
			{
				"type": "header",
				"text": map[string]any{"type": "plain_text", "text": digest.Subject()},
			},
			{
				"type": "section",
				"text": map[string]any{"type": "mrkdwn", "text": digest.Body()},
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack error: %s", resp.Status)
	}
	return nil
}
