// Package transcribe posts extracted audio to an OpenAI-compatible
// speech-to-text endpoint.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"govwatcher/internal/config"
	"govwatcher/internal/domain"
	"govwatcher/internal/errkind"
)

// Result is the decoded verbose transcription response.
type Result struct {
	Text     string
	Language string
	Segments []domain.Segment
}

// Client talks to the transcription API.
type Client struct {
	cfg        config.TranscriptionConfig
	httpClient *http.Client
}

// NewClient builds a client. Long audio takes a while to process server
// side, so the timeout is generous.
func NewClient(cfg config.TranscriptionConfig) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Minute},
	}
}

// Available reports whether the stage can run at all: it needs a key and an
// endpoint. An unavailable client makes the pipeline stop before this stage
// rather than fail on it.
func (c *Client) Available() bool {
	return c.cfg.APIKey != "" && c.cfg.Endpoint != ""
}

// Transcribe uploads the audio file and returns the decoded result.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	if !c.Available() {
		return Result{}, errkind.New(errkind.Unavailable, "transcription not configured")
	}

	audio, err := os.Open(audioPath)
	if err != nil {
		return Result{}, errkind.Wrap(errkind.Persistence, fmt.Errorf("open audio: %w", err))
	}
	defer audio.Close()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return Result{}, fmt.Errorf("build form: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return Result{}, fmt.Errorf("copy audio into form: %w", err)
	}
	form.WriteField("model", c.cfg.Model)
	form.WriteField("response_format", "verbose_json")
	if c.cfg.Language != "" {
		form.WriteField("language", c.cfg.Language)
	}
	if err := form.Close(); err != nil {
		return Result{}, fmt.Errorf("finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, &body)
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, errkind.Wrap(errkind.Transient, fmt.Errorf("transcription request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return Result{}, errkind.New(errkind.Transient, "transcription status %s: %s", resp.Status, detail)
	}

	var decoded struct {
		Text     string `json:"text"`
		Language string `json:"language"`
		Segments []struct {
			Start float64 `json:"start"`
			End   float64 `json:"end"`
			Text  string  `json:"text"`
		} `json:"segments"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Result{}, errkind.Wrap(errkind.Parse, fmt.Errorf("decode transcription: %w", err))
	}

	res := Result{Text: decoded.Text, Language: decoded.Language}
	for _, seg := range decoded.Segments {
		res.Segments = append(res.Segments, domain.Segment{Start: seg.Start, End: seg.End, Text: seg.Text})
	}
	return res, nil
}
