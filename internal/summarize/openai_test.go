package summarize

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"govwatcher/internal/config"
	"govwatcher/internal/errkind"
)

func TestSummarize(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("unexpected authorization: %s", got)
		}

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body.Model != "gpt-4o-mini" {
			t.Errorf("unexpected model: %s", body.Model)
		}
		if len(body.Messages) != 2 || body.Messages[0].Role != "system" {
			t.Errorf("unexpected messages: %+v", body.Messages)
		}
		if !strings.Contains(body.Messages[1].Content, "the raw transcript") {
			t.Errorf("transcript missing from user message: %s", body.Messages[1].Content)
		}
		if !strings.Contains(body.Messages[1].Content, "at most 1000 characters") {
			t.Errorf("length instruction missing: %s", body.Messages[1].Content)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"  the condensed version  "}}]}`))
	}))
	defer srv.Close()

	client := NewClient(config.OpenAIConfig{
		Endpoint:         srv.URL,
		Model:            "gpt-4o-mini",
		APIKey:           "key",
		SummaryMaxLength: 1000,
	})

	summary, err := client.Summarize(context.Background(), "the raw transcript")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary != "the condensed version" {
		t.Fatalf("unexpected summary: %q", summary)
	}
}

func TestSummarizeWithoutKeyIsUnavailable(t *testing.T) {
	t.Parallel()

	client := NewClient(config.OpenAIConfig{Endpoint: "https://api.example.com", Model: "m"})
	_, err := client.Summarize(context.Background(), "text")
	if !errkind.Is(err, errkind.Unavailable) {
		t.Fatalf("expected unavailable kind, got %v", err)
	}
}

func TestSummarizeEmptyChoicesIsParseFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	client := NewClient(config.OpenAIConfig{Endpoint: srv.URL, Model: "m", APIKey: "key", SummaryMaxLength: 100})
	_, err := client.Summarize(context.Background(), "text")
	if !errkind.Is(err, errkind.Parse) {
		t.Fatalf("expected parse kind, got %v", err)
	}
}
