package discovery

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"govwatcher/internal/domain"
	"govwatcher/internal/fetch"
	"govwatcher/internal/ledger"
)

const feedDoc = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>t</title>
<item><title>First</title><link>https://a.go.jp/p/1</link></item>
<item><title>Second</title><link>https://a.go.jp/p/2</link></item>
</channel></rss>`

const pageDoc = `<ul class="news"><li><a href="/n/1">Notice one</a></li></ul>`

const videoDoc = `<div class="player"><video src="/media/live.mp4"></video></div>`

func testSources() []domain.SourceDescriptor {
	return []domain.SourceDescriptor{
		{Name: "feed", Kind: domain.KindFeed, URL: "https://a.go.jp/rss.xml", Enabled: true},
		{Name: "page", Kind: domain.KindPage, URL: "https://b.go.jp/news/", Selector: "ul.news li", Enabled: true},
		{Name: "tv", Kind: domain.KindVideo, URL: "https://c.go.jp/live/", Selector: "div.player video", Enabled: true, CaptureInterval: 5, Summarize: true},
	}
}

func testFetcher() fetch.Func {
	docs := map[string]string{
		"https://a.go.jp/rss.xml": feedDoc,
		"https://b.go.jp/news/":   pageDoc,
		"https://c.go.jp/live/":   videoDoc,
	}
	return func(ctx context.Context, url string) ([]byte, error) {
		doc, ok := docs[url]
		if !ok {
			return nil, fmt.Errorf("unexpected url %s", url)
		}
		return []byte(doc), nil
	}
}

func TestDiscoverReportsOnce(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "watched_urls.json")
	eng := New(testFetcher(), ledger.Open(path, nil), nil)

	first := eng.Discover(context.Background(), testSources())
	if len(first.Items) != 3 {
		t.Fatalf("expected 3 items on first pass, got %d", len(first.Items))
	}
	if len(first.Videos) != 1 {
		t.Fatalf("expected 1 video on first pass, got %d", len(first.Videos))
	}
	if first.Videos[0].URL != "https://c.go.jp/media/live.mp4" {
		t.Fatalf("unexpected video locator: %s", first.Videos[0].URL)
	}

	second := eng.Discover(context.Background(), testSources())
	if len(second.Items) != 0 || len(second.Videos) != 0 {
		t.Fatalf("second pass must be empty, got %+v", second)
	}

	// A fresh engine on the same ledger file must agree.
	reopened := New(testFetcher(), ledger.Open(path, nil), nil)
	third := reopened.Discover(context.Background(), testSources())
	if len(third.Items) != 0 || len(third.Videos) != 0 {
		t.Fatalf("pass after reload must be empty, got %+v", third)
	}
}

func TestDiscoverSkipsDisabledSources(t *testing.T) {
	t.Parallel()

	fetcher := fetch.Func(func(ctx context.Context, url string) ([]byte, error) {
		t.Fatalf("disabled source must not be fetched: %s", url)
		return nil, nil
	})

	sources := []domain.SourceDescriptor{
		{Name: "off", Kind: domain.KindFeed, URL: "https://a.go.jp/rss.xml", Enabled: false},
	}

	eng := New(fetcher, ledger.Open(filepath.Join(t.TempDir(), "l.json"), nil), nil)
	res := eng.Discover(context.Background(), sources)
	if len(res.Items) != 0 || len(res.Videos) != 0 {
		t.Fatalf("expected empty result, got %+v", res)
	}
}

func TestDiscoverSourceFailureIsIsolated(t *testing.T) {
	t.Parallel()

	fetcher := fetch.Func(func(ctx context.Context, url string) ([]byte, error) {
		if url == "https://a.go.jp/rss.xml" {
			return nil, fmt.Errorf("connection refused")
		}
		return []byte(pageDoc), nil
	})

	sources := []domain.SourceDescriptor{
		{Name: "feed", Kind: domain.KindFeed, URL: "https://a.go.jp/rss.xml", Enabled: true},
		{Name: "page", Kind: domain.KindPage, URL: "https://b.go.jp/news/", Selector: "ul.news li", Enabled: true},
	}

	eng := New(fetcher, ledger.Open(filepath.Join(t.TempDir(), "l.json"), nil), nil)
	res := eng.Discover(context.Background(), sources)
	if len(res.Items) != 1 {
		t.Fatalf("healthy source must still report, got %+v", res)
	}
	if res.Items[0].Link != "https://b.go.jp/n/1" {
		t.Fatalf("unexpected link: %s", res.Items[0].Link)
	}
}

func TestDiscoverMalformedFeedIsIsolated(t *testing.T) {
	t.Parallel()

	fetcher := fetch.Func(func(ctx context.Context, url string) ([]byte, error) {
		return []byte("<html>not a feed</html>"), nil
	})

	sources := []domain.SourceDescriptor{
		{Name: "feed", Kind: domain.KindFeed, URL: "https://a.go.jp/rss.xml", Enabled: true},
	}

	eng := New(fetcher, ledger.Open(filepath.Join(t.TempDir(), "l.json"), nil), nil)
	res := eng.Discover(context.Background(), sources)
	if len(res.Items) != 0 {
		t.Fatalf("malformed feed must yield nothing, got %+v", res.Items)
	}
}
