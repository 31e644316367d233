package ledger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"govwatcher/internal/domain"
)

func TestMarkSeenIsMonotonic(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "watched_urls.json")
	l := Open(path, nil)

	const id = "https://example.go.jp/news/2026/08/item"

	if !l.IsNew(domain.KindFeed, "https://example.go.jp/rss.xml", id) {
		t.Fatal("fresh identifier must be new")
	}
	if !l.MarkSeen(domain.KindFeed, "https://example.go.jp/rss.xml", id) {
		t.Fatal("first MarkSeen must report an addition")
	}
	if l.MarkSeen(domain.KindFeed, "https://example.go.jp/rss.xml", id) {
		t.Fatal("second MarkSeen must be a no-op")
	}
	if l.IsNew(domain.KindFeed, "https://example.go.jp/rss.xml", id) {
		t.Fatal("identifier must not be new after MarkSeen")
	}

	// Same identifier under a different source partition stays new.
	if !l.IsNew(domain.KindPage, "https://example.go.jp/rss.xml", id) {
		t.Fatal("partitions must not leak across kinds")
	}
}

func TestMonotonicityAcrossReload(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "watched_urls.json")

	first := Open(path, nil)
	first.MarkSeen(domain.KindVideo, "https://example.go.jp/live", "https://cdn.example.go.jp/v/1.mp4")

	reloaded := Open(path, nil)
	if reloaded.IsNew(domain.KindVideo, "https://example.go.jp/live", "https://cdn.example.go.jp/v/1.mp4") {
		t.Fatal("identifier must survive reload from persisted state")
	}
	if !reloaded.IsNew(domain.KindVideo, "https://example.go.jp/live", "https://cdn.example.go.jp/v/2.mp4") {
		t.Fatal("unseen identifier must stay new after reload")
	}
}

func TestLegacyDocumentRemainsReadable(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "watched_urls.json")
	legacy := `{
  "rss": {
    "https://example.go.jp/rss.xml": ["https://example.go.jp/a"]
  },
  "html": {},
  "video": {}
}`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatalf("write legacy file: %v", err)
	}

	l := Open(path, nil)
	if l.IsNew(domain.KindFeed, "https://example.go.jp/rss.xml", "https://example.go.jp/a") {
		t.Fatal("legacy rss partition must be honored")
	}
}

func TestCorruptFileFailsOpen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "watched_urls.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	l := Open(path, nil)
	if !l.IsNew(domain.KindFeed, "https://example.go.jp/rss.xml", "x") {
		t.Fatal("corrupt ledger must start empty, not crash")
	}
}

func TestSweepOlderThan(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "watched_urls.json")
	l := Open(path, nil)
	l.now = func() time.Time {
		return time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	}

	src := "https://example.go.jp/rss.xml"
	l.MarkSeen(domain.KindFeed, src, "https://example.go.jp/2023/old-item")
	l.MarkSeen(domain.KindFeed, src, "https://example.go.jp/2026/fresh-item")
	l.MarkSeen(domain.KindFeed, src, "https://example.go.jp/undated-item")

	removed := l.SweepOlderThan(365)
	if removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if !l.IsNew(domain.KindFeed, src, "https://example.go.jp/2023/old-item") {
		t.Fatal("dated old identifier must be swept")
	}
	if l.IsNew(domain.KindFeed, src, "https://example.go.jp/2026/fresh-item") {
		t.Fatal("current-year identifier must survive")
	}
	if l.IsNew(domain.KindFeed, src, "https://example.go.jp/undated-item") {
		t.Fatal("identifier without a detectable year must never be removed")
	}
}

func TestSweepDisabled(t *testing.T) {
	t.Parallel()

	l := Open(filepath.Join(t.TempDir(), "watched_urls.json"), nil)
	l.MarkSeen(domain.KindFeed, "s", "https://example.go.jp/2000/ancient")

	if removed := l.SweepOlderThan(0); removed != 0 {
		t.Fatalf("days<=0 must be a no-op, removed %d", removed)
	}
}
