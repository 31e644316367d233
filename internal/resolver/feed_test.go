package resolver

import (
	"testing"
	"time"

	"govwatcher/internal/domain"
	"govwatcher/internal/errkind"
)

var feedSource = domain.SourceDescriptor{
	Name: "cabinet-office",
	Kind: domain.KindFeed,
	URL:  "https://example.go.jp/rss.xml",
}

func TestFeedResolveRSS(t *testing.T) {
	t.Parallel()

	rss := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Press Releases</title>
    <item>
      <title>Budget outline published</title>
      <link>https://example.go.jp/press/2026/0815</link>
      <pubDate>Sat, 15 Aug 2026 09:00:00 GMT</pubDate>
    </item>
    <item>
      <title>No link, guid only</title>
      <guid>tag:example.go.jp,2026:press-2</guid>
    </item>
  </channel>
</rss>`

	r := NewFeedResolver()
	fixedNow := time.Date(2026, time.August, 20, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixedNow }

	items, err := r.Resolve([]byte(rss), feedSource)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	if items[0].Link != "https://example.go.jp/press/2026/0815" {
		t.Fatalf("identifier must be the link: %s", items[0].Link)
	}
	if !items[0].Published.Equal(time.Date(2026, time.August, 15, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected published time: %v", items[0].Published)
	}

	if items[1].Link != "tag:example.go.jp,2026:press-2" {
		t.Fatalf("identifier must fall back to the feed-native id: %s", items[1].Link)
	}
	if !items[1].Published.Equal(fixedNow) {
		t.Fatalf("missing date must fall back to discovery time, got %v", items[1].Published)
	}
	if items[0].SourceKind != domain.KindFeed {
		t.Fatalf("unexpected kind: %s", items[0].SourceKind)
	}
}

func TestFeedResolveAtom(t *testing.T) {
	t.Parallel()

	atom := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Ministry Feed</title>
  <entry>
    <title>Hearing schedule</title>
    <link href="https://example.go.jp/atom/1"/>
    <id>urn:1</id>
    <updated>2026-08-01T00:00:00Z</updated>
  </entry>
</feed>`

	items, err := NewFeedResolver().Resolve([]byte(atom), feedSource)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(items) != 1 || items[0].Link != "https://example.go.jp/atom/1" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestFeedResolveMalformedIsParseFailure(t *testing.T) {
	t.Parallel()

	_, err := NewFeedResolver().Resolve([]byte("<html>not a feed</html>"), feedSource)
	if err == nil {
		t.Fatal("expected parse failure")
	}
	if !errkind.Is(err, errkind.Parse) {
		t.Fatalf("expected parse kind, got %v", err)
	}
}

func TestFeedResolveEmptyFeedIsEmptySuccess(t *testing.T) {
	t.Parallel()

	empty := `<?xml version="1.0"?><rss version="2.0"><channel><title>empty</title></channel></rss>`
	items, err := NewFeedResolver().Resolve([]byte(empty), feedSource)
	if err != nil {
		t.Fatalf("a well-formed empty feed is not a failure: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected zero items, got %+v", items)
	}
}
