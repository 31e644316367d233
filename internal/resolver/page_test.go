package resolver

import (
	"strings"
	"testing"

	"govwatcher/internal/domain"
)

var pageSource = domain.SourceDescriptor{
	Name:     "mof-news",
	Kind:     domain.KindPage,
	URL:      "https://x.org/news/",
	Selector: "ul.news li",
}

func TestPageResolveAnchors(t *testing.T) {
	t.Parallel()

	html := `<html><body>
	<ul class="news">
	  <li><a href="/a/1">Root relative announcement</a></li>
	  <li><a href="b">Relative announcement</a></li>
	  <li><a href="https://other.go.jp/c">Absolute announcement</a></li>
	</ul>
	</body></html>`

	items, err := NewPageResolver().Resolve([]byte(html), pageSource)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}

	wantLinks := []string{
		"https://x.org/a/1",
		"https://x.org/news/b",
		"https://other.go.jp/c",
	}
	for i, want := range wantLinks {
		if items[i].Link != want {
			t.Fatalf("item %d: link %q, want %q", i, items[i].Link, want)
		}
	}
	if items[0].Title != "Root relative announcement" {
		t.Fatalf("unexpected title: %s", items[0].Title)
	}
}

func TestPageResolveSyntheticIdentifier(t *testing.T) {
	t.Parallel()

	html := `<ul class="news"><li>Plain text notice without a link</li></ul>`

	items, err := NewPageResolver().Resolve([]byte(html), pageSource)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	link := items[0].Link
	if !strings.HasPrefix(link, pageSource.URL+"#") {
		t.Fatalf("synthetic identifier must embed the page URL: %s", link)
	}
	if len(link) != len(pageSource.URL)+1+32 {
		t.Fatalf("synthetic identifier must carry an md5 hex suffix: %s", link)
	}

	// Same text again yields the same identifier; changed text changes it.
	again, err := NewPageResolver().Resolve([]byte(html), pageSource)
	if err != nil {
		t.Fatalf("Resolve again: %v", err)
	}
	if again[0].Link != link {
		t.Fatal("synthetic identifier must be deterministic")
	}

	changed, err := NewPageResolver().Resolve([]byte(`<ul class="news"><li>Different text</li></ul>`), pageSource)
	if err != nil {
		t.Fatalf("Resolve changed: %v", err)
	}
	if changed[0].Link == link {
		t.Fatal("synthetic identifier must track the element text")
	}
}

func TestPageResolveSelectorMiss(t *testing.T) {
	t.Parallel()

	items, err := NewPageResolver().Resolve([]byte("<div>nothing here</div>"), pageSource)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("selector miss must yield zero items, got %d", len(items))
	}
}
