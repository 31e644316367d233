package resolver

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"govwatcher/internal/domain"
	"govwatcher/internal/errkind"
)

// PageResolver extracts announcement entries from a plain HTML page using
// the source's CSS selector.
type PageResolver struct {
	now func() time.Time
}

// NewPageResolver builds a page resolver.
func NewPageResolver() *PageResolver {
	return &PageResolver{now: time.Now}
}

// Resolve selects matching elements; each becomes an entry titled by its
// text. The identifier is the first contained hyperlink resolved against
// the page, or, absent one, a synthetic identifier built from the page URL
// and a hash of the element text. The synthetic form changes when the text
// changes; that is the accepted cost of uniqueness without a real link.
func (r *PageResolver) Resolve(content []byte, src domain.SourceDescriptor) ([]domain.DiscoveredItem, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, errkind.New(errkind.Parse, "parse page %s: %v", src.URL, err)
	}

	var items []domain.DiscoveredItem
	doc.Find(src.Selector).Each(func(_ int, sel *goquery.Selection) {
		title := strings.TrimSpace(sel.Text())
		link := firstAnchorHref(sel)
		if link != "" {
			link = Canonicalize(link, src.URL)
		} else {
			link = syntheticIdentifier(src.URL, title)
		}

		items = append(items, domain.DiscoveredItem{
			Title:      title,
			Link:       link,
			Published:  r.now(),
			SourceName: src.Name,
			SourceKind: domain.KindPage,
		})
	})

	return items, nil
}

func firstAnchorHref(sel *goquery.Selection) string {
	anchor := sel.Find("a").First()
	if goquery.NodeName(sel) == "a" {
		anchor = sel
	}
	href, ok := anchor.Attr("href")
	if !ok {
		return ""
	}
	return strings.TrimSpace(href)
}

func syntheticIdentifier(pageURL, text string) string {
	sum := md5.Sum([]byte(text))
	return pageURL + "#" + hex.EncodeToString(sum[:])
}
