// Package resolver turns fetched documents into discovery candidates: feed
// entries, page entries, or canonical video locators. Resolvers operate on
// raw document bytes; the only network access is the video resolver's
// one-hop embed follow through an injected fetcher.
package resolver

import (
	"bytes"
	"time"

	"github.com/mmcdole/gofeed"

	"govwatcher/internal/domain"
	"govwatcher/internal/errkind"
)

// FeedResolver parses syndication documents (RSS/Atom/JSON feed).
type FeedResolver struct {
	parser *gofeed.Parser
	now    func() time.Time
}

// NewFeedResolver builds a resolver with a fresh parser.
func NewFeedResolver() *FeedResolver {
	return &FeedResolver{
		parser: gofeed.NewParser(),
		now:    time.Now,
	}
}

// Resolve extracts entries from a feed document. An entry's identifier is
// its link, or its feed-native id when the link is missing; entries with
// neither are dropped. Publication time falls back to the discovery time.
// A document that cannot be parsed at all is a parse failure for this
// fetch; a well-formed feed that happens to be empty is zero items, not an
// error.
func (r *FeedResolver) Resolve(content []byte, src domain.SourceDescriptor) ([]domain.DiscoveredItem, error) {
	feed, err := r.parser.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, errkind.New(errkind.Parse, "parse feed %s: %v", src.URL, err)
	}

	items := make([]domain.DiscoveredItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		identifier := entry.Link
		if identifier == "" {
			identifier = entry.GUID
		}
		if identifier == "" {
			continue
		}

		title := entry.Title
		if title == "" {
			title = "untitled"
		}

		published := r.now()
		if entry.PublishedParsed != nil {
			published = *entry.PublishedParsed
		} else if entry.UpdatedParsed != nil {
			published = *entry.UpdatedParsed
		}

		items = append(items, domain.DiscoveredItem{
			Title:      title,
			Link:       identifier,
			Published:  published,
			SourceName: src.Name,
			SourceKind: domain.KindFeed,
		})
	}
	return items, nil
}
