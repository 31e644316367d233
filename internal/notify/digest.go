// Package notify renders and delivers the end-of-run digest over the
// configured channel.
package notify

import (
	"context"
	"fmt"
	"strings"

	"govwatcher/internal/domain"
)

// Display limits keep a busy day from flooding the channel; the overflow is
// counted instead of listed.
const (
	maxListedItems  = 10
	maxListedVideos = 5
)

// Digest is everything one run found, ready to render.
type Digest struct {
	Items  []domain.DiscoveredItem
	Videos []domain.EnrichedVideoRecord
}

// Notifier delivers a rendered digest.
type Notifier interface {
	Publish(ctx context.Context, digest Digest) error
}

// Empty reports whether there is anything worth sending.
func (d Digest) Empty() bool {
	return len(d.Items) == 0 && len(d.Videos) == 0
}

// Subject is the one-line headline for the digest.
func (d Digest) Subject() string {
	return fmt.Sprintf("govwatcher: %d new items, %d new videos", len(d.Items), len(d.Videos))
}

// Body renders the plain-text digest shared by every channel.
func (d Digest) Body() string {
	var b strings.Builder

	if len(d.Items) > 0 {
		fmt.Fprintf(&b, "New publications (%d):\n", len(d.Items))
		for i, item := range d.Items {
			if i == maxListedItems {
				fmt.Fprintf(&b, "  ...and %d more\n", len(d.Items)-maxListedItems)
				break
			}
			fmt.Fprintf(&b, "  - [%s] %s\n    %s\n", item.SourceName, item.Title, item.Link)
		}
	}

	if len(d.Videos) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "New videos (%d):\n", len(d.Videos))
		for i, video := range d.Videos {
			if i == maxListedVideos {
				fmt.Fprintf(&b, "  ...and %d more\n", len(d.Videos)-maxListedVideos)
				break
			}
			fmt.Fprintf(&b, "  - [%s] %s\n    %s\n", video.SourceName, video.Title, video.URL)
			if video.Summary != "" {
				fmt.Fprintf(&b, "    %s\n", video.Summary)
			}
		}
	}

	return b.String()
}
