package resolver

import (
	"bytes"
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"govwatcher/internal/domain"
	"govwatcher/internal/errkind"
	"govwatcher/internal/fetch"
	"govwatcher/internal/logging"
)

var (
	mediaExtExpr  = regexp.MustCompile(`(?i)\.(mp4|m3u8|mov|avi|wmv)(\?.*)?$`)
	manifestExpr  = regexp.MustCompile(`(?i)\.m3u8(\?.*)?$`)
	headingFilter = "h1,h2,h3,h4,h5,h6"
)

var embedHosts = []string{"youtube.com", "youtu.be", "vimeo.com"}

// VideoResolver turns heterogeneous broadcast-page markup into canonical
// video locators. Resolution order per element: direct media-element src,
// nested <source>, media-extension hyperlink, one-hop follow of an ordinary
// hyperlink, lazy-load attribute. Manifest locators are further resolved to
// their best variant before being returned as canonical.
type VideoResolver struct {
	fetcher fetch.Fetcher
	logger  *slog.Logger
	now     func() time.Time

	// ScriptHeuristics gates the inline-script scanning layer; the
	// structural DOM path works without it.
	ScriptHeuristics bool
}

// NewVideoResolver wires the fetcher used for one-hop follows and manifest
// resolution.
func NewVideoResolver(fetcher fetch.Fetcher, logger *slog.Logger) *VideoResolver {
	return &VideoResolver{
		fetcher:          fetcher,
		logger:           logging.Discard(logger),
		now:              time.Now,
		ScriptHeuristics: true,
	}
}

// Resolve extracts video items from a broadcast page. With a selector, only
// matching elements are examined; without one (or when the selector matches
// nothing usable) the whole page is scanned for media elements, known embed
// iframes, and script literals. Secondary-fetch failures are logged and
// cost only the affected element, never the batch.
func (r *VideoResolver) Resolve(ctx context.Context, content []byte, src domain.SourceDescriptor) ([]domain.VideoItem, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, errkind.New(errkind.Parse, "parse video page %s: %v", src.URL, err)
	}

	var videos []domain.VideoItem
	seen := map[string]struct{}{}
	add := func(locator, title string) {
		if locator == "" {
			return
		}
		locator = r.resolveIfManifest(ctx, locator)
		if _, dup := seen[locator]; dup {
			return
		}
		seen[locator] = struct{}{}
		if title == "" {
			title = generatedTitle(src.Name, locator)
		}
		videos = append(videos, domain.VideoItem{
			ID:              domain.VideoID(locator),
			Title:           title,
			URL:             locator,
			SourceName:      src.Name,
			SourceURL:       src.URL,
			FoundAt:         r.now(),
			CaptureInterval: src.CaptureInterval,
			Summarize:       src.Summarize,
		})
	}

	if src.Selector != "" {
		doc.Find(src.Selector).Each(func(_ int, sel *goquery.Selection) {
			locator := r.locatorFromElement(ctx, sel, src.URL)
			if locator == "" {
				r.logger.Debug("no locator for selected element", "source", src.Name)
				return
			}
			add(locator, elementTitle(sel, doc))
		})
	}

	if len(videos) == 0 {
		r.scanWholePage(ctx, doc, src, add)
	}

	return videos, nil
}

// scanWholePage is the no-selector (or selector-missed) fallback: media
// elements anywhere, embed iframes, then the script heuristic layer.
func (r *VideoResolver) scanWholePage(ctx context.Context, doc *goquery.Document, src domain.SourceDescriptor, add func(locator, title string)) {
	doc.Find("video").Each(func(_ int, sel *goquery.Selection) {
		locator := r.locatorFromElement(ctx, sel, src.URL)
		if locator != "" {
			add(locator, elementTitle(sel, doc))
		}
	})

	doc.Find("iframe").Each(func(_ int, sel *goquery.Selection) {
		iframeSrc, ok := sel.Attr("src")
		if !ok || !isEmbedHost(iframeSrc) {
			return
		}
		add(Canonicalize(iframeSrc, src.URL), elementTitle(sel, doc))
	})

	if r.ScriptHeuristics {
		for _, candidate := range scanScriptLiterals(doc) {
			add(candidate, "")
		}
	}
}

// locatorFromElement applies the resolution order for one element and
// returns the canonical locator, or the empty string when nothing usable
// was found.
func (r *VideoResolver) locatorFromElement(ctx context.Context, sel *goquery.Selection, pageURL string) string {
	if goquery.NodeName(sel) == "video" {
		if src, ok := sel.Attr("src"); ok && src != "" {
			return Canonicalize(src, pageURL)
		}
	}

	if src, ok := sel.Find("source").First().Attr("src"); ok && src != "" {
		return Canonicalize(src, pageURL)
	}

	if goquery.NodeName(sel) == "a" {
		if href, ok := sel.Attr("href"); ok && href != "" {
			if mediaExtExpr.MatchString(href) {
				return Canonicalize(href, pageURL)
			}
			if locator := r.followHop(ctx, Canonicalize(href, pageURL)); locator != "" {
				return locator
			}
		}
	}

	if lazy, ok := sel.Attr("data-src"); ok && lazy != "" {
		return Canonicalize(lazy, pageURL)
	}

	return ""
}

// followHop fetches a linked page once and re-scans it for an embedded
// player, a media element, or script literals. Failure here is logged and
// returns no locator; it never aborts the batch.
func (r *VideoResolver) followHop(ctx context.Context, hopURL string) string {
	if r.fetcher == nil || hopURL == "" {
		return ""
	}

	body, err := r.fetcher.Fetch(ctx, hopURL)
	if err != nil {
		r.logger.Warn("embed follow failed", "url", hopURL, "error", err)
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		r.logger.Warn("embed page unparseable", "url", hopURL, "error", err)
		return ""
	}

	if iframeSrc, ok := doc.Find("iframe").First().Attr("src"); ok && isEmbedHost(iframeSrc) {
		return Canonicalize(iframeSrc, hopURL)
	}

	video := doc.Find("video").First()
	if src, ok := video.Attr("src"); ok && src != "" {
		return Canonicalize(src, hopURL)
	}
	if src, ok := video.Find("source").First().Attr("src"); ok && src != "" {
		return Canonicalize(src, hopURL)
	}

	if r.ScriptHeuristics {
		if candidates := scanScriptLiterals(doc); len(candidates) > 0 {
			return candidates[0]
		}
	}

	return ""
}

// resolveIfManifest fetches and resolves adaptive manifests to their best
// variant. A fetch failure keeps the manifest URL itself as the locator.
func (r *VideoResolver) resolveIfManifest(ctx context.Context, locator string) string {
	if !manifestExpr.MatchString(locator) || r.fetcher == nil {
		return locator
	}

	body, err := r.fetcher.Fetch(ctx, locator)
	if err != nil {
		r.logger.Warn("manifest fetch failed", "url", locator, "error", err)
		return locator
	}

	resolution := ResolveManifest(body, locator)
	if resolution.Type == ManifestUnknown {
		r.logger.Warn("manifest type unknown", "url", locator)
	}
	return resolution.URL
}

// elementTitle falls back through the element's own text, a heading in its
// parent, and the document title; the caller supplies the generated last
// resort.
func elementTitle(sel *goquery.Selection, doc *goquery.Document) string {
	if text := strings.TrimSpace(sel.Text()); text != "" {
		return text
	}
	if heading := strings.TrimSpace(sel.Parent().Find(headingFilter).First().Text()); heading != "" {
		return heading
	}
	if heading := strings.TrimSpace(sel.Parents().Find(headingFilter).First().Text()); heading != "" {
		return heading
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func generatedTitle(sourceName, locator string) string {
	return sourceName + " video - " + pathStem(locator)
}

func isEmbedHost(rawURL string) bool {
	for _, host := range embedHosts {
		if strings.Contains(rawURL, host) {
			return true
		}
	}
	return false
}
