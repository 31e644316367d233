// Package discovery runs one incremental pass over the configured sources:
// fetch, resolve, filter against the ledger, record. Any single source
// failing costs only that source; everything new it finds is reported
// exactly once across all runs.
package discovery

import (
	"context"
	"log/slog"

	"govwatcher/internal/domain"
	"govwatcher/internal/fetch"
	"govwatcher/internal/ledger"
	"govwatcher/internal/logging"
	"govwatcher/internal/resolver"
)

// Result carries everything one pass produced: feed/page entries for the
// digest and videos for the enrichment pipeline.
type Result struct {
	Items  []domain.DiscoveredItem
	Videos []domain.VideoItem
}

// Engine coordinates the per-kind resolvers around a shared fetcher and
// ledger.
type Engine struct {
	fetcher fetch.Fetcher
	ledger  *ledger.Ledger
	logger  *slog.Logger

	feeds  *resolver.FeedResolver
	pages  *resolver.PageResolver
	videos *resolver.VideoResolver
}

// New builds an engine. The video resolver reuses the engine's fetcher for
// one-hop follows and manifest resolution.
func New(fetcher fetch.Fetcher, seen *ledger.Ledger, logger *slog.Logger) *Engine {
	logger = logging.Discard(logger)
	return &Engine{
		fetcher: fetcher,
		ledger:  seen,
		logger:  logger.With("component", "discovery"),
		feeds:   resolver.NewFeedResolver(),
		pages:   resolver.NewPageResolver(),
		videos:  resolver.NewVideoResolver(fetcher, logger),
	}
}

// Discover runs one pass over the sources. Disabled sources are skipped;
// a fetch or parse failure is logged and costs only its source. Each new
// identifier is recorded in the ledger the moment it is accepted, so a
// crash mid-pass never re-reports what was already returned.
func (e *Engine) Discover(ctx context.Context, sources []domain.SourceDescriptor) Result {
	var res Result
	for _, src := range sources {
		if !src.Enabled {
			e.logger.Debug("source disabled", "source", src.Name)
			continue
		}
		if err := ctx.Err(); err != nil {
			e.logger.Warn("discovery interrupted", "error", err)
			return res
		}

		body, err := e.fetcher.Fetch(ctx, src.URL)
		if err != nil {
			e.logger.Error("source fetch failed", "source", src.Name, "url", src.URL, "error", err)
			continue
		}

		switch src.Kind {
		case domain.KindFeed:
			items, err := e.feeds.Resolve(body, src)
			if err != nil {
				e.logger.Error("feed resolve failed", "source", src.Name, "error", err)
				continue
			}
			res.Items = append(res.Items, e.filterItems(src, items)...)
		case domain.KindPage:
			items, err := e.pages.Resolve(body, src)
			if err != nil {
				e.logger.Error("page resolve failed", "source", src.Name, "error", err)
				continue
			}
			res.Items = append(res.Items, e.filterItems(src, items)...)
		case domain.KindVideo:
			found, err := e.videos.Resolve(ctx, body, src)
			if err != nil {
				e.logger.Error("video resolve failed", "source", src.Name, "error", err)
				continue
			}
			res.Videos = append(res.Videos, e.filterVideos(src, found)...)
		default:
			e.logger.Error("unknown source kind", "source", src.Name, "kind", src.Kind)
		}
	}

	e.logger.Info("discovery pass complete",
		"new_items", len(res.Items), "new_videos", len(res.Videos))
	return res
}

func (e *Engine) filterItems(src domain.SourceDescriptor, items []domain.DiscoveredItem) []domain.DiscoveredItem {
	fresh := items[:0:0]
	for _, item := range items {
		if !e.ledger.IsNew(src.Kind, src.URL, item.Link) {
			continue
		}
		e.ledger.MarkSeen(src.Kind, src.URL, item.Link)
		e.logger.Info("new item", "source", src.Name, "link", item.Link)
		fresh = append(fresh, item)
	}
	return fresh
}

func (e *Engine) filterVideos(src domain.SourceDescriptor, found []domain.VideoItem) []domain.VideoItem {
	fresh := found[:0:0]
	for _, video := range found {
		if !e.ledger.IsNew(src.Kind, src.URL, video.URL) {
			continue
		}
		e.ledger.MarkSeen(src.Kind, src.URL, video.URL)
		e.logger.Info("new video", "source", src.Name, "url", video.URL, "id", video.ID)
		fresh = append(fresh, video)
	}
	return fresh
}
