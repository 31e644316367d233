// Package app wires configuration to the discovery engine, the enrichment
// pipeline, and the notifier, and runs one watch pass.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"govwatcher/internal/config"
	"govwatcher/internal/discovery"
	"govwatcher/internal/domain"
	"govwatcher/internal/fetch"
	"govwatcher/internal/ledger"
	"govwatcher/internal/logging"
	"govwatcher/internal/media"
	"govwatcher/internal/notify"
	"govwatcher/internal/pipeline"
	"govwatcher/internal/stagecache"
	"govwatcher/internal/storage"
	"govwatcher/internal/summarize"
	"govwatcher/internal/transcribe"
)

// Mode selects which source kinds a run covers.
type Mode string

const (
	ModeAll    Mode = "all"
	ModeURLs   Mode = "urls"
	ModeVideos Mode = "videos"
)

// Application holds every wired collaborator for the lifetime of one run.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	sources  []domain.SourceDescriptor
	seen     *ledger.Ledger
	engine   *discovery.Engine
	pipeline *pipeline.Pipeline
	notifier notify.Notifier
	closeFns []func() error
}

// New builds the application. The artifact store is Postgres when a DSN is
// configured and the filesystem under the data directory otherwise; media
// files (screenshots, audio) always live on the filesystem.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.General.LogLevel)
	}

	sources, err := cfg.Descriptors()
	if err != nil {
		return nil, fmt.Errorf("validate sources: %w", err)
	}

	a := &Application{cfg: cfg, logger: baseLogger, sources: sources}

	fetcher := fetch.NewClient(0)
	a.seen = ledger.Open(
		filepath.Join(cfg.General.DataDir, "watched_urls.json"),
		baseLogger.With("component", "ledger"))
	a.engine = discovery.New(fetcher, a.seen, baseLogger)

	fileStore := storage.NewFileStore(cfg.General.DataDir)
	var store stagecache.Store = fileStore
	if cfg.Database.DSN != "" {
		pg, err := storage.NewPostgresStore(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open artifact store: %w", err)
		}
		a.closeFns = append(a.closeFns, pg.Close)
		store = pg
	}
	cache := stagecache.New(store, cfg.Cache.Epoch, baseLogger)

	a.pipeline = pipeline.New(
		cache,
		media.NewTools(),
		transcribe.NewClient(cfg.Transcription),
		summarize.NewClient(cfg.OpenAI),
		fileStore.MediaDir,
		cfg.OpenAI,
		baseLogger,
	)

	a.notifier = selectNotifier(cfg.Notification)
	return a, nil
}

func selectNotifier(cfg config.NotificationConfig) notify.Notifier {
	if !cfg.Enabled {
		return nil
	}
	switch cfg.Method {
	case "slack":
		return notify.NewSlackNotifier(cfg.Slack)
	case "email":
		return notify.NewEmailNotifier(cfg.Email)
	default:
		return notify.NewCLINotifier(nil)
	}
}

// Run executes one watch pass for the mode: discover, enrich videos, send
// the digest, then sweep the ledger if retention is configured.
func (a *Application) Run(ctx context.Context, mode Mode) error {
	sources := a.sourcesFor(mode)
	if len(sources) == 0 {
		a.logger.Warn("no sources for mode", "mode", mode)
		return nil
	}

	result := a.engine.Discover(ctx, sources)

	digest := notify.Digest{Items: result.Items}
	for _, video := range result.Videos {
		record, ok, err := a.pipeline.ProcessVideo(ctx, video)
		if err != nil {
			a.logger.Error("video processing failed", "video", video.ID, "url", video.URL, "error", err)
			continue
		}
		if !ok {
			continue
		}
		digest.Videos = append(digest.Videos, record)
	}

	if a.notifier != nil && !digest.Empty() {
		if err := a.notifier.Publish(ctx, digest); err != nil {
			a.logger.Error("digest delivery failed", "error", err)
		}
	}

	if days := a.cfg.Retention.Days; days > 0 {
		a.seen.SweepOlderThan(days)
	}
	return nil
}

func (a *Application) sourcesFor(mode Mode) []domain.SourceDescriptor {
	var picked []domain.SourceDescriptor
	for _, src := range a.sources {
		switch mode {
		case ModeURLs:
			if src.Kind == domain.KindVideo {
				continue
			}
		case ModeVideos:
			if src.Kind != domain.KindVideo {
				continue
			}
		}
		picked = append(picked, src)
	}
	return picked
}

// Close releases held resources, the database pool included.
func (a *Application) Close() error {
	var first error
	for _, closeFn := range a.closeFns {
		if err := closeFn(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
