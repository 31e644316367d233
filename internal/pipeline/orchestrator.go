// Package pipeline enriches discovered videos through three cached stages:
// capture, transcribe, summarize. Each stage's artifact is durable and keyed
// by the video ID, so re-running a video costs only the stages that never
// completed.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"govwatcher/internal/config"
	"govwatcher/internal/domain"
	"govwatcher/internal/errkind"
	"govwatcher/internal/logging"
	"govwatcher/internal/stagecache"
	"govwatcher/internal/transcribe"
)

// MediaTools is the ffmpeg-backed collaborator behind the capture stage.
type MediaTools interface {
	Available(ctx context.Context) bool
	Duration(ctx context.Context, url string) (float64, error)
	CaptureFrame(ctx context.Context, url string, offset float64, outFile string) error
	ExtractAudio(ctx context.Context, url, outFile string) error
}

// Transcriber turns extracted audio into text.
type Transcriber interface {
	Available() bool
	Transcribe(ctx context.Context, audioPath string) (transcribe.Result, error)
}

// Summarizer condenses a transcript.
type Summarizer interface {
	Available() bool
	Summarize(ctx context.Context, transcript string) (string, error)
}

// Pipeline orchestrates the stages around the cache. Missing facilities
// (no ffmpeg, no API key) stop advancement gracefully: earlier artifacts
// are kept and the run degrades instead of failing.
type Pipeline struct {
	cache      *stagecache.Cache
	media      MediaTools
	transcribe Transcriber
	summarize  Summarizer
	mediaDir   func(videoID string) string
	logger     *slog.Logger
	now        func() time.Time

	passThreshold int
	maxLength     int

	warnedMedia      bool
	warnedTranscribe bool
	warnedSummarize  bool
}

// New wires the pipeline. mediaDir maps a video ID to the directory its
// screenshots and audio land in.
func New(cache *stagecache.Cache, media MediaTools, t Transcriber, s Summarizer,
	mediaDir func(videoID string) string, cfg config.OpenAIConfig, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		cache:         cache,
		media:         media,
		transcribe:    t,
		summarize:     s,
		mediaDir:      mediaDir,
		logger:        logging.Discard(logger).With("component", "pipeline"),
		now:           time.Now,
		passThreshold: cfg.PassThroughThreshold,
		maxLength:     cfg.SummaryMaxLength,
	}
}

// ProcessVideo runs the video through every stage it is configured for.
// Capture failure is a hard error. When a summarize-enabled video's
// transcript or summary stage yields no artifact, the video is omitted from
// this run's output (ok=false): its completed artifacts stay cached and the
// next run picks up where this one stopped. Videos with summarization
// disabled are complete after capture.
func (p *Pipeline) ProcessVideo(ctx context.Context, video domain.VideoItem) (record domain.EnrichedVideoRecord, ok bool, err error) {
	record = domain.EnrichedVideoRecord{
		ID:          video.ID,
		Title:       video.Title,
		URL:         video.URL,
		SourceName:  video.SourceName,
		SourceURL:   video.SourceURL,
		ProcessedAt: p.now(),
	}

	capture, err := p.captureStage(ctx, video)
	if err != nil {
		return record, false, err
	}
	record.Screenshots = capture.Screenshots

	if !video.Summarize {
		p.logger.Debug("summarization disabled for source", "video", video.ID)
		return record, true, nil
	}

	transcript, done := p.transcriptStage(ctx, video)
	if !done {
		p.logger.Info("video omitted this run, transcript pending", "video", video.ID)
		return record, false, nil
	}

	summary, done := p.summaryStage(ctx, video, transcript)
	if !done {
		p.logger.Info("video omitted this run, summary pending", "video", video.ID)
		return record, false, nil
	}
	record.Summary = summary.Summary
	record.Summarized = summary.Summarized

	return record, true, nil
}

func (p *Pipeline) captureStage(ctx context.Context, video domain.VideoItem) (domain.CaptureSet, error) {
	var capture domain.CaptureSet
	if p.cache.Load(ctx, video.ID, stagecache.StageCapture, &capture) {
		p.logger.Debug("capture cached", "video", video.ID)
		return capture, nil
	}

	if !p.media.Available(ctx) {
		if !p.warnedMedia {
			p.logger.Warn("ffmpeg unavailable, captures skipped")
			p.warnedMedia = true
		}
		return capture, errkind.New(errkind.Unavailable, "ffmpeg unavailable")
	}

	duration, err := p.media.Duration(ctx, video.URL)
	if err != nil {
		return capture, fmt.Errorf("probe %s: %w", video.URL, err)
	}

	dir := p.mediaDir(video.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return capture, errkind.Wrap(errkind.Persistence, fmt.Errorf("create media dir: %w", err))
	}

	var shots []domain.CapturePoint
	for i, offset := range CapturePoints(duration, video.CaptureInterval) {
		file := filepath.Join(dir, fmt.Sprintf("screenshot_%02d.jpg", i))
		err := p.media.CaptureFrame(ctx, video.URL, offset, file)
		if err != nil {
			p.logger.Warn("frame capture failed", "video", video.ID, "offset", offset, "error", err)
		}
		shots = append(shots, domain.CapturePoint{File: file, Offset: offset, Exists: err == nil})
	}

	capture = domain.CaptureSet{
		ID:          video.ID,
		Title:       video.Title,
		URL:         video.URL,
		SourceName:  video.SourceName,
		SourceURL:   video.SourceURL,
		CapturedAt:  p.now(),
		Screenshots: shots,
	}
	p.cache.Save(ctx, video.ID, stagecache.StageCapture, capture)
	p.logger.Info("capture complete", "video", video.ID, "frames", len(shots), "duration", duration)
	return capture, nil
}

func (p *Pipeline) transcriptStage(ctx context.Context, video domain.VideoItem) (domain.Transcript, bool) {
	var transcript domain.Transcript
	if p.cache.Load(ctx, video.ID, stagecache.StageTranscript, &transcript) {
		p.logger.Debug("transcript cached", "video", video.ID)
		return transcript, true
	}

	if !p.transcribe.Available() {
		if !p.warnedTranscribe {
			p.logger.Warn("transcription unavailable, summaries skipped")
			p.warnedTranscribe = true
		}
		return transcript, false
	}

	audioPath := filepath.Join(p.mediaDir(video.ID), "audio.wav")
	if err := p.media.ExtractAudio(ctx, video.URL, audioPath); err != nil {
		p.logger.Error("audio extraction failed", "video", video.ID, "error", err)
		return transcript, false
	}

	result, err := p.transcribe.Transcribe(ctx, audioPath)
	if err != nil {
		p.logger.Error("transcription failed", "video", video.ID, "error", err)
		return transcript, false
	}

	transcript = domain.Transcript{
		ID:            video.ID,
		Title:         video.Title,
		URL:           video.URL,
		SourceName:    video.SourceName,
		SourceURL:     video.SourceURL,
		TranscribedAt: p.now(),
		Language:      result.Language,
		Text:          result.Text,
		Segments:      result.Segments,
	}
	p.cache.Save(ctx, video.ID, stagecache.StageTranscript, transcript)
	p.logger.Info("transcription complete", "video", video.ID, "chars", len(result.Text))
	return transcript, true
}

// summaryStage returns the summary artifact. Transcripts under the
// pass-through threshold skip the API and are not cached: the verbatim text
// is cheap to rebuild and a later threshold change should get a fresh look.
func (p *Pipeline) summaryStage(ctx context.Context, video domain.VideoItem, transcript domain.Transcript) (domain.Summary, bool) {
	var summary domain.Summary
	if p.cache.Load(ctx, video.ID, stagecache.StageSummary, &summary) {
		p.logger.Debug("summary cached", "video", video.ID)
		return summary, true
	}

	text := transcript.Text
	originalLen := len([]rune(text))

	if originalLen < p.passThreshold {
		return domain.Summary{
			ID:             video.ID,
			Title:          video.Title,
			URL:            video.URL,
			SourceName:     video.SourceName,
			SourceURL:      video.SourceURL,
			SummarizedAt:   p.now(),
			Summary:        text,
			OriginalLength: originalLen,
			SummaryLength:  originalLen,
			Summarized:     false,
		}, true
	}

	if !p.summarize.Available() {
		if !p.warnedSummarize {
			p.logger.Warn("summarization unavailable, summaries skipped")
			p.warnedSummarize = true
		}
		return summary, false
	}

	condensed, err := p.summarize.Summarize(ctx, text)
	if err != nil {
		p.logger.Error("summarization failed", "video", video.ID, "error", err)
		return summary, false
	}
	condensed = truncateRunes(condensed, p.maxLength)

	summary = domain.Summary{
		ID:             video.ID,
		Title:          video.Title,
		URL:            video.URL,
		SourceName:     video.SourceName,
		SourceURL:      video.SourceURL,
		SummarizedAt:   p.now(),
		Summary:        condensed,
		OriginalLength: originalLen,
		SummaryLength:  len([]rune(condensed)),
		Summarized:     true,
	}
	p.cache.Save(ctx, video.ID, stagecache.StageSummary, summary)
	p.logger.Info("summary complete", "video", video.ID,
		"original_chars", originalLen, "summary_chars", summary.SummaryLength)
	return summary, true
}

// truncateRunes caps the text at limit runes so a multi-byte character is
// never split.
func truncateRunes(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
