// Package stagecache fronts the durable stage-artifact store. A cache miss
// triggers recomputation; a cache failure is downgraded to a logged miss so
// a broken store can slow the pipeline down but never stop it.
package stagecache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"govwatcher/internal/logging"
)

// Stage names one pipeline phase. The values appear in store keys and on
// disk, so they are stable.
type Stage string

const (
	StageCapture    Stage = "capture"
	StageTranscript Stage = "transcript"
	StageSummary    Stage = "summary"
)

// ErrAbsent is the store's way of saying the artifact was never produced.
// It is distinct from a store failure: absence is an answer.
var ErrAbsent = errors.New("stage artifact absent")

// Store persists raw stage payloads keyed by (video key, stage). Get
// returns ErrAbsent when nothing was ever put for the pair.
type Store interface {
	Put(ctx context.Context, key string, stage Stage, payload []byte) error
	Get(ctx context.Context, key string, stage Stage) ([]byte, error)
}

// Cache wraps a Store with JSON codec duties and an optional epoch. Bumping
// the epoch retires every prior artifact at once without deleting anything,
// because epoch-prefixed keys simply never collide across epochs.
type Cache struct {
	store  Store
	epoch  string
	logger *slog.Logger
}

// New builds a cache; an empty epoch leaves keys bare.
func New(store Store, epoch string, logger *slog.Logger) *Cache {
	return &Cache{
		store:  store,
		epoch:  epoch,
		logger: logging.Discard(logger).With("component", "stagecache"),
	}
}

// Load fills out from the cached artifact and reports a hit. Store failures
// and undecodable payloads are logged and reported as misses.
func (c *Cache) Load(ctx context.Context, videoID string, stage Stage, out any) bool {
	payload, err := c.store.Get(ctx, c.key(videoID), stage)
	if errors.Is(err, ErrAbsent) {
		return false
	}
	if err != nil {
		c.logger.Error("cache read failed, treating as miss",
			"video", videoID, "stage", stage, "error", err)
		return false
	}
	if err := json.Unmarshal(payload, out); err != nil {
		c.logger.Error("cached artifact undecodable, treating as miss",
			"video", videoID, "stage", stage, "error", err)
		return false
	}
	return true
}

// Save persists the artifact. Failure is logged and swallowed: the stage
// already ran, and its output is in memory for the rest of this pass.
func (c *Cache) Save(ctx context.Context, videoID string, stage Stage, artifact any) {
	payload, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		c.logger.Error("artifact marshal failed", "video", videoID, "stage", stage, "error", err)
		return
	}
	if err := c.store.Put(ctx, c.key(videoID), stage, payload); err != nil {
		c.logger.Error("cache write failed", "video", videoID, "stage", stage, "error", err)
	}
}

func (c *Cache) key(videoID string) string {
	if c.epoch == "" {
		return videoID
	}
	return c.epoch + "-" + videoID
}
