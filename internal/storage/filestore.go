// Package storage provides the durable backends behind the stage cache:
// a filesystem layout compatible with previously written artifact trees,
// and a Postgres table for deployments that already run a database.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"govwatcher/internal/errkind"
	"govwatcher/internal/stagecache"
)

// FileStore keeps one directory per video under a per-stage root. The layout
// matches the artifact trees earlier versions of the tool wrote, so an
// existing data directory is picked up as warm cache.
type FileStore struct {
	root string
}

var _ stagecache.Store = (*FileStore)(nil)

// NewFileStore roots the store at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{root: dir}
}

// Put writes the payload, creating the stage directory as needed.
func (s *FileStore) Put(_ context.Context, key string, stage stagecache.Stage, payload []byte) error {
	path, err := s.path(key, stage)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errkind.Wrap(errkind.Persistence, fmt.Errorf("create artifact dir: %w", err))
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return errkind.Wrap(errkind.Persistence, fmt.Errorf("write artifact %s: %w", path, err))
	}
	return nil
}

// Get reads the payload; a missing file reports stagecache.ErrAbsent.
func (s *FileStore) Get(_ context.Context, key string, stage stagecache.Stage) ([]byte, error) {
	path, err := s.path(key, stage)
	if err != nil {
		return nil, err
	}
	payload, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, stagecache.ErrAbsent
	}
	if err != nil {
		return nil, errkind.Wrap(errkind.Persistence, fmt.Errorf("read artifact %s: %w", path, err))
	}
	return payload, nil
}

// MediaDir returns the per-video directory screenshots and audio land in;
// it sits next to the capture metadata.
func (s *FileStore) MediaDir(key string) string {
	return filepath.Join(s.root, "video_captures", key)
}

func (s *FileStore) path(key string, stage stagecache.Stage) (string, error) {
	switch stage {
	case stagecache.StageCapture:
		return filepath.Join(s.root, "video_captures", key, "metadata.json"), nil
	case stagecache.StageTranscript:
		return filepath.Join(s.root, "transcripts", key, "transcript.json"), nil
	case stagecache.StageSummary:
		return filepath.Join(s.root, "summaries", key, "summary.json"), nil
	default:
		return "", errkind.New(errkind.Persistence, "unknown stage %q", stage)
	}
}
