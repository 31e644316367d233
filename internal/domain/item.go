package domain

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

// DiscoveredItem is one newly published entry found on a feed or page
// source. It lives for a single discovery pass; only its Link is persisted,
// via the ledger.
type DiscoveredItem struct {
	Title      string
	Link       string // canonical identifier, never a title or timestamp
	Published  time.Time
	SourceName string
	SourceKind SourceKind
}

// VideoItem is a discovered broadcast with its pipeline hints. ID keys every
// stage artifact for this video.
type VideoItem struct {
	ID              string
	Title           string
	URL             string // canonical video locator
	SourceName      string
	SourceURL       string
	FoundAt         time.Time
	CaptureInterval float64
	Summarize       bool
}

// VideoID derives the stable cache key for a canonical locator. It is a pure
// function of the locator so cache hits survive restarts.
func VideoID(locator string) string {
	sum := md5.Sum([]byte(locator))
	return hex.EncodeToString(sum[:])
}

// EnrichedVideoRecord is the pipeline's terminal output for one video,
// handed to the notifier.
type EnrichedVideoRecord struct {
	ID          string
	Title       string
	URL         string
	SourceName  string
	SourceURL   string
	ProcessedAt time.Time
	Summary     string
	Summarized  bool
	Screenshots []CapturePoint
}
