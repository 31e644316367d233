package domain

import "time"

// Stage artifacts are the durable outputs of the video pipeline, keyed by
// VideoItem.ID. JSON field names match the files the previous generation of
// this tool wrote, so existing artifact trees keep working as cache hits.

// CapturePoint is one screenshot taken at an offset into the video.
type CapturePoint struct {
	File   string  `json:"file"`
	Offset float64 `json:"time"`
	Exists bool    `json:"exists"`
}

// CaptureSet is the capture stage artifact.
type CaptureSet struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	URL         string         `json:"url"`
	SourceName  string         `json:"source_name"`
	SourceURL   string         `json:"source_url"`
	CapturedAt  time.Time      `json:"capture_date"`
	Screenshots []CapturePoint `json:"screenshots"`
}

// Segment is a time-aligned slice of a transcript.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript is the transcription stage artifact.
type Transcript struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	URL           string    `json:"url"`
	SourceName    string    `json:"source_name"`
	SourceURL     string    `json:"source_url"`
	TranscribedAt time.Time `json:"transcribe_date"`
	Language      string    `json:"language"`
	Text          string    `json:"text"`
	Segments      []Segment `json:"segments"`
}

// Summary is the summarization stage artifact. Summarized reports whether an
// actual compression happened or the source text was short enough to pass
// through verbatim.
type Summary struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	URL            string    `json:"url"`
	SourceName     string    `json:"source_name"`
	SourceURL      string    `json:"source_url"`
	SummarizedAt   time.Time `json:"summary_date"`
	Summary        string    `json:"summary"`
	OriginalLength int       `json:"original_length"`
	SummaryLength  int       `json:"summary_length"`
	Summarized     bool      `json:"summarized"`
}
