package domain

// SourceKind partitions watched sources into the three supported flavors.
// The values double as the keys of the persisted ledger document, so they
// keep the legacy spelling ("rss"/"html") for compatibility with existing
// watched_urls.json files.
type SourceKind string

const (
	KindFeed  SourceKind = "rss"
	KindPage  SourceKind = "html"
	KindVideo SourceKind = "video"
)

// Kinds lists every source kind in ledger-document order.
func Kinds() []SourceKind {
	return []SourceKind{KindFeed, KindPage, KindVideo}
}

// SourceDescriptor is one configured origin to monitor. It is validated at
// config-load time and immutable afterwards.
type SourceDescriptor struct {
	Name            string
	Kind            SourceKind
	URL             string
	Selector        string
	CaptureInterval float64
	Summarize       bool
	Enabled         bool
}
