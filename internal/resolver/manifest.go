package resolver

import (
	"bytes"

	"github.com/grafov/m3u8"
)

// ManifestType classifies an adaptive-bitrate playlist.
type ManifestType string

const (
	// ManifestVariant lists alternative streams annotated with bandwidth.
	ManifestVariant ManifestType = "variant"
	// ManifestMedia lists segments directly and is playable as-is.
	ManifestMedia ManifestType = "media"
	// ManifestUnknown is anything that parses as neither.
	ManifestUnknown ManifestType = "unknown"
)

// ManifestResolution is the outcome of resolving one manifest document.
type ManifestResolution struct {
	Type      ManifestType
	URL       string // canonical locator to use downstream
	Bandwidth uint32 // selected variant bandwidth, variant type only
	Variants  int
}

// ResolveManifest inspects a playlist document. A variant playlist resolves
// to its highest-bandwidth sub-playlist (first encountered wins ties) with
// the URL resolved against the manifest's own URL. A media playlist is
// already playable, so its own URL comes back unchanged. Anything else is
// flagged unknown with the original URL. Pure function; manifests are
// re-resolved fresh on every fetch.
func ResolveManifest(content []byte, manifestURL string) ManifestResolution {
	playlist, listType, err := m3u8.DecodeFrom(bytes.NewReader(content), false)
	if err != nil {
		return ManifestResolution{Type: ManifestUnknown, URL: manifestURL}
	}

	switch listType {
	case m3u8.MASTER:
		master, ok := playlist.(*m3u8.MasterPlaylist)
		if !ok || len(master.Variants) == 0 {
			return ManifestResolution{Type: ManifestUnknown, URL: manifestURL}
		}

		var best *m3u8.Variant
		for _, variant := range master.Variants {
			if variant == nil {
				continue
			}
			if best == nil || variant.Bandwidth > best.Bandwidth {
				best = variant
			}
		}
		if best == nil {
			return ManifestResolution{Type: ManifestUnknown, URL: manifestURL}
		}

		return ManifestResolution{
			Type:      ManifestVariant,
			URL:       Canonicalize(best.URI, manifestURL),
			Bandwidth: best.Bandwidth,
			Variants:  len(master.Variants),
		}

	case m3u8.MEDIA:
		return ManifestResolution{Type: ManifestMedia, URL: manifestURL}
	}

	return ManifestResolution{Type: ManifestUnknown, URL: manifestURL}
}
