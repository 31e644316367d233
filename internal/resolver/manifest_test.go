package resolver

import "testing"

func TestResolveManifestVariant(t *testing.T) {
	t.Parallel()

	master := `#EXTM3U
#EXT-X-STREAM-INF:PROGRAM-ID=1,BANDWIDTH=500000
low/index.m3u8
#EXT-X-STREAM-INF:PROGRAM-ID=1,BANDWIDTH=1200000
high/index.m3u8
#EXT-X-STREAM-INF:PROGRAM-ID=1,BANDWIDTH=800000
mid/index.m3u8
`

	res := ResolveManifest([]byte(master), "https://cdn.x.org/live/master.m3u8")
	if res.Type != ManifestVariant {
		t.Fatalf("expected variant type, got %s", res.Type)
	}
	if res.Bandwidth != 1200000 {
		t.Fatalf("expected bandwidth 1200000, got %d", res.Bandwidth)
	}
	if res.URL != "https://cdn.x.org/live/high/index.m3u8" {
		t.Fatalf("sub-playlist must resolve against the manifest URL: %s", res.URL)
	}
	if res.Variants != 3 {
		t.Fatalf("expected 3 variants, got %d", res.Variants)
	}
}

func TestResolveManifestTieKeepsFirst(t *testing.T) {
	t.Parallel()

	master := `#EXTM3U
#EXT-X-STREAM-INF:PROGRAM-ID=1,BANDWIDTH=800000
first/index.m3u8
#EXT-X-STREAM-INF:PROGRAM-ID=1,BANDWIDTH=800000
second/index.m3u8
`

	res := ResolveManifest([]byte(master), "https://cdn.x.org/live/master.m3u8")
	if res.URL != "https://cdn.x.org/live/first/index.m3u8" {
		t.Fatalf("tie must keep the first-encountered variant: %s", res.URL)
	}
}

func TestResolveManifestMedia(t *testing.T) {
	t.Parallel()

	media := `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-TARGETDURATION:10
#EXTINF:9.8,
segment0.ts
#EXTINF:9.8,
segment1.ts
#EXT-X-ENDLIST
`

	res := ResolveManifest([]byte(media), "https://cdn.x.org/live/high/index.m3u8")
	if res.Type != ManifestMedia {
		t.Fatalf("expected media type, got %s", res.Type)
	}
	if res.URL != "https://cdn.x.org/live/high/index.m3u8" {
		t.Fatalf("media playlist must return its own URL: %s", res.URL)
	}
}

func TestResolveManifestUnknown(t *testing.T) {
	t.Parallel()

	res := ResolveManifest([]byte("this is not a playlist"), "https://cdn.x.org/whatever.m3u8")
	if res.Type != ManifestUnknown {
		t.Fatalf("expected unknown type, got %s", res.Type)
	}
	if res.URL != "https://cdn.x.org/whatever.m3u8" {
		t.Fatalf("unknown type must keep the original URL: %s", res.URL)
	}
}
