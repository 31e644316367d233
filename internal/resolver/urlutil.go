package resolver

import (
	"net/url"
	"strings"
)

// Canonicalize resolves a possibly-relative locator against the page it was
// found on. Absolute URLs pass through; protocol-relative URLs take the
// page's scheme; root-relative paths attach to the page's origin; anything
// else resolves like a browser would against the page URL.
func Canonicalize(raw, pageURL string) string {
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}

	page, err := url.Parse(pageURL)
	if err != nil || page.Scheme == "" {
		return raw
	}

	if strings.HasPrefix(raw, "//") {
		return page.Scheme + ":" + raw
	}
	if strings.HasPrefix(raw, "/") {
		return Origin(pageURL) + raw
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return page.ResolveReference(ref).String()
}

// Origin returns scheme://host for a URL, or the empty string when the URL
// does not parse.
func Origin(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}

// pathStem extracts the last path segment without its extension; used for
// generated video titles.
func pathStem(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	path := strings.Trim(parsed.Path, "/")
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		path = path[idx+1:]
	}
	if dot := strings.LastIndex(path, "."); dot > 0 {
		path = path[:dot]
	}
	return path
}
