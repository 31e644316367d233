package resolver

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Script-literal scanning is the best-effort heuristic layer behind the
// structural (DOM-based) resolution path. It lives in its own file and
// behind VideoResolver.ScriptHeuristics so it can be disabled or swapped
// without touching the primary path.

var (
	m3u8LiteralExpr = regexp.MustCompile(`['"]((https?://[^'"\s]+\.m3u8)[^'"]*)['"]`)
	mp4LiteralExpr  = regexp.MustCompile(`['"]((https?://[^'"\s]+\.mp4)[^'"]*)['"]`)
	jsonObjectExpr  = regexp.MustCompile(`\{[^{}]*"url"[^{}]*\}`)
	bareKeyExpr     = regexp.MustCompile(`([{,])\s*(\w+):`)
)

// scanScriptLiterals walks inline <script> bodies and returns candidate
// media locators in document order: m3u8 URL literals first, then mp4
// literals, then url fields inside inline JSON-ish objects.
func scanScriptLiterals(doc *goquery.Document) []string {
	var found []string
	seen := map[string]struct{}{}
	add := func(candidate string) {
		if candidate == "" {
			return
		}
		if _, dup := seen[candidate]; dup {
			return
		}
		seen[candidate] = struct{}{}
		found = append(found, candidate)
	}

	doc.Find("script").Each(func(_ int, script *goquery.Selection) {
		body := script.Text()
		if body == "" {
			return
		}

		for _, match := range m3u8LiteralExpr.FindAllStringSubmatch(body, -1) {
			add(match[1])
		}
		for _, match := range mp4LiteralExpr.FindAllStringSubmatch(body, -1) {
			add(match[1])
		}
		for _, candidate := range jsonObjectExpr.FindAllString(body, -1) {
			add(urlFromScriptObject(candidate))
		}
	})

	return found
}

// urlFromScriptObject quotes bare JavaScript keys and tries to read a media
// url field out of the object. Anything that does not decode is ignored.
func urlFromScriptObject(literal string) string {
	quoted := bareKeyExpr.ReplaceAllString(literal, `$1"$2":`)

	var payload struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal([]byte(quoted), &payload); err != nil {
		return ""
	}
	if strings.HasSuffix(payload.URL, ".mp4") || strings.HasSuffix(payload.URL, ".m3u8") {
		return payload.URL
	}
	return ""
}
