package engine

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// User-Agent strings used across HTTP clients.
const (
	UserAgentChrome = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// CleanCaptionText strips markup tags, decodes HTML entities, and trims
// whitespace. Timedtext lines arrive with entities like &amp;#39; and
// occasional inline <b>/<i> tags.
func CleanCaptionText(s string) string {
	s = htmlTagRe.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.TrimSpace(s)
}

// Truncate returns the first n bytes of s.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
