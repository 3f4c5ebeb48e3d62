package engine

import (
	"net/url"
	"regexp"
	"strings"
)

// Input validation. Pure functions, no I/O: malformed input is rejected here,
// before anything goes upstream.

const (
	maxURLLength  = 500
	maxLangLength = 10
)

// videoIDRe matches the 11-character URL-safe YouTube video id alphabet.
var videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// langStripRe matches the characters a language tag may not keep.
var langStripRe = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// youtubeHosts is the exact set of accepted hostnames.
var youtubeHosts = map[string]bool{
	"youtube.com":     true,
	"www.youtube.com": true,
	"m.youtube.com":   true,
	"youtu.be":        true,
}

// ParseVideoReference extracts and validates a video id from a raw URL or a
// bare id string.
//
// URLs must use http/https and one of the known YouTube hosts. On youtu.be the
// id is the first path segment; on the other hosts it is the first value of
// the "v" query parameter. The extracted id must be exactly 11 characters of
// [A-Za-z0-9_-].
func ParseVideoReference(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ValidationError("url is required")
	}
	if len(raw) > maxURLLength {
		return "", ValidationError("url too long (max %d characters)", maxURLLength)
	}

	// Bare video id, no URL machinery involved.
	if videoIDRe.MatchString(raw) {
		return raw, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", ValidationError("invalid url: %v", err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", ValidationError("url must use http or https")
	}

	host := strings.ToLower(u.Hostname())
	if !youtubeHosts[host] {
		return "", ValidationError("url must be a YouTube URL (youtube.com or youtu.be)")
	}

	var id string
	if host == "youtu.be" {
		segments := strings.Split(strings.TrimPrefix(u.Path, "/"), "/")
		id = segments[0]
	} else {
		v, ok := u.Query()["v"]
		if !ok || len(v) == 0 {
			return "", ValidationError("could not find video id parameter 'v' in url")
		}
		id = v[0]
	}

	if id == "" {
		return "", ValidationError("video id is empty")
	}
	if !videoIDRe.MatchString(id) {
		return "", ValidationError("invalid video id format")
	}
	return id, nil
}

// ParseLanguageCode sanitizes a language tag: strips everything outside
// [A-Za-z0-9_-] and caps the length. Unrecognized but well-formed codes pass
// through; the transcript source pairs them with an "en" fallback anyway.
func ParseLanguageCode(raw string) (string, error) {
	if raw == "" {
		return "", ValidationError("language code is empty")
	}
	sanitized := langStripRe.ReplaceAllString(raw, "")
	if sanitized == "" {
		return "", ValidationError("language code contains no usable characters")
	}
	if len(sanitized) > maxLangLength {
		sanitized = sanitized[:maxLangLength]
	}
	return sanitized, nil
}

// LanguagePreference builds the ordered preference list for a resolved
// language code. English is always the fallback.
func LanguagePreference(lang string) []string {
	if lang == "en" {
		return []string{"en"}
	}
	return []string{lang, "en"}
}
