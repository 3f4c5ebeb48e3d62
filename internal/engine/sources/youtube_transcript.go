package sources

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"golang.org/x/net/html"
)

// YouTube transcript fetching.
// Primary:  scrape watch page ytInitialPlayerResponse → caption XML (works from any IP,
//           also yields the page title)
// Fallback: ANDROID Innertube /player → captionTracks

// ytInitialPlayerResponseMarker marks the start of the player response JSON in
// watch page HTML.
const ytInitialPlayerResponseMarker = "ytInitialPlayerResponse = "

// recaptchaMarker appears on the interstitial YouTube serves to blocked IPs.
const recaptchaMarker = `class="g-recaptcha"`

// truncationMarker is appended when the assembled transcript exceeds the
// configured size ceiling.
const truncationMarker = "[TRANSCRIPT TRUNCATED - SIZE LIMIT REACHED]"

// FetchTranscript fetches the page title and ordered caption snippets for a
// video, honoring the language preference list. Failures are mapped onto the
// engine error taxonomy (not found, disabled, rate limited, blocked).
func FetchTranscript(ctx context.Context, videoID string, langs []string) (string, []engine.Snippet, error) {
	title, snippets, err := fetchViaPageScrape(ctx, videoID, langs)
	if err == nil {
		return title, snippets, nil
	}
	if engine.IsCallerError(err) {
		// Definitive upstream answer (disabled, blocked, ...) — the player
		// endpoint would say the same thing.
		engine.IncrUpstreamErrors()
		return "", nil, err
	}
	slog.Warn("youtube: page scrape failed, trying player",
		slog.String("id", videoID), slog.Any("err", err))

	snippets, err2 := fetchViaPlayer(ctx, videoID, langs, &title)
	if err2 != nil {
		engine.IncrUpstreamErrors()
		if engine.IsCallerError(err2) {
			return "", nil, err2
		}
		return "", nil, fmt.Errorf("%w: %s", engine.ErrInternal, err2)
	}
	return title, snippets, nil
}

// fetchViaPageScrape downloads the watch page, extracts the embedded player
// response JSON, and follows the selected caption track.
func fetchViaPageScrape(ctx context.Context, videoID string, langs []string) (string, []engine.Snippet, error) {
	if err := engine.WaitOutbound(ctx); err != nil {
		return "", nil, err
	}
	engine.IncrWatchPageRequests()

	watchURL := ytWatchURL + "?v=" + url.QueryEscape(videoID)

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, watchURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentChrome)
		req.Header.Set("Accept-Language", strings.Join(langs, ","))
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return "", nil, fmt.Errorf("watch page: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 6*1024*1024))
	if err != nil {
		return "", nil, fmt.Errorf("read watch page: %w", err)
	}

	playerResp, err := parsePlayerResponseHTML(body, videoID)
	if err != nil {
		slog.Debug("youtube: watch page not parseable",
			slog.String("id", videoID),
			slog.String("head", engine.Truncate(string(body), 200)))
		return "", nil, err
	}

	title := pageTitle(body)
	if title == "" && playerResp.VideoDetails != nil {
		title = playerResp.VideoDetails.Title
	}
	if title == "" {
		title = "Transcript"
	}

	snippets, err := captionsFromPlayerResponse(ctx, playerResp, videoID, langs)
	if err != nil {
		return "", nil, err
	}
	return title, snippets, nil
}

// parsePlayerResponseHTML locates the ytInitialPlayerResponse blob inside
// watch page HTML and decodes it. The blob is a semi-structured embedded
// script: the documented terminator is the closing </script> tag with a
// trailing semicolon, but some page variants inline a following statement, so
// the undocumented "};var" delimiter is tried as well. A page without the
// marker at all is either a recaptcha interstitial (blocked) or malformed.
func parsePlayerResponseHTML(body []byte, videoID string) (*innertubePlayerResp, error) {
	idx := strings.Index(string(body), ytInitialPlayerResponseMarker)
	if idx < 0 {
		if strings.Contains(string(body), recaptchaMarker) {
			return nil, fmt.Errorf("%w: recaptcha interstitial for %s", engine.ErrBlocked, videoID)
		}
		return nil, errors.New("ytInitialPlayerResponse not found in watch page")
	}

	blob := string(body[idx+len(ytInitialPlayerResponseMarker):])
	if end := strings.Index(blob, "</script>"); end >= 0 {
		blob = blob[:end]
	}
	blob = strings.TrimSpace(blob)

	// Delimiter strategy 1: inline "};var" statement terminator.
	// Delimiter strategy 2: plain trailing semicolon.
	var candidate string
	if cut := strings.Index(blob, "};var"); cut >= 0 {
		candidate = blob[:cut+1]
	} else {
		candidate = strings.TrimRight(blob, ";")
	}

	if !json.Valid([]byte(candidate)) {
		// Last resort: balanced-brace scan from the start of the blob.
		extracted := extractJSON([]byte(blob))
		if extracted == nil {
			return nil, errors.New("failed to extract ytInitialPlayerResponse JSON")
		}
		candidate = string(extracted)
	}

	var playerResp innertubePlayerResp
	if err := json.Unmarshal([]byte(candidate), &playerResp); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	return &playerResp, nil
}

// captionsFromPlayerResponse maps playability and caption availability onto
// the error taxonomy, selects the best track, and fetches its timedtext.
func captionsFromPlayerResponse(ctx context.Context, playerResp *innertubePlayerResp, videoID string, langs []string) ([]engine.Snippet, error) {
	if ps := playerResp.PlayabilityStatus; ps != nil {
		switch ps.Status {
		case "ERROR":
			return nil, fmt.Errorf("%w: %s", engine.ErrNotFound, videoID)
		case "LOGIN_REQUIRED":
			return nil, fmt.Errorf("%w: login required for %s", engine.ErrBlocked, videoID)
		}
	}
	if playerResp.Captions == nil {
		return nil, fmt.Errorf("%w: %s", engine.ErrTranscriptsDisabled, videoID)
	}
	tracks := playerResp.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: %s", engine.ErrTranscriptsDisabled, videoID)
	}
	track, ok := pickBestTrack(tracks, langs)
	if !ok {
		return nil, errors.New("all caption tracks require PoToken")
	}
	return fetchTimedText(ctx, track.BaseURL)
}

// fetchViaPlayer uses the ANDROID Innertube /player endpoint. If *title is
// empty it is filled from videoDetails.
func fetchViaPlayer(ctx context.Context, videoID string, langs []string, title *string) ([]engine.Snippet, error) {
	playerResp, err := fetchPlayerResponse(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if *title == "" && playerResp.VideoDetails != nil {
		*title = playerResp.VideoDetails.Title
	}
	return captionsFromPlayerResponse(ctx, playerResp, videoID, langs)
}

// needsPoToken reports whether a caption track URL requires a PoToken
// (browser-only). Tracks with &exp=xpe cannot be fetched server-side.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickBestTrack selects the best usable caption track for the given language
// preferences. Skips tracks that require PoToken — those only work in a
// browser.
func pickBestTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return tracks[0], false
	}
	// 1. Manual track in preferred language
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, true
			}
		}
	}
	// 2. Auto-generated track in preferred language
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}
	// 3. Any English track
	for _, t := range usable {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, true
		}
	}
	return usable[0], true
}

// fetchTimedText fetches and parses a YouTube timedtext XML caption URL into
// timed snippets, enforcing the assembled-transcript size ceiling.
func fetchTimedText(ctx context.Context, baseURL string) ([]engine.Snippet, error) {
	if err := engine.WaitOutbound(ctx); err != nil {
		return nil, err
	}
	engine.IncrTimedTextRequests()

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentChrome)
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8*1024*1024))
	if err != nil {
		return nil, err
	}

	var tt ytTimedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	maxChars := engine.Cfg.MaxTranscriptChars
	total := 0
	snippets := make([]engine.Snippet, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		text := engine.CleanCaptionText(line.Text)
		if text == "" {
			continue
		}
		if maxChars > 0 && total+len(text) > maxChars {
			snippets = append(snippets, engine.Snippet{
				Text:     truncationMarker,
				Start:    line.Start,
				Duration: 0,
			})
			break
		}
		total += len(text)
		snippets = append(snippets, engine.Snippet{
			Text:     text,
			Start:    line.Start,
			Duration: line.Duration,
		})
	}
	if len(snippets) == 0 {
		return nil, errors.New("empty transcript")
	}
	return snippets, nil
}

// pageTitle extracts the <title> element text from watch page HTML.
func pageTitle(body []byte) string {
	z := html.NewTokenizer(strings.NewReader(string(body)))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			name, _ := z.TagName()
			if string(name) == "title" {
				if z.Next() == html.TextToken {
					return strings.TrimSpace(z.Token().Data)
				}
				return ""
			}
		}
	}
}

// extractJSON returns the first balanced JSON object at the start of b,
// tolerating braces inside string literals.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	var prev byte
	for i, c := range b {
		if inStr {
			if c == '"' && prev != '\\' {
				inStr = false
			}
		} else {
			switch c {
			case '"':
				inStr = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return b[:i+1]
				}
			}
		}
		prev = c
	}
	return nil
}
