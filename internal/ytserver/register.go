// Package ytserver registers the YouTube transcript MCP tools and orchestrates
// each call: validate input → resolve from cache or fetch → paginate → respond.
package ytserver

import (
	"context"
	"errors"
	"log/slog"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/sources"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterTools registers all transcript tools on the given MCP server:
// get_transcript, get_timed_transcript, get_video_info.
func RegisterTools(server *mcp.Server) {
	registerGetTranscript(server)
	registerGetTimedTranscript(server)
	registerGetVideoInfo(server)
}

// Source seams — swapped for stubs in tests.
var (
	fetchTranscript = sources.FetchTranscript
	fetchVideoInfo  = sources.FetchVideoInfo
)

// loadTranscript validates the reference and language, then resolves the
// assembled transcript through the result cache. Validation happens before
// anything goes upstream.
func loadTranscript(ctx context.Context, rawURL, rawLang string) (*engine.Transcript, error) {
	videoID, err := engine.ParseVideoReference(rawURL)
	if err != nil {
		return nil, err
	}

	lang := "en"
	if rawLang != "" {
		lang, err = engine.ParseLanguageCode(rawLang)
		if err != nil {
			return nil, err
		}
	}
	langs := engine.LanguagePreference(lang)

	key := engine.TranscriptCacheKey(videoID, lang)
	return engine.GetOrFetch(ctx, key, func(ctx context.Context) (*engine.Transcript, error) {
		title, snippets, err := fetchTranscript(ctx, videoID, langs)
		if err != nil {
			return nil, err
		}
		return &engine.Transcript{
			VideoID:  videoID,
			Language: lang,
			Title:    title,
			Snippets: snippets,
		}, nil
	})
}

// sanitizeErr maps any failure onto a caller-visible category. Errors that
// already carry a category pass through; everything else is logged in full
// and replaced with the generic internal category so upstream URLs, proxy
// settings, and library internals never reach the caller.
func sanitizeErr(tool string, err error) error {
	if engine.IsCallerError(err) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	slog.Error("tool failed", slog.String("tool", tool), slog.Any("error", err))
	return engine.ErrInternal
}
