package engine

import (
	"errors"
	"fmt"
)

// Error categories surfaced to MCP callers. Upstream failures are mapped onto
// these sentinels; raw collaborator errors never cross the tool boundary.
var (
	// ErrValidation marks malformed caller input (bad URL, host, id, language).
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks a video the upstream does not know.
	ErrNotFound = errors.New("video not found")

	// ErrTranscriptsDisabled marks a video with captions turned off.
	ErrTranscriptsDisabled = errors.New("transcripts are disabled for this video")

	// ErrRateLimited marks upstream throttling. Not retried here; retry policy
	// belongs to the caller.
	ErrRateLimited = errors.New("upstream rate limit exceeded")

	// ErrBlocked marks an IP block (recaptcha interstitial).
	ErrBlocked = errors.New("request blocked by upstream")

	// ErrCursorMismatch marks a pagination cursor replayed against a different
	// video, language, or a transcript that has since changed. Callers should
	// restart pagination from the beginning.
	ErrCursorMismatch = errors.New("cursor does not match the requested transcript")

	// ErrInternal is the sanitized category for unexpected collaborator
	// failures. Detail goes to slog, never to the caller.
	ErrInternal = errors.New("internal error")
)

// ValidationError wraps a caller-input problem with its reason.
func ValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// CursorMismatchError wraps a cursor replay problem with its reason.
func CursorMismatchError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCursorMismatch, fmt.Sprintf(format, args...))
}

// IsCallerError reports whether err already carries a caller-visible category
// and may be returned as-is.
func IsCallerError(err error) bool {
	for _, sentinel := range []error{
		ErrValidation, ErrNotFound, ErrTranscriptsDisabled,
		ErrRateLimited, ErrBlocked, ErrCursorMismatch,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
