package engine

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Pagination: slices an assembled transcript into bounded pages and mints
// opaque resumption cursors. Cursors are stateless and self-contained; the
// server keeps no per-caller pagination state.

// cursorToken is the decoded wire form of a cursor. Field names are short on
// purpose — the token is opaque to callers.
type cursorToken struct {
	VideoID     string `json:"v"`
	Language    string `json:"l"`
	Index       int    `json:"i"` // next snippet index to resume from
	Fingerprint string `json:"f"` // content fingerprint of the minted-from transcript
}

// fingerprint identifies the exact assembled transcript a cursor was minted
// from. If the upstream caption list changes between calls, the fingerprint
// changes and replay fails instead of silently continuing.
func fingerprint(t *Transcript) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%d\x00", t.VideoID, t.Language, len(t.Snippets))
	h.Write([]byte(t.Title))
	if n := len(t.Snippets); n > 0 {
		h.Write([]byte{0})
		h.Write([]byte(t.Snippets[0].Text))
		h.Write([]byte{0})
		h.Write([]byte(t.Snippets[n-1].Text))
	}
	return hex.EncodeToString(h.Sum(nil)[:12])
}

// mintCursor encodes a resumption token for the given next index. Returns ""
// when the transcript is exhausted (final page).
func mintCursor(t *Transcript, next int) string {
	if next <= 0 || next >= len(t.Snippets) {
		return ""
	}
	data, err := json.Marshal(cursorToken{
		VideoID:     t.VideoID,
		Language:    t.Language,
		Index:       next,
		Fingerprint: fingerprint(t),
	})
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(data)
}

// ResumeFrom validates a cursor against the transcript it is being replayed
// against and returns the snippet index to resume from. An absent cursor
// means "start from the beginning". Any mismatch — different video, different
// language, changed content, out-of-range index, or a token that does not
// decode — yields ErrCursorMismatch so the caller can restart pagination.
func ResumeFrom(cursor string, t *Transcript) (int, error) {
	if cursor == "" {
		return 0, nil
	}
	data, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0, CursorMismatchError("cursor is not decodable")
	}
	var tok cursorToken
	if err := json.Unmarshal(data, &tok); err != nil {
		return 0, CursorMismatchError("cursor is not decodable")
	}
	if tok.VideoID != t.VideoID {
		return 0, CursorMismatchError("cursor was issued for a different video")
	}
	if tok.Language != t.Language {
		return 0, CursorMismatchError("cursor was issued for a different language")
	}
	if tok.Fingerprint != fingerprint(t) {
		return 0, CursorMismatchError("transcript content changed since the cursor was issued")
	}
	if tok.Index <= 0 || tok.Index >= len(t.Snippets) {
		return 0, CursorMismatchError("cursor index out of range")
	}
	return tok.Index, nil
}

// PaginateText returns one page of plain transcript text starting at snippet
// index start, one snippet text per line, plus the cursor for the next page
// ("" on the final page).
//
// A non-positive limit disables pagination: the whole remainder becomes one
// page. A page always contains at least one line, even when that line alone
// exceeds the limit, so pagination always makes progress.
func PaginateText(t *Transcript, limit, start int) (string, string) {
	if start >= len(t.Snippets) {
		return "", ""
	}
	if limit <= 0 {
		return joinTexts(t.Snippets[start:]), ""
	}

	size := 0
	end := start
	for ; end < len(t.Snippets); end++ {
		cost := len(t.Snippets[end].Text)
		if end > start {
			cost++ // newline separator
		}
		if end > start && size+cost > limit {
			break
		}
		size += cost
	}
	return joinTexts(t.Snippets[start:end]), mintCursor(t, end)
}

// PaginateSnippets returns one page of timed snippets starting at index start,
// plus the cursor for the next page. Boundary logic mirrors PaginateText but
// measures the JSON-encoded size of each snippet record; a snippet is never
// split across pages.
func PaginateSnippets(t *Transcript, limit, start int) ([]Snippet, string) {
	if start >= len(t.Snippets) {
		return nil, ""
	}
	if limit <= 0 {
		return t.Snippets[start:], ""
	}

	size := 0
	end := start
	for ; end < len(t.Snippets); end++ {
		record, err := json.Marshal(t.Snippets[end])
		if err != nil {
			break
		}
		cost := len(record)
		if end > start {
			cost++ // array separator
		}
		if end > start && size+cost > limit {
			break
		}
		size += cost
	}
	return t.Snippets[start:end], mintCursor(t, end)
}

func joinTexts(snippets []Snippet) string {
	texts := make([]string, len(snippets))
	for i, s := range snippets {
		texts[i] = s.Text
	}
	return strings.Join(texts, "\n")
}
