package engine

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTranscript(n int) *Transcript {
	t := &Transcript{
		VideoID:  "LPZh9BOjkQs",
		Language: "en",
		Title:    "Test Video",
	}
	for i := 0; i < n; i++ {
		t.Snippets = append(t.Snippets, Snippet{
			Text:     fmt.Sprintf("line %d of the transcript", i),
			Start:    float64(i) * 2.5,
			Duration: 2.5,
		})
	}
	return t
}

func TestPaginateTextRoundTrip(t *testing.T) {
	tr := testTranscript(40)
	full := joinTexts(tr.Snippets)

	for _, limit := range []int{1, 10, 50, 100, 1000, len(full), len(full) * 2} {
		t.Run(fmt.Sprintf("limit=%d", limit), func(t *testing.T) {
			var parts []string
			pages := 0
			start := 0
			cursor := ""
			for {
				text, next := PaginateText(tr, limit, start)
				require.NotEmpty(t, text, "no page may be empty")
				parts = append(parts, text)
				pages++
				require.LessOrEqual(t, pages, len(tr.Snippets), "pagination must terminate")
				if next == "" {
					break
				}
				cursor = next
				var err error
				start, err = ResumeFrom(cursor, tr)
				require.NoError(t, err)
			}
			assert.Equal(t, full, strings.Join(parts, "\n"), "concatenated pages must reconstruct the transcript")
		})
	}
}

func TestPaginateTextBoundaries(t *testing.T) {
	tr := testTranscript(10)
	lineLen := len(tr.Snippets[0].Text)

	t.Run("limit below one line still makes progress", func(t *testing.T) {
		text, next := PaginateText(tr, lineLen-5, 0)
		if text != tr.Snippets[0].Text {
			t.Errorf("first page = %q, want single line %q", text, tr.Snippets[0].Text)
		}
		if next == "" {
			t.Error("expected a next cursor")
		}
	})

	t.Run("limit zero disables pagination", func(t *testing.T) {
		text, next := PaginateText(tr, 0, 0)
		if next != "" {
			t.Errorf("unexpected cursor %q with pagination disabled", next)
		}
		if text != joinTexts(tr.Snippets) {
			t.Error("expected the whole transcript in one page")
		}
	})

	t.Run("negative limit disables pagination", func(t *testing.T) {
		_, next := PaginateText(tr, -1, 0)
		if next != "" {
			t.Errorf("unexpected cursor %q", next)
		}
	})

	t.Run("page fits limit when lines fit", func(t *testing.T) {
		limit := 3*lineLen + 10
		text, _ := PaginateText(tr, limit, 0)
		if len(text) > limit {
			t.Errorf("page length %d exceeds limit %d", len(text), limit)
		}
	})
}

func TestPaginateSnippetsRoundTrip(t *testing.T) {
	tr := testTranscript(25)

	for _, limit := range []int{1, 80, 500, 100000} {
		t.Run(fmt.Sprintf("limit=%d", limit), func(t *testing.T) {
			var collected []Snippet
			start := 0
			pages := 0
			for {
				page, next := PaginateSnippets(tr, limit, start)
				require.NotEmpty(t, page, "a page always contains at least one snippet")
				collected = append(collected, page...)
				pages++
				require.LessOrEqual(t, pages, len(tr.Snippets))
				if next == "" {
					break
				}
				var err error
				start, err = ResumeFrom(next, tr)
				require.NoError(t, err)
			}
			assert.Equal(t, tr.Snippets, collected, "snippets must round-trip without loss or splits")
		})
	}
}

func TestResumeFrom(t *testing.T) {
	tr := testTranscript(20)
	other := testTranscript(20)
	other.VideoID = "dQw4w9WgXcQ"

	_, cursor := PaginateText(tr, 60, 0)
	if cursor == "" {
		t.Fatal("expected a cursor")
	}

	t.Run("absent cursor starts from the beginning", func(t *testing.T) {
		start, err := ResumeFrom("", tr)
		if err != nil || start != 0 {
			t.Errorf("ResumeFrom(\"\") = (%d, %v), want (0, nil)", start, err)
		}
	})

	t.Run("valid cursor resumes", func(t *testing.T) {
		start, err := ResumeFrom(cursor, tr)
		if err != nil {
			t.Fatalf("ResumeFrom error: %v", err)
		}
		if start <= 0 || start >= len(tr.Snippets) {
			t.Errorf("start = %d out of expected range", start)
		}
	})

	t.Run("replay is idempotent", func(t *testing.T) {
		a, err1 := ResumeFrom(cursor, tr)
		b, err2 := ResumeFrom(cursor, tr)
		if err1 != nil || err2 != nil || a != b {
			t.Errorf("replay diverged: (%d, %v) vs (%d, %v)", a, err1, b, err2)
		}
	})

	t.Run("different video rejected", func(t *testing.T) {
		_, err := ResumeFrom(cursor, other)
		if !errors.Is(err, ErrCursorMismatch) {
			t.Errorf("error = %v, want ErrCursorMismatch", err)
		}
	})

	t.Run("different language rejected", func(t *testing.T) {
		changed := testTranscript(20)
		changed.Language = "ja"
		_, err := ResumeFrom(cursor, changed)
		if !errors.Is(err, ErrCursorMismatch) {
			t.Errorf("error = %v, want ErrCursorMismatch", err)
		}
	})

	t.Run("changed content rejected", func(t *testing.T) {
		changed := testTranscript(20)
		changed.Snippets[0].Text = "something else entirely"
		_, err := ResumeFrom(cursor, changed)
		if !errors.Is(err, ErrCursorMismatch) {
			t.Errorf("error = %v, want ErrCursorMismatch", err)
		}
	})

	t.Run("shrunk transcript rejected", func(t *testing.T) {
		_, err := ResumeFrom(cursor, testTranscript(3))
		if !errors.Is(err, ErrCursorMismatch) {
			t.Errorf("error = %v, want ErrCursorMismatch", err)
		}
	})

	t.Run("garbage cursor rejected", func(t *testing.T) {
		_, err := ResumeFrom("not!!a!!cursor", tr)
		if !errors.Is(err, ErrCursorMismatch) {
			t.Errorf("error = %v, want ErrCursorMismatch", err)
		}
	})
}

func TestPaginateExample(t *testing.T) {
	// A ~9500-char transcript with a 3000-char page limit needs at least
	// four pages, and the last page carries no cursor.
	tr := &Transcript{VideoID: "LPZh9BOjkQs", Language: "en", Title: "Example"}
	for len(joinTexts(tr.Snippets)) < 9500 {
		tr.Snippets = append(tr.Snippets, Snippet{
			Text:  strings.Repeat("word ", 19) + "end",
			Start: float64(len(tr.Snippets)),
		})
	}

	pages := 0
	start := 0
	for {
		text, next := PaginateText(tr, 3000, start)
		require.LessOrEqual(t, len(text), 3000)
		pages++
		if next == "" {
			break
		}
		var err error
		start, err = ResumeFrom(next, tr)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, pages, 4)
}
