package engine

// --- Domain types ---

// Snippet is one timed caption unit. Immutable once fetched.
type Snippet struct {
	Text     string  `json:"text" jsonschema:"Caption text"`
	Start    float64 `json:"start" jsonschema:"Start time in seconds"`
	Duration float64 `json:"duration" jsonschema:"Duration in seconds"`
}

// Transcript is the full assembled result for one (video, language) pair:
// page title plus the ordered snippet sequence. Owned by the result cache
// after the first fetch; read-only to all consumers.
type Transcript struct {
	VideoID  string
	Language string // resolved primary language of the preference list
	Title    string
	Snippets []Snippet
}

// --- Tool input types ---

type TranscriptInput struct {
	URL        string `json:"url" jsonschema:"The URL of the YouTube video"`
	Lang       string `json:"lang,omitempty" jsonschema:"The preferred language for the transcript (default: en)"`
	NextCursor string `json:"next_cursor,omitempty" jsonschema:"Cursor from a previous response to fetch the next page"`
}

type VideoInfoInput struct {
	URL string `json:"url" jsonschema:"The URL of the YouTube video"`
}

// --- Tool output types (JSON responses) ---

type TranscriptOutput struct {
	Title      string `json:"title"`
	Transcript string `json:"transcript"`
	NextCursor string `json:"next_cursor,omitempty"`
}

type TimedTranscriptOutput struct {
	Title      string    `json:"title"`
	Snippets   []Snippet `json:"snippets"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

type VideoInfoOutput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Uploader    string `json:"uploader"`
	UploadDate  string `json:"upload_date"` // ISO-8601 timestamp
	Duration    string `json:"duration"`    // human-readable, e.g. "14 days"
}
