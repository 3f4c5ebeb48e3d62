package ytserver

import (
	"context"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerGetTranscript(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_transcript",
		Description: "Retrieves the transcript of a YouTube video as plain text, one caption per line. Large transcripts are paginated: pass next_cursor from the previous response to fetch the following page; the final page has no next_cursor.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.TranscriptInput) (*mcp.CallToolResult, engine.TranscriptOutput, error) {
		engine.IncrTranscriptRequests()

		t, err := loadTranscript(ctx, input.URL, input.Lang)
		if err != nil {
			return nil, engine.TranscriptOutput{}, sanitizeErr("get_transcript", err)
		}

		start, err := engine.ResumeFrom(input.NextCursor, t)
		if err != nil {
			return nil, engine.TranscriptOutput{}, sanitizeErr("get_transcript", err)
		}

		text, next := engine.PaginateText(t, engine.Cfg.ResponseLimit, start)
		return nil, engine.TranscriptOutput{
			Title:      t.Title,
			Transcript: text,
			NextCursor: next,
		}, nil
	})
}
