package ytserver

import (
	"context"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerGetTimedTranscript(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_timed_transcript",
		Description: "Retrieves the transcript of a YouTube video as timed snippets (text, start seconds, duration seconds). Large transcripts are paginated: pass next_cursor from the previous response to fetch the following page; a snippet is never split across pages.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.TranscriptInput) (*mcp.CallToolResult, engine.TimedTranscriptOutput, error) {
		engine.IncrTimedTranscriptRequests()

		t, err := loadTranscript(ctx, input.URL, input.Lang)
		if err != nil {
			return nil, engine.TimedTranscriptOutput{}, sanitizeErr("get_timed_transcript", err)
		}

		start, err := engine.ResumeFrom(input.NextCursor, t)
		if err != nil {
			return nil, engine.TimedTranscriptOutput{}, sanitizeErr("get_timed_transcript", err)
		}

		snippets, next := engine.PaginateSnippets(t, engine.Cfg.ResponseLimit, start)
		return nil, engine.TimedTranscriptOutput{
			Title:      t.Title,
			Snippets:   snippets,
			NextCursor: next,
		}, nil
	})
}
