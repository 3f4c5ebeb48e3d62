package ytserver

import (
	"context"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerGetVideoInfo(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_video_info",
		Description: "Retrieves metadata about a YouTube video: title, description, uploader, upload date (ISO-8601), and a human-readable duration.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.VideoInfoInput) (*mcp.CallToolResult, engine.VideoInfoOutput, error) {
		engine.IncrVideoInfoRequests()

		videoID, err := engine.ParseVideoReference(input.URL)
		if err != nil {
			return nil, engine.VideoInfoOutput{}, sanitizeErr("get_video_info", err)
		}

		info, err := fetchVideoInfo(ctx, videoID)
		if err != nil {
			return nil, engine.VideoInfoOutput{}, sanitizeErr("get_video_info", err)
		}
		return nil, info, nil
	})
}
