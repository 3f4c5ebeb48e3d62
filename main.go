// go_transcript — YouTube Transcript MCP server.
//
// Exposes three MCP tools: get_transcript, get_timed_transcript, get_video_info.
// Runs as HTTP MCP server or stdio transport.
//
// All upstream access goes through internal/engine/sources; the engine layer owns
// validation, caching, pagination, and rate limiting.
package main

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/ytserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
)

func main() {
	initEngine()

	slog.Info("starting go_transcript",
		slog.String("port", mcpPort),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_transcript",
		Version: version,
	}, nil)

	ytserver.RegisterTools(server)
	slog.Info("tools registered", slog.Int("count", 3))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_transcript",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 120 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() {
	c := engine.Config{
		ResponseLimit:      env.Int("RESPONSE_LIMIT", engine.DefaultResponseLimit),
		CacheMaxEntries:    env.Int("CACHE_MAX_ENTRIES", 100),
		FetchTimeout:       env.Duration("FETCH_TIMEOUT", 15*time.Second),
		RequestsPerMinute:  env.Int("YT_REQUESTS_PER_MINUTE", 60),
		MaxTranscriptChars: env.Int("MAX_TRANSCRIPT_CHARS", engine.DefaultMaxTranscriptChars),
	}

	transport := &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     60 * time.Second,
	}

	// Proxy credentials are opaque to the engine: applied to the transport,
	// never logged.
	if proxy := env.Str("YT_PROXY_URL", ""); proxy != "" {
		u, err := url.Parse(proxy)
		if err != nil {
			slog.Warn("invalid proxy URL, running without proxy", slog.Any("error", err))
		} else {
			transport.Proxy = http.ProxyURL(u)
			slog.Info("outbound proxy configured", slog.String("scheme", u.Scheme))
		}
	}

	c.HTTPClient = &http.Client{
		Timeout:   c.FetchTimeout,
		Transport: transport,
	}

	engine.Init(c)
	engine.InitCache(c.CacheMaxEntries)
}
