package engine

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	TranscriptRequests      atomic.Int64
	TimedTranscriptRequests atomic.Int64
	VideoInfoRequests       atomic.Int64
	WatchPageRequests       atomic.Int64
	PlayerRequests          atomic.Int64
	TimedTextRequests       atomic.Int64
	UpstreamErrors          atomic.Int64
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"transcript_requests":       metrics.TranscriptRequests.Load(),
		"timed_transcript_requests": metrics.TimedTranscriptRequests.Load(),
		"video_info_requests":       metrics.VideoInfoRequests.Load(),
		"watch_page_requests":       metrics.WatchPageRequests.Load(),
		"player_requests":           metrics.PlayerRequests.Load(),
		"timedtext_requests":        metrics.TimedTextRequests.Load(),
		"upstream_errors":           metrics.UpstreamErrors.Load(),
		"cache_hits":                hits,
		"cache_misses":              misses,
	}
}

// FormatMetrics returns metrics as a simple text format for the HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"transcript_requests", "timed_transcript_requests", "video_info_requests",
		"watch_page_requests", "player_requests", "timedtext_requests",
		"upstream_errors",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the ytserver package.
func IncrTranscriptRequests()      { metrics.TranscriptRequests.Add(1) }
func IncrTimedTranscriptRequests() { metrics.TimedTranscriptRequests.Add(1) }
func IncrVideoInfoRequests()       { metrics.VideoInfoRequests.Add(1) }

// Incrementors for the sources sub-package.
func IncrWatchPageRequests() { metrics.WatchPageRequests.Add(1) }
func IncrPlayerRequests()    { metrics.PlayerRequests.Add(1) }
func IncrTimedTextRequests() { metrics.TimedTextRequests.Add(1) }
func IncrUpstreamErrors()    { metrics.UpstreamErrors.Add(1) }
