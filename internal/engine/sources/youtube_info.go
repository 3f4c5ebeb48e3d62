package sources

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/dustin/go-humanize"
)

// Video metadata fetching via the Innertube /player endpoint: videoDetails
// carries title/author/description/length, microformat carries the publish
// date. Metadata is small and cheap, so it is fetched fresh on every call.

// FetchVideoInfo returns basic metadata for a video. The upload date is
// RFC3339 in UTC; the duration is humanized ("14 days", "32 minutes").
func FetchVideoInfo(ctx context.Context, videoID string) (engine.VideoInfoOutput, error) {
	playerResp, err := fetchPlayerResponse(ctx, videoID)
	if err != nil {
		engine.IncrUpstreamErrors()
		if engine.IsCallerError(err) {
			return engine.VideoInfoOutput{}, err
		}
		return engine.VideoInfoOutput{}, fmt.Errorf("%w: %s", engine.ErrInternal, err)
	}

	if ps := playerResp.PlayabilityStatus; ps != nil && ps.Status == "ERROR" {
		engine.IncrUpstreamErrors()
		return engine.VideoInfoOutput{}, fmt.Errorf("%w: %s", engine.ErrNotFound, videoID)
	}
	vd := playerResp.VideoDetails
	if vd == nil {
		engine.IncrUpstreamErrors()
		return engine.VideoInfoOutput{}, fmt.Errorf("%w: player response has no video details", engine.ErrInternal)
	}

	info := engine.VideoInfoOutput{
		Title:       vd.Title,
		Description: vd.ShortDescription,
		Uploader:    vd.Author,
	}

	if mf := playerResp.Microformat; mf != nil {
		r := mf.PlayerMicroformatRenderer
		if info.Uploader == "" {
			info.Uploader = r.OwnerChannelName
		}
		date := r.PublishDate
		if date == "" {
			date = r.UploadDate
		}
		info.UploadDate = normalizeUploadDate(date)
	}

	if secs, err := strconv.ParseInt(vd.LengthSeconds, 10, 64); err == nil && secs > 0 {
		info.Duration = humanizeDuration(time.Duration(secs) * time.Second)
	}

	return info, nil
}

// normalizeUploadDate converts an Innertube date (RFC3339 with offset, or a
// bare YYYY-MM-DD on older responses) to RFC3339 UTC. Unparseable input is
// passed through untouched rather than dropped.
func normalizeUploadDate(date string) string {
	if date == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339, date); err == nil {
		return t.UTC().Format(time.RFC3339)
	}
	if t, err := time.Parse("2006-01-02", date); err == nil {
		return t.UTC().Format(time.RFC3339)
	}
	return date
}

// humanizeDuration renders a duration the way humans talk about video length:
// "32 minutes", "2 hours", "14 days".
func humanizeDuration(d time.Duration) string {
	ref := time.Unix(0, 0)
	return strings.TrimSpace(humanize.RelTime(ref, ref.Add(d), "", ""))
}
