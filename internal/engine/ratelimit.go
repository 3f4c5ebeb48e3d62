package engine

import (
	"context"

	"golang.org/x/time/rate"
)

// ytLimiter throttles outbound YouTube requests so a burst of tool calls does
// not amplify load against the rate-limited upstream. Configured via
// Config.RequestsPerMinute; nil means unlimited.
var ytLimiter *rate.Limiter

// WaitOutbound blocks until the outbound rate limiter admits one request, or
// the context is cancelled.
func WaitOutbound(ctx context.Context) error {
	if ytLimiter == nil {
		return nil
	}
	return ytLimiter.Wait(ctx)
}
