package engine

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Defaults for knobs that main may leave unset.
const (
	// DefaultResponseLimit caps the characters per paginated tool response.
	DefaultResponseLimit = 50000

	// MinResponseLimit is the smallest usable positive page size. Configured
	// positive values below it are clamped; non-positive values disable
	// pagination entirely.
	MinResponseLimit = 1000

	// DefaultMaxTranscriptChars bounds the assembled transcript size.
	DefaultMaxTranscriptChars = 5_000_000
)

// Config holds all engine configuration, injected from main.
type Config struct {
	ResponseLimit      int           // chars per page; <=0 disables pagination
	CacheMaxEntries    int           // transcript cache capacity
	FetchTimeout       time.Duration // budget for one outbound fetch chain
	RequestsPerMinute  int           // outbound YouTube request budget; <=0 = unlimited
	MaxTranscriptChars int           // assembled transcript ceiling
	HTTPClient         *http.Client
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (sources).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.ResponseLimit > 0 && c.ResponseLimit < MinResponseLimit {
		c.ResponseLimit = MinResponseLimit
	}
	if c.MaxTranscriptChars <= 0 {
		c.MaxTranscriptChars = DefaultMaxTranscriptChars
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 15 * time.Second
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.FetchTimeout}
	}
	cfg = c
	Cfg = &cfg

	if c.RequestsPerMinute > 0 {
		ytLimiter = rate.NewLimiter(rate.Limit(float64(c.RequestsPerMinute)/60.0), c.RequestsPerMinute/6+1)
	} else {
		ytLimiter = nil
	}
}
