package engine

import (
	"container/list"
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Transcript cache: bounded LRU memoization of assembled transcripts keyed by
// (video id, resolved language). Purely in-memory, rebuilt empty on restart.
var transcriptCache *lruCache

// Cache metrics — atomic counters for thread-safe access.
var (
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
)

// lruCache is a mutex-guarded LRU with a singleflight group so that at most
// one upstream fetch is in flight per key. Unrelated keys never serialize on
// each other: the mutex only guards map/list bookkeeping, not the fetch.
type lruCache struct {
	mu         sync.Mutex
	entries    map[string]*list.Element // key → element in order
	order      *list.List               // front = most recently used
	maxEntries int
	group      singleflight.Group
}

type lruEntry struct {
	key   string
	value *Transcript
}

// InitCache sets up the transcript cache. Call after Init().
func InitCache(maxEntries int) {
	if maxEntries <= 0 {
		maxEntries = 100
	}
	transcriptCache = &lruCache{
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
	}
	slog.Info("cache: initialized", slog.Int("max_entries", maxEntries))
}

// TranscriptCacheKey builds the cache key for a (video id, language) pair.
func TranscriptCacheKey(videoID, lang string) string {
	return videoID + "|" + lang
}

// GetOrFetch returns the cached transcript for the key, or runs fetch once and
// caches the result. Concurrent callers for the same key share a single fetch;
// callers for different keys proceed independently.
//
// A failed fetch is never cached — the next call retries. The fetch runs on a
// context detached from the caller so that one caller cancelling does not
// starve the other waiters; the cancelled caller itself unblocks immediately.
func GetOrFetch(ctx context.Context, key string, fetch func(context.Context) (*Transcript, error)) (*Transcript, error) {
	c := transcriptCache
	if c == nil {
		// Cache disabled (tests); fetch directly.
		cacheMisses.Add(1)
		return fetch(ctx)
	}

	if t, ok := c.get(key); ok {
		cacheHits.Add(1)
		return t, nil
	}
	cacheMisses.Add(1)

	ch := c.group.DoChan(key, func() (any, error) {
		return c.resolve(ctx, key, fetch)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Transcript), nil
	case <-ctx.Done():
		// The in-flight fetch keeps going and still populates the cache for
		// the benefit of the remaining waiters.
		return nil, ctx.Err()
	}
}

// resolve runs inside the singleflight group. The cache is re-checked first:
// a caller that missed may have raced an earlier fetch that completed and
// populated the key before this flight started, in which case going upstream
// again would be wasted work.
func (c *lruCache) resolve(ctx context.Context, key string, fetch func(context.Context) (*Transcript, error)) (*Transcript, error) {
	if t, ok := c.get(key); ok {
		return t, nil
	}

	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*cfg.FetchTimeout)
	defer cancel()

	t, err := fetch(fetchCtx)
	if err != nil {
		return nil, err
	}
	c.put(key, t)
	return t, nil
}

// CacheStats returns current cache hit/miss counters.
func CacheStats() (hits, misses int64) {
	return cacheHits.Load(), cacheMisses.Load()
}

// ResetCacheStats zeroes the hit/miss counters. Test helper.
func ResetCacheStats() {
	cacheHits.Store(0)
	cacheMisses.Store(0)
}

func (c *lruCache) get(key string) (*Transcript, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*lruEntry).value, true
}

func (c *lruCache) put(key string, value *Transcript) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		el.Value.(*lruEntry).value = value
		c.order.MoveToFront(el)
		return
	}
	c.entries[key] = c.order.PushFront(&lruEntry{key: key, value: value})
	for len(c.entries) > c.maxEntries {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*lruEntry).key)
	}
}

// cacheLen reports the current number of cached transcripts. Test helper.
func cacheLen() int {
	c := transcriptCache
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
