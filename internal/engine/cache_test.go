package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func initTestEngine(maxEntries int) {
	Init(Config{
		ResponseLimit:   DefaultResponseLimit,
		CacheMaxEntries: maxEntries,
		FetchTimeout:    time.Second,
	})
	InitCache(maxEntries)
	ResetCacheStats()
}

func TestTranscriptCacheKey(t *testing.T) {
	k1 := TranscriptCacheKey("LPZh9BOjkQs", "en")
	k2 := TranscriptCacheKey("LPZh9BOjkQs", "en")
	if k1 != k2 {
		t.Errorf("key not deterministic: %q != %q", k1, k2)
	}
	if k1 == TranscriptCacheKey("LPZh9BOjkQs", "ja") {
		t.Error("different languages produced the same key")
	}
	if k1 == TranscriptCacheKey("dQw4w9WgXcQ", "en") {
		t.Error("different videos produced the same key")
	}
}

func TestGetOrFetchCachesResult(t *testing.T) {
	initTestEngine(100)
	ctx := context.Background()

	var calls atomic.Int64
	fetch := func(context.Context) (*Transcript, error) {
		calls.Add(1)
		return testTranscript(5), nil
	}

	first, err := GetOrFetch(ctx, "a|en", fetch)
	require.NoError(t, err)

	second, err := GetOrFetch(ctx, "a|en", fetch)
	require.NoError(t, err)

	if calls.Load() != 1 {
		t.Errorf("fetch called %d times, want 1", calls.Load())
	}
	if first != second {
		t.Error("expected the identical cached transcript on the second call")
	}

	hits, misses := CacheStats()
	if hits != 1 || misses != 1 {
		t.Errorf("stats = (%d hits, %d misses), want (1, 1)", hits, misses)
	}
}

func TestGetOrFetchSingleFlight(t *testing.T) {
	initTestEngine(100)
	ctx := context.Background()

	var calls atomic.Int64
	gate := make(chan struct{})
	fetch := func(context.Context) (*Transcript, error) {
		calls.Add(1)
		<-gate
		return testTranscript(3), nil
	}

	const workers = 8
	var wg sync.WaitGroup
	results := make([]*Transcript, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = GetOrFetch(ctx, "shared|en", fetch)
		}(i)
	}

	// Let the goroutines pile up on the in-flight fetch, then release it.
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("fetch called %d times for one key, want 1", calls.Load())
	}
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		require.Same(t, results[0], results[i], "all waiters must share one result")
	}
}

func TestGetOrFetchErrorNotCached(t *testing.T) {
	initTestEngine(100)
	ctx := context.Background()

	var calls atomic.Int64
	fetch := func(context.Context) (*Transcript, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("upstream hiccup")
		}
		return testTranscript(2), nil
	}

	_, err := GetOrFetch(ctx, "retry|en", fetch)
	if err == nil {
		t.Fatal("expected the first fetch to fail")
	}

	got, err := GetOrFetch(ctx, "retry|en", fetch)
	require.NoError(t, err, "a failed fetch must not poison the key")
	if got == nil || len(got.Snippets) != 2 {
		t.Error("expected the retried result")
	}
	if calls.Load() != 2 {
		t.Errorf("fetch called %d times, want 2", calls.Load())
	}
}

func TestGetOrFetchCancelledCallerUnblocks(t *testing.T) {
	initTestEngine(100)

	gate := make(chan struct{})
	fetch := func(context.Context) (*Transcript, error) {
		<-gate
		return testTranscript(1), nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := GetOrFetch(ctx, "slow|en", fetch)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("cancelled caller did not unblock")
	}

	// The detached fetch still completes and populates the cache.
	close(gate)
	deadline := time.Now().Add(time.Second)
	for cacheLen() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("fetch result never reached the cache")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestResolveChecksCacheBeforeFetching(t *testing.T) {
	// A caller that misses can race an earlier fetch that completes and
	// populates the key before the late caller's flight starts. The flight
	// must then serve the cached entry instead of going upstream again.
	initTestEngine(100)
	cached := testTranscript(2)
	transcriptCache.put("raced|en", cached)

	var calls atomic.Int64
	got, err := transcriptCache.resolve(context.Background(), "raced|en", func(context.Context) (*Transcript, error) {
		calls.Add(1)
		return testTranscript(9), nil
	})
	require.NoError(t, err)
	require.Same(t, cached, got)
	require.Zero(t, calls.Load(), "fetch must not run for an already-cached key")
}

func TestCacheEviction(t *testing.T) {
	initTestEngine(3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("video%d|en", i)
		_, err := GetOrFetch(ctx, key, func(context.Context) (*Transcript, error) {
			return testTranscript(1), nil
		})
		require.NoError(t, err)
	}

	if n := cacheLen(); n > 3 {
		t.Errorf("cache holds %d entries after eviction, want at most 3", n)
	}
}

func TestCacheEvictionIsLRU(t *testing.T) {
	initTestEngine(2)
	ctx := context.Background()

	var calls atomic.Int64
	fetch := func(context.Context) (*Transcript, error) {
		calls.Add(1)
		return testTranscript(1), nil
	}

	_, _ = GetOrFetch(ctx, "a|en", fetch)
	_, _ = GetOrFetch(ctx, "b|en", fetch)
	_, _ = GetOrFetch(ctx, "a|en", fetch) // touch a: b is now least recent
	_, _ = GetOrFetch(ctx, "c|en", fetch) // evicts b

	calls.Store(0)
	_, _ = GetOrFetch(ctx, "a|en", fetch)
	if calls.Load() != 0 {
		t.Error("a should still be cached")
	}
	_, _ = GetOrFetch(ctx, "b|en", fetch)
	if calls.Load() != 1 {
		t.Error("b should have been evicted and refetched")
	}
}
