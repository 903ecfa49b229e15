package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/krau/sankaku-dl/common/cache"
	"github.com/krau/sankaku-dl/pkg/download"
)

type retryableErr struct {
	retry bool
}

func (e retryableErr) Error() string   { return fmt.Sprintf("retryable=%v", e.retry) }
func (e retryableErr) Retryable() bool { return e.retry }

func fastBackoff() backoff.BackOff {
	return backoff.NewConstantBackOff(time.Millisecond)
}

func TestResolveAllIsolatesFailures(t *testing.T) {
	urls := []string{"ok://1", "fail://2", "none://3", "ok://4"}
	results := ResolveAll(context.Background(), urls, Options{
		Workers: 2,
		Backoff: fastBackoff,
		Resolve: func(_ context.Context, u string) (*download.Download, error) {
			switch u[:2] {
			case "ok":
				return &download.Download{URL: u}, nil
			case "fa":
				return nil, errors.New("broken")
			}
			return nil, nil
		},
	})
	if len(results) != len(urls) {
		t.Fatalf("expected %d results, got %d", len(urls), len(results))
	}
	for i, r := range results {
		if r.URL != urls[i] {
			t.Fatalf("result %d is for %s, want %s", i, r.URL, urls[i])
		}
	}
	if !results[0].OK() || results[0].Download.URL != "ok://1" {
		t.Errorf("unexpected result 0: %+v", results[0])
	}
	if results[1].OK() || results[1].Attempts != 1 {
		t.Errorf("non-retryable failure should fail after one attempt: %+v", results[1])
	}
	if !results[2].OK() || results[2].Download != nil {
		t.Errorf("empty result should be ok with no download: %+v", results[2])
	}
	if !results[3].OK() {
		t.Errorf("failure of another URL leaked into result 3: %+v", results[3])
	}
}

func TestResolveAllRetries(t *testing.T) {
	var calls atomic.Int32
	results := ResolveAll(context.Background(), []string{"flaky://1"}, Options{
		Workers: 1,
		Retry:   3,
		Backoff: fastBackoff,
		Resolve: func(_ context.Context, u string) (*download.Download, error) {
			if calls.Add(1) < 3 {
				return nil, retryableErr{retry: true}
			}
			return &download.Download{URL: u}, nil
		},
	})
	r := results[0]
	if !r.OK() || r.Attempts != 3 {
		t.Fatalf("expected success on attempt 3, got %+v", r)
	}
}

func TestResolveAllRetryLimit(t *testing.T) {
	var calls atomic.Int32
	results := ResolveAll(context.Background(), []string{"down://1"}, Options{
		Retry:   2,
		Backoff: fastBackoff,
		Resolve: func(context.Context, string) (*download.Download, error) {
			calls.Add(1)
			return nil, retryableErr{retry: true}
		},
	})
	if results[0].OK() {
		t.Fatal("expected failure")
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 1 attempt + 2 retries, got %d", calls.Load())
	}
	var re retryableErr
	if !errors.As(results[0].Err, &re) {
		t.Fatalf("underlying error lost: %v", results[0].Err)
	}
}

func TestResolveAllSkipsRetryForPermanent(t *testing.T) {
	var calls atomic.Int32
	ResolveAll(context.Background(), []string{"gone://1"}, Options{
		Retry:   5,
		Backoff: fastBackoff,
		Resolve: func(context.Context, string) (*download.Download, error) {
			calls.Add(1)
			return nil, retryableErr{retry: false}
		},
	})
	if calls.Load() != 1 {
		t.Fatalf("expected a single attempt, got %d", calls.Load())
	}
}

func TestResolveAllWorkerLimit(t *testing.T) {
	var running, peak atomic.Int32
	var mu sync.Mutex
	urls := make([]string, 12)
	for i := range urls {
		urls[i] = fmt.Sprintf("ok://%d", i)
	}
	ResolveAll(context.Background(), urls, Options{
		Workers: 3,
		Resolve: func(_ context.Context, u string) (*download.Download, error) {
			n := running.Add(1)
			mu.Lock()
			if n > peak.Load() {
				peak.Store(n)
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return &download.Download{URL: u}, nil
		},
	})
	if peak.Load() > 3 {
		t.Fatalf("more than 3 concurrent resolves: %d", peak.Load())
	}
}

func TestResolveAllCache(t *testing.T) {
	if err := cache.Init(); err != nil {
		t.Fatalf("cache init failed: %v", err)
	}
	t.Cleanup(cache.Close)

	var calls atomic.Int32
	opts := Options{
		Workers: 1,
		Resolve: func(_ context.Context, u string) (*download.Download, error) {
			calls.Add(1)
			return &download.Download{URL: u, Headers: map[string]string{"Referer": "r"}}, nil
		},
	}
	first := ResolveAll(context.Background(), []string{"cache://1"}, opts)
	second := ResolveAll(context.Background(), []string{"cache://1"}, opts)
	if calls.Load() != 1 {
		t.Fatalf("expected 1 resolve call, got %d", calls.Load())
	}
	if first[0].Cached || !second[0].Cached {
		t.Fatalf("unexpected cache flags: %v %v", first[0].Cached, second[0].Cached)
	}
	second[0].Download.Headers["Referer"] = "mutated"
	third := ResolveAll(context.Background(), []string{"cache://1"}, opts)
	if third[0].Download.Headers["Referer"] != "r" {
		t.Fatal("cached download was mutated through a result")
	}
}

func TestResolveAllOnResult(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]bool{}
	urls := []string{"a://1", "b://2", "c://3"}
	ResolveAll(context.Background(), urls, Options{
		Workers: 2,
		Resolve: func(context.Context, string) (*download.Download, error) {
			return nil, nil
		},
		OnResult: func(r Result) {
			mu.Lock()
			seen[r.URL] = true
			mu.Unlock()
		},
	})
	if len(seen) != len(urls) {
		t.Fatalf("OnResult saw %d of %d URLs", len(seen), len(urls))
	}
}
