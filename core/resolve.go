package core

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
	"github.com/krau/sankaku-dl/common/cache"
	"github.com/krau/sankaku-dl/common/utils/strutil"
	"github.com/krau/sankaku-dl/pkg/download"
	"github.com/rs/xid"
	"golang.org/x/sync/errgroup"
)

type ResolveFunc func(ctx context.Context, url string) (*download.Download, error)

type Options struct {
	Workers int
	Retry   int // extra attempts for retryable errors
	Resolve ResolveFunc
	// Retryable decides whether an error is worth another attempt.
	// Defaults to errors implementing Retryable() bool.
	Retryable func(error) bool
	// Backoff builds the retry schedule for one URL. Defaults to exponential.
	Backoff func() backoff.BackOff
	// OnResult is called once per URL as soon as it finishes, from the worker goroutine.
	OnResult func(Result)
}

type Result struct {
	URL      string
	Download *download.Download // nil when the URL resolved to nothing
	Err      error
	Attempts int
	Cached   bool
	Elapsed  time.Duration
}

func (r Result) OK() bool {
	return r.Err == nil
}

func IsRetryable(err error) bool {
	var re interface{ Retryable() bool }
	return errors.As(err, &re) && re.Retryable()
}

// ResolveAll resolves every URL independently: one failure never stops the
// others. Results keep the order of urls.
func ResolveAll(ctx context.Context, urls []string, opts Options) []Result {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Retryable == nil {
		opts.Retryable = IsRetryable
	}
	if opts.Backoff == nil {
		opts.Backoff = func() backoff.BackOff { return backoff.NewExponentialBackOff() }
	}
	logger := log.FromContext(ctx)
	logger.Infof("Resolving %d URLs with %d workers", len(urls), opts.Workers)

	results := make([]Result, len(urls))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.Workers)
	for i, u := range urls {
		eg.Go(func() error {
			results[i] = resolveOne(gctx, u, opts)
			if opts.OnResult != nil {
				opts.OnResult(results[i])
			}
			return nil
		})
	}
	eg.Wait()
	return results
}

func resolveOne(ctx context.Context, u string, opts Options) Result {
	u = strings.TrimSpace(u)
	logger := log.FromContext(ctx).With("req", xid.New().String())
	ctx = log.WithContext(ctx, logger)
	start := time.Now()
	key := "resolve:" + strutil.HashString(u)

	if dl, ok := cache.Get[*download.Download](key); ok {
		logger.Debug("Cache hit", "url", u)
		return Result{URL: u, Download: dl.Clone(), Cached: true, Elapsed: time.Since(start)}
	}

	attempts := 0
	b := backoff.WithContext(backoff.WithMaxRetries(opts.Backoff(), uint64(max(opts.Retry, 0))), ctx)
	dl, err := backoff.RetryWithData(func() (*download.Download, error) {
		attempts++
		dl, err := opts.Resolve(ctx, u)
		if err == nil {
			return dl, nil
		}
		if !opts.Retryable(err) {
			return nil, backoff.Permanent(err)
		}
		logger.Warn("Resolve failed, will retry", "url", u, "attempt", attempts, "err", err)
		return nil, err
	}, b)
	res := Result{URL: u, Download: dl, Err: err, Attempts: attempts, Elapsed: time.Since(start)}
	if err != nil {
		logger.Error("Failed to resolve", "url", u, "attempts", attempts, "err", err)
		return res
	}
	if err := cache.Set(key, dl.Clone()); err != nil {
		logger.Debug("Result not cached", "err", err)
	}
	return res
}
