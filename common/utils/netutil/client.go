package netutil

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const defaultParserTimeout = 30 * time.Second

type ClientOptions struct {
	Proxy     string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables limiting
	Burst     int
}

// DefaultParserHTTPClient honours the environment proxy settings.
func DefaultParserHTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = http.ProxyFromEnvironment
	return &http.Client{
		Transport: transport,
		Timeout:   defaultParserTimeout,
	}
}

func NewParserHTTPClient(opts ClientOptions) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = http.ProxyFromEnvironment
	if opts.Proxy != "" {
		if err := applyProxy(transport, opts.Proxy); err != nil {
			return nil, err
		}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultParserTimeout
	}
	var rt http.RoundTripper = transport
	if opts.RateLimit > 0 {
		rt = NewRateLimitedTransport(rt, opts.RateLimit, opts.Burst)
	}
	return &http.Client{
		Transport: rt,
		Timeout:   timeout,
	}, nil
}

type rateLimitedTransport struct {
	next    http.RoundTripper
	limiter *rate.Limiter
}

// NewRateLimitedTransport waits on a token bucket before every request.
func NewRateLimitedTransport(next http.RoundTripper, perSecond float64, burst int) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if burst < 1 {
		burst = 1
	}
	return &rateLimitedTransport{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.next.RoundTrip(req)
}
