package sankaku

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/duke-git/lancet/v2/slice"
	"github.com/gabriel-vasile/mimetype"
	"github.com/krau/sankaku-dl/common/utils/strutil"
	"github.com/krau/sankaku-dl/pkg/download"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultExt       = "jpg"

	maxBodySize = 8 << 20
)

var DefaultPreviewMarkers = []string{"s.sankakucomplex.com/data/preview"}

// Doer is the HTTP transport the resolver runs on. Timeouts, proxies and
// rate limits belong to it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Options struct {
	UserAgent  string            `mapstructure:"user_agent"`
	SendOrigin bool              `mapstructure:"send_origin"`
	Headers    map[string]string `mapstructure:"headers"`
	DefaultExt string            `mapstructure:"default_ext"`
	// PreviewMarkers are substrings of file URLs that only ever point at previews.
	PreviewMarkers []string `mapstructure:"preview_markers"`
	// FallbackStatuses are the primary-route statuses that trigger the /fu route.
	FallbackStatuses []int `mapstructure:"fallback_statuses"`
	ForceFallback    bool  `mapstructure:"force_fallback"`
	// APIEndpoints overrides the API base URL per site category.
	APIEndpoints map[string]string `mapstructure:"api_endpoints"`

	Proxy     string        `mapstructure:"proxy"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"`
	Burst     int           `mapstructure:"burst"`
}

func DefaultOptions() Options {
	return Options{
		UserAgent:        DefaultUserAgent,
		SendOrigin:       true,
		Headers:          map[string]string{},
		DefaultExt:       DefaultExt,
		PreviewMarkers:   slices.Clone(DefaultPreviewMarkers),
		FallbackStatuses: []int{http.StatusNotFound},
		APIEndpoints:     map[string]string{},
		Timeout:          30 * time.Second,
		Burst:            1,
	}
}

// Resolver turns a post reference into a download. It is immutable and safe
// for concurrent use.
type Resolver struct {
	client Doer
	opts   Options
}

func NewResolver(client Doer, opts Options) *Resolver {
	opts.Headers = maps.Clone(opts.Headers)
	opts.APIEndpoints = maps.Clone(opts.APIEndpoints)
	opts.PreviewMarkers = slices.Clone(opts.PreviewMarkers)
	opts.FallbackStatuses = slices.Clone(opts.FallbackStatuses)
	if opts.DefaultExt == "" {
		opts.DefaultExt = DefaultExt
	}
	return &Resolver{client: client, opts: opts}
}

// Resolve fetches the post and builds its download.
//
// It returns nil, nil when the post has no downloadable original: missing
// after both routes, no file_url, or a preview-only file_url. Errors are
// *TransportError or *FallbackExhausted.
func (r *Resolver) Resolve(ctx context.Context, ref PostReference) (*download.Download, error) {
	logger := log.FromContext(ctx).With("site", ref.Site.Category, "post", ref.PostID)
	headers := r.Headers(ref.Site)

	rec, err := r.fetchRecord(log.WithContext(ctx, logger), ref, headers)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		logger.Warn("Post not found")
		return nil, nil
	}

	dl, err := r.build(ref, rec, headers)
	if errors.Is(err, ErrNoFileAvailable) {
		logger.Warn("Skipping post", "reason", err)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	logger.Debug("Resolved post", "url", dl.URL, "filename", dl.Filename)
	return dl, nil
}

// Headers returns the request headers the API and the file CDN expect.
// Both reject requests without Referer and a browser User-Agent with 403.
func (r *Resolver) Headers(site Site) map[string]string {
	h := map[string]string{"Referer": site.Origin()}
	if r.opts.SendOrigin {
		h["Origin"] = strings.TrimSuffix(site.Origin(), "/")
	}
	if r.opts.UserAgent != "" {
		h["User-Agent"] = r.opts.UserAgent
	}
	for k, v := range r.opts.Headers {
		h[http.CanonicalHeaderKey(k)] = v
	}
	return h
}

func (r *Resolver) apiBase(site Site) string {
	if base, ok := r.opts.APIEndpoints[site.Category]; ok && base != "" {
		return strings.TrimRight(base, "/")
	}
	return "https://" + site.APIDomain
}

func (r *Resolver) fetchRecord(ctx context.Context, ref PostReference, headers map[string]string) (*PostRecord, error) {
	logger := log.FromContext(ctx)
	base := r.apiBase(ref.Site)
	postID := url.PathEscape(ref.PostID)

	if !r.opts.ForceFallback {
		rec, err := r.fetchPrimary(ctx, fmt.Sprintf("%s/posts/%s", base, postID), headers)
		if !errors.Is(err, ErrNotFoundViaPrimary) {
			return rec, err
		}
		logger.Debug("Primary API missed, trying fallback", "reason", err)
	}

	rec, err := r.fetchFallback(ctx, fmt.Sprintf("%s/posts/%s/fu", base, postID), headers)
	if err != nil {
		return nil, &FallbackExhausted{PostID: ref.PostID, Err: err}
	}
	return rec, nil
}

func (r *Resolver) fetchPrimary(ctx context.Context, endpoint string, headers map[string]string) (*PostRecord, error) {
	body, err := r.get(ctx, endpoint, headers)
	if err != nil {
		var te *TransportError
		if errors.As(err, &te) && slices.Contains(r.opts.FallbackStatuses, te.StatusCode) {
			return nil, fmt.Errorf("%w: status %d", ErrNotFoundViaPrimary, te.StatusCode)
		}
		return nil, err
	}
	var rec *PostRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return rec, nil
}

// fetchFallback reads the /fu route, where the record sits under "data".
// Older deployments return it at the root, which is accepted too.
func (r *Resolver) fetchFallback(ctx context.Context, endpoint string, headers map[string]string) (*PostRecord, error) {
	body, err := r.get(ctx, endpoint, headers)
	if err != nil {
		return nil, err
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode fallback response: %w", err)
	}
	payload := body
	if data, ok := envelope["data"]; ok {
		payload = data
	}
	if bytes.Equal(bytes.TrimSpace(payload), []byte("null")) {
		return nil, nil
	}
	var rec PostRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode fallback post data: %w", err)
	}
	return &rec, nil
}

func (r *Resolver) get(ctx context.Context, endpoint string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Accept", "application/json")
	log.FromContext(ctx).Debug("Requesting API", "endpoint", endpoint)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, &TransportError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	return body, nil
}

func (r *Resolver) build(ref PostReference, rec *PostRecord, headers map[string]string) (*download.Download, error) {
	fileURL := strings.TrimSpace(string(rec.FileURL))
	if fileURL == "" {
		return nil, fmt.Errorf("%w: no file_url", ErrNoFileAvailable)
	}
	if r.isPreview(fileURL) {
		return nil, fmt.Errorf("%w: original deleted, only a preview is left", ErrNoFileAvailable)
	}

	id := string(rec.ID)
	if id == "" {
		id = ref.PostID
	}
	ext := r.extension(rec, fileURL)
	return &download.Download{
		URL:       fileURL,
		Filename:  download.FileName(id, ext),
		Extension: ext,
		ID:        id,
		Category:  ref.Site.Category,
		Source:    ref.URL(),
		Headers:   maps.Clone(headers),
		Metadata:  rec.Metadata(),
	}, nil
}

func (r *Resolver) extension(rec *PostRecord, fileURL string) string {
	for _, ext := range []string{string(rec.FileExt), string(rec.Extension), strutil.ExtFromURL(fileURL), extFromMIME(string(rec.FileType))} {
		if ext = strings.TrimPrefix(strings.TrimSpace(ext), "."); ext != "" {
			return ext
		}
	}
	return r.opts.DefaultExt
}

func extFromMIME(mt string) string {
	if mt == "" {
		return ""
	}
	if m := mimetype.Lookup(strings.ToLower(strings.TrimSpace(mt))); m != nil {
		return m.Extension()
	}
	return ""
}

func (r *Resolver) isPreview(fileURL string) bool {
	markers := slice.Filter(r.opts.PreviewMarkers, func(_ int, m string) bool {
		return m != "" && strings.Contains(fileURL, m)
	})
	return len(markers) > 0
}
