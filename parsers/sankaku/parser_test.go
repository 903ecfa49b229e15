package sankaku

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"testing"
	"time"
)

func TestDecodeOptions(t *testing.T) {
	opts, err := DecodeOptions(nil)
	if err != nil {
		t.Fatalf("DecodeOptions(nil) failed: %v", err)
	}
	if !reflect.DeepEqual(opts, DefaultOptions()) {
		t.Fatalf("DecodeOptions(nil) = %+v, want defaults", opts)
	}

	opts, err = DecodeOptions(map[string]any{
		"user_agent":        "agent/1.0",
		"send_origin":       false,
		"fallback_statuses": []any{403, "404", 500},
		"preview_markers":   []any{"/preview/"},
		"api_endpoints":     map[string]any{"sankaku": "http://127.0.0.1:9000"},
		"timeout":           "5s",
		"rate_limit":        2,
		"force_fallback":    "true",
	})
	if err != nil {
		t.Fatalf("DecodeOptions failed: %v", err)
	}
	if opts.UserAgent != "agent/1.0" || opts.SendOrigin {
		t.Errorf("headers options not applied: %+v", opts)
	}
	if !reflect.DeepEqual(opts.FallbackStatuses, []int{403, 404, 500}) {
		t.Errorf("FallbackStatuses = %v", opts.FallbackStatuses)
	}
	if !reflect.DeepEqual(opts.PreviewMarkers, []string{"/preview/"}) {
		t.Errorf("PreviewMarkers = %v", opts.PreviewMarkers)
	}
	if opts.APIEndpoints["sankaku"] != "http://127.0.0.1:9000" {
		t.Errorf("APIEndpoints = %v", opts.APIEndpoints)
	}
	if opts.Timeout != 5*time.Second || opts.RateLimit != 2 || !opts.ForceFallback {
		t.Errorf("unexpected options: %+v", opts)
	}
	if opts.DefaultExt != DefaultExt || opts.Burst != 1 {
		t.Errorf("defaults lost: %+v", opts)
	}

	if _, err := DecodeOptions(map[string]any{"timeout": "soon"}); err == nil {
		t.Error("expected error for invalid timeout")
	}
}

func TestConfigure(t *testing.T) {
	p := new(SankakuParser)
	if err := p.Configure(map[string]any{"proxy": "socks5://127.0.0.1:1080"}); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if p.Resolver() == defaultResolver() {
		t.Fatal("Configure did not replace the resolver")
	}
	if err := p.Configure(map[string]any{"proxy": "ftp://nope"}); err == nil {
		t.Fatal("expected error for unsupported proxy")
	}
}

func TestParserParse(t *testing.T) {
	server, _ := setupAPI(t, map[string]func(http.ResponseWriter){
		"/posts/5": jsonBody(`{"file_url": "https://x/a.png", "id": "5", "md5": "ff", "tags": ["a", "b"], "author": {"name": "me"}}`),
		"/posts/6": jsonBody(`{"file_url": "https://s.sankakucomplex.com/data/preview/6.jpg"}`),
	})
	opts := DefaultOptions()
	opts.APIEndpoints = map[string]string{"sankaku": server.URL}
	p := NewParser(server.Client(), opts)

	if !p.CanHandle("https://sankaku.app/posts/5") {
		t.Fatal("CanHandle returned false for a post URL")
	}
	item, err := p.Parse(context.Background(), "https://sankaku.app/posts/5")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if item.Site != "sankaku" || item.Author != "me" || !reflect.DeepEqual(item.Tags, []string{"a", "b"}) {
		t.Fatalf("unexpected item: %+v", item)
	}
	if len(item.Resources) != 1 {
		t.Fatalf("expected 1 resource, got %d", len(item.Resources))
	}
	res := item.Resources[0]
	if res.URL != "https://x/a.png" || res.Filename != "5.png" || res.Hash["md5"] != "ff" {
		t.Fatalf("unexpected resource: %+v", res)
	}
	if res.Headers["Referer"] != "https://sankaku.app/" {
		t.Fatalf("resource headers missing Referer: %v", res.Headers)
	}

	item, err = p.Parse(context.Background(), "https://sankaku.app/posts/6")
	if err != nil {
		t.Fatalf("Parse of preview-only post failed: %v", err)
	}
	if len(item.Resources) != 0 {
		t.Fatalf("expected no resources for preview-only post, got %v", item.Resources)
	}

	if _, err := p.Parse(context.Background(), "https://example.com/posts/5"); !errors.Is(err, ErrInvalidURL) {
		t.Fatalf("expected ErrInvalidURL, got %v", err)
	}
}

func TestParserMeta(t *testing.T) {
	m := new(SankakuParser).Meta()
	if m.Name != "sankaku" || len(m.Hosts) != 2 {
		t.Fatalf("unexpected meta: %+v", m)
	}
}
