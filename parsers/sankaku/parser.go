package sankaku

import (
	"context"
	"fmt"
	"sync"

	"github.com/blang/semver"
	"github.com/krau/sankaku-dl/common/utils/netutil"
	"github.com/krau/sankaku-dl/pkg/download"
	"github.com/krau/sankaku-dl/pkg/parser"
	"github.com/krau/sankaku-dl/pkg/sink"
	"github.com/mitchellh/mapstructure"
)

var (
	_ parser.ConfigurableParser = (*SankakuParser)(nil)
	_ parser.DescribedParser    = (*SankakuParser)(nil)
	_ download.Resolver         = (*SankakuParser)(nil)
)

var version = semver.MustParse("1.2.0")

// SankakuParser adapts the Resolver to the host parser contract.
// The zero value is usable and resolves with DefaultOptions.
type SankakuParser struct {
	mu       sync.RWMutex
	resolver *Resolver
}

var defaultResolver = sync.OnceValue(func() *Resolver {
	return NewResolver(netutil.DefaultParserHTTPClient(), DefaultOptions())
})

func NewParser(client Doer, opts Options) *SankakuParser {
	return &SankakuParser{resolver: NewResolver(client, opts)}
}

func (p *SankakuParser) Name() string {
	return "sankaku"
}

func (p *SankakuParser) Meta() parser.Meta {
	hosts := make([]string, 0, len(sites))
	for _, s := range Sites() {
		hosts = append(hosts, s.Domain)
	}
	return parser.Meta{
		Name:        p.Name(),
		Version:     version,
		Description: "Sankaku Channel and Idol Complex posts",
		Hosts:       hosts,
	}
}

func (p *SankakuParser) CanHandle(u string) bool {
	_, ok := MatchURL(u)
	return ok
}

func (p *SankakuParser) Resolver() *Resolver {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.resolver == nil {
		return defaultResolver()
	}
	return p.resolver
}

func (p *SankakuParser) ResolveURL(ctx context.Context, u string) (*download.Download, error) {
	ref, ok := MatchURL(u)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidURL, u)
	}
	return p.Resolver().Resolve(ctx, ref)
}

// Parse returns an item without resources when the post has no downloadable file.
func (p *SankakuParser) Parse(ctx context.Context, u string) (*parser.Item, error) {
	ref, ok := MatchURL(u)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidURL, u)
	}
	dl, err := p.Resolver().Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if dl == nil {
		return &parser.Item{
			Site:      ref.Site.Category,
			URL:       ref.URL(),
			Title:     ref.PostID,
			Tags:      make([]string, 0),
			Resources: make([]parser.Resource, 0),
			Extra:     make(map[string]any),
		}, nil
	}
	return sink.ToItem(dl), nil
}

func (p *SankakuParser) Configure(cfg map[string]any) error {
	opts, err := DecodeOptions(cfg)
	if err != nil {
		return err
	}
	client, err := netutil.NewParserHTTPClient(netutil.ClientOptions{
		Proxy:     opts.Proxy,
		Timeout:   opts.Timeout,
		RateLimit: opts.RateLimit,
		Burst:     opts.Burst,
	})
	if err != nil {
		return fmt.Errorf("failed to create http client: %w", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resolver = NewResolver(client, opts)
	return nil
}

// DecodeOptions overlays cfg on DefaultOptions. Keys missing from cfg keep their defaults.
func DecodeOptions(cfg map[string]any) (Options, error) {
	opts := DefaultOptions()
	if cfg == nil {
		return opts, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ZeroFields:       true,
		Result:           &opts,
	})
	if err != nil {
		return opts, err
	}
	if err := dec.Decode(cfg); err != nil {
		return opts, fmt.Errorf("invalid sankaku parser config: %w", err)
	}
	return opts, nil
}
