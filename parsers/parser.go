package parsers

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/krau/sankaku-dl/common/utils/netutil"
	"github.com/krau/sankaku-dl/config"
	"github.com/krau/sankaku-dl/parsers/sankaku"
	"github.com/krau/sankaku-dl/pkg/download"
	"github.com/krau/sankaku-dl/pkg/parser"
)

var (
	parsers    []parser.Parser
	mu         sync.Mutex
	configOnce sync.Once
)

var (
	ErrNoParserFound      = errors.New("no parser found for the given URL")
	ErrResolveUnsupported = errors.New("parser cannot resolve downloads directly")
)

func init() {
	Add(sankaku.NewParser(netutil.DefaultParserHTTPClient(), sankaku.DefaultOptions()))
}

func Add(p ...parser.Parser) {
	mu.Lock()
	defer mu.Unlock()
	parsers = append(parsers, p...)
}

func configParsers() {
	mu.Lock()
	defer mu.Unlock()
	for _, pser := range parsers {
		configurable, ok := pser.(parser.ConfigurableParser)
		if !ok {
			continue
		}
		cfg := config.C().GetParserConfigByName(configurable.Name())
		if err := configurable.Configure(cfg); err != nil {
			log.Error("Error configuring parser", "parser", configurable.Name(), "err", err)
		}
	}
}

// Get returns the registered parsers, configuring them on first call.
func Get() []parser.Parser {
	configOnce.Do(configParsers)
	mu.Lock()
	defer mu.Unlock()
	return append([]parser.Parser(nil), parsers...)
}

func Find(url string) (parser.Parser, error) {
	for _, pser := range Get() {
		if pser.CanHandle(url) {
			return pser, nil
		}
	}
	return nil, ErrNoParserFound
}

func ParseWithContext(ctx context.Context, url string) (*parser.Item, error) {
	pser, err := Find(url)
	if err != nil {
		return nil, err
	}
	ch := make(chan *parser.Item, 1)
	errCh := make(chan error, 1)

	go func() {
		item, err := pser.Parse(ctx, url)
		if err != nil {
			errCh <- err
			return
		}
		ch <- item
	}()

	select {
	case item := <-ch:
		return item, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ResolveWithContext resolves url into a download through the first parser
// that handles it. A nil download with a nil error means nothing to download.
func ResolveWithContext(ctx context.Context, url string) (*download.Download, error) {
	pser, err := Find(url)
	if err != nil {
		return nil, err
	}
	resolver, ok := pser.(download.Resolver)
	if !ok {
		return nil, ErrResolveUnsupported
	}
	return resolver.ResolveURL(ctx, url)
}
