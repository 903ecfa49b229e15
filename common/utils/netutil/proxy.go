package netutil

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"golang.org/x/net/proxy"
)

func NewProxyDialer(proxyUrl string) (proxy.Dialer, error) {
	url, err := url.Parse(proxyUrl)
	if err != nil {
		return nil, err
	}
	return proxy.FromURL(url, proxy.Direct)
}

// applyProxy routes transport through proxyUrl. http(s) proxies use CONNECT,
// socks5/socks5h go through an x/net/proxy dialer.
func applyProxy(transport *http.Transport, proxyUrl string) error {
	u, err := url.Parse(proxyUrl)
	if err != nil {
		return fmt.Errorf("invalid proxy url: %w", err)
	}
	switch u.Scheme {
	case "http", "https":
		transport.Proxy = http.ProxyURL(u)
		return nil
	case "socks5", "socks5h":
	default:
		return fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
	}
	dialer, err := NewProxyDialer(proxyUrl)
	if err != nil {
		return fmt.Errorf("failed to create proxy dialer: %w", err)
	}
	transport.Proxy = nil
	if cd, ok := dialer.(proxy.ContextDialer); ok {
		transport.DialContext = cd.DialContext
	} else {
		transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		}
	}
	return nil
}

func NewProxyHTTPClient(proxyUrl string) (*http.Client, error) {
	return NewParserHTTPClient(ClientOptions{Proxy: proxyUrl})
}
