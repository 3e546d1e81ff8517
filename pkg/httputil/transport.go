package httputil

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/dnscache"
)

// Options configures NewTransport.
type Options struct {
	// ConnectTimeout bounds TCP connection setup.
	ConnectTimeout time.Duration
	// TLSHandshakeTimeout bounds the TLS handshake.
	TLSHandshakeTimeout time.Duration
	// UserAgent is sent on every request that does not set one.
	UserAgent string
	// DNSRefresh is how often cached DNS entries are refreshed.
	// Zero disables the DNS cache.
	DNSRefresh time.Duration
	// BreakerThreshold is the number of consecutive failures that trips a
	// host's breaker. Zero disables circuit breaking.
	BreakerThreshold int
	// BreakerBackoff is the first open interval of a tripped breaker.
	BreakerBackoff time.Duration
	// BreakerMaxBackoff caps the open interval.
	BreakerMaxBackoff time.Duration
}

// DefaultOptions returns the settings used by the CLI and server.
func DefaultOptions() Options {
	return Options{
		ConnectTimeout:      10 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		UserAgent:           "lodestone",
		DNSRefresh:          5 * time.Minute,
		BreakerThreshold:    5,
		BreakerBackoff:      30 * time.Second,
		BreakerMaxBackoff:   5 * time.Minute,
	}
}

// Transport is the shared upstream RoundTripper.
type Transport struct {
	base     *http.Transport
	breakers *BreakerTransport
	next     http.RoundTripper
	ua       string

	resolver  *dnscache.Resolver
	stop      chan struct{}
	closeOnce sync.Once
}

// NewTransport builds a Transport. Call Close to stop the DNS refresher.
func NewTransport(opts Options) *Transport {
	dialer := &net.Dialer{
		Timeout:   opts.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}

	t := &Transport{
		ua:   opts.UserAgent,
		stop: make(chan struct{}),
	}

	t.base = &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   opts.TLSHandshakeTimeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	if opts.DNSRefresh > 0 {
		t.resolver = &dnscache.Resolver{}
		t.base.DialContext = cachedDialer(t.resolver, dialer)
		go t.refreshDNS(opts.DNSRefresh)
	}

	t.next = t.base
	if opts.BreakerThreshold > 0 {
		t.breakers = NewBreakerTransport(t.base, opts.BreakerThreshold, opts.BreakerBackoff, opts.BreakerMaxBackoff)
		t.next = t.breakers
	}
	return t
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.ua != "" && req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.ua)
	}
	return t.next.RoundTrip(req)
}

// BreakerStates reports "open" or "closed" per upstream host.
func (t *Transport) BreakerStates() map[string]string {
	if t.breakers == nil {
		return map[string]string{}
	}
	return t.breakers.States()
}

// Close stops the DNS refresher and drops idle connections.
func (t *Transport) Close() error {
	t.closeOnce.Do(func() { close(t.stop) })
	t.base.CloseIdleConnections()
	return nil
}

func (t *Transport) refreshDNS(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			t.resolver.Refresh(true)
		}
	}
}

func cachedDialer(resolver *dnscache.Resolver, dialer *net.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}
		if net.ParseIP(host) != nil {
			return dialer.DialContext(ctx, network, addr)
		}
		ips, err := resolver.LookupHost(ctx, host)
		if err != nil {
			return nil, err
		}
		var lastErr error
		for _, ip := range ips {
			conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
			if err == nil {
				return conn, nil
			}
			lastErr = err
		}
		if lastErr == nil {
			lastErr = fmt.Errorf("no addresses for %s", host)
		}
		return nil, fmt.Errorf("dial %s: %w", host, lastErr)
	}
}

var _ http.RoundTripper = (*Transport)(nil)
