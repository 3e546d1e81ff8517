// Package observability provides hooks for metrics and progress events.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Hooks and event sinks are
// constructed by the composition root and passed to the components that emit
// them; nothing in this package is global.
//
// # Architecture
//
// Two mechanisms are provided:
//   - Hooks: typed callbacks for resolution, cache and HTTP activity, suited
//     to metrics backends (see [Prometheus])
//   - Events: structured progress notifications delivered to a [Sink], suited
//     to UIs and logs (see [Broadcaster])
//
// Every interface has a no-op implementation, and a nil hook or sink must
// never change resolution behavior.
//
// # Usage
//
//	prom := observability.NewPrometheus("lodestone")
//	hooks := observability.Hooks{Resolve: prom, Cache: prom, HTTP: prom}
//
//	events := observability.NewBroadcaster()
//	ch, cancel := events.Subscribe(64)
//	defer cancel()
package observability

import (
	"context"
	"time"
)

// =============================================================================
// Resolve Hooks
// =============================================================================

// ResolveHooks receives events from loader resolution.
type ResolveHooks interface {
	OnResolveStart(ctx context.Context, loader, query string)
	OnResolveComplete(ctx context.Context, loader, query string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, cache string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, cache string)

	// OnCacheSet records a cache write. Size is -1 when unknown.
	OnCacheSet(ctx context.Context, cache string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout, open breaker).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopResolveHooks is a no-op implementation of ResolveHooks.
type NoopResolveHooks struct{}

func (NoopResolveHooks) OnResolveStart(context.Context, string, string) {}
func (NoopResolveHooks) OnResolveComplete(context.Context, string, string, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Hook Bundle
// =============================================================================

// Hooks bundles the hook interfaces handed to the resolver.
type Hooks struct {
	Resolve ResolveHooks
	Cache   CacheHooks
	HTTP    HTTPHooks
}

// WithDefaults returns h with every nil member replaced by its no-op.
func (h Hooks) WithDefaults() Hooks {
	if h.Resolve == nil {
		h.Resolve = NoopResolveHooks{}
	}
	if h.Cache == nil {
		h.Cache = NoopCacheHooks{}
	}
	if h.HTTP == nil {
		h.HTTP = NoopHTTPHooks{}
	}
	return h
}
