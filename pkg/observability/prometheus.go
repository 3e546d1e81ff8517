package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus implements ResolveHooks, CacheHooks and HTTPHooks with
// Prometheus metrics on a private registry.
type Prometheus struct {
	resolves        *prometheus.CounterVec
	resolveDuration *prometheus.HistogramVec

	cacheOps   *prometheus.CounterVec
	cacheBytes *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpErrors   *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewPrometheus creates a Prometheus hook set.
func NewPrometheus(namespace string) *Prometheus {
	if namespace == "" {
		namespace = "lodestone"
	}

	p := &Prometheus{registry: prometheus.NewRegistry()}

	p.resolves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolves_total",
			Help:      "Total number of loader resolutions",
		},
		[]string{"loader", "query", "status"},
	)

	p.resolveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolve_duration_seconds",
			Help:      "Duration of loader resolutions",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"loader", "query"},
	)

	p.cacheOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache lookups and writes by cache and result",
		},
		[]string{"cache", "op"},
	)

	p.cacheBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to byte-oriented caches",
		},
		[]string{"cache"},
	)

	p.httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Upstream HTTP responses by host and status code",
		},
		[]string{"method", "host", "code"},
	)

	p.httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of upstream HTTP requests",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "host"},
	)

	p.httpErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "Upstream HTTP requests that failed without a response",
		},
		[]string{"method", "host"},
	)

	p.registry.MustRegister(
		p.resolves,
		p.resolveDuration,
		p.cacheOps,
		p.cacheBytes,
		p.httpRequests,
		p.httpDuration,
		p.httpErrors,
	)

	return p
}

// Registry returns the registry the metrics are registered on.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func (p *Prometheus) OnResolveStart(context.Context, string, string) {}

func (p *Prometheus) OnResolveComplete(_ context.Context, loader, query string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	p.resolves.WithLabelValues(loader, query, status).Inc()
	p.resolveDuration.WithLabelValues(loader, query).Observe(duration.Seconds())
}

func (p *Prometheus) OnCacheHit(_ context.Context, cache string) {
	p.cacheOps.WithLabelValues(cache, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, cache string) {
	p.cacheOps.WithLabelValues(cache, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, cache string, size int) {
	p.cacheOps.WithLabelValues(cache, "set").Inc()
	if size > 0 {
		p.cacheBytes.WithLabelValues(cache).Add(float64(size))
	}
}

func (p *Prometheus) OnRequest(context.Context, string, string, string) {}

func (p *Prometheus) OnResponse(_ context.Context, method, host, _ string, statusCode int, duration time.Duration) {
	p.httpRequests.WithLabelValues(method, host, statusCodeLabel(statusCode)).Inc()
	p.httpDuration.WithLabelValues(method, host).Observe(duration.Seconds())
}

func (p *Prometheus) OnError(_ context.Context, method, host, _ string, _ error) {
	p.httpErrors.WithLabelValues(method, host).Inc()
}

func statusCodeLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	case code >= 200:
		return "2xx"
	}
	return "other"
}

var (
	_ ResolveHooks = (*Prometheus)(nil)
	_ CacheHooks   = (*Prometheus)(nil)
	_ HTTPHooks    = (*Prometheus)(nil)
)
