// Package httputil builds the shared HTTP transport used for every
// upstream request.
//
// # Overview
//
// [NewTransport] layers three concerns over a pooled [http.Transport]:
//
//   - DNS caching: hostnames are resolved through rs/dnscache and refreshed
//     periodically, so a burst of per-library requests does not hammer the
//     system resolver
//   - Circuit breaking: each upstream host gets its own breaker; after a run
//     of consecutive failures requests to that host fail fast with
//     [ErrUpstreamDown] until an exponential backoff lets a probe through
//   - A User-Agent on every request
//
// The transport keeps connections alive, attempts HTTP/2 and accepts gzip.
//
// # No retries
//
// Nothing here retries. A failed request surfaces to the caller, and the
// manifest caches never store failures, so the next resolution simply
// tries again. The breaker only decides how quickly a dead host is given up.
//
// Usage:
//
//	t := httputil.NewTransport(httputil.DefaultOptions())
//	defer t.Close()
//	client := &http.Client{Transport: t, Timeout: 30 * time.Second}
package httputil
