// Package cache provides an in-memory TTL cache with single-flight fetch
// coalescing.
//
// [Cache.GetOrFetch] is the central primitive. Concurrent callers for the
// same key wait on one per-key lock, so a cold key triggers exactly one
// fetch no matter how many callers arrive at once. Callers for different
// keys never block each other. Failed fetches are never cached; the next
// caller simply tries again.
//
//	c := cache.New[string, *Manifest](cache.WithSweeper())
//	defer c.Close()
//
//	m, err := c.GetOrFetch(ctx, "1.20.1", time.Hour, func(ctx context.Context) (*Manifest, error) {
//	    return fetchManifest(ctx, "1.20.1")
//	})
//
// Cached values are shared between callers and must be treated as
// immutable.
//
// # Expiry
//
// Expired entries are invisible to readers immediately and are removed
// lazily on the read path. With [WithSweeper], a background goroutine also
// removes them, sleeping until the next entry is due (at least
// [MinSweepInterval], at most [MaxSweepInterval]).
package cache
