package cache

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/lodestone/pkg/observability"
)

// Sweep interval bounds.
const (
	MinSweepInterval = time.Second
	MaxSweepInterval = 5 * time.Minute
)

// Clock returns the current time.
type Clock func() time.Time

// FetchFunc produces the value for a missing key.
type FetchFunc[V any] func(ctx context.Context) (V, error)

type entry[V any] struct {
	value   V
	expires time.Time
}

// keyLock serializes fetches for one key. The channel is a one-slot
// semaphore so waiting can be abandoned when the context ends. waiters is
// guarded by Cache.locksMu.
type keyLock struct {
	sem     chan struct{}
	waiters int
}

// Cache is a concurrent TTL cache. The zero value is not usable; create
// one with New.
type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]entry[V]

	locksMu sync.Mutex
	locks   map[K]*keyLock

	now   Clock
	name  string
	hooks observability.CacheHooks

	sweep     bool
	deadline  time.Time // next scheduled sweep, guarded by mu
	sweeps    int       // completed sweeps, guarded by mu
	wake      chan struct{}
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	clock Clock
	sweep bool
	name  string
	hooks observability.CacheHooks
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithSweeper starts a background goroutine that removes expired entries.
// Call Close to stop it.
func WithSweeper() Option {
	return func(o *options) { o.sweep = true }
}

// WithHooks reports hits, misses and writes under the given cache name.
func WithHooks(name string, h observability.CacheHooks) Option {
	return func(o *options) {
		o.name = name
		o.hooks = h
	}
}

// New creates an empty cache.
func New[K comparable, V any](opts ...Option) *Cache[K, V] {
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.hooks == nil {
		o.hooks = observability.NoopCacheHooks{}
	}

	c := &Cache[K, V]{
		items: make(map[K]entry[V]),
		locks: make(map[K]*keyLock),
		now:   o.clock,
		name:  o.name,
		hooks: o.hooks,
		sweep: o.sweep,
		wake:  make(chan struct{}, 1),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	if c.sweep {
		go c.sweeper()
	} else {
		close(c.done)
	}
	return c
}

// Get returns the value for key if present and not expired.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	v, ok := c.lookup(key)
	if ok {
		c.hooks.OnCacheHit(context.Background(), c.name)
	} else {
		c.hooks.OnCacheMiss(context.Background(), c.name)
	}
	return v, ok
}

// lookup reads under the shared lock. An expired entry is removed under
// the exclusive lock after re-checking, since a concurrent Insert may have
// refreshed it in between.
func (c *Cache[K, V]) lookup(key K) (V, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}
	now := c.now()
	if now.Before(e.expires) {
		return e.value, true
	}

	c.mu.Lock()
	if cur, ok := c.items[key]; ok && !now.Before(cur.expires) {
		delete(c.items, key)
	}
	c.mu.Unlock()
	return zero, false
}

// Insert stores value under key, replacing any existing entry, and
// expires it ttl from now.
func (c *Cache[K, V]) Insert(key K, value V, ttl time.Duration) {
	expires := c.now().Add(ttl)
	c.mu.Lock()
	c.items[key] = entry[V]{value: value, expires: expires}
	early := c.sweep && expires.Before(c.deadline)
	c.mu.Unlock()

	c.hooks.OnCacheSet(context.Background(), c.name, -1)
	if early {
		select {
		case c.wake <- struct{}{}:
		default:
		}
	}
}

// GetOrFetch returns the cached value for key, or calls fetch to produce
// it. At most one fetch per key runs at a time; callers that arrive while
// it runs wait for it and then read its result from the cache. A fetch
// error is returned to the caller that ran it and nothing is cached.
//
// Waiting for another caller's fetch honors ctx; a fetch that has started
// runs until fetch itself returns.
func (c *Cache[K, V]) GetOrFetch(ctx context.Context, key K, ttl time.Duration, fetch FetchFunc[V]) (V, error) {
	if v, ok := c.lookup(key); ok {
		c.hooks.OnCacheHit(ctx, c.name)
		return v, nil
	}

	l := c.acquire(key)
	defer c.release(key, l)

	var zero V
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	defer func() { <-l.sem }()

	if v, ok := c.lookup(key); ok {
		c.hooks.OnCacheHit(ctx, c.name)
		return v, nil
	}
	c.hooks.OnCacheMiss(ctx, c.name)

	v, err := fetch(ctx)
	if err != nil {
		return zero, err
	}
	c.Insert(key, v, ttl)
	return v, nil
}

// acquire returns the lock for key, creating it on first use, and
// registers the caller as a waiter.
func (c *Cache[K, V]) acquire(key K) *keyLock {
	c.locksMu.Lock()
	defer c.locksMu.Unlock()
	l, ok := c.locks[key]
	if !ok {
		l = &keyLock{sem: make(chan struct{}, 1)}
		c.locks[key] = l
	}
	l.waiters++
	return l
}

// release unregisters the caller and drops the lock once nobody else
// holds or waits on it.
func (c *Cache[K, V]) release(key K, l *keyLock) {
	c.locksMu.Lock()
	defer c.locksMu.Unlock()
	l.waiters--
	if l.waiters == 0 && c.locks[key] == l {
		delete(c.locks, key)
	}
}

// Remove deletes key.
func (c *Cache[K, V]) Remove(key K) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Clear removes every entry. Fetches already in flight still insert
// their results when they finish.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	c.items = make(map[K]entry[V])
	c.mu.Unlock()
}

// Len returns the number of stored entries, including expired entries
// that have not been removed yet.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the sweeper, if any. The cache stays usable.
func (c *Cache[K, V]) Close() error {
	c.closeOnce.Do(func() { close(c.stop) })
	<-c.done
	return nil
}

func (c *Cache[K, V]) sweeper() {
	defer close(c.done)
	timer := time.NewTimer(c.sweepOnce())
	defer timer.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-c.wake:
		case <-timer.C:
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(c.sweepOnce())
	}
}

// sweepOnce removes expired entries and returns how long to sleep until
// the next one is due, clamped to [MinSweepInterval, MaxSweepInterval].
func (c *Cache[K, V]) sweepOnce() time.Duration {
	now := c.now()

	c.mu.RLock()
	var expired []K
	for k, e := range c.items {
		if !now.Before(e.expires) {
			expired = append(expired, k)
		}
	}
	c.mu.RUnlock()

	c.mu.Lock()
	now = c.now()
	for _, k := range expired {
		if e, ok := c.items[k]; ok && !now.Before(e.expires) {
			delete(c.items, k)
		}
	}
	var next time.Time
	for _, e := range c.items {
		if next.IsZero() || e.expires.Before(next) {
			next = e.expires
		}
	}
	sleep := MaxSweepInterval
	if !next.IsZero() {
		sleep = clampSweep(next.Sub(now))
	}
	c.deadline = now.Add(sleep)
	c.sweeps++
	c.mu.Unlock()

	return sleep
}

func clampSweep(d time.Duration) time.Duration {
	switch {
	case d < MinSweepInterval:
		return MinSweepInterval
	case d > MaxSweepInterval:
		return MaxSweepInterval
	}
	return d
}
