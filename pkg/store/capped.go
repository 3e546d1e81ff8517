package store

import (
	"context"
	"time"
)

// Capped bounds the TTL of every write to s by max. Writes without a TTL
// get max. A non-positive max returns s unchanged.
func Capped(s Store, max time.Duration) Store {
	if max <= 0 {
		return s
	}
	return &capped{Store: s, max: max}
}

type capped struct {
	Store
	max time.Duration
}

func (c *capped) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl <= 0 || ttl > c.max {
		ttl = c.max
	}
	return c.Store.Set(ctx, key, data, ttl)
}

// Stats forwards to the wrapped store when it reports its size.
func (c *capped) Stats(ctx context.Context) (Stats, error) {
	if s, ok := c.Store.(Statter); ok {
		return s.Stats(ctx)
	}
	return Stats{Backend: "unknown"}, nil
}
