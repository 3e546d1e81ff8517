// Package store provides persistent byte stores for downloaded metadata.
//
// The in-memory manifest caches live in pkg/cache and vanish with the
// process. A Store keeps the expensive, content-addressed documents (asset
// indexes, version JSON, update-server metadata) across runs, or shares them
// between several resolver processes when backed by Redis.
//
// # Implementations
//
//   - [FileStore]: one JSON envelope per key under a directory, for the CLI
//   - [RedisStore]: a shared Redis instance, for the HTTP server
//   - [NullStore]: stores nothing, for tests or --no-cache
//
// All stores treat a zero TTL as "never expires".
package store

import (
	"context"
	"time"
)

// Store is a TTL-aware byte store.
type Store interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry owned by the store.
	Clear(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}

// Stats summarizes a store's contents.
type Stats struct {
	Backend string `json:"backend"`
	Entries int    `json:"entries"`
	Bytes   int64  `json:"bytes"`
}

// Statter is implemented by stores that can report their size.
type Statter interface {
	Stats(ctx context.Context) (Stats, error)
}
