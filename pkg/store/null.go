package store

import (
	"context"
	"time"
)

// NullStore is a no-op store that never keeps anything.
type NullStore struct{}

// NewNullStore creates a null store.
func NewNullStore() *NullStore {
	return &NullStore{}
}

// Get always returns a miss.
func (NullStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set does nothing.
func (NullStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete does nothing.
func (NullStore) Delete(ctx context.Context, key string) error { return nil }

// Clear does nothing.
func (NullStore) Clear(ctx context.Context) error { return nil }

// Stats reports an empty store.
func (NullStore) Stats(ctx context.Context) (Stats, error) {
	return Stats{Backend: "none"}, nil
}

// Close does nothing.
func (NullStore) Close() error { return nil }

var (
	_ Store   = NullStore{}
	_ Statter = NullStore{}
)
