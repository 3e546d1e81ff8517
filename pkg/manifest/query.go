// Package manifest connects per-loader resolvers to the TTL caches.
//
// A loader implements [Query]: how to fetch its raw upstream data, how to
// extract one named view from it, and how to build the full descriptor. A
// [Repository] wraps a Query with two caches:
//
//   - raw: profile name → raw upstream data
//   - query: (profile name, variant) → extracted view
//
// Requests for different variants of the same profile share one raw fetch,
// and concurrent requests for the same variant share one extraction.
package manifest

import (
	"context"
	"time"

	"github.com/matzehuels/lodestone/pkg/version"
)

// DefaultTTL is the lifetime of raw and extracted entries unless a loader
// says otherwise.
const DefaultTTL = time.Hour

// Query is the contract every loader implements. Q is the loader's closed
// set of query variants and R its raw upstream schema.
type Query[Q comparable, R any] interface {
	// FetchFullData retrieves the raw upstream data for p. It must be
	// idempotent; the only side effect allowed is caching downloaded
	// artifacts on disk.
	FetchFullData(ctx context.Context, p *version.Profile) (R, error)

	// Extract derives the view q from raw. It must not modify raw.
	Extract(ctx context.Context, p *version.Profile, q Q, raw R) (version.MetaData, error)

	// VersionBuilder produces the complete, merged descriptor.
	VersionBuilder(ctx context.Context, p *version.Profile, raw R) (*version.Version, error)

	// CacheTTL is the lifetime of raw entries.
	CacheTTL() time.Duration

	// QueryTTL is the lifetime of extracted entries for q.
	QueryTTL(q Q) time.Duration
}
