package manifest

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lodestone/pkg/cache"
	"github.com/matzehuels/lodestone/pkg/errors"
	"github.com/matzehuels/lodestone/pkg/observability"
	"github.com/matzehuels/lodestone/pkg/version"
)

type queryKey[Q comparable] struct {
	name    string
	variant Q
}

// Repository caches raw data and extracted views for one loader.
type Repository[Q comparable, R any] struct {
	loader version.Loader
	query  Query[Q, R]

	raw     *cache.Cache[string, R]
	queries *cache.Cache[queryKey[Q], version.MetaData]

	sink   observability.Sink
	hooks  observability.ResolveHooks
	logger *log.Logger
}

// Options configures a Repository. Every field is optional.
type Options struct {
	Sink   observability.Sink
	Hooks  observability.Hooks
	Logger *log.Logger
	// Sweep enables background expiry on both caches.
	Sweep bool
	// Clock overrides time.Now in both caches.
	Clock cache.Clock
}

// NewRepository wraps q with a raw and a query cache.
func NewRepository[Q comparable, R any](loader version.Loader, q Query[Q, R], opts Options) *Repository[Q, R] {
	hooks := opts.Hooks.WithDefaults()
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	sink := opts.Sink
	if sink == nil {
		sink = observability.NoopSink{}
	}

	rawOpts := []cache.Option{cache.WithHooks(string(loader)+".raw", hooks.Cache)}
	queryOpts := []cache.Option{cache.WithHooks(string(loader)+".query", hooks.Cache)}
	if opts.Sweep {
		rawOpts = append(rawOpts, cache.WithSweeper())
		queryOpts = append(queryOpts, cache.WithSweeper())
	}
	if opts.Clock != nil {
		rawOpts = append(rawOpts, cache.WithClock(opts.Clock))
		queryOpts = append(queryOpts, cache.WithClock(opts.Clock))
	}

	return &Repository[Q, R]{
		loader:  loader,
		query:   q,
		raw:     cache.New[string, R](rawOpts...),
		queries: cache.New[queryKey[Q], version.MetaData](queryOpts...),
		sink:    sink,
		hooks:   hooks.Resolve,
		logger:  logger.WithPrefix(string(loader)),
	}
}

// Get returns the view q for profile p, fetching and extracting as needed.
func (r *Repository[Q, R]) Get(ctx context.Context, p *version.Profile, q Q) (version.MetaData, error) {
	variant := fmt.Sprint(q)
	start := time.Now()
	r.hooks.OnResolveStart(ctx, string(r.loader), variant)

	key := queryKey[Q]{name: p.Name, variant: q}
	md, err := r.queries.GetOrFetch(ctx, key, r.query.QueryTTL(q), func(ctx context.Context) (version.MetaData, error) {
		raw, err := r.Raw(ctx, p)
		if err != nil {
			return nil, err
		}
		r.logger.Debug("extracting", "profile", p.Name, "query", variant)
		return r.query.Extract(ctx, p, q, raw)
	})

	r.hooks.OnResolveComplete(ctx, string(r.loader), variant, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return md, nil
}

// Raw returns the raw upstream data for p, fetching it at most once per
// TTL window no matter how many callers ask.
func (r *Repository[Q, R]) Raw(ctx context.Context, p *version.Profile) (R, error) {
	if raw, ok := r.raw.Get(p.Name); ok {
		return raw, nil
	}
	return r.raw.GetOrFetch(ctx, p.Name, r.query.CacheTTL(), func(ctx context.Context) (R, error) {
		r.emit(observability.FetchingData, p, "")
		r.logger.Debug("fetching", "profile", p.Name, "minecraft", p.MinecraftVersion, "loader_version", p.LoaderVersion)

		raw, err := r.query.FetchFullData(ctx, p)
		if err != nil {
			if errors.Is(err, errors.ErrCodeVersionNotFound) || errors.Is(err, errors.ErrCodeNotFound) {
				r.emit(observability.ManifestNotFound, p, err.Error())
			}
			var zero R
			return zero, err
		}
		r.emit(observability.DataFetched, p, "")
		r.emit(observability.ManifestCached, p, "")
		return raw, nil
	})
}

// Build returns the full descriptor for p without caching it as a view.
func (r *Repository[Q, R]) Build(ctx context.Context, p *version.Profile) (*version.Version, error) {
	raw, err := r.Raw(ctx, p)
	if err != nil {
		return nil, err
	}
	return r.query.VersionBuilder(ctx, p, raw)
}

// Emit forwards a loader-level event, such as merge progress, to the sink.
func (r *Repository[Q, R]) Emit(kind observability.EventKind, p *version.Profile, detail string) {
	r.emit(kind, p, detail)
}

func (r *Repository[Q, R]) emit(kind observability.EventKind, p *version.Profile, detail string) {
	r.sink.Emit(observability.NewEvent(kind, string(r.loader), p.Name, detail))
}

// Len reports the number of raw and extracted entries.
func (r *Repository[Q, R]) Len() (raw, queries int) {
	return r.raw.Len(), r.queries.Len()
}

// Clear drops every cached entry.
func (r *Repository[Q, R]) Clear() {
	r.raw.Clear()
	r.queries.Clear()
}

// Close stops background sweepers.
func (r *Repository[Q, R]) Close() error {
	r.raw.Close()
	return r.queries.Close()
}
