// Package resolve wires every loader into one Resolver.
//
// The Resolver owns the shared HTTP transport, the persistent store and
// one repository per loader. Loaders that overlay another loader (Fabric
// on vanilla, an update server on anything) receive the Resolver itself as
// their base, so every nested resolution goes through the same caches.
package resolve

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lodestone/pkg/cache"
	"github.com/matzehuels/lodestone/pkg/config"
	"github.com/matzehuels/lodestone/pkg/errors"
	"github.com/matzehuels/lodestone/pkg/httputil"
	"github.com/matzehuels/lodestone/pkg/integrations"
	"github.com/matzehuels/lodestone/pkg/integrations/installer"
	"github.com/matzehuels/lodestone/pkg/integrations/loadermeta"
	"github.com/matzehuels/lodestone/pkg/integrations/mojang"
	"github.com/matzehuels/lodestone/pkg/integrations/updateserver"
	"github.com/matzehuels/lodestone/pkg/loaders"
	"github.com/matzehuels/lodestone/pkg/loaders/fabric"
	"github.com/matzehuels/lodestone/pkg/loaders/forge"
	"github.com/matzehuels/lodestone/pkg/loaders/neoforge"
	"github.com/matzehuels/lodestone/pkg/loaders/processor"
	"github.com/matzehuels/lodestone/pkg/loaders/quilt"
	updateloader "github.com/matzehuels/lodestone/pkg/loaders/updateserver"
	"github.com/matzehuels/lodestone/pkg/loaders/vanilla"
	"github.com/matzehuels/lodestone/pkg/manifest"
	"github.com/matzehuels/lodestone/pkg/observability"
	"github.com/matzehuels/lodestone/pkg/store"
	"github.com/matzehuels/lodestone/pkg/version"
)

// Options carries the collaborators New does not build from config.
// Every field is optional.
type Options struct {
	Logger *log.Logger
	Sink   observability.Sink
	Hooks  observability.Hooks
	// Env selects rule-guarded libraries. Defaults to the host platform.
	Env *mojang.Env
	// Store replaces the store named by the config.
	Store store.Store
	// HTTPClient replaces the transport built from the config.
	HTTPClient *http.Client
}

// Resolver resolves any profile. It is safe for concurrent use.
type Resolver struct {
	cfg       *config.Config
	logger    *log.Logger
	transport *httputil.Transport
	store     store.Store

	mojang    *mojang.Client
	fabricAPI *loadermeta.Client
	quiltAPI  *loadermeta.Client
	manifests *cache.Cache[string, *mojang.Manifest]

	vanilla      *vanilla.Loader
	fabric       *fabric.Loader
	quilt        *fabric.Loader
	forge        *forge.Loader
	neoforge     *forge.Loader
	updateServer *updateloader.Loader
}

// New builds a Resolver from cfg. ctx bounds connecting to the store.
func New(ctx context.Context, cfg *config.Config, opts Options) (*Resolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Resolver{cfg: cfg, logger: opts.Logger, store: opts.Store}
	if r.logger == nil {
		r.logger = log.New(io.Discard)
	}
	hooks := opts.Hooks.WithDefaults()

	if r.store == nil {
		s, err := OpenStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		r.store = s
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		topts := httputil.DefaultOptions()
		topts.ConnectTimeout = cfg.HTTP.ConnectTimeout
		topts.UserAgent = cfg.HTTP.UserAgent
		topts.DNSRefresh = cfg.HTTP.DNSRefresh
		topts.BreakerThreshold = cfg.HTTP.BreakerThreshold
		r.transport = httputil.NewTransport(topts)
		httpClient = &http.Client{Transport: r.transport, Timeout: cfg.HTTP.Timeout}
	}

	base := integrations.NewClient(httpClient, integrations.Options{
		Store:  r.store,
		Hooks:  hooks.HTTP,
		Logger: r.logger.WithPrefix("http"),
	})

	mopts := manifest.Options{
		Sink:   opts.Sink,
		Hooks:  hooks,
		Logger: r.logger,
		Sweep:  cfg.Cache.Sweep,
	}
	ttl := cfg.Cache.TTL

	r.mojang = mojang.NewClient(base, cfg.Upstream.Manifest)
	r.fabricAPI = loadermeta.NewClient(base, cfg.Upstream.Fabric)
	r.quiltAPI = loadermeta.NewClient(base, cfg.Upstream.Quilt)
	r.manifests = cache.New[string, *mojang.Manifest](cache.WithHooks("manifest", hooks.Cache))

	r.vanilla = vanilla.New(r.mojang, vanilla.Options{
		Options:      mopts,
		Env:          opts.Env,
		TTL:          ttl,
		AssetTTL:     cfg.Cache.AssetTTL,
		LibrariesURL: cfg.Upstream.Libraries,
	})
	r.fabric = fabric.New(r.fabricAPI, r, fabric.Options{Options: mopts, TTL: ttl})
	r.quilt = quilt.New(r.quiltAPI, r, quilt.Options{Options: mopts, TTL: ttl})

	forgeOpts := forge.Options{Options: mopts, Env: opts.Env, TTL: ttl, LibrariesURL: cfg.Upstream.Libraries}
	r.forge = forge.New(installer.NewClient(base, cfg.Upstream.Forge, cfg.InstallerDir()), r, forgeOpts)
	r.neoforge = neoforge.New(installer.NewClient(base, cfg.Upstream.NeoForge, cfg.InstallerDir()), r, forgeOpts)

	if cfg.Upstream.UpdateServer != "" {
		r.updateServer = updateloader.New(updateserver.NewClient(base, cfg.Upstream.UpdateServer), r,
			updateloader.Options{Options: mopts, TTL: ttl})
	}
	return r, nil
}

// OpenStore opens the store cfg names, capped at the configured TTL.
func OpenStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	var s store.Store
	switch cfg.Cache.Store {
	case config.StoreNone:
		return store.NewNullStore(), nil
	case config.StoreRedis:
		rs, err := store.NewRedisStore(ctx, store.RedisOptions{Addr: cfg.Cache.RedisAddr})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeNetwork, err, "open redis store")
		}
		s = rs
	default:
		fs, err := store.NewFileStore(cfg.StoreDir())
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeIO, err, "open file store")
		}
		s = fs
	}
	return store.Capped(s, cfg.Cache.StoreTTL), nil
}

// loader returns the resolver for l.
func (r *Resolver) loader(l version.Loader) (loaders.Resolver, error) {
	switch l {
	case version.Vanilla:
		return r.vanilla, nil
	case version.Fabric:
		return r.fabric, nil
	case version.Quilt:
		return r.quilt, nil
	case version.Forge:
		return r.forge, nil
	case version.NeoForge:
		return r.neoforge, nil
	case version.UpdateServer:
		if r.updateServer == nil {
			return nil, errors.New(errors.ErrCodeUnsupported, "no update server configured (upstream.update_server)")
		}
		return r.updateServer, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidLoader, "unknown loader %q", l)
}

// Resolve returns the complete descriptor for p.
func (r *Resolver) Resolve(ctx context.Context, p *version.Profile) (*version.Version, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	l, err := r.loader(p.Loader)
	if err != nil {
		return nil, err
	}
	return l.Resolve(ctx, p)
}

// Query returns the named view of p's descriptor.
func (r *Resolver) Query(ctx context.Context, p *version.Profile, name string) (version.MetaData, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	l, err := r.loader(p.Loader)
	if err != nil {
		return nil, err
	}
	return l.Query(ctx, p, name)
}

// Queries lists the view names loader l answers.
func (r *Resolver) Queries(l version.Loader) ([]string, error) {
	res, err := r.loader(l)
	if err != nil {
		return nil, err
	}
	return res.Queries(), nil
}

// Versions returns the vanilla version manifest. It is cached for the
// configured TTL.
func (r *Resolver) Versions(ctx context.Context) (*mojang.Manifest, error) {
	return r.manifests.GetOrFetch(ctx, "manifest", r.cfg.Cache.TTL, r.mojang.FetchManifest)
}

// LoaderVersions lists the loader builds published for a game version,
// newest first. Only Fabric and Quilt publish such a list.
func (r *Resolver) LoaderVersions(ctx context.Context, l version.Loader, minecraft string) ([]string, error) {
	if err := errors.ValidateVersionString("minecraft", minecraft); err != nil {
		return nil, err
	}
	var api *loadermeta.Client
	switch l {
	case version.Fabric:
		api = r.fabricAPI
	case version.Quilt:
		api = r.quiltAPI
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "%s does not publish a loader version list", l)
	}
	list, err := api.LoaderVersions(ctx, minecraft)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		out = append(out, v.Loader.Version)
	}
	return out, nil
}

// Processors plans the NeoForge processor phase for p.
func (r *Resolver) Processors(ctx context.Context, p *version.Profile, env processor.Env) (*processor.Plan, *installer.Installer, error) {
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}
	return neoforge.Processors(ctx, r.neoforge, p, env)
}

// CacheStats summarizes the in-memory caches, the store and the breakers.
type CacheStats struct {
	Loaders  map[string]LoaderStats `json:"loaders"`
	Store    store.Stats            `json:"store"`
	Breakers map[string]string      `json:"breakers,omitempty"`
}

// LoaderStats counts one loader's cached entries.
type LoaderStats struct {
	Raw     int `json:"raw"`
	Queries int `json:"queries"`
}

// Stats reports cache occupancy.
func (r *Resolver) Stats(ctx context.Context) (CacheStats, error) {
	out := CacheStats{Loaders: map[string]LoaderStats{}}
	for _, l := range r.all() {
		raw, queries := l.res.Len()
		out.Loaders[string(l.name)] = LoaderStats{Raw: raw, Queries: queries}
	}
	if s, ok := r.store.(store.Statter); ok {
		st, err := s.Stats(ctx)
		if err != nil {
			return out, err
		}
		out.Store = st
	}
	if r.transport != nil {
		out.Breakers = r.transport.BreakerStates()
	}
	return out, nil
}

// Clear drops every in-memory entry and, when persistent is set, the
// store as well.
func (r *Resolver) Clear(ctx context.Context, persistent bool) error {
	for _, l := range r.all() {
		l.res.Clear()
	}
	r.manifests.Clear()
	if persistent {
		return r.store.Clear(ctx)
	}
	return nil
}

// Close stops background sweepers, the store and the transport.
func (r *Resolver) Close() error {
	var errs []error
	for _, l := range r.all() {
		if err := l.res.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := r.manifests.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := r.store.Close(); err != nil {
		errs = append(errs, err)
	}
	if r.transport != nil {
		if err := r.transport.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

type namedLoader struct {
	name version.Loader
	res  loaders.Resolver
}

func (r *Resolver) all() []namedLoader {
	out := []namedLoader{
		{version.Vanilla, r.vanilla},
		{version.Fabric, r.fabric},
		{version.Quilt, r.quilt},
		{version.Forge, r.forge},
		{version.NeoForge, r.neoforge},
	}
	if r.updateServer != nil {
		out = append(out, namedLoader{version.UpdateServer, r.updateServer})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}
