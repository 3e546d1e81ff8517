// Package fabric resolves Fabric loader profiles merged over vanilla.
//
// The Fabric meta service publishes one launcher profile per (game,
// loader) pair. Its libraries are bare Maven coordinates with a repository
// URL; older loader versions omit sha1 and size, which are completed from
// the repository (.sha1 sidecar and HEAD) for every library at once.
//
// Quilt publishes the same schema and is served by this package through
// [NewLoader]; see package quilt.
package fabric

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/lodestone/pkg/errors"
	"github.com/matzehuels/lodestone/pkg/integrations/loadermeta"
	"github.com/matzehuels/lodestone/pkg/integrations/mojang"
	"github.com/matzehuels/lodestone/pkg/loaders"
	"github.com/matzehuels/lodestone/pkg/manifest"
	"github.com/matzehuels/lodestone/pkg/observability"
	"github.com/matzehuels/lodestone/pkg/version"
)

// KnotClient is the Fabric client entry point.
const KnotClient = "net.fabricmc.loader.impl.launch.knot.KnotClient"

// Raw holds the loader profile and the vanilla descriptor it extends.
type Raw struct {
	Vanilla *version.Version
	Profile *loadermeta.Profile
}

// Options configures the loader.
type Options struct {
	manifest.Options

	// TTL is the lifetime of raw and extracted entries. Defaults to
	// manifest.DefaultTTL.
	TTL time.Duration
}

// Loader is the Fabric (or Quilt) resolver.
type Loader = loaders.Loader[Query, *Raw]

// New creates the Fabric loader. base resolves vanilla descriptors.
func New(client *loadermeta.Client, base loaders.Base, opts Options) *Loader {
	return NewLoader(version.Fabric, client, base, opts)
}

// NewLoader creates a resolver for any loader publishing Fabric-style
// profiles.
func NewLoader(loader version.Loader, client *loadermeta.Client, base loaders.Base, opts Options) *Loader {
	f := &fetcher{
		loader: loader,
		client: client,
		base:   base,
		sink:   opts.Sink,
		logger: opts.Logger,
		ttl:    opts.TTL,
	}
	if f.ttl <= 0 {
		f.ttl = manifest.DefaultTTL
	}
	if f.logger == nil {
		f.logger = log.New(io.Discard)
	}
	f.logger = f.logger.WithPrefix(string(loader))
	f.repo = manifest.NewRepository[Query, *Raw](loader, f, opts.Options)
	return loaders.New(f.repo, Full, Queries)
}

type fetcher struct {
	loader version.Loader
	client *loadermeta.Client
	base   loaders.Base
	sink   observability.Sink
	logger *log.Logger
	ttl    time.Duration
	repo   *manifest.Repository[Query, *Raw]
}

func (f *fetcher) FetchFullData(ctx context.Context, p *version.Profile) (*Raw, error) {
	vanilla, profile, err := loaders.WithVanilla(ctx, f.base, p, func(ctx context.Context) (*loadermeta.Profile, error) {
		return f.client.FetchProfile(ctx, p.MinecraftVersion, p.LoaderVersion)
	})
	if err != nil {
		return nil, err
	}
	if profile.InheritsFrom != "" && profile.InheritsFrom != p.MinecraftVersion {
		return nil, errors.New(errors.ErrCodeConversion, "%s profile %s inherits from %s, want %s",
			f.loader, profile.ID, profile.InheritsFrom, p.MinecraftVersion)
	}
	return &Raw{Vanilla: vanilla, Profile: profile}, nil
}

func (f *fetcher) Extract(ctx context.Context, p *version.Profile, q Query, raw *Raw) (version.MetaData, error) {
	switch q {
	case Libraries:
		// Served from the full view so completion runs once per profile.
		md, err := f.repo.Get(ctx, p, Full)
		if err != nil {
			return nil, err
		}
		v, ok := md.(*version.Version)
		if !ok {
			return nil, loaders.Unexpected("version", md)
		}
		return version.Libraries(v.Libraries), nil
	case Arguments:
		layer, err := f.layer(raw.Profile)
		if err != nil {
			return nil, err
		}
		args := loaders.Merge(f.sink, f.loader, p, raw.Vanilla, layer).Arguments
		return &args, nil
	case MainClass:
		return version.MainClass(raw.Profile.MainClass), nil
	case Full:
		return f.VersionBuilder(ctx, p, raw)
	}
	return nil, loaders.UnknownQuery(q.String(), nil)
}

func (f *fetcher) VersionBuilder(ctx context.Context, p *version.Profile, raw *Raw) (*version.Version, error) {
	layer, err := f.layer(raw.Profile)
	if err != nil {
		return nil, err
	}
	if err := f.complete(ctx, layer.Libraries); err != nil {
		return nil, err
	}
	return loaders.Merge(f.sink, f.loader, p, raw.Vanilla, layer), nil
}

func (f *fetcher) CacheTTL() time.Duration        { return f.ttl }
func (f *fetcher) QueryTTL(q Query) time.Duration { return f.ttl }

// layer converts the profile into overlay data without any I/O. The
// returned libraries are fresh and may be completed in place.
func (f *fetcher) layer(profile *loadermeta.Profile) (version.Layer, error) {
	layer := version.Layer{MainClass: profile.MainClass}
	if profile.JavaVersion != nil {
		layer.JavaVersion = profile.JavaVersion.MajorVersion
	}
	if a := profile.Arguments; a != nil {
		env := mojang.Env{}
		layer.Arguments.Game = mojang.Flatten(a.Game, env)
		layer.Arguments.JVM = mojang.Flatten(a.JVM, env)
	}

	layer.Libraries = make([]version.Library, 0, len(profile.Libraries))
	for _, lib := range profile.Libraries {
		c, err := version.ParseCoordinate(lib.Name)
		if err != nil {
			return version.Layer{}, err
		}
		if lib.URL == "" {
			return version.Layer{}, errors.MissingField(string(f.loader)+" library "+lib.Name, "url")
		}
		base := lib.URL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		layer.Libraries = append(layer.Libraries, version.Library{
			Name: lib.Name,
			URL:  base + c.Path(),
			Path: c.Path(),
			SHA1: lib.SHA1,
			Size: lib.Size,
		})
	}
	return layer, nil
}

// complete fills in missing sha1 and size values, one request pair per
// library, all libraries at once.
func (f *fetcher) complete(ctx context.Context, libs []version.Library) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := range libs {
		lib := &libs[i]
		if lib.SHA1 == "" {
			g.Go(func() error {
				sum, err := f.client.FetchSHA1(ctx, lib.URL)
				if err != nil {
					return err
				}
				lib.SHA1 = sum
				return nil
			})
		}
		if lib.Size == 0 {
			g.Go(func() error {
				n, err := f.client.FetchSize(ctx, lib.URL)
				if err != nil {
					return err
				}
				lib.Size = n
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}
	f.logger.Debug("libraries complete", "count", len(libs))
	return nil
}
