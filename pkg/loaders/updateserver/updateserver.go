// Package updateserver resolves versions published by a self-hosted
// update server.
//
// The profile name selects a directory entry. The entry names the loader
// and game version the server is built on; that base is resolved through
// the injected [loaders.Base] while the entry's metadata is fetched. The
// metadata then overrides the base field by field, and only where present,
// and supplies the mod list.
package updateserver

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/lodestone/pkg/errors"
	"github.com/matzehuels/lodestone/pkg/integrations/updateserver"
	"github.com/matzehuels/lodestone/pkg/loaders"
	"github.com/matzehuels/lodestone/pkg/manifest"
	"github.com/matzehuels/lodestone/pkg/observability"
	"github.com/matzehuels/lodestone/pkg/version"
)

// Raw holds the directory entry, its metadata and the resolved base.
type Raw struct {
	Entry    updateserver.Entry
	Metadata *updateserver.Metadata
	Base     *version.Version
}

// Options configures the loader.
type Options struct {
	manifest.Options

	// TTL is the lifetime of raw and extracted entries. Defaults to
	// manifest.DefaultTTL.
	TTL time.Duration
}

// Loader is the update-server resolver.
type Loader = loaders.Loader[Query, *Raw]

// New creates the loader. base must resolve every loader an update server
// may build on.
func New(client *updateserver.Client, base loaders.Base, opts Options) *Loader {
	f := &fetcher{client: client, base: base, sink: opts.Sink, ttl: opts.TTL}
	if f.ttl <= 0 {
		f.ttl = manifest.DefaultTTL
	}
	repo := manifest.NewRepository[Query, *Raw](version.UpdateServer, f, opts.Options)
	return loaders.New(repo, Full, Queries)
}

type fetcher struct {
	client *updateserver.Client
	base   loaders.Base
	sink   observability.Sink
	ttl    time.Duration
}

func (f *fetcher) FetchFullData(ctx context.Context, p *version.Profile) (*Raw, error) {
	entry, err := f.client.Find(ctx, p.Name)
	if err != nil {
		return nil, err
	}
	bp, err := baseProfile(p, entry)
	if err != nil {
		return nil, err
	}

	raw := &Raw{Entry: entry}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := f.base.Resolve(gctx, bp)
		raw.Base = v
		return err
	})
	g.Go(func() error {
		m, err := f.client.FetchMetadata(gctx, entry)
		raw.Metadata = m
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return raw, nil
}

// baseProfile derives the profile of the loader entry builds on.
func baseProfile(p *version.Profile, entry updateserver.Entry) (*version.Profile, error) {
	loader, err := version.ParseLoader(entry.Loader)
	if err != nil {
		return nil, err
	}
	if loader == version.UpdateServer {
		return nil, errors.New(errors.ErrCodeUnsupported, "update server entry %q cannot build on another update server", entry.Name)
	}
	bp := p.WithLoader(loader, entry.LoaderVersion)
	bp.MinecraftVersion = entry.MinecraftVersion
	if err := bp.Validate(); err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "update server entry %q", entry.Name)
	}
	return bp, nil
}

func (f *fetcher) Extract(ctx context.Context, p *version.Profile, q Query, raw *Raw) (version.MetaData, error) {
	v, err := f.VersionBuilder(ctx, p, raw)
	if err != nil {
		return nil, err
	}
	switch q {
	case Libraries:
		return version.Libraries(v.Libraries), nil
	case Arguments:
		return &v.Arguments, nil
	case MainClass:
		return version.MainClass(v.MainClass), nil
	case Mods:
		return version.Mods(v.Mods), nil
	case Full:
		return v, nil
	}
	return nil, loaders.UnknownQuery(q.String(), nil)
}

func (f *fetcher) VersionBuilder(ctx context.Context, p *version.Profile, raw *Raw) (*version.Version, error) {
	m := raw.Metadata
	layer := version.Layer{Libraries: m.Libraries}
	if m.MainClass != nil {
		layer.MainClass = *m.MainClass
	}
	if m.JavaVersion != nil {
		layer.JavaVersion = *m.JavaVersion
	}
	if m.Arguments != nil {
		layer.Arguments = *m.Arguments
	}

	v := loaders.Merge(f.sink, version.UpdateServer, p, raw.Base, layer)
	if m.Natives != nil {
		v.Natives = append([]version.Native(nil), *m.Natives...)
	}
	if m.Client != nil {
		c := *m.Client
		v.Client = &c
	}
	if m.AssetIndex != nil {
		idx := *m.AssetIndex
		v.AssetIndex = &idx
	}
	if m.Assets != nil {
		v.Assets = make(map[string]version.Asset, len(*m.Assets))
		for k, a := range *m.Assets {
			v.Assets[k] = a
		}
	}
	v.Mods = append([]version.Mod{}, m.Mods...)
	return v, nil
}

func (f *fetcher) CacheTTL() time.Duration        { return f.ttl }
func (f *fetcher) QueryTTL(q Query) time.Duration { return f.ttl }
