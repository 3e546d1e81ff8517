// Package vanilla resolves unmodded Minecraft versions from Piston
// metadata.
//
// The raw data for a profile is its version JSON plus the asset index it
// references, both checked against the hashes published upstream. Library
// and argument rules are evaluated for one platform ([mojang.Env]);
// feature-gated arguments are dropped unless the feature is enabled.
// Versions that predate javaVersion get [version.DefaultJavaVersion].
//
// [mojang.Env]: github.com/matzehuels/lodestone/pkg/integrations/mojang.Env
// [version.DefaultJavaVersion]: github.com/matzehuels/lodestone/pkg/version.DefaultJavaVersion
package vanilla

import (
	"context"
	"time"

	"github.com/matzehuels/lodestone/pkg/errors"
	"github.com/matzehuels/lodestone/pkg/integrations/mojang"
	"github.com/matzehuels/lodestone/pkg/loaders"
	"github.com/matzehuels/lodestone/pkg/manifest"
	"github.com/matzehuels/lodestone/pkg/version"
)

// Raw is the upstream data for one Minecraft version.
type Raw struct {
	Detail *mojang.VersionDetail
	Index  *mojang.AssetIndex
}

// Options configures the vanilla loader.
type Options struct {
	manifest.Options

	// Env selects rules and natives. Defaults to mojang.CurrentEnv().
	Env *mojang.Env
	// TTL is the lifetime of raw and extracted entries. Defaults to
	// manifest.DefaultTTL.
	TTL time.Duration
	// AssetTTL overrides TTL for the asset views.
	AssetTTL time.Duration
	// LibrariesURL replaces mojang.DefaultLibrariesURL.
	LibrariesURL string
}

// Loader is the vanilla resolver.
type Loader = loaders.Loader[Query, *Raw]

// New creates the vanilla loader.
func New(client *mojang.Client, opts Options) *Loader {
	f := &fetcher{
		client:   client,
		env:      mojang.CurrentEnv(),
		ttl:      opts.TTL,
		assetTTL: opts.AssetTTL,
		libsURL:  opts.LibrariesURL,
	}
	if opts.Env != nil {
		f.env = *opts.Env
	}
	if f.ttl <= 0 {
		f.ttl = manifest.DefaultTTL
	}
	if f.assetTTL <= 0 {
		f.assetTTL = f.ttl
	}
	if f.libsURL == "" {
		f.libsURL = mojang.DefaultLibrariesURL
	}
	repo := manifest.NewRepository[Query, *Raw](version.Vanilla, f, opts.Options)
	return loaders.New(repo, Full, Queries)
}

type fetcher struct {
	client   *mojang.Client
	env      mojang.Env
	ttl      time.Duration
	assetTTL time.Duration
	libsURL  string
}

func (f *fetcher) FetchFullData(ctx context.Context, p *version.Profile) (*Raw, error) {
	detail, err := f.client.FetchVersion(ctx, p.MinecraftVersion)
	if err != nil {
		return nil, err
	}
	raw := &Raw{Detail: detail}
	if detail.AssetIndex != nil {
		if raw.Index, err = f.client.FetchAssetIndex(ctx, detail.AssetIndex); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

func (f *fetcher) Extract(ctx context.Context, p *version.Profile, q Query, raw *Raw) (version.MetaData, error) {
	d := raw.Detail
	switch q {
	case Libraries:
		libs, _, err := f.libraries(d)
		if err != nil {
			return nil, err
		}
		return version.Libraries(libs), nil
	case Natives:
		_, natives, err := f.libraries(d)
		if err != nil {
			return nil, err
		}
		return version.Natives(natives), nil
	case Arguments:
		args, err := f.arguments(d)
		if err != nil {
			return nil, err
		}
		return &args, nil
	case MainClass:
		if d.MainClass == "" {
			return nil, errors.MissingField(source(d), "mainClass")
		}
		return version.MainClass(d.MainClass), nil
	case JavaVersion:
		return version.JavaVersion(javaVersion(d)), nil
	case Client:
		return wrap(client(d))
	case AssetIndex:
		return wrap(assetIndex(d))
	case Assets:
		return wrap(assets(d, raw.Index))
	case Full:
		return f.VersionBuilder(ctx, p, raw)
	}
	return nil, loaders.UnknownQuery(q.String(), nil)
}

func (f *fetcher) VersionBuilder(ctx context.Context, p *version.Profile, raw *Raw) (*version.Version, error) {
	d := raw.Detail
	if d.MainClass == "" {
		return nil, errors.MissingField(source(d), "mainClass")
	}
	libs, natives, err := f.libraries(d)
	if err != nil {
		return nil, err
	}
	args, err := f.arguments(d)
	if err != nil {
		return nil, err
	}
	jar, err := client(d)
	if err != nil {
		return nil, err
	}
	idx, err := assetIndex(d)
	if err != nil {
		return nil, err
	}
	objects, err := assets(d, raw.Index)
	if err != nil {
		return nil, err
	}
	return &version.Version{
		ID:          d.ID,
		MainClass:   d.MainClass,
		JavaVersion: javaVersion(d),
		Arguments:   args,
		Libraries:   libs,
		Natives:     natives,
		Client:      jar,
		AssetIndex:  idx,
		Assets:      map[string]version.Asset(objects),
	}, nil
}

func (f *fetcher) CacheTTL() time.Duration { return f.ttl }

func (f *fetcher) QueryTTL(q Query) time.Duration {
	switch q {
	case AssetIndex, Assets:
		return f.assetTTL
	}
	return f.ttl
}

// wrap keeps a failed lookup from becoming a non-nil interface holding a
// nil pointer.
func wrap[T version.MetaData](v T, err error) (version.MetaData, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}

func source(d *mojang.VersionDetail) string { return "version " + d.ID }

func javaVersion(d *mojang.VersionDetail) int {
	if d.JavaVersion == nil || d.JavaVersion.MajorVersion == 0 {
		return version.DefaultJavaVersion
	}
	return d.JavaVersion.MajorVersion
}

func client(d *mojang.VersionDetail) (*version.Download, error) {
	if d.Downloads == nil || d.Downloads.Client == nil {
		return nil, errors.MissingField(source(d), "downloads.client")
	}
	c := d.Downloads.Client
	if c.URL == "" {
		return nil, errors.MissingField(source(d), "downloads.client.url")
	}
	return &version.Download{
		URL:  c.URL,
		SHA1: c.SHA1,
		Size: c.Size,
		Path: "versions/" + d.ID + "/" + d.ID + ".jar",
	}, nil
}

func assetIndex(d *mojang.VersionDetail) (*version.AssetIndex, error) {
	ref := d.AssetIndex
	if ref == nil {
		return nil, errors.MissingField(source(d), "assetIndex")
	}
	return &version.AssetIndex{
		ID:        ref.ID,
		URL:       ref.URL,
		SHA1:      ref.SHA1,
		Size:      ref.Size,
		TotalSize: ref.TotalSize,
	}, nil
}

func assets(d *mojang.VersionDetail, idx *mojang.AssetIndex) (version.Assets, error) {
	if idx == nil {
		return nil, errors.MissingField(source(d), "assetIndex")
	}
	out := make(version.Assets, len(idx.Objects))
	for name, obj := range idx.Objects {
		out[name] = version.Asset{Hash: obj.Hash, Size: obj.Size}
	}
	return out, nil
}
