// Package forge resolves Forge installers merged over vanilla.
//
// A Forge build has no plain JSON endpoint. Its descriptor is embedded in
// the installer JAR: install_profile.json describes the install and
// version.json is the version document to overlay. Both are read straight
// from the archive.
//
// Forge's JVM arguments reference module-path jars as
// ${library_directory}/<maven path> without always declaring them as
// libraries. Those references are turned into libraries, with download
// data taken from the install profile when it lists them.
//
// NeoForge installers share the format; package neoforge builds on
// [NewLoader] with its own coordinates.
package forge

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lodestone/pkg/integrations/installer"
	"github.com/matzehuels/lodestone/pkg/integrations/mojang"
	"github.com/matzehuels/lodestone/pkg/loaders"
	"github.com/matzehuels/lodestone/pkg/manifest"
	"github.com/matzehuels/lodestone/pkg/observability"
	"github.com/matzehuels/lodestone/pkg/version"
)

// Placeholders used in installer arguments.
const (
	LibraryDirectory   = "${library_directory}"
	ClasspathSeparator = "${classpath_separator}"
)

// Raw holds the opened installer and the vanilla descriptor it extends.
type Raw struct {
	Vanilla   *version.Version
	Installer *installer.Installer
}

// Flavor describes an installer-based loader.
type Flavor struct {
	Loader version.Loader
	// Coordinate maps a profile to its installer artifact.
	Coordinate func(minecraft, loader string) (version.Coordinate, error)
	// Synthesize adds libraries that JVM arguments reference but the
	// version document never declares.
	Synthesize bool
}

// Forge is the Forge flavor.
var Forge = Flavor{
	Loader: version.Forge,
	Coordinate: func(minecraft, loader string) (version.Coordinate, error) {
		return installer.ForgeCoordinate(minecraft, loader), nil
	},
	Synthesize: true,
}

// Options configures the loader.
type Options struct {
	manifest.Options

	// Env selects rule-guarded libraries and arguments. Defaults to
	// mojang.CurrentEnv().
	Env *mojang.Env
	// TTL is the lifetime of raw and extracted entries. Defaults to
	// manifest.DefaultTTL.
	TTL time.Duration
	// LibrariesURL locates libraries without a download block. Defaults
	// to mojang.DefaultLibrariesURL.
	LibrariesURL string
}

// Loader is the Forge (or NeoForge) resolver.
type Loader = loaders.Loader[Query, *Raw]

// New creates the Forge loader. client must point at the Forge Maven
// repository; base resolves vanilla descriptors.
func New(client *installer.Client, base loaders.Base, opts Options) *Loader {
	return NewLoader(Forge, client, base, opts)
}

// NewLoader creates a resolver for an installer-based flavor.
func NewLoader(flavor Flavor, client *installer.Client, base loaders.Base, opts Options) *Loader {
	f := &fetcher{
		flavor:  flavor,
		client:  client,
		base:    base,
		sink:    opts.Sink,
		logger:  opts.Logger,
		env:     mojang.CurrentEnv(),
		ttl:     opts.TTL,
		libsURL: opts.LibrariesURL,
	}
	if opts.Env != nil {
		f.env = *opts.Env
	}
	if f.ttl <= 0 {
		f.ttl = manifest.DefaultTTL
	}
	if f.libsURL == "" {
		f.libsURL = mojang.DefaultLibrariesURL
	}
	if f.logger == nil {
		f.logger = log.New(io.Discard)
	}
	f.logger = f.logger.WithPrefix(string(flavor.Loader))
	repo := manifest.NewRepository[Query, *Raw](flavor.Loader, f, opts.Options)
	return loaders.New(repo, Full, Queries)
}

type fetcher struct {
	flavor  Flavor
	client  *installer.Client
	base    loaders.Base
	sink    observability.Sink
	logger  *log.Logger
	env     mojang.Env
	ttl     time.Duration
	libsURL string
}

func (f *fetcher) FetchFullData(ctx context.Context, p *version.Profile) (*Raw, error) {
	coord, err := f.flavor.Coordinate(p.MinecraftVersion, p.LoaderVersion)
	if err != nil {
		return nil, err
	}
	vanilla, inst, err := loaders.WithVanilla(ctx, f.base, p, func(ctx context.Context) (*installer.Installer, error) {
		return f.client.Fetch(ctx, coord)
	})
	if err != nil {
		return nil, err
	}
	f.logger.Debug("installer ready", "path", inst.Path, "spec", inst.Profile.Spec)
	return &Raw{Vanilla: vanilla, Installer: inst}, nil
}

func (f *fetcher) Extract(ctx context.Context, p *version.Profile, q Query, raw *Raw) (version.MetaData, error) {
	switch q {
	case MainClass:
		v, err := f.VersionBuilder(ctx, p, raw)
		if err != nil {
			return nil, err
		}
		return version.MainClass(v.MainClass), nil
	case Libraries:
		v, err := f.VersionBuilder(ctx, p, raw)
		if err != nil {
			return nil, err
		}
		return version.Libraries(v.Libraries), nil
	case Arguments:
		v, err := f.VersionBuilder(ctx, p, raw)
		if err != nil {
			return nil, err
		}
		return &v.Arguments, nil
	case Full:
		return f.VersionBuilder(ctx, p, raw)
	}
	return nil, loaders.UnknownQuery(q.String(), nil)
}

func (f *fetcher) VersionBuilder(ctx context.Context, p *version.Profile, raw *Raw) (*version.Version, error) {
	layer, err := f.layer(raw.Installer)
	if err != nil {
		return nil, err
	}
	base := raw.Vanilla
	if raw.Installer.Version.Arguments == nil && raw.Installer.Version.MinecraftArguments != "" {
		// Legacy documents restate the vanilla game arguments in full.
		base = base.Clone()
		base.Arguments.Game = nil
	}
	if f.flavor.Synthesize {
		layer.Libraries = synthesize(layer.Libraries, base.Libraries, layer.Arguments.JVM, raw.Installer.Profile.Libraries, f.libsURL, f.client.Repo())
	}
	return loaders.Merge(f.sink, f.flavor.Loader, p, base, layer), nil
}

func (f *fetcher) CacheTTL() time.Duration        { return f.ttl }
func (f *fetcher) QueryTTL(q Query) time.Duration { return f.ttl }

func (f *fetcher) layer(inst *installer.Installer) (version.Layer, error) {
	d := inst.Version
	layer := version.Layer{MainClass: d.MainClass}
	if d.JavaVersion != nil {
		layer.JavaVersion = d.JavaVersion.MajorVersion
	}

	switch {
	case d.Arguments != nil:
		layer.Arguments.Game = mojang.Flatten(d.Arguments.Game, f.env)
		layer.Arguments.JVM = mojang.Flatten(d.Arguments.JVM, f.env)
	case d.MinecraftArguments != "":
		layer.Arguments.Game = strings.Fields(d.MinecraftArguments)
	}

	for _, lib := range d.Libraries {
		if !mojang.Allowed(lib.Rules, f.env) {
			continue
		}
		l, err := loaders.Library(lib, f.libsURL)
		if err != nil {
			return version.Layer{}, err
		}
		layer.Libraries = append(layer.Libraries, l)
	}
	return layer, nil
}
