// Package loaders holds what every per-loader resolver shares: the
// [Resolver] adapter over a manifest repository, the concurrent vanilla
// join and the merge step.
//
// Each loader lives in its own subpackage (vanilla, fabric, quilt, forge,
// neoforge, updateserver) and implements [manifest.Query] with a closed
// enumeration of query variants. Every loader except vanilla builds its
// descriptor by overlaying its own data on vanilla's:
//
//	vanilla, raw, err := loaders.WithVanilla(ctx, base, p, fetchProfile)
//	v := loaders.Merge(sink, version.Fabric, p, vanilla, layer)
//
// [manifest.Query]: github.com/matzehuels/lodestone/pkg/manifest.Query
package loaders

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/lodestone/pkg/manifest"
	"github.com/matzehuels/lodestone/pkg/observability"
	"github.com/matzehuels/lodestone/pkg/version"
)

// Base resolves complete descriptors. Overlay loaders use it to obtain
// the vanilla descriptor they merge onto.
type Base interface {
	Resolve(ctx context.Context, p *version.Profile) (*version.Version, error)
}

// BaseFunc adapts a function to Base.
type BaseFunc func(ctx context.Context, p *version.Profile) (*version.Version, error)

// Resolve calls f.
func (f BaseFunc) Resolve(ctx context.Context, p *version.Profile) (*version.Version, error) {
	return f(ctx, p)
}

// Resolver is the loader-independent view of one loader's repository.
type Resolver interface {
	Base

	// Query returns the named view of p, e.g. "libraries" or "main-class".
	Query(ctx context.Context, p *version.Profile, name string) (version.MetaData, error)

	// Queries lists the view names Query accepts.
	Queries() []string

	// Len reports cached raw and extracted entries.
	Len() (raw, queries int)

	Clear()
	Close() error
}

// Variant is a loader's query enumeration.
type Variant interface {
	comparable
	fmt.Stringer
}

// Loader adapts a manifest repository to Resolver.
type Loader[Q Variant, R any] struct {
	repo     *manifest.Repository[Q, R]
	full     Q
	variants []Q
}

// New wraps repo. full is the variant that yields the complete descriptor;
// variants lists every variant, full included.
func New[Q Variant, R any](repo *manifest.Repository[Q, R], full Q, variants []Q) *Loader[Q, R] {
	return &Loader[Q, R]{repo: repo, full: full, variants: variants}
}

// Resolve returns a private copy of the complete descriptor for p.
func (l *Loader[Q, R]) Resolve(ctx context.Context, p *version.Profile) (*version.Version, error) {
	md, err := l.repo.Get(ctx, p, l.full)
	if err != nil {
		return nil, err
	}
	v, ok := md.(*version.Version)
	if !ok {
		return nil, Unexpected("version", md)
	}
	return v.Clone(), nil
}

// Query resolves the variant whose String form is name.
func (l *Loader[Q, R]) Query(ctx context.Context, p *version.Profile, name string) (version.MetaData, error) {
	q, err := l.parse(name)
	if err != nil {
		return nil, err
	}
	return l.Get(ctx, p, q)
}

// Get resolves a typed variant. The result is a copy the caller may edit.
func (l *Loader[Q, R]) Get(ctx context.Context, p *version.Profile, q Q) (version.MetaData, error) {
	md, err := l.repo.Get(ctx, p, q)
	if err != nil {
		return nil, err
	}
	return version.CloneMetaData(md), nil
}

// Queries lists the variant names.
func (l *Loader[Q, R]) Queries() []string {
	names := make([]string, len(l.variants))
	for i, q := range l.variants {
		names[i] = q.String()
	}
	return names
}

func (l *Loader[Q, R]) parse(name string) (Q, error) {
	for _, q := range l.variants {
		if q.String() == name {
			return q, nil
		}
	}
	var zero Q
	return zero, UnknownQuery(name, l.Queries())
}

// Repository exposes the underlying repository.
func (l *Loader[Q, R]) Repository() *manifest.Repository[Q, R] { return l.repo }

// Len reports cached raw and extracted entries.
func (l *Loader[Q, R]) Len() (raw, queries int) { return l.repo.Len() }

// Clear drops every cached entry.
func (l *Loader[Q, R]) Clear() { l.repo.Clear() }

// Close stops background sweepers.
func (l *Loader[Q, R]) Close() error { return l.repo.Close() }

// WithVanilla resolves the vanilla descriptor for p's Minecraft version
// while fetch runs. Both must succeed; the first error cancels the other.
func WithVanilla[T any](ctx context.Context, base Base, p *version.Profile, fetch func(ctx context.Context) (T, error)) (*version.Version, T, error) {
	var (
		vanilla *version.Version
		raw     T
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := base.Resolve(gctx, p.VanillaBase())
		vanilla = v
		return err
	})
	g.Go(func() error {
		r, err := fetch(gctx)
		raw = r
		return err
	})
	if err := g.Wait(); err != nil {
		var zero T
		return nil, zero, err
	}
	return vanilla, raw, nil
}

// Merge overlays layer on base and reports progress to sink.
func Merge(sink observability.Sink, loader version.Loader, p *version.Profile, base *version.Version, layer version.Layer) *version.Version {
	if sink == nil {
		sink = observability.NoopSink{}
	}
	sink.Emit(observability.NewEvent(observability.MergingLoaderData, string(loader), p.Name, base.ID))
	v := version.Overlay(base, layer)
	v.ID = p.Name
	sink.Emit(observability.NewEvent(observability.DataMerged, string(loader), p.Name,
		fmt.Sprintf("%d libraries", len(v.Libraries))))
	return v
}
