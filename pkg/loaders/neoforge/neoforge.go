// Package neoforge resolves NeoForge installers merged over vanilla and
// plans their processor phase.
//
// NeoForge installers use the Forge format, so resolution is package
// forge's with NeoForge coordinates: builds for 1.20.1 live under
// net.neoforged:forge, later ones under net.neoforged:neoforge, and
// anything older than 1.20.1 is UNSUPPORTED.
package neoforge

import (
	"context"
	"path/filepath"

	"github.com/matzehuels/lodestone/pkg/errors"
	"github.com/matzehuels/lodestone/pkg/integrations/installer"
	"github.com/matzehuels/lodestone/pkg/loaders"
	"github.com/matzehuels/lodestone/pkg/loaders/forge"
	"github.com/matzehuels/lodestone/pkg/loaders/processor"
	"github.com/matzehuels/lodestone/pkg/version"
)

// Flavor is the NeoForge installer flavor.
var Flavor = forge.Flavor{
	Loader:     version.NeoForge,
	Coordinate: installer.NeoForgeCoordinate,
}

// Options configures the loader.
type Options = forge.Options

// New creates the NeoForge loader. client must point at the NeoForge
// Maven repository; base resolves vanilla descriptors.
func New(client *installer.Client, base loaders.Base, opts Options) *forge.Loader {
	return forge.NewLoader(Flavor, client, base, opts)
}

// Processors plans the processor phase for p from its cached installer.
// Unset fields of env are filled from the profile: Root from GameDir,
// MinecraftVersion and MinecraftJar from the vanilla descriptor.
func Processors(ctx context.Context, l *forge.Loader, p *version.Profile, env processor.Env) (*processor.Plan, *installer.Installer, error) {
	if p.Loader != version.NeoForge {
		return nil, nil, errors.New(errors.ErrCodeInvalidLoader, "processors need a neoforge profile, got %s", p.Loader)
	}
	raw, err := l.Repository().Raw(ctx, p)
	if err != nil {
		return nil, nil, err
	}
	if env.Root == "" {
		env.Root = p.GameDir
	}
	if env.Root == "" {
		return nil, nil, errors.New(errors.ErrCodeInvalidProfile, "profile %s has no game directory", p.Name)
	}
	if env.MinecraftVersion == "" {
		env.MinecraftVersion = p.MinecraftVersion
	}
	if env.MinecraftJar == "" && raw.Vanilla.Client != nil {
		env.MinecraftJar = filepath.Join(env.Root, filepath.FromSlash(raw.Vanilla.Client.Path))
	}
	plan, err := processor.NewPlan(raw.Installer.Profile, raw.Installer.Path, env)
	if err != nil {
		return nil, nil, err
	}
	return plan, raw.Installer, nil
}
