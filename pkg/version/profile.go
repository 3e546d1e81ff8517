package version

import (
	"fmt"
	"strings"

	"github.com/matzehuels/lodestone/pkg/errors"
)

// Loader identifies the metadata schema a profile is resolved against.
// The set is closed; resolvers dispatch on it with a switch.
type Loader string

const (
	Vanilla      Loader = "vanilla"
	Fabric       Loader = "fabric"
	Forge        Loader = "forge"
	NeoForge     Loader = "neoforge"
	Quilt        Loader = "quilt"
	UpdateServer Loader = "updateserver"
)

// Loaders lists every supported loader in display order.
var Loaders = []Loader{Vanilla, Fabric, Forge, NeoForge, Quilt, UpdateServer}

// ParseLoader converts a user-supplied name into a Loader.
// Matching is case-insensitive and accepts "neo-forge" and "update-server".
func ParseLoader(s string) (Loader, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "-", "")
	norm = strings.ReplaceAll(norm, "_", "")
	for _, l := range Loaders {
		if string(l) == norm {
			return l, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidLoader, "unknown loader %q", s)
}

// String returns the loader name.
func (l Loader) String() string { return string(l) }

// Profile is the caller-supplied identity of one launch configuration.
// Name partitions the raw manifest caches, so two profiles with the same
// name and loader share one upstream fetch per TTL window.
type Profile struct {
	Name             string `json:"name"`
	Loader           Loader `json:"loader"`
	LoaderVersion    string `json:"loader_version,omitempty"`
	MinecraftVersion string `json:"minecraft_version"`
	GameDir          string `json:"game_dir,omitempty"`
	JavaDir          string `json:"java_dir,omitempty"`
}

// Validate checks the profile for the fields its loader needs.
func (p *Profile) Validate() error {
	if p == nil {
		return errors.New(errors.ErrCodeInvalidProfile, "profile is nil")
	}
	if err := errors.ValidateProfileName(p.Name); err != nil {
		return err
	}
	if _, err := ParseLoader(string(p.Loader)); err != nil {
		return err
	}
	if p.Loader != UpdateServer {
		if err := errors.ValidateVersionString("minecraft", p.MinecraftVersion); err != nil {
			return err
		}
	}
	switch p.Loader {
	case Fabric, Forge, NeoForge, Quilt:
		if err := errors.ValidateVersionString(string(p.Loader), p.LoaderVersion); err != nil {
			return err
		}
	}
	return nil
}

// WithLoader returns a copy of p resolved against another loader.
// The name is suffixed so the copy never shares a raw cache slot with p.
func (p Profile) WithLoader(l Loader, loaderVersion string) *Profile {
	p.Name = fmt.Sprintf("%s@%s", p.Name, l)
	p.Loader = l
	p.LoaderVersion = loaderVersion
	return &p
}

// VanillaBase returns the vanilla profile a loader overlays. Vanilla raw
// manifests are keyed by Minecraft version so every loader built on the
// same game version shares them.
func (p *Profile) VanillaBase() *Profile {
	return &Profile{
		Name:             p.MinecraftVersion,
		Loader:           Vanilla,
		MinecraftVersion: p.MinecraftVersion,
		GameDir:          p.GameDir,
		JavaDir:          p.JavaDir,
	}
}
