// Package installer fetches Forge and NeoForge installer JARs and reads
// the documents embedded in them.
//
// Installers are cached on disk under the repository layout. A cached
// file is reused while it matches the .sha1 published next to it; a
// stale, corrupt or unreadable file is deleted and downloaded once more
// before the failure reaches the caller.
package installer

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/lodestone/pkg/errors"
	"github.com/matzehuels/lodestone/pkg/fsutil"
	"github.com/matzehuels/lodestone/pkg/integrations"
	"github.com/matzehuels/lodestone/pkg/integrations/mojang"
	"github.com/matzehuels/lodestone/pkg/version"
)

// Entry names inside an installer.
const (
	ProfileEntry = "install_profile.json"
	VersionEntry = "version.json"
)

// Installer is an opened installer JAR.
type Installer struct {
	// Path is the cached JAR on disk.
	Path    string
	Profile *InstallProfile
	// Version is the embedded version document.
	Version *mojang.VersionDetail
}

// Client downloads installers from one Maven repository.
type Client struct {
	*integrations.Client
	repo string
	dir  string
}

// NewClient creates a client for the repository at repoURL that caches
// installers below dir.
func NewClient(base *integrations.Client, repoURL, dir string) *Client {
	if !strings.HasSuffix(repoURL, "/") {
		repoURL += "/"
	}
	return &Client{Client: base, repo: repoURL, dir: dir}
}

// Repo returns the repository root URL.
func (c *Client) Repo() string { return c.repo }

// URL returns the download URL of coord.
func (c *Client) URL(coord version.Coordinate) string {
	return c.repo + coord.Path()
}

// Fetch returns the opened installer for coord, downloading it when the
// cached copy is missing or stale. An installer the repository does not
// have is VERSION_NOT_FOUND.
func (c *Client) Fetch(ctx context.Context, coord version.Coordinate) (*Installer, error) {
	url := c.URL(coord)
	sum, err := c.GetText(ctx, url+".sha1")
	if err != nil {
		if errors.Is(err, errors.ErrCodeNotFound) {
			return nil, errors.Wrap(errors.ErrCodeVersionNotFound, err, "installer %s", coord)
		}
		return nil, err
	}
	if i := strings.IndexAny(sum, " \t"); i > 0 {
		sum = sum[:i]
	}

	path := filepath.Join(c.dir, filepath.FromSlash(coord.Path()))
	var inst *Installer
	for attempt := 0; attempt < 2; attempt++ {
		if fsutil.NeedsDownload(path, sum) {
			if err = c.Download(ctx, url, path, sum); err != nil {
				if errors.Is(err, errors.ErrCodeIntegrity) {
					continue
				}
				return nil, err
			}
		}
		if inst, err = Open(path); err == nil {
			return inst, nil
		}
		// Unreadable despite a matching hash: drop it and fetch again.
		os.Remove(path)
	}
	return nil, err
}

// Open reads the embedded documents of the installer at path.
func Open(path string) (*Installer, error) {
	z, err := fsutil.OpenZip(path)
	if err != nil {
		return nil, err
	}
	defer z.Close()

	var profile InstallProfile
	if err := z.ReadJSON(ProfileEntry, &profile); err != nil {
		return nil, err
	}

	inst := &Installer{Path: path, Profile: &profile}
	if profile.VersionInfo != nil {
		inst.Version = profile.VersionInfo
		return inst, nil
	}

	entry := strings.TrimPrefix(profile.JSON, "/")
	if entry == "" {
		entry = VersionEntry
	}
	var v mojang.VersionDetail
	if err := z.ReadJSON(entry, &v); err != nil {
		return nil, err
	}
	inst.Version = &v
	return inst, nil
}

// Extract copies an installer entry such as "/data/client.lzma" to dest.
func (i *Installer) Extract(entry, dest string) error {
	z, err := fsutil.OpenZip(i.Path)
	if err != nil {
		return err
	}
	defer z.Close()

	data, err := z.ReadEntry(strings.TrimPrefix(entry, "/"))
	if err != nil {
		return err
	}
	if err := fsutil.WriteFileAtomic(dest, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", dest)
	}
	return nil
}
