// Package updateserver reads self-hosted update servers.
//
// An update server publishes a directory of server configurations at
// {base}/servers. Each entry names the loader and game version it is
// built on and links to its own metadata document, which may override
// parts of the base descriptor and lists the mods to install.
package updateserver

import (
	"context"
	"strconv"
	"strings"

	"github.com/matzehuels/lodestone/pkg/errors"
	"github.com/matzehuels/lodestone/pkg/integrations"
	"github.com/matzehuels/lodestone/pkg/version"
)

// Entry is one server configuration in the directory.
type Entry struct {
	Name             string `json:"name"`
	Loader           string `json:"loader"`
	LoaderVersion    string `json:"loader_version,omitempty"`
	MinecraftVersion string `json:"minecraft_version"`
	URL              string `json:"url"`
}

// Metadata is a server's own document. Absent fields leave the base
// descriptor untouched.
type Metadata struct {
	MainClass   *string                   `json:"main_class,omitempty"`
	JavaVersion *int                      `json:"java_version,omitempty"`
	Arguments   *version.Arguments        `json:"arguments,omitempty"`
	Libraries   []version.Library         `json:"libraries,omitempty"`
	Natives     *[]version.Native         `json:"natives,omitempty"`
	Client      *version.Download         `json:"client,omitempty"`
	AssetIndex  *version.AssetIndex       `json:"asset_index,omitempty"`
	Assets      *map[string]version.Asset `json:"assets,omitempty"`
	Mods        []version.Mod             `json:"mods"`
}

// Client talks to one update server.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a client for the update server at baseURL.
func NewClient(base *integrations.Client, baseURL string) *Client {
	return &Client{Client: base, baseURL: strings.TrimRight(baseURL, "/")}
}

// FetchDirectory lists the server configurations.
func (c *Client) FetchDirectory(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	if err := c.GetJSON(ctx, integrations.JoinURL(c.baseURL, "servers"), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Find returns the directory entry called name. A name the directory
// does not list is VERSION_NOT_FOUND.
func (c *Client) Find(ctx context.Context, name string) (Entry, error) {
	entries, err := c.FetchDirectory(ctx)
	if err != nil {
		return Entry{}, err
	}
	for i, e := range entries {
		if e.Name != name {
			continue
		}
		if e.URL == "" {
			return Entry{}, errors.MissingField("update server entry "+name, "servers["+strconv.Itoa(i)+"].url")
		}
		if e.Loader == "" {
			return Entry{}, errors.MissingField("update server entry "+name, "servers["+strconv.Itoa(i)+"].loader")
		}
		return e, nil
	}
	return Entry{}, errors.New(errors.ErrCodeVersionNotFound, "update server has no entry %q", name)
}

// FetchMetadata downloads the metadata document of e.
func (c *Client) FetchMetadata(ctx context.Context, e Entry) (*Metadata, error) {
	u := e.URL
	if !strings.Contains(u, "://") {
		u = integrations.JoinURL(c.baseURL, u)
	}
	var m Metadata
	if err := c.GetJSON(ctx, u, &m); err != nil {
		return nil, err
	}
	for i, mod := range m.Mods {
		if mod.URL == "" || mod.Path == "" {
			return nil, errors.MissingField("update server entry "+e.Name, "mods["+strconv.Itoa(i)+"].url/path")
		}
		if err := errors.ValidateRelativePath(mod.Path); err != nil {
			return nil, err
		}
	}
	return &m, nil
}
