// Package loadermeta reads the Fabric and Quilt meta services. Both expose
// the same API shape: a list of loader versions per game version and a
// launcher profile per (game, loader) pair.
package loadermeta

import (
	"context"
	"net/url"
	"strings"

	"github.com/matzehuels/lodestone/pkg/errors"
	"github.com/matzehuels/lodestone/pkg/integrations"
	"github.com/matzehuels/lodestone/pkg/integrations/mojang"
)

// Base URLs of the public meta services.
const (
	FabricURL = "https://meta.fabricmc.net/v2"
	QuiltURL  = "https://meta.quiltmc.org/v3"
)

// Profile is a launcher profile. It has the shape of a Piston version
// document with plain string arguments and bare Maven libraries that
// carry a repository URL and, on newer loaders, sha1 and size.
type Profile = mojang.VersionDetail

// LoaderVersion is one entry of the loader list for a game version.
type LoaderVersion struct {
	Loader struct {
		Separator string `json:"separator"`
		Build     int    `json:"build"`
		Maven     string `json:"maven"`
		Version   string `json:"version"`
		Stable    bool   `json:"stable"`
	} `json:"loader"`
}

// Client talks to one meta service.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a client for the meta service at baseURL.
func NewClient(base *integrations.Client, baseURL string) *Client {
	return &Client{Client: base, baseURL: strings.TrimRight(baseURL, "/")}
}

// BaseURL returns the service root.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchProfile downloads the launcher profile for a game and loader
// version. A pair the service does not know is VERSION_NOT_FOUND.
func (c *Client) FetchProfile(ctx context.Context, minecraft, loader string) (*Profile, error) {
	u := integrations.JoinURL(c.baseURL, "versions/loader", url.PathEscape(minecraft), url.PathEscape(loader), "profile/json")
	var p Profile
	if err := c.GetJSON(ctx, u, &p); err != nil {
		if errors.Is(err, errors.ErrCodeNotFound) {
			return nil, errors.Wrap(errors.ErrCodeVersionNotFound, err, "loader %s for minecraft %s", loader, minecraft)
		}
		return nil, err
	}
	if p.MainClass == "" {
		return nil, errors.MissingField("loader profile "+loader, "mainClass")
	}
	return &p, nil
}

// LoaderVersions lists the loader versions available for a game version,
// newest first.
func (c *Client) LoaderVersions(ctx context.Context, minecraft string) ([]LoaderVersion, error) {
	u := integrations.JoinURL(c.baseURL, "versions/loader", url.PathEscape(minecraft))
	var out []LoaderVersion
	if err := c.GetJSON(ctx, u, &out); err != nil {
		if errors.Is(err, errors.ErrCodeNotFound) {
			return nil, errors.Wrap(errors.ErrCodeVersionNotFound, err, "minecraft %s", minecraft)
		}
		return nil, err
	}
	return out, nil
}

// FetchSHA1 reads the .sha1 sidecar of a Maven artifact.
func (c *Client) FetchSHA1(ctx context.Context, artifactURL string) (string, error) {
	s, err := c.GetText(ctx, artifactURL+".sha1")
	if err != nil {
		return "", err
	}
	// Some repositories append the file name.
	if i := strings.IndexAny(s, " \t"); i > 0 {
		s = s[:i]
	}
	if len(s) != 40 {
		return "", errors.New(errors.ErrCodeConversion, "%s.sha1: not a sha1 digest", artifactURL)
	}
	return strings.ToLower(s), nil
}

// FetchSize returns the size of a Maven artifact from a HEAD request.
func (c *Client) FetchSize(ctx context.Context, artifactURL string) (int64, error) {
	n, err := c.Head(ctx, artifactURL)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errors.MissingField(artifactURL, "Content-Length")
	}
	return n, nil
}
