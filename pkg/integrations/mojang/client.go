package mojang

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/matzehuels/lodestone/pkg/errors"
	"github.com/matzehuels/lodestone/pkg/fsutil"
	"github.com/matzehuels/lodestone/pkg/integrations"
)

// DefaultManifestURL is the Piston version manifest.
const DefaultManifestURL = "https://piston-meta.mojang.com/mc/game/version_manifest_v2.json"

// DefaultLibrariesURL hosts libraries that declare no download URL.
const DefaultLibrariesURL = "https://libraries.minecraft.net/"

// contentTTL is the store lifetime of hash-addressed documents. Their
// content can never change, so it only bounds disk usage.
const contentTTL = 30 * 24 * time.Hour

// Client fetches Piston metadata.
type Client struct {
	*integrations.Client
	manifestURL string
}

// NewClient creates a Piston client. An empty manifestURL uses
// DefaultManifestURL.
func NewClient(base *integrations.Client, manifestURL string) *Client {
	if manifestURL == "" {
		manifestURL = DefaultManifestURL
	}
	return &Client{Client: base, manifestURL: manifestURL}
}

// FetchManifest downloads the version manifest. It changes with every
// release, so it is never kept in the persistent store.
func (c *Client) FetchManifest(ctx context.Context) (*Manifest, error) {
	var m Manifest
	if err := c.GetJSON(ctx, c.manifestURL, &m); err != nil {
		return nil, err
	}
	if len(m.Versions) == 0 {
		return nil, errors.MissingField("version manifest", "versions")
	}
	return &m, nil
}

// FetchVersion downloads the version JSON for id.
func (c *Client) FetchVersion(ctx context.Context, id string) (*VersionDetail, error) {
	m, err := c.FetchManifest(ctx)
	if err != nil {
		return nil, err
	}
	entry, ok := m.Find(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeVersionNotFound, "minecraft version %q not found in version manifest", id)
	}
	return c.FetchVersionEntry(ctx, entry)
}

// FetchVersionEntry downloads and verifies the version JSON an entry
// points at.
func (c *Client) FetchVersionEntry(ctx context.Context, entry ManifestEntry) (*VersionDetail, error) {
	data, err := c.fetchVerified(ctx, "version", entry.URL, entry.SHA1)
	if err != nil {
		return nil, err
	}
	var v VersionDetail
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, errors.Wrap(errors.ErrCodeJSONParse, err, "decode version %s", entry.ID)
	}
	return &v, nil
}

// FetchAssetIndex downloads and verifies an asset index.
func (c *Client) FetchAssetIndex(ctx context.Context, ref *AssetIndexRef) (*AssetIndex, error) {
	data, err := c.fetchVerified(ctx, "assets", ref.URL, ref.SHA1)
	if err != nil {
		return nil, err
	}
	var idx AssetIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, errors.Wrap(errors.ErrCodeJSONParse, err, "decode asset index %s", ref.ID)
	}
	if idx.Objects == nil {
		return nil, errors.MissingField("asset index "+ref.ID, "objects")
	}
	return &idx, nil
}

// fetchVerified returns the document at url, checking it against sha1.
// A stored copy is used when its hash still matches. A download that does
// not match is fetched once more before INTEGRITY is reported.
func (c *Client) fetchVerified(ctx context.Context, kind, url, sha1 string) ([]byte, error) {
	key := kind + ":" + strings.ToLower(sha1)
	if sha1 != "" {
		if data, ok, err := c.Store().Get(ctx, key); err == nil && ok && strings.EqualFold(fsutil.CalculateSHA1Bytes(data), sha1) {
			return data, nil
		}
	}

	var data []byte
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		data, err = c.GetBytes(ctx, url)
		if err != nil {
			return nil, err
		}
		if sha1 == "" || strings.EqualFold(fsutil.CalculateSHA1Bytes(data), sha1) {
			if sha1 != "" {
				if err := c.Store().Set(ctx, key, data, contentTTL); err != nil {
					c.Logger().Warn("store write failed", "key", key, "err", err)
				}
			}
			return data, nil
		}
	}
	return nil, errors.New(errors.ErrCodeIntegrity, "%s: sha1 %s, want %s", url, fsutil.CalculateSHA1Bytes(data), sha1)
}
