package loaders

import (
	"strings"

	"github.com/matzehuels/lodestone/pkg/integrations/mojang"
	"github.com/matzehuels/lodestone/pkg/version"
)

// Library converts a version-document library into a classpath entry.
// Libraries without a download block are located in the repository named
// by their url field, or in repo when they have none.
func Library(lib mojang.Library, repo string) (version.Library, error) {
	if lib.Downloads != nil && lib.Downloads.Artifact != nil {
		a := lib.Downloads.Artifact
		path := a.Path
		if path == "" {
			c, err := version.ParseCoordinate(lib.Name)
			if err != nil {
				return version.Library{}, err
			}
			path = c.Path()
		}
		return version.Library{Name: lib.Name, URL: a.URL, Path: path, SHA1: a.SHA1, Size: a.Size}, nil
	}

	c, err := version.ParseCoordinate(lib.Name)
	if err != nil {
		return version.Library{}, err
	}
	return version.Library{
		Name: lib.Name,
		URL:  RepoURL(lib.URL, repo) + c.Path(),
		Path: c.Path(),
		SHA1: lib.SHA1,
		Size: lib.Size,
	}, nil
}

// RepoURL returns url, or fallback when url is empty, with a trailing
// slash.
func RepoURL(url, fallback string) string {
	if url == "" {
		url = fallback
	}
	if !strings.HasSuffix(url, "/") {
		url += "/"
	}
	return url
}
