package forge

import (
	"strings"

	"github.com/matzehuels/lodestone/pkg/integrations/mojang"
	"github.com/matzehuels/lodestone/pkg/loaders"
	"github.com/matzehuels/lodestone/pkg/version"
)

// synthesize appends a library for every ${library_directory} jar in jvm
// that neither declared nor base contains. Download data is copied from
// the matching install-profile library when there is one; otherwise the
// jar is expected at the same path in the loader's maven repository.
func synthesize(declared, base []version.Library, jvm []string, profileLibs []mojang.Library, libsURL, mavenURL string) []version.Library {
	seen := make(map[string]bool, len(declared)+len(base))
	for _, list := range [][]version.Library{declared, base} {
		for _, l := range list {
			seen[l.MavenKey()] = true
		}
	}
	known := make(map[string]mojang.Library, len(profileLibs))
	for _, l := range profileLibs {
		known[version.Library{Name: l.Name}.MavenKey()] = l
	}

	out := declared
	for _, path := range ReferencedJars(jvm) {
		c, err := version.CoordinateFromPath(path)
		if err != nil {
			continue
		}
		lib := version.Library{Name: c.String(), Path: path, URL: loaders.RepoURL(mavenURL, libsURL) + path}
		key := lib.MavenKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		if src, ok := known[key]; ok {
			if l, err := loaders.Library(src, libsURL); err == nil {
				lib = l
			}
		}
		out = append(out, lib)
	}
	return out
}

// ReferencedJars returns the library-relative paths of every
// ${library_directory} jar referenced in args, in order of appearance.
func ReferencedJars(args []string) []string {
	var out []string
	for _, arg := range args {
		for _, part := range strings.Split(arg, ClasspathSeparator) {
			i := strings.Index(part, LibraryDirectory+"/")
			if i < 0 {
				continue
			}
			path := part[i+len(LibraryDirectory)+1:]
			if strings.HasSuffix(path, ".jar") {
				out = append(out, path)
			}
		}
	}
	return out
}
