package vanilla

import (
	"strconv"
	"strings"

	"github.com/matzehuels/lodestone/pkg/errors"
	"github.com/matzehuels/lodestone/pkg/integrations/mojang"
	"github.com/matzehuels/lodestone/pkg/loaders"
	"github.com/matzehuels/lodestone/pkg/version"
)

// libraries splits the libraries allowed on f.env into classpath entries
// and native archives.
func (f *fetcher) libraries(d *mojang.VersionDetail) ([]version.Library, []version.Native, error) {
	libs := make([]version.Library, 0, len(d.Libraries))
	var natives []version.Native

	for i, lib := range d.Libraries {
		if !mojang.Allowed(lib.Rules, f.env) {
			continue
		}
		if lib.Name == "" {
			return nil, nil, errors.MissingField(source(d), "libraries["+strconv.Itoa(i)+"].name")
		}

		if classifier, ok := mojang.NativeClassifier(lib.Natives, f.env); ok {
			n, err := f.native(lib, classifier)
			if err != nil {
				return nil, nil, err
			}
			natives = append(natives, n)
		}

		// Legacy native-only entries carry no main artifact.
		if lib.Natives != nil && (lib.Downloads == nil || lib.Downloads.Artifact == nil) {
			continue
		}
		l, err := loaders.Library(lib, f.libsURL)
		if err != nil {
			return nil, nil, err
		}
		libs = append(libs, l)
	}
	return libs, natives, nil
}

func (f *fetcher) native(lib mojang.Library, classifier string) (version.Native, error) {
	c, err := version.ParseCoordinate(lib.Name)
	if err != nil {
		return version.Native{}, err
	}
	c.Classifier = classifier

	n := version.Native{Library: version.Library{Name: c.String(), Path: c.Path()}}
	if lib.Extract != nil {
		n.Exclude = append([]string(nil), lib.Extract.Exclude...)
	}
	if lib.Downloads != nil {
		if a, ok := lib.Downloads.Classifiers[classifier]; ok {
			n.URL, n.SHA1, n.Size = a.URL, a.SHA1, a.Size
			if a.Path != "" {
				n.Path = a.Path
			}
			return n, nil
		}
	}
	n.URL = loaders.RepoURL(lib.URL, f.libsURL) + c.Path()
	return n, nil
}

// arguments flattens modern arguments or splits legacy minecraftArguments.
// Legacy versions have no JVM list.
func (f *fetcher) arguments(d *mojang.VersionDetail) (version.Arguments, error) {
	if d.Arguments != nil {
		game := mojang.Flatten(d.Arguments.Game, f.env)
		if game == nil {
			game = []string{}
		}
		return version.Arguments{Game: game, JVM: mojang.Flatten(d.Arguments.JVM, f.env)}, nil
	}
	if d.MinecraftArguments != "" {
		return version.Arguments{Game: strings.Fields(d.MinecraftArguments)}, nil
	}
	return version.Arguments{}, errors.MissingField(source(d), "arguments")
}
