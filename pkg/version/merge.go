package version

// MergeLibraries deduplicates base and overlay by [Library.MavenKey]:
// group:artifact, plus the classifier when there is one, so an overlay
// natives jar never replaces the main artifact of the same name. Entries
// from overlay replace base entries with the same key in place; keys seen
// for the first time are appended in the order they appear.
func MergeLibraries(base, overlay []Library) []Library {
	out := make([]Library, 0, len(base)+len(overlay))
	index := make(map[string]int, len(base)+len(overlay))
	for _, list := range [][]Library{base, overlay} {
		for _, lib := range list {
			key := lib.MavenKey()
			if i, ok := index[key]; ok {
				out[i] = lib
				continue
			}
			index[key] = len(out)
			out = append(out, lib)
		}
	}
	return out
}

// MergeJVM combines two JVM argument lists. Nil means absent: the result
// is nil only when both sides are absent.
func MergeJVM(base, overlay []string) []string {
	switch {
	case base == nil && overlay == nil:
		return nil
	case base == nil:
		return cloneSlice(overlay)
	case overlay == nil:
		return cloneSlice(base)
	}
	out := make([]string, 0, len(base)+len(overlay))
	return append(append(out, base...), overlay...)
}

// MergeArguments concatenates game arguments base first and merges JVM
// arguments with MergeJVM. Neither side is modified or deduplicated.
func MergeArguments(base, overlay Arguments) Arguments {
	game := make([]string, 0, len(base.Game)+len(overlay.Game))
	game = append(append(game, base.Game...), overlay.Game...)
	return Arguments{
		Game: game,
		JVM:  MergeJVM(base.JVM, overlay.JVM),
	}
}

// Layer is the data a mod loader contributes on top of vanilla.
// Zero values mean "inherit from the base".
type Layer struct {
	MainClass   string
	JavaVersion int
	Arguments   Arguments
	Libraries   []Library
}

// Overlay builds a new descriptor from base with layer applied. The
// layer's main class wins when non-empty; everything the layer cannot
// express is inherited from base unchanged. base is not modified.
func Overlay(base *Version, layer Layer) *Version {
	out := base.Clone()
	if layer.MainClass != "" {
		out.MainClass = layer.MainClass
	}
	if layer.JavaVersion > 0 {
		out.JavaVersion = layer.JavaVersion
	}
	out.Arguments = MergeArguments(base.Arguments, layer.Arguments)
	out.Libraries = MergeLibraries(base.Libraries, layer.Libraries)
	out.Mods = nil
	return out
}
