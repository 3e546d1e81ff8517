package installer

import (
	"strconv"
	"strings"

	"github.com/matzehuels/lodestone/pkg/errors"
	"github.com/matzehuels/lodestone/pkg/version"
)

// Repository roots.
const (
	ForgeMaven    = "https://maven.minecraftforge.net/"
	NeoForgeMaven = "https://maven.neoforged.net/releases/"
)

// ForgeCoordinate returns the installer coordinate for a Forge build.
func ForgeCoordinate(minecraft, forge string) version.Coordinate {
	return version.Coordinate{
		Group:      "net.minecraftforge",
		Artifact:   "forge",
		Version:    minecraft + "-" + forge,
		Classifier: "installer",
		Extension:  "jar",
	}
}

// NeoForgeCoordinate returns the installer coordinate for a NeoForge
// build. 1.20.1 builds were published under the Forge artifact; newer
// builds use their own artifact and carry the game version in theirs.
// NeoForge does not exist before 1.20.1.
func NeoForgeCoordinate(minecraft, neoforge string) (version.Coordinate, error) {
	switch cmp := CompareMinecraft(minecraft, "1.20.1"); {
	case cmp < 0:
		return version.Coordinate{}, errors.New(errors.ErrCodeUnsupported, "neoforge requires minecraft 1.20.1 or newer, got %s", minecraft)
	case cmp == 0:
		return version.Coordinate{
			Group:      "net.neoforged",
			Artifact:   "forge",
			Version:    "1.20.1-" + neoforge,
			Classifier: "installer",
			Extension:  "jar",
		}, nil
	}
	return version.Coordinate{
		Group:      "net.neoforged",
		Artifact:   "neoforge",
		Version:    neoforge,
		Classifier: "installer",
		Extension:  "jar",
	}, nil
}

// CompareMinecraft orders release version strings numerically component
// by component ("1.9" < "1.20.1"). Non-numeric suffixes such as "-pre1"
// are ignored.
func CompareMinecraft(a, b string) int {
	pa, pb := releaseParts(a), releaseParts(b)
	for i := 0; i < max(len(pa), len(pb)); i++ {
		var x, y int
		if i < len(pa) {
			x = pa[i]
		}
		if i < len(pb) {
			y = pb[i]
		}
		if x != y {
			if x < y {
				return -1
			}
			return 1
		}
	}
	return 0
}

func releaseParts(v string) []int {
	if i := strings.IndexAny(v, "-+ "); i >= 0 {
		v = v[:i]
	}
	fields := strings.Split(v, ".")
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			break
		}
		out = append(out, n)
	}
	return out
}
