package version

import (
	"fmt"
	"strings"

	"github.com/matzehuels/lodestone/pkg/errors"
)

// Coordinate is a parsed Maven coordinate
// group:artifact:version[:classifier][@extension].
type Coordinate struct {
	Group      string
	Artifact   string
	Version    string
	Classifier string
	Extension  string
}

// ParseCoordinate parses a Maven coordinate string. The extension
// defaults to "jar".
func ParseCoordinate(s string) (Coordinate, error) {
	var c Coordinate
	body := s
	if i := strings.LastIndexByte(body, '@'); i >= 0 {
		c.Extension = body[i+1:]
		body = body[:i]
	}
	parts := strings.Split(body, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return Coordinate{}, errors.New(errors.ErrCodeConversion, "invalid maven coordinate %q", s)
	}
	for _, p := range parts {
		if p == "" {
			return Coordinate{}, errors.New(errors.ErrCodeConversion, "invalid maven coordinate %q", s)
		}
	}
	c.Group, c.Artifact, c.Version = parts[0], parts[1], parts[2]
	if len(parts) == 4 {
		c.Classifier = parts[3]
	}
	if c.Extension == "" {
		c.Extension = "jar"
	}
	return c, nil
}

// Key returns group:artifact.
func (c Coordinate) Key() string {
	return c.Group + ":" + c.Artifact
}

// String formats the coordinate, omitting a default jar extension.
func (c Coordinate) String() string {
	s := fmt.Sprintf("%s:%s:%s", c.Group, c.Artifact, c.Version)
	if c.Classifier != "" {
		s += ":" + c.Classifier
	}
	if c.Extension != "" && c.Extension != "jar" {
		s += "@" + c.Extension
	}
	return s
}

// Path returns the repository layout path, e.g.
// net/fabricmc/fabric-loader/0.15.0/fabric-loader-0.15.0.jar.
func (c Coordinate) Path() string {
	file := c.Artifact + "-" + c.Version
	if c.Classifier != "" {
		file += "-" + c.Classifier
	}
	ext := c.Extension
	if ext == "" {
		ext = "jar"
	}
	return strings.Join([]string{
		strings.ReplaceAll(c.Group, ".", "/"),
		c.Artifact,
		c.Version,
		file + "." + ext,
	}, "/")
}

// CoordinateFromPath reverses Path. It needs at least
// group/artifact/version/file and fails when the file name does not start
// with artifact-version.
func CoordinateFromPath(p string) (Coordinate, error) {
	p = strings.TrimPrefix(strings.ReplaceAll(p, "\\", "/"), "/")
	parts := strings.Split(p, "/")
	if len(parts) < 4 {
		return Coordinate{}, errors.New(errors.ErrCodeConversion, "not a maven path: %q", p)
	}
	n := len(parts)
	file, ver, artifact := parts[n-1], parts[n-2], parts[n-3]
	group := strings.Join(parts[:n-3], ".")

	prefix := artifact + "-" + ver
	if !strings.HasPrefix(file, prefix) {
		return Coordinate{}, errors.New(errors.ErrCodeConversion, "file %q does not match %s", file, prefix)
	}
	rest := strings.TrimPrefix(file, prefix)
	dot := strings.LastIndexByte(rest, '.')
	if dot < 0 {
		return Coordinate{}, errors.New(errors.ErrCodeConversion, "file %q has no extension", file)
	}
	c := Coordinate{Group: group, Artifact: artifact, Version: ver, Extension: rest[dot+1:]}
	if cls := rest[:dot]; cls != "" {
		if cls[0] != '-' {
			return Coordinate{}, errors.New(errors.ErrCodeConversion, "file %q does not match %s", file, prefix)
		}
		c.Classifier = cls[1:]
	}
	return c, nil
}
