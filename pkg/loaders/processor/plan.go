// Package processor plans and runs the post-install processors declared
// by Forge-style installers.
//
// An install profile declares data variables and a list of processors.
// Every processor is a jar run with a classpath and arguments that may
// reference variables and libraries:
//
//	{VAR}                          data or built-in variable
//	[group:artifact:version:cls@ext] path of a library below LIBRARY_DIR
//	'literal'                      a literal value (data entries only)
//	/path                          an installer entry, extracted first (data entries only)
//
// Built-in variables are MINECRAFT_JAR, MINECRAFT_VERSION, SIDE, ROOT,
// INSTALLER and LIBRARY_DIR. A processor whose declared outputs already
// exist with the expected hashes is skipped.
package processor

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/matzehuels/lodestone/pkg/errors"
	"github.com/matzehuels/lodestone/pkg/integrations/installer"
	"github.com/matzehuels/lodestone/pkg/version"
)

// Env is the environment processors are planned for.
type Env struct {
	// Side is "client" (default) or "server".
	Side             string
	MinecraftVersion string
	// MinecraftJar is the vanilla game jar the processors patch.
	MinecraftJar string
	// Root is the game directory.
	Root string
	// LibraryDir defaults to Root/libraries.
	LibraryDir string
	// DataDir receives extracted installer entries. Defaults to
	// Root/.installer-data.
	DataDir string
}

// Step is one processor ready to run.
type Step struct {
	// Jar is the processor jar; it heads the classpath.
	Jar       string            `json:"jar"`
	Classpath []string          `json:"classpath"`
	Args      []string          `json:"args"`
	Outputs   map[string]string `json:"outputs,omitempty"`
}

// Plan is the resolved processor pipeline for one side.
type Plan struct {
	Steps []Step `json:"steps"`
	// Extract maps installer entries to the files they are copied to
	// before the first step runs.
	Extract   map[string]string `json:"extract,omitempty"`
	Variables map[string]string `json:"variables"`
	// Skipped counts processors declared for other sides.
	Skipped int `json:"skipped"`
}

var variable = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// NewPlan resolves every processor of profile that runs on env.Side.
func NewPlan(profile *installer.InstallProfile, installerPath string, env Env) (*Plan, error) {
	if env.Side == "" {
		env.Side = "client"
	}
	if env.LibraryDir == "" {
		env.LibraryDir = filepath.Join(env.Root, "libraries")
	}
	if env.DataDir == "" {
		env.DataDir = filepath.Join(env.Root, ".installer-data")
	}

	p := &Plan{
		Extract: make(map[string]string),
		Variables: map[string]string{
			"SIDE":              env.Side,
			"MINECRAFT_JAR":     env.MinecraftJar,
			"MINECRAFT_VERSION": env.MinecraftVersion,
			"ROOT":              env.Root,
			"INSTALLER":         installerPath,
			"LIBRARY_DIR":       env.LibraryDir,
		},
	}

	names := make([]string, 0, len(profile.Data))
	for name := range profile.Data {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v, err := p.data(profile.Data[name].Side(env.Side), env)
		if err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "data %s", name)
		}
		p.Variables[name] = v
	}

	for _, proc := range profile.Processors {
		if !proc.RunsOn(env.Side) {
			p.Skipped++
			continue
		}
		step, err := p.step(proc, env)
		if err != nil {
			return nil, err
		}
		p.Steps = append(p.Steps, step)
	}
	return p, nil
}

func (p *Plan) step(proc installer.Processor, env Env) (Step, error) {
	jar, err := libraryPath(proc.Jar, env.LibraryDir)
	if err != nil {
		return Step{}, err
	}
	s := Step{Jar: jar, Classpath: []string{jar}}
	for _, coord := range proc.Classpath {
		path, err := libraryPath(coord, env.LibraryDir)
		if err != nil {
			return Step{}, err
		}
		s.Classpath = append(s.Classpath, path)
	}
	for _, arg := range proc.Args {
		v, err := p.arg(arg, env)
		if err != nil {
			return Step{}, errors.Wrap(errors.GetCode(err), err, "processor %s", proc.Jar)
		}
		s.Args = append(s.Args, v)
	}
	if len(proc.Outputs) > 0 {
		s.Outputs = make(map[string]string, len(proc.Outputs))
		for k, v := range proc.Outputs {
			path, err := p.arg(k, env)
			if err != nil {
				return Step{}, err
			}
			sum, err := p.arg(v, env)
			if err != nil {
				return Step{}, err
			}
			s.Outputs[path] = unquote(sum)
		}
	}
	return s, nil
}

// data resolves a data entry value.
func (p *Plan) data(v string, env Env) (string, error) {
	switch {
	case isLibrary(v):
		return libraryPath(v[1:len(v)-1], env.LibraryDir)
	case isLiteral(v):
		return unquote(v), nil
	case strings.HasPrefix(v, "/"):
		rel := strings.TrimPrefix(v, "/")
		if err := errors.ValidateRelativePath(rel); err != nil {
			return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "installer data entry %q", v)
		}
		dest := filepath.Join(env.DataDir, filepath.FromSlash(rel))
		p.Extract[v] = dest
		return dest, nil
	}
	return v, nil
}

// arg resolves a processor argument.
func (p *Plan) arg(v string, env Env) (string, error) {
	if isLibrary(v) {
		return libraryPath(v[1:len(v)-1], env.LibraryDir)
	}
	var missing string
	out := variable.ReplaceAllStringFunc(v, func(m string) string {
		name := m[1 : len(m)-1]
		val, ok := p.Variables[name]
		if !ok && missing == "" {
			missing = name
		}
		return val
	})
	if missing != "" {
		return "", errors.New(errors.ErrCodeMissingField, "unknown variable {%s} in %q", missing, v)
	}
	return out, nil
}

func libraryPath(coord, dir string) (string, error) {
	c, err := version.ParseCoordinate(coord)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, filepath.FromSlash(c.Path())), nil
}

func isLibrary(v string) bool {
	return len(v) >= 2 && v[0] == '[' && v[len(v)-1] == ']'
}

func isLiteral(v string) bool {
	return len(v) >= 2 && v[0] == '\'' && v[len(v)-1] == '\''
}

func unquote(v string) string {
	if isLiteral(v) {
		return v[1 : len(v)-1]
	}
	return v
}

// classpath joins paths with the platform list separator.
func classpath(paths []string) string {
	return strings.Join(paths, string(os.PathListSeparator))
}
