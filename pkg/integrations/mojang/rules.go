package mojang

import (
	"regexp"
	"runtime"
	"strings"
)

// Rule selects a library or argument by platform or feature.
type Rule struct {
	Action   string          `json:"action"`
	OS       *OSRule         `json:"os,omitempty"`
	Features map[string]bool `json:"features,omitempty"`
}

// OSRule matches operating system properties.
type OSRule struct {
	Name    string `json:"name,omitempty"`
	Arch    string `json:"arch,omitempty"`
	Version string `json:"version,omitempty"`
}

// Env describes the platform a descriptor is resolved for, in Mojang's
// vocabulary (os "windows", "osx", "linux"; arch "x86", "x86_64", "arm64").
type Env struct {
	OS        string
	Arch      string
	OSVersion string
	// Features enables feature-gated arguments such as
	// "has_custom_resolution". Unlisted features are off.
	Features map[string]bool
}

// CurrentEnv describes the running machine with every feature off.
func CurrentEnv() Env {
	env := Env{OS: runtime.GOOS, Arch: runtime.GOARCH}
	switch runtime.GOOS {
	case "darwin":
		env.OS = "osx"
	}
	switch runtime.GOARCH {
	case "386":
		env.Arch = "x86"
	case "amd64":
		env.Arch = "x86_64"
	}
	return env
}

// Bits returns "32" or "64", the value substituted for ${arch} in native
// classifiers.
func (e Env) Bits() string {
	switch e.Arch {
	case "x86", "arm":
		return "32"
	}
	return "64"
}

// Allowed evaluates rules in order; the last matching rule decides. An
// empty list allows.
func Allowed(rules []Rule, env Env) bool {
	if len(rules) == 0 {
		return true
	}
	allowed := false
	for _, r := range rules {
		if r.matches(env) {
			allowed = r.Action == "allow"
		}
	}
	return allowed
}

func (r Rule) matches(env Env) bool {
	if r.OS != nil {
		if r.OS.Name != "" && r.OS.Name != env.OS {
			return false
		}
		if r.OS.Arch != "" && r.OS.Arch != env.Arch {
			return false
		}
		if r.OS.Version != "" {
			re, err := regexp.Compile(r.OS.Version)
			if err != nil || env.OSVersion == "" || !re.MatchString(env.OSVersion) {
				return false
			}
		}
	}
	for name, want := range r.Features {
		if env.Features[name] != want {
			return false
		}
	}
	return true
}

// NativeClassifier returns the classifier for env from a legacy natives
// map, with ${arch} substituted.
func NativeClassifier(natives map[string]string, env Env) (string, bool) {
	c, ok := natives[env.OS]
	if !ok {
		return "", false
	}
	return strings.ReplaceAll(c, "${arch}", env.Bits()), true
}

// Flatten evaluates rule-guarded arguments into a flat list. A nil input
// stays nil so callers can tell "no jvm key" from "empty jvm list".
func Flatten(args []Argument, env Env) []string {
	if args == nil {
		return nil
	}
	out := make([]string, 0, len(args))
	for _, a := range args {
		if Allowed(a.Rules, env) {
			out = append(out, a.Value...)
		}
	}
	return out
}
