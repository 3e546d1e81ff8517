package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateProfileName validates a profile name for safety and correctness.
// Profile names partition the manifest caches and name instance directories,
// so they must never be usable for path traversal.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., /, \)
//   - Maximum length of 128 characters
func ValidateProfileName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidProfile, "profile name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidProfile, "profile name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidProfile, "profile name contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\", "\x00"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidProfile, "profile name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// versionStringRegex matches Minecraft and loader version identifiers such as
// "1.20.1", "24w14a", "1.20.1-47.2.0", "0.15.0+build.1" or "1.21.1-rc1".
var versionStringRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._+ -]*$`)

// ValidateVersionString validates a version identifier before it is
// interpolated into upstream URLs and local cache paths.
func ValidateVersionString(kind, v string) error {
	if v == "" {
		return New(ErrCodeInvalidInput, "%s version cannot be empty", kind)
	}
	if len(v) > 64 {
		return New(ErrCodeInvalidInput, "%s version too long (max 64 characters)", kind)
	}
	if strings.Contains(v, "..") || !versionStringRegex.MatchString(v) {
		return New(ErrCodeInvalidInput, "invalid %s version: %q", kind, v)
	}
	return nil
}

// ValidateRelativePath validates a path taken from an upstream document
// (library paths, asset paths) before it is joined onto a local directory.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidateRelativePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidInput, "path must be relative (cannot start with /)")
	}

	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return New(ErrCodeInvalidInput, "path cannot contain path traversal sequences (..)")
		}
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidInput, "path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
