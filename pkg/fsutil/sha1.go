package fsutil

import (
	"crypto/sha1"
	"encoding/hex"
	"io"
	"os"
	"strings"
)

// CalculateSHA1Bytes returns the lowercase hex SHA1 of data.
func CalculateSHA1Bytes(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

// FileSHA1 streams the file at path through SHA1.
func FileSHA1(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifyFileSHA1 reports whether the file at path exists and hashes to
// expected. Comparison is case-insensitive.
func VerifyFileSHA1(path, expected string) bool {
	got, err := FileSHA1(path)
	if err != nil {
		return false
	}
	return strings.EqualFold(got, strings.TrimSpace(expected))
}

// NeedsDownload reports whether the file at path must be (re)fetched. A
// missing file always needs downloading. When expected is empty an
// existing file is trusted as is, so corruption of unhashed files goes
// unnoticed.
func NeedsDownload(path, expected string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return true
	}
	if strings.TrimSpace(expected) == "" {
		return false
	}
	return !VerifyFileSHA1(path, expected)
}
