package fsutil

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/matzehuels/lodestone/pkg/errors"
)

// sha1("hello")
const helloSHA1 = "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d"

func TestCalculateSHA1Bytes(t *testing.T) {
	if got := CalculateSHA1Bytes([]byte("hello")); got != helloSHA1 {
		t.Errorf("CalculateSHA1Bytes = %s, want %s", got, helloSHA1)
	}
}

func TestVerifyFileSHA1(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	if !VerifyFileSHA1(path, helloSHA1) {
		t.Error("matching hash should verify")
	}
	if !VerifyFileSHA1(path, strings.ToUpper(helloSHA1)) {
		t.Error("comparison should be case-insensitive")
	}
	if VerifyFileSHA1(path, "0000") {
		t.Error("wrong hash should not verify")
	}
	if VerifyFileSHA1(filepath.Join(t.TempDir(), "missing"), helloSHA1) {
		t.Error("missing file should not verify")
	}
}

func TestNeedsDownload(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "present")
	if err := os.WriteFile(present, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		path     string
		expected string
		want     bool
	}{
		{"missing file", filepath.Join(dir, "missing"), helloSHA1, true},
		{"missing file without hash", filepath.Join(dir, "missing"), "", true},
		{"matching hash", present, helloSHA1, false},
		{"stale hash", present, "da39a3ee5e6b4b0d3255bfef95601890afd80709", true},
		{"no hash trusts existing file", present, "", false},
		{"directory", dir, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NeedsDownload(tt.path, tt.expected); got != tt.want {
				t.Errorf("NeedsDownload() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c.json")
	if err := WriteFileAtomic(path, []byte("one"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFileAtomic(path, []byte("two"), 0644); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "two" {
		t.Errorf("content = %q, want two", data)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %d entries", len(entries))
	}
}

func writeZip(t *testing.T, files map[string]string, order ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.jar")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for _, name := range order {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(files[name])); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestZip(t *testing.T) {
	files := map[string]string{
		"install_profile.json": `{"spec":1,"version":"1.20.1-forge-47.2.0"}`,
		"version.json":         `not json`,
		"META-INF/MANIFEST.MF": "Manifest-Version: 1.0\r\nMain-Class: net.minecraftforge.installer.Simple\r\n Installer\r\n\r\nName: other\r\nMain-Class: ignored\r\n",
	}
	path := writeZip(t, files, "META-INF/MANIFEST.MF", "install_profile.json", "version.json")

	z, err := OpenZip(path)
	if err != nil {
		t.Fatal(err)
	}
	defer z.Close()

	want := []string{"META-INF/MANIFEST.MF", "install_profile.json", "version.json"}
	if got := z.ListEntries(); !reflect.DeepEqual(got, want) {
		t.Errorf("ListEntries() = %v, want %v", got, want)
	}
	if !z.Has("version.json") || z.Has("data/client.lzma") {
		t.Error("Has() reports wrong membership")
	}

	var profile struct {
		Spec    int    `json:"spec"`
		Version string `json:"version"`
	}
	if err := z.ReadJSON("install_profile.json", &profile); err != nil {
		t.Fatal(err)
	}
	if profile.Spec != 1 || profile.Version != "1.20.1-forge-47.2.0" {
		t.Errorf("profile = %+v", profile)
	}

	if err := z.ReadJSON("version.json", &profile); !errors.Is(err, errors.ErrCodeJSONParse) {
		t.Errorf("ReadJSON(bad) error = %v, want JSON_PARSE", err)
	}
	if _, err := z.ReadEntry("missing"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("ReadEntry(missing) error = %v, want NOT_FOUND", err)
	}

	attrs, err := z.Manifest()
	if err != nil {
		t.Fatal(err)
	}
	if attrs["Main-Class"] != "net.minecraftforge.installer.SimpleInstaller" {
		t.Errorf("Main-Class = %q", attrs["Main-Class"])
	}
}

func TestOpenZipNotAnArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.jar")
	if err := os.WriteFile(path, []byte("<html>"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenZip(path); !errors.Is(err, errors.ErrCodeIO) {
		t.Errorf("OpenZip error = %v, want IO_ERROR", err)
	}
}
