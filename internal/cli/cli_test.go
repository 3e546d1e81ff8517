package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/lodestone/pkg/errors"
	"github.com/matzehuels/lodestone/pkg/integrations/mojang"
	"github.com/matzehuels/lodestone/pkg/integrations/mojang/mojangtest"
	"github.com/matzehuels/lodestone/pkg/version"
)

// run executes the CLI with args against a config file and returns stdout.
func run(t *testing.T, configBody string, args ...string) (string, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(configBody), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	c := New(io.Discard, LogInfo)
	c.Out = &out
	root := c.RootCommand()
	root.SetArgs(append([]string{"--config", path}, args...))
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func pistonConfig(t *testing.T) string {
	t.Helper()
	piston := mojangtest.NewServer()
	t.Cleanup(piston.Close)
	piston.AddVersion(mojangtest.Release("1.20.1"))
	return "data_dir = '" + t.TempDir() + "'\n" +
		"[cache]\nstore = 'none'\n" +
		"[upstream]\nmanifest = '" + piston.ManifestURL() + "'\n"
}

func TestQueryCommand(t *testing.T) {
	cfg := pistonConfig(t)

	out, err := run(t, cfg, "query", "vanilla", "1.20.1", "main-class")
	if err != nil {
		t.Fatalf("query error: %v", err)
	}
	if strings.TrimSpace(out) != `"net.minecraft.client.main.Main"` {
		t.Errorf("query output = %s", out)
	}

	out, err = run(t, cfg, "query", "vanilla", "1.20.1")
	if err != nil {
		t.Fatal(err)
	}
	var views []string
	if err := json.Unmarshal([]byte(out), &views); err != nil || len(views) != 9 {
		t.Errorf("views = %v (%v)", views, err)
	}
}

func TestResolveJSON(t *testing.T) {
	out, err := run(t, pistonConfig(t), "resolve", "vanilla", "1.20.1", "--json")
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	var v version.Version
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if v.AssetIndex == nil || v.Client == nil || len(v.Libraries) == 0 {
		t.Errorf("descriptor = %+v", v)
	}
}

func TestVersionsJSON(t *testing.T) {
	out, err := run(t, pistonConfig(t), "versions", "--json")
	if err != nil {
		t.Fatalf("versions error: %v", err)
	}
	var list []mojang.ManifestEntry
	if err := json.Unmarshal([]byte(out), &list); err != nil || len(list) != 1 || list[0].ID != "1.20.1" {
		t.Errorf("versions = %+v (%v)", list, err)
	}
}

func TestCommandErrors(t *testing.T) {
	cfg := pistonConfig(t)

	_, err := run(t, cfg, "resolve", "vanilla", "9.9")
	if !errors.Is(err, errors.ErrCodeVersionNotFound) {
		t.Errorf("unknown version error = %v", err)
	}
	_, err = run(t, cfg, "resolve", "rift", "1.20.1")
	if !errors.Is(err, errors.ErrCodeInvalidLoader) {
		t.Errorf("unknown loader error = %v", err)
	}
	_, err = run(t, cfg, "resolve", "fabric")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("missing version error = %v", err)
	}
	_, err = run(t, "[cache]\nstore = 's3'\n", "config", "show")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad config error = %v", err)
	}
}

func TestConfigShowAndCachePath(t *testing.T) {
	dir := t.TempDir()
	cfg := "data_dir = '" + dir + "'\n"

	out, err := run(t, cfg, "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, dir) || !strings.Contains(out, "[upstream]") {
		t.Errorf("config show = %s", out)
	}

	out, err = run(t, cfg, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != dir {
		t.Errorf("cache path = %q, want %q", out, dir)
	}
}

func TestProfileFlags(t *testing.T) {
	tests := []struct {
		flags  profileFlags
		loader string
		second string
		want   version.Profile
	}{
		{
			profileFlags{loaderVersion: "0.15.0"}, "fabric", "1.20.1",
			version.Profile{Name: "fabric-1.20.1-0.15.0", Loader: version.Fabric, LoaderVersion: "0.15.0", MinecraftVersion: "1.20.1"},
		},
		{
			profileFlags{name: "mine", gameDir: "/games/mine"}, "Vanilla", "1.20.1",
			version.Profile{Name: "mine", Loader: version.Vanilla, MinecraftVersion: "1.20.1", GameDir: "/games/mine"},
		},
		{
			profileFlags{}, "update-server", "survival",
			version.Profile{Name: "survival", Loader: version.UpdateServer},
		},
	}
	for _, tt := range tests {
		p, err := tt.flags.profile(tt.loader, tt.second)
		if err != nil {
			t.Errorf("profile(%s, %s) error: %v", tt.loader, tt.second, err)
			continue
		}
		if *p != tt.want {
			t.Errorf("profile(%s, %s) = %+v, want %+v", tt.loader, tt.second, *p, tt.want)
		}
	}
}

func TestFilterVersions(t *testing.T) {
	all := []mojang.ManifestEntry{
		{ID: "24w14a", Type: "snapshot"},
		{ID: "1.20.4", Type: "release"},
		{ID: "1.20.1", Type: "release"},
	}
	if got := filterVersions(all, false, 0); len(got) != 2 || got[0].ID != "1.20.4" {
		t.Errorf("releases = %+v", got)
	}
	if got := filterVersions(all, true, 2); len(got) != 2 || got[0].ID != "24w14a" {
		t.Errorf("with snapshots = %+v", got)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{0: "0 B", 1023: "1023 B", 1536: "1.5 KiB", 5 << 20: "5.0 MiB"}
	for n, want := range tests {
		if got := formatBytes(n); got != want {
			t.Errorf("formatBytes(%d) = %q, want %q", n, got, want)
		}
	}
}
