package resolve

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/matzehuels/lodestone/pkg/config"
	"github.com/matzehuels/lodestone/pkg/errors"
	"github.com/matzehuels/lodestone/pkg/integrations/mojang/mojangtest"
	"github.com/matzehuels/lodestone/pkg/loaders/fabric"
	"github.com/matzehuels/lodestone/pkg/version"
)

func newResolver(t *testing.T) (*Resolver, *mojangtest.Server) {
	t.Helper()
	piston := mojangtest.NewServer()
	t.Cleanup(piston.Close)
	piston.AddVersion(mojangtest.Release("1.20.1"))

	meta := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/versions/loader/1.20.1":
			w.Write([]byte(`[{"loader":{"version":"0.15.0","stable":true}},{"loader":{"version":"0.14.24","stable":true}}]`))
		case "/v2/versions/loader/1.20.1/0.15.0/profile/json":
			w.Write([]byte(`{
				"id": "fabric-loader-0.15.0-1.20.1",
				"inheritsFrom": "1.20.1",
				"mainClass": "net.fabricmc.loader.impl.launch.knot.KnotClient",
				"arguments": {"game": [], "jvm": []},
				"libraries": [
					{"name": "net.fabricmc:fabric-loader:0.15.0", "url": "https://maven.fabricmc.net/", "sha1": "bb1824a3e8ad1a98e2c4cd1f8c9c1e3b5e2e2b4e", "size": 456}
				]
			}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(meta.Close)

	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.Cache.Store = config.StoreNone
	cfg.Upstream.Manifest = piston.ManifestURL()
	cfg.Upstream.Fabric = meta.URL + "/v2"

	env := mojangtest.LinuxEnv
	r, err := New(context.Background(), cfg, Options{Env: &env, HTTPClient: &http.Client{}})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r, piston
}

func fabricProfile(name string) *version.Profile {
	return &version.Profile{Name: name, Loader: version.Fabric, MinecraftVersion: "1.20.1", LoaderVersion: "0.15.0"}
}

func TestResolveSharesVanillaBase(t *testing.T) {
	r, piston := newResolver(t)
	ctx := context.Background()

	for _, name := range []string{"pack-a", "pack-b"} {
		v, err := r.Resolve(ctx, fabricProfile(name))
		if err != nil {
			t.Fatalf("Resolve(%s) error: %v", name, err)
		}
		if v.ID != name || v.MainClass != fabric.KnotClient {
			t.Errorf("Resolve(%s) = id %q, main class %q", name, v.ID, v.MainClass)
		}
	}
	if n := piston.Hits("/v1/packages/versions/1.20.1.json"); n != 1 {
		t.Errorf("version document fetched %d times, want 1", n)
	}

	st, err := r.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.Loaders["fabric"].Raw != 2 || st.Loaders["vanilla"].Raw != 1 {
		t.Errorf("stats = %+v", st.Loaders)
	}

	if err := r.Clear(ctx, true); err != nil {
		t.Fatal(err)
	}
	st, _ = r.Stats(ctx)
	if st.Loaders["fabric"].Raw != 0 || st.Loaders["vanilla"].Raw != 0 {
		t.Errorf("stats after Clear = %+v", st.Loaders)
	}
}

func TestQuery(t *testing.T) {
	r, _ := newResolver(t)

	got, err := r.Query(context.Background(), fabricProfile("pack"), "main-class")
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if got != version.MainClass(fabric.KnotClient) {
		t.Errorf("main class = %v", got)
	}

	queries, err := r.Queries(version.Forge)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"libraries", "arguments", "main-class", "full"}; !reflect.DeepEqual(queries, want) {
		t.Errorf("Queries(forge) = %v, want %v", queries, want)
	}
}

func TestVersions(t *testing.T) {
	r, piston := newResolver(t)
	ctx := context.Background()

	for range 2 {
		m, err := r.Versions(ctx)
		if err != nil {
			t.Fatalf("Versions() error: %v", err)
		}
		if m.Latest.Release != "1.20.1" || len(m.Versions) != 1 {
			t.Errorf("manifest = %+v", m)
		}
	}
	if n := piston.Hits("/mc/game/version_manifest_v2.json"); n != 1 {
		t.Errorf("manifest fetched %d times, want 1", n)
	}

	got, err := r.LoaderVersions(ctx, version.Fabric, "1.20.1")
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"0.15.0", "0.14.24"}; !reflect.DeepEqual(got, want) {
		t.Errorf("LoaderVersions = %v, want %v", got, want)
	}
}

func TestResolveErrors(t *testing.T) {
	r, _ := newResolver(t)
	ctx := context.Background()

	tests := []struct {
		name string
		p    *version.Profile
		code errors.Code
	}{
		{"empty name", &version.Profile{Loader: version.Vanilla, MinecraftVersion: "1.20.1"}, errors.ErrCodeInvalidProfile},
		{"traversal", &version.Profile{Name: "../x", Loader: version.Vanilla, MinecraftVersion: "1.20.1"}, errors.ErrCodeInvalidProfile},
		{"unknown loader", &version.Profile{Name: "x", Loader: "rift", MinecraftVersion: "1.20.1"}, errors.ErrCodeInvalidLoader},
		{"missing loader version", &version.Profile{Name: "x", Loader: version.Fabric, MinecraftVersion: "1.20.1"}, errors.ErrCodeInvalidInput},
		{"no update server", &version.Profile{Name: "x", Loader: version.UpdateServer}, errors.ErrCodeUnsupported},
		{"unknown version", &version.Profile{Name: "x", Loader: version.Vanilla, MinecraftVersion: "9.9"}, errors.ErrCodeVersionNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(ctx, tt.p)
			if !errors.Is(err, tt.code) {
				t.Errorf("Resolve() error = %v, want %s", err, tt.code)
			}
		})
	}

	if _, err := r.LoaderVersions(ctx, version.Forge, "1.20.1"); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("LoaderVersions(forge) error = %v, want UNSUPPORTED", err)
	}
}
