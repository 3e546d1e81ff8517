package fabric

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/lodestone/pkg/errors"
	"github.com/matzehuels/lodestone/pkg/integrations"
	"github.com/matzehuels/lodestone/pkg/integrations/loadermeta"
	"github.com/matzehuels/lodestone/pkg/integrations/mojang"
	"github.com/matzehuels/lodestone/pkg/integrations/mojang/mojangtest"
	"github.com/matzehuels/lodestone/pkg/loaders/vanilla"
	"github.com/matzehuels/lodestone/pkg/manifest"
	"github.com/matzehuels/lodestone/pkg/observability"
	"github.com/matzehuels/lodestone/pkg/version"
)

const intermediarySHA1 = "8e5c6f7a0b1c2d3e4f5a6b7c8d9e0f1a2b3c4d5e"

// meta fakes the Fabric meta service and its Maven repository.
type meta struct {
	*httptest.Server
	profileHits atomic.Int32
	sidecarHits atomic.Int32
	sidecarDown atomic.Bool
}

func newMeta(t *testing.T) *meta {
	m := &meta{}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/versions/loader/1.20.1/0.15.0/profile/json":
			m.profileHits.Add(1)
			w.Write([]byte(`{
				"id": "fabric-loader-0.15.0-1.20.1",
				"inheritsFrom": "1.20.1",
				"mainClass": "net.fabricmc.loader.impl.launch.knot.KnotClient",
				"arguments": {"game": [], "jvm": ["-DFabricMcEmu= net.minecraft.client.main.Main "]},
				"libraries": [
					{"name": "org.ow2.asm:asm:9.6", "url": "` + m.URL + `/maven/", "sha1": "aa1824a3e8ad1a98e2c4cd1f8c9c1e3b5e2e2b4e", "size": 123},
					{"name": "net.fabricmc:intermediary:1.20.1", "url": "` + m.URL + `/maven"},
					{"name": "net.fabricmc:fabric-loader:0.15.0", "url": "` + m.URL + `/maven/", "sha1": "bb1824a3e8ad1a98e2c4cd1f8c9c1e3b5e2e2b4e", "size": 456}
				]
			}`))
		case "/maven/net/fabricmc/intermediary/1.20.1/intermediary-1.20.1.jar.sha1":
			m.sidecarHits.Add(1)
			if m.sidecarDown.Load() {
				http.NotFound(w, r)
				return
			}
			w.Write([]byte(intermediarySHA1))
		case "/maven/net/fabricmc/intermediary/1.20.1/intermediary-1.20.1.jar":
			w.Header().Set("Content-Length", "2048")
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(m.Close)
	return m
}

type recorder struct {
	mu    sync.Mutex
	kinds []observability.EventKind
}

func (r *recorder) Emit(e observability.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, e.Kind)
}

func (r *recorder) has(kind observability.EventKind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range r.kinds {
		if k == kind {
			return true
		}
	}
	return false
}

type fixture struct {
	piston  *mojangtest.Server
	meta    *meta
	vanilla *vanilla.Loader
	fabric  *Loader
	events  *recorder
}

func setup(t *testing.T) *fixture {
	t.Helper()
	piston := mojangtest.NewServer()
	t.Cleanup(piston.Close)
	piston.AddVersion(mojangtest.Release("1.20.1"))

	m := newMeta(t)
	env := mojangtest.LinuxEnv
	base := integrations.NewClient(nil, integrations.Options{})
	van := vanilla.New(mojang.NewClient(base, piston.ManifestURL()), vanilla.Options{Env: &env})
	t.Cleanup(func() { van.Close() })

	events := &recorder{}
	fab := New(loadermeta.NewClient(base, m.URL+"/v2"), van, Options{Options: manifest.Options{Sink: events}})
	t.Cleanup(func() { fab.Close() })

	return &fixture{piston: piston, meta: m, vanilla: van, fabric: fab, events: events}
}

func profile() *version.Profile {
	return &version.Profile{
		Name:             "fabric-pack",
		Loader:           version.Fabric,
		MinecraftVersion: "1.20.1",
		LoaderVersion:    "0.15.0",
	}
}

func TestResolveMergesOverVanilla(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	v, err := f.fabric.Resolve(ctx, profile())
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	van, err := f.vanilla.Resolve(ctx, profile().VanillaBase())
	if err != nil {
		t.Fatal(err)
	}

	if v.MainClass != KnotClient {
		t.Errorf("MainClass = %q, want %q", v.MainClass, KnotClient)
	}

	var names []string
	for _, l := range v.Libraries {
		names = append(names, l.Name)
	}
	want := []string{
		"com.mojang:brigadier:1.1.8",
		"org.ow2.asm:asm:9.6",
		"org.lwjgl:lwjgl:3.3.1",
		"org.lwjgl:lwjgl:3.3.1:natives-linux",
		"net.fabricmc:intermediary:1.20.1",
		"net.fabricmc:fabric-loader:0.15.0",
	}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("libraries = %v\nwant %v", names, want)
	}

	if !reflect.DeepEqual(v.Client, van.Client) {
		t.Errorf("client = %+v, want vanilla's %+v", v.Client, van.Client)
	}
	if !reflect.DeepEqual(v.Natives, van.Natives) {
		t.Errorf("natives = %+v, want vanilla's", v.Natives)
	}
	if !reflect.DeepEqual(v.AssetIndex, van.AssetIndex) {
		t.Errorf("asset index = %+v, want vanilla's %+v", v.AssetIndex, van.AssetIndex)
	}
	if !reflect.DeepEqual(v.Assets, van.Assets) {
		t.Error("assets differ from vanilla's")
	}
	if v.JavaVersion != van.JavaVersion {
		t.Errorf("JavaVersion = %d, want %d", v.JavaVersion, van.JavaVersion)
	}

	wantJVM := append(append([]string{}, van.Arguments.JVM...), "-DFabricMcEmu= net.minecraft.client.main.Main ")
	if !reflect.DeepEqual(v.Arguments.JVM, wantJVM) {
		t.Errorf("jvm = %v, want %v", v.Arguments.JVM, wantJVM)
	}
	if !reflect.DeepEqual(v.Arguments.Game, van.Arguments.Game) {
		t.Errorf("game = %v, want vanilla's %v", v.Arguments.Game, van.Arguments.Game)
	}

	inter := v.Libraries[4]
	if inter.SHA1 != intermediarySHA1 || inter.Size != 2048 {
		t.Errorf("intermediary not completed: %+v", inter)
	}
	if inter.URL != f.meta.URL+"/maven/net/fabricmc/intermediary/1.20.1/intermediary-1.20.1.jar" {
		t.Errorf("intermediary URL = %q", inter.URL)
	}

	for _, kind := range []observability.EventKind{
		observability.FetchingData, observability.DataFetched, observability.ManifestCached,
		observability.MergingLoaderData, observability.DataMerged,
	} {
		if !f.events.has(kind) {
			t.Errorf("missing %s event", kind)
		}
	}
}

func TestConcurrentQueriesShareFetches(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 8; i++ {
		for _, name := range f.fabric.Queries() {
			wg.Add(1)
			go func(name string) {
				defer wg.Done()
				if _, err := f.fabric.Query(ctx, profile(), name); err != nil {
					errs <- err
				}
			}(name)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("Query() error: %v", err)
	}

	if n := f.meta.profileHits.Load(); n != 1 {
		t.Errorf("profile fetched %d times, want 1", n)
	}
	if n := f.piston.Hits("/v1/packages/versions/1.20.1.json"); n != 1 {
		t.Errorf("vanilla version fetched %d times, want 1", n)
	}
	if n := f.meta.sidecarHits.Load(); n != 1 {
		t.Errorf("library sha1 fetched %d times, want 1", n)
	}
}

func TestExtractIsIdempotent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	raw, err := f.fabric.Repository().Raw(ctx, profile())
	if err != nil {
		t.Fatal(err)
	}
	fe := &fetcher{loader: version.Fabric, client: loadermeta.NewClient(integrations.NewClient(nil, integrations.Options{}), f.meta.URL+"/v2")}
	for _, q := range []Query{Arguments, MainClass} {
		a, err := fe.Extract(ctx, profile(), q, raw)
		if err != nil {
			t.Fatal(err)
		}
		b, err := fe.Extract(ctx, profile(), q, raw)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(a, b) {
			t.Errorf("Extract(%s) differs between calls", q)
		}
	}
	if raw.Profile.Libraries[1].SHA1 != "" {
		t.Error("extraction modified the raw profile")
	}
}

func TestErrorsAreNotCached(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.meta.sidecarDown.Store(true)

	_, err := f.fabric.Resolve(ctx, profile())
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Fatalf("error = %v, want NOT_FOUND from the sidecar", err)
	}

	f.meta.sidecarDown.Store(false)
	if _, err := f.fabric.Resolve(ctx, profile()); err != nil {
		t.Fatalf("Resolve() after recovery error: %v", err)
	}
	if n := f.meta.sidecarHits.Load(); n != 2 {
		t.Errorf("sidecar fetched %d times, want 2", n)
	}
}

func TestUnknownLoaderVersion(t *testing.T) {
	f := setup(t)
	p := profile()
	p.LoaderVersion = "0.0.1"

	_, err := f.fabric.Resolve(context.Background(), p)
	if !errors.Is(err, errors.ErrCodeVersionNotFound) {
		t.Fatalf("error = %v, want VERSION_NOT_FOUND", err)
	}
	if !f.events.has(observability.ManifestNotFound) {
		t.Error("missing ManifestNotFound event")
	}
	if raw, _ := f.fabric.Len(); raw != 0 {
		t.Errorf("raw entries = %d, want 0", raw)
	}
}
