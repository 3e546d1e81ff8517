package manifest

import (
	"context"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/lodestone/pkg/errors"
	"github.com/matzehuels/lodestone/pkg/observability"
	"github.com/matzehuels/lodestone/pkg/version"
)

type variant int

const (
	qLibraries variant = iota
	qMainClass
	qFull
)

func (v variant) String() string {
	return [...]string{"libraries", "main_class", "full"}[v]
}

type rawDoc struct {
	main string
	libs []string
}

type fakeQuery struct {
	fetches  atomic.Int32
	extracts atomic.Int32
	fail     atomic.Bool
	delay    time.Duration
}

func (f *fakeQuery) FetchFullData(ctx context.Context, p *version.Profile) (*rawDoc, error) {
	f.fetches.Add(1)
	time.Sleep(f.delay)
	if f.fail.Load() {
		return nil, errors.New(errors.ErrCodeVersionNotFound, "unknown version %s", p.MinecraftVersion)
	}
	return &rawDoc{main: "com.example.Main", libs: []string{"a:b:1", "c:d:2"}}, nil
}

func (f *fakeQuery) Extract(ctx context.Context, p *version.Profile, q variant, raw *rawDoc) (version.MetaData, error) {
	f.extracts.Add(1)
	switch q {
	case qLibraries:
		libs := make(version.Libraries, 0, len(raw.libs))
		for _, n := range raw.libs {
			libs = append(libs, version.Library{Name: n})
		}
		return libs, nil
	case qMainClass:
		return version.MainClass(raw.main), nil
	}
	return f.VersionBuilder(ctx, p, raw)
}

func (f *fakeQuery) VersionBuilder(ctx context.Context, p *version.Profile, raw *rawDoc) (*version.Version, error) {
	v := &version.Version{MainClass: raw.main}
	for _, n := range raw.libs {
		v.Libraries = append(v.Libraries, version.Library{Name: n})
	}
	return v, nil
}

func (f *fakeQuery) CacheTTL() time.Duration { return DefaultTTL }

func (f *fakeQuery) QueryTTL(q variant) time.Duration {
	if q == qMainClass {
		return time.Minute
	}
	return DefaultTTL
}

var profile = &version.Profile{Name: "pack", Loader: version.Fabric, MinecraftVersion: "1.20.1", LoaderVersion: "0.15.0"}

func TestRepositorySharesRawFetch(t *testing.T) {
	q := &fakeQuery{delay: 20 * time.Millisecond}
	repo := NewRepository[variant, *rawDoc](version.Fabric, q, Options{})
	defer repo.Close()

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(v variant) {
			defer wg.Done()
			if _, err := repo.Get(context.Background(), profile, v); err != nil {
				t.Error(err)
			}
		}(variant(i % 3))
	}
	wg.Wait()

	if got := q.fetches.Load(); got != 1 {
		t.Errorf("raw fetches = %d, want 1", got)
	}
	if got := q.extracts.Load(); got != 3 {
		t.Errorf("extractions = %d, want one per variant (3)", got)
	}
	raw, queries := repo.Len()
	if raw != 1 || queries != 3 {
		t.Errorf("Len() = %d, %d", raw, queries)
	}
}

func TestRepositoryExtractIsIdempotent(t *testing.T) {
	q := &fakeQuery{}
	raw, _ := q.FetchFullData(context.Background(), profile)

	for _, v := range []variant{qLibraries, qMainClass, qFull} {
		a, err := q.Extract(context.Background(), profile, v, raw)
		if err != nil {
			t.Fatal(err)
		}
		b, err := q.Extract(context.Background(), profile, v, raw)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(a, b) {
			t.Errorf("%s: extraction differs between calls", v)
		}
	}
}

func TestRepositoryQueryTTL(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	q := &fakeQuery{}
	repo := NewRepository[variant, *rawDoc](version.Fabric, q, Options{Clock: clock})
	defer repo.Close()
	ctx := context.Background()

	if _, err := repo.Get(ctx, profile, qMainClass); err != nil {
		t.Fatal(err)
	}
	mu.Lock()
	now = now.Add(2 * time.Minute)
	mu.Unlock()

	md, err := repo.Get(ctx, profile, qMainClass)
	if err != nil {
		t.Fatal(err)
	}
	if md != version.MainClass("com.example.Main") {
		t.Errorf("main class = %v", md)
	}
	if q.extracts.Load() != 2 {
		t.Errorf("short-lived view should be re-extracted, extracts = %d", q.extracts.Load())
	}
	if q.fetches.Load() != 1 {
		t.Errorf("raw data should still be cached, fetches = %d", q.fetches.Load())
	}
}

func TestRepositoryErrorNotCached(t *testing.T) {
	q := &fakeQuery{}
	q.fail.Store(true)

	var events []observability.EventKind
	var mu sync.Mutex
	sink := observability.SinkFunc(func(e observability.Event) {
		mu.Lock()
		events = append(events, e.Kind)
		mu.Unlock()
	})

	repo := NewRepository[variant, *rawDoc](version.Fabric, q, Options{Sink: sink})
	defer repo.Close()
	ctx := context.Background()

	_, err := repo.Get(ctx, profile, qFull)
	if !errors.Is(err, errors.ErrCodeVersionNotFound) {
		t.Fatalf("err = %v, want VERSION_NOT_FOUND", err)
	}
	if raw, queries := repo.Len(); raw != 0 || queries != 0 {
		t.Errorf("failure populated the cache: %d raw, %d queries", raw, queries)
	}

	q.fail.Store(false)
	md, err := repo.Get(ctx, profile, qFull)
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := md.(*version.Version); !ok || v.MainClass != "com.example.Main" {
		t.Errorf("Get = %#v", md)
	}
	if q.fetches.Load() != 2 {
		t.Errorf("fetches = %d, want 2", q.fetches.Load())
	}

	want := []observability.EventKind{
		observability.FetchingData,
		observability.ManifestNotFound,
		observability.FetchingData,
		observability.DataFetched,
		observability.ManifestCached,
	}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestRepositoryBuildAndClear(t *testing.T) {
	q := &fakeQuery{}
	repo := NewRepository[variant, *rawDoc](version.Fabric, q, Options{})
	defer repo.Close()
	ctx := context.Background()

	v, err := repo.Build(ctx, profile)
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Libraries) != 2 {
		t.Errorf("Libraries = %v", v.Libraries)
	}

	repo.Clear()
	if _, err := repo.Build(ctx, profile); err != nil {
		t.Fatal(err)
	}
	if q.fetches.Load() != 2 {
		t.Errorf("Clear should force a refetch, fetches = %d", q.fetches.Load())
	}
}
