package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestNullStore(t *testing.T) {
	ctx := context.Background()
	s := NewNullStore()
	defer s.Close()

	if err := s.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	data, hit, err := s.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullStore should not store data")
	}

	if err := s.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Errorf("Clear error: %v", err)
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "store"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if _, hit, _ := s.Get(ctx, "missing"); hit {
		t.Error("empty store should miss")
	}

	if err := s.Set(ctx, "assets:5", []byte(`{"objects":{}}`), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := s.Get(ctx, "assets:5")
	if err != nil || !hit {
		t.Fatalf("Get = hit %v, err %v", hit, err)
	}
	if string(data) != `{"objects":{}}` {
		t.Errorf("Get data = %q", data)
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.Entries != 1 || st.Bytes == 0 || st.Backend != "file" {
		t.Errorf("Stats = %+v", st)
	}

	if err := s.Delete(ctx, "assets:5"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := s.Get(ctx, "assets:5"); hit {
		t.Error("deleted key should miss")
	}
	if err := s.Delete(ctx, "assets:5"); err != nil {
		t.Errorf("deleting a missing key should succeed: %v", err)
	}
}

func TestFileStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	if err := s.Set(ctx, "short", []byte("x"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "forever", []byte("y"), 0); err != nil {
		t.Fatal(err)
	}

	now = now.Add(2 * time.Minute)

	if _, hit, _ := s.Get(ctx, "short"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(s.path("short")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed from disk")
	}
	if _, hit, _ := s.Get(ctx, "forever"); !hit {
		t.Error("zero TTL entry should never expire")
	}
}

func TestFileStoreCorruptEntry(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	p := s.path("bad")
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, hit, err := s.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("corrupt entry: hit %v err %v, want miss", hit, err)
	}
}

func TestFileStoreClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := s.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	st, _ := s.Stats(ctx)
	if st.Entries != 0 {
		t.Errorf("Entries after Clear = %d", st.Entries)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Error("Clear should keep the store directory")
	}
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	s, err := NewRedisStore(ctx, RedisOptions{Addr: "redis://" + mr.Addr(), Prefix: "test:"})
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	defer s.Close()

	if err := s.Set(ctx, "k1", []byte("v1"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "k2", []byte("v2"), 0); err != nil {
		t.Fatal(err)
	}
	if err := mr.Set("other:k", "untouched"); err != nil {
		t.Fatal(err)
	}

	data, hit, err := s.Get(ctx, "k1")
	if err != nil || !hit || string(data) != "v1" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}
	if !mr.Exists("test:k1") {
		t.Error("keys should be stored under the prefix")
	}

	mr.FastForward(2 * time.Minute)
	if _, hit, _ := s.Get(ctx, "k1"); hit {
		t.Error("expired key should miss")
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.Entries != 1 {
		t.Errorf("Entries = %d, want 1", st.Entries)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := s.Get(ctx, "k2"); hit {
		t.Error("Clear should remove prefixed keys")
	}
	if !mr.Exists("other:k") {
		t.Error("Clear should not touch keys outside the prefix")
	}
}

func TestRedisStoreUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := NewRedisStore(ctx, RedisOptions{Addr: addr}); err == nil {
		t.Error("NewRedisStore should fail when redis is down")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestKey(t *testing.T) {
	k1 := Key("assets", "5", "https://a")
	k2 := Key("assets", "5", "https://b")
	if k1 == k2 {
		t.Error("different parts should produce different keys")
	}
	if k1[:7] != "assets:" {
		t.Errorf("key should carry prefix: %s", k1)
	}
}
