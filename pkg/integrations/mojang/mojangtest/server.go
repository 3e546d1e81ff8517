// Package mojangtest provides an in-process Piston metadata server for
// tests.
package mojangtest

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/matzehuels/lodestone/pkg/integrations/mojang"
)

// Server serves a version manifest, version documents and asset indexes
// from memory.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	versions map[string][]byte
	indexes  map[string][]byte
	order    []string

	hits sync.Map // path -> *atomic.Int64
}

// NewServer starts a server. Close it when done.
func NewServer() *Server {
	s := &Server{
		versions: make(map[string][]byte),
		indexes:  make(map[string][]byte),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// ManifestURL is the address of the version manifest.
func (s *Server) ManifestURL() string {
	return s.URL + "/mc/game/version_manifest_v2.json"
}

// AddVersion registers a version document. Its asset index ref, if any,
// is pointed at this server and filled in with the index hash.
func (s *Server) AddVersion(v *mojang.VersionDetail, index *mojang.AssetIndex) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index != nil {
		data, _ := json.Marshal(index)
		id := v.ID
		if v.AssetIndex != nil && v.AssetIndex.ID != "" {
			id = v.AssetIndex.ID
		}
		s.indexes[id] = data
		v.AssetIndex = &mojang.AssetIndexRef{
			ID:   id,
			SHA1: hash(data),
			Size: int64(len(data)),
			URL:  s.URL + "/v1/packages/indexes/" + id + ".json",
		}
	}
	data, _ := json.Marshal(v)
	if _, ok := s.versions[v.ID]; !ok {
		s.order = append(s.order, v.ID)
	}
	s.versions[v.ID] = data
}

// Hits returns the number of requests for path.
func (s *Server) Hits(path string) int64 {
	n, ok := s.hits.Load(path)
	if !ok {
		return 0
	}
	return n.(*atomic.Int64).Load()
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	n, _ := s.hits.LoadOrStore(r.URL.Path, new(atomic.Int64))
	n.(*atomic.Int64).Add(1)

	s.mu.Lock()
	defer s.mu.Unlock()

	if r.URL.Path == "/mc/game/version_manifest_v2.json" {
		s.writeManifest(w)
		return
	}
	var data []byte
	var ok bool
	if id, found := strings.CutPrefix(r.URL.Path, "/v1/packages/versions/"); found {
		data, ok = s.versions[strings.TrimSuffix(id, ".json")]
	} else if id, found := strings.CutPrefix(r.URL.Path, "/v1/packages/indexes/"); found {
		data, ok = s.indexes[strings.TrimSuffix(id, ".json")]
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Write(data)
}

func (s *Server) writeManifest(w http.ResponseWriter) {
	var m mojang.Manifest
	for _, id := range s.order {
		data := s.versions[id]
		m.Versions = append(m.Versions, mojang.ManifestEntry{
			ID:   id,
			Type: "release",
			URL:  s.URL + "/v1/packages/versions/" + id + ".json",
			SHA1: hash(data),
		})
		m.Latest.Release = id
	}
	json.NewEncoder(w).Encode(m)
}

func hash(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}
