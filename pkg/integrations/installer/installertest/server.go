// Package installertest serves installer JARs from memory for tests.
package installertest

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/klauspost/compress/zip"
)

// Jar builds a ZIP archive from name → content. Values that are not
// []byte or string are encoded as JSON.
func Jar(files map[string]any) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, v := range files {
		var data []byte
		switch v := v.(type) {
		case []byte:
			data = v
		case string:
			data = []byte(v)
		default:
			data, _ = json.Marshal(v)
		}
		f, _ := w.Create(name)
		f.Write(data)
	}
	w.Close()
	return buf.Bytes()
}

// Server is a Maven repository holding artifacts and their .sha1
// sidecars.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	artifacts map[string][]byte
	corrupt   map[string]int

	downloads atomic.Int32
}

// NewServer starts a repository. Close it when done.
func NewServer() *Server {
	s := &Server{artifacts: make(map[string][]byte), corrupt: make(map[string]int)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Put publishes data at the repository path.
func (s *Server) Put(path string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[strings.TrimPrefix(path, "/")] = data
}

// Corrupt makes the next n downloads of path return damaged bytes while
// the sidecar keeps the correct hash.
func (s *Server) Corrupt(path string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.corrupt[strings.TrimPrefix(path, "/")] = n
}

// Downloads counts artifact (not sidecar) downloads.
func (s *Server) Downloads() int { return int(s.downloads.Load()) }

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/")
	if base, ok := strings.CutSuffix(path, ".sha1"); ok {
		data, ok := s.artifacts[base]
		if !ok {
			http.NotFound(w, r)
			return
		}
		sum := sha1.Sum(data)
		w.Write([]byte(hex.EncodeToString(sum[:])))
		return
	}

	data, ok := s.artifacts[path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.downloads.Add(1)
	if s.corrupt[path] > 0 {
		s.corrupt[path]--
		w.Write([]byte("not a jar"))
		return
	}
	w.Write(data)
}
