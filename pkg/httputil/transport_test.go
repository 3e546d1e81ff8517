package httputil

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestTransportUserAgent(t *testing.T) {
	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get("User-Agent"))
	}))
	defer srv.Close()

	tr := NewTransport(DefaultOptions())
	defer tr.Close()
	client := &http.Client{Transport: tr}

	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got.Load() != "lodestone" {
		t.Errorf("User-Agent = %v, want lodestone", got.Load())
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	req.Header.Set("User-Agent", "custom")
	resp, err = client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got.Load() != "custom" {
		t.Errorf("explicit User-Agent overwritten: %v", got.Load())
	}
}

func TestTransportDNSCacheDialsLocalhost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	tr := NewTransport(DefaultOptions())
	defer tr.Close()
	client := &http.Client{Transport: tr, Timeout: 5 * time.Second}

	// Replace the numeric host with a name so the cached resolver is used.
	_, port, err := net.SplitHostPort(srv.Listener.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	resp, err := client.Get("http://localhost:" + port)
	if err != nil {
		t.Fatalf("GET via dnscache: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestBreakerTripsAfterThreshold(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	bt := NewBreakerTransport(http.DefaultTransport, 3, time.Hour, time.Hour)
	client := &http.Client{Transport: bt}

	for i := 0; i < 3; i++ {
		resp, err := client.Get(srv.URL)
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadGateway {
			t.Fatalf("status = %d", resp.StatusCode)
		}
	}

	_, err := client.Get(srv.URL)
	if !errors.Is(err, ErrUpstreamDown) {
		t.Fatalf("err = %v, want ErrUpstreamDown", err)
	}
	if hits.Load() != 3 {
		t.Errorf("server hits = %d, want 3 (open breaker must not reach upstream)", hits.Load())
	}

	states := bt.States()
	if len(states) != 1 {
		t.Fatalf("states = %v", states)
	}
	for _, s := range states {
		if s != "open" {
			t.Errorf("state = %s, want open", s)
		}
	}
}

func TestBreakerSuccessResets(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	bt := NewBreakerTransport(http.DefaultTransport, 2, time.Hour, time.Hour)
	client := &http.Client{Transport: bt}
	get := func() error {
		resp, err := client.Get(srv.URL)
		if err != nil {
			return err
		}
		resp.Body.Close()
		return nil
	}

	fail.Store(true)
	if err := get(); err != nil {
		t.Fatal(err)
	}
	fail.Store(false)
	if err := get(); err != nil {
		t.Fatal(err)
	}
	fail.Store(true)
	if err := get(); err != nil {
		t.Fatalf("a success should reset the failure count: %v", err)
	}
}

func TestBreakerIgnoresCallerCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	bt := NewBreakerTransport(http.DefaultTransport, 1, time.Hour, time.Hour)
	client := &http.Client{Transport: bt}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	if _, err := client.Do(req); err == nil {
		t.Fatal("expected timeout")
	}

	for _, s := range bt.States() {
		if s != "closed" {
			t.Errorf("caller cancellation tripped the breaker")
		}
	}
}
