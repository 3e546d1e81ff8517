package httputil

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cenk/backoff"
	circuit "github.com/rubyist/circuitbreaker"
)

// ErrUpstreamDown is returned while a host's breaker is open.
var ErrUpstreamDown = errors.New("upstream unavailable")

// BreakerTransport wraps a RoundTripper with one circuit breaker per host.
// Transport errors and 5xx responses count as failures; a caller
// cancelling its own request does not.
type BreakerTransport struct {
	next       http.RoundTripper
	threshold  int64
	backoff    time.Duration
	maxBackoff time.Duration

	mu       sync.RWMutex
	breakers map[string]*circuit.Breaker
}

// NewBreakerTransport wraps next. A tripped breaker first stays open for
// initial, doubling up to ceiling on repeated failed probes.
func NewBreakerTransport(next http.RoundTripper, threshold int, initial, ceiling time.Duration) *BreakerTransport {
	if initial <= 0 {
		initial = 30 * time.Second
	}
	if ceiling < initial {
		ceiling = initial
	}
	return &BreakerTransport{
		next:       next,
		threshold:  int64(threshold),
		backoff:    initial,
		maxBackoff: ceiling,
		breakers:   make(map[string]*circuit.Breaker),
	}
}

// breaker returns or creates the breaker for host.
func (t *BreakerTransport) breaker(host string) *circuit.Breaker {
	t.mu.RLock()
	b, ok := t.breakers[host]
	t.mu.RUnlock()
	if ok {
		return b
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if b, ok := t.breakers[host]; ok {
		return b
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = t.backoff
	expBackoff.MaxInterval = t.maxBackoff
	expBackoff.Multiplier = 2.0
	expBackoff.Reset()

	b = circuit.NewBreakerWithOptions(&circuit.Options{
		BackOff:    expBackoff,
		ShouldTrip: circuit.ConsecutiveTripFunc(t.threshold),
	})
	t.breakers[host] = b
	return b
}

// RoundTrip implements http.RoundTripper.
func (t *BreakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	host := req.URL.Host
	b := t.breaker(host)
	if !b.Ready() {
		return nil, fmt.Errorf("circuit breaker open for %s: %w", host, ErrUpstreamDown)
	}

	resp, err := t.next.RoundTrip(req)
	switch {
	case err != nil && req.Context().Err() != nil:
	case err != nil || resp.StatusCode >= 500:
		b.Fail()
	default:
		b.Success()
	}
	return resp, err
}

// States reports "open" or "closed" per host.
func (t *BreakerTransport) States() map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	states := make(map[string]string, len(t.breakers))
	for host, b := range t.breakers {
		if b.Tripped() {
			states[host] = "open"
		} else {
			states[host] = "closed"
		}
	}
	return states
}

var _ http.RoundTripper = (*BreakerTransport)(nil)
