package store

import (
	"context"
	"testing"
	"time"
)

type ttlRecorder struct {
	NullStore
	ttls []time.Duration
}

func (r *ttlRecorder) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	r.ttls = append(r.ttls, ttl)
	return nil
}

func TestCapped(t *testing.T) {
	ctx := context.Background()
	rec := &ttlRecorder{}
	s := Capped(rec, time.Hour)

	for _, ttl := range []time.Duration{0, time.Minute, 48 * time.Hour} {
		if err := s.Set(ctx, "k", nil, ttl); err != nil {
			t.Fatal(err)
		}
	}
	want := []time.Duration{time.Hour, time.Minute, time.Hour}
	for i, got := range rec.ttls {
		if got != want[i] {
			t.Errorf("write %d ttl = %s, want %s", i, got, want[i])
		}
	}

	if Capped(rec, 0) != Store(rec) {
		t.Error("Capped with no limit should return the store unchanged")
	}

	st, err := s.(Statter).Stats(ctx)
	if err != nil || st.Backend != "none" {
		t.Errorf("Stats = %+v, %v", st, err)
	}
}
