package observability

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// EventKind names a resolution progress notification.
type EventKind string

const (
	FetchingData      EventKind = "fetching_data"
	DataFetched       EventKind = "data_fetched"
	ManifestNotFound  EventKind = "manifest_not_found"
	ManifestCached    EventKind = "manifest_cached"
	MergingLoaderData EventKind = "merging_loader_data"
	DataMerged        EventKind = "data_merged"
)

// Event is one progress notification.
type Event struct {
	ID      string    `json:"id"`
	Kind    EventKind `json:"kind"`
	Loader  string    `json:"loader"`
	Profile string    `json:"profile"`
	Detail  string    `json:"detail,omitempty"`
	Time    time.Time `json:"time"`
}

// NewEvent stamps an event with a fresh ID and the current time.
func NewEvent(kind EventKind, loader, profile, detail string) Event {
	return Event{
		ID:      uuid.NewString(),
		Kind:    kind,
		Loader:  loader,
		Profile: profile,
		Detail:  detail,
		Time:    time.Now(),
	}
}

// Sink receives events. Emit must not block resolution.
type Sink interface {
	Emit(Event)
}

// NoopSink discards every event.
type NoopSink struct{}

func (NoopSink) Emit(Event) {}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }

// Broadcaster fans events out to subscribers. Subscribers that fall behind
// lose events rather than stall the emitter.
type Broadcaster struct {
	mu      sync.RWMutex
	subs    map[int]chan Event
	next    int
	dropped atomic.Uint64
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan Event)}
}

// Subscribe registers a subscriber with the given buffer size. The returned
// cancel function unregisters it and closes the channel.
func (b *Broadcaster) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Emit delivers e to every subscriber with room in its buffer.
func (b *Broadcaster) Emit(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.dropped.Add(1)
		}
	}
}

// Dropped reports how many deliveries were skipped because a subscriber
// buffer was full.
func (b *Broadcaster) Dropped() uint64 {
	return b.dropped.Load()
}
