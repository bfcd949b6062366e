package reconcile

import (
	"sort"
	"sync"
	"time"
)

// Event is one value published for a collection.
type Event struct {
	Collection  string
	Revision    uint64
	PublishedAt time.Time
	Value       any
}

// Feed is the downstream consumer: it keeps the latest published value per collection.
type Feed struct {
	mu      sync.RWMutex
	latest  map[string]Event
	counts  map[string]int
	now     func() time.Time
	known   map[string]struct{}
	waiters map[string][]chan struct{}
}

func NewFeed() *Feed {
	return &Feed{
		latest:  make(map[string]Event),
		counts:  make(map[string]int),
		now:     time.Now,
		known:   make(map[string]struct{}),
		waiters: make(map[string][]chan struct{}),
	}
}

// Declare marks collections as served before their first publish.
func (f *Feed) Declare(collections ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range collections {
		f.known[c] = struct{}{}
	}
}

// Known reports whether collection was declared or has published.
func (f *Feed) Known(collection string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if _, ok := f.known[collection]; ok {
		return true
	}
	_, ok := f.latest[collection]
	return ok
}

func (f *Feed) Publish(collection string, value any, revision uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.known[collection] = struct{}{}
	f.latest[collection] = Event{Collection: collection, Revision: revision, PublishedAt: f.now().UTC(), Value: value}
	f.counts[collection]++
	for _, ch := range f.waiters[collection] {
		close(ch)
	}
	delete(f.waiters, collection)
}

func (f *Feed) Latest(collection string) (Event, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	ev, ok := f.latest[collection]
	return ev, ok
}

// Published reports how many events a collection has received.
func (f *Feed) Published(collection string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.counts[collection]
}

// Collections lists the collections that have published at least once.
func (f *Feed) Collections() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, 0, len(f.latest))
	for c := range f.latest {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Next returns a channel closed on the next publish to collection. A caller
// that stops waiting before then must Cancel the channel.
func (f *Feed) Next(collection string) <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.waiters[collection] = append(f.waiters[collection], ch)
	return ch
}

// Cancel drops a channel returned by Next. Cancelling a channel that was
// already released by a publish is a no-op.
func (f *Feed) Cancel(collection string, ch <-chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()

	waiters := f.waiters[collection]
	for i, w := range waiters {
		if (<-chan struct{})(w) != ch {
			continue
		}
		waiters = append(waiters[:i], waiters[i+1:]...)
		break
	}
	if len(waiters) == 0 {
		delete(f.waiters, collection)
		return
	}
	f.waiters[collection] = waiters
}

// Waiting reports how many callers are blocked on collection.
func (f *Feed) Waiting(collection string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.waiters[collection])
}
