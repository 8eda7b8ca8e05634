package store

import (
	"sync"

	"stealthcompany.com/hospsync/internal/entity"
	"stealthcompany.com/hospsync/internal/metrics"
)

// Notifier is the typed change hub. Observers register a handler per
// collection kind; the store publishes after every cache change.
//
// Delivery is asynchronous: each subscriber owns a goroutine fed by a
// 1-buffered channel, so a publish never runs handlers inline with the
// mutation or subscription code path, and a slow handler never blocks a
// publisher. Back-to-back publishes may coalesce. Events carry no payload;
// handlers re-read the collection cache.
type Notifier struct {
	mu     sync.RWMutex
	subs   map[entity.Kind]map[uint64]chan struct{}
	nextID uint64
}

// NewNotifier returns an empty hub.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[entity.Kind]map[uint64]chan struct{})}
}

// Subscribe registers fn for change events of the given kind and returns
// the function that cancels the registration.
func (n *Notifier) Subscribe(kind entity.Kind, fn func()) (cancel func()) {
	ch := make(chan struct{}, 1)

	n.mu.Lock()
	if n.subs[kind] == nil {
		n.subs[kind] = make(map[uint64]chan struct{})
	}
	id := n.nextID
	n.nextID++
	n.subs[kind][id] = ch
	n.mu.Unlock()

	go func() {
		for range ch {
			fn()
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs[kind], id)
			n.mu.Unlock()
			close(ch)
		})
	}
}

// Publish fans one change event out to every subscriber of the kind.
func (n *Notifier) Publish(kind entity.Kind) {
	n.mu.RLock()
	for _, ch := range n.subs[kind] {
		select {
		case ch <- struct{}{}:
		default: // subscriber already has a pending event
		}
	}
	n.mu.RUnlock()

	metrics.RecordChangeEvent(string(kind))
}
