package store

import (
	"sync"

	"stealthcompany.com/hospsync/internal/cache"
	"stealthcompany.com/hospsync/internal/entity"
	"stealthcompany.com/hospsync/internal/remote"
)

// SubscriptionState tracks one collection's subscription lifecycle.
type SubscriptionState int32

const (
	Unsubscribed SubscriptionState = iota
	Subscribing
	Live
	Errored
)

func (s SubscriptionState) String() string {
	switch s {
	case Unsubscribed:
		return "unsubscribed"
	case Subscribing:
		return "subscribing"
	case Live:
		return "live"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// Collection is one synchronized entity collection: the typed cache, the
// subscription that keeps it current, and the write-through mutation
// operations. All methods are safe for concurrent use.
type Collection[T any] struct {
	codec    entity.Codec[T]
	remote   remote.Store
	notifier *Notifier
	cache    *cache.Map[T]

	mu      sync.Mutex // guards the subscription lifecycle below
	state   SubscriptionState
	stop    func()
	stopped chan struct{}
}

func newCollection[T any](codec entity.Codec[T], r remote.Store, n *Notifier) *Collection[T] {
	return &Collection[T]{
		codec:    codec,
		remote:   r,
		notifier: n,
		cache:    cache.New[T](),
	}
}

// Kind returns the collection's kind.
func (c *Collection[T]) Kind() entity.Kind {
	return c.codec.Kind
}

// Get returns the cached entity with the given identifier.
func (c *Collection[T]) Get(id string) (T, bool) {
	return c.cache.Get(id)
}

// List returns all cached entities. Order is unspecified.
func (c *Collection[T]) List() []T {
	return c.cache.List()
}

// Len returns the number of cached entities.
func (c *Collection[T]) Len() int {
	return c.cache.Len()
}

// Key returns the entity's identifier.
func (c *Collection[T]) Key(e T) string {
	return c.codec.Key(e)
}

// WithKey returns a copy of the entity carrying the given identifier.
func (c *Collection[T]) WithKey(e T, id string) T {
	return c.codec.WithKey(e, id)
}

// State returns the current subscription state.
func (c *Collection[T]) State() SubscriptionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Collection[T]) setState(s SubscriptionState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}
