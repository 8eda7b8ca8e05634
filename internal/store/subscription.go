package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"stealthcompany.com/hospsync/internal/metrics"
	"stealthcompany.com/hospsync/internal/remote"
)

// ErrAlreadySubscribed is returned when a collection already has a live
// subscription.
var ErrAlreadySubscribed = errors.New("collection is already subscribed")

// Backoff bounds for re-subscribing after a failed snapshot stream.
const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Subscribe starts the long-lived snapshot subscription for the
// collection. It returns once the subscription loop is running; the cache
// fills as snapshots arrive. The subscription lives until Unsubscribe is
// called or ctx is cancelled, re-subscribing with exponential backoff when
// the remote stream fails.
func (c *Collection[T]) Subscribe(ctx context.Context) error {
	return c.subscribe(ctx, nil)
}

func (c *Collection[T]) subscribe(ctx context.Context, filter *remote.Filter) error {
	c.mu.Lock()
	if c.stop != nil {
		c.mu.Unlock()
		return ErrAlreadySubscribed
	}
	runCtx, cancel := context.WithCancel(ctx)
	stopped := make(chan struct{})
	c.stop = cancel
	c.stopped = stopped
	c.state = Subscribing
	c.mu.Unlock()

	go c.run(runCtx, filter, stopped)
	return nil
}

// Unsubscribe tears the subscription down and waits for its goroutine to
// exit. The cache keeps its last-known-good contents.
func (c *Collection[T]) Unsubscribe() {
	c.mu.Lock()
	stop, stopped := c.stop, c.stopped
	c.stop, c.stopped = nil, nil
	c.mu.Unlock()

	if stop == nil {
		return
	}
	stop()
	<-stopped
	c.setState(Unsubscribed)
}

func (c *Collection[T]) run(ctx context.Context, filter *remote.Filter, stopped chan struct{}) {
	defer close(stopped)

	backoff := initialBackoff
	for {
		c.setState(Subscribing)

		sub, err := c.remote.Subscribe(ctx, c.codec.Kind.Path(), filter)
		if err != nil {
			c.setState(Errored)
			log.Warn().
				Err(err).
				Str("collection", c.codec.Kind.Path()).
				Msg("Failed to open subscription")
		} else {
			for snap := range sub.Snapshots() {
				c.setState(Live)
				backoff = initialBackoff
				c.applySnapshot(snap)
			}
			sub.Close()
			if err := sub.Err(); err != nil {
				c.setState(Errored)
				log.Warn().
					Err(err).
					Str("collection", c.codec.Kind.Path()).
					Msg("Snapshot stream failed")
			}
		}

		if ctx.Err() != nil {
			return
		}

		log.Info().
			Str("collection", c.codec.Kind.Path()).
			Dur("backoff", backoff).
			Msg("Re-subscribing after stream failure")

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// applySnapshot decodes every record independently, drops malformed ones
// with a warning, atomically replaces the cache, and publishes a change
// event. A snapshot always fully determines collection state: there is no
// incremental merge.
func (c *Collection[T]) applySnapshot(snap remote.Snapshot) {
	path := c.codec.Kind.Path()

	decoded := make(map[string]T, len(snap))
	skipped := 0
	for id, rec := range snap {
		e, err := c.codec.Decode(rec, id)
		if err != nil {
			skipped++
			log.Warn().
				Err(err).
				Str("collection", path).
				Str("record_id", id).
				Msg("Skipping malformed record")
			continue
		}
		decoded[id] = e
	}

	c.cache.ReplaceAll(decoded)
	metrics.RecordSnapshot(path, len(decoded), skipped, len(decoded))
	c.notifier.Publish(c.codec.Kind)

	log.Debug().
		Str("collection", path).
		Int("records", len(decoded)).
		Int("skipped", skipped).
		Msg("Applied snapshot")
}

// Refresh reads the path once and applies the result like a snapshot. Used
// after partial writes so the cache reflects exactly what the remote store
// now holds.
func (c *Collection[T]) Refresh(ctx context.Context) error {
	snap, err := c.remote.Fetch(ctx, c.codec.Kind.Path(), nil)
	if err != nil {
		return fmt.Errorf("failed to refresh %s: %w", c.codec.Kind.Path(), err)
	}
	c.applySnapshot(snap)
	return nil
}
