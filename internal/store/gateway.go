package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"stealthcompany.com/hospsync/internal/metrics"
)

// ErrMissingID is returned when an update or delete names no identifier.
// Rejected before any remote call is attempted.
var ErrMissingID = errors.New("entity has no identifier")

// Create persists a new entity. When the entity carries no identifier one
// is generated before the write, so the returned entity's identifier is
// known without a follow-up read. On a confirmed write the cache is
// updated and a change event published; on failure the cache is untouched.
func (c *Collection[T]) Create(ctx context.Context, e T) (T, error) {
	path := c.codec.Kind.Path()

	id := c.codec.Key(e)
	if id == "" {
		id = c.remote.GenerateKey(path)
		e = c.codec.WithKey(e, id)
	}

	start := time.Now()
	err := c.remote.Write(ctx, path, id, c.codec.Encode(e))
	duration := time.Since(start)

	if err != nil {
		metrics.RecordMutation(path, "create", "error", duration)
		var zero T
		return zero, fmt.Errorf("failed to create %s/%s: %w", path, id, err)
	}
	metrics.RecordMutation(path, "create", "success", duration)

	c.cache.Upsert(id, e)
	c.notifier.Publish(c.codec.Kind)

	log.Info().
		Str("collection", path).
		Str("id", id).
		Msg("Created entity")
	return e, nil
}

// Update overwrites the entity at its identifier, last writer wins. The
// identifier must already be known.
func (c *Collection[T]) Update(ctx context.Context, e T) error {
	path := c.codec.Kind.Path()

	id := c.codec.Key(e)
	if id == "" {
		metrics.RecordMutation(path, "update", "rejected", 0)
		return ErrMissingID
	}

	start := time.Now()
	err := c.remote.Write(ctx, path, id, c.codec.Encode(e))
	duration := time.Since(start)

	if err != nil {
		metrics.RecordMutation(path, "update", "error", duration)
		return fmt.Errorf("failed to update %s/%s: %w", path, id, err)
	}
	metrics.RecordMutation(path, "update", "success", duration)

	c.cache.Upsert(id, e)
	c.notifier.Publish(c.codec.Kind)
	return nil
}

// Delete removes the entity at the identifier from the remote store, then
// from the cache.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	path := c.codec.Kind.Path()

	if id == "" {
		metrics.RecordMutation(path, "delete", "rejected", 0)
		return ErrMissingID
	}

	start := time.Now()
	err := c.remote.Delete(ctx, path, id)
	duration := time.Since(start)

	if err != nil {
		metrics.RecordMutation(path, "delete", "error", duration)
		return fmt.Errorf("failed to delete %s/%s: %w", path, id, err)
	}
	metrics.RecordMutation(path, "delete", "success", duration)

	c.cache.Remove(id)
	c.notifier.Publish(c.codec.Kind)

	log.Info().
		Str("collection", path).
		Str("id", id).
		Msg("Deleted entity")
	return nil
}

// SetField overwrites one named field of the record, then refreshes the
// whole collection from the remote store instead of patching the cache
// locally. The extra round trip guarantees the cache reflects exactly what
// the remote store now holds.
func (c *Collection[T]) SetField(ctx context.Context, id, field string, value any) error {
	path := c.codec.Kind.Path()

	if id == "" {
		metrics.RecordMutation(path, "set_field", "rejected", 0)
		return ErrMissingID
	}

	start := time.Now()
	err := c.remote.WriteField(ctx, path, id, field, value)
	duration := time.Since(start)

	if err != nil {
		metrics.RecordMutation(path, "set_field", "error", duration)
		return fmt.Errorf("failed to set %s on %s/%s: %w", field, path, id, err)
	}
	metrics.RecordMutation(path, "set_field", "success", duration)

	return c.Refresh(ctx)
}
