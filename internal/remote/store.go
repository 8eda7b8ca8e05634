// Package remote abstracts the remote hierarchical store the entity store
// synchronizes with. The store exposes per-path full-snapshot
// subscriptions, overwrite-at-key writes, and key generation; it never
// delivers deltas.
package remote

import "context"

// Snapshot is the complete, point-in-time contents of one path, keyed by
// record identifier.
type Snapshot map[string]map[string]any

// Filter restricts a subscription or fetch to records whose field equals
// the given value. Used to scope appointment subscriptions to one doctor.
type Filter struct {
	Field string
	Value any
}

// Subscription is one live snapshot stream.
type Subscription interface {
	// Snapshots delivers the full current contents of the path whenever
	// anything under it changes. The channel closes when the subscription
	// ends; Err reports why.
	Snapshots() <-chan Snapshot

	// Err returns the error that terminated the stream, if any.
	Err() error

	// Close ends the subscription and releases its resources.
	Close() error
}

// Store is the remote hierarchical store.
type Store interface {
	// Subscribe opens a snapshot stream for the path, optionally filtered.
	Subscribe(ctx context.Context, path string, filter *Filter) (Subscription, error)

	// Fetch reads the full current contents of the path once.
	Fetch(ctx context.Context, path string, filter *Filter) (Snapshot, error)

	// Write overwrites the record at path/key.
	Write(ctx context.Context, path, key string, rec map[string]any) error

	// WriteField overwrites a single named field of the record at path/key.
	WriteField(ctx context.Context, path, key, field string, value any) error

	// Delete removes the record at path/key.
	Delete(ctx context.Context, path, key string) error

	// GenerateKey returns a new unique key for the path.
	GenerateKey(path string) string
}
