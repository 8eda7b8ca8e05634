package remote

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/couchbase/gocb/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CouchbaseStore implements Store on a Couchbase bucket. Each entity path
// maps to a named collection in the default scope; record keys are the
// document IDs.
//
// Couchbase has no server-push snapshot stream, so subscriptions poll the
// path with a N1QL full read and deliver a snapshot only when the contents
// actually changed since the last poll.
type CouchbaseStore struct {
	conn         *Connection
	pollInterval time.Duration
}

// NewCouchbaseStore wraps an established connection. pollInterval governs
// how often subscriptions re-read their path.
func NewCouchbaseStore(conn *Connection, pollInterval time.Duration) *CouchbaseStore {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &CouchbaseStore{conn: conn, pollInterval: pollInterval}
}

func (s *CouchbaseStore) collection(path string) *gocb.Collection {
	return s.conn.Bucket().Collection(path)
}

// Write overwrites the record at path/key.
func (s *CouchbaseStore) Write(ctx context.Context, path, key string, rec map[string]any) error {
	start := time.Now()
	_, err := s.collection(path).Upsert(key, rec, &gocb.UpsertOptions{Context: ctx})
	duration := time.Since(start)

	if err != nil {
		log.Error().
			Err(err).
			Str("path", path).
			Str("key", key).
			Msg("Failed to upsert record")
		return fmt.Errorf("failed to upsert record %s/%s: %w", path, key, err)
	}

	log.Debug().
		Str("path", path).
		Str("key", key).
		Dur("duration", duration).
		Msg("Successfully upserted record")
	return nil
}

// WriteField overwrites a single field of the record via a sub-document
// mutation, leaving the rest of the record untouched.
func (s *CouchbaseStore) WriteField(ctx context.Context, path, key, field string, value any) error {
	_, err := s.collection(path).MutateIn(key, []gocb.MutateInSpec{
		gocb.UpsertSpec(field, value, nil),
	}, &gocb.MutateInOptions{Context: ctx})
	if err != nil {
		log.Error().
			Err(err).
			Str("path", path).
			Str("key", key).
			Str("field", field).
			Msg("Failed to write record field")
		return fmt.Errorf("failed to write field %s of %s/%s: %w", field, path, key, err)
	}
	return nil
}

// Delete removes the record at path/key.
func (s *CouchbaseStore) Delete(ctx context.Context, path, key string) error {
	_, err := s.collection(path).Remove(key, &gocb.RemoveOptions{Context: ctx})
	if err != nil {
		log.Error().
			Err(err).
			Str("path", path).
			Str("key", key).
			Msg("Failed to delete record")
		return fmt.Errorf("failed to delete record %s/%s: %w", path, key, err)
	}
	return nil
}

// GenerateKey returns a locally generated UUID. Couchbase has no
// server-side key sequence, so the UUID stands in for one.
func (s *CouchbaseStore) GenerateKey(path string) string {
	return uuid.NewString()
}

// Fetch reads the full current contents of the path once.
func (s *CouchbaseStore) Fetch(ctx context.Context, path string, filter *Filter) (Snapshot, error) {
	query := fmt.Sprintf("SELECT META(d).id AS id, d AS record FROM `%s`.`_default`.`%s` AS d",
		s.conn.BucketName(), path)
	opts := &gocb.QueryOptions{Context: ctx}
	if filter != nil {
		query += fmt.Sprintf(" WHERE d.`%s` = $val", filter.Field)
		opts.NamedParameters = map[string]any{"val": filter.Value}
	}

	rows, err := s.conn.Cluster().Query(query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to read path %s: %w", path, err)
	}
	defer rows.Close()

	snap := Snapshot{}
	for rows.Next() {
		var row struct {
			ID     string         `json:"id"`
			Record map[string]any `json:"record"`
		}
		if err := rows.Row(&row); err != nil {
			log.Warn().
				Err(err).
				Str("path", path).
				Msg("Failed to decode query row")
			continue
		}
		snap[row.ID] = row.Record
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read path %s: %w", path, err)
	}

	return snap, nil
}

// Subscribe opens a polling snapshot stream for the path.
func (s *CouchbaseStore) Subscribe(ctx context.Context, path string, filter *Filter) (Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)
	sub := &pollSubscription{
		ch:     make(chan Snapshot, 1),
		cancel: cancel,
	}
	go sub.run(subCtx, s, path, filter)
	return sub, nil
}

type pollSubscription struct {
	ch     chan Snapshot
	cancel context.CancelFunc

	mu  sync.Mutex
	err error
}

func (p *pollSubscription) run(ctx context.Context, s *CouchbaseStore, path string, filter *Filter) {
	defer close(p.ch)

	var last Snapshot
	deliver := func() bool {
		snap, err := s.Fetch(ctx, path, filter)
		if err != nil {
			if ctx.Err() == nil {
				p.setErr(err)
			}
			return false
		}
		if last != nil && reflect.DeepEqual(snap, last) {
			return true
		}
		last = snap
		select {
		case p.ch <- snap:
		case <-ctx.Done():
			return false
		}
		return true
	}

	if !deliver() {
		return
	}

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !deliver() {
				return
			}
		}
	}
}

func (p *pollSubscription) setErr(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

func (p *pollSubscription) Snapshots() <-chan Snapshot {
	return p.ch
}

func (p *pollSubscription) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *pollSubscription) Close() error {
	p.cancel()
	return nil
}
