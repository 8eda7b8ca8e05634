package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"stealthcompany.com/hospsync/internal/remote"
)

// fakeRemote is an in-memory remote.Store for tests. Snapshots are pushed
// explicitly with push, stream failures injected with failSubscriptions,
// and write/delete failures with the error fields.
type fakeRemote struct {
	mu   sync.Mutex
	data map[string]map[string]map[string]any // path -> key -> record

	writeErr  error
	fieldErr  error
	deleteErr error

	nextKey        int
	writes         [][2]string // (path, key) of every accepted Write
	subscribeCalls map[string]int
	subs           map[string][]*fakeSub
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		data:           make(map[string]map[string]map[string]any),
		subscribeCalls: make(map[string]int),
		subs:           make(map[string][]*fakeSub),
	}
}

func (f *fakeRemote) seed(path, key string, rec map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.data[path] == nil {
		f.data[path] = make(map[string]map[string]any)
	}
	f.data[path][key] = rec
}

func (f *fakeRemote) snapshotLocked(path string, filter *remote.Filter) remote.Snapshot {
	snap := remote.Snapshot{}
	for k, rec := range f.data[path] {
		if filter != nil && rec[filter.Field] != filter.Value {
			continue
		}
		cp := make(map[string]any, len(rec))
		for kk, v := range rec {
			cp[kk] = v
		}
		snap[k] = cp
	}
	return snap
}

// push delivers the current contents of path to every open subscription.
func (f *fakeRemote) push(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.subs[path] {
		s.send(f.snapshotLocked(path, s.filter))
	}
}

// failSubscriptions terminates every open subscription on path with err.
func (f *fakeRemote) failSubscriptions(path string, err error) {
	f.mu.Lock()
	subs := f.subs[path]
	f.subs[path] = nil
	f.mu.Unlock()
	for _, s := range subs {
		s.fail(err)
	}
}

func (f *fakeRemote) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

func (f *fakeRemote) subscribeCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subscribeCalls[path]
}

func (f *fakeRemote) Subscribe(ctx context.Context, path string, filter *remote.Filter) (remote.Subscription, error) {
	f.mu.Lock()
	s := &fakeSub{ch: make(chan remote.Snapshot, 16), filter: filter}
	f.subs[path] = append(f.subs[path], s)
	f.subscribeCalls[path]++
	s.send(f.snapshotLocked(path, filter))
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.fail(nil)
	}()
	return s, nil
}

func (f *fakeRemote) Fetch(ctx context.Context, path string, filter *remote.Filter) (remote.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked(path, filter), nil
}

func (f *fakeRemote) Write(ctx context.Context, path, key string, rec map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	if f.data[path] == nil {
		f.data[path] = make(map[string]map[string]any)
	}
	cp := make(map[string]any, len(rec))
	for k, v := range rec {
		cp[k] = v
	}
	f.data[path][key] = cp
	f.writes = append(f.writes, [2]string{path, key})
	return nil
}

func (f *fakeRemote) WriteField(ctx context.Context, path, key, field string, value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fieldErr != nil {
		return f.fieldErr
	}
	rec, ok := f.data[path][key]
	if !ok {
		return fmt.Errorf("record %s/%s not found", path, key)
	}
	rec[field] = value
	return nil
}

func (f *fakeRemote) Delete(ctx context.Context, path, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.data[path], key)
	return nil
}

func (f *fakeRemote) GenerateKey(path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextKey++
	return fmt.Sprintf("key-%d", f.nextKey)
}

type fakeSub struct {
	ch     chan remote.Snapshot
	filter *remote.Filter

	mu     sync.Mutex
	err    error
	closed bool
}

func (s *fakeSub) send(snap remote.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- snap:
	default:
	}
}

func (s *fakeSub) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.err = err
	s.closed = true
	close(s.ch)
}

func (s *fakeSub) Snapshots() <-chan remote.Snapshot { return s.ch }

func (s *fakeSub) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *fakeSub) Close() error {
	s.fail(nil)
	return nil
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}
