package cache

import (
	"fmt"
	"sync"
	"testing"
)

func TestBasicOperations(t *testing.T) {
	m := New[string]()

	if m.Len() != 0 {
		t.Fatalf("expected empty map, got %d entries", m.Len())
	}

	m.ReplaceAll(map[string]string{"a": "alpha", "b": "beta"})
	if m.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", m.Len())
	}
	if v, ok := m.Get("a"); !ok || v != "alpha" {
		t.Errorf("expected alpha, got %q (ok=%v)", v, ok)
	}

	m.Upsert("c", "gamma")
	if v, ok := m.Get("c"); !ok || v != "gamma" {
		t.Errorf("expected gamma after upsert, got %q (ok=%v)", v, ok)
	}

	m.Remove("a")
	if _, ok := m.Get("a"); ok {
		t.Error("expected a to be removed")
	}
	if m.Len() != 2 {
		t.Errorf("expected 2 entries after remove, got %d", m.Len())
	}
}

func TestReplaceAllCopiesInput(t *testing.T) {
	src := map[string]int{"x": 1}
	m := New[int]()
	m.ReplaceAll(src)

	src["y"] = 2
	if m.Len() != 1 {
		t.Errorf("cache aliased the caller's map: len=%d", m.Len())
	}
}

// TestReplaceAllIsAtomic hammers ReplaceAll with two full generations while
// readers call List. A reader must see a complete old or complete new
// collection, never a mix of generations.
func TestReplaceAllIsAtomic(t *testing.T) {
	const size = 64
	old := make(map[string]string, size)
	fresh := make(map[string]string, size)
	for i := 0; i < size; i++ {
		key := fmt.Sprintf("k%d", i)
		old[key] = "old"
		fresh[key] = "new"
	}

	m := New[string]()
	m.ReplaceAll(old)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			if i%2 == 0 {
				m.ReplaceAll(fresh)
			} else {
				m.ReplaceAll(old)
			}
		}
	}()

	var wg sync.WaitGroup
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				entries := m.List()
				if len(entries) != size {
					t.Errorf("observed partial collection of %d entries", len(entries))
					return
				}
				gen := entries[0]
				for _, v := range entries {
					if v != gen {
						t.Errorf("observed mixed generations %q and %q", gen, v)
						return
					}
				}
			}
		}()
	}

	wg.Wait()
}

func TestConcurrentUpserts(t *testing.T) {
	m := New[int]()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.Upsert(fmt.Sprintf("w%d-%d", n, j), j)
			}
		}(i)
	}
	wg.Wait()

	if m.Len() != 800 {
		t.Errorf("expected 800 entries, got %d", m.Len())
	}
}
