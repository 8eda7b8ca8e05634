package store

import (
	"sync/atomic"
	"testing"
	"time"

	"stealthcompany.com/hospsync/internal/entity"
)

// One publish reaches all subscribers of the kind exactly once each.
func TestFanOutDelivery(t *testing.T) {
	n := NewNotifier()

	var counts [3]atomic.Int32
	done := make(chan struct{}, 3)
	for i := range counts {
		idx := i
		cancel := n.Subscribe(entity.KindHospital, func() {
			counts[idx].Add(1)
			done <- struct{}{}
		})
		defer cancel()
	}

	n.Publish(entity.KindHospital)

	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(3 * time.Second):
			t.Fatal("not all subscribers were invoked")
		}
	}

	// Give stray duplicate deliveries a moment to show up.
	time.Sleep(50 * time.Millisecond)
	for i := range counts {
		if got := counts[i].Load(); got != 1 {
			t.Errorf("subscriber %d invoked %d times, expected 1", i, got)
		}
	}
}

func TestPublishIsAsynchronous(t *testing.T) {
	n := NewNotifier()

	block := make(chan struct{})
	invoked := make(chan struct{}, 1)
	cancel := n.Subscribe(entity.KindDoctor, func() {
		invoked <- struct{}{}
		<-block
	})
	defer cancel()
	defer close(block)

	start := time.Now()
	n.Publish(entity.KindDoctor)
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("publish blocked on handler for %v", elapsed)
	}

	select {
	case <-invoked:
	case <-time.After(3 * time.Second):
		t.Fatal("handler never invoked")
	}
}

func TestKindsAreIndependent(t *testing.T) {
	n := NewNotifier()

	doctorEvents := make(chan struct{}, 1)
	cancel := n.Subscribe(entity.KindDoctor, func() { doctorEvents <- struct{}{} })
	defer cancel()

	n.Publish(entity.KindHospital)

	select {
	case <-doctorEvents:
		t.Fatal("doctor subscriber received a hospital event")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	n := NewNotifier()

	events := make(chan struct{}, 1)
	cancel := n.Subscribe(entity.KindStaff, func() { events <- struct{}{} })
	cancel()
	cancel() // idempotent

	n.Publish(entity.KindStaff)

	select {
	case <-events:
		t.Fatal("cancelled subscriber received an event")
	case <-time.After(100 * time.Millisecond):
	}
}
