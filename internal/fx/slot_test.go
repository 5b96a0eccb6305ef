// SPDX-License-Identifier: MIT
package fx

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charlesvestal/move-anything-nam/internal/model"
)

// fakeEngine is a controllable model engine for handoff tests.
type fakeEngine struct {
	gain       float32
	sampleRate float64
	closed     atomic.Bool
}

func (f *fakeEngine) Process(in, out []float32, n int) {
	for i := 0; i < n; i++ {
		out[i] = in[i] * f.gain
	}
}

func (f *fakeEngine) SampleRate() float64 { return f.sampleRate }

func (f *fakeEngine) Close() error {
	f.closed.Store(true)
	return nil
}

func waitIdle(t *testing.T, s *slot) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.inFlight() {
		if time.Now().After(deadline) {
			t.Fatal("load did not finish in time")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSlotPublishConsume(t *testing.T) {
	t.Parallel()
	eng := &fakeEngine{gain: 1, sampleRate: 48000}
	s := newSlot(func(path string) (model.Engine, error) { return eng, nil })

	if _, ok := s.consume(); ok {
		t.Error("consume on empty slot should report nothing")
	}

	if err := s.request("/models/a.nam"); err != nil {
		t.Fatalf("request: %v", err)
	}
	waitIdle(t, s)

	got, ok := s.consume()
	if !ok || got != eng {
		t.Fatalf("consume: got %v/%v, want published engine", got, ok)
	}
	// Read-and-clear: a second consume finds the slot empty.
	if _, ok := s.consume(); ok {
		t.Error("second consume should find slot empty")
	}

	s.drain()
}

func TestSlotRejectsConcurrentLoad(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	var loads atomic.Int32
	s := newSlot(func(path string) (model.Engine, error) {
		loads.Add(1)
		<-release
		return &fakeEngine{gain: 1}, nil
	})

	if err := s.request("/models/first.nam"); err != nil {
		t.Fatalf("first request: %v", err)
	}
	if err := s.request("/models/second.nam"); !errors.Is(err, ErrLoadInFlight) {
		t.Errorf("second request: got %v, want ErrLoadInFlight", err)
	}

	close(release)
	waitIdle(t, s)

	if got := loads.Load(); got != 1 {
		t.Errorf("loads performed: got %d, want 1", got)
	}
	s.drain()
}

func TestSlotFailedLoadPublishesNothing(t *testing.T) {
	t.Parallel()
	s := newSlot(func(path string) (model.Engine, error) {
		return nil, errors.New("corrupt file")
	})

	if err := s.request("/models/bad.nam"); err != nil {
		t.Fatalf("request: %v", err)
	}
	waitIdle(t, s)

	if _, ok := s.consume(); ok {
		t.Error("failed load must not publish into the slot")
	}
	// Slot is reusable after a failure.
	if err := s.request("/models/retry.nam"); err != nil {
		t.Errorf("request after failure: %v", err)
	}
	s.drain()
}

func TestSlotPanickedLoadClearsFlag(t *testing.T) {
	t.Parallel()
	s := newSlot(func(path string) (model.Engine, error) {
		panic("backend blew up")
	})

	if err := s.request("/models/bad.nam"); err != nil {
		t.Fatalf("request: %v", err)
	}
	waitIdle(t, s)

	if _, ok := s.consume(); ok {
		t.Error("panicked load must not publish into the slot")
	}
	// Slot is reusable and drain must not spin on a stuck flag.
	if err := s.request("/models/retry.nam"); err != nil {
		t.Errorf("request after panic: %v", err)
	}
	s.drain()
}

func TestSlotDrainWaitsAndRetiresPending(t *testing.T) {
	t.Parallel()
	eng := &fakeEngine{gain: 1}
	release := make(chan struct{})
	s := newSlot(func(path string) (model.Engine, error) {
		<-release
		return eng, nil
	})

	if err := s.request("/models/slow.nam"); err != nil {
		t.Fatalf("request: %v", err)
	}

	go func() {
		time.Sleep(30 * time.Millisecond)
		close(release)
	}()

	// drain must block until the worker finishes, then close the engine
	// that was published but never consumed.
	s.drain()

	if s.inFlight() {
		t.Error("drain returned with a load still in flight")
	}
	if !eng.closed.Load() {
		t.Error("unconsumed pending engine was not closed")
	}
}

func TestSlotRetireClosesSupersededEngine(t *testing.T) {
	t.Parallel()
	s := newSlot(nil)
	old := &fakeEngine{gain: 1}
	s.retire(old)
	s.drain()
	if !old.closed.Load() {
		t.Error("retired engine was not closed")
	}
}
