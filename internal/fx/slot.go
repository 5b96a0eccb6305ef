// SPDX-License-Identifier: MIT
package fx

import (
	"errors"
	"io"
	"sync/atomic"
	"time"

	applog "github.com/charlesvestal/move-anything-nam/internal/log"
	"github.com/charlesvestal/move-anything-nam/internal/model"
)

// ErrLoadInFlight is returned when a load is requested while one is already
// running. Requests are rejected, never queued.
var ErrLoadInFlight = errors.New("fx: model load already in flight")

// drainPoll is the interval used when teardown waits for a loader goroutine.
const drainPoll = 10 * time.Millisecond

// published wraps a successfully constructed engine for the pending slot.
// atomic.Pointer needs a concrete type to point at.
type published struct {
	eng model.Engine
}

// slot is the handoff point between the loader goroutine (producer) and the
// audio thread (consumer).
//
// Protocol: the loader publishes its result into pending, then clears the
// loading flag; both are release stores. The audio thread consumes pending
// with a single atomic swap and never looks at the flag. The flag exists for
// two non-real-time readers only: rejecting concurrent load requests and
// synchronizing teardown.
type slot struct {
	pending atomic.Pointer[published]
	loading atomic.Bool

	// retired receives superseded engines. A background goroutine closes
	// them so the audio thread never runs teardown code during a block.
	retired chan model.Engine
	done    chan struct{}
	drained atomic.Bool

	loadFn func(path string) (model.Engine, error)
}

func newSlot(loadFn func(path string) (model.Engine, error)) *slot {
	if loadFn == nil {
		loadFn = model.Load
	}
	s := &slot{
		retired: make(chan model.Engine, 8),
		done:    make(chan struct{}),
		loadFn:  loadFn,
	}
	go s.reclaim()
	return s
}

// request starts a background load of the model at path. At most one load
// runs per slot; a request while one is in flight is rejected.
func (s *slot) request(path string) error {
	if !s.loading.CompareAndSwap(false, true) {
		applog.Warnf("nam: already loading a model, skipping %s", path)
		return ErrLoadInFlight
	}

	go func() {
		// The flag clears last, after any publish and after a panicked
		// backend is caught. Teardown keys off the flag and must observe
		// any published engine.
		defer s.loading.Store(false)
		defer func() {
			if r := recover(); r != nil {
				applog.Errorf("nam: model backend panicked loading %s: %v", path, r)
			}
		}()

		applog.Infof("nam: loading model %s", path)
		eng, err := s.loadFn(path)
		if err != nil {
			applog.Errorf("nam: failed to load model %s: %v", path, err)
			return
		}
		applog.Infof("nam: model loaded (sample_rate=%.0f)", eng.SampleRate())
		s.pending.Store(&published{eng: eng})
	}()

	return nil
}

// consume takes ownership of any published engine. Called from the audio
// thread once per block; the swap makes read-and-clear a single operation.
func (s *slot) consume() (model.Engine, bool) {
	p := s.pending.Swap(nil)
	if p == nil {
		return nil, false
	}
	return p.eng, true
}

// inFlight reports whether a loader goroutine is still running.
func (s *slot) inFlight() bool {
	return s.loading.Load()
}

// retire hands a superseded engine to the reclamation goroutine. If the
// queue is full the engine is dropped on the floor; the GC still reclaims
// its memory, only an explicit Close is skipped.
func (s *slot) retire(eng model.Engine) {
	if eng == nil {
		return
	}
	select {
	case s.retired <- eng:
	default:
	}
}

// drain waits out any in-flight load, retires an unconsumed result, and
// stops the reclamation goroutine. The audio thread must no longer be
// processing blocks when drain is called.
func (s *slot) drain() {
	if !s.drained.CompareAndSwap(false, true) {
		return
	}
	for s.loading.Load() {
		time.Sleep(drainPoll)
	}
	if eng, ok := s.consume(); ok {
		s.retire(eng)
	}
	close(s.retired)
	<-s.done
}

// reclaim closes retired engines off the audio thread.
func (s *slot) reclaim() {
	for eng := range s.retired {
		if c, ok := eng.(io.Closer); ok {
			if err := c.Close(); err != nil {
				applog.Warnf("nam: error closing retired model: %v", err)
			}
		}
	}
	close(s.done)
}
