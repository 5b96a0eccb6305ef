// SPDX-License-Identifier: MIT
/*
Package model defines the contract for the neural amp model engine and the
loader that constructs one from a .nam/.aidax capture file.

The inference mathematics live behind the Backend factory: a build that links
a real neural runtime registers its factory at startup, and everything else
in the plugin only ever sees the Engine interface. Without a registered
backend the loader falls back to a unity pass-through engine so the effect
chain stays functional.
*/
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/charlesvestal/move-anything-nam/internal/config"
)

// Engine is a mono neural amp model. Process must be synchronous and
// real-time safe: it reads n samples from in and writes n samples to out
// without allocating or blocking.
type Engine interface {
	Process(in, out []float32, n int)
	SampleRate() float64
}

// Metadata is the descriptive header of a capture file. Both .nam and
// .aidax are JSON containers; the weight payload is opaque to this package.
type Metadata struct {
	Version      string  `json:"version"`
	Architecture string  `json:"architecture"`
	SampleRate   float64 `json:"sample_rate"`
}

// Factory constructs an inference engine from a parsed capture file.
type Factory func(meta Metadata, path string) (Engine, error)

var factory atomic.Value // Factory

// ErrMalformed is returned when a capture file is not parseable JSON.
var ErrMalformed = errors.New("model: malformed capture file")

// SetFactory registers the inference backend. Passing nil restores the
// pass-through fallback.
func SetFactory(f Factory) {
	if f == nil {
		f = passthroughFactory
	}
	factory.Store(f)
}

func init() {
	factory.Store(Factory(passthroughFactory))
}

// Load constructs a model engine from a capture file. It validates the JSON
// container, extracts the metadata, and delegates construction to the
// registered backend. Runs on a loader goroutine, never on the audio thread.
func Load(path string) (Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("model: read %s: %w", path, err)
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	if meta.SampleRate <= 0 {
		meta.SampleRate = config.SampleRate
	}

	return factory.Load().(Factory)(meta, path)
}

// passthrough is the fallback engine used when no inference backend is
// registered. It reproduces its input unchanged.
type passthrough struct {
	sampleRate float64
}

func passthroughFactory(meta Metadata, path string) (Engine, error) {
	return &passthrough{sampleRate: meta.SampleRate}, nil
}

func (p *passthrough) Process(in, out []float32, n int) {
	copy(out[:n], in[:n])
}

func (p *passthrough) SampleRate() float64 {
	return p.sampleRate
}
