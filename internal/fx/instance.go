// SPDX-License-Identifier: MIT
/*
Package fx implements the real-time effect core: the per-instance audio
pipeline, the lock-free model handoff between the loader goroutine and the
audio thread, and the cabinet convolution engine.

Thread model per instance:
- the audio thread calls ProcessBlock on a hard periodic deadline and must
  never block or allocate;
- at most one loader goroutine constructs a model in the background and
  publishes it through the pending slot;
- control callers issue SetParam/GetParam and replace the cabinet; the
  instance serializes these internally so the plugin host, the terminal
  browser, and remote control connections can share one instance.
*/
package fx

import (
	"math"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/charlesvestal/move-anything-nam/internal/catalog"
	"github.com/charlesvestal/move-anything-nam/internal/config"
	"github.com/charlesvestal/move-anything-nam/internal/ir"
	applog "github.com/charlesvestal/move-anything-nam/internal/log"
	"github.com/charlesvestal/move-anything-nam/internal/model"
)

// Options adjusts instance construction. Zero value means defaults.
type Options struct {
	ModelsDir string // override for <moduleDir>/models
	CabsDir   string // override for <moduleDir>/cabs
	Loader    func(path string) (model.Engine, error)
}

// Instance is one effect instantiation with fully independent state.
type Instance struct {
	modelsDir string
	cabsDir   string

	// Model lifecycle. active is owned by the audio thread and replaced
	// only through the slot handoff.
	slot   *slot
	active model.Engine

	// Selection state, guarded by ctl. The audio thread never reads it.
	ctl               sync.Mutex
	modelName         string
	currentModelIndex int
	cabName           string
	currentCabIndex   int

	// Cabinet state. Stored whole so the audio thread sees either the old
	// or the new {IR, history} pair, never a half-swapped mix.
	cab       atomic.Pointer[cabinet]
	cabBypass atomic.Bool

	// Knob positions (guarded by ctl) and derived linear gains (read every
	// block by the audio thread, stored as float64 bits).
	inputLevel  float64
	outputLevel float64
	inputGain   atomic.Uint64
	outputGain  atomic.Uint64

	// Pre-allocated scratch, audio thread only.
	monoIn  [config.FramesPerBlock]float32
	monoOut [config.FramesPerBlock]float32
}

// knobToGain maps a 0-1 knob position onto -24..+12 dB and returns the
// linear gain: 0 -> -24dB, 0.5 -> -6dB, 1.0 -> +12dB.
func knobToGain(knob float64) float64 {
	db := -24.0 + knob*36.0
	return math.Pow(10, db/20)
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// New creates an instance rooted at moduleDir, scans its catalogs, and
// kicks off loading the first model and cabinet when present.
func New(moduleDir string, opts Options) *Instance {
	inst := &Instance{
		modelsDir:         filepath.Join(moduleDir, config.ModelsDirName),
		cabsDir:           filepath.Join(moduleDir, config.CabsDirName),
		currentModelIndex: -1,
		currentCabIndex:   -1,
		slot:              newSlot(opts.Loader),
	}
	if opts.ModelsDir != "" {
		inst.modelsDir = opts.ModelsDir
	}
	if opts.CabsDir != "" {
		inst.cabsDir = opts.CabsDir
	}

	inst.setInputLevel(config.DefaultInputLevel)
	inst.setOutputLevel(config.DefaultOutputLevel)

	models := catalog.ScanModels(inst.modelsDir)
	applog.Infof("nam: found %d model files", len(models))
	if len(models) > 0 {
		inst.currentModelIndex = 0
		inst.requestModelLoad(models[0].Path)
	}

	cabs := catalog.ScanCabs(inst.cabsDir)
	applog.Infof("nam: found %d cabinet files", len(cabs))
	if len(cabs) > 0 {
		inst.loadCab(0, cabs[0])
	}

	return inst
}

// requestModelLoad records the selection and starts the background load.
// A rejected request (one already in flight) leaves the previous name in
// place so the UI keeps showing what is actually loaded or loading.
func (inst *Instance) requestModelLoad(path string) {
	if inst.slot.request(path) != nil {
		return
	}
	inst.modelName = catalog.DisplayName(path)
}

// loadCab synchronously replaces the cabinet from a catalog entry.
// Failure keeps the previous cabinet in use unchanged.
func (inst *Instance) loadCab(index int, entry catalog.Entry) {
	samples, err := ir.Load(entry.Path)
	if err != nil {
		applog.Errorf("nam: failed to load cabinet %s: %v", entry.Path, err)
		return
	}
	applog.Infof("nam: cabinet %s loaded (%d taps, energy %.3f)",
		entry.Name, len(samples), ir.Energy(samples))
	inst.currentCabIndex = index
	inst.cabName = entry.Name
	// Build first, swap last. The old cabinet stays fully valid until the
	// store; the GC reclaims it once the audio thread moves on.
	inst.cab.Store(newCabinet(samples))
}

// ProcessBlock runs the fixed DSP chain over an interleaved stereo int16
// buffer in place. It has no failure path: with no model loaded the buffer
// passes through untouched.
//
// Performance Critical (Hot Path):
// - At most one model swap per block, via a single atomic exchange
// - Pre-allocated mono scratch only, no allocations
// - Frames beyond the fixed block size are truncated
func (inst *Instance) ProcessBlock(buf []int16, frames int) {
	if eng, ok := inst.slot.consume(); ok {
		old := inst.active
		inst.active = eng
		// Destruction is not real-time safe; hand the old engine to the
		// reclamation goroutine instead of tearing it down here.
		inst.slot.retire(old)
	}

	if inst.active == nil {
		return
	}

	n := frames
	if n > config.FramesPerBlock {
		n = config.FramesPerBlock
	}
	if n > len(buf)/2 {
		n = len(buf) / 2
	}
	if n <= 0 {
		return
	}

	ig := float32(math.Float64frombits(inst.inputGain.Load()))
	for i := 0; i < n; i++ {
		l := float32(buf[i*2]) / 32768.0
		r := float32(buf[i*2+1]) / 32768.0
		inst.monoIn[i] = (l + r) * 0.5 * ig
	}

	inst.active.Process(inst.monoIn[:n], inst.monoOut[:n], n)

	if c := inst.cab.Load(); c != nil && !inst.cabBypass.Load() {
		c.process(inst.monoOut[:n])
	}

	og := float32(math.Float64frombits(inst.outputGain.Load()))
	for i := 0; i < n; i++ {
		s := clamp32(inst.monoOut[i]*og, -1.0, 1.0)
		sample := int16(s * 32767.0)
		buf[i*2] = sample
		buf[i*2+1] = sample
	}
}

// Loading reports whether a model load is in flight.
func (inst *Instance) Loading() bool {
	return inst.slot.inFlight()
}

// Close tears the instance down. Any in-flight load is drained first so a
// loader goroutine never outlives the instance; the active and any
// unconsumed pending model are then retired.
func (inst *Instance) Close() {
	inst.slot.retire(inst.active)
	inst.active = nil
	inst.slot.drain()
	applog.Info("nam: instance destroyed")
}

func (inst *Instance) setInputLevel(knob float64) {
	inst.inputLevel = knob
	inst.inputGain.Store(math.Float64bits(knobToGain(knob)))
}

func (inst *Instance) setOutputLevel(knob float64) {
	inst.outputLevel = knob
	inst.outputGain.Store(math.Float64bits(knobToGain(knob)))
}
