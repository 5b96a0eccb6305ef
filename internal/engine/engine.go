// SPDX-License-Identifier: MIT
/*
Package engine runs the effect as a standalone program: a duplex PortAudio
stream feeds live input through the same ProcessBlock entry point the plugin
host would call, and optionally records the processed output to WAV.

Thread Safety:
- The stream callback is the audio thread; it only touches pre-allocated
  buffers and the instance's real-time entry point.
- Recording state is gated by an atomic flag.
*/
package engine

import (
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/charlesvestal/move-anything-nam/internal/config"
	"github.com/charlesvestal/move-anything-nam/internal/fx"
	applog "github.com/charlesvestal/move-anything-nam/internal/log"
)

// Engine owns the duplex stream wrapped around one effect instance.
type Engine struct {
	cfg  *config.Config
	inst *fx.Instance

	inputDevice   *portaudio.DeviceInfo
	outputDevice  *portaudio.DeviceInfo
	inputLatency  time.Duration
	outputLatency time.Duration
	stream        *portaudio.Stream

	// Pre-allocated interleaved stereo block, audio thread only.
	block []int16

	rec recorder
}

// New resolves the configured devices and prepares the engine around inst.
func New(cfg *config.Config, inst *fx.Instance) (*Engine, error) {
	inputDevice, err := InputDevice(cfg.Audio.InputDevice)
	if err != nil {
		return nil, err
	}
	outputDevice, err := OutputDevice(cfg.Audio.OutputDevice)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:           cfg,
		inst:          inst,
		inputDevice:   inputDevice,
		outputDevice:  outputDevice,
		inputLatency:  inputDevice.DefaultLowInputLatency,
		outputLatency: outputDevice.DefaultLowOutputLatency,
		block:         make([]int16, config.FramesPerBlock*config.Channels),
	}, nil
}

// Start opens and starts the duplex stream.
func (e *Engine) Start() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: config.Channels,
			Device:   e.inputDevice,
			Latency:  e.inputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: config.Channels,
			Device:   e.outputDevice,
			Latency:  e.outputLatency,
		},
		FramesPerBuffer: config.FramesPerBlock,
		SampleRate:      config.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, e.processStream)
	if err != nil {
		return err
	}
	e.stream = stream

	if err := e.stream.Start(); err != nil {
		e.stream.Close()
		e.stream = nil
		return err
	}

	applog.Infof("engine: stream started (in=%s out=%s)",
		e.inputDevice.Name, e.outputDevice.Name)
	return nil
}

// Stop stops and closes the stream.
func (e *Engine) Stop() error {
	if e.stream == nil {
		return nil
	}
	if err := e.stream.Stop(); err != nil {
		return err
	}
	if err := e.stream.Close(); err != nil {
		return err
	}
	e.stream = nil
	return nil
}

// processStream is the stream callback.
// Performance Critical (Hot Path):
// - Pre-allocated block buffer only
// - All DSP happens inside Instance.ProcessBlock
func (e *Engine) processStream(in, out []int16) {
	n := copy(e.block, in)
	frames := n / config.Channels

	e.inst.ProcessBlock(e.block[:n], frames)

	copy(out, e.block[:n])
	e.rec.write(e.block[:n])
}

// Close stops recording and the stream.
func (e *Engine) Close() error {
	if err := e.StopRecording(); err != nil {
		return err
	}
	return e.Stop()
}
