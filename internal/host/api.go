// SPDX-License-Identifier: MIT
/*
Package host maps the effect core onto the Move Anything audio FX plugin
contract: a fixed table of five operations (create, destroy, process, set,
get) plus an unused MIDI hook. The table is built once at init time and is
immutable after publication; the host keeps the pointer for the life of the
process.
*/
package host

import (
	"encoding/json"
	"sync"

	"github.com/charlesvestal/move-anything-nam/internal/fx"
	applog "github.com/charlesvestal/move-anything-nam/internal/log"
)

// APIVersion is the audio FX contract revision this plugin implements.
const APIVersion uint32 = 2

// Host is what the plugin needs from its host: a log line consumer.
type Host interface {
	Log(msg string)
}

// instanceConfig is the optional config_json payload accepted at instance
// creation. Unknown fields are ignored.
type instanceConfig struct {
	ModelsDir string `json:"models_dir"`
	CabsDir   string `json:"cabs_dir"`
}

// API is the plugin's function table. Field layout mirrors the host-side
// audio_fx_api_v2 struct one to one.
type API struct {
	APIVersion      uint32
	CreateInstance  func(moduleDir, configJSON string) *fx.Instance
	DestroyInstance func(inst *fx.Instance)
	ProcessBlock    func(inst *fx.Instance, audio []int16, frames int)
	SetParam        func(inst *fx.Instance, key, val string)
	GetParam        func(inst *fx.Instance, key string, buf []byte) int
	OnMIDI          func(inst *fx.Instance, msg []byte, source int)
}

var (
	initOnce sync.Once
	table    *API
)

// Init builds the function table and installs the host's log callback.
// Repeated calls return the same table; the contract is process-wide state.
func Init(h Host) *API {
	initOnce.Do(func() {
		if h != nil {
			applog.SetSink(h.Log)
		}
		table = &API{
			APIVersion:      APIVersion,
			CreateInstance:  createInstance,
			DestroyInstance: destroyInstance,
			ProcessBlock:    processBlock,
			SetParam:        setParam,
			GetParam:        getParam,
			OnMIDI:          nil, // no MIDI handling needed
		}
		applog.Info("nam: audio FX plugin initialized")
	})
	return table
}

func createInstance(moduleDir, configJSON string) *fx.Instance {
	applog.Info("nam: creating instance")

	var opts fx.Options
	if configJSON != "" {
		var cfg instanceConfig
		if err := json.Unmarshal([]byte(configJSON), &cfg); err != nil {
			applog.Warnf("nam: ignoring malformed instance config: %v", err)
		} else {
			opts.ModelsDir = cfg.ModelsDir
			opts.CabsDir = cfg.CabsDir
		}
	}

	return fx.New(moduleDir, opts)
}

func destroyInstance(inst *fx.Instance) {
	if inst == nil {
		return
	}
	inst.Close()
}

func processBlock(inst *fx.Instance, audio []int16, frames int) {
	if inst == nil {
		return
	}
	inst.ProcessBlock(audio, frames)
}

func setParam(inst *fx.Instance, key, val string) {
	if inst == nil {
		return
	}
	inst.SetParam(key, val)
}

// getParam copies the value for key into buf and returns the number of
// bytes written, or -1 when the key is unknown. Values longer than buf are
// truncated, matching the host contract's fixed-buffer semantics.
func getParam(inst *fx.Instance, key string, buf []byte) int {
	if inst == nil {
		return -1
	}
	val, ok := inst.GetParam(key)
	if !ok {
		return -1
	}
	return copy(buf, val)
}
