// SPDX-License-Identifier: MIT
package fx

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charlesvestal/move-anything-nam/internal/catalog"
	applog "github.com/charlesvestal/move-anything-nam/internal/log"
)

// clampKnob parses a knob value, falling back to 0 on garbage and clamping
// into [0,1]. Parameter input never propagates an error.
func clampKnob(val string) float64 {
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		f = 0
	}
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// SetParam applies a string-keyed parameter write. Unknown keys are
// silently ignored; out-of-range indices are dropped. Safe for concurrent
// control callers; writes are serialized against each other and GetParam.
func (inst *Instance) SetParam(key, val string) {
	inst.ctl.Lock()
	defer inst.ctl.Unlock()

	switch key {
	case "input_level":
		inst.setInputLevel(clampKnob(val))
	case "output_level":
		inst.setOutputLevel(clampKnob(val))
	case "model_index":
		idx, err := strconv.Atoi(val)
		if err != nil {
			applog.Debugf("nam: unparsable model_index %q", val)
			return
		}
		models := catalog.ScanModels(inst.modelsDir)
		if idx < 0 || idx >= len(models) || idx == inst.currentModelIndex {
			return
		}
		inst.currentModelIndex = idx
		inst.requestModelLoad(models[idx].Path)
	case "model":
		// Direct path load. Fix up the index when the path is in the
		// catalog so introspection stays consistent.
		models := catalog.ScanModels(inst.modelsDir)
		for i, e := range models {
			if e.Path == val {
				inst.currentModelIndex = i
				break
			}
		}
		inst.requestModelLoad(val)
	case "cab_index":
		idx, err := strconv.Atoi(val)
		if err != nil {
			applog.Debugf("nam: unparsable cab_index %q", val)
			return
		}
		cabs := catalog.ScanCabs(inst.cabsDir)
		if idx < 0 || idx >= len(cabs) || idx == inst.currentCabIndex {
			return
		}
		inst.loadCab(idx, cabs[idx])
	case "cab_bypass":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return
		}
		inst.cabBypass.Store(b)
	}
}

// GetParam reads a string-keyed parameter. The second return is false for
// unknown keys. List keys rescan their directory on every call so the UI
// always reflects what is on disk.
func (inst *Instance) GetParam(key string) (string, bool) {
	inst.ctl.Lock()
	defer inst.ctl.Unlock()

	switch key {
	case "input_level":
		return fmt.Sprintf("%.2f", inst.inputLevel), true
	case "output_level":
		return fmt.Sprintf("%.2f", inst.outputLevel), true
	case "model_name":
		if inst.modelName == "" {
			return "(none)", true
		}
		return inst.modelName, true
	case "model_count":
		return strconv.Itoa(len(catalog.ScanModels(inst.modelsDir))), true
	case "model_index":
		return strconv.Itoa(inst.currentModelIndex), true
	case "model_list":
		return nameList(catalog.ScanModels(inst.modelsDir)), true
	case "cab_name":
		if inst.cabName == "" {
			return "(none)", true
		}
		return inst.cabName, true
	case "cab_count":
		return strconv.Itoa(len(catalog.ScanCabs(inst.cabsDir))), true
	case "cab_index":
		return strconv.Itoa(inst.currentCabIndex), true
	case "cab_list":
		return nameList(catalog.ScanCabs(inst.cabsDir)), true
	case "cab_bypass":
		if inst.cabBypass.Load() {
			return "1", true
		}
		return "0", true
	case "loading":
		if inst.Loading() {
			return "1", true
		}
		return "0", true
	case "ui_hierarchy":
		return inst.uiHierarchy(), true
	}
	return "", false
}

// nameList renders catalog display names as a JSON string array.
func nameList(entries []catalog.Entry) string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	data, err := json.Marshal(names)
	if err != nil {
		return "[]"
	}
	return string(data)
}
