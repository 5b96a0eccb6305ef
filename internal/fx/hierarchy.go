// SPDX-License-Identifier: MIT
package fx

import "encoding/json"

// The UI hierarchy describes the control surface to the host's Shadow UI:
// which knobs exist, which parameters they map to, and which browser levels
// a user can descend into. It is rebuilt on every query so labels reflect
// the current selections.

type uiParam struct {
	Key   string `json:"key,omitempty"`
	Label string `json:"label"`
	Level string `json:"level,omitempty"`
}

type uiLevel struct {
	Label       string    `json:"label"`
	ItemsParam  string    `json:"items_param,omitempty"`
	SelectParam string    `json:"select_param,omitempty"`
	Children    []string  `json:"children"`
	Knobs       []string  `json:"knobs"`
	Params      []uiParam `json:"params"`
}

type uiHierarchy struct {
	Modes  []string           `json:"modes"`
	Levels map[string]uiLevel `json:"levels"`
}

func (inst *Instance) uiHierarchy() string {
	h := uiHierarchy{
		Levels: map[string]uiLevel{
			"root": {
				Label: "NAM",
				Knobs: []string{"input_level", "output_level"},
				Params: []uiParam{
					{Key: "input_level", Label: "Input"},
					{Key: "output_level", Label: "Output"},
					{Key: "cab_bypass", Label: "Cab Bypass"},
					{Level: "models", Label: "Choose Model"},
					{Level: "cabs", Label: "Choose Cabinet"},
				},
			},
			"models": {
				Label:       "Model",
				ItemsParam:  "model_list",
				SelectParam: "model_index",
				Knobs:       []string{},
				Params:      []uiParam{},
			},
			"cabs": {
				Label:       "Cabinet",
				ItemsParam:  "cab_list",
				SelectParam: "cab_index",
				Knobs:       []string{},
				Params:      []uiParam{},
			},
		},
	}

	data, err := json.Marshal(h)
	if err != nil {
		return "{}"
	}
	return string(data)
}
