// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the standalone runner configuration, loaded from YAML.
// The plugin build ignores all of this; the host passes its own module dir.
type Config struct {
	Debug     bool            `yaml:"debug"`      // Enable debug mode (verbose logging).
	LogLevel  string          `yaml:"log_level"`  // Logging level (e.g., "debug", "info", "warn", "error").
	ModuleDir string          `yaml:"module_dir"` // Directory holding models/ and cabs/ subdirectories.
	Audio     AudioConfig     `yaml:"audio"`      // Audio device settings.
	Recording RecordingConfig `yaml:"recording"`  // Processed-output recording settings.
	Control   ControlConfig   `yaml:"control"`    // Remote parameter control settings.
}

// AudioConfig holds settings for the live duplex stream.
type AudioConfig struct {
	InputDevice  int `yaml:"input_device"`  // PortAudio device index for audio input (-1 for default).
	OutputDevice int `yaml:"output_device"` // PortAudio device index for audio output (-1 for default).
}

// RecordingConfig holds settings for recording the processed output.
type RecordingConfig struct {
	Enabled    bool   `yaml:"enabled"`     // Record processed output to file.
	OutputFile string `yaml:"output_file"` // Output WAV path ("" auto-generates a name).
}

// ControlConfig holds settings for the WebSocket parameter control server.
type ControlConfig struct {
	Enabled bool   `yaml:"enabled"` // Serve the control endpoint.
	Addr    string `yaml:"addr"`    // Listen address (e.g., ":8765").
}

// LoadConfig loads configuration from a YAML file at path. If path is empty,
// it checks "config.yaml" in the working directory and falls back to built-in
// defaults when no file exists. Environment variable overrides are applied
// after loading.
func LoadConfig(path string) (*Config, error) {
	cfg := Config{
		Debug:     false,
		LogLevel:  "info",
		ModuleDir: ".",
		Audio: AudioConfig{
			InputDevice:  -1,
			OutputDevice: -1,
		},
		Recording: RecordingConfig{
			Enabled:    false,
			OutputFile: "",
		},
		Control: ControlConfig{
			Enabled: false,
			Addr:    ":8765",
		},
	}

	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		} else {
			cfg.applyEnvOverrides()
			return &cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvOverrides()

	return &cfg, nil
}

// applyEnvOverrides applies NAM_-prefixed environment variables on top of
// whatever the file (or the defaults) produced.
func (cfg *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("NAM_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Debug = bVal
		}
	}
	if val, ok := os.LookupEnv("NAM_MODULE_DIR"); ok {
		cfg.ModuleDir = val
	}
	if val, ok := os.LookupEnv("NAM_CONTROL_ADDR"); ok {
		cfg.Control.Addr = val
		cfg.Control.Enabled = true
	}
}
