// SPDX-License-Identifier: MIT
// Package ir loads cabinet impulse responses from WAV files.
package ir

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/wav"
	"gonum.org/v1/gonum/floats"

	"github.com/charlesvestal/move-anything-nam/internal/config"
)

var (
	// ErrNotWAV is returned when the file is not a readable WAV container.
	ErrNotWAV = errors.New("ir: not a valid WAV file")
	// ErrEmpty is returned when the file decodes to zero samples.
	ErrEmpty = errors.New("ir: no samples")
)

// Load reads a WAV file and returns its samples as a mono float32 impulse
// response, truncated to the configured cap and peak-normalized to unity.
// Multi-channel files are averaged down to mono; bit depth and container
// details are the decoder's problem.
func Load(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ir: open %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: %s", ErrNotWAV, path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("ir: decode %s: %w", path, err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, path)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := float64(int64(1) << (bitDepth - 1))

	frames := len(buf.Data) / channels
	// A multi-channel file with fewer samples than channels has no complete
	// frame to downmix.
	if frames == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, path)
	}
	if frames > config.MaxIRLength {
		frames = config.MaxIRLength
	}

	// Downmix to mono in float64 for the normalization pass.
	mono := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c]) / scale
		}
		mono[i] = sum / float64(channels)
	}

	normalize(mono)

	out := make([]float32, frames)
	for i, v := range mono {
		out[i] = float32(v)
	}
	return out, nil
}

// normalize scales the IR so its peak magnitude is 1. A silent IR is left
// untouched; zero output is a legitimate (if useless) cabinet.
func normalize(samples []float64) {
	if len(samples) == 0 {
		return
	}
	peak := floats.Max(samples)
	if low := floats.Min(samples); -low > peak {
		peak = -low
	}
	if peak > 0 {
		floats.Scale(1/peak, samples)
	}
}

// Energy returns the total energy of an impulse response, used for logging
// a one-line summary when a cabinet is loaded.
func Energy(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	wide := make([]float64, len(samples))
	for i, v := range samples {
		wide[i] = float64(v)
	}
	return floats.Dot(wide, wide)
}
