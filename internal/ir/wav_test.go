// SPDX-License-Identifier: MIT
package ir

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/charlesvestal/move-anything-nam/internal/config"
)

// writeWAV writes 16-bit PCM test fixtures with the same encoder the engine
// uses for recordings.
func writeWAV(t *testing.T, path string, channels int, data []int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	enc := wav.NewEncoder(f, config.SampleRate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  config.SampleRate,
		},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
}

func TestLoadMonoNormalized(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "cab.wav")
	// Half-scale impulse followed by a quarter-scale tail sample.
	writeWAV(t, path, 1, []int{16384, 8192, 0, 0})

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("got %d samples, want 4", len(got))
	}
	// Peak normalization brings the impulse to 1.0 and the tail to 0.5.
	if math.Abs(float64(got[0])-1.0) > 1e-4 {
		t.Errorf("sample 0: got %f, want 1.0", got[0])
	}
	if math.Abs(float64(got[1])-0.5) > 1e-4 {
		t.Errorf("sample 1: got %f, want 0.5", got[1])
	}
}

func TestLoadStereoDownmix(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "stereo.wav")
	// Frame 0: L=16384 R=0 -> mono 8192. Frame 1: L=R=16384 -> mono 16384.
	writeWAV(t, path, 2, []int{16384, 0, 16384, 16384})

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d samples, want 2", len(got))
	}
	// After normalization the louder frame is 1.0 and the first is 0.5.
	if math.Abs(float64(got[0])-0.5) > 1e-4 || math.Abs(float64(got[1])-1.0) > 1e-4 {
		t.Errorf("downmix: got [%f %f], want [0.5 1.0]", got[0], got[1])
	}
}

func TestLoadTruncatesToCap(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "long.wav")
	data := make([]int, config.MaxIRLength+512)
	for i := range data {
		data[i] = 1000
	}
	writeWAV(t, path, 1, data)

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != config.MaxIRLength {
		t.Errorf("got %d samples, want cap %d", len(got), config.MaxIRLength)
	}
}

func TestLoadRejectsPartialFrame(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "short.wav")
	// One sample across two channels: no complete frame to downmix.
	writeWAV(t, path, 2, []int{16384})

	if _, err := Load(path); !errors.Is(err, ErrEmpty) {
		t.Errorf("got %v, want ErrEmpty", err)
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "garbage.wav")
	if err := os.WriteFile(path, []byte("definitely not riff data"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for non-WAV file")
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()
	if _, err := Load(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestEnergy(t *testing.T) {
	t.Parallel()
	if got := Energy([]float32{1, 0, 0}); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("unit impulse energy: got %f, want 1", got)
	}
	if got := Energy(nil); got != 0 {
		t.Errorf("empty energy: got %f, want 0", got)
	}
}
