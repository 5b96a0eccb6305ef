package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"

	"github.com/charlesvestal/move-anything-nam/internal/config"
	"github.com/charlesvestal/move-anything-nam/pkg/utils"
)

// The recorder is exercised without a live stream: StartRecording and the
// callback-side write path do not touch PortAudio.

func TestRecordingRoundTrip(t *testing.T) {
	t.Parallel()
	e := &Engine{}
	path := filepath.Join(t.TempDir(), "out.wav")

	if err := e.StartRecording(path); err != nil {
		t.Fatalf("StartRecording: %v", err)
	}

	block := utils.StereoInt16Block(config.FramesPerBlock, 440)
	e.rec.write(block)
	e.rec.write(block)

	if err := e.StopRecording(); err != nil {
		t.Fatalf("StopRecording: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open recording: %v", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("recording is not a valid WAV file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if buf.Format.NumChannels != config.Channels {
		t.Errorf("channels: got %d, want %d", buf.Format.NumChannels, config.Channels)
	}
	wantSamples := 2 * config.FramesPerBlock * config.Channels
	if len(buf.Data) != wantSamples {
		t.Errorf("samples: got %d, want %d", len(buf.Data), wantSamples)
	}
	for i := 0; i < len(block); i++ {
		if buf.Data[i] != int(block[i]) {
			t.Fatalf("sample %d: got %d, want %d", i, buf.Data[i], block[i])
		}
	}
}

func TestDoubleStartRejected(t *testing.T) {
	t.Parallel()
	e := &Engine{}
	dir := t.TempDir()

	if err := e.StartRecording(filepath.Join(dir, "a.wav")); err != nil {
		t.Fatalf("StartRecording: %v", err)
	}
	if err := e.StartRecording(filepath.Join(dir, "b.wav")); err == nil {
		t.Error("second StartRecording should fail while active")
	}
	if err := e.StopRecording(); err != nil {
		t.Fatalf("StopRecording: %v", err)
	}
}

func TestStopWithoutStart(t *testing.T) {
	t.Parallel()
	e := &Engine{}
	if err := e.StopRecording(); err != nil {
		t.Errorf("StopRecording on idle engine: %v", err)
	}
}

func TestWriteWhenInactiveIsNoop(t *testing.T) {
	t.Parallel()
	e := &Engine{}
	// Must not panic with no encoder prepared.
	e.rec.write(utils.StereoInt16Block(32, 440))
}
