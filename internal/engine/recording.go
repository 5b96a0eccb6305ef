package engine

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/charlesvestal/move-anything-nam/internal/config"
	applog "github.com/charlesvestal/move-anything-nam/internal/log"
)

// recorder captures the processed output stream to a 16-bit stereo WAV.
type recorder struct {
	active     int32 // atomic flag, read by the audio thread
	outputFile *os.File
	wavEncoder *wav.Encoder
	sampleBuf  *audio.IntBuffer // reusable buffer for format conversion
}

// StartRecording begins writing processed output to filename.
func (e *Engine) StartRecording(filename string) error {
	if atomic.LoadInt32(&e.rec.active) == 1 {
		return fmt.Errorf("already recording")
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	e.rec.outputFile = file
	e.rec.wavEncoder = wav.NewEncoder(file, config.SampleRate, 16, config.Channels, 1)
	e.rec.sampleBuf = &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: config.Channels,
			SampleRate:  config.SampleRate,
		},
		Data:           make([]int, config.FramesPerBlock*config.Channels),
		SourceBitDepth: 16,
	}

	atomic.StoreInt32(&e.rec.active, 1)
	return nil
}

// StopRecording finalizes and closes the recording file.
func (e *Engine) StopRecording() error {
	if atomic.LoadInt32(&e.rec.active) == 0 {
		return nil
	}
	atomic.StoreInt32(&e.rec.active, 0)

	if e.rec.wavEncoder != nil {
		if err := e.rec.wavEncoder.Close(); err != nil {
			return err
		}
		e.rec.wavEncoder = nil
	}
	if e.rec.outputFile != nil {
		if err := e.rec.outputFile.Close(); err != nil {
			return err
		}
		e.rec.outputFile = nil
	}
	return nil
}

// write appends one processed block to the recording when active.
// Called from the stream callback.
func (r *recorder) write(block []int16) {
	if atomic.LoadInt32(&r.active) != 1 || r.wavEncoder == nil {
		return
	}
	if cap(r.sampleBuf.Data) < len(block) {
		return
	}
	r.sampleBuf.Data = r.sampleBuf.Data[:len(block)]
	for i, sample := range block {
		r.sampleBuf.Data[i] = int(sample)
	}
	if err := r.wavEncoder.Write(r.sampleBuf); err != nil {
		applog.Errorf("engine: error writing to WAV file: %v", err)
	}
}
