package utils

import (
	"math"

	"github.com/charlesvestal/move-anything-nam/internal/config"
)

// SineBlock generates a mono float32 sine block at the module sample rate,
// scaled to 90% of full scale.
func SineBlock(size int, frequency float64) []float32 {
	buf := make([]float32, size)
	for i := range buf {
		tm := float64(i) / config.SampleRate
		buf[i] = float32(math.Sin(2*math.Pi*frequency*tm) * 0.9)
	}
	return buf
}

// StereoInt16Block generates an interleaved stereo int16 block with a sine
// on both channels, the shape the host delivers to the effect.
func StereoInt16Block(frames int, frequency float64) []int16 {
	buf := make([]int16, frames*2)
	for i := 0; i < frames; i++ {
		tm := float64(i) / config.SampleRate
		s := int16(math.Sin(2*math.Pi*frequency*tm) * math.MaxInt16 * 0.9)
		buf[i*2] = s
		buf[i*2+1] = s
	}
	return buf
}

// ImpulseIR builds an IR of the given length with a single unit tap at pos.
func ImpulseIR(length, pos int) []float32 {
	out := make([]float32, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}
