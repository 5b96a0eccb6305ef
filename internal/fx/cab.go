// SPDX-License-Identifier: MIT
package fx

import (
	"github.com/charlesvestal/move-anything-nam/internal/config"
)

// cabinet applies a speaker impulse response by direct time-domain
// convolution. IRs here are short enough (a few thousand taps) that the
// O(ir_len) per-sample cost beats the latency and block-boundary handling
// an FFT overlap method would bring in.
//
// The history buffer is a sliding window over the most recent ir_len input
// samples, indexed circularly. A cabinet is immutable after construction
// except for pos and history, which only the audio thread touches; swapping
// cabinets swaps the whole struct through an atomic pointer.
type cabinet struct {
	ir      []float32
	history []float32 // len(ir) + FramesPerBlock, circular
	pos     int
}

func newCabinet(ir []float32) *cabinet {
	if len(ir) == 0 {
		return nil
	}
	return &cabinet{
		ir:      ir,
		history: make([]float32, len(ir)+config.FramesPerBlock),
	}
}

// process convolves buf against the IR in place.
// Performance Critical (Hot Path):
// - No allocations
// - No modulo in the tap loop; the read index wraps by test-and-reset
func (c *cabinet) process(buf []float32) {
	hlen := len(c.history)
	for i := range buf {
		c.history[c.pos] = buf[i]

		var sum float32
		idx := c.pos
		for k := 0; k < len(c.ir); k++ {
			sum += c.ir[k] * c.history[idx]
			idx--
			if idx < 0 {
				idx = hlen - 1
			}
		}
		buf[i] = sum

		c.pos++
		if c.pos == hlen {
			c.pos = 0
		}
	}
}
