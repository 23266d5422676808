// ABOUTME: Simple linear resampler for converting audio sample rates
// ABOUTME: Interpolates stereo frames across chunk boundaries
package resample

import (
	"math"

	"github.com/seekplay/seekplay/pkg/audio"
)

// Resampler performs linear interpolation to convert between sample rates.
// State carries across calls so consecutive chunks join without clicks.
type Resampler struct {
	inputRate  int
	outputRate int
	ratio      float64

	// position of the next output frame in input frames, relative to the
	// start of the next input chunk; -1 refers to last
	position float64
	last     audio.Frame
	primed   bool
}

// New creates a new resampler
func New(inputRate, outputRate int) *Resampler {
	ratio := 1.0
	if inputRate > 0 && outputRate > 0 {
		ratio = float64(inputRate) / float64(outputRate)
	}
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		ratio:      ratio,
	}
}

// Resample converts input frames to the output rate. output must hold at
// least MaxOutputFrames(len(input)) frames; returns the number written.
func (r *Resampler) Resample(input, output []audio.Frame) int {
	n := len(input)
	if n == 0 {
		return 0
	}

	if !r.primed {
		r.last = input[0]
		r.primed = true
	}

	out := 0
	for out < len(output) {
		idx := int(math.Floor(r.position))
		if idx+1 >= n {
			break
		}

		frac := float32(r.position - float64(idx))
		a := r.last
		if idx >= 0 {
			a = input[idx]
		}
		b := input[idx+1]

		output[out] = audio.Frame{
			a[0]*(1-frac) + b[0]*frac,
			a[1]*(1-frac) + b[1]*frac,
		}
		out++
		r.position += r.ratio
	}

	r.position -= float64(n)
	if r.position < -1 {
		r.position = -1
	}
	r.last = input[n-1]
	return out
}

// Reset drops interpolation state, e.g. after a seek
func (r *Resampler) Reset() {
	r.position = 0
	r.last = audio.Frame{}
	r.primed = false
}

// MaxOutputFrames is an upper bound on the frames produced from n input frames
func (r *Resampler) MaxOutputFrames(n int) int {
	return int(float64(n)/r.ratio) + 2
}

// InputRate returns the source rate
func (r *Resampler) InputRate() int {
	return r.inputRate
}

// OutputRate returns the target rate
func (r *Resampler) OutputRate() int {
	return r.outputRate
}
