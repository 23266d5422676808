// ABOUTME: Audio type definitions
// ABOUTME: Defines stereo frames, chunks, stream formats and time bases
package audio

import (
	"fmt"
	"math"
	"time"
)

// Channels is the channel count of every frame moving through the pipeline
const Channels = 2

// Frame is one stereo sample point (left, right) in the range [-1, 1]
type Frame [Channels]float32

// Chunk is a batch of decoded frames. A chunk is never modified after it
// has been handed to a queue.
type Chunk []Frame

// Format describes a decoded audio stream
type Format struct {
	Codec      string
	SampleRate int
	Channels   int // channel count of the source before stereo mapping
}

// String returns a short human-readable description
func (f Format) String() string {
	return fmt.Sprintf("%s %dHz %dch", f.Codec, f.SampleRate, f.Channels)
}

// TimeBase is the duration of one decoder tick as the rational Num/Den seconds
type TimeBase struct {
	Num int64
	Den int64
}

// SampleTimeBase returns a time base that counts samples at the given rate
func SampleTimeBase(sampleRate int) TimeBase {
	return TimeBase{Num: 1, Den: int64(sampleRate)}
}

// Ticks converts a time offset into the number of ticks of this time base.
// Fractional ticks are truncated.
func (tb TimeBase) Ticks(d time.Duration) int64 {
	if tb.Num <= 0 || tb.Den <= 0 {
		return 0
	}
	// d * Den / (Num * 1e9) without overflowing for long media
	sec := d / time.Second
	rem := d % time.Second
	ticks := int64(sec) * tb.Den / tb.Num
	ticks += int64(rem) * tb.Den / (tb.Num * int64(time.Second))
	return ticks
}

// Duration converts ticks of this time base back to a time offset
func (tb TimeBase) Duration(ticks int64) time.Duration {
	if tb.Den <= 0 {
		return 0
	}
	return time.Duration(float64(ticks) * float64(tb.Num) / float64(tb.Den) * float64(time.Second))
}

// FramesDuration returns how long n frames last at the given sample rate
func FramesDuration(n, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(int64(n) * int64(time.Second) / int64(sampleRate))
}

// Silence zeroes every frame in frames
func Silence(frames []Frame) {
	for i := range frames {
		frames[i] = Frame{}
	}
}

// SampleFromInt16 converts a 16-bit PCM sample to float
func SampleFromInt16(sample int16) float32 {
	return float32(sample) / 32768
}

// SampleFromInt converts a signed PCM sample of the given bit depth to float
func SampleFromInt(sample int32, bitDepth int) float32 {
	if bitDepth <= 0 || bitDepth > 32 {
		return 0
	}
	return float32(float64(sample) / float64(int64(1)<<(bitDepth-1)))
}

// SampleToInt16 converts a float sample to 16-bit PCM with clipping
func SampleToInt16(sample float32) int16 {
	v := math.Round(float64(sample) * 32767)
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

// FramesFromInterleaved maps interleaved samples with the given channel count
// onto stereo frames. Mono is duplicated to both sides and channels beyond the
// second are dropped. dst is reused when it has enough capacity.
func FramesFromInterleaved(dst Chunk, samples []float32, channels int) Chunk {
	if channels <= 0 {
		return dst[:0]
	}
	n := len(samples) / channels
	if cap(dst) < n {
		dst = make(Chunk, n)
	}
	dst = dst[:n]
	for i := 0; i < n; i++ {
		l := samples[i*channels]
		r := l
		if channels > 1 {
			r = samples[i*channels+1]
		}
		dst[i] = Frame{l, r}
	}
	return dst
}
