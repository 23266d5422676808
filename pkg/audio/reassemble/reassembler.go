// ABOUTME: Adapts variable-sized decoded chunks to fixed-size output blocks
// ABOUTME: Carries leftover frames between callbacks and zero-fills on underrun
package reassemble

import (
	"fmt"
	"sync/atomic"

	"github.com/seekplay/seekplay/pkg/audio"
)

// Source is a non-blocking supplier of chunks
type Source interface {
	TryGet() (audio.Chunk, bool)
}

// FetchPolicy controls how many chunks Fill may take from its source per call
type FetchPolicy int

const (
	// FetchUntilFilled keeps taking chunks until the block is covered or the
	// source is empty.
	FetchUntilFilled FetchPolicy = iota
	// FetchOnce takes at most one chunk per call, bounding callback latency.
	FetchOnce
)

// String returns the policy name used in configuration
func (p FetchPolicy) String() string {
	switch p {
	case FetchUntilFilled:
		return "fill"
	case FetchOnce:
		return "once"
	default:
		return fmt.Sprintf("FetchPolicy(%d)", int(p))
	}
}

// ParseFetchPolicy parses "fill" or "once"; empty selects fill
func ParseFetchPolicy(s string) (FetchPolicy, error) {
	switch s {
	case "fill", "":
		return FetchUntilFilled, nil
	case "once":
		return FetchOnce, nil
	default:
		return 0, fmt.Errorf("unknown fetch policy: %q (supported: fill, once)", s)
	}
}

// Option configures a Reassembler
type Option func(*Reassembler)

// WithFetchPolicy sets the fetch policy
func WithFetchPolicy(p FetchPolicy) Option {
	return func(r *Reassembler) {
		r.policy = p
	}
}

// Reassembler fills fixed-size output blocks from a chunk source.
//
// Fill must only be called from a single goroutine, normally the output
// device's callback. It never blocks and never allocates. The counters may be
// read from any goroutine.
type Reassembler struct {
	src    Source
	policy FetchPolicy

	// suffix of the most recently fetched chunk not yet delivered
	leftover audio.Chunk

	delivered atomic.Int64
	silent    atomic.Int64
	underruns atomic.Int64
}

// New creates a reassembler reading from src
func New(src Source, opts ...Option) *Reassembler {
	r := &Reassembler{
		src:    src,
		policy: FetchUntilFilled,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fill writes exactly len(out) frames into out: leftover frames first, then
// freshly fetched frames, then silence if the source ran dry. No fetch happens
// while the leftover alone covers out, so the leftover stays a suffix of a
// single chunk.
func (r *Reassembler) Fill(out []audio.Frame) {
	want := len(out)
	n := copy(out, r.leftover)
	r.leftover = r.leftover[n:]
	if len(r.leftover) == 0 {
		r.leftover = nil
	}

	fetched := false
	for n < want {
		if fetched && r.policy == FetchOnce {
			break
		}
		chunk, ok := r.src.TryGet()
		if !ok {
			break
		}
		fetched = true
		c := copy(out[n:], chunk)
		n += c
		if c < len(chunk) {
			r.leftover = chunk[c:]
		}
	}

	if n < want {
		audio.Silence(out[n:])
		r.silent.Add(int64(want - n))
		r.underruns.Add(1)
	}
	r.delivered.Add(int64(n))
}

// Pending returns the number of leftover frames held for the next Fill.
// Only safe to call from the goroutine that calls Fill.
func (r *Reassembler) Pending() int {
	return len(r.leftover)
}

// Reset drops any leftover frames. The caller must ensure Fill is not running.
func (r *Reassembler) Reset() {
	r.leftover = nil
}

// FramesDelivered returns the number of non-silent frames written so far
func (r *Reassembler) FramesDelivered() int64 {
	return r.delivered.Load()
}

// SilentFrames returns the number of zero frames written because of underruns
func (r *Reassembler) SilentFrames() int64 {
	return r.silent.Load()
}

// Underruns returns the number of Fill calls that had to pad with silence
func (r *Reassembler) Underruns() int64 {
	return r.underruns.Load()
}
