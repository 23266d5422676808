// ABOUTME: Audio output sink interface definition
// ABOUTME: Common callback-driven interface for audio playback backends
package output

import (
	"fmt"
	"time"

	"github.com/seekplay/seekplay/pkg/audio"
)

// FillFunc writes exactly len(out) frames into out. Sinks call it from their
// real-time goroutine, so it must not block.
type FillFunc func(out []audio.Frame)

// Sink is an audio device that pulls frames through a callback
type Sink interface {
	// Open opens and starts the device. fill is invoked on the device's own
	// schedule until Close returns.
	Open(sampleRate, channels int, fill FillFunc) error

	// Close stops the device and releases its resources
	Close() error
}

// Options tunes sink construction
type Options struct {
	// FramesPerBuffer is the requested device period (0 lets the backend choose)
	FramesPerBuffer int

	// BufferDuration is the speaker buffer length used by the beep sink
	BufferDuration time.Duration
}

// DefaultOptions returns the options used when none are given
func DefaultOptions() Options {
	return Options{
		FramesPerBuffer: 0,
		BufferDuration:  100 * time.Millisecond,
	}
}

// Names lists the sink names accepted by New
var Names = []string{"malgo", "oto", "beep", "portaudio", "null"}

// New creates a sink by name
func New(name string, opts Options) (Sink, error) {
	switch name {
	case "malgo", "":
		return NewMalgo(opts), nil
	case "oto":
		return NewOto(opts), nil
	case "beep":
		return NewBeep(opts), nil
	case "portaudio":
		return NewPortAudio(opts), nil
	case "null":
		return NewNull(opts, nil), nil
	default:
		return nil, fmt.Errorf("unknown sink: %q (supported: %v)", name, Names)
	}
}
