// ABOUTME: Beep speaker audio output implementation
// ABOUTME: Plays a beep.Streamer whose Stream calls pull from the fill callback
package output

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/seekplay/seekplay/pkg/audio"
)

// the speaker is process-global and can only be initialized once
var (
	speakerMu   sync.Mutex
	speakerRate beep.SampleRate
)

// Beep output implementation using the beep speaker
type Beep struct {
	opts     Options
	mu       sync.Mutex
	streamer *fillStreamer
}

// NewBeep creates a new beep speaker output
func NewBeep(opts Options) Sink {
	if opts.BufferDuration <= 0 {
		opts.BufferDuration = DefaultOptions().BufferDuration
	}
	return &Beep{opts: opts}
}

// Open initializes the speaker on first use and starts streaming
func (b *Beep) Open(sampleRate, channels int, fill FillFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.streamer != nil {
		return fmt.Errorf("beep output already open")
	}
	if channels != audio.Channels {
		return fmt.Errorf("unsupported channel count: %d (supported: %d)", channels, audio.Channels)
	}

	if err := initSpeaker(beep.SampleRate(sampleRate), b.opts.BufferDuration); err != nil {
		return err
	}

	b.streamer = &fillStreamer{fill: fill}
	speaker.Play(b.streamer)

	log.Printf("Audio output initialized: %dHz, %d channels (beep speaker)", sampleRate, channels)
	return nil
}

func initSpeaker(sr beep.SampleRate, buffer time.Duration) error {
	speakerMu.Lock()
	defer speakerMu.Unlock()

	if speakerRate != 0 {
		if speakerRate != sr {
			return fmt.Errorf("speaker already running at %dHz, cannot switch to %dHz", speakerRate, sr)
		}
		return nil
	}

	if err := speaker.Init(sr, sr.N(buffer)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}
	speakerRate = sr
	return nil
}

// Close removes the streamer from the speaker
func (b *Beep) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.streamer == nil {
		return nil
	}

	b.streamer.close()
	speaker.Clear()
	b.streamer = nil
	return nil
}

// fillStreamer adapts a FillFunc to beep.Streamer
type fillStreamer struct {
	mu      sync.Mutex
	fill    FillFunc
	scratch []audio.Frame
	closed  bool
}

func (s *fillStreamer) Stream(samples [][2]float64) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, false
	}

	n := len(samples)
	if n > len(s.scratch) {
		s.scratch = make([]audio.Frame, n)
	}
	frames := s.scratch[:n]
	s.fill(frames)
	for i, f := range frames {
		samples[i][0] = float64(f[0])
		samples[i][1] = float64(f[1])
	}
	return n, true
}

func (s *fillStreamer) Err() error {
	return nil
}

func (s *fillStreamer) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
