// ABOUTME: Oto-based audio output implementation
// ABOUTME: Feeds an oto player from the fill callback through an io.Reader
package output

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/seekplay/seekplay/pkg/audio"
)

// oto allows a single context per process, shared by every Oto sink
var (
	otoMu       sync.Mutex
	otoCtx      *oto.Context
	otoRate     int
	otoChannels int
)

// Oto output implementation using oto library
type Oto struct {
	opts   Options
	mu     sync.Mutex
	player *oto.Player
	reader *fillReader
}

// NewOto creates a new Oto output
func NewOto(opts Options) Sink {
	return &Oto{opts: opts}
}

// Open initializes the shared oto context on first use and starts a player
func (o *Oto) Open(sampleRate, channels int, fill FillFunc) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player != nil {
		return fmt.Errorf("oto output already open")
	}

	ctx, err := sharedOtoContext(sampleRate, channels, o.opts)
	if err != nil {
		return err
	}

	o.reader = &fillReader{fill: fill}
	o.player = ctx.NewPlayer(o.reader)
	o.player.Play()

	log.Printf("Audio output initialized: %dHz, %d channels (oto/float32)", sampleRate, channels)
	return nil
}

func sharedOtoContext(sampleRate, channels int, opts Options) (*oto.Context, error) {
	otoMu.Lock()
	defer otoMu.Unlock()

	if otoCtx != nil {
		// oto doesn't support reinitialization with a different format
		if otoRate != sampleRate || otoChannels != channels {
			return nil, fmt.Errorf("oto context already running at %dHz %dch, cannot switch to %dHz %dch",
				otoRate, otoChannels, sampleRate, channels)
		}
		if err := otoCtx.Resume(); err != nil {
			return nil, fmt.Errorf("failed to resume oto context: %w", err)
		}
		return otoCtx, nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   opts.BufferDuration,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-readyChan

	otoCtx = ctx
	otoRate = sampleRate
	otoChannels = channels
	return ctx, nil
}

// Close stops the player and suspends the shared context
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player == nil {
		return nil
	}

	o.reader.close()
	o.player.Pause()
	if err := o.player.Close(); err != nil {
		log.Printf("Warning: oto player close error: %v", err)
	}
	o.player = nil
	o.reader = nil

	otoMu.Lock()
	defer otoMu.Unlock()
	if otoCtx != nil {
		if err := otoCtx.Suspend(); err != nil {
			return fmt.Errorf("failed to suspend oto context: %w", err)
		}
	}
	return nil
}

// fillReader turns pull requests from a byte-oriented player into FillFunc
// calls. Once closed it reports EOF and never calls fill again.
type fillReader struct {
	mu      sync.Mutex
	fill    FillFunc
	scratch []audio.Frame
	closed  bool
}

func (r *fillReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0, io.EOF
	}

	n := len(p) / 8 // two float32 per frame
	if n == 0 {
		return 0, nil
	}
	if n > len(r.scratch) {
		r.scratch = make([]audio.Frame, n)
	}
	frames := r.scratch[:n]
	r.fill(frames)
	return encodeFloat32LE(p, frames), nil
}

func (r *fillReader) close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
}
