//go:build portaudio

// ABOUTME: PortAudio output implementation
// ABOUTME: Cross-platform callback stream using PortAudio
package output

import (
	"fmt"
	"log"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/seekplay/seekplay/pkg/audio"
)

// PortAudio output implementation
type PortAudio struct {
	opts   Options
	mu     sync.Mutex
	stream *portaudio.Stream
	fill   FillFunc

	// only touched from the stream callback
	scratch []audio.Frame
}

// NewPortAudio creates a new PortAudio output
func NewPortAudio(opts Options) Sink {
	return &PortAudio{opts: opts}
}

// Open initializes PortAudio and starts a float32 output stream
func (p *PortAudio) Open(sampleRate, channels int, fill FillFunc) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream != nil {
		return fmt.Errorf("portaudio output already open")
	}
	if channels != audio.Channels {
		return fmt.Errorf("unsupported channel count: %d (supported: %d)", channels, audio.Channels)
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	p.fill = fill
	p.scratch = make([]audio.Frame, 4096)

	stream, err := portaudio.OpenDefaultStream(0, channels, float64(sampleRate), p.opts.FramesPerBuffer, p.callback)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("failed to open stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("failed to start stream: %w", err)
	}

	p.stream = stream
	log.Printf("Audio output initialized: %dHz, %d channels (portaudio/float32)", sampleRate, channels)
	return nil
}

// callback receives interleaved float32 output buffers
func (p *PortAudio) callback(out []float32) {
	n := len(out) / audio.Channels
	if n > len(p.scratch) {
		p.scratch = make([]audio.Frame, n)
	}
	frames := p.scratch[:n]
	p.fill(frames)
	for i, f := range frames {
		out[i*2] = f[0]
		out[i*2+1] = f[1]
	}
}

// Close releases resources
func (p *PortAudio) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return nil
	}

	stopErr := p.stream.Stop()
	closeErr := p.stream.Close()
	p.stream = nil
	termErr := portaudio.Terminate()

	if stopErr != nil {
		return stopErr
	}
	if closeErr != nil {
		return closeErr
	}
	return termErr
}
