// ABOUTME: Null audio output that consumes frames in real time
// ABOUTME: Used for headless runs and tests; no device is touched
package output

import (
	"fmt"
	"sync"
	"time"

	"github.com/seekplay/seekplay/pkg/audio"
)

// default period when Options.FramesPerBuffer is zero
const nullPeriodFrames = 1024

// Null pulls frames on a ticker at the stream's sample rate and discards them
type Null struct {
	opts     Options
	observer func([]audio.Frame)

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewNull creates a null output. observer, if set, sees every buffer after it
// is filled and must not retain it.
func NewNull(opts Options, observer func([]audio.Frame)) Sink {
	return &Null{opts: opts, observer: observer}
}

// Open starts the pull loop
func (n *Null) Open(sampleRate, channels int, fill FillFunc) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.stop != nil {
		return fmt.Errorf("null output already open")
	}
	if sampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", sampleRate)
	}
	if channels != audio.Channels {
		return fmt.Errorf("unsupported channel count: %d (supported: %d)", channels, audio.Channels)
	}

	period := n.opts.FramesPerBuffer
	if period <= 0 {
		period = nullPeriodFrames
	}
	interval := audio.FramesDuration(period, sampleRate)
	if interval <= 0 {
		interval = time.Millisecond
	}

	n.stop = make(chan struct{})
	n.done = make(chan struct{})
	go n.run(fill, make([]audio.Frame, period), interval, n.stop, n.done)
	return nil
}

func (n *Null) run(fill FillFunc, buf []audio.Frame, interval time.Duration, stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			fill(buf)
			if n.observer != nil {
				n.observer(buf)
			}
		}
	}
}

// Close stops the pull loop and waits for it to exit
func (n *Null) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.stop == nil {
		return nil
	}

	close(n.stop)
	<-n.done
	n.stop = nil
	n.done = nil
	return nil
}
