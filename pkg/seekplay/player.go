// ABOUTME: Session controller for seekable playback
// ABOUTME: Owns the decoder and runs one producer/consumer session per Play
package seekplay

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/seekplay/seekplay/pkg/audio"
	"github.com/seekplay/seekplay/pkg/audio/decode"
	"github.com/seekplay/seekplay/pkg/audio/output"
	"github.com/seekplay/seekplay/pkg/audio/queue"
	"github.com/seekplay/seekplay/pkg/audio/reassemble"
)

// Resolver maps a user-facing locator to something decode.Open accepts
type Resolver interface {
	Resolve(ctx context.Context, locator string) (string, error)
}

// Config holds player configuration
type Config struct {
	// Locator is a file path, URL or anything Resolver understands
	Locator string

	// Resolver is applied to Locator before opening (optional)
	Resolver Resolver

	// Decoder bypasses Locator and Resolver entirely (optional)
	Decoder decode.Decoder

	// DecodeOptions are passed to decode.Open
	DecodeOptions decode.Options

	// Sink is the audio device (default: output.New(SinkName))
	Sink output.Sink

	// SinkName selects a sink when Sink is nil (default: malgo)
	SinkName string

	// SinkOptions are passed to output.New
	SinkOptions output.Options

	// QueueCapacity is the chunk depth of the sample channel (default: 200)
	QueueCapacity int

	// ChunkFrames is the producer's chunk threshold (default: 4096)
	ChunkFrames int

	// FetchPolicy controls how many chunks one callback may take
	FetchPolicy reassemble.FetchPolicy

	// OnStateChange is called after every Idle/Playing transition
	OnStateChange func(State)

	// OnError is called when a session's decode loop fails
	OnError func(error)

	// OnEnd is called when a session's decode loop reaches end of stream
	OnEnd func()
}

// State is the session state
type State int

const (
	Idle State = iota
	Playing
)

func (s State) String() string {
	if s == Playing {
		return "playing"
	}
	return "idle"
}

// Status describes the current session
type Status struct {
	State     State
	SessionID string
	Start     time.Duration
	Position  time.Duration
	Format    audio.Format
}

// Stats contains counters for the current session
type Stats struct {
	SessionID       string
	State           State
	ChunksProduced  int64
	FramesProduced  int64
	FramesDelivered int64
	SilentFrames    int64
	Underruns       int64
	QueueDepth      int
	QueueCapacity   int
}

// session is everything that lives for one Play call
type session struct {
	id          string
	start       time.Duration
	queue       *queue.Queue
	reassembler *reassemble.Reassembler
	driver      *output.Driver
	producer    *producer
	cancelled   atomic.Bool
	ctx         context.Context
	cancel      context.CancelFunc
	done        chan struct{}
}

// Player plays one source with seek/play/stop control. All methods are safe
// for concurrent use: Play, Stop and Close run one at a time. Callbacks run
// while that lock may be held and must not call Play, Stop or Close.
type Player struct {
	config  Config
	decoder decode.Decoder
	sink    output.Sink
	format  audio.Format

	ctx    context.Context
	cancel context.CancelFunc

	// serialises Play, Stop and Close
	controlMu sync.Mutex

	mu      sync.Mutex
	session *session
	closed  bool
}

// New resolves and opens the source. No player exists if that fails.
func New(config Config) (*Player, error) {
	if config.QueueCapacity <= 0 {
		config.QueueCapacity = queue.DefaultCapacity
	}
	if config.ChunkFrames <= 0 {
		config.ChunkFrames = DefaultChunkFrames
	}

	ctx, cancel := context.WithCancel(context.Background())

	dec := config.Decoder
	if dec == nil {
		var err error
		dec, err = openDecoder(ctx, config)
		if err != nil {
			cancel()
			return nil, err
		}
	}

	format := dec.Format()
	if format.SampleRate <= 0 {
		dec.Close()
		cancel()
		return nil, &DecodeError{Op: "open", Err: fmt.Errorf("invalid sample rate: %d", format.SampleRate)}
	}

	sink := config.Sink
	if sink == nil {
		var err error
		sink, err = output.New(config.SinkName, config.SinkOptions)
		if err != nil {
			dec.Close()
			cancel()
			return nil, err
		}
	}

	log.Printf("Player ready: %s (queue: %d chunks, chunk: %d frames, fetch: %s)",
		format, config.QueueCapacity, config.ChunkFrames, config.FetchPolicy)

	return &Player{
		config:  config,
		decoder: dec,
		sink:    sink,
		format:  format,
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

func openDecoder(ctx context.Context, config Config) (decode.Decoder, error) {
	if config.Locator == "" {
		return nil, &ResolutionError{Locator: config.Locator, Err: fmt.Errorf("empty locator")}
	}

	source := config.Locator
	if config.Resolver != nil {
		resolved, err := config.Resolver.Resolve(ctx, config.Locator)
		if err != nil {
			return nil, &ResolutionError{Locator: config.Locator, Err: err}
		}
		source = resolved
	}

	dec, err := decode.Open(ctx, source, config.DecodeOptions)
	if err != nil {
		return nil, &DecodeError{Op: "open", Err: err}
	}
	return dec, nil
}

// Play starts a session at start, replacing any running session. If the
// running session's device fails to close, that error is returned and no new
// session starts.
func (p *Player) Play(start time.Duration) error {
	if start < 0 {
		return ErrNegativeStart
	}

	p.controlMu.Lock()
	defer p.controlMu.Unlock()

	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrClosed
	}

	if err := p.stop(); err != nil {
		return fmt.Errorf("failed to stop previous session: %w", err)
	}

	s := p.newSession(start)
	if err := s.driver.Start(); err != nil {
		s.cancel()
		return err
	}

	ticks := p.decoder.TimeBase().Ticks(start)
	go p.runProducer(s, ticks)

	p.mu.Lock()
	p.session = s
	p.mu.Unlock()

	log.Printf("Session %s playing from %v", s.id, start)
	p.notify(Playing)
	return nil
}

func (p *Player) newSession(start time.Duration) *session {
	ctx, cancel := context.WithCancel(p.ctx)
	s := &session{
		id:     uuid.New().String(),
		start:  start,
		queue:  queue.New(p.config.QueueCapacity),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.reassembler = reassemble.New(s.queue, reassemble.WithFetchPolicy(p.config.FetchPolicy))
	s.driver = output.NewDriver(p.sink, s.reassembler.Fill, p.format.SampleRate)
	s.producer = &producer{
		decoder:     p.decoder,
		queue:       s.queue,
		cancelled:   &s.cancelled,
		chunkFrames: p.config.ChunkFrames,
	}
	return s
}

func (p *Player) runProducer(s *session, ticks int64) {
	defer close(s.done)

	result, err := s.producer.run(s.ctx, ticks)
	switch result {
	case loopFailed:
		log.Printf("Session %s decode failed: %v", s.id, err)
		if p.config.OnError != nil {
			p.config.OnError(err)
		}
	case loopEnded:
		log.Printf("Session %s reached end of stream (%d chunks)", s.id, s.producer.chunks.Load())
		if p.config.OnEnd != nil {
			p.config.OnEnd()
		}
	}
}

// Stop ends the running session. It is a no-op when idle. The producer is
// joined before the device is closed.
func (p *Player) Stop() error {
	p.controlMu.Lock()
	defer p.controlMu.Unlock()
	return p.stop()
}

func (p *Player) stop() error {
	p.mu.Lock()
	s := p.session
	p.session = nil
	p.mu.Unlock()

	if s == nil {
		return nil
	}

	s.cancelled.Store(true)
	s.cancel()
	<-s.done

	err := s.driver.Stop()

	log.Printf("Session %s stopped (delivered: %d frames, underruns: %d)",
		s.id, s.reassembler.FramesDelivered(), s.reassembler.Underruns())
	p.notify(Idle)
	return err
}

// Close stops playback and releases the decoder. Play fails afterwards.
func (p *Player) Close() error {
	p.controlMu.Lock()
	defer p.controlMu.Unlock()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	stopErr := p.stop()
	p.cancel()
	closeErr := p.decoder.Close()

	if stopErr != nil {
		return stopErr
	}
	if closeErr != nil {
		return &DecodeError{Op: "close", Err: closeErr}
	}
	return nil
}

// Format returns the source format
func (p *Player) Format() audio.Format {
	return p.format
}

// Status returns the current session state
func (p *Player) Status() Status {
	p.mu.Lock()
	s := p.session
	p.mu.Unlock()

	if s == nil {
		return Status{State: Idle, Format: p.format}
	}

	delivered := s.reassembler.FramesDelivered()
	return Status{
		State:     Playing,
		SessionID: s.id,
		Start:     s.start,
		Position:  s.start + audio.FramesDuration(int(delivered), p.format.SampleRate),
		Format:    p.format,
	}
}

// Stats returns counters for the current session
func (p *Player) Stats() Stats {
	p.mu.Lock()
	s := p.session
	p.mu.Unlock()

	if s == nil {
		return Stats{State: Idle, QueueCapacity: p.config.QueueCapacity}
	}

	return Stats{
		SessionID:       s.id,
		State:           Playing,
		ChunksProduced:  s.producer.chunks.Load(),
		FramesProduced:  s.producer.frames.Load(),
		FramesDelivered: s.reassembler.FramesDelivered(),
		SilentFrames:    s.reassembler.SilentFrames(),
		Underruns:       s.reassembler.Underruns(),
		QueueDepth:      s.queue.Len(),
		QueueCapacity:   s.queue.Cap(),
	}
}

func (p *Player) notify(state State) {
	if p.config.OnStateChange != nil {
		p.config.OnStateChange(state)
	}
}
