// ABOUTME: Decode loop feeding the bounded sample channel
// ABOUTME: Seeks once, then accumulates decoded packets into chunks until cancelled or exhausted
package seekplay

import (
	"context"
	"errors"
	"io"
	"sync/atomic"

	"github.com/seekplay/seekplay/pkg/audio"
	"github.com/seekplay/seekplay/pkg/audio/decode"
	"github.com/seekplay/seekplay/pkg/audio/queue"
)

// DefaultChunkFrames is the chunk threshold used when none is configured
const DefaultChunkFrames = 4096

type loopResult int

const (
	loopEnded loopResult = iota
	loopCancelled
	loopFailed
)

func (r loopResult) String() string {
	switch r {
	case loopEnded:
		return "ended"
	case loopCancelled:
		return "cancelled"
	default:
		return "failed"
	}
}

// producer runs one session's decode loop
type producer struct {
	decoder     decode.Decoder
	queue       *queue.Queue
	cancelled   *atomic.Bool
	chunkFrames int

	chunks atomic.Int64
	frames atomic.Int64
}

// run seeks to ticks and pushes chunks until end of stream, cancellation or
// a decode error. A partial chunk is flushed only at end of stream.
func (p *producer) run(ctx context.Context, ticks int64) (loopResult, error) {
	if err := p.decoder.Seek(ticks); err != nil {
		return loopFailed, &DecodeError{Op: "seek", Err: err}
	}

	var pending audio.Chunk
	for {
		packet, err := p.decoder.Next()
		if errors.Is(err, io.EOF) {
			if len(pending) > 0 && !p.cancelled.Load() {
				if p.put(ctx, pending) != nil {
					return loopCancelled, nil
				}
			}
			return loopEnded, nil
		}
		if err != nil {
			return loopFailed, &DecodeError{Op: "decode", Err: err}
		}

		if p.cancelled.Load() {
			return loopCancelled, nil
		}
		if len(packet) == 0 {
			continue
		}

		// large packets go straight through without a copy
		if len(pending) == 0 && len(packet) >= p.chunkFrames {
			if p.put(ctx, packet) != nil {
				return loopCancelled, nil
			}
			continue
		}

		if pending == nil {
			pending = make(audio.Chunk, 0, p.chunkFrames+len(packet))
		}
		pending = append(pending, packet...)

		if len(pending) >= p.chunkFrames {
			if p.put(ctx, pending) != nil {
				return loopCancelled, nil
			}
			pending = nil
		}
	}
}

func (p *producer) put(ctx context.Context, chunk audio.Chunk) error {
	if err := p.queue.Put(ctx, chunk); err != nil {
		return err
	}
	p.chunks.Add(1)
	p.frames.Add(int64(len(chunk)))
	return nil
}
