// ABOUTME: Bounded FIFO of decoded audio chunks
// ABOUTME: Blocking Put for the decoder, non-blocking TryGet for the output callback
package queue

import (
	"context"

	"github.com/seekplay/seekplay/pkg/audio"
)

// DefaultCapacity is the default number of chunks a queue holds
const DefaultCapacity = 200

// Queue is a fixed-capacity FIFO of audio chunks safe for one producer and
// one consumer running concurrently.
type Queue struct {
	chunks chan audio.Chunk
}

// New creates a queue holding at most capacity chunks
func New(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{
		chunks: make(chan audio.Chunk, capacity),
	}
}

// Put appends chunk at the tail, blocking while the queue is full.
// If ctx ends first the chunk is not enqueued and ctx.Err() is returned.
func (q *Queue) Put(ctx context.Context, chunk audio.Chunk) error {
	select {
	case q.chunks <- chunk:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryGet removes and returns the head chunk. It never blocks; ok is false
// when the queue is empty.
func (q *Queue) TryGet() (chunk audio.Chunk, ok bool) {
	select {
	case chunk = <-q.chunks:
		return chunk, true
	default:
		return nil, false
	}
}

// Len returns the number of queued chunks
func (q *Queue) Len() int {
	return len(q.chunks)
}

// Cap returns the queue capacity
func (q *Queue) Cap() int {
	return cap(q.chunks)
}
