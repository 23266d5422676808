// ABOUTME: Decoder interface definition
// ABOUTME: Common pull interface for all seekable audio decoders
package decode

import (
	"github.com/seekplay/seekplay/pkg/audio"
)

// Decoder decodes an audio source into stereo float frames
type Decoder interface {
	// Format describes the source stream
	Format() audio.Format

	// TimeBase is the unit Seek positions are expressed in
	TimeBase() audio.TimeBase

	// Seek positions the decoder so the next Next call returns audio starting
	// at ticks. Seeking past the end makes Next return io.EOF.
	Seek(ticks int64) error

	// Next returns the next decoded packet, or io.EOF when the stream is
	// exhausted. Returned chunks are owned by the caller.
	Next() (audio.Chunk, error)

	// Close releases decoder resources
	Close() error
}
