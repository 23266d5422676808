// ABOUTME: Opus audio decoder
// ABOUTME: Decodes Ogg/Opus streams to stereo float frames at 48kHz
package decode

import (
	"fmt"
	"io"

	"github.com/seekplay/seekplay/pkg/audio"
	"gopkg.in/hraban/opus.v2"
)

// OpusSampleRate is the rate libopusfile always decodes at
const OpusSampleRate = 48000

// largest opus packet is 120ms
const opusMaxFrames = 5760

// Opus decodes Ogg/Opus audio
type Opus struct {
	src      io.ReadCloser
	stream   *opus.Stream
	channels int
	pcm      []float32

	pos  int64
	skip int64
}

// keeps opus.Stream.Close from closing the source so it can be rewound
type readerOnly struct {
	io.Reader
}

// NewOpus creates a new Opus decoder. channels is the channel count of the
// stream (1 or 2).
func NewOpus(src io.ReadCloser, channels int) (Decoder, error) {
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("unsupported opus channel count: %d (supported: 1, 2)", channels)
	}

	stream, err := opus.NewStream(readerOnly{src})
	if err != nil {
		return nil, fmt.Errorf("failed to create opus stream: %w", err)
	}

	return &Opus{
		src:      src,
		stream:   stream,
		channels: channels,
		pcm:      make([]float32, opusMaxFrames*channels),
	}, nil
}

func (d *Opus) Format() audio.Format {
	return audio.Format{Codec: "opus", SampleRate: OpusSampleRate, Channels: d.channels}
}

func (d *Opus) TimeBase() audio.TimeBase {
	return audio.SampleTimeBase(OpusSampleRate)
}

// Seek decodes and discards up to ticks. Backward seeks rewind the source
// when it supports it.
func (d *Opus) Seek(ticks int64) error {
	if ticks < 0 {
		return fmt.Errorf("invalid seek position: %d", ticks)
	}

	if ticks < d.pos+d.skip {
		if err := d.rewind(); err != nil {
			return err
		}
	}
	d.skip = ticks - d.pos
	return nil
}

func (d *Opus) rewind() error {
	seeker, ok := d.src.(io.Seeker)
	if !ok {
		return fmt.Errorf("cannot seek backwards on unseekable opus stream")
	}

	d.stream.Close()
	if _, err := seeker.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("opus rewind failed: %w", err)
	}

	stream, err := opus.NewStream(readerOnly{d.src})
	if err != nil {
		return fmt.Errorf("failed to reopen opus stream: %w", err)
	}

	d.stream = stream
	d.pos = 0
	d.skip = 0
	return nil
}

// Next decodes the next packet
func (d *Opus) Next() (audio.Chunk, error) {
	for {
		n, err := d.stream.ReadFloat32(d.pcm)
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("opus decode failed: %w", err)
		}
		if n == 0 {
			return nil, io.EOF
		}

		d.pos += int64(n)
		if d.skip >= int64(n) {
			d.skip -= int64(n)
			continue
		}

		start := int(d.skip) * d.channels
		d.skip = 0
		return audio.FramesFromInterleaved(nil, d.pcm[start:n*d.channels], d.channels), nil
	}
}

// Close releases decoder resources
func (d *Opus) Close() error {
	d.stream.Close()
	return d.src.Close()
}
