// ABOUTME: FLAC audio decoder
// ABOUTME: Decodes FLAC frames to stereo float frames with seek table support
package decode

import (
	"fmt"
	"io"

	"github.com/mewkiz/flac"
	"github.com/seekplay/seekplay/pkg/audio"
)

// FLAC decodes FLAC audio
type FLAC struct {
	src      io.ReadCloser
	stream   *flac.Stream
	seekable bool
	rate     int
	channels int
	bitDepth int
	total    int64 // 0 when unknown

	pos  int64 // first sample of the next frame
	skip int64 // samples to drop from the front of the next frames
	eof  bool
}

// NewFLAC creates a new FLAC decoder reading from src
func NewFLAC(src io.ReadCloser) (Decoder, error) {
	var (
		stream   *flac.Stream
		err      error
		seekable bool
	)
	if rs, ok := src.(io.ReadSeeker); ok {
		stream, err = flac.NewSeek(rs)
		seekable = true
	} else {
		stream, err = flac.New(src)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}

	info := stream.Info
	if info.NChannels < 1 {
		return nil, fmt.Errorf("invalid FLAC channel count: %d", info.NChannels)
	}

	return &FLAC{
		src:      src,
		stream:   stream,
		seekable: seekable,
		rate:     int(info.SampleRate),
		channels: int(info.NChannels),
		bitDepth: int(info.BitsPerSample),
		total:    int64(info.NSamples),
	}, nil
}

func (d *FLAC) Format() audio.Format {
	return audio.Format{Codec: "flac", SampleRate: d.rate, Channels: d.channels}
}

func (d *FLAC) TimeBase() audio.TimeBase {
	return audio.SampleTimeBase(d.rate)
}

// Seek moves to the given sample
func (d *FLAC) Seek(ticks int64) error {
	if ticks < 0 {
		return fmt.Errorf("invalid seek position: %d", ticks)
	}

	d.eof = false
	if d.total > 0 && ticks >= d.total {
		d.eof = true
		return nil
	}

	if d.seekable {
		actual, err := d.stream.Seek(uint64(ticks))
		if err != nil {
			return fmt.Errorf("flac seek failed: %w", err)
		}
		d.pos = int64(actual)
		d.skip = ticks - d.pos
		return nil
	}

	if ticks < d.pos+d.skip {
		return fmt.Errorf("cannot seek backwards on unseekable flac stream (at %d, want %d)", d.pos+d.skip, ticks)
	}
	d.skip = ticks - d.pos
	return nil
}

// Next decodes the next FLAC frame
func (d *FLAC) Next() (audio.Chunk, error) {
	for {
		if d.eof {
			return nil, io.EOF
		}

		frame, err := d.stream.ParseNext()
		if err != nil {
			if err == io.EOF {
				d.eof = true
				return nil, io.EOF
			}
			return nil, fmt.Errorf("flac decode failed: %w", err)
		}

		n := int(frame.BlockSize)
		d.pos += int64(n)

		if d.skip >= int64(n) {
			d.skip -= int64(n)
			continue
		}

		start := int(d.skip)
		d.skip = 0

		left := frame.Subframes[0].Samples
		right := left
		if d.channels > 1 {
			right = frame.Subframes[1].Samples
		}

		chunk := make(audio.Chunk, n-start)
		for i := start; i < n; i++ {
			chunk[i-start] = audio.Frame{
				audio.SampleFromInt(left[i], d.bitDepth),
				audio.SampleFromInt(right[i], d.bitDepth),
			}
		}
		return chunk, nil
	}
}

// Close releases decoder resources
func (d *FLAC) Close() error {
	return d.src.Close()
}
